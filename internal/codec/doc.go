// Package codec converts domain values to and from protobuf well-known types.
//
// Alarms, drafts and snapshots travel as structpb.Struct over gRPC and are
// persisted as protojson-encoded structpb.ListValue, so the transport and the
// state repository share one field naming scheme.
package codec
