// Package leetalarm implements the gRPC transport for the leet-alarm daemon.
//
// The service is registered from a hand-written grpc.ServiceDesc whose
// messages are protobuf well-known types, so the default proto codec applies
// and no generated code is needed. Snapshots and drafts travel as
// structpb.Struct values built by the codec package.
package leetalarm
