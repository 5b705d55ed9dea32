// Package common holds helpers shared by several services.
//
// It provides a gRPC client wrapper for the alarm daemon that applies per-call
// timeouts and decodes responses into domain types.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
