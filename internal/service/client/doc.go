// Package client implements the leet-alarm command-line client.
//
// Every command talks to the daemon through the API interface, so the same
// code drives the real gRPC client and the in-memory fakes used in tests.
// Output is plain text colored with fatih/color; the challenge command reads
// answers line by line from the provided reader.
package client
