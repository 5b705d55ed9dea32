// Package alarms owns the configured alarm list and the active alarm pointer.
//
// Every mutation is persisted through a Repository and mirrored into a
// Scheduler. Persistence failures are logged and the in-memory state stays
// authoritative.
package alarms
