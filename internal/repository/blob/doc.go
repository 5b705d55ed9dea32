// Package blob implements the key-value byte storage the state repository
// writes to. FileStore keeps one file per key in a directory; SQLiteStore
// keeps rows in a single kv table.
package blob
