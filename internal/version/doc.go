// Package version exposes build metadata for leet-alarm binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short and Full render them for CLI output and startup logs.
package version
