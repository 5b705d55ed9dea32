// Package logger wraps zap with a global console logger and context helpers.
//
// Components derive a named logger with WithName and tag records with WithKV
// or WithAlarm; the leveled helpers (DebugKV, InfoKV, WarnKV, ErrorKV) pull the
// logger back out of the context. WithMinLevel overrides the global level for
// one context, which keeps the client CLI quiet unless asked otherwise.
package logger
