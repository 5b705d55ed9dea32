// Package notify shows desktop alerts for fired alarms using the tools every
// desktop OS ships with: notify-send on Linux, osascript on macOS and msg on Windows.
package notify
