package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/logger"
)

const (
	// Title is the alert heading.
	Title = "Leet Alarm"
	// Body is the alert text.
	Body = "Solve the challenge to dismiss your alarm."
)

var (
	// ErrUnsupportedOS indicates the current OS has no known alert command.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrDisabled is returned by Authorize when alerts are turned off.
	ErrDisabled = errors.New("desktop alerts disabled")
)

// Desktop starts an OS command per alert.
type Desktop struct {
	// goos selects the command family.
	goos string
	// lookPath resolves the command binary.
	lookPath func(string) (string, error)
	// start launches the command without waiting for it.
	start func(ctx context.Context, name string, args ...string) error
}

// NewDesktop returns a notifier for the running OS.
func NewDesktop() *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startCommand,
	}
}

// Authorize checks that the alert command is installed.
func (d *Desktop) Authorize(_ context.Context) error {
	name, _, err := command(d.goos, Title, Body)
	if err != nil {
		return err
	}

	if _, err = d.lookPath(name); err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}

	return nil
}

// Notify shows the alert for a fired alarm.
func (d *Desktop) Notify(ctx context.Context, a alarm.Alarm) error {
	name, args, err := command(d.goos, Title+" "+a.TimeLabel(), Body)
	if err != nil {
		return err
	}

	if err = d.start(ctx, name, args...); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	logger.DebugKV(ctx, "Desktop alert shown", "alarm_id", a.ID, "command", name)

	return nil
}

// command builds the alert command line:
// - Linux:   `notify-send -u critical <title> <body>`
// - macOS:   `osascript -e 'display notification "<body>" with title "<title>"'`
// - Windows: `msg * <title>: <body>`
func command(goos, title, body string) (string, []string, error) {
	osName := strings.ToLower(goos)

	switch {
	case strings.Contains(osName, "linux"), strings.Contains(osName, "bsd"):
		return "notify-send", []string{"-u", "critical", title, body}, nil
	case strings.Contains(osName, "darwin"):
		script := fmt.Sprintf("display notification %q with title %q", body, title)

		return "osascript", []string{"-e", script}, nil
	case strings.Contains(osName, "windows"):
		return "msg", []string{"*", title + ": " + body}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s: %w", goos, ErrUnsupportedOS)
	}
}

// startCommand starts the command asynchronously and reaps it in the background.
func startCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Off only logs fired alarms.
type Off struct{}

// Authorize always reports that alerts are disabled.
func (Off) Authorize(context.Context) error {
	return ErrDisabled
}

// Notify logs the alarm.
func (Off) Notify(ctx context.Context, a alarm.Alarm) error {
	logger.InfoKV(ctx, "Alarm ringing", "alarm_id", a.ID, "time", a.TimeLabel())

	return nil
}
