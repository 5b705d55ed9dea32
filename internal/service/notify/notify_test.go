package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// TestCommand picks the command per OS.
func TestCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		name string
	}{
		{goos: "linux", name: "notify-send"},
		{goos: "freebsd", name: "notify-send"},
		{goos: "darwin", name: "osascript"},
		{goos: "windows", name: "msg"},
	}

	for _, tt := range tests {
		name, args, err := command(tt.goos, Title, Body)
		require.NoError(t, err, tt.goos)
		require.Equal(t, tt.name, name)
		require.NotEmpty(t, args)
	}

	_, _, err := command("plan9", Title, Body)
	require.ErrorIs(t, err, ErrUnsupportedOS)
}

// TestDesktop uses stubbed lookups and launches.
func TestDesktop(t *testing.T) {
	t.Parallel()

	var started []string

	d := &Desktop{
		goos: "linux",
		lookPath: func(name string) (string, error) {
			if name == "notify-send" {
				return "/usr/bin/notify-send", nil
			}

			return "", errors.New("not found")
		},
		start: func(_ context.Context, name string, args ...string) error {
			started = append(started, name)
			require.Contains(t, args, Body)

			return nil
		},
	}

	ctx := context.Background()
	require.NoError(t, d.Authorize(ctx))
	require.NoError(t, d.Notify(ctx, alarm.Alarm{ID: alarm.NewID(), Hour: 7}))
	require.Equal(t, []string{"notify-send"}, started)

	d.goos = "darwin"
	require.Error(t, d.Authorize(ctx))
}

// TestOff never authorizes.
func TestOff(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Off{}.Authorize(context.Background()), ErrDisabled)
	require.NoError(t, Off{}.Notify(context.Background(), alarm.Alarm{}))
}
