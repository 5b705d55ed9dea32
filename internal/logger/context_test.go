package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal verifies the global logger is used for bare contexts.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_AttachesFields checks fields added to the context reach the log entry.
func TestWithKV_AttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "scheduler")
	ctx = WithKV(ctx, "alarm_id", "a-1")
	ctx = WithFields(ctx, "repeat", "daily")

	InfoKV(ctx, "Alarm fired", "solved", 0)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "scheduler", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	require.Equal(t, "a-1", fields["alarm_id"])
	require.Equal(t, "daily", fields["repeat"])
	require.EqualValues(t, 0, fields["solved"])
}

// TestWithMinLevel drops records below the context level and tags alarm ids.
func TestWithMinLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithMinLevel(ctx, zap.WarnLevel)
	ctx = WithAlarm(ctx, "a-2")

	InfoKV(ctx, "Challenge started")
	WarnKV(ctx, "Fired alarm is not configured")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Equal(t, "a-2", entries[0].ContextMap()["alarm_id"])
}
