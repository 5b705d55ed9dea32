package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/service/scheduler"
)

type nopRecorder struct{}

func (nopRecorder) SaveActive(context.Context, string) error { return nil }

type handledIDs struct {
	mu  sync.Mutex
	ids []string
}

func (h *handledIDs) HandleFired(_ context.Context, id string) view.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ids = append(h.ids, id)

	return view.Snapshot{}
}

func (h *handledIDs) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.ids...)
}

// TestResolveListenAddress prefers the override and validates the configured address.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:50061", ":9000")
	require.NoError(t, err)
	require.Equal(t, ":9000", addr)

	addr, err = resolveListenAddress("127.0.0.1:50061", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50061", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestApplyOverrides re-derives the database path from an overridden state directory.
func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	require.NoError(t, config.Validate(settings))

	applyOverrides(settings, &Options{StateDir: "/tmp/leet", Storage: config.StorageSQLite})
	require.NoError(t, config.Validate(settings))

	require.Equal(t, config.StorageSQLite, settings.Storage)
	require.Equal(t, "/tmp/leet/"+config.DefaultSQLiteFilename, settings.SQLitePath)
}

// TestDrainEvents hands fired ids to the controller until the context ends.
func TestDrainEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(nopRecorder{})
	handler := new(handledIDs)
	done := make(chan struct{})

	go func() {
		drainEvents(ctx, handler, sched, sched.Subscribe(ctx))
		close(done)
	}()

	sched.Fire(ctx, "a")
	sched.Fire(ctx, "b")

	require.Eventually(t, func() bool {
		return len(handler.list()) == 2
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"a", "b"}, handler.list())

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainEvents did not stop")
	}
}

type ctxStopper struct {
	err      error
	deadline bool
}

func (s *ctxStopper) Stop(ctx context.Context) {
	s.err = ctx.Err()
	_, s.deadline = ctx.Deadline()
}

// TestStopScheduler hands Stop a live bounded context after shutdown began.
func TestStopScheduler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := new(ctxStopper)
	stopScheduler(ctx, s)

	require.NoError(t, s.err)
	require.True(t, s.deadline)
}
