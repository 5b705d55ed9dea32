package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/repository/blob"
)

func newRepository(t *testing.T) (*Repository, *blob.FileStore) {
	t.Helper()

	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return NewRepository(store), store
}

// TestRepository_NotFound verifies loads report ErrNotFound before anything is saved.
func TestRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t)
	ctx := context.Background()

	alarms, err := repo.LoadAlarms(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, alarms)

	id, err := repo.LoadActive(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, id)
}

// TestRepository_AlarmsRoundtrip ensures SaveAlarms followed by LoadAlarms keeps order and values.
func TestRepository_AlarmsRoundtrip(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t)
	ctx := context.Background()

	want := []alarm.Alarm{
		{ID: alarm.NewID(), Hour: 7, Minute: 0, Repeat: alarm.RepeatOnce, Difficulty: alarm.DifficultyEasy, QuestionsRequired: 1},
		{ID: alarm.NewID(), Hour: 22, Minute: 15, Repeat: alarm.RepeatDaily, Difficulty: alarm.DifficultyHard, QuestionsRequired: 4},
	}

	require.NoError(t, repo.SaveAlarms(ctx, want))

	got, err := repo.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestRepository_ActiveRoundtrip saves, loads and clears the active pointer.
func TestRepository_ActiveRoundtrip(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t)
	ctx := context.Background()
	id := alarm.NewID()

	require.NoError(t, repo.SaveActive(ctx, id))

	got, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	require.Equal(t, id, got)

	require.NoError(t, repo.SaveActive(ctx, ""))

	_, err = repo.LoadActive(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, repo.SaveActive(ctx, "not-a-uuid"))
}

// TestRepository_MalformedActiveClearsPrevious drops the old pointer when the new id is rejected.
func TestRepository_MalformedActiveClearsPrevious(t *testing.T) {
	t.Parallel()

	repo, _ := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveActive(ctx, alarm.NewID()))
	require.Error(t, repo.SaveActive(ctx, "foo"))

	_, err := repo.LoadActive(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestRepository_Corrupt reports decode errors for garbage blobs.
func TestRepository_Corrupt(t *testing.T) {
	t.Parallel()

	repo, store := newRepository(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, AlarmsKey, []byte(`{not json`)))
	require.NoError(t, store.Put(ctx, ActiveAlarmKey, []byte(`garbage`)))

	_, err := repo.LoadAlarms(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)

	_, err = repo.LoadActive(ctx)
	require.Error(t, err)

	require.NoError(t, store.Put(ctx, AlarmsKey, []byte(`[{"id":"x","hour":30}]`)))
	_, err = repo.LoadAlarms(ctx)
	require.Error(t, err)
}
