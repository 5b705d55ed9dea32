package server

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/metrics"
	"github.com/oshokin/leet-alarm/internal/repository/blob"
	repository "github.com/oshokin/leet-alarm/internal/repository/state"
	"github.com/oshokin/leet-alarm/internal/service/alarms"
)

// recordingScheduler remembers which alarms are armed.
type recordingScheduler struct {
	mu       sync.Mutex
	armed    map[string]alarm.Alarm
	fired    []string
	canceled []string
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{armed: make(map[string]alarm.Alarm)}
}

func (s *recordingScheduler) Schedule(_ context.Context, a alarm.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.armed[a.ID] = a

	return nil
}

func (s *recordingScheduler) Cancel(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.armed, id)
	s.canceled = append(s.canceled, id)
}

func (s *recordingScheduler) CancelAll(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.armed)
}

func (s *recordingScheduler) Fire(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fired = append(s.fired, id)
}

func (s *recordingScheduler) isArmed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.armed[id]

	return ok
}

type fixture struct {
	svc   *service
	sched *recordingScheduler
	repo  *repository.Repository
	dir   string
}

// newFixture builds a controller over a file-backed repository in dir.
func newFixture(t *testing.T, dir string, catalog []quiz.Question) *fixture {
	t.Helper()

	ctx := context.Background()

	blobs, err := blob.NewFileStore(dir)
	require.NoError(t, err)

	repo := repository.NewRepository(blobs)
	sched := newRecordingScheduler()
	store := alarms.NewStore(ctx, repo, sched)

	svc := newService(store, sched, catalog, metrics.New(), time.UTC)
	svc.now = func() time.Time { return time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC) }
	svc.Restore(ctx)

	return &fixture{svc: svc, sched: sched, repo: repo, dir: dir}
}

func ptr(v int) *int { return &v }

func draft(hour, minute int, repeat alarm.Repeat, required int) alarm.Draft {
	return alarm.Draft{
		Hour:              ptr(hour),
		Minute:            ptr(minute),
		Repeat:            repeat,
		Difficulty:        alarm.DifficultyEasy,
		QuestionsRequired: required,
	}
}

// correctAnswer looks the right option up in the catalog.
func correctAnswer(t *testing.T, catalog []quiz.Question, id string) quiz.Question {
	t.Helper()

	idx := slices.IndexFunc(catalog, func(q quiz.Question) bool { return q.ID == id })
	require.GreaterOrEqual(t, idx, 0, id)

	return catalog[idx]
}

// solve answers every remaining question correctly.
func solve(t *testing.T, svc *service, catalog []quiz.Question) view.Snapshot {
	t.Helper()

	snap := svc.GetState(context.Background())
	for snap.Challenge != nil && !snap.Challenge.Completed {
		q := correctAnswer(t, catalog, snap.Challenge.Current.ID)

		var (
			outcome quiz.Outcome
			err     error
		)

		outcome, snap, err = svc.SubmitAnswer(context.Background(), q.CorrectAnswer)
		require.NoError(t, err)
		require.Equal(t, quiz.OutcomeCorrect, outcome)
	}

	return snap
}

// TestService_AddAlarm persists, arms and publishes a new alarm.
func TestService_AddAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()

	a, snap, err := f.svc.AddAlarm(ctx, draft(7, 30, alarm.RepeatDaily, 0))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, 1, a.QuestionsRequired)
	require.Equal(t, []alarm.Alarm{a}, snap.Alarms)
	require.True(t, f.sched.isArmed(a.ID))

	stored, err := f.repo.LoadAlarms(ctx)
	require.NoError(t, err)
	require.Equal(t, []alarm.Alarm{a}, stored)

	_, _, err = f.svc.AddAlarm(ctx, alarm.Draft{Hour: ptr(7)})
	require.ErrorIs(t, err, alarm.ErrInvalidDraft)
}

// TestService_UpdateAlarm replaces known alarms and ignores unknown ids.
func TestService_UpdateAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()

	a, before, err := f.svc.AddAlarm(ctx, draft(7, 30, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	edit := alarm.DraftFrom(a)
	edit.Hour = ptr(9)

	snap, err := f.svc.UpdateAlarm(ctx, edit)
	require.NoError(t, err)
	require.Equal(t, 9, snap.Alarms[0].Hour)
	require.Greater(t, snap.Revision, before.Revision)

	unknown := draft(5, 0, alarm.RepeatOnce, 1)
	unknown.ID = alarm.NewID()

	same, err := f.svc.UpdateAlarm(ctx, unknown)
	require.NoError(t, err)
	require.Equal(t, snap, same)

	_, err = f.svc.UpdateAlarm(ctx, draft(5, 0, alarm.RepeatOnce, 1))
	require.ErrorIs(t, err, alarm.ErrMissingID)
	require.ErrorIs(t, err, alarm.ErrInvalidDraft)
}

// TestService_FireChallengeDismiss walks the whole wake-up flow for a daily alarm.
func TestService_FireChallengeDismiss(t *testing.T) {
	t.Parallel()

	catalog := quiz.Builtin()
	f := newFixture(t, t.TempDir(), catalog)
	ctx := context.Background()

	a, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatDaily, 2))
	require.NoError(t, err)

	_, err = f.svc.DismissActive(ctx)
	require.NoError(t, err)

	f.svc.FireAlarm(ctx, a.ID)
	require.Equal(t, []string{a.ID}, f.sched.fired)

	snap := f.svc.HandleFired(ctx, a.ID)
	require.Equal(t, a.ID, snap.ActiveAlarmID)
	require.NotNil(t, snap.ActiveAlarm)
	require.NotNil(t, snap.Challenge)
	require.Equal(t, 2, snap.Challenge.Remaining)

	_, err = f.svc.DismissActive(ctx)
	require.ErrorIs(t, err, quiz.ErrChallengeIncomplete)

	q := correctAnswer(t, catalog, snap.Challenge.Current.ID)

	outcome, snap, err := f.svc.SubmitAnswer(ctx, (q.CorrectAnswer+1)%len(q.Options))
	require.NoError(t, err)
	require.Equal(t, quiz.OutcomeIncorrect, outcome)
	require.Equal(t, 2, snap.Challenge.Remaining)

	snap = solve(t, f.svc, catalog)
	require.True(t, snap.Challenge.Completed)

	snap, err = f.svc.DismissActive(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.ActiveAlarmID)
	require.Nil(t, snap.Challenge)
	require.Contains(t, f.sched.canceled, a.ID)
	require.True(t, f.sched.isArmed(a.ID))

	_, _, err = f.svc.SubmitAnswer(ctx, 0)
	require.ErrorIs(t, err, quiz.ErrNoChallenge)
}

// TestService_StartChallenge needs a known alarm and resumes the active one for an empty id.
func TestService_StartChallenge(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()

	_, err := f.svc.StartChallenge(ctx, alarm.NewID())
	require.ErrorIs(t, err, alarm.ErrUnknownAlarm)

	_, err = f.svc.StartChallenge(ctx, "")
	require.ErrorIs(t, err, alarm.ErrUnknownAlarm)

	a, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	snap, err := f.svc.StartChallenge(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, snap.ActiveAlarmID)
	require.Equal(t, a.ID, snap.Challenge.AlarmID)

	snap, err = f.svc.StartChallenge(ctx, "")
	require.NoError(t, err)
	require.Equal(t, a.ID, snap.Challenge.AlarmID)
}

// TestService_UnknownFiredAlarm activates the id without a challenge and still allows dismissal.
func TestService_UnknownFiredAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()
	id := alarm.NewID()

	snap := f.svc.HandleFired(ctx, id)
	require.Equal(t, id, snap.ActiveAlarmID)
	require.Nil(t, snap.ActiveAlarm)
	require.Nil(t, snap.Challenge)

	snap, err := f.svc.DismissActive(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.ActiveAlarmID)
}

// TestService_EmptyPool drops the challenge when the tier has no questions.
func TestService_EmptyPool(t *testing.T) {
	t.Parallel()

	hardOnly := slices.DeleteFunc(quiz.Builtin(), func(q quiz.Question) bool {
		return q.Difficulty != alarm.DifficultyHard
	})
	f := newFixture(t, t.TempDir(), hardOnly)
	ctx := context.Background()

	a, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	snap := f.svc.HandleFired(ctx, a.ID)
	require.Equal(t, a.ID, snap.ActiveAlarmID)
	require.Nil(t, snap.Challenge)

	_, err = f.svc.DismissActive(ctx)
	require.NoError(t, err)
}

// TestService_DeleteActiveAlarm clears the active pointer and the challenge.
func TestService_DeleteActiveAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()

	a, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	f.svc.HandleFired(ctx, a.ID)

	before := f.svc.GetState(ctx)
	same := f.svc.DeleteAlarms(ctx, []string{alarm.NewID()})
	require.Equal(t, before, same)

	snap := f.svc.DeleteAlarms(ctx, []string{a.ID})
	require.Empty(t, snap.Alarms)
	require.Empty(t, snap.ActiveAlarmID)
	require.Nil(t, snap.Challenge)
	require.False(t, f.sched.isArmed(a.ID))

	_, err = f.repo.LoadActive(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

// TestService_RestoreResumesChallenge re-arms alarms and re-enters the active challenge after a restart.
func TestService_RestoreResumesChallenge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := newFixture(t, dir, quiz.Builtin())
	ctx := context.Background()

	a, _, err := first.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatDaily, 3))
	require.NoError(t, err)

	first.svc.HandleFired(ctx, a.ID)

	second := newFixture(t, dir, quiz.Builtin())
	snap := second.svc.GetState(ctx)

	require.Equal(t, []alarm.Alarm{a}, snap.Alarms)
	require.Equal(t, a.ID, snap.ActiveAlarmID)
	require.NotNil(t, snap.Challenge)
	require.Equal(t, 3, snap.Challenge.Required)
	require.Zero(t, snap.Challenge.Solved)
	require.True(t, second.sched.isArmed(a.ID))
}

// TestService_SpentOnceStaysDisarmed keeps a dismissed one-shot alarm disarmed across restarts
// until it is edited.
func TestService_SpentOnceStaysDisarmed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catalog := quiz.Builtin()
	first := newFixture(t, dir, catalog)
	ctx := context.Background()

	a, _, err := first.svc.AddAlarm(ctx, draft(7, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)
	require.True(t, first.sched.isArmed(a.ID))

	first.svc.HandleFired(ctx, a.ID)
	solve(t, first.svc, catalog)

	snap, err := first.svc.DismissActive(ctx)
	require.NoError(t, err)
	require.True(t, snap.Alarms[0].Spent)
	require.False(t, first.sched.isArmed(a.ID))

	second := newFixture(t, dir, catalog)
	require.False(t, second.sched.isArmed(a.ID))

	stored, ok := alarm.Find(second.svc.GetState(ctx).Alarms, a.ID)
	require.True(t, ok)
	require.True(t, stored.Spent)

	edit := draft(8, 0, alarm.RepeatOnce, 1)
	edit.ID = a.ID
	snap, err = second.svc.UpdateAlarm(ctx, edit)
	require.NoError(t, err)
	require.False(t, snap.Alarms[0].Spent)
	require.True(t, second.sched.isArmed(a.ID))

	third := newFixture(t, dir, catalog)
	require.True(t, third.sched.isArmed(a.ID))
}

// TestService_Watch delivers the current snapshot then the latest one after mutations.
func TestService_Watch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())

	ctx, cancel := context.WithCancel(context.Background())
	ch := f.svc.Watch(ctx)

	initial := <-ch
	require.Equal(t, f.svc.GetState(ctx), initial)

	_, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	_, _, err = f.svc.AddAlarm(ctx, draft(7, 0, alarm.RepeatOnce, 1))
	require.NoError(t, err)

	latest := <-ch
	require.Len(t, latest.Alarms, 2)
	require.Equal(t, initial.Revision+2, latest.Revision)

	cancel()

	require.Eventually(t, func() bool {
		_, ok := <-ch

		return !ok
	}, time.Second, 10*time.Millisecond)
}

// TestService_ExportCalendar renders every alarm as an event.
func TestService_ExportCalendar(t *testing.T) {
	t.Parallel()

	f := newFixture(t, t.TempDir(), quiz.Builtin())
	ctx := context.Background()

	a, _, err := f.svc.AddAlarm(ctx, draft(6, 0, alarm.RepeatDaily, 1))
	require.NoError(t, err)

	data, err := f.svc.ExportCalendar(ctx)
	require.NoError(t, err)
	require.Contains(t, string(data), "BEGIN:VCALENDAR")
	require.Contains(t, string(data), a.ID)
	require.Contains(t, string(data), "FREQ=DAILY")
}
