package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oshokin/leet-alarm/internal/calendar"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/logger"
	"github.com/oshokin/leet-alarm/internal/metrics"
	"github.com/oshokin/leet-alarm/internal/service/alarms"
)

// Scheduler is the part of the trigger runner the controller drives directly.
type Scheduler interface {
	alarms.Scheduler
	CancelAll(ctx context.Context)
	Fire(ctx context.Context, id string)
}

// service serializes every state mutation: the alarm store, the challenge
// session and the watcher fan-out all live behind one mutex.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// store owns alarms and the active pointer.
	store *alarms.Store
	// scheduler arms and fires triggers.
	scheduler Scheduler
	// catalog is the question pool.
	catalog []quiz.Question
	// metrics records domain counters; nil disables them.
	metrics *metrics.Metrics
	// location is the zone alarm times are interpreted in.
	location *time.Location
	// now is the clock.
	now func() time.Time
	// rng draws questions; nil uses the global source.
	rng *rand.Rand

	// mu protects every field below and the store.
	mu sync.Mutex
	// session is the running challenge, nil when none.
	session *quiz.Session
	// sessionAlarmID is the alarm the session belongs to.
	sessionAlarmID string
	// revision counts published mutations.
	revision uint64
	// watchers receive the latest snapshot after every mutation.
	watchers map[uint64]chan view.Snapshot
	// nextWatcher is the id for the next watcher.
	nextWatcher uint64
}

// newService creates a controller over an already loaded store.
func newService(
	store *alarms.Store,
	scheduler Scheduler,
	catalog []quiz.Question,
	m *metrics.Metrics,
	location *time.Location,
) *service {
	if location == nil {
		location = time.Local
	}

	return &service{
		store:     store,
		scheduler: scheduler,
		catalog:   catalog,
		metrics:   m,
		location:  location,
		now:       time.Now,
		watchers:  make(map[uint64]chan view.Snapshot),
	}
}

// Restore re-arms every stored alarm and re-enters the challenge of a persisted active alarm.
func (s *service) Restore(ctx context.Context) view.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.CancelAll(ctx)

	list := s.store.Alarms()
	for _, a := range list {
		if !a.Armable() {
			logger.DebugKV(ctx, "Skipping spent one-shot alarm", "alarm_id", a.ID)

			continue
		}

		if err := s.scheduler.Schedule(ctx, a); err != nil {
			logger.ErrorKV(ctx, "Failed to restore alarm schedule", "alarm_id", a.ID, "error", err)
		}
	}

	s.metrics.SetAlarms(len(list))

	if a, ok := s.store.Active(); ok {
		logger.InfoKV(ctx, "Resuming challenge of active alarm", "alarm_id", a.ID)
		s.startSessionLocked(ctx, a)
	}

	return s.publishLocked()
}

// GetState returns the current snapshot.
func (s *service) GetState(_ context.Context) view.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// AddAlarm validates the draft and appends a new alarm with a fresh id.
func (s *service) AddAlarm(ctx context.Context, d alarm.Draft) (alarm.Alarm, view.Snapshot, error) {
	d.ID = ""

	a, err := d.Build()
	if err != nil {
		return alarm.Alarm{}, view.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Add(ctx, a)
	s.metrics.SetAlarms(len(s.store.Alarms()))

	return a, s.publishLocked(), nil
}

// UpdateAlarm replaces an existing alarm. Unknown ids are ignored.
func (s *service) UpdateAlarm(ctx context.Context, d alarm.Draft) (view.Snapshot, error) {
	if d.ID == "" {
		return view.Snapshot{}, fmt.Errorf("%w: %w", alarm.ErrInvalidDraft, alarm.ErrMissingID)
	}

	a, err := d.Build()
	if err != nil {
		return view.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Update(ctx, a) {
		return s.snapshotLocked(), nil
	}

	return s.publishLocked(), nil
}

// DeleteAlarms removes the given alarms. Unknown ids are ignored.
func (s *service) DeleteAlarms(ctx context.Context, ids []string) view.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Delete(ctx, ids...) == 0 {
		return s.snapshotLocked()
	}

	if _, ok := s.store.Get(s.sessionAlarmID); !ok {
		s.dropSessionLocked()
	}

	s.metrics.SetAlarms(len(s.store.Alarms()))

	return s.publishLocked()
}

// StartChallenge activates the alarm and starts a fresh challenge for it.
// An empty id resumes the active alarm.
func (s *service) StartChallenge(ctx context.Context, id string) (view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = s.store.ActiveID()
	}

	a, ok := s.store.Get(id)
	if !ok {
		return view.Snapshot{}, fmt.Errorf("%w: %q", alarm.ErrUnknownAlarm, id)
	}

	s.store.Activate(ctx, a.ID)
	s.startSessionLocked(ctx, a)

	return s.publishLocked(), nil
}

// SubmitAnswer checks an answer for the current question.
func (s *service) SubmitAnswer(ctx context.Context, answer int) (quiz.Outcome, view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return quiz.OutcomeIgnored, view.Snapshot{}, quiz.ErrNoChallenge
	}

	wasCompleted := s.session.Completed()
	outcome := s.session.Submit(answer)

	switch outcome {
	case quiz.OutcomeCorrect:
		s.metrics.Answer(true)
	case quiz.OutcomeIncorrect:
		s.metrics.Answer(false)
	case quiz.OutcomeIgnored:
		return outcome, s.snapshotLocked(), nil
	}

	if !wasCompleted && s.session.Completed() {
		s.metrics.ChallengeCompleted()
		logger.InfoKV(ctx, "Challenge completed", "alarm_id", s.sessionAlarmID)
	}

	return outcome, s.publishLocked(), nil
}

// DismissActive clears the active alarm once its challenge is complete.
// Daily alarms are re-armed for their next occurrence.
func (s *service) DismissActive(ctx context.Context) (view.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && !s.session.Completed() {
		return view.Snapshot{}, quiz.ErrChallengeIncomplete
	}

	dismissed, known := s.store.DismissActive(ctx)
	if known && dismissed.Repeat == alarm.RepeatDaily {
		if err := s.scheduler.Schedule(ctx, dismissed); err != nil {
			logger.ErrorKV(ctx, "Failed to re-arm daily alarm", "alarm_id", dismissed.ID, "error", err)
		}
	}

	s.dropSessionLocked()
	s.metrics.Dismissed()

	return s.publishLocked(), nil
}

// FireAlarm delivers a fired event for id as if its trigger went off.
func (s *service) FireAlarm(ctx context.Context, id string) {
	s.scheduler.Fire(ctx, id)
}

// HandleFired reacts to a fired event: the alarm becomes active and its challenge starts.
func (s *service) HandleFired(ctx context.Context, id string) view.Snapshot {
	ctx = logger.WithAlarm(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Fired()
	s.store.Activate(ctx, id)
	s.store.MarkSpent(ctx, id)

	if a, ok := s.store.Get(id); ok {
		s.startSessionLocked(ctx, a)
	} else {
		logger.Warn(ctx, "Fired alarm is not configured")
		s.dropSessionLocked()
	}

	return s.publishLocked()
}

// ExportCalendar renders the alarms as an iCalendar feed.
func (s *service) ExportCalendar(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	list := s.store.Alarms()
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := calendar.Encode(&buf, list, s.now(), s.location); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Watch streams snapshots until ctx is done. The first value is the current state;
// a slow reader only ever sees the most recent snapshot.
func (s *service) Watch(ctx context.Context) <-chan view.Snapshot {
	ch := make(chan view.Snapshot, 1)

	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *service) startSessionLocked(ctx context.Context, a alarm.Alarm) {
	session := quiz.NewSession(s.catalog, s.rng)

	err := session.Start(a.Difficulty, a.QuestionsRequired)
	if errors.Is(err, quiz.ErrNoQuestions) {
		logger.WarnKV(ctx, "No questions for alarm difficulty, dismissal allowed without a challenge",
			"alarm_id", a.ID, "difficulty", a.Difficulty)
		s.dropSessionLocked()

		return
	}

	s.session = session
	s.sessionAlarmID = a.ID
	s.metrics.ChallengeStarted(string(a.Difficulty))

	logger.InfoKV(ctx, "Challenge started", "alarm_id", a.ID, "difficulty", a.Difficulty, "required", session.Required())
}

func (s *service) dropSessionLocked() {
	s.session = nil
	s.sessionAlarmID = ""
}

func (s *service) snapshotLocked() view.Snapshot {
	snap := view.Snapshot{
		Revision:      s.revision,
		Alarms:        s.store.Alarms(),
		ActiveAlarmID: s.store.ActiveID(),
		Challenge:     view.ChallengeFrom(s.sessionAlarmID, s.session),
	}

	if a, ok := s.store.Active(); ok {
		snap.ActiveAlarm = &a
	}

	return snap
}

// publishLocked bumps the revision and hands the new snapshot to every watcher,
// replacing any snapshot the watcher has not read yet.
func (s *service) publishLocked() view.Snapshot {
	s.revision++
	snap := s.snapshotLocked()

	for _, ch := range s.watchers {
		select {
		case ch <- snap:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}

		ch <- snap
	}

	return snap
}
