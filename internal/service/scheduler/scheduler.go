package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/logger"
)

// subscriberBuffer is the number of undelivered events a subscriber may queue.
const subscriberBuffer = 8

var (
	errNoOccurrence  = errors.New("no future occurrence")
	errUnknownRepeat = errors.New("unknown repeat mode")
)

// ActiveRecorder persists the id of a fired alarm.
type ActiveRecorder interface {
	SaveActive(ctx context.Context, id string) error
}

// Notifier shows OS-level alerts.
type Notifier interface {
	Authorize(ctx context.Context) error
	Notify(ctx context.Context, a alarm.Alarm) error
}

// Event reports that an alarm fired.
type Event struct {
	// AlarmID identifies the fired alarm.
	AlarmID string
	// At is when the scheduler delivered the event.
	At time.Time
}

// Pending describes one armed trigger.
type Pending struct {
	// Alarm is the scheduled alarm.
	Alarm alarm.Alarm
	// Next is the upcoming fire time, zero when the trigger is spent.
	Next time.Time
}

type trigger struct {
	entryID cron.EntryID
	alarm   alarm.Alarm
}

// Scheduler owns the cron runner and the fired-event fan-out.
type Scheduler struct {
	// cron runs the triggers.
	cron *cron.Cron
	// location is the zone alarm wall-clock times are interpreted in.
	location *time.Location
	// recorder persists fired ids.
	recorder ActiveRecorder
	// notifier shows desktop alerts.
	notifier Notifier
	// now is the clock, replaceable in tests.
	now func() time.Time

	// mu protects every field below.
	mu sync.Mutex
	// jobCtx carries the logger used by cron callbacks.
	jobCtx context.Context //nolint:containedctx // cron jobs have no caller context
	// pending maps alarm ids to armed triggers.
	pending map[string]trigger
	// delivered maps alarm ids to fire times awaiting acknowledgement.
	delivered map[string]time.Time
	// subscribers receive fired events.
	subscribers map[uint64]chan Event
	// nextSubscriber is the id for the next subscription.
	nextSubscriber uint64
	// authorized reports whether desktop alerts may be shown.
	authorized bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the zone alarm times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithNotifier sets the desktop alert facility.
func WithNotifier(n Notifier) Option {
	return func(s *Scheduler) {
		s.notifier = n
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a stopped scheduler.
func New(recorder ActiveRecorder, opts ...Option) *Scheduler {
	s := &Scheduler{
		location:    time.Local,
		recorder:    recorder,
		now:         time.Now,
		jobCtx:      context.Background(),
		pending:     make(map[string]trigger),
		delivered:   make(map[string]time.Time),
		subscribers: make(map[uint64]chan Event),
	}

	for _, opt := range opts {
		opt(s)
	}

	cl := cronLogger{ctx: logger.WithName(context.Background(), "cron")}
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	return s
}

// Start launches the cron runner. ctx is used for logging inside triggers.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.jobCtx = logger.WithName(ctx, "scheduler")
	s.mu.Unlock()

	s.cron.Start()
	logger.InfoKV(ctx, "Scheduler started", "location", s.location.String())
}

// Stop halts the runner and waits for running triggers or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}

	logger.Info(ctx, "Scheduler stopped")
}

// RequestAuthorization asks the notifier whether alerts can be shown.
// Denial only disables desktop alerts; triggers and events keep working.
func (s *Scheduler) RequestAuthorization(ctx context.Context) bool {
	authorized := false

	if s.notifier != nil {
		err := s.notifier.Authorize(ctx)
		if err != nil {
			logger.WarnKV(ctx, "Desktop alerts unavailable", "error", err)
		}

		authorized = err == nil
	}

	s.mu.Lock()
	s.authorized = authorized
	s.mu.Unlock()

	return authorized
}

// Schedule arms the alarm, replacing any trigger already armed for its id.
func (s *Scheduler) Schedule(ctx context.Context, a alarm.Alarm) error {
	schedule, err := scheduleFor(a, s.now().In(s.location))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(a.ID)

	entryID := s.cron.Schedule(schedule, cron.FuncJob(func() { s.trigger(a.ID) }))
	s.pending[a.ID] = trigger{entryID: entryID, alarm: a}

	logger.DebugKV(ctx, "Alarm scheduled", "alarm_id", a.ID, "repeat", a.Repeat, "next", schedule.Next(s.now().In(s.location)))

	return nil
}

// Cancel removes pending and delivered triggers for id. It is idempotent.
func (s *Scheduler) Cancel(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	delete(s.delivered, id)

	logger.DebugKV(ctx, "Alarm canceled", "alarm_id", id)
}

// CancelAll removes every trigger.
func (s *Scheduler) CancelAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.pending {
		s.removeLocked(id)
	}

	clear(s.delivered)

	logger.Debug(ctx, "All alarms canceled")
}

// Fire delivers an event for id to every subscriber and persists id as the active alarm.
// It is called by triggers and when the user interacts with a delivered alert.
func (s *Scheduler) Fire(ctx context.Context, id string) {
	at := s.now()

	if err := s.recorder.SaveActive(context.WithoutCancel(ctx), id); err != nil {
		logger.ErrorKV(ctx, "Failed to persist fired alarm", "alarm_id", id, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.delivered[id] = at
	event := Event{AlarmID: id, At: at}

	for subID, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			logger.WarnKV(ctx, "Dropping slow subscriber", "subscriber", subID)
			s.unsubscribeLocked(subID)
		}
	}

	logger.InfoKV(ctx, "Alarm fired", "alarm_id", id, "subscribers", len(s.subscribers))
}

// Subscribe registers a listener for fired events until ctx is done or Close is called.
func (s *Scheduler) Subscribe(ctx context.Context) *Subscription {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = ch
	s.mu.Unlock()

	sub := &Subscription{
		id:        id,
		c:         ch,
		scheduler: s,
		done:      make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// Pending lists armed triggers ordered by their next fire time.
func (s *Scheduler) Pending() []Pending {
	now := s.now().In(s.location)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Pending, 0, len(s.pending))

	for _, t := range s.pending {
		next := time.Time{}
		if entry := s.cron.Entry(t.entryID); entry.Valid() {
			next = entry.Schedule.Next(now)
		}

		result = append(result, Pending{Alarm: t.alarm, Next: next})
	}

	slices.SortFunc(result, func(a, b Pending) int {
		if c := a.Next.Compare(b.Next); c != 0 {
			return c
		}

		return compareIDs(a.Alarm.ID, b.Alarm.ID)
	})

	return result
}

// Delivered lists ids fired but not yet canceled.
func (s *Scheduler) Delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.delivered))
	for id := range s.delivered {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// trigger runs on the cron goroutine.
func (s *Scheduler) trigger(id string) {
	s.mu.Lock()
	ctx := s.jobCtx
	t, known := s.pending[id]
	authorized := s.authorized

	if known && t.alarm.Repeat == alarm.RepeatOnce {
		s.removeLocked(id)
	}
	s.mu.Unlock()

	ctx = logger.WithAlarm(ctx, id)

	if known && authorized && s.notifier != nil {
		if err := s.notifier.Notify(ctx, t.alarm); err != nil {
			logger.WarnKV(ctx, "Failed to show desktop alert", "error", err)
		}
	}

	s.Fire(ctx, id)
}

func (s *Scheduler) removeLocked(id string) {
	t, ok := s.pending[id]
	if !ok {
		return
	}

	s.cron.Remove(t.entryID)
	delete(s.pending, id)
}

func (s *Scheduler) unsubscribeLocked(id uint64) {
	ch, ok := s.subscribers[id]
	if !ok {
		return
	}

	delete(s.subscribers, id)
	close(ch)
}

func compareIDs(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
