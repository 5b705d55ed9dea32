package alarms

import (
	"context"
	"errors"
	"slices"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/logger"
	"github.com/oshokin/leet-alarm/internal/repository/state"
)

// Repository persists the alarm list and the active pointer independently.
type Repository interface {
	LoadAlarms(ctx context.Context) ([]alarm.Alarm, error)
	SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error
	LoadActive(ctx context.Context) (string, error)
	SaveActive(ctx context.Context, id string) error
}

// Scheduler arranges wake-up triggers for alarms.
type Scheduler interface {
	Schedule(ctx context.Context, a alarm.Alarm) error
	Cancel(ctx context.Context, id string)
}

// Store holds alarms in display order. It is not safe for concurrent use.
type Store struct {
	// repo persists every mutation.
	repo Repository
	// scheduler mirrors add, update and delete into triggers.
	scheduler Scheduler
	// alarms is the configured list in insertion order.
	alarms []alarm.Alarm
	// activeID is the alarm awaiting dismissal, empty when none.
	activeID string
}

// NewStore loads persisted state. Missing or corrupt data degrades to an empty
// list and no active alarm.
func NewStore(ctx context.Context, repo Repository, scheduler Scheduler) *Store {
	ctx = logger.WithName(ctx, "alarm-store")

	s := &Store{
		repo:      repo,
		scheduler: scheduler,
	}

	alarms, err := repo.LoadAlarms(ctx)

	switch {
	case err == nil:
		s.alarms = alarms
	case errors.Is(err, state.ErrNotFound):
		// Keep the empty list.
	default:
		logger.WarnKV(ctx, "Discarding unreadable alarms", "error", err)
	}

	activeID, err := repo.LoadActive(ctx)

	switch {
	case err == nil:
		s.activeID = activeID
	case errors.Is(err, state.ErrNotFound):
	default:
		logger.WarnKV(ctx, "Discarding unreadable active alarm", "error", err)
	}

	logger.InfoKV(ctx, "Alarm store loaded", "alarms", len(s.alarms), "active_alarm_id", s.activeID)

	return s
}

// Add appends the alarm, persists the list and schedules it.
func (s *Store) Add(ctx context.Context, a alarm.Alarm) {
	s.alarms = append(s.alarms, a)
	s.saveAlarms(ctx)
	s.schedule(ctx, a)

	logger.InfoKV(ctx, "Alarm added", "alarm_id", a.ID, "alarm", a.String())
}

// Update replaces the alarm with the same id in place and re-schedules it.
// It reports false and does nothing when the id is unknown.
func (s *Store) Update(ctx context.Context, a alarm.Alarm) bool {
	i := s.index(a.ID)
	if i < 0 {
		logger.DebugKV(ctx, "Ignoring update of unknown alarm", "alarm_id", a.ID)

		return false
	}

	s.alarms[i] = a
	s.saveAlarms(ctx)
	s.scheduler.Cancel(ctx, a.ID)
	s.schedule(ctx, a)

	logger.InfoKV(ctx, "Alarm updated", "alarm_id", a.ID, "alarm", a.String())

	return true
}

// Delete cancels and removes every known alarm among ids and returns how many were removed.
// Removing the active alarm also clears the active pointer.
func (s *Store) Delete(ctx context.Context, ids ...string) int {
	targets := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if s.index(id) < 0 {
			continue
		}

		targets[id] = struct{}{}
		s.scheduler.Cancel(ctx, id)
	}

	if len(targets) == 0 {
		return 0
	}

	s.alarms = slices.DeleteFunc(s.alarms, func(a alarm.Alarm) bool {
		_, ok := targets[a.ID]
		return ok
	})
	s.saveAlarms(ctx)

	if _, ok := targets[s.activeID]; ok {
		s.setActive(ctx, "")
	}

	logger.InfoKV(ctx, "Alarms deleted", "count", len(targets))

	return len(targets)
}

// MarkSpent records that a one-shot alarm has rung so it is not re-armed on restore.
// It reports whether anything changed.
func (s *Store) MarkSpent(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 || s.alarms[i].Repeat != alarm.RepeatOnce || s.alarms[i].Spent {
		return false
	}

	s.alarms[i].Spent = true
	s.saveAlarms(ctx)

	logger.InfoKV(ctx, "One-shot alarm spent", "alarm_id", id)

	return true
}

// Activate marks id as the active alarm without checking that it exists.
func (s *Store) Activate(ctx context.Context, id string) {
	s.setActive(ctx, id)

	logger.InfoKV(ctx, "Alarm activated", "alarm_id", id)
}

// DismissActive cancels the active alarm's triggers when it is known and always
// clears the pointer. It returns the dismissed alarm when it resolved.
func (s *Store) DismissActive(ctx context.Context) (alarm.Alarm, bool) {
	a, ok := s.Active()
	if ok {
		s.scheduler.Cancel(ctx, a.ID)
	}

	logger.InfoKV(ctx, "Active alarm dismissed", "alarm_id", s.activeID, "known", ok)

	s.setActive(ctx, "")

	return a, ok
}

// Alarms returns a copy of the alarm list.
func (s *Store) Alarms() []alarm.Alarm {
	return slices.Clone(s.alarms)
}

// Get looks an alarm up by id.
func (s *Store) Get(id string) (alarm.Alarm, bool) {
	return alarm.Find(s.alarms, id)
}

// ActiveID returns the active pointer, empty when none.
func (s *Store) ActiveID() string {
	return s.activeID
}

// Active resolves the active pointer.
func (s *Store) Active() (alarm.Alarm, bool) {
	if s.activeID == "" {
		return alarm.Alarm{}, false
	}

	return s.Get(s.activeID)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.alarms, func(a alarm.Alarm) bool { return a.ID == id })
}

func (s *Store) schedule(ctx context.Context, a alarm.Alarm) {
	if !a.Armable() {
		return
	}

	if err := s.scheduler.Schedule(ctx, a); err != nil {
		logger.ErrorKV(ctx, "Failed to schedule alarm", "alarm_id", a.ID, "error", err)
	}
}

func (s *Store) setActive(ctx context.Context, id string) {
	s.activeID = id

	if err := s.repo.SaveActive(context.WithoutCancel(ctx), id); err != nil {
		logger.ErrorKV(ctx, "Failed to persist active alarm", "alarm_id", id, "error", err)
	}
}

func (s *Store) saveAlarms(ctx context.Context) {
	if err := s.repo.SaveAlarms(context.WithoutCancel(ctx), s.alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)
	}
}
