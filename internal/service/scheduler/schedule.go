package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// onceSchedule fires a single time.
type onceSchedule struct {
	at time.Time
}

// Next returns the instant until it has passed, then the zero time.
func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}

	return time.Time{}
}

// dailySpec is the cron expression for an alarm's wall-clock time.
func dailySpec(a alarm.Alarm) string {
	return fmt.Sprintf("%d %d * * *", a.Minute, a.Hour)
}

// scheduleFor builds the cron schedule of an alarm as seen at now.
func scheduleFor(a alarm.Alarm, now time.Time) (cron.Schedule, error) {
	switch a.Repeat {
	case alarm.RepeatDaily:
		spec, err := cron.ParseStandard(dailySpec(a))
		if err != nil {
			return nil, fmt.Errorf("parse cron spec: %w", err)
		}

		return spec, nil
	case alarm.RepeatOnce:
		at := alarm.NextTrigger(a, now)
		if at.IsZero() {
			return nil, fmt.Errorf("%w: %s", errNoOccurrence, a.TimeLabel())
		}

		return onceSchedule{at: at}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownRepeat, a.Repeat)
	}
}
