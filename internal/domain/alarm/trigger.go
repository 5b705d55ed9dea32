package alarm

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Rule returns the daily recurrence anchored at the alarm time on the day of `from`.
// One-shot alarms reuse the same rule and simply take its first occurrence.
func Rule(a Alarm, from time.Time) (*rrule.RRule, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), a.Hour, a.Minute, 0, 0, from.Location())

	return rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
	})
}

// NextTrigger returns the first occurrence of the alarm strictly after `after`,
// in the location of `after`. A zero time means the rule could not be built.
func NextTrigger(a Alarm, after time.Time) time.Time {
	rule, err := Rule(a, after)
	if err != nil {
		return time.Time{}
	}

	return rule.After(after, false)
}
