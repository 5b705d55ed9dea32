package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// ProductID identifies the generator in exported feeds.
const ProductID = "-//leet-alarm//leet-alarm//EN"

const (
	alarmDescription = "Solve the challenge to dismiss your alarm."
	triggerAtStart   = "PT0S"
	actionDisplay    = "DISPLAY"

	utcDateTimeLayout   = "20060102T150405Z"
	localDateTimeLayout = "20060102T150405"
)

// Build creates a calendar with the next occurrence of every alarm after now, in loc.
func Build(alarms []alarm.Alarm, now time.Time, loc *time.Location) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	local := now.In(loc)

	for _, a := range alarms {
		if a.Spent {
			continue
		}

		start := alarm.NextTrigger(a, local)
		if start.IsZero() {
			continue
		}

		cal.Children = append(cal.Children, event(a, start, now, loc).Component)
	}

	return cal
}

// Encode writes the calendar for alarms to w.
func Encode(w io.Writer, alarms []alarm.Alarm, now time.Time, loc *time.Location) error {
	if err := ical.NewEncoder(w).Encode(Build(alarms, now, loc)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	return nil
}

func event(a alarm.Alarm, start, stamp time.Time, loc *time.Location) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, a.ID)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ev.Props.Set(startProp(start, loc))
	ev.Props.SetText(ical.PropSummary, fmt.Sprintf("Leet Alarm %s (%s, %d question(s))",
		a.TimeLabel(), a.Difficulty.DisplayName(), a.QuestionsRequired))

	if a.Repeat == alarm.RepeatDaily {
		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = (&rrule.ROption{Freq: rrule.DAILY}).RRuleString()
		ev.Props.Set(rule)
	}

	valarm := ical.NewComponent(ical.CompAlarm)
	valarm.Props.SetText(ical.PropAction, actionDisplay)
	valarm.Props.SetText(ical.PropDescription, alarmDescription)

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = triggerAtStart
	valarm.Props.Set(trigger)

	ev.Children = append(ev.Children, valarm)

	return ev
}

// startProp keeps DTSTART on the alarm's wall clock so daily recurrences
// stay at the same local time across DST changes.
// Zones without an IANA name are written as floating time.
func startProp(start time.Time, loc *time.Location) *ical.Prop {
	prop := ical.NewProp(ical.PropDateTimeStart)
	start = start.In(loc)

	switch name := loc.String(); {
	case loc == time.UTC:
		prop.Value = start.Format(utcDateTimeLayout)
	case name == "" || name == "Local":
		prop.Value = start.Format(localDateTimeLayout)
	default:
		prop.Params.Set(ical.ParamTimezoneID, name)
		prop.Value = start.Format(localDateTimeLayout)
	}

	return prop
}
