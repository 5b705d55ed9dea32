package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Repeat controls whether an alarm fires once or every day.
type Repeat string

const (
	// RepeatOnce fires a single time at the next matching wall-clock time.
	RepeatOnce Repeat = "once"
	// RepeatDaily fires every day at the same wall-clock time.
	RepeatDaily Repeat = "daily"
)

// Description returns the label shown next to an alarm.
func (r Repeat) Description() string {
	switch r {
	case RepeatDaily:
		return "Daily"
	case RepeatOnce:
		return "Once"
	default:
		return string(r)
	}
}

// Difficulty is the quiz tier that must be answered to dismiss an alarm.
type Difficulty string

const (
	// DifficultyEasy selects easy questions.
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium selects medium questions.
	DifficultyMedium Difficulty = "medium"
	// DifficultyHard selects hard questions.
	DifficultyHard Difficulty = "hard"
)

// Difficulties lists every tier in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// DisplayName returns the capitalized tier name.
func (d Difficulty) DisplayName() string {
	if d == "" {
		return ""
	}

	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

const (
	// MinQuestions is the smallest number of questions an alarm may require.
	MinQuestions = 1
	// MaxQuestions is the editor's upper bound for required questions.
	MaxQuestions = 10
)

// Alarm is a configured wake-up.
type Alarm struct {
	// ID is the stable unique identifier (UUID string).
	ID string `json:"id" validate:"required,uuid"`
	// Hour is the wall-clock hour, 0-23.
	Hour int `json:"hour" validate:"min=0,max=23"`
	// Minute is the wall-clock minute, 0-59.
	Minute int `json:"minute" validate:"min=0,max=59"`
	// Repeat selects one-shot or daily delivery.
	Repeat Repeat `json:"repeat" validate:"oneof=once daily"`
	// Difficulty selects the quiz tier of the dismissal challenge.
	Difficulty Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
	// QuestionsRequired is how many correct answers dismiss the alarm.
	QuestionsRequired int `json:"questions_required" validate:"min=1"`
	// Spent marks a one-shot alarm that has already rung. It is not re-armed until edited.
	Spent bool `json:"spent,omitempty"`
}

// Armable reports whether the alarm should have a pending trigger.
func (a Alarm) Armable() bool {
	return !(a.Repeat == RepeatOnce && a.Spent)
}

// ErrUnknownAlarm is returned when an id does not resolve to a configured alarm.
var ErrUnknownAlarm = errors.New("unknown alarm")

// NewID returns a fresh alarm identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the alarm invariants.
func (a Alarm) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid alarm: %w", err)
	}

	return nil
}

// TimeLabel renders the wall-clock time as HH:MM.
func (a Alarm) TimeLabel() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// String renders a one-line summary for logs and the CLI.
func (a Alarm) String() string {
	return fmt.Sprintf("%s %s %s x%d", a.TimeLabel(), a.Repeat.Description(), a.Difficulty.DisplayName(), a.QuestionsRequired)
}

// Find returns the alarm with the given id.
func Find(alarms []Alarm, id string) (Alarm, bool) {
	idx := slices.IndexFunc(alarms, func(a Alarm) bool { return a.ID == id })
	if idx < 0 {
		return Alarm{}, false
	}

	return alarms[idx], true
}
