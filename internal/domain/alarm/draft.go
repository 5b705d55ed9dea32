package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is shared because validator caches struct metadata.
//
//nolint:gochecknoglobals // Validator instances are meant to be reused.
var validate = validator.New()

var (
	// ErrInvalidTime is returned when an HH:MM string cannot be parsed.
	ErrInvalidTime = errors.New("time must be in HH:MM format")
	// ErrInvalidDraft wraps every editor validation failure.
	ErrInvalidDraft = errors.New("invalid alarm draft")
	// ErrMissingID is returned when an edit does not name the alarm.
	ErrMissingID = errors.New("alarm id is required")
)

// Draft is editor input for creating or editing an alarm.
// Hour and Minute are pointers so a missing value can be told apart from midnight.
type Draft struct {
	// ID is empty for new alarms and set when editing.
	ID string `validate:"omitempty,uuid"`
	// Hour is the wall-clock hour.
	Hour *int `validate:"required,min=0,max=23"`
	// Minute is the wall-clock minute.
	Minute *int `validate:"required,min=0,max=59"`
	// Repeat defaults to once.
	Repeat Repeat `validate:"omitempty,oneof=once daily"`
	// Difficulty defaults to easy.
	Difficulty Difficulty `validate:"omitempty,oneof=easy medium hard"`
	// QuestionsRequired defaults to one and is clamped to the editor range.
	QuestionsRequired int `validate:"min=0"`
}

// DraftFrom returns a draft pre-filled from an existing alarm.
func DraftFrom(a Alarm) Draft {
	hour, minute := a.Hour, a.Minute

	return Draft{
		ID:                a.ID,
		Hour:              &hour,
		Minute:            &minute,
		Repeat:            a.Repeat,
		Difficulty:        a.Difficulty,
		QuestionsRequired: a.QuestionsRequired,
	}
}

// SetTime parses an HH:MM string into the draft.
func (d *Draft) SetTime(value string) error {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}

	hour, minute := parsed.Hour(), parsed.Minute()
	d.Hour, d.Minute = &hour, &minute

	return nil
}

// Build validates the draft and produces an alarm. New drafts get a fresh id.
// A failed build never yields a partially filled alarm.
func (d *Draft) Build() (Alarm, error) {
	if err := validate.Struct(d); err != nil {
		return Alarm{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	result := Alarm{
		ID:                d.ID,
		Hour:              *d.Hour,
		Minute:            *d.Minute,
		Repeat:            d.Repeat,
		Difficulty:        d.Difficulty,
		QuestionsRequired: min(max(d.QuestionsRequired, MinQuestions), MaxQuestions),
	}

	if result.ID == "" {
		result.ID = NewID()
	}

	if result.Repeat == "" {
		result.Repeat = RepeatOnce
	}

	if result.Difficulty == "" {
		result.Difficulty = DifficultyEasy
	}

	return result, nil
}
