package view

import (
	"slices"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
)

// Snapshot is the full state as of one mutation.
type Snapshot struct {
	// Revision increases with every published mutation.
	Revision uint64
	// Alarms is the configured alarm list in display order.
	Alarms []alarm.Alarm
	// ActiveAlarmID is the persisted active pointer, empty when none.
	ActiveAlarmID string
	// ActiveAlarm is the alarm ActiveAlarmID resolves to, nil for unknown ids.
	ActiveAlarm *alarm.Alarm
	// Challenge is the running challenge, nil when none exists.
	Challenge *Challenge
}

// Challenge is the presentation view of a quiz session.
type Challenge struct {
	// AlarmID is the alarm the challenge belongs to.
	AlarmID string
	// Difficulty is the question tier.
	Difficulty alarm.Difficulty
	// Current is the question to answer, nil when the queue is empty.
	Current *Question
	// Solved is the number of correct answers so far.
	Solved int
	// Required is the number of correct answers needed.
	Required int
	// Remaining is Required minus Solved.
	Remaining int
	// Completed reports whether the alarm may be dismissed.
	Completed bool
	// Feedback is the message for the last submission.
	Feedback string
}

// Question is a quiz question without its answer or explanation.
type Question struct {
	// ID is the catalog identifier.
	ID string
	// Title is the short problem name.
	Title string
	// Prompt is the problem statement.
	Prompt string
	// Options are the answer choices in display order.
	Options []string
	// Difficulty is the quiz tier.
	Difficulty alarm.Difficulty
}

// QuestionFrom strips the answer from a catalog question.
func QuestionFrom(q quiz.Question) *Question {
	return &Question{
		ID:         q.ID,
		Title:      q.Title,
		Prompt:     q.Prompt,
		Options:    slices.Clone(q.Options),
		Difficulty: q.Difficulty,
	}
}

// ChallengeFrom builds the view of a session for the given alarm.
func ChallengeFrom(alarmID string, s *quiz.Session) *Challenge {
	if s == nil {
		return nil
	}

	c := &Challenge{
		AlarmID:    alarmID,
		Difficulty: s.Difficulty(),
		Solved:     s.Solved(),
		Required:   s.Required(),
		Remaining:  s.Remaining(),
		Completed:  s.Completed(),
		Feedback:   s.Feedback(),
	}

	if q, ok := s.Current(); ok {
		c.Current = QuestionFrom(q)
	}

	return c
}
