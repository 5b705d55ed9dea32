package quiz

import (
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// Question is an immutable multiple-choice quiz item.
type Question struct {
	// ID is the stable catalog identifier.
	ID string
	// Title is the short problem name.
	Title string
	// Prompt is the problem statement.
	Prompt string
	// Options are the answer choices in display order.
	Options []string
	// CorrectAnswer is the index of the right option.
	CorrectAnswer int
	// Explanation is shown after every submission.
	Explanation string
	// Difficulty is the tier the question belongs to.
	Difficulty alarm.Difficulty
}

// IsCorrect reports whether the given option index answers the question.
func (q *Question) IsCorrect(answer int) bool {
	return answer == q.CorrectAnswer
}

// Valid reports whether the question has options and an in-range answer.
func (q *Question) Valid() bool {
	return len(q.Options) > 0 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// Filter returns the catalog questions of the given difficulty, in catalog order.
func Filter(catalog []Question, difficulty alarm.Difficulty) []Question {
	filtered := make([]Question, 0, len(catalog))

	for _, q := range catalog {
		if q.Difficulty == difficulty {
			filtered = append(filtered, q)
		}
	}

	return filtered
}
