package quiz

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	// PhaseNotStarted means Start has never been called.
	PhaseNotStarted Phase = iota
	// PhaseInProgress means questions remain to be solved.
	PhaseInProgress
	// PhaseCompleted means the required count was reached; terminal until the next Start.
	PhaseCompleted
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

// Outcome is the result of a single submission.
type Outcome int

const (
	// OutcomeIgnored means there was no current question.
	OutcomeIgnored Outcome = iota
	// OutcomeCorrect means the answer matched and the queue advanced.
	OutcomeCorrect
	// OutcomeIncorrect means the answer was wrong and the question stays current.
	OutcomeIncorrect
)

// String returns the outcome name used on the wire and in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "ignored"
	}
}

// ParseOutcome is the inverse of Outcome.String. Unknown names map to OutcomeIgnored.
func ParseOutcome(s string) Outcome {
	switch s {
	case "correct":
		return OutcomeCorrect
	case "incorrect":
		return OutcomeIncorrect
	default:
		return OutcomeIgnored
	}
}

const (
	correctPrefix   = "Correct! "
	incorrectPrefix = "Not quite. "
)

var (
	// ErrNoQuestions is returned by Start when the catalog has no question of the requested difficulty.
	ErrNoQuestions = errors.New("no questions for difficulty")
	// ErrNoChallenge is returned when an answer arrives while no challenge is running.
	ErrNoChallenge = errors.New("no challenge in progress")
	// ErrChallengeIncomplete is returned when dismissal is attempted before the challenge is solved.
	ErrChallengeIncomplete = errors.New("challenge is not completed")
)

// Session tracks one challenge run. It is not safe for concurrent use.
type Session struct {
	// catalog is the pool questions are drawn from.
	catalog []Question
	// rng shuffles samples; nil uses the package-level source.
	rng *rand.Rand

	// phase is the lifecycle position.
	phase Phase
	// difficulty is the tier of the current run.
	difficulty alarm.Difficulty
	// required is the number of correct answers needed.
	required int
	// solved is the number of correct answers so far.
	solved int
	// queue holds the questions still to be answered, head first.
	queue []Question
	// feedback is the message produced by the last submission.
	feedback string
}

// NewSession creates a session over the catalog. Pass a seeded rng for reproducible draws.
func NewSession(catalog []Question, rng *rand.Rand) *Session {
	return &Session{
		catalog: catalog,
		rng:     rng,
	}
}

// Start resets progress and draws max(1, required) questions of the given difficulty.
// When the difficulty has no questions the queue stays empty and ErrNoQuestions is returned.
func (s *Session) Start(difficulty alarm.Difficulty, required int) error {
	s.phase = PhaseInProgress
	s.difficulty = difficulty
	s.required = max(1, required)
	s.solved = 0
	s.feedback = ""
	s.queue = s.draw(difficulty, s.required)

	if len(s.queue) == 0 {
		return ErrNoQuestions
	}

	return nil
}

// draw samples without replacement when the pool is large enough,
// otherwise cycles the pool in catalog order.
func (s *Session) draw(difficulty alarm.Difficulty, count int) []Question {
	filtered := Filter(s.catalog, difficulty)
	if len(filtered) == 0 {
		return nil
	}

	if len(filtered) >= count {
		s.shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})

		return filtered[:count:count]
	}

	queue := make([]Question, 0, count)
	for len(queue) < count {
		queue = append(queue, filtered...)
	}

	return queue[:count:count]
}

func (s *Session) shuffle(n int, swap func(i, j int)) {
	if s.rng != nil {
		s.rng.Shuffle(n, swap)
		return
	}

	rand.Shuffle(n, swap)
}

// Current returns the question at the head of the queue.
func (s *Session) Current() (Question, bool) {
	if len(s.queue) == 0 {
		return Question{}, false
	}

	return s.queue[0], true
}

// Submit checks an answer for the current question.
func (s *Session) Submit(answer int) Outcome {
	current, ok := s.Current()
	if !ok {
		return OutcomeIgnored
	}

	if !current.IsCorrect(answer) {
		s.feedback = incorrectPrefix + current.Explanation
		return OutcomeIncorrect
	}

	s.solved++
	s.feedback = correctPrefix + current.Explanation
	s.queue = s.queue[1:]

	if s.solved >= s.required {
		s.phase = PhaseCompleted
	}

	return OutcomeCorrect
}

// Phase returns the lifecycle position.
func (s *Session) Phase() Phase { return s.phase }

// Completed reports whether the required count has been reached.
func (s *Session) Completed() bool { return s.phase == PhaseCompleted }

// Difficulty returns the tier of the current run.
func (s *Session) Difficulty() alarm.Difficulty { return s.difficulty }

// Required returns the number of correct answers needed.
func (s *Session) Required() int { return s.required }

// Solved returns the number of correct answers so far.
func (s *Session) Solved() int { return s.solved }

// Remaining returns how many correct answers are still needed.
func (s *Session) Remaining() int { return max(0, s.required-s.solved) }

// Feedback returns the last submission message, empty when there is none.
func (s *Session) Feedback() string { return s.feedback }

// Queue returns a copy of the questions left to answer.
func (s *Session) Queue() []Question { return slices.Clone(s.queue) }
