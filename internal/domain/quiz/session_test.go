package quiz

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

func testCatalog() []Question {
	return []Question{
		{ID: "e1", Title: "E1", Options: []string{"a", "b"}, CorrectAnswer: 0, Explanation: "e1 why", Difficulty: alarm.DifficultyEasy},
		{ID: "e2", Title: "E2", Options: []string{"a", "b"}, CorrectAnswer: 1, Explanation: "e2 why", Difficulty: alarm.DifficultyEasy},
		{ID: "e3", Title: "E3", Options: []string{"a", "b"}, CorrectAnswer: 1, Explanation: "e3 why", Difficulty: alarm.DifficultyEasy},
		{ID: "h1", Title: "H1", Options: []string{"a", "b", "c"}, CorrectAnswer: 2, Explanation: "h1 why", Difficulty: alarm.DifficultyHard},
		{ID: "h2", Title: "H2", Options: []string{"a", "b", "c"}, CorrectAnswer: 1, Explanation: "h2 why", Difficulty: alarm.DifficultyHard},
	}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// solveCurrent answers the head of the queue correctly.
func solveCurrent(t *testing.T, s *Session) Question {
	t.Helper()

	q, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, OutcomeCorrect, s.Submit(q.CorrectAnswer))

	return q
}

// TestSessionSingleEasy solves one easy question and completes.
func TestSessionSingleEasy(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.Equal(t, PhaseNotStarted, s.Phase())

	require.NoError(t, s.Start(alarm.DifficultyEasy, 1))
	require.Equal(t, PhaseInProgress, s.Phase())
	require.Len(t, s.Queue(), 1)

	q := solveCurrent(t, s)
	require.Equal(t, alarm.DifficultyEasy, q.Difficulty)
	require.True(t, s.Completed())
	require.Equal(t, 1, s.Solved())
	require.Zero(t, s.Remaining())
	require.Equal(t, "Correct! "+q.Explanation, s.Feedback())

	_, ok := s.Current()
	require.False(t, ok)
}

// TestSessionSamplesWithoutReplacement draws distinct questions when the pool is large enough.
func TestSessionSamplesWithoutReplacement(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.NoError(t, s.Start(alarm.DifficultyEasy, 3))

	seen := make(map[string]struct{})
	for _, q := range s.Queue() {
		require.Equal(t, alarm.DifficultyEasy, q.Difficulty)
		seen[q.ID] = struct{}{}
	}

	require.Len(t, seen, 3)
}

// TestSessionCyclesSmallPool repeats questions in catalog order when the pool is too small.
func TestSessionCyclesSmallPool(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.NoError(t, s.Start(alarm.DifficultyHard, 5))

	ids := make([]string, 0, 5)
	for _, q := range s.Queue() {
		ids = append(ids, q.ID)
	}

	require.Equal(t, []string{"h1", "h2", "h1", "h2", "h1"}, ids)

	for range 5 {
		solveCurrent(t, s)
	}

	require.True(t, s.Completed())
	require.Equal(t, 5, s.Solved())
}

// TestSessionWrongAnswerHolds keeps the question current after a miss.
func TestSessionWrongAnswerHolds(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.NoError(t, s.Start(alarm.DifficultyHard, 2))

	q, ok := s.Current()
	require.True(t, ok)

	wrong := (q.CorrectAnswer + 1) % len(q.Options)
	require.Equal(t, OutcomeIncorrect, s.Submit(wrong))
	require.Equal(t, "Not quite. "+q.Explanation, s.Feedback())
	require.Zero(t, s.Solved())

	again, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, q.ID, again.ID)
	require.Equal(t, PhaseInProgress, s.Phase())
}

// TestSessionRequiredClamp treats non-positive counts as one.
func TestSessionRequiredClamp(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.NoError(t, s.Start(alarm.DifficultyEasy, 0))
	require.Equal(t, 1, s.Required())
	require.Len(t, s.Queue(), 1)
}

// TestSessionEmptyPool reports ErrNoQuestions and ignores submissions.
func TestSessionEmptyPool(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.ErrorIs(t, s.Start(alarm.DifficultyMedium, 2), ErrNoQuestions)

	_, ok := s.Current()
	require.False(t, ok)
	require.Equal(t, OutcomeIgnored, s.Submit(0))
	require.False(t, s.Completed())
}

// TestSessionCompletedIsSticky ignores submissions after completion and resets on Start.
func TestSessionCompletedIsSticky(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), seeded())
	require.NoError(t, s.Start(alarm.DifficultyEasy, 1))
	solveCurrent(t, s)

	require.Equal(t, OutcomeIgnored, s.Submit(0))
	require.True(t, s.Completed())

	require.NoError(t, s.Start(alarm.DifficultyHard, 1))
	require.Equal(t, PhaseInProgress, s.Phase())
	require.Zero(t, s.Solved())
	require.Empty(t, s.Feedback())
}

// TestSessionQueueIsCopy protects internal state from callers.
func TestSessionQueueIsCopy(t *testing.T) {
	t.Parallel()

	s := NewSession(testCatalog(), nil)
	require.NoError(t, s.Start(alarm.DifficultyEasy, 2))

	queue := s.Queue()
	queue[0].ID = "mutated"

	q, ok := s.Current()
	require.True(t, ok)
	require.NotEqual(t, "mutated", q.ID)
}

// TestOutcomeNames round-trips outcome names.
func TestOutcomeNames(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeIgnored, OutcomeCorrect, OutcomeIncorrect} {
		require.Equal(t, o, ParseOutcome(o.String()))
	}

	require.Equal(t, OutcomeIgnored, ParseOutcome("bogus"))
	require.Equal(t, "completed", PhaseCompleted.String())
}
