package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNextTrigger covers same-day, next-day and exact-match cases.
func TestNextTrigger(t *testing.T) {
	t.Parallel()

	a := Alarm{Hour: 7, Minute: 30}
	day := func(d, h, m int) time.Time { return time.Date(2026, time.October, d, h, m, 0, 0, time.UTC) }

	require.Equal(t, day(18, 7, 30), NextTrigger(a, day(18, 6, 0)))
	require.Equal(t, day(19, 7, 30), NextTrigger(a, day(18, 8, 0)))
	require.Equal(t, day(19, 7, 30), NextTrigger(a, day(18, 7, 30)))
}

// TestNextTrigger_KeepsLocation evaluates wall-clock time in the caller's location.
func TestNextTrigger_KeepsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	a := Alarm{Hour: 6, Minute: 0}

	next := NextTrigger(a, time.Date(2026, time.October, 18, 23, 0, 0, 0, loc))
	require.Equal(t, 6, next.In(loc).Hour())
	require.Equal(t, 19, next.In(loc).Day())
}
