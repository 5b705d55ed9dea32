package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDraftBuild_Defaults checks defaults and id generation for a new alarm.
func TestDraftBuild_Defaults(t *testing.T) {
	t.Parallel()

	var d Draft
	require.NoError(t, d.SetTime("07:45"))

	a, err := d.Build()
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, 7, a.Hour)
	require.Equal(t, 45, a.Minute)
	require.Equal(t, RepeatOnce, a.Repeat)
	require.Equal(t, DifficultyEasy, a.Difficulty)
	require.Equal(t, 1, a.QuestionsRequired)
	require.NoError(t, a.Validate())
}

// TestDraftBuild_MissingTime aborts the save when hour or minute is absent.
func TestDraftBuild_MissingTime(t *testing.T) {
	t.Parallel()

	hour := 6
	d := Draft{Hour: &hour}

	_, err := d.Build()
	require.ErrorIs(t, err, ErrInvalidDraft)

	_, err = (&Draft{}).Build()
	require.ErrorIs(t, err, ErrInvalidDraft)
}

// TestDraftBuild_Midnight accepts zero hour and minute when they are set.
func TestDraftBuild_Midnight(t *testing.T) {
	t.Parallel()

	var d Draft
	require.NoError(t, d.SetTime("00:00"))

	a, err := d.Build()
	require.NoError(t, err)
	require.Zero(t, a.Hour)
	require.Zero(t, a.Minute)
}

// TestDraftBuild_ClampsQuestions keeps the editor range 1-10.
func TestDraftBuild_ClampsQuestions(t *testing.T) {
	t.Parallel()

	var d Draft
	require.NoError(t, d.SetTime("09:00"))

	d.QuestionsRequired = 42
	a, err := d.Build()
	require.NoError(t, err)
	require.Equal(t, MaxQuestions, a.QuestionsRequired)

	d.QuestionsRequired = -3
	_, err = d.Build()
	require.Error(t, err)
}

// TestDraftBuild_RejectsUnknownEnums validates repeat and difficulty names.
func TestDraftBuild_RejectsUnknownEnums(t *testing.T) {
	t.Parallel()

	var d Draft
	require.NoError(t, d.SetTime("09:00"))

	d.Repeat = "hourly"
	_, err := d.Build()
	require.Error(t, err)

	d.Repeat = RepeatDaily
	d.Difficulty = "insane"
	_, err = d.Build()
	require.Error(t, err)
}

// TestDraftFrom_KeepsID round-trips an existing alarm through the editor.
func TestDraftFrom_KeepsID(t *testing.T) {
	t.Parallel()

	original := Alarm{
		ID:                NewID(),
		Hour:              22,
		Minute:            15,
		Repeat:            RepeatDaily,
		Difficulty:        DifficultyHard,
		QuestionsRequired: 4,
	}

	d := DraftFrom(original)
	d.Difficulty = DifficultyMedium

	edited, err := d.Build()
	require.NoError(t, err)
	require.Equal(t, original.ID, edited.ID)
	require.Equal(t, DifficultyMedium, edited.Difficulty)
	require.Equal(t, original.Hour, edited.Hour)
}

// TestSetTime_Invalid reports malformed input.
func TestSetTime_Invalid(t *testing.T) {
	t.Parallel()

	var d Draft

	require.ErrorIs(t, d.SetTime("25:00"), ErrInvalidTime)
	require.ErrorIs(t, d.SetTime("seven"), ErrInvalidTime)
	require.Nil(t, d.Hour)
}
