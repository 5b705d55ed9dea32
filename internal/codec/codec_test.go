package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

func sampleAlarm() alarm.Alarm {
	return alarm.Alarm{
		ID:                alarm.NewID(),
		Hour:              6,
		Minute:            45,
		Repeat:            alarm.RepeatDaily,
		Difficulty:        alarm.DifficultyHard,
		QuestionsRequired: 3,
	}
}

// TestAlarmsThroughJSON checks the persisted form is a plain JSON array that decodes back.
func TestAlarmsThroughJSON(t *testing.T) {
	t.Parallel()

	spent := sampleAlarm()
	spent.Repeat = alarm.RepeatOnce
	spent.Spent = true

	want := []alarm.Alarm{sampleAlarm(), spent}

	data, err := protojson.Marshal(AlarmsToList(want))
	require.NoError(t, err)
	require.Equal(t, byte('['), data[0])

	var decoded structpb.ListValue
	require.NoError(t, protojson.Unmarshal(data, &decoded))

	got, err := AlarmsFromList(&decoded)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestAlarmFromStructRejectsBadInput covers wrong kinds, fractions and range checks.
func TestAlarmFromStructRejectsBadInput(t *testing.T) {
	t.Parallel()

	s := AlarmToStruct(sampleAlarm())
	s.Fields[fieldHour] = structpb.NewStringValue("six")
	_, err := AlarmFromStruct(s)
	require.ErrorIs(t, err, ErrWrongKind)

	s = AlarmToStruct(sampleAlarm())
	s.Fields[fieldMinute] = structpb.NewNumberValue(1.5)
	_, err = AlarmFromStruct(s)
	require.ErrorIs(t, err, ErrNotInteger)

	s = AlarmToStruct(sampleAlarm())
	s.Fields[fieldHour] = structpb.NewNumberValue(25)
	_, err = AlarmFromStruct(s)
	require.Error(t, err)

	s = AlarmToStruct(sampleAlarm())
	s.Fields[fieldSpent] = structpb.NewStringValue("yes")
	_, err = AlarmFromStruct(s)
	require.ErrorIs(t, err, ErrWrongKind)

	_, err = AlarmsFromList(&structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("x")}})
	require.ErrorIs(t, err, ErrWrongKind)
}

// TestDraftKeepsMissingTime leaves absent hour and minute as nil.
func TestDraftKeepsMissingTime(t *testing.T) {
	t.Parallel()

	hour := 7
	d, err := DraftFromStruct(DraftToStruct(alarm.Draft{Hour: &hour, QuestionsRequired: 2}))
	require.NoError(t, err)
	require.NotNil(t, d.Hour)
	require.Equal(t, 7, *d.Hour)
	require.Nil(t, d.Minute)
	require.Equal(t, 2, d.QuestionsRequired)
	require.Empty(t, d.ID)

	s := DraftToStruct(alarm.Draft{})
	s.Fields[fieldMinute] = structpb.NewNullValue()
	d, err = DraftFromStruct(s)
	require.NoError(t, err)
	require.Nil(t, d.Minute)
}

// TestSnapshotRoundTrip carries the challenge view without answers.
func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	a := sampleAlarm()
	want := view.Snapshot{
		Revision:      4,
		Alarms:        []alarm.Alarm{a},
		ActiveAlarmID: a.ID,
		ActiveAlarm:   &a,
		Challenge: &view.Challenge{
			AlarmID:    a.ID,
			Difficulty: a.Difficulty,
			Current: &view.Question{
				ID:         "word-ladder",
				Title:      "Word Ladder",
				Prompt:     "Find the shortest transformation sequence.",
				Options:    []string{"DFS", "BFS"},
				Difficulty: alarm.DifficultyHard,
			},
			Solved:    1,
			Required:  3,
			Remaining: 2,
			Feedback:  "Correct! nice",
		},
	}

	got, err := SnapshotFromStruct(SnapshotToStruct(want))
	require.NoError(t, err)
	require.Equal(t, want, got)

	empty, err := SnapshotFromStruct(SnapshotToStruct(view.Snapshot{}))
	require.NoError(t, err)
	require.Nil(t, empty.ActiveAlarm)
	require.Nil(t, empty.Challenge)
	require.Empty(t, empty.Alarms)
}
