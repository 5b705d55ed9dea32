package leetalarm

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/leet-alarm/internal/codec"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

const (
	fieldAlarm   = "alarm"
	fieldState   = "state"
	fieldOutcome = "outcome"
)

// AlarmResult is the decoded AddAlarm response.
type AlarmResult struct {
	// Alarm is the created alarm.
	Alarm alarm.Alarm
	// State is the snapshot after the mutation.
	State view.Snapshot
}

// AnswerResult is the decoded SubmitAnswer response.
type AnswerResult struct {
	// Outcome tells whether the answer was correct.
	Outcome quiz.Outcome
	// State is the snapshot after the submission.
	State view.Snapshot
}

func alarmResponse(a alarm.Alarm, snap view.Snapshot) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldAlarm: structpb.NewStructValue(codec.AlarmToStruct(a)),
			fieldState: structpb.NewStructValue(codec.SnapshotToStruct(snap)),
		},
	}
}

func answerResponse(outcome quiz.Outcome, snap view.Snapshot) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldOutcome: structpb.NewStringValue(outcome.String()),
			fieldState:   structpb.NewStructValue(codec.SnapshotToStruct(snap)),
		},
	}
}

// DecodeAlarmResult parses an AddAlarm response.
func DecodeAlarmResult(s *structpb.Struct) (AlarmResult, error) {
	a, err := codec.AlarmFromStruct(s.GetFields()[fieldAlarm].GetStructValue())
	if err != nil {
		return AlarmResult{}, fmt.Errorf("decode alarm: %w", err)
	}

	snap, err := codec.SnapshotFromStruct(s.GetFields()[fieldState].GetStructValue())
	if err != nil {
		return AlarmResult{}, fmt.Errorf("decode state: %w", err)
	}

	return AlarmResult{Alarm: a, State: snap}, nil
}

// DecodeAnswerResult parses a SubmitAnswer response.
func DecodeAnswerResult(s *structpb.Struct) (AnswerResult, error) {
	snap, err := codec.SnapshotFromStruct(s.GetFields()[fieldState].GetStructValue())
	if err != nil {
		return AnswerResult{}, fmt.Errorf("decode state: %w", err)
	}

	return AnswerResult{
		Outcome: quiz.ParseOutcome(s.GetFields()[fieldOutcome].GetStringValue()),
		State:   snap,
	}, nil
}

// IDsToList encodes alarm ids for DeleteAlarms.
func IDsToList(ids []string) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(ids))
	for _, id := range ids {
		values = append(values, structpb.NewStringValue(id))
	}

	return &structpb.ListValue{Values: values}
}

func idsFromList(l *structpb.ListValue) ([]string, error) {
	ids := make([]string, 0, len(l.GetValues()))

	for i, v := range l.GetValues() {
		id, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("id %d: %w", i, codec.ErrWrongKind)
		}

		ids = append(ids, id.StringValue)
	}

	return ids, nil
}
