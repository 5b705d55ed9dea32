package codec

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

const (
	fieldRevision      = "revision"
	fieldAlarms        = "alarms"
	fieldActiveAlarmID = "active_alarm_id"
	fieldActiveAlarm   = "active_alarm"
	fieldChallenge     = "challenge"

	fieldAlarmID   = "alarm_id"
	fieldCurrent   = "current"
	fieldSolved    = "solved"
	fieldRequired  = "required"
	fieldRemaining = "remaining"
	fieldCompleted = "completed"
	fieldFeedback  = "feedback"

	fieldTitle   = "title"
	fieldPrompt  = "prompt"
	fieldOptions = "options"
)

// SnapshotToStruct encodes a snapshot. Nil members are encoded as null.
func SnapshotToStruct(s view.Snapshot) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldRevision:      structpb.NewNumberValue(float64(s.Revision)),
		fieldAlarms:        structpb.NewListValue(AlarmsToList(s.Alarms)),
		fieldActiveAlarmID: structpb.NewStringValue(s.ActiveAlarmID),
		fieldActiveAlarm:   structpb.NewNullValue(),
		fieldChallenge:     structpb.NewNullValue(),
	}

	if s.ActiveAlarm != nil {
		fields[fieldActiveAlarm] = structpb.NewStructValue(AlarmToStruct(*s.ActiveAlarm))
	}

	if s.Challenge != nil {
		fields[fieldChallenge] = structpb.NewStructValue(challengeToStruct(s.Challenge))
	}

	return &structpb.Struct{Fields: fields}
}

// SnapshotFromStruct decodes a snapshot.
func SnapshotFromStruct(st *structpb.Struct) (view.Snapshot, error) {
	fields := st.GetFields()

	revision, err := intField(fields, fieldRevision)
	if err != nil {
		return view.Snapshot{}, err
	}

	alarms, err := AlarmsFromList(fields[fieldAlarms].GetListValue())
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("decode alarms: %w", err)
	}

	activeID, err := optionalString(fields, fieldActiveAlarmID)
	if err != nil {
		return view.Snapshot{}, err
	}

	s := view.Snapshot{
		Revision:      uint64(max(0, revision)), //nolint:gosec // checked non-negative
		Alarms:        alarms,
		ActiveAlarmID: activeID,
	}

	if v := fields[fieldActiveAlarm]; !isAbsent(v) {
		a, err := AlarmFromStruct(v.GetStructValue())
		if err != nil {
			return view.Snapshot{}, fmt.Errorf("decode active alarm: %w", err)
		}

		s.ActiveAlarm = &a
	}

	if v := fields[fieldChallenge]; !isAbsent(v) {
		c, err := challengeFromStruct(v.GetStructValue())
		if err != nil {
			return view.Snapshot{}, fmt.Errorf("decode challenge: %w", err)
		}

		s.Challenge = c
	}

	return s, nil
}

func challengeToStruct(c *view.Challenge) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldAlarmID:    structpb.NewStringValue(c.AlarmID),
		fieldDifficulty: structpb.NewStringValue(string(c.Difficulty)),
		fieldCurrent:    structpb.NewNullValue(),
		fieldSolved:     structpb.NewNumberValue(float64(c.Solved)),
		fieldRequired:   structpb.NewNumberValue(float64(c.Required)),
		fieldRemaining:  structpb.NewNumberValue(float64(c.Remaining)),
		fieldCompleted:  structpb.NewBoolValue(c.Completed),
		fieldFeedback:   structpb.NewStringValue(c.Feedback),
	}

	if c.Current != nil {
		fields[fieldCurrent] = structpb.NewStructValue(questionToStruct(c.Current))
	}

	return &structpb.Struct{Fields: fields}
}

func challengeFromStruct(st *structpb.Struct) (*view.Challenge, error) {
	fields := st.GetFields()

	var (
		c   view.Challenge
		err error
	)

	if c.AlarmID, err = stringField(fields, fieldAlarmID); err != nil {
		return nil, err
	}

	difficulty, err := stringField(fields, fieldDifficulty)
	if err != nil {
		return nil, err
	}

	c.Difficulty = alarm.Difficulty(difficulty)

	if c.Solved, err = intField(fields, fieldSolved); err != nil {
		return nil, err
	}

	if c.Required, err = intField(fields, fieldRequired); err != nil {
		return nil, err
	}

	if c.Remaining, err = intField(fields, fieldRemaining); err != nil {
		return nil, err
	}

	c.Completed = fields[fieldCompleted].GetBoolValue()

	if c.Feedback, err = optionalString(fields, fieldFeedback); err != nil {
		return nil, err
	}

	if v := fields[fieldCurrent]; !isAbsent(v) {
		if c.Current, err = questionFromStruct(v.GetStructValue()); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
	}

	return &c, nil
}

func questionToStruct(q *view.Question) *structpb.Struct {
	options := make([]*structpb.Value, 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, structpb.NewStringValue(o))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldID:         structpb.NewStringValue(q.ID),
			fieldTitle:      structpb.NewStringValue(q.Title),
			fieldPrompt:     structpb.NewStringValue(q.Prompt),
			fieldOptions:    structpb.NewListValue(&structpb.ListValue{Values: options}),
			fieldDifficulty: structpb.NewStringValue(string(q.Difficulty)),
		},
	}
}

func questionFromStruct(st *structpb.Struct) (*view.Question, error) {
	fields := st.GetFields()

	var (
		q   view.Question
		err error
	)

	if q.ID, err = stringField(fields, fieldID); err != nil {
		return nil, err
	}

	if q.Title, err = optionalString(fields, fieldTitle); err != nil {
		return nil, err
	}

	if q.Prompt, err = optionalString(fields, fieldPrompt); err != nil {
		return nil, err
	}

	difficulty, err := optionalString(fields, fieldDifficulty)
	if err != nil {
		return nil, err
	}

	q.Difficulty = alarm.Difficulty(difficulty)

	for i, v := range fields[fieldOptions].GetListValue().GetValues() {
		o, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("option %d: %w", i, ErrWrongKind)
		}

		q.Options = append(q.Options, o.StringValue)
	}

	return &q, nil
}
