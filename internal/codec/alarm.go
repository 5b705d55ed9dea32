package codec

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
)

// Field names shared by every encoded alarm.
const (
	fieldID                = "id"
	fieldHour              = "hour"
	fieldMinute            = "minute"
	fieldRepeat            = "repeat"
	fieldDifficulty        = "difficulty"
	fieldQuestionsRequired = "questions_required"
	fieldSpent             = "spent"
)

var (
	// ErrNotInteger is returned when a numeric field carries a fraction.
	ErrNotInteger = errors.New("value is not an integer")
	// ErrWrongKind is returned when a field has an unexpected value kind.
	ErrWrongKind = errors.New("unexpected value kind")
)

// AlarmToStruct encodes an alarm.
func AlarmToStruct(a alarm.Alarm) *structpb.Struct {
	s := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldID:                structpb.NewStringValue(a.ID),
			fieldHour:              structpb.NewNumberValue(float64(a.Hour)),
			fieldMinute:            structpb.NewNumberValue(float64(a.Minute)),
			fieldRepeat:            structpb.NewStringValue(string(a.Repeat)),
			fieldDifficulty:        structpb.NewStringValue(string(a.Difficulty)),
			fieldQuestionsRequired: structpb.NewNumberValue(float64(a.QuestionsRequired)),
		},
	}

	if a.Spent {
		s.Fields[fieldSpent] = structpb.NewBoolValue(true)
	}

	return s
}

// AlarmFromStruct decodes and validates an alarm.
func AlarmFromStruct(s *structpb.Struct) (alarm.Alarm, error) {
	fields := s.GetFields()

	var (
		a   alarm.Alarm
		err error
	)

	if a.ID, err = stringField(fields, fieldID); err != nil {
		return alarm.Alarm{}, err
	}

	if a.Hour, err = intField(fields, fieldHour); err != nil {
		return alarm.Alarm{}, err
	}

	if a.Minute, err = intField(fields, fieldMinute); err != nil {
		return alarm.Alarm{}, err
	}

	repeat, err := stringField(fields, fieldRepeat)
	if err != nil {
		return alarm.Alarm{}, err
	}

	difficulty, err := stringField(fields, fieldDifficulty)
	if err != nil {
		return alarm.Alarm{}, err
	}

	a.Repeat = alarm.Repeat(repeat)
	a.Difficulty = alarm.Difficulty(difficulty)

	if a.QuestionsRequired, err = intField(fields, fieldQuestionsRequired); err != nil {
		return alarm.Alarm{}, err
	}

	if a.Spent, err = optionalBool(fields, fieldSpent); err != nil {
		return alarm.Alarm{}, err
	}

	if err = a.Validate(); err != nil {
		return alarm.Alarm{}, err
	}

	return a, nil
}

// AlarmsToList encodes an alarm collection in order.
func AlarmsToList(alarms []alarm.Alarm) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(alarms))
	for _, a := range alarms {
		values = append(values, structpb.NewStructValue(AlarmToStruct(a)))
	}

	return &structpb.ListValue{Values: values}
}

// AlarmsFromList decodes an alarm collection. Any invalid element fails the whole list.
func AlarmsFromList(l *structpb.ListValue) ([]alarm.Alarm, error) {
	alarms := make([]alarm.Alarm, 0, len(l.GetValues()))

	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("alarm %d: %w", i, ErrWrongKind)
		}

		a, err := AlarmFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i, err)
		}

		alarms = append(alarms, a)
	}

	return alarms, nil
}

// DraftToStruct encodes editor input. Nil hour or minute are omitted.
func DraftToStruct(d alarm.Draft) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldQuestionsRequired: structpb.NewNumberValue(float64(d.QuestionsRequired)),
	}

	if d.ID != "" {
		fields[fieldID] = structpb.NewStringValue(d.ID)
	}

	if d.Hour != nil {
		fields[fieldHour] = structpb.NewNumberValue(float64(*d.Hour))
	}

	if d.Minute != nil {
		fields[fieldMinute] = structpb.NewNumberValue(float64(*d.Minute))
	}

	if d.Repeat != "" {
		fields[fieldRepeat] = structpb.NewStringValue(string(d.Repeat))
	}

	if d.Difficulty != "" {
		fields[fieldDifficulty] = structpb.NewStringValue(string(d.Difficulty))
	}

	return &structpb.Struct{Fields: fields}
}

// DraftFromStruct decodes editor input without validating it.
func DraftFromStruct(s *structpb.Struct) (alarm.Draft, error) {
	fields := s.GetFields()

	var (
		d   alarm.Draft
		err error
	)

	if d.ID, err = optionalString(fields, fieldID); err != nil {
		return alarm.Draft{}, err
	}

	if d.Hour, err = optionalInt(fields, fieldHour); err != nil {
		return alarm.Draft{}, err
	}

	if d.Minute, err = optionalInt(fields, fieldMinute); err != nil {
		return alarm.Draft{}, err
	}

	repeat, err := optionalString(fields, fieldRepeat)
	if err != nil {
		return alarm.Draft{}, err
	}

	difficulty, err := optionalString(fields, fieldDifficulty)
	if err != nil {
		return alarm.Draft{}, err
	}

	d.Repeat = alarm.Repeat(repeat)
	d.Difficulty = alarm.Difficulty(difficulty)

	count, err := optionalInt(fields, fieldQuestionsRequired)
	if err != nil {
		return alarm.Draft{}, err
	}

	if count != nil {
		d.QuestionsRequired = *count
	}

	return d, nil
}

func isAbsent(v *structpb.Value) bool {
	if v == nil {
		return true
	}

	_, null := v.GetKind().(*structpb.Value_NullValue)

	return null
}

func stringField(fields map[string]*structpb.Value, key string) (string, error) {
	v, ok := fields[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q: %w", key, ErrWrongKind)
	}

	return v.StringValue, nil
}

func optionalString(fields map[string]*structpb.Value, key string) (string, error) {
	if isAbsent(fields[key]) {
		return "", nil
	}

	return stringField(fields, key)
}

func intField(fields map[string]*structpb.Value, key string) (int, error) {
	v, ok := fields[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q: %w", key, ErrWrongKind)
	}

	if v.NumberValue != math.Trunc(v.NumberValue) ||
		v.NumberValue > math.MaxInt32 || v.NumberValue < math.MinInt32 {
		return 0, fmt.Errorf("field %q: %w", key, ErrNotInteger)
	}

	return int(v.NumberValue), nil
}

func optionalInt(fields map[string]*structpb.Value, key string) (*int, error) {
	if isAbsent(fields[key]) {
		return nil, nil //nolint:nilnil // absent is not an error
	}

	n, err := intField(fields, key)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func optionalBool(fields map[string]*structpb.Value, key string) (bool, error) {
	if isAbsent(fields[key]) {
		return false, nil
	}

	v, ok := fields[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("field %q: %w", key, ErrWrongKind)
	}

	return v.BoolValue, nil
}
