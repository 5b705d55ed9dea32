package leetalarm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/leet-alarm/internal/codec"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/logger"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	GetState(ctx context.Context) view.Snapshot
	Watch(ctx context.Context) <-chan view.Snapshot
	AddAlarm(ctx context.Context, d alarm.Draft) (alarm.Alarm, view.Snapshot, error)
	UpdateAlarm(ctx context.Context, d alarm.Draft) (view.Snapshot, error)
	DeleteAlarms(ctx context.Context, ids []string) view.Snapshot
	StartChallenge(ctx context.Context, id string) (view.Snapshot, error)
	SubmitAnswer(ctx context.Context, answer int) (quiz.Outcome, view.Snapshot, error)
	DismissActive(ctx context.Context) (view.Snapshot, error)
	FireAlarm(ctx context.Context, id string)
	ExportCalendar(ctx context.Context) ([]byte, error)
}

// Server implements the AlarmService gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetState returns the current snapshot.
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return codec.SnapshotToStruct(s.service.GetState(ctx)), nil
}

// WatchState streams a snapshot after every mutation until the client goes away.
func (s *Server) WatchState(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	for snap := range s.service.Watch(ctx) {
		if err := stream.Send(codec.SnapshotToStruct(snap)); err != nil {
			return err
		}
	}

	return nil
}

// AddAlarm creates an alarm from a draft.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	draft, err := codec.DraftFromStruct(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	a, snap, err := s.service.AddAlarm(ctx, draft)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return alarmResponse(a, snap), nil
}

// UpdateAlarm edits an alarm. Unknown ids leave the state unchanged.
func (s *Server) UpdateAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	draft, err := codec.DraftFromStruct(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	snap, err := s.service.UpdateAlarm(ctx, draft)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return codec.SnapshotToStruct(snap), nil
}

// DeleteAlarms removes alarms by id.
func (s *Server) DeleteAlarms(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	ids, err := idsFromList(req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return codec.SnapshotToStruct(s.service.DeleteAlarms(ctx, ids)), nil
}

// StartChallenge starts a challenge for the alarm, or for the active alarm when the id is empty.
func (s *Server) StartChallenge(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	snap, err := s.service.StartChallenge(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return codec.SnapshotToStruct(snap), nil
}

// SubmitAnswer answers the current question by option index.
func (s *Server) SubmitAnswer(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "answer is required")
	}

	outcome, snap, err := s.service.SubmitAnswer(ctx, int(req.GetValue()))
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return answerResponse(outcome, snap), nil
}

// DismissAlarm dismisses the active alarm.
func (s *Server) DismissAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.service.DismissActive(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return codec.SnapshotToStruct(snap), nil
}

// FireAlarm fires the alarm as if its trigger went off.
func (s *Server) FireAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	s.service.FireAlarm(ctx, req.GetValue())

	return new(emptypb.Empty), nil
}

// ExportCalendar renders alarms as iCalendar data.
func (s *Server) ExportCalendar(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	data, err := s.service.ExportCalendar(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return wrapperspb.Bytes(data), nil
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, alarm.ErrInvalidDraft),
		errors.Is(err, codec.ErrWrongKind),
		errors.Is(err, codec.ErrNotInteger):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, alarm.ErrUnknownAlarm):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, quiz.ErrNoChallenge),
		errors.Is(err, quiz.ErrChallengeIncomplete):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		logger.ErrorKV(ctx, "Request failed", "error", err)

		return status.Error(codes.Internal, "internal error")
	}
}

// FromStatus maps a gRPC error back to the domain sentinel it was built from.
// Errors without a matching sentinel are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}

	var sentinel error

	switch st.Code() {
	case codes.InvalidArgument:
		sentinel = alarm.ErrInvalidDraft
	case codes.NotFound:
		sentinel = alarm.ErrUnknownAlarm
	case codes.FailedPrecondition:
		sentinel = quiz.ErrNoChallenge
		if strings.HasPrefix(st.Message(), quiz.ErrChallengeIncomplete.Error()) {
			sentinel = quiz.ErrChallengeIncomplete
		}
	default:
		return err
	}

	return &remoteError{message: st.Message(), sentinel: sentinel}
}

// remoteError carries the server message and unwraps to a domain sentinel.
type remoteError struct {
	message  string
	sentinel error
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.sentinel }
