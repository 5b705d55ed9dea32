//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/leet-alarm/internal/api/grpc/leetalarm"
	"github.com/oshokin/leet-alarm/internal/codec"
	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

// Client wraps the gRPC AlarmService client with convenience helpers.
type Client struct {
	// closer releases the connection; nil when it is owned elsewhere.
	closer io.Closer
	// api is the AlarmService client stub.
	api *leetalarm.AlarmServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an operation needs an alarm id and none was given.
	errIDRequired = errors.New("alarm id must be provided")
	// errAnswerRange is returned when an option index does not fit the wire type.
	errAnswerRange = errors.New("answer index out of range")
)

// Dial establishes a gRPC connection to the alarm daemon.
// The daemon listens on loopback by default, so transport credentials are insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn

	return client, nil
}

// NewClient wraps an existing connection. Close does not close conn.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		api:         leetalarm.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer.Close()
}

// GetState retrieves the current daemon snapshot.
func (c *Client) GetState(ctx context.Context) (view.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetState(callCtx)
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("get state: %w", leetalarm.FromStatus(err))
	}

	return decodeSnapshot(resp)
}

// Watch calls fn for every snapshot the daemon publishes until ctx is done,
// the stream ends, or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(view.Snapshot) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.api.WatchState(ctx)
	if err != nil {
		return fmt.Errorf("watch state: %w", leetalarm.FromStatus(err))
	}

	for {
		resp, err := stream.Recv()

		switch {
		case errors.Is(err, io.EOF):
			return nil
		case status.Code(err) == codes.Canceled && ctx.Err() != nil:
			return nil
		case err != nil:
			return fmt.Errorf("receive state: %w", leetalarm.FromStatus(err))
		}

		snap, err := decodeSnapshot(resp)
		if err != nil {
			return err
		}

		if err = fn(snap); err != nil {
			return err
		}
	}
}

// AddAlarm creates an alarm from the draft.
func (c *Client) AddAlarm(ctx context.Context, d alarm.Draft) (leetalarm.AlarmResult, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.AddAlarm(callCtx, codec.DraftToStruct(d))
	if err != nil {
		return leetalarm.AlarmResult{}, fmt.Errorf("add alarm: %w", leetalarm.FromStatus(err))
	}

	result, err := leetalarm.DecodeAlarmResult(resp)
	if err != nil {
		return leetalarm.AlarmResult{}, fmt.Errorf("decode alarm result: %w", err)
	}

	return result, nil
}

// UpdateAlarm replaces the alarm named by d.ID.
func (c *Client) UpdateAlarm(ctx context.Context, d alarm.Draft) (view.Snapshot, error) {
	if d.ID == "" {
		return view.Snapshot{}, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.UpdateAlarm(callCtx, codec.DraftToStruct(d))
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("update alarm: %w", leetalarm.FromStatus(err))
	}

	return decodeSnapshot(resp)
}

// DeleteAlarms removes alarms by id. Unknown ids are ignored by the daemon.
func (c *Client) DeleteAlarms(ctx context.Context, ids ...string) (view.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.DeleteAlarms(callCtx, leetalarm.IDsToList(ids))
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("delete alarms: %w", leetalarm.FromStatus(err))
	}

	return decodeSnapshot(resp)
}

// StartChallenge begins a challenge for id, or for the active alarm when id is empty.
func (c *Client) StartChallenge(ctx context.Context, id string) (view.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.StartChallenge(callCtx, wrapperspb.String(id))
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("start challenge: %w", leetalarm.FromStatus(err))
	}

	return decodeSnapshot(resp)
}

// SubmitAnswer grades an option index against the current question.
func (c *Client) SubmitAnswer(ctx context.Context, answer int) (quiz.Outcome, view.Snapshot, error) {
	if answer < math.MinInt32 || answer > math.MaxInt32 {
		return quiz.OutcomeIgnored, view.Snapshot{}, fmt.Errorf("%w: %d", errAnswerRange, answer)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	//nolint:gosec // Range checked above.
	resp, err := c.api.SubmitAnswer(callCtx, wrapperspb.Int32(int32(answer)))
	if err != nil {
		return quiz.OutcomeIgnored, view.Snapshot{}, fmt.Errorf("submit answer: %w", leetalarm.FromStatus(err))
	}

	result, err := leetalarm.DecodeAnswerResult(resp)
	if err != nil {
		return quiz.OutcomeIgnored, view.Snapshot{}, fmt.Errorf("decode answer result: %w", err)
	}

	return result.Outcome, result.State, nil
}

// Dismiss dismisses the active alarm once its challenge is complete.
func (c *Client) Dismiss(ctx context.Context) (view.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.DismissAlarm(callCtx)
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("dismiss alarm: %w", leetalarm.FromStatus(err))
	}

	return decodeSnapshot(resp)
}

// Fire triggers the alarm immediately as if its time had come.
func (c *Client) Fire(ctx context.Context, id string) error {
	if id == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.api.FireAlarm(callCtx, wrapperspb.String(id)); err != nil {
		return fmt.Errorf("fire alarm: %w", leetalarm.FromStatus(err))
	}

	return nil
}

// ExportCalendar returns the configured alarms as iCalendar data.
func (c *Client) ExportCalendar(ctx context.Context) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ExportCalendar(callCtx)
	if err != nil {
		return nil, fmt.Errorf("export calendar: %w", leetalarm.FromStatus(err))
	}

	return resp.GetValue(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func decodeSnapshot(s *structpb.Struct) (view.Snapshot, error) {
	snap, err := codec.SnapshotFromStruct(s)
	if err != nil {
		return view.Snapshot{}, fmt.Errorf("decode state: %w", err)
	}

	return snap, nil
}
