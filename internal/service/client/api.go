package client

import (
	"context"
	"fmt"

	"github.com/oshokin/leet-alarm/internal/api/grpc/leetalarm"
	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/logger"
	"github.com/oshokin/leet-alarm/internal/service/common"
)

// API is the daemon surface the commands use.
type API interface {
	GetState(ctx context.Context) (view.Snapshot, error)
	Watch(ctx context.Context, fn func(view.Snapshot) error) error
	AddAlarm(ctx context.Context, d alarm.Draft) (leetalarm.AlarmResult, error)
	UpdateAlarm(ctx context.Context, d alarm.Draft) (view.Snapshot, error)
	DeleteAlarms(ctx context.Context, ids ...string) (view.Snapshot, error)
	StartChallenge(ctx context.Context, id string) (view.Snapshot, error)
	SubmitAnswer(ctx context.Context, answer int) (quiz.Outcome, view.Snapshot, error)
	Dismiss(ctx context.Context) (view.Snapshot, error)
	Fire(ctx context.Context, id string) error
	ExportCalendar(ctx context.Context) ([]byte, error)
}

// Options configures how the client reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// Connect loads settings and dials the daemon. The caller closes the returned client.
func Connect(ctx context.Context, opts *Options) (*common.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return nil, err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	logger.DebugKV(ctx, "Connecting to daemon", "server_address", serverAddress)

	c, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", serverAddress, err)
	}

	return c, nil
}
