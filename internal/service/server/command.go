package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/oshokin/leet-alarm/internal/api/grpc/leetalarm"
	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
	"github.com/oshokin/leet-alarm/internal/logger"
	"github.com/oshokin/leet-alarm/internal/metrics"
	"github.com/oshokin/leet-alarm/internal/repository/blob"
	repository "github.com/oshokin/leet-alarm/internal/repository/state"
	"github.com/oshokin/leet-alarm/internal/service/alarms"
	"github.com/oshokin/leet-alarm/internal/service/instance"
	"github.com/oshokin/leet-alarm/internal/service/notify"
	"github.com/oshokin/leet-alarm/internal/service/scheduler"
	"github.com/oshokin/leet-alarm/internal/version"
)

// Options controls the leet-alarmd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateDir overrides the directory for file blobs.
	StateDir string
	// Storage overrides the blob backend.
	Storage string
	// InstanceName is the process name checked for a second running daemon. Empty skips the check.
	InstanceName string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

const (
	// metricsReadHeaderTimeout bounds header reads on the metrics endpoint.
	metricsReadHeaderTimeout = 5 * time.Second
	// schedulerStopTimeout bounds how long shutdown waits for a running trigger.
	schedulerStopTimeout = 5 * time.Second
)

// Run starts the daemon and blocks until ctx is canceled or a component fails.
//
//nolint:funlen // Wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "leet-alarmd")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if err = config.Validate(settings); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	if err = instance.NewGuard().EnsureSingle(opts.InstanceName); err != nil {
		return err
	}

	location, err := settings.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	blobs, err := openBlobStore(ctx, settings)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := blobs.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close blob store", "error", closeErr)
		}
	}()

	repo := repository.NewRepository(blobs)
	m := metrics.New()

	sched := scheduler.New(repo,
		scheduler.WithLocation(location),
		scheduler.WithNotifier(newNotifier(settings.Notifications)),
	)

	svc := newService(alarms.NewStore(ctx, repo, sched), sched, quiz.Builtin(), m, location)

	// Subscribe before restoring so a trigger that fires during startup is not lost.
	events := sched.Subscribe(ctx)
	defer events.Close()

	svc.Restore(ctx)

	for _, p := range sched.Pending() {
		logger.DebugKV(ctx, "Alarm armed", "alarm_id", p.Alarm.ID, "next", p.Next)
	}

	if !sched.RequestAuthorization(ctx) {
		logger.Warn(ctx, "Desktop alerts are unavailable, alarms will only show up in clients")
	}

	sched.Start(ctx)
	defer stopScheduler(ctx, sched)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(m.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(m.StreamServerInterceptor()),
	)
	leetalarm.RegisterAlarmServiceServer(grpcServer, leetalarm.NewServer(svc))

	logger.InfoKV(ctx, "Leet alarm daemon listening",
		"listen_address", listenAddress,
		"storage", settings.Storage,
		"version", version.Short(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		drainEvents(gctx, svc, sched, events)

		return nil
	})

	g.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if settings.MetricsAddress != "" {
		serveMetrics(gctx, g, settings.MetricsAddress, m)
	}

	if err = g.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Leet alarm daemon stopped")

	return nil
}

// applyOverrides copies command-line overrides into the loaded settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.StateDir != "" {
		settings.StateDir = opts.StateDir
		// Re-derive the database path from the new directory.
		settings.SQLitePath = ""
	}

	if opts.Storage != "" {
		settings.Storage = opts.Storage
	}
}

// openBlobStore opens the backend selected by settings.
func openBlobStore(ctx context.Context, settings *config.Config) (blob.Store, error) {
	switch settings.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(settings.SQLitePath), config.DefaultDirPermissions); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}

		store, err := blob.OpenSQLite(ctx, settings.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}

		return store, nil
	default:
		store, err := blob.NewFileStore(settings.StateDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}

		return store, nil
	}
}

// newNotifier picks the alert facility.
func newNotifier(mode string) scheduler.Notifier {
	if mode == config.NotificationsOff {
		return notify.Off{}
	}

	return notify.NewDesktop()
}

// FireHandler reacts to fired alarm events.
type FireHandler interface {
	HandleFired(ctx context.Context, id string) view.Snapshot
}

// EventSource hands out fire event subscriptions.
type EventSource interface {
	Subscribe(ctx context.Context) *scheduler.Subscription
}

// drainEvents feeds fire events to handler until ctx is done.
// A subscription dropped for falling behind is replaced with a fresh one.
func drainEvents(ctx context.Context, handler FireHandler, source EventSource, sub *scheduler.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C():
			if !ok {
				if ctx.Err() != nil {
					return
				}

				logger.Warn(ctx, "Fire event subscription dropped, resubscribing")

				sub = source.Subscribe(ctx)

				continue
			}

			logger.DebugKV(ctx, "Handling fired alarm", "alarm_id", event.AlarmID, "at", event.At)
			handler.HandleFired(ctx, event.AlarmID)
		}
	}
}

// serveMetrics exposes the Prometheus endpoint on address until ctx is done.
func serveMetrics(ctx context.Context, g *errgroup.Group, address string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	g.Go(func() error {
		logger.InfoKV(ctx, "Metrics endpoint listening", "metrics_address", address)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve metrics: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsReadHeaderTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})
}

// stopper is the shutdown half of the scheduler.
type stopper interface {
	Stop(ctx context.Context)
}

// stopScheduler waits for an in-flight trigger even when ctx is already canceled.
func stopScheduler(ctx context.Context, s stopper) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schedulerStopTimeout)
	defer cancel()

	s.Stop(stopCtx)
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise the configured address is used as is,
// so the default loopback binding is kept.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
