package scheduler

import (
	"context"

	"github.com/oshokin/leet-alarm/internal/logger"
)

// cronLogger routes cron's internal logging into the context logger.
type cronLogger struct {
	ctx context.Context //nolint:containedctx // cron.Logger has no context parameter
}

// Info logs routine runner messages at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugKV(l.ctx, msg, keysAndValues...)
}

// Error logs runner failures, including recovered job panics.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.ErrorKV(l.ctx, msg, append(keysAndValues, "error", err)...)
}
