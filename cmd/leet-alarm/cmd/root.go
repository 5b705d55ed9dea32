package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/logger"
	"github.com/oshokin/leet-alarm/internal/service/client"
	"github.com/oshokin/leet-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address from the config file.
	serverAddress string
	// verbose enables debug logging on stderr.
	verbose bool

	// rootCmd represents the base command of the client.
	rootCmd = &cobra.Command{
		Use:   "leet-alarm",
		Short: "Manage alarms that only stop ringing once you solve a coding question.",
		Long: `Talks to the leet-alarmd daemon to list, add, edit and delete alarms.

When an alarm rings, run "leet-alarm challenge" and answer the questions to
dismiss it. The number of questions and their difficulty are set per alarm.`,
		SilenceUsage: true,
	}
)

// Execute runs the leet-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runWithAPI connects to the daemon and runs fn with a signal-aware context.
func runWithAPI(cmd *cobra.Command, fn func(ctx context.Context, api client.API, p *client.Printer) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	ctx = logger.WithMinLevel(logger.WithName(ctx, "leet-alarm"), level)

	c, err := client.Connect(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	return fn(ctx, c, client.NewPrinter(cmd.OutOrStdout(), !color.NoColor))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "daemon address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details to stderr")
}
