package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/service/server"
	"github.com/oshokin/leet-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateDir overrides the directory holding alarm state.
	stateDir string
	// storage overrides the blob backend.
	storage string
	// singleInstance enables the duplicate process check.
	singleInstance bool

	// rootCmd represents the base command for running the daemon.
	rootCmd = &cobra.Command{
		Use:   "leet-alarmd [listen-address]",
		Short: "Run the leet alarm daemon.",
		Long: `Starts the daemon that keeps alarms armed and runs the coding challenges that dismiss them.

Alarms and the active alarm are persisted in the state directory (file backend)
or in a SQLite database. Every stored alarm is re-armed on startup, and an alarm
that was ringing when the daemon stopped resumes its challenge.
Listen address can be provided as argument to override config (e.g., 127.0.0.1:50061).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateDir:      stateDir,
				Storage:       storage,
			}

			if singleInstance {
				options.InstanceName = rootCmd.Name()
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the leet-alarmd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateDir, "state-dir", "s", "", "directory for alarm state (overrides config)")
	rootCmd.Flags().StringVar(&storage, "storage", "", "blob backend: file or sqlite (overrides config)")
	rootCmd.Flags().BoolVar(&singleInstance, "single-instance", true, "refuse to start when another daemon is running")
}
