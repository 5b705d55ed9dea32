package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/service/client"
)

var (
	// noDismiss keeps the alarm ringing after the challenge is solved.
	noDismiss bool
	// forceInit overwrites an existing settings file.
	forceInit bool

	challengeCmd = &cobra.Command{
		Use:   "challenge [ALARM_ID]",
		Short: "Answer questions to dismiss the ringing alarm.",
		Long: `Starts the challenge of the ringing alarm, or of the given alarm, and reads
option numbers from standard input until enough answers are correct.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}

			return runWithAPI(cmd, func(ctx context.Context, api client.API, p *client.Printer) error {
				return client.Challenge(ctx, api, p, cmd.InOrStdin(), id, !noDismiss)
			})
		},
	}

	dismissCmd = &cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the ringing alarm once its challenge is complete.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithAPI(cmd, client.Dismiss)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print the alarm state every time it changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithAPI(cmd, client.Watch)
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the alarms as an iCalendar feed to standard output.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithAPI(cmd, func(ctx context.Context, api client.API, _ *client.Printer) error {
				return client.Export(ctx, api, cmd.OutOrStdout())
			})
		},
	}

	fireCmd = &cobra.Command{
		Use:    "fire ALARM_ID",
		Short:  "Ring an alarm now.",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAPI(cmd, func(ctx context.Context, api client.API, p *client.Printer) error {
				return client.Fire(ctx, api, p, args[0])
			})
		},
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := client.InitConfig(cfgPath, forceInit, func(path string) bool {
				_, statErr := os.Stat(path)

				return statErr == nil
			})
			if err != nil {
				return err
			}

			cmd.Printf("Settings written to %s (daemon address %s)\n", cfgPath, config.DefaultServerAddress)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	challengeCmd.Flags().BoolVar(&noDismiss, "no-dismiss", false, "keep the alarm ringing after the challenge is solved")
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing settings file")

	rootCmd.AddCommand(challengeCmd, dismissCmd, watchCmd, exportCmd, fireCmd, initCmd)
}
