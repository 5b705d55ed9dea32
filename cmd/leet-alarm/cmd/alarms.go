package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/service/client"
)

var (
	// repeatFlag is the --repeat value for add and edit.
	repeatFlag string
	// difficultyFlag is the --difficulty value for add and edit.
	difficultyFlag string
	// questionsFlag is the --questions value for add and edit.
	questionsFlag int
	// timeFlag is the --time value for edit.
	timeFlag string

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alarms and the one that is ringing.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithAPI(cmd, client.List)
		},
	}

	addCmd = &cobra.Command{
		Use:   "add HH:MM",
		Short: "Add an alarm.",
		Long:  "Adds an alarm. Defaults: rings once, easy questions, one question to dismiss.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := alarm.Draft{
				Repeat:            alarm.Repeat(repeatFlag),
				Difficulty:        alarm.Difficulty(difficultyFlag),
				QuestionsRequired: questionsFlag,
			}

			if err := d.SetTime(args[0]); err != nil {
				return err
			}

			return runWithAPI(cmd, func(ctx context.Context, api client.API, p *client.Printer) error {
				return client.Add(ctx, api, p, d)
			})
		},
	}

	editCmd = &cobra.Command{
		Use:   "edit ALARM_ID",
		Short: "Change an alarm. Only the given flags are applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := client.EditChanges{
				Time:       timeFlag,
				Repeat:     alarm.Repeat(repeatFlag),
				Difficulty: alarm.Difficulty(difficultyFlag),
			}

			if cmd.Flags().Changed("questions") {
				changes.QuestionsRequired = &questionsFlag
			}

			return runWithAPI(cmd, func(ctx context.Context, api client.API, p *client.Printer) error {
				return client.Edit(ctx, api, p, args[0], changes)
			})
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete ALARM_ID...",
		Aliases: []string{"rm"},
		Short:   "Delete alarms.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAPI(cmd, func(ctx context.Context, api client.API, p *client.Printer) error {
				return client.Delete(ctx, api, p, args)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVarP(&repeatFlag, "repeat", "r", "", "once or daily")
		c.Flags().StringVarP(&difficultyFlag, "difficulty", "d", "", fmt.Sprintf("one of %v", alarm.Difficulties()))
		c.Flags().IntVarP(&questionsFlag, "questions", "q", alarm.MinQuestions, "correct answers needed to dismiss (1-10)")
	}

	editCmd.Flags().StringVarP(&timeFlag, "time", "t", "", "new time as HH:MM")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
}
