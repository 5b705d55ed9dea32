package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oshokin/leet-alarm/internal/config"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

var (
	// ErrNoAlarmSelected is returned when a command needs alarm ids and got none.
	ErrNoAlarmSelected = errors.New("no alarm selected")
	// ErrInputClosed is returned when the answer stream ends before the challenge is complete.
	ErrInputClosed = errors.New("input closed before the challenge was completed")
	// ErrConfigExists is returned by InitConfig when the file is already there.
	ErrConfigExists = errors.New("settings file already exists")
)

// List prints the configured alarms and the ringing one.
func List(ctx context.Context, api API, p *Printer) error {
	snap, err := api.GetState(ctx)
	if err != nil {
		return err
	}

	p.Alarms(snap)
	p.Active(snap)

	return nil
}

// Add creates an alarm from the draft and prints it.
func Add(ctx context.Context, api API, p *Printer, d alarm.Draft) error {
	result, err := api.AddAlarm(ctx, d)
	if err != nil {
		return err
	}

	p.Success("Added alarm %s", result.Alarm.String())
	p.Alarm(result.Alarm, false)

	return nil
}

// EditChanges holds the fields an edit overrides; nil and empty values keep the stored value.
type EditChanges struct {
	// Time is an HH:MM string.
	Time string
	// Repeat is "once" or "daily".
	Repeat alarm.Repeat
	// Difficulty is "easy", "medium" or "hard".
	Difficulty alarm.Difficulty
	// QuestionsRequired replaces the required count when set.
	QuestionsRequired *int
}

// Edit applies changes to the alarm with id.
func Edit(ctx context.Context, api API, p *Printer, id string, changes EditChanges) error {
	snap, err := api.GetState(ctx)
	if err != nil {
		return err
	}

	existing, ok := alarm.Find(snap.Alarms, id)
	if !ok {
		return fmt.Errorf("%w: %q", alarm.ErrUnknownAlarm, id)
	}

	d := alarm.DraftFrom(existing)

	if changes.Time != "" {
		if err = d.SetTime(changes.Time); err != nil {
			return err
		}
	}

	if changes.Repeat != "" {
		d.Repeat = changes.Repeat
	}

	if changes.Difficulty != "" {
		d.Difficulty = changes.Difficulty
	}

	if changes.QuestionsRequired != nil {
		d.QuestionsRequired = *changes.QuestionsRequired
	}

	snap, err = api.UpdateAlarm(ctx, d)
	if err != nil {
		return err
	}

	if updated, found := alarm.Find(snap.Alarms, id); found {
		p.Success("Updated alarm %s", updated.String())
	}

	return nil
}

// Delete removes alarms by id.
func Delete(ctx context.Context, api API, p *Printer, ids []string) error {
	if len(ids) == 0 {
		return ErrNoAlarmSelected
	}

	before, err := api.GetState(ctx)
	if err != nil {
		return err
	}

	after, err := api.DeleteAlarms(ctx, ids...)
	if err != nil {
		return err
	}

	p.Success("Deleted %d alarm(s)", len(before.Alarms)-len(after.Alarms))

	return nil
}

// Challenge runs the challenge for id, or for the ringing alarm when id is empty,
// reading 1-based option numbers from in. The alarm is dismissed once the
// challenge is complete when dismiss is set.
//
//nolint:cyclop // Interactive loop with several exits.
func Challenge(ctx context.Context, api API, p *Printer, in io.Reader, id string, dismiss bool) error {
	snap, err := api.StartChallenge(ctx, id)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)

	for snap.Challenge != nil && !snap.Challenge.Completed {
		p.Challenge(snap.Challenge)
		p.Info("Answer with an option number:")

		if !scanner.Scan() {
			if scanErr := scanner.Err(); scanErr != nil {
				return fmt.Errorf("read answer: %w", scanErr)
			}

			return ErrInputClosed
		}

		options := 0
		if snap.Challenge.Current != nil {
			options = len(snap.Challenge.Current.Options)
		}

		answer, ok := parseOption(scanner.Text(), options)
		if !ok {
			p.Info("Please enter a number between 1 and %d.", options)

			continue
		}

		var outcome quiz.Outcome

		outcome, snap, err = api.SubmitAnswer(ctx, answer)
		if err != nil {
			return err
		}

		if snap.Challenge != nil {
			p.Feedback(outcome, snap.Challenge.Feedback)
		}
	}

	if snap.Challenge != nil {
		p.Challenge(snap.Challenge)
	}

	if !dismiss {
		return nil
	}

	return Dismiss(ctx, api, p)
}

// Dismiss dismisses the ringing alarm.
func Dismiss(ctx context.Context, api API, p *Printer) error {
	before, err := api.GetState(ctx)
	if err != nil {
		return err
	}

	if before.ActiveAlarmID == "" {
		p.Info("No alarm is ringing.")

		return nil
	}

	if _, err = api.Dismiss(ctx); err != nil {
		return err
	}

	p.Success("Alarm dismissed. Good morning!")

	return nil
}

// Watch prints every snapshot the daemon publishes until ctx is done.
func Watch(ctx context.Context, api API, p *Printer) error {
	return api.Watch(ctx, func(snap view.Snapshot) error {
		p.Snapshot(snap)

		return nil
	})
}

// Export writes the iCalendar feed to w.
func Export(ctx context.Context, api API, w io.Writer) error {
	data, err := api.ExportCalendar(ctx)
	if err != nil {
		return err
	}

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}

	return nil
}

// Fire asks the daemon to ring the alarm now.
func Fire(ctx context.Context, api API, p *Printer, id string) error {
	if err := api.Fire(ctx, id); err != nil {
		return err
	}

	p.Success("Alarm %s fired", id)

	return nil
}

// InitConfig writes default settings to path. An existing file is kept unless force is set.
func InitConfig(path string, force bool, exists func(string) bool) error {
	if !force && exists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	return config.Save(path, config.Default())
}

// parseOption turns a 1-based option number into a 0-based answer index.
// Numbers outside 1..options are rejected.
func parseOption(line string, options int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > options {
		return 0, false
	}

	return n - 1, true
}
