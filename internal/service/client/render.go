package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/domain/quiz"
	"github.com/oshokin/leet-alarm/internal/domain/view"
)

// Printer renders snapshots for a terminal.
type Printer struct {
	// out receives every line.
	out io.Writer

	heading *color.Color
	muted   *color.Color
	good    *color.Color
	bad     *color.Color
	ringing *color.Color
}

// NewPrinter writes to out. Colors are dropped when colored is false.
func NewPrinter(out io.Writer, colored bool) *Printer {
	p := &Printer{
		out:     out,
		heading: color.New(color.Bold),
		muted:   color.New(color.Faint),
		good:    color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		ringing: color.New(color.FgYellow, color.Bold),
	}

	if !colored {
		for _, c := range []*color.Color{p.heading, p.muted, p.good, p.bad, p.ringing} {
			c.DisableColor()
		}
	}

	return p
}

// Alarms prints the alarm list, marking the active alarm.
func (p *Printer) Alarms(snap view.Snapshot) {
	if len(snap.Alarms) == 0 {
		p.muted.Fprintln(p.out, "No alarms yet. Add one with `leet-alarm add HH:MM`.")

		return
	}

	p.heading.Fprintln(p.out, "Alarms")

	for _, a := range snap.Alarms {
		p.Alarm(a, a.ID == snap.ActiveAlarmID)
	}
}

// Alarm prints one alarm row.
func (p *Printer) Alarm(a alarm.Alarm, active bool) {
	marker := "  "
	if active {
		marker = p.ringing.Sprint("* ")
	}

	fmt.Fprintf(p.out, "%s%s  %-5s  %-6s  %s  %s\n",
		marker,
		p.heading.Sprint(a.TimeLabel()),
		a.Repeat.Description(),
		a.Difficulty.DisplayName(),
		questionsLabel(a.QuestionsRequired),
		p.muted.Sprint(a.ID),
	)
}

// Active prints the ringing alarm and its challenge, if any.
func (p *Printer) Active(snap view.Snapshot) {
	if snap.ActiveAlarmID == "" {
		return
	}

	if snap.ActiveAlarm != nil {
		p.ringing.Fprintf(p.out, "Ringing: %s\n", snap.ActiveAlarm.String())
	} else {
		p.ringing.Fprintf(p.out, "Ringing: unknown alarm %s\n", snap.ActiveAlarmID)
	}

	if snap.Challenge != nil {
		p.Challenge(snap.Challenge)
	}
}

// Challenge prints progress and the current question.
func (p *Printer) Challenge(c *view.Challenge) {
	if c.Completed {
		p.good.Fprintf(p.out, "Challenge complete (%d/%d). You can dismiss the alarm.\n", c.Solved, c.Required)

		return
	}

	fmt.Fprintf(p.out, "%s challenge: %d solved, %d remaining\n",
		c.Difficulty.DisplayName(), c.Solved, c.Remaining)

	if c.Current != nil {
		p.Question(c.Current)
	}
}

// Question prints a question with 1-based option numbers.
func (p *Printer) Question(q *view.Question) {
	p.heading.Fprintln(p.out, q.Title)
	fmt.Fprintln(p.out, q.Prompt)

	for i, option := range q.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}
}

// Feedback prints the result of an answer.
func (p *Printer) Feedback(outcome quiz.Outcome, feedback string) {
	switch outcome {
	case quiz.OutcomeCorrect:
		p.good.Fprintln(p.out, feedback)
	case quiz.OutcomeIncorrect:
		p.bad.Fprintln(p.out, feedback)
	case quiz.OutcomeIgnored:
		p.muted.Fprintln(p.out, "Answer ignored.")
	}
}

// Info prints a neutral status line.
func (p *Printer) Info(format string, args ...any) {
	p.muted.Fprintf(p.out, format+"\n", args...)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.good.Fprintf(p.out, format+"\n", args...)
}

// Snapshot prints the full state, used by watch.
func (p *Printer) Snapshot(snap view.Snapshot) {
	p.muted.Fprintf(p.out, "%s revision %d\n", strings.Repeat("-", 8), snap.Revision)
	p.Alarms(snap)
	p.Active(snap)
}

func questionsLabel(n int) string {
	if n == 1 {
		return "1 question"
	}

	return fmt.Sprintf("%d questions", n)
}
