package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var startCmd = LeafCommand{
	Use:   "start",
	Short: "Start a study session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runStart(cmd, a)
		})
	},
}.Build()

var pauseCmd = LeafCommand{
	Use:   "pause",
	Short: "Pause the running session",
	StrFlags: []StringFlag{
		{Name: "reason", Usage: "why you are pausing (prompted if omitted)"},
	},
	BoolFlags: []BoolFlag{
		{Name: "no-prompt", Usage: "never prompt for input"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		noPrompt, _ := cmd.Flags().GetBool("no-prompt")
		return withApp(func(a *app.App) error {
			return runPause(cmd, a, reason, promptKitFor(noPrompt))
		})
	},
}.Build()

var resumeCmd = LeafCommand{
	Use:   "resume",
	Short: "Resume a paused session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runResume(cmd, a)
		})
	},
}.Build()

var endCmd = LeafCommand{
	Use:   "end",
	Short: "End the current session",
	StrFlags: []StringFlag{
		{Name: "reason", Usage: "why today fell short of the goal"},
		{Name: "memo", Usage: "free-form note for today"},
	},
	BoolFlags: []BoolFlag{
		{Name: "no-prompt", Usage: "never prompt for input"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		memo, _ := cmd.Flags().GetString("memo")
		noPrompt, _ := cmd.Flags().GetBool("no-prompt")
		return withApp(func(a *app.App) error {
			return runEnd(cmd, a, reason, memo, promptKitFor(noPrompt))
		})
	},
}.Build()

func runStart(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	s, err := a.StartSession()
	if err != nil {
		return softFail(w, err)
	}
	started := s.StartTime(a.Now().Location()).Format("15:04")
	_, _ = fmt.Fprintf(w, "session started at %s\n", Primary(started))
	return nil
}

func runPause(cmd *cobra.Command, a *app.App, reason string, kit PromptKit) error {
	w := cmd.OutOrStdout()

	// only ask for a reason when the pause can succeed
	if reason == "" && kit.Select != nil && a.CurrentState() == ledger.StateActive {
		options := a.Config().PauseReasons
		idx, err := kit.Select("Why are you pausing?", options)
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(options) {
			reason = options[idx]
		}
	}

	if err := a.PauseSession(strings.TrimSpace(reason)); err != nil {
		return softFail(w, err)
	}

	_, _ = fmt.Fprintf(w, "paused at %s", Primary(ledger.FormatClock(a.Elapsed())))
	if reason != "" {
		_, _ = fmt.Fprintf(w, " %s", Silent("("+reason+")"))
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

func runResume(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	if err := a.ResumeSession(); err != nil {
		return softFail(w, err)
	}
	_, _ = fmt.Fprintf(w, "resumed at %s\n", Primary(ledger.FormatClock(a.Elapsed())))
	return nil
}

func runEnd(cmd *cobra.Command, a *app.App, reason, memo string, kit PromptKit) error {
	w := cmd.OutOrStdout()
	res, err := a.EndSession()
	if err != nil {
		return softFail(w, err)
	}

	_, _ = fmt.Fprintf(w, "session ended: %s studied\n", Primary(ledger.FormatClock(res.Session.Duration())))
	_, _ = fmt.Fprintf(w, "%s %s / %s  %s\n",
		Silent("today:"),
		Primary(ledger.FormatHours(res.Summary.ActualHours)),
		ledger.FormatHours(res.GoalHours),
		Rate(res.Summary.CompletionRate, fmt.Sprintf("%d%%", res.Summary.CompletionRate)),
	)

	if res.Celebrate {
		_, _ = fmt.Fprintf(w, "%s\n", Success("goal reached, well done!"))
	}

	if !res.UnderGoal {
		return nil
	}

	if reason == "" && kit.Prompt != nil {
		if reason, err = kit.Prompt("Below 80% of today's goal. What got in the way?"); err != nil {
			return err
		}
		if memo == "" && strings.TrimSpace(reason) != "" {
			if memo, err = kit.Prompt("Anything else to note for today?"); err != nil {
				return err
			}
		}
	}

	reason, memo = strings.TrimSpace(reason), strings.TrimSpace(memo)
	if reason == "" && memo == "" {
		return nil
	}
	a.RecordShortfall(reason, memo)
	_, _ = fmt.Fprintf(w, "%s\n", Silent("note saved"))
	return nil
}
