package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var statusCmd = LeafCommand{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show the current session and today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runStatus(cmd, a)
		})
	},
}.Build()

func runStatus(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	today := a.Today()
	state := a.CurrentState()

	_, _ = fmt.Fprintf(w, "%s     %s\n", Silent("Today:"), Primary(a.TodayKey()))
	if today.CheckIn != nil {
		_, _ = fmt.Fprintf(w, "%s  %s\n", Silent("Check-in:"), Primary(*today.CheckIn))
	} else {
		_, _ = fmt.Fprintf(w, "%s  %s\n", Silent("Check-in:"), Silent("not yet"))
	}

	_, _ = fmt.Fprintf(w, "%s   %s\n", Silent("Session:"), stateLabel(state))
	if state == ledger.StateActive || state == ledger.StatePaused {
		_, _ = fmt.Fprintf(w, "%s   %s\n", Silent("Elapsed:"), Primary(ledger.FormatClock(a.Elapsed())))
	}

	rate := today.Summary.CompletionRate
	_, _ = fmt.Fprintf(w, "%s  %s / %s  %s %s\n",
		Silent("Progress:"),
		Primary(ledger.FormatHours(today.Summary.ActualHours)),
		ledger.FormatHours(today.GoalHours),
		Bar(float64(rate)/100, 20),
		Rate(rate, fmt.Sprintf("%d%%", rate)),
	)

	avg := a.RecentAverage()
	_, _ = fmt.Fprintf(w, "%s %s\n", Silent(fmt.Sprintf("%d-day avg:", app.RecentDays)), ledger.FormatHours(avg))

	if a.Ephemeral() {
		_, _ = fmt.Fprintf(w, "\n%s\n", Warning("storage unavailable: changes will not be saved"))
	}
	if a.BackupDue() {
		_, _ = fmt.Fprintf(w, "\n%s\n", Warning(backupReminder(a)))
	}
	return nil
}

func stateLabel(s ledger.State) string {
	switch s {
	case ledger.StateActive:
		return Info("studying")
	case ledger.StatePaused:
		return Warning("paused")
	case ledger.StateEnded:
		return Silent("ended")
	default:
		return Silent("none")
	}
}

func backupReminder(a *app.App) string {
	last, ok := a.LastBackup()
	if !ok {
		return "no backup yet, run 'study-timer backup'"
	}
	return fmt.Sprintf("last backup %s, run 'study-timer backup'", humanize.RelTime(last, a.Now(), "ago", "from now"))
}

