package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var sessionsCmd = LeafCommand{
	Use:     "sessions [date]",
	Aliases: []string{"ls"},
	Short:   "List the sessions of a day (default today)",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		return withApp(func(a *app.App) error {
			return runSessions(cmd, a, date)
		})
	},
}.Build()

var deleteCmd = LeafCommand{
	Use:   "delete <index>",
	Short: "Delete a session by its index in 'sessions'",
	Args:  cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	StrFlags: []StringFlag{
		{Name: "date", Usage: "day of the session (YYYY-MM-DD, default today)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		confirm := confirmFromFlag(cmd)
		return withApp(func(a *app.App) error {
			return runDelete(cmd, a, date, args[0], confirm)
		})
	},
}.Build()

// resolveDate validates a YYYY-MM-DD argument, defaulting to today.
func resolveDate(a *app.App, date string) (string, error) {
	if date == "" {
		return a.TodayKey(), nil
	}
	if _, err := time.Parse(ledger.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

func runSessions(cmd *cobra.Command, a *app.App, date string) error {
	key, err := resolveDate(a, date)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	day, ok := a.Day(key)
	if !ok || len(day.Sessions) == 0 {
		_, _ = fmt.Fprintf(w, "No sessions on %s.\n", key)
		return nil
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", "Sessions on", Primary(key))
	loc := a.Now().Location()
	for i, s := range day.Sessions {
		_, _ = fmt.Fprintln(w, formatSessionLine(i, s, loc, a.Now()))
	}
	_, _ = fmt.Fprintf(w, "%s %s (%d%%)\n", Silent("total:"),
		Primary(ledger.FormatHours(day.Summary.ActualHours)), day.Summary.CompletionRate)
	return nil
}

func formatSessionLine(i int, s ledger.Session, loc *time.Location, now time.Time) string {
	start := s.StartTime(loc).Format("15:04")
	end := "  …  "
	if s.Ended() {
		end = s.EndTime(loc).Format("15:04")
	}
	pauses := ""
	if n := len(s.Pauses); n > 0 {
		pauses = Silent(fmt.Sprintf("  %d pause(s)", n))
	}
	return fmt.Sprintf("  %s  %s - %s  %s%s",
		Silent(fmt.Sprintf("[%d]", i)), start, end,
		Primary(ledger.FormatClock(s.Elapsed(now))), pauses)
}

func runDelete(cmd *cobra.Command, a *app.App, date, indexArg string, confirm ConfirmFunc) error {
	key, err := resolveDate(a, date)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(indexArg)
	if err != nil {
		return fmt.Errorf("invalid session index %q", indexArg)
	}

	day, ok := a.Day(key)
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrDayNotFound, key)
	}
	if index < 0 || index >= len(day.Sessions) {
		return fmt.Errorf("%w: %d (day has %d)", ledger.ErrSessionIndex, index, len(day.Sessions))
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, formatSessionLine(index, day.Sessions[index], a.Now().Location(), a.Now()))

	if confirm != nil {
		ok, err := confirm("Delete this session?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(w, "cancelled")
			return nil
		}
	}

	if err := a.DeleteSession(key, index); err != nil {
		return err
	}

	updated, _ := a.Day(key)
	_, _ = fmt.Fprintf(w, "deleted session %s %s %s now %s\n",
		Silent(fmt.Sprintf("[%d]", index)), Silent("·"), key,
		Primary(ledger.FormatHours(updated.Summary.ActualHours)))
	return nil
}
