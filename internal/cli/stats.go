package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
	"github.com/yeoul2023/study-timer/internal/timetrack"
)

var statsCmd = LeafCommand{
	Use:   "stats",
	Short: "Show session statistics and the last 7 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runStats(cmd, a)
		})
	},
}.Build()

func runStats(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	stats := a.SessionStats()

	_, _ = fmt.Fprintf(w, "%s\n", Primary("Sessions"))
	_, _ = fmt.Fprintf(w, "  %-14s %d\n", "count", stats.Count)
	_, _ = fmt.Fprintf(w, "  %-14s %d\n", "today", stats.SessionsToday)
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "average", ledger.FormatClock(stats.AvgSession))
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "longest", ledger.FormatClock(stats.Longest))
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "total", ledger.FormatHours(a.TotalHours()))
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", fmt.Sprintf("%d-day avg", app.RecentDays), ledger.FormatHours(a.RecentAverage()))

	if len(stats.PauseReasons) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", Primary("Pause reasons"))
		for _, rc := range sortReasons(stats.PauseReasons) {
			_, _ = fmt.Fprintf(w, "  %-14s %d\n", rc.reason, rc.count)
		}
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", Primary("Last 7 days"))
	writeWeekly(w, a.Weekly())
	return nil
}

type reasonCount struct {
	reason string
	count  int
}

// sortReasons orders the histogram by count, most frequent first, then by name.
func sortReasons(m map[string]int) []reasonCount {
	out := make([]reasonCount, 0, len(m))
	for r, c := range m {
		out = append(out, reasonCount{reason: r, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].reason < out[j].reason
	})
	return out
}

func writeWeekly(w io.Writer, days []timetrack.DayHours) {
	var maxHours float64
	for _, d := range days {
		maxHours = max(maxHours, d.Hours, d.Goal)
	}
	for _, d := range days {
		frac := 0.0
		if maxHours > 0 {
			frac = d.Hours / maxHours
		}
		label := d.Date.Format("Mon 01/02")
		_, _ = fmt.Fprintf(w, "  %s  %s %s\n", Silent(label), Bar(frac, 24), ledger.FormatHours(d.Hours))
	}
}
