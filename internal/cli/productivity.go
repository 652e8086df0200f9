package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var productivityCmd = LeafCommand{
	Use:   "productivity",
	Short: "Rank start hours by how productive their sessions were",
	IntFlags: []IntFlag{
		{Name: "top", Usage: "how many hours to show (1-24)", Default: 5},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		return withApp(func(a *app.App) error {
			return runProductivity(cmd, a, top)
		})
	},
}.Build()

func runProductivity(cmd *cobra.Command, a *app.App, top int) error {
	if top < 1 || top > 24 {
		return fmt.Errorf("invalid --top value %d (expected 1-24)", top)
	}

	w := cmd.OutOrStdout()
	scores := a.ProductiveHours()
	if len(scores) == 0 || scores[0].Sessions == 0 {
		_, _ = fmt.Fprintln(w, "No ended sessions yet.")
		return nil
	}

	best := scores[0].Score
	for i, s := range scores[:top] {
		if s.Sessions == 0 {
			break
		}
		frac := 0.0
		if best > 0 {
			frac = s.Score / best
		}
		_, _ = fmt.Fprintf(w, "%s %s  %s %.2f  %s\n",
			Silent(fmt.Sprintf("%d.", i+1)),
			Primary(fmt.Sprintf("%02d:00", s.Hour)),
			Bar(frac, 20), s.Score,
			Silent(fmt.Sprintf("%d session(s), %d pause(s), %s", s.Sessions, s.Pauses, ledger.FormatClock(s.Total))),
		)
	}
	return nil
}
