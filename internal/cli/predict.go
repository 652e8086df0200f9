package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
	"github.com/yeoul2023/study-timer/internal/timetrack"
)

var predictCmd = LeafCommand{
	Use:   "predict",
	Short: "Estimate when today's goal will be reached",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runPredict(cmd, a)
		})
	},
}.Build()

func runPredict(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	p := a.PredictGoalCompletion()

	switch p.Status {
	case timetrack.StatusCompleted:
		_, _ = fmt.Fprintf(w, "%s\n", Success("today's goal is already reached"))
	case timetrack.StatusUnknown:
		_, _ = fmt.Fprintf(w, "%s remaining, %s\n",
			Primary(ledger.FormatHours(p.RemainingHours)),
			Silent("not enough history to predict a finish time"))
	default:
		_, _ = fmt.Fprintf(w, "%s remaining at %s study rate\n",
			Primary(ledger.FormatHours(p.RemainingHours)),
			Primary(fmt.Sprintf("%.0f%%", p.Rate*100)))
		_, _ = fmt.Fprintf(w, "expect to finish around %s %s\n",
			Primary(p.CompletesAt.Format("15:04")),
			Silent(fmt.Sprintf("(%s from now)", ledger.FormatHours(p.NeededHours))))
	}
	return nil
}
