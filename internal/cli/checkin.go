package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var checkinCmd = LeafCommand{
	Use:   "checkin [goal]",
	Short: "Check in for today and set the study goal (e.g. 4, 2.5, 3h30m)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := ""
		if len(args) == 1 {
			goal = args[0]
		}
		return withApp(func(a *app.App) error {
			return runCheckin(cmd, a, goal)
		})
	},
}.Build()

var goalCmd = LeafCommand{
	Use:   "goal <hours>",
	Short: "Change today's study goal without checking in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runGoal(cmd, a, args[0])
		})
	},
}.Build()

func runCheckin(cmd *cobra.Command, a *app.App, goalArg string) error {
	goal := a.Today().GoalHours
	if goalArg != "" {
		parsed, err := ledger.ParseGoal(goalArg)
		if err != nil {
			return err
		}
		goal = parsed
	}

	stamp, err := a.CheckIn(goal)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "checked in at %s %s goal %s\n",
		Primary(stamp), Silent("·"), Primary(ledger.FormatHours(goal)))
	return nil
}

func runGoal(cmd *cobra.Command, a *app.App, goalArg string) error {
	goal, err := ledger.ParseGoal(goalArg)
	if err != nil {
		return err
	}
	if err := a.SetGoal(goal); err != nil {
		return err
	}

	today := a.Today()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal set to %s %s %s\n",
		Primary(ledger.FormatHours(goal)), Silent("·"),
		Rate(today.Summary.CompletionRate, fmt.Sprintf("%d%% done", today.Summary.CompletionRate)))
	return nil
}
