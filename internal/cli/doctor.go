package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/config"
)

var doctorCmd = LeafCommand{
	Use:   "doctor",
	Short: "Check storage and look for inconsistent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runDoctor(cmd, a)
		})
	},
}.Build()

func runDoctor(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	cfg := a.Config()

	location := cfg.DataDir
	switch cfg.Storage {
	case config.StorageSQLite:
		location = cfg.DatabasePath()
	case config.StorageMemory:
		location = "in-memory"
	}
	_, _ = fmt.Fprintf(w, "%s   %s %s\n", Silent("storage:"), Primary(cfg.Storage), Silent("("+location+")"))

	if a.Ephemeral() {
		_, _ = fmt.Fprintf(w, "%s     %s\n", Silent("state:"), Warning("unavailable, running in memory only"))
	} else {
		_, _ = fmt.Fprintf(w, "%s     %s\n", Silent("state:"), Success("ok"))
	}
	_, _ = fmt.Fprintf(w, "%s      %d\n", Silent("days:"), len(a.Keys()))

	if last, ok := a.LastBackup(); ok {
		_, _ = fmt.Fprintf(w, "%s   %s\n", Silent("backup:"), last.Format("2006-01-02"))
	} else {
		_, _ = fmt.Fprintf(w, "%s   %s\n", Silent("backup:"), Warning("never"))
	}

	anomalies := a.Validate()
	if len(anomalies) == 0 {
		_, _ = fmt.Fprintf(w, "%s  %s\n", Silent("sessions:"), Success("no problems found"))
		return nil
	}

	_, _ = fmt.Fprintf(w, "%s  %s\n", Silent("sessions:"), Warning(fmt.Sprintf("%d with problems", len(anomalies))))
	for _, an := range anomalies {
		_, _ = fmt.Fprintf(w, "  %s %s  %s\n",
			an.Key, Silent(fmt.Sprintf("[%d]", an.Index)), strings.Join(an.Problems, "; "))
	}
	return nil
}
