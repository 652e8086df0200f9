package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "study-timer",
	Short:        "Track study sessions against a daily goal",
	SilenceUsage: true,
}

func init() {
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(productivityCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
