package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
)

// restoreTimeout bounds how long a restore may spend reading its file.
const restoreTimeout = 30 * time.Second

var backupCmd = LeafCommand{
	Use:   "backup",
	Short: "Write a backup file of all study data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runBackup(cmd, a)
		})
	},
}.Build()

var restoreCmd = LeafCommand{
	Use:   "restore <file>",
	Short: "Replace all study data with a backup file",
	Args:  cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm := confirmFromFlag(cmd)
		return withApp(func(a *app.App) error {
			return runRestore(cmd, a, args[0], confirm)
		})
	},
}.Build()

var backupsCmd = GroupCommand{
	Use:     "backups",
	Aliases: []string{"snapshots"},
	Short:   "List or restore automatic snapshots",
	Subcommands: []*cobra.Command{
		backupsListCmd,
		backupsRestoreCmd,
	},
}.Build()

var backupsListCmd = LeafCommand{
	Use:   "list",
	Short: "List automatic snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runBackupsList(cmd, a)
		})
	},
}.Build()

var backupsRestoreCmd = LeafCommand{
	Use:   "restore <index>",
	Short: "Replace all study data with an automatic snapshot",
	Args:  cobra.ExactArgs(1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm := confirmFromFlag(cmd)
		return withApp(func(a *app.App) error {
			return runBackupsRestore(cmd, a, args[0], confirm)
		})
	},
}.Build()

func runBackup(cmd *cobra.Command, a *app.App) error {
	path, err := a.Backup()
	if err != nil {
		return err
	}

	size := ""
	if info, err := os.Stat(path); err == nil {
		size = " " + Silent("("+humanize.Bytes(uint64(info.Size()))+")")
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s%s\n", Primary(path), size)
	return nil
}

func runRestore(cmd *cobra.Command, a *app.App, path string, confirm ConfirmFunc) error {
	ok, err := confirm(fmt.Sprintf("Replace all study data with %s?", path))
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
		return nil
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, restoreTimeout)
	defer cancel()

	days, skipped, err := a.Restore(ctx, path)
	if err != nil {
		return fmt.Errorf("restore failed, data left unchanged: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", Primary(fmt.Sprintf("%d day(s)", days)))
	if len(skipped) > 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), Warning(fmt.Sprintf("skipped %d malformed day(s): %s", len(skipped), strings.Join(skipped, ", "))))
	}
	return nil
}

func runBackupsList(cmd *cobra.Command, a *app.App) error {
	w := cmd.OutOrStdout()
	snaps := a.AutoBackups()
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(w, "No automatic snapshots yet.")
		return nil
	}

	now := a.Now()
	for i := len(snaps) - 1; i >= 0; i-- {
		s := snaps[i]
		at := s.Time(now.Location())
		_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			Silent(fmt.Sprintf("[%d]", i)),
			Primary(s.ID()),
			at.Format("2006-01-02 15:04"),
			Silent(fmt.Sprintf("%s, %d day(s)", humanize.RelTime(at, now, "ago", "from now"), len(s.Data))),
		)
	}
	return nil
}

func runBackupsRestore(cmd *cobra.Command, a *app.App, indexArg string, confirm ConfirmFunc) error {
	index, err := strconv.Atoi(indexArg)
	if err != nil {
		return fmt.Errorf("invalid snapshot index %q", indexArg)
	}

	snaps := a.AutoBackups()
	if index < 0 || index >= len(snaps) {
		return fmt.Errorf("no auto-backup at index %d", index)
	}

	ok, err := confirm(fmt.Sprintf("Replace all study data with snapshot %s?", snaps[index].ID()))
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
		return nil
	}

	if err := a.RestoreAutoBackup(index); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored snapshot %s\n", Primary(snaps[index].ID()))
	return nil
}
