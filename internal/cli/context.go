package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/config"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

// withApp opens the App described by the user's configuration, runs fn and
// closes the App afterwards.
func withApp(fn func(a *app.App) error) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	cfg, err := config.Read(homeDir)
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Level(), os.Stderr)
	a := app.Open(cfg, logger)
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// softFail prints a state-machine rejection as a warning and swallows it.
// Any other error is returned unchanged.
func softFail(w io.Writer, err error) error {
	if errors.Is(err, ledger.ErrWrongState) {
		_, _ = fmt.Fprintf(w, "%s\n", Warning(err.Error()))
		return nil
	}
	return err
}

// confirmFromFlag returns AlwaysYes when --yes was passed.
func confirmFromFlag(cmd *cobra.Command) ConfirmFunc {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return AlwaysYes()
	}
	return NewConfirmFunc()
}
