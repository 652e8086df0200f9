package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var validShells = []string{"bash", "zsh", "fish", "powershell"}

// rcFiles maps shells to their startup file, relative to the home directory.
var rcFiles = map[string]string{
	"bash":       ".bashrc",
	"zsh":        ".zshrc",
	"fish":       ".config/fish/config.fish",
	"powershell": ".config/powershell/Microsoft.PowerShell_profile.ps1",
}

// completionHooks is the line that loads completions in each shell.
var completionHooks = map[string]string{
	"bash":       `eval "$(study-timer completion generate bash)"`,
	"zsh":        `eval "$(study-timer completion generate zsh)"`,
	"fish":       `study-timer completion generate fish | source`,
	"powershell": `study-timer completion generate powershell | Out-String | Invoke-Expression`,
}

const completionMarker = "study-timer completion"

var completionCmd = GroupCommand{
	Use:   "completion",
	Short: "Manage shell completions",
	Subcommands: []*cobra.Command{
		completionGenerateCmd,
		completionInstallCmd,
	},
}.Build()

var completionGenerateCmd = newCompletionGenerateCmd()

func newCompletionGenerateCmd() *cobra.Command {
	cmd := LeafCommand{
		Use:   "generate [SHELL]",
		Short: "Print the completion script for a shell",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell, err := shellArg(args)
			if err != nil {
				return err
			}
			return runCompletion(cmd, shell)
		},
	}.Build()
	cmd.ValidArgs = validShells
	return cmd
}

var completionInstallCmd = LeafCommand{
	Use:   "install [SHELL]",
	Short: "Load completions from your shell startup file",
	Args:  cobra.RangeArgs(0, 1),
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := shellArg(args)
		if err != nil {
			return err
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return runCompletionInstall(cmd, shell, homeDir, confirmFromFlag(cmd))
	},
}.Build()

func shellArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if shell := detectShell(); shell != "" {
		return shell, nil
	}
	return "", fmt.Errorf("could not detect shell from $SHELL; pass one of %s", strings.Join(validShells, ", "))
}

// detectShell maps $SHELL to a supported shell name, or "".
func detectShell() string {
	switch filepath.Base(os.Getenv("SHELL")) {
	case "bash":
		return "bash"
	case "zsh":
		return "zsh"
	case "fish":
		return "fish"
	default:
		return ""
	}
}

func runCompletion(cmd *cobra.Command, shell string) error {
	root := cmd.Root()
	out := cmd.OutOrStdout()

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (valid: %s)", shell, strings.Join(validShells, ", "))
	}
}

func runCompletionInstall(cmd *cobra.Command, shell, homeDir string, confirm ConfirmFunc) error {
	rel, ok := rcFiles[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (valid: %s)", shell, strings.Join(validShells, ", "))
	}
	display := filepath.Join("~", rel)
	w := cmd.OutOrStdout()

	if completionInstalled(filepath.Join(homeDir, rel)) {
		_, _ = fmt.Fprintf(w, "completions for %s already load from %s\n", Primary(shell), Primary(display))
		return nil
	}

	ok, err := confirm(fmt.Sprintf("Add study-timer completions for %s to %s?", shell, display))
	if err != nil || !ok {
		return err
	}

	if err := appendCompletionHook(filepath.Join(homeDir, rel), completionHooks[shell]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "completions for %s added to %s\n", Primary(shell), Primary(display))
	return nil
}

func completionInstalled(path string) bool {
	data, err := os.ReadFile(path)
	return err == nil && strings.Contains(string(data), completionMarker)
}

func appendCompletionHook(path, hook string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "\n# study-timer shell completion\n%s\n", hook)
	if err := f.Close(); err != nil {
		return err
	}
	return writeErr
}
