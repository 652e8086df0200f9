package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/config"
	"github.com/yeoul2023/study-timer/internal/ledger"
	"gopkg.in/yaml.v3"
)

var configCmd = GroupCommand{
	Use:   "config",
	Short: "Show or change settings",
	Subcommands: []*cobra.Command{
		configShowCmd,
		configPathCmd,
		configSetCmd,
		configResetCmd,
	},
}.Build()

var configShowCmd = LeafCommand{
	Use:   "show",
	Short: "Print the effective settings as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return runConfigShow(cmd, homeDir)
	},
}.Build()

var configPathCmd = LeafCommand{
	Use:   "path",
	Short: "Print the settings file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.Path(homeDir))
		return nil
	},
}.Build()

var configSetCmd = LeafCommand{
	Use:   "set <key> <value>",
	Short: "Change one setting (" + strings.Join(settableKeys(), ", ") + ")",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return runConfigSet(cmd, homeDir, args[0], args[1])
	},
}.Build()

var configResetCmd = LeafCommand{
	Use:   "reset",
	Short: "Restore the default settings",
	BoolFlags: []BoolFlag{
		{Name: "yes", Usage: "skip confirmation prompt"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return runConfigReset(cmd, homeDir, confirmFromFlag(cmd))
	},
}.Build()

// configSetters apply a raw value to one settable key.
var configSetters = map[string]func(cfg *config.Config, value string) error{
	"goal_hours": func(cfg *config.Config, value string) error {
		goal, err := ledger.ParseGoal(value)
		if err != nil {
			return err
		}
		cfg.GoalHours = goal
		return nil
	},
	"storage": func(cfg *config.Config, value string) error {
		cfg.Storage = value
		return nil
	},
	"log_level": func(cfg *config.Config, value string) error {
		cfg.LogLevel = value
		return nil
	},
	"data_dir": func(cfg *config.Config, value string) error {
		cfg.DataDir = value
		return nil
	},
	"backup_dir": func(cfg *config.Config, value string) error {
		cfg.BackupDir = value
		return nil
	},
	"pause_reasons": func(cfg *config.Config, value string) error {
		var reasons []string
		for _, r := range strings.Split(value, ",") {
			if r = strings.TrimSpace(r); r != "" {
				reasons = append(reasons, r)
			}
		}
		if len(reasons) == 0 {
			return fmt.Errorf("pause_reasons needs at least one comma-separated reason")
		}
		cfg.PauseReasons = reasons
		return nil
	},
}

func settableKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runConfigShow(cmd *cobra.Command, homeDir string) error {
	cfg, err := config.Read(homeDir)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, homeDir, key, value string) error {
	set, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (settable: %s)", key, strings.Join(settableKeys(), ", "))
	}

	cfg, err := config.Read(homeDir)
	if err != nil {
		return err
	}
	if err := set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Write(homeDir, cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", Primary(key), Primary(value))
	return nil
}

func runConfigReset(cmd *cobra.Command, homeDir string, confirm ConfirmFunc) error {
	ok, err := confirm("Reset all settings to their defaults?")
	if err != nil || !ok {
		return err
	}
	if err := config.Write(homeDir, config.Default(homeDir)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "settings reset, written to %s\n", Primary(config.Path(homeDir)))
	return nil
}
