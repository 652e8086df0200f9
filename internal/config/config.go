// Package config reads and writes the study-timer YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// DefaultPauseReasons are offered when pausing a session.
var DefaultPauseReasons = []string{"break", "meal", "phone", "restroom", "distraction", "other"}

// Intervals holds the cadence of the background jobs.
type Intervals struct {
	Tick       time.Duration `yaml:"tick"`
	Rollover   time.Duration `yaml:"rollover"`
	AutoSave   time.Duration `yaml:"autosave"`
	AutoBackup time.Duration `yaml:"autobackup"`
}

// Config is the on-disk configuration. Empty fields are filled by Defaults.
type Config struct {
	DataDir      string    `yaml:"data_dir"`
	Storage      string    `yaml:"storage"`
	GoalHours    float64   `yaml:"goal_hours"`
	BackupDir    string    `yaml:"backup_dir"`
	LogLevel     string    `yaml:"log_level"`
	PauseReasons []string  `yaml:"pause_reasons"`
	Intervals    Intervals `yaml:"intervals"`
}

// Dir returns the study-timer directory under homeDir.
func Dir(homeDir string) string {
	return filepath.Join(homeDir, ".study-timer")
}

// Path returns the path of the configuration file.
func Path(homeDir string) string {
	return filepath.Join(Dir(homeDir), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default(homeDir string) *Config {
	cfg := &Config{}
	cfg.applyDefaults(homeDir)
	return cfg
}

func (c *Config) applyDefaults(homeDir string) {
	if c.DataDir == "" {
		c.DataDir = Dir(homeDir)
	}
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.GoalHours == 0 {
		c.GoalHours = 4
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.DataDir, "backups")
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if len(c.PauseReasons) == 0 {
		c.PauseReasons = append([]string(nil), DefaultPauseReasons...)
	}
	if c.Intervals.Tick == 0 {
		c.Intervals.Tick = 500 * time.Millisecond
	}
	if c.Intervals.Rollover == 0 {
		c.Intervals.Rollover = time.Second
	}
	if c.Intervals.AutoSave == 0 {
		c.Intervals.AutoSave = 5 * time.Second
	}
	if c.Intervals.AutoBackup == 0 {
		c.Intervals.AutoBackup = 30 * time.Minute
	}
}

// Read loads the configuration from homeDir. A missing file yields the defaults.
func Read(homeDir string) (*Config, error) {
	data, err := os.ReadFile(Path(homeDir))
	if errors.Is(err, os.ErrNotExist) {
		return Default(homeDir), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(homeDir), err)
	}
	cfg.DataDir = expandHome(cfg.DataDir, homeDir)
	cfg.BackupDir = expandHome(cfg.BackupDir, homeDir)
	cfg.applyDefaults(homeDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write stores cfg under homeDir, creating the directory if needed.
func Write(homeDir string, cfg *Config) error {
	if err := os.MkdirAll(Dir(homeDir), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(homeDir), data, 0644)
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (expected file, sqlite or memory)", c.Storage)
	}
	if c.GoalHours <= 0 {
		return fmt.Errorf("goal_hours must be positive, got %g", c.GoalHours)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	for name, d := range map[string]time.Duration{
		"tick":       c.Intervals.Tick,
		"rollover":   c.Intervals.Rollover,
		"autosave":   c.Intervals.AutoSave,
		"autobackup": c.Intervals.AutoBackup,
	} {
		if d < 0 {
			return fmt.Errorf("interval %s must not be negative", name)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// DatabasePath is where the sqlite backend keeps its data.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "study.db")
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
