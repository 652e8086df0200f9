package cli

import (
	"bytes"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/config"
	"github.com/yeoul2023/study-timer/internal/storage"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRe.ReplaceAllString(s, "") }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestApp returns an App on an in-memory store whose tracker never ticks
// on its own during a test.
func newTestApp(t *testing.T) (*app.App, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: t0}
	cfg := config.Default(t.TempDir())
	cfg.Storage = config.StorageMemory
	return newAppWith(t, cfg, storage.NewMemoryKV(), clk), clk
}

func newAppWith(t *testing.T, cfg *config.Config, kv storage.KV, clk *fakeClock) *app.App {
	t.Helper()
	cfg.Intervals.Tick = time.Hour
	a := app.New(app.Deps{Config: cfg, KV: kv, Now: clk.now})
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(stdout)
	return cmd, stdout
}

// run executes fn against a fresh test command and returns its plain output.
func run(t *testing.T, fn func(cmd *cobra.Command) error) (string, error) {
	t.Helper()
	cmd, stdout := newTestCmd()
	err := fn(cmd)
	return stripANSI(stdout.String()), err
}

// studied records one ended session of length d starting now.
func studied(t *testing.T, a *app.App, clk *fakeClock, d time.Duration) {
	t.Helper()
	if _, err := a.StartSession(); err != nil {
		t.Fatal(err)
	}
	clk.advance(d)
	if _, err := a.EndSession(); err != nil {
		t.Fatal(err)
	}
}

func noPrompts() PromptKit { return PromptKit{} }

func declined(string) (bool, error) { return false, nil }
