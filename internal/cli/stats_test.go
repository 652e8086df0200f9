package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeoul2023/study-timer/internal/app"
)

func studyTwice(t *testing.T) (*app.App, *fakeClock) {
	t.Helper()
	a, clk := newTestApp(t)

	_, err := a.StartSession()
	require.NoError(t, err)
	clk.advance(10 * time.Minute)
	require.NoError(t, a.PauseSession("phone"))
	clk.advance(5 * time.Minute)
	require.NoError(t, a.ResumeSession())
	clk.advance(20 * time.Minute)
	_, err = a.EndSession()
	require.NoError(t, err)

	studied(t, a, clk, 15*time.Minute)
	return a, clk
}

func TestStats(t *testing.T) {
	a, _ := studyTwice(t)

	out, err := run(t, func(cmd *cobra.Command) error { return runStats(cmd, a) })
	require.NoError(t, err)
	assert.Regexp(t, `count\s+2\n`, out)
	assert.Regexp(t, `today\s+2\n`, out)
	assert.Regexp(t, `average\s+00:22:30\n`, out)
	assert.Regexp(t, `longest\s+00:30:00\n`, out)
	assert.Regexp(t, `total\s+45m\n`, out)
	assert.Contains(t, out, "Pause reasons")
	assert.Regexp(t, `phone\s+1\n`, out)

	week := out[strings.Index(out, "Last 7 days"):]
	assert.Equal(t, 8, strings.Count(week, "\n"))
	assert.Contains(t, week, "Tue 03/04")
	assert.Contains(t, week, "Mon 03/10")
	assert.True(t, strings.HasSuffix(week, "45m\n"))
}

func TestStatsEmpty(t *testing.T) {
	a, _ := newTestApp(t)
	out, err := run(t, func(cmd *cobra.Command) error { return runStats(cmd, a) })
	require.NoError(t, err)
	assert.Regexp(t, `count\s+0\n`, out)
	assert.NotContains(t, out, "Pause reasons")
}

func TestSortReasons(t *testing.T) {
	got := sortReasons(map[string]int{"phone": 2, "meal": 3, "break": 2})
	assert.Equal(t, []reasonCount{
		{reason: "meal", count: 3},
		{reason: "break", count: 2},
		{reason: "phone", count: 2},
	}, got)
}

func TestProductivity(t *testing.T) {
	a, _ := studyTwice(t)

	out, err := run(t, func(cmd *cobra.Command) error { return runProductivity(cmd, a, 5) })
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "1. 09:00")
	assert.Contains(t, lines[0], "2 session(s), 1 pause(s)")
}

func TestProductivityEmptyAndInvalid(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := run(t, func(cmd *cobra.Command) error { return runProductivity(cmd, a, 5) })
	require.NoError(t, err)
	assert.Equal(t, "No ended sessions yet.\n", out)

	_, err = run(t, func(cmd *cobra.Command) error { return runProductivity(cmd, a, 0) })
	assert.ErrorContains(t, err, "invalid --top")
	_, err = run(t, func(cmd *cobra.Command) error { return runProductivity(cmd, a, 25) })
	assert.ErrorContains(t, err, "invalid --top")
}

func TestPredictWithoutHistory(t *testing.T) {
	a, _ := newTestApp(t)
	out, err := run(t, func(cmd *cobra.Command) error { return runPredict(cmd, a) })
	require.NoError(t, err)
	assert.Equal(t, "4h remaining, not enough history to predict a finish time\n", out)
}

func TestPredictCompleted(t *testing.T) {
	a, clk := newTestApp(t)
	require.NoError(t, a.SetGoal(0.5))
	studied(t, a, clk, 40*time.Minute)

	out, err := run(t, func(cmd *cobra.Command) error { return runPredict(cmd, a) })
	require.NoError(t, err)
	assert.Contains(t, out, "already reached")
}

func TestPredictFromYesterday(t *testing.T) {
	a, clk := newTestApp(t)
	studied(t, a, clk, time.Hour)
	clk.advance(23 * time.Hour)
	require.True(t, a.Rollover().Rolled)

	out, err := run(t, func(cmd *cobra.Command) error { return runPredict(cmd, a) })
	require.NoError(t, err)
	assert.Contains(t, out, "4h remaining at 100% study rate")
	assert.Contains(t, out, "expect to finish around 13:00 (4h from now)")
}
