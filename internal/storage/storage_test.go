package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func sampleStore() ledger.Store {
	checkIn := "09:00"
	start := t0.UnixMilli()
	day := &ledger.Day{
		Sessions: []ledger.Session{{
			Start:        start,
			End:          start + 25*60*1000,
			Pauses:       []int64{},
			Resumes:      []int64{},
			PauseReasons: []ledger.PauseReason{},
		}},
		CheckIn:   &checkIn,
		GoalHours: 4,
	}
	day.Recompute()
	return ledger.Store{"2025-03-10": day}
}

func newTestGateway(t *testing.T) (*Gateway, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: t0}
	return NewGateway(NewMemoryKV(), Options{Now: clk.now}), clk
}

// failingKV rejects every write.
type failingKV struct{ MemoryKV }

func (f *failingKV) Set(string, []byte) error { return errors.New("disk full") }
func (f *failingKV) Probe() error            { return ErrUnavailable }

// brokenKV passes the probe but fails afterwards.
type brokenKV struct{}

func (brokenKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("io error") }
func (brokenKV) Set(string, []byte) error          { return errors.New("io error") }
func (brokenKV) Delete(string) error               { return nil }
func (brokenKV) Probe() error                      { return nil }

func TestKVBackends(t *testing.T) {
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	backends := map[string]KV{
		"memory": NewMemoryKV(),
		"file":   NewFileKV(filepath.Join(t.TempDir(), "data")),
		"sqlite": sqlite,
	}

	for name, kv := range backends {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, kv.Probe())

			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("k", []byte(`{"a":1}`)))
			v, ok, err := kv.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":1}`, string(v))

			require.NoError(t, kv.Set("k", []byte(`{"a":2}`)))
			v, _, _ = kv.Get("k")
			assert.Equal(t, `{"a":2}`, string(v))

			require.NoError(t, kv.Delete("k"))
			_, ok, err = kv.Get("k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Delete("never-set"))
		})
	}
}

func TestSQLiteKVPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "study.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(KeyStudyData, []byte(`{}`)))
	require.NoError(t, kv.Close())

	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()
	v, ok, err := kv.Get(KeyStudyData)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{}`, string(v))
}

func TestFileKVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv := NewFileKV(dir)
	require.NoError(t, kv.Set(KeyStudyData, []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "studyData.json", entries[0].Name())
}

func TestLoadEmptyWhenAbsent(t *testing.T) {
	g, _ := newTestGateway(t)
	store := g.Load()
	assert.NotNil(t, store)
	assert.Empty(t, store)
}

func TestLoadEmptyWhenCorrupt(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyStudyData, []byte("{not json")))
	g := NewGateway(kv, Options{})

	assert.Empty(t, g.Load())
}

func TestLoadEmptyOnReadError(t *testing.T) {
	g := NewGateway(brokenKV{}, Options{})
	assert.Empty(t, g.Load())
	assert.False(t, g.Save(sampleStore()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g, _ := newTestGateway(t)
	store := sampleStore()

	require.True(t, g.Save(store))
	assert.Equal(t, store, g.Load())
}

func TestLoadOriginalWireFormat(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyStudyData, []byte(`{
		"2025-03-10": {
			"sessions": [{"start": 1000, "end": 0, "acc": 0, "pauses": [5000], "resumes": [], "pauseReasons": [{"time": 5000, "reason": "휴식"}], "pt": 5000}],
			"summary": {"actualHours": 0, "completionRate": 0, "underGoalReason": "", "memo": ""},
			"checkIn": null,
			"goalHours": 4
		}
	}`)))
	g := NewGateway(kv, Options{})

	store := g.Load()
	require.Contains(t, store, "2025-03-10")
	day := store["2025-03-10"]
	require.Len(t, day.Sessions, 1)
	s := day.Sessions[0]
	assert.True(t, s.Paused())
	require.NotNil(t, s.PausedAt)
	assert.Equal(t, int64(5000), *s.PausedAt)
	assert.Equal(t, "휴식", s.PauseReasons[0].Reason)
	assert.Nil(t, day.CheckIn)
}

func TestProbeFailureFallsBackToMemory(t *testing.T) {
	g := NewGateway(&failingKV{}, Options{})
	assert.True(t, g.Ephemeral())

	store := sampleStore()
	assert.True(t, g.Save(store))
	assert.Equal(t, store, g.Load())
}

func TestNilBackendIsEphemeral(t *testing.T) {
	g := NewGateway(nil, Options{})
	assert.True(t, g.Ephemeral())
}

func TestBackupWritesIndentedFile(t *testing.T) {
	g, _ := newTestGateway(t)
	dir := filepath.Join(t.TempDir(), "backups")

	path, err := g.Backup(sampleStore(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "study_backup_2025-03-10.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"2025-03-10\": {")

	last, ok := g.LastBackup()
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", ledger.DateKey(last))
}

func TestBackupDue(t *testing.T) {
	g, clk := newTestGateway(t)
	assert.True(t, g.BackupDue())

	_, err := g.Backup(sampleStore(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, g.BackupDue())

	clk.advance(6 * 24 * time.Hour)
	assert.False(t, g.BackupDue())

	clk.advance(24 * time.Hour)
	assert.True(t, g.BackupDue())
}

func TestBackupThenRestoreRoundTrip(t *testing.T) {
	g, _ := newTestGateway(t)
	store := sampleStore()

	path, err := g.Backup(store, t.TempDir())
	require.NoError(t, err)

	res := <-g.Restore(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Equal(t, store, res.Store)
}

func TestRestoreMissingFile(t *testing.T) {
	g, _ := newTestGateway(t)
	res := <-g.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, res.Err)
	assert.Nil(t, res.Store)
}

func TestRestoreDoesNotTouchBackend(t *testing.T) {
	g, _ := newTestGateway(t)
	live := sampleStore()
	require.True(t, g.Save(live))

	path := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"2024-01-01": {"sessions": [], "summary": {}}}`), 0644))

	res := <-g.Restore(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Store, "2024-01-01")
	assert.Equal(t, live, g.Load())
}

func TestRestoreCanceled(t *testing.T) {
	g, _ := newTestGateway(t)
	path, err := g.Backup(sampleStore(), t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := <-g.Restore(ctx, path)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestParseBackupRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `hello`},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"number", `42`},
		{"empty object", `{}`},
		{"non-date key", `{"today": {"sessions": [], "summary": {}}}`},
		{"day not object", `{"2025-03-10": 5}`},
		{"missing sessions", `{"2025-03-10": {"summary": {}}}`},
		{"missing summary", `{"2025-03-10": {"sessions": []}}`},
		{"sessions not array", `{"2025-03-10": {"sessions": {}, "summary": {}}}`},
		{"summary not object", `{"2025-03-10": {"sessions": [], "summary": "x"}}`},
		{"bad session", `{"2025-03-10": {"sessions": [{"start": "x"}], "summary": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseBackup([]byte(tt.input))
			assert.ErrorIs(t, err, ErrInvalidBackup)
		})
	}
}

func TestParseBackupAcceptsMinimalDay(t *testing.T) {
	store, skipped, err := ParseBackup([]byte(`{"2025-03-10": {"sessions": [], "summary": {"actualHours": 1.5, "completionRate": 38}}}`))
	require.NoError(t, err)
	assert.Empty(t, skipped)
	day := store["2025-03-10"]
	require.NotNil(t, day)
	assert.Empty(t, day.Sessions)
	assert.Equal(t, 1.5, day.Summary.ActualHours)
	assert.Equal(t, 38, day.Summary.CompletionRate)
}

func TestParseBackupSkipsMalformedDays(t *testing.T) {
	input := `{
		"2025-03-10": {"sessions": [], "summary": {"actualHours": 1, "completionRate": 25}},
		"2025-03-11": {"sessions": []},
		"notes": {"sessions": [], "summary": {}}
	}`
	store, skipped, err := ParseBackup([]byte(input))
	require.NoError(t, err)
	assert.Len(t, store, 1)
	assert.Contains(t, store, "2025-03-10")
	assert.Equal(t, []string{"2025-03-11", "notes"}, skipped)
}

func TestRestoreReportsSkippedDays(t *testing.T) {
	g, _ := newTestGateway(t)
	path := filepath.Join(t.TempDir(), "mixed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"2025-03-10": {"sessions": [], "summary": {}},
		"2025-03-11": {"summary": {}}
	}`), 0644))

	res := <-g.Restore(context.Background(), path)
	require.NoError(t, res.Err)
	assert.Len(t, res.Store, 1)
	assert.Equal(t, []string{"2025-03-11"}, res.Skipped)
}

func TestAutoBackupRingKeepsNewestFive(t *testing.T) {
	g, clk := newTestGateway(t)

	var stamps []int64
	for i := 0; i < 7; i++ {
		snap, err := g.AutoBackup(sampleStore())
		require.NoError(t, err)
		stamps = append(stamps, snap.Timestamp)
		clk.advance(30 * time.Minute)
	}

	ring := g.AutoBackups()
	require.Len(t, ring, MaxAutoBackups)
	for i, snap := range ring {
		assert.Equal(t, stamps[i+2], snap.Timestamp)
	}
}

func TestAutoBackupIsDeepCopy(t *testing.T) {
	g, _ := newTestGateway(t)
	store := sampleStore()

	_, err := g.AutoBackup(store)
	require.NoError(t, err)
	store["2025-03-10"].GoalHours = 9

	snap, ok := g.AutoBackupAt(0)
	require.True(t, ok)
	assert.Equal(t, 4.0, snap.Data["2025-03-10"].GoalHours)
}

func TestAutoBackupAt(t *testing.T) {
	g, _ := newTestGateway(t)
	_, ok := g.AutoBackupAt(0)
	assert.False(t, ok)

	_, err := g.AutoBackup(sampleStore())
	require.NoError(t, err)

	snap, ok := g.AutoBackupAt(0)
	require.True(t, ok)
	assert.Equal(t, t0.UnixMilli(), snap.Timestamp)
	assert.Equal(t, sampleStore(), snap.Data)
	assert.Len(t, snap.ID(), 7)

	_, ok = g.AutoBackupAt(1)
	assert.False(t, ok)
	_, ok = g.AutoBackupAt(-1)
	assert.False(t, ok)
}

func TestNextAutoBackupIn(t *testing.T) {
	g, clk := newTestGateway(t)
	assert.Equal(t, 30*time.Minute, g.NextAutoBackupIn(30*time.Minute))

	_, err := g.AutoBackup(sampleStore())
	require.NoError(t, err)

	clk.advance(10 * time.Minute)
	assert.Equal(t, 20*time.Minute, g.NextAutoBackupIn(30*time.Minute))

	clk.advance(time.Hour)
	assert.Equal(t, time.Duration(0), g.NextAutoBackupIn(30*time.Minute))
}

func TestAutoBackupsUnreadableRingIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyAutoBackups, []byte("oops")))
	g := NewGateway(kv, Options{})
	assert.Empty(t, g.AutoBackups())
}
