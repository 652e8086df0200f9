// Package app wires the ledger, tracker and storage gateway together. An App
// serializes every command and background job behind a single mutex.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/yeoul2023/study-timer/internal/config"
	"github.com/yeoul2023/study-timer/internal/ledger"
	"github.com/yeoul2023/study-timer/internal/storage"
	"github.com/yeoul2023/study-timer/internal/timetrack"
	"github.com/yeoul2023/study-timer/internal/tracker"
)

// ShortfallThreshold is the completion rate under which an ended session asks
// for a shortfall reason.
const ShortfallThreshold = 80

// Deps are the collaborators of an App. Nil fields get defaults.
type Deps struct {
	Config *config.Config
	KV     storage.KV
	Now    func() time.Time
	Logger hclog.Logger
}

// App is the study timer core.
type App struct {
	mu      sync.Mutex
	cfg     *config.Config
	now     func() time.Time
	logger  hclog.Logger
	kv      storage.KV
	gateway *storage.Gateway
	ledger  *ledger.Ledger
	tracker *tracker.Tracker

	tickMu sync.Mutex
	onTick func(time.Duration)
}

// EndResult describes an ended session and what the caller should offer next.
type EndResult struct {
	Session   ledger.Session
	Summary   ledger.Summary
	GoalHours float64
	// Celebrate is true the first time today's goal is reached.
	Celebrate bool
	// UnderGoal is true when today's completion rate is below ShortfallThreshold.
	UnderGoal bool
}

// New builds an App and loads the persisted store.
func New(deps Deps) *App {
	if deps.Config == nil {
		deps.Config = config.Default("")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}

	a := &App{
		cfg:    deps.Config,
		now:    deps.Now,
		logger: deps.Logger,
		kv:     deps.KV,
	}
	a.gateway = storage.NewGateway(deps.KV, storage.Options{
		Now:    deps.Now,
		Logger: deps.Logger.Named("storage"),
	})
	a.tracker = tracker.New(a.dispatchTick, tracker.Options{
		Now:      deps.Now,
		Interval: deps.Config.Intervals.Tick,
		Logger:   deps.Logger.Named("tracker"),
	})
	a.Init()
	return a
}

// Open builds the KV backend named by cfg and returns an App over it.
func Open(cfg *config.Config, logger hclog.Logger) *App {
	var kv storage.KV
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := storage.OpenSQLite(cfg.DatabasePath())
		if err != nil {
			logger.Warn("cannot open database", "path", cfg.DatabasePath(), "error", err)
		} else {
			kv = db
		}
	case config.StorageMemory:
		kv = storage.NewMemoryKV()
	default:
		kv = storage.NewFileKV(cfg.DataDir)
	}
	return New(Deps{Config: cfg, KV: kv, Logger: logger})
}

// Init reloads the store from storage and re-seeds the tracker from today's
// open session, if any.
func (a *App) Init() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initLocked(a.gateway.Load())
}

func (a *App) initLocked(store ledger.Store) {
	a.ledger = ledger.New(store, ledger.Options{
		Now:              a.now,
		Logger:           a.logger.Named("ledger"),
		DefaultGoalHours: a.cfg.GoalHours,
	})
	if len(a.ledger.Recovered()) > 0 {
		a.save()
	}
	a.restoreTracker()
}

func (a *App) restoreTracker() {
	s, ok := a.ledger.CurrentSession()
	if !ok || s.Ended() {
		a.tracker.Restore(0, false)
		return
	}
	a.tracker.Restore(s.Elapsed(a.now()), !s.Paused())
}

// Close stops the tracker, saves the store and releases the backend.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker.End()
	a.save()
	if c, ok := a.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Ephemeral reports whether data is kept in memory only.
func (a *App) Ephemeral() bool { return a.gateway.Ephemeral() }

// Config returns the configuration the App runs with.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the App's logger.
func (a *App) Logger() hclog.Logger { return a.logger }

// SetTickListener registers fn to receive the tracker's elapsed time on every
// tick. Pass nil to unregister.
func (a *App) SetTickListener(fn func(time.Duration)) {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()
	a.onTick = fn
}

func (a *App) dispatchTick(elapsed time.Duration) {
	a.tickMu.Lock()
	fn := a.onTick
	a.tickMu.Unlock()
	if fn != nil {
		fn(elapsed)
	}
}

func (a *App) save() bool {
	return a.gateway.Save(a.ledger.Store())
}

// Save persists the current store.
func (a *App) Save() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.save()
}

// StartSession begins a session and starts the tracker.
func (a *App) StartSession() (ledger.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.ledger.StartSession()
	if err != nil {
		return ledger.Session{}, err
	}
	a.tracker.Start()
	a.save()
	a.logger.Debug("session started", "day", a.ledger.TodayKey())
	return s, nil
}

// PauseSession pauses the running session.
func (a *App) PauseSession(reason string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ledger.PauseSession(reason); err != nil {
		return err
	}
	a.tracker.Pause()
	a.save()
	return nil
}

// ResumeSession resumes a paused session.
func (a *App) ResumeSession() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ledger.ResumeSession(); err != nil {
		return err
	}
	a.tracker.Resume()
	a.save()
	return nil
}

// EndSession ends the current session and reports whether the caller should
// celebrate or ask for a shortfall reason.
func (a *App) EndSession() (EndResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.ledger.EndSession()
	if err != nil {
		return EndResult{}, err
	}
	a.tracker.End()

	today := a.ledger.Today()
	res := EndResult{
		Session:   s,
		Celebrate: a.ledger.Celebrate(),
		Summary:   today.Summary,
		GoalHours: today.GoalHours,
		UnderGoal: today.Summary.CompletionRate < ShortfallThreshold,
	}
	a.save()
	return res, nil
}

// CheckIn records the check-in on today and sets its goal.
func (a *App) CheckIn(goalHours float64) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp, err := a.ledger.CheckIn(goalHours)
	if err != nil {
		return "", err
	}
	a.save()
	return stamp, nil
}

// SetGoal changes today's goal.
func (a *App) SetGoal(goalHours float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ledger.SetGoal(goalHours); err != nil {
		return err
	}
	a.save()
	return nil
}

// RecordShortfall stores why today ended under target.
func (a *App) RecordShortfall(reason, memo string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ledger.RecordShortfall(reason, memo)
	a.save()
}

// DeleteSession removes a session by index from the day under key. Deleting
// today's open session also stops the tracker.
func (a *App) DeleteSession(key string, index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ledger.DeleteSession(key, index); err != nil {
		return err
	}
	if key == a.ledger.TodayKey() {
		a.restoreTracker()
	}
	a.save()
	return nil
}

// Rollover switches to the new calendar date when it changed.
func (a *App) Rollover() ledger.RolloverResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := a.ledger.Rollover()
	if !res.Rolled {
		return res
	}
	if res.ForcedEnd {
		a.tracker.End()
	}
	a.save()
	return res
}

// CurrentSession returns today's most recent session.
func (a *App) CurrentSession() (ledger.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.CurrentSession()
}

// CurrentState returns the session state machine state.
func (a *App) CurrentState() ledger.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.CurrentState()
}

// Elapsed returns the tracker's elapsed time for the current session.
func (a *App) Elapsed() time.Duration {
	return a.tracker.Elapsed()
}

// TodayKey returns the date key of today.
func (a *App) TodayKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.TodayKey()
}

// Today returns a copy of today's record.
func (a *App) Today() ledger.Day {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyDay(a.ledger.Today())
}

// Day returns a copy of the record under key.
func (a *App) Day(key string) (ledger.Day, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.ledger.Day(key)
	if !ok || d == nil {
		return ledger.Day{}, false
	}
	return copyDay(d), true
}

func copyDay(d *ledger.Day) ledger.Day {
	out := *d
	out.Sessions = append([]ledger.Session(nil), d.Sessions...)
	return out
}

// Anomaly is a stored session that failed validation.
type Anomaly struct {
	Key      string
	Index    int
	Problems []string
}

// Validate checks every stored session for inconsistencies.
func (a *App) Validate() []Anomaly {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []Anomaly
	store := a.ledger.Store()
	for _, key := range timetrack.SortedKeys(store) {
		for i, s := range store[key].Sessions {
			if problems := ledger.ValidateSession(s, a.now()); len(problems) > 0 {
				out = append(out, Anomaly{Key: key, Index: i, Problems: problems})
			}
		}
	}
	return out
}

// Backup writes a backup file into the configured backup directory.
func (a *App) Backup() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gateway.Backup(a.ledger.Store(), a.cfg.BackupDir)
}

// LastBackup returns the date of the last manual backup.
func (a *App) LastBackup() (time.Time, bool) {
	return a.gateway.LastBackup()
}

// BackupDue reports whether a backup reminder is due.
func (a *App) BackupDue() bool {
	return a.gateway.BackupDue()
}

// Restore replaces the store with the backup at path once it validates. On
// failure the live store is left untouched. It returns the number of days
// restored and the malformed keys that were skipped.
func (a *App) Restore(ctx context.Context, path string) (int, []string, error) {
	var res storage.RestoreResult
	select {
	case res = <-a.gateway.Restore(ctx, path):
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
	if res.Err != nil {
		return 0, nil, res.Err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.replaceLocked(res.Store)
	a.logger.Info("store restored", "path", path, "days", len(res.Store), "skipped", len(res.Skipped))
	return len(res.Store), res.Skipped, nil
}

// AutoBackup pushes a snapshot of the store into the auto-backup ring.
func (a *App) AutoBackup() (storage.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gateway.AutoBackup(a.ledger.Store())
}

// AutoBackups lists the auto-backup ring, oldest first.
func (a *App) AutoBackups() []storage.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gateway.AutoBackups()
}

// RestoreAutoBackup replaces the store with the snapshot at index.
func (a *App) RestoreAutoBackup(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, ok := a.gateway.AutoBackupAt(index)
	if !ok {
		return fmt.Errorf("no auto-backup at index %d", index)
	}
	if snap.Data == nil {
		snap.Data = ledger.Store{}
	}
	a.replaceLocked(snap.Data)
	return nil
}

func (a *App) replaceLocked(store ledger.Store) {
	a.initLocked(store)
	a.save()
}
