// Package tracker implements the wall-clock stopwatch behind the live timer.
//
// Elapsed time is always derived from the clock, never from the number of
// ticks delivered, so a late or skipped callback only affects when the display
// refreshes and not what it shows.
package tracker

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	DefaultInterval       = 500 * time.Millisecond
	DefaultDriftTolerance = 100 * time.Millisecond
)

// Options configures a Tracker. Zero values use the defaults.
type Options struct {
	Now            func() time.Time
	Interval       time.Duration
	DriftTolerance time.Duration
	Logger         hclog.Logger
}

// Tracker is a pausable stopwatch that reports its elapsed time to a callback
// on a fixed cadence while running.
type Tracker struct {
	mu       sync.Mutex
	onTick   func(elapsed time.Duration)
	now      func() time.Time
	interval time.Duration
	drift    time.Duration
	logger   hclog.Logger

	start    time.Time
	acc      time.Duration
	running  bool
	expected time.Time
	stop     chan struct{}
	drifts   int
}

// New creates a stopped tracker. onTick may be nil.
func New(onTick func(elapsed time.Duration), opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.DriftTolerance <= 0 {
		opts.DriftTolerance = DefaultDriftTolerance
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Tracker{
		onTick:   onTick,
		now:      opts.Now,
		interval: opts.Interval,
		drift:    opts.DriftTolerance,
		logger:   opts.Logger,
	}
}

// Start resets the accumulated time and starts running.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
	t.acc = 0
	t.run()
}

// Pause stops the callbacks and folds the running span into the total.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.acc += t.span()
	t.halt()
}

// Resume continues from now, keeping the time accumulated so far.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.run()
}

// End stops the tracker and returns the final elapsed time.
func (t *Tracker) End() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.acc += t.span()
		t.halt()
	}
	return t.acc
}

// Restore seeds the tracker with time already studied, e.g. from a persisted
// session, and optionally resumes running from now.
func (t *Tracker) Restore(elapsed time.Duration, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
	t.acc = max(0, elapsed)
	if running {
		t.run()
	}
}

// Elapsed returns now - start + accumulated while running, accumulated otherwise.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

// Running reports whether callbacks are being delivered.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// DriftEvents returns how many ticks arrived later than the drift tolerance.
func (t *Tracker) DriftEvents() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drifts
}

func (t *Tracker) elapsed() time.Duration {
	if t.running {
		return t.span() + t.acc
	}
	return t.acc
}

// span is the running time since start; a clock that moved backwards
// contributes nothing.
func (t *Tracker) span() time.Duration {
	return max(0, t.now().Sub(t.start))
}

// run must be called with mu held.
func (t *Tracker) run() {
	now := t.now()
	t.start = now
	t.expected = now.Add(t.interval)
	t.running = true
	t.stop = make(chan struct{})
	go t.loop(t.stop)
}

// halt must be called with mu held.
func (t *Tracker) halt() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.running = false
}

func (t *Tracker) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			elapsed, ok := t.tick(stop)
			if !ok {
				return
			}
			if t.onTick != nil {
				t.onTick(elapsed)
			}
		}
	}
}

// tick records one scheduled callback. It returns false when stop no longer
// belongs to the current run.
func (t *Tracker) tick(stop chan struct{}) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.stop != stop {
		return 0, false
	}
	now := t.now()
	if late := now.Sub(t.expected); late > t.drift {
		t.drifts++
		t.logger.Debug("timer drift detected", "drift", late)
	}
	t.expected = t.expected.Add(t.interval)
	return t.elapsed(), true
}
