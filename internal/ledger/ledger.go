package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
)

// State is the lifecycle state of today's current session.
type State string

const (
	StateInactive State = "inactive"
	StateActive   State = "active"
	StatePaused   State = "paused"
	StateEnded    State = "ended"
)

// Options configures a Ledger. Zero values fall back to sensible defaults.
type Options struct {
	Now              func() time.Time
	Logger           hclog.Logger
	DefaultGoalHours float64
}

// Ledger owns the Store and applies session commands to today's day.
// It is not safe for concurrent use; callers serialize access.
type Ledger struct {
	store       Store
	todayKey    string
	now         func() time.Time
	logger      hclog.Logger
	defaultGoal float64
	recovered   []string
}

// RolloverResult describes what a Rollover call did.
type RolloverResult struct {
	Rolled    bool
	ForcedEnd bool
	From      string
	To        string
}

// New creates a ledger over store and materializes today's day.
func New(store Store, opts Options) *Ledger {
	if store == nil {
		store = Store{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.DefaultGoalHours <= 0 {
		opts.DefaultGoalHours = DefaultGoalHours
	}
	l := &Ledger{
		store:       store,
		now:         opts.Now,
		logger:      opts.Logger,
		defaultGoal: opts.DefaultGoalHours,
	}
	l.todayKey = DateKey(l.now())
	l.closeStale()
	l.ensureDay(l.todayKey)
	return l
}

// closeStale ends sessions left open on days before today, as happens when
// the process exits before midnight and starts again after it. Each session
// ends at the following midnight, or now if that comes first.
func (l *Ledger) closeStale() {
	now := l.now()
	for key, d := range l.store {
		if key >= l.todayKey || d == nil || len(d.Sessions) == 0 {
			continue
		}
		s := &d.Sessions[len(d.Sessions)-1]
		if s.Ended() {
			continue
		}
		at := now
		if day, err := time.ParseInLocation(DateLayout, key, now.Location()); err == nil {
			if midnight := day.AddDate(0, 0, 1); midnight.Before(at) {
				at = midnight
			}
		}
		l.endAt(s, at.UnixMilli())
		d.Recompute()
		l.recovered = append(l.recovered, key)
		l.logger.Info("ended session left open on an earlier day", "day", key)
	}
	sort.Strings(l.recovered)
}

// Recovered lists the earlier days whose open session New ended.
func (l *Ledger) Recovered() []string {
	return l.recovered
}

// Store returns the underlying store.
func (l *Ledger) Store() Store {
	return l.store
}

// TodayKey returns the date key the ledger treats as today.
func (l *Ledger) TodayKey() string {
	return l.todayKey
}

// Today returns today's day record.
func (l *Ledger) Today() *Day {
	return l.ensureDay(l.todayKey)
}

// Day returns the record stored under key.
func (l *Ledger) Day(key string) (*Day, bool) {
	d, ok := l.store[key]
	return d, ok
}

func (l *Ledger) ensureDay(key string) *Day {
	d, ok := l.store[key]
	if !ok || d == nil {
		d = NewDay(l.defaultGoal)
		l.store[key] = d
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	return d
}

// current returns a pointer to the most recently created session of today.
func (l *Ledger) current() *Session {
	d := l.Today()
	if len(d.Sessions) == 0 {
		return nil
	}
	return &d.Sessions[len(d.Sessions)-1]
}

// CurrentSession returns a copy of today's most recent session.
func (l *Ledger) CurrentSession() (Session, bool) {
	s := l.current()
	if s == nil {
		return Session{}, false
	}
	return *s, true
}

// CurrentState derives the state machine state from the current session.
func (l *Ledger) CurrentState() State {
	s := l.current()
	switch {
	case s == nil:
		return StateInactive
	case s.Ended():
		return StateEnded
	case s.Paused():
		return StatePaused
	default:
		return StateActive
	}
}

// StartSession begins a new session on today's day.
func (l *Ledger) StartSession() (Session, error) {
	if s := l.current(); s != nil && !s.Ended() {
		return Session{}, ErrSessionInProgress
	}
	d := l.Today()
	s := Session{
		Start:        l.now().UnixMilli(),
		Pauses:       []int64{},
		Resumes:      []int64{},
		PauseReasons: []PauseReason{},
	}
	d.Sessions = append(d.Sessions, s)
	return s, nil
}

// openSession returns the current session if it exists and has not ended.
func (l *Ledger) openSession() (*Session, error) {
	s := l.current()
	if s == nil {
		return nil, ErrNoSession
	}
	if s.Ended() {
		return nil, ErrSessionEnded
	}
	return s, nil
}

// PauseSession pauses the current session, logging reason.
func (l *Ledger) PauseSession(reason string) error {
	s, err := l.openSession()
	if err != nil {
		return err
	}
	if s.Paused() {
		return ErrAlreadyPaused
	}
	now := l.now().UnixMilli()
	s.PausedAt = &now
	s.Pauses = append(s.Pauses, now)
	s.PauseReasons = append(s.PauseReasons, PauseReason{Time: now, Reason: reason})
	return nil
}

// ResumeSession resumes a paused session and folds the pause into Acc.
func (l *Ledger) ResumeSession() error {
	s, err := l.openSession()
	if err != nil {
		return err
	}
	if s.PausedAt == nil {
		return ErrNotPaused
	}
	now := l.now().UnixMilli()
	s.Acc += max(0, now-*s.PausedAt)
	s.PausedAt = nil
	s.Resumes = append(s.Resumes, now)
	return nil
}

// EndSession terminates the current session and recomputes today's summary.
// A session still paused at this point has its open pause folded in first.
func (l *Ledger) EndSession() (Session, error) {
	s, err := l.openSession()
	if err != nil {
		return Session{}, err
	}
	l.end(s)
	l.Today().Recompute()
	return *s, nil
}

func (l *Ledger) end(s *Session) {
	l.endAt(s, l.now().UnixMilli())
}

func (l *Ledger) endAt(s *Session, now int64) {
	if s.PausedAt != nil {
		s.Acc += max(0, now-*s.PausedAt)
		s.PausedAt = nil
	}
	s.End = now
	if s.End-s.Start-s.Acc < 0 {
		l.logger.Warn("negative session duration, clamping end",
			"start", s.Start, "end", s.End, "acc", s.Acc)
		s.End = s.Start + s.Acc
	}
}

// DeleteSession removes the session at index from the day stored under key
// and recomputes that day's summary.
func (l *Ledger) DeleteSession(key string, index int) error {
	d, ok := l.store[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDayNotFound, key)
	}
	if index < 0 || index >= len(d.Sessions) {
		return fmt.Errorf("%w: %d (day has %d)", ErrSessionIndex, index, len(d.Sessions))
	}
	d.Sessions = append(d.Sessions[:index], d.Sessions[index+1:]...)
	d.Recompute()
	return nil
}

// CheckIn records the check-in time on today's day and sets its goal.
// It returns the recorded "HH:MM" stamp.
func (l *Ledger) CheckIn(goalHours float64) (string, error) {
	if goalHours <= 0 {
		return "", ErrInvalidGoal
	}
	stamp := l.now().Format("15:04")
	d := l.Today()
	d.CheckIn = &stamp
	d.GoalHours = goalHours
	d.Recompute()
	return stamp, nil
}

// SetGoal changes today's goal and recomputes the completion rate.
func (l *Ledger) SetGoal(goalHours float64) error {
	if goalHours <= 0 {
		return ErrInvalidGoal
	}
	d := l.Today()
	d.GoalHours = goalHours
	d.Recompute()
	return nil
}

// RecordShortfall stores why today ended under target.
func (l *Ledger) RecordShortfall(reason, memo string) {
	d := l.Today()
	d.Summary.UnderGoalReason = reason
	d.Summary.Memo = memo
}

// Celebrate reports true exactly once per day, the first time today's goal
// is reached with some time studied.
func (l *Ledger) Celebrate() bool {
	d := l.Today()
	if d.GoalCelebrated || d.Summary.ActualHours <= 0 || d.Summary.CompletionRate < 100 {
		return false
	}
	d.GoalCelebrated = true
	return true
}

// Rollover switches the ledger to the clock's current date when it differs
// from the remembered key. An open session on the old day is ended first.
func (l *Ledger) Rollover() RolloverResult {
	key := DateKey(l.now())
	if key == l.todayKey {
		return RolloverResult{}
	}
	res := RolloverResult{Rolled: true, From: l.todayKey, To: key}
	if s := l.current(); s != nil && !s.Ended() {
		l.end(s)
		l.Today().Recompute()
		res.ForcedEnd = true
		l.logger.Info("date changed, ended open session", "day", l.todayKey)
	}
	l.todayKey = key
	l.ensureDay(key)
	return res
}
