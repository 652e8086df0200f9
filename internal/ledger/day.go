package ledger

import (
	"math"
	"time"
)

// DefaultGoalHours is the goal assigned to a newly materialized day.
const DefaultGoalHours = 4.0

// minGoalHours guards the completion rate against a zero goal.
const minGoalHours = 0.1

// DateLayout is the layout of Store keys.
const DateLayout = "2006-01-02"

// Summary holds the values derived from a day's sessions plus the optional
// note recorded when the day ends under target.
type Summary struct {
	ActualHours     float64 `json:"actualHours"`
	CompletionRate  int     `json:"completionRate"`
	UnderGoalReason string  `json:"underGoalReason"`
	Memo            string  `json:"memo"`
}

// Day aggregates one calendar date's study activity.
type Day struct {
	Sessions       []Session `json:"sessions"`
	Summary        Summary   `json:"summary"`
	CheckIn        *string   `json:"checkIn"`
	GoalHours      float64   `json:"goalHours"`
	GoalCelebrated bool      `json:"goalCelebrated,omitempty"`
}

// Store maps date keys to days. It is the sole unit of persistence.
type Store map[string]*Day

// DateKey formats t as a Store key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NewDay returns an empty day with the given goal.
func NewDay(goalHours float64) *Day {
	return &Day{
		Sessions:  []Session{},
		GoalHours: goalHours,
	}
}

// Recompute derives ActualHours and CompletionRate from the ended sessions.
func (d *Day) Recompute() {
	var total int64
	for _, s := range d.Sessions {
		total += s.EffectiveMillis()
	}
	d.Summary.ActualHours = RoundHours(float64(total) / float64(time.Hour/time.Millisecond))
	d.Summary.CompletionRate = CompletionRate(d.Summary.ActualHours, d.GoalHours)
}

// EndedSessions returns the sessions that have been terminated, in order.
func (d *Day) EndedSessions() []Session {
	var out []Session
	for _, s := range d.Sessions {
		if s.Ended() {
			out = append(out, s)
		}
	}
	return out
}

// CompletionRate returns the goal percentage achieved, capped at 100.
func CompletionRate(actualHours, goalHours float64) int {
	goal := math.Max(goalHours, minGoalHours)
	return int(math.Min(100, math.Round(actualHours/goal*100)))
}

// RoundHours rounds to two decimals.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
