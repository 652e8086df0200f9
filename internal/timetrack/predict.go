package timetrack

import (
	"math"
	"sort"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// PredictionStatus classifies a Prediction.
type PredictionStatus string

const (
	StatusCompleted  PredictionStatus = "completed"
	StatusUnknown    PredictionStatus = "unknown"
	StatusInProgress PredictionStatus = "in_progress"
)

// predictionWindow is how many prior days feed the study rate.
const predictionWindow = 3

// Prediction estimates when today's goal will be reached.
type Prediction struct {
	Status         PredictionStatus
	RemainingHours float64
	// Rate is studied hours per elapsed hour on recent days.
	Rate        float64
	NeededHours float64
	CompletesAt time.Time
}

// Predict forecasts goal completion for the day under todayKey. The study
// rate is averaged over the prior days that have study time and whose last
// session has ended.
func Predict(store ledger.Store, todayKey string, now time.Time) Prediction {
	goal := ledger.DefaultGoalHours
	var actual float64
	if today, ok := store[todayKey]; ok && today != nil {
		actual = today.Summary.ActualHours
		if today.GoalHours > 0 {
			goal = today.GoalHours
		}
	}

	remaining := goal - actual
	if remaining <= 0 {
		return Prediction{Status: StatusCompleted}
	}

	var rateSum float64
	var days int
	for _, key := range priorKeys(store, todayKey, predictionWindow) {
		if rate, ok := studyRate(store[key]); ok {
			rateSum += rate
			days++
		}
	}
	if days == 0 {
		return Prediction{Status: StatusUnknown, RemainingHours: remaining}
	}

	rate := rateSum / float64(days)
	needed := remaining / rate
	return Prediction{
		Status:         StatusInProgress,
		RemainingHours: remaining,
		Rate:           rate,
		NeededHours:    math.Round(needed*10) / 10,
		CompletesAt:    now.Add(time.Duration(needed * float64(time.Hour))),
	}
}

// priorKeys returns up to n keys that sort strictly before todayKey, oldest first.
func priorKeys(store ledger.Store, todayKey string, n int) []string {
	keys := SortedKeys(store)
	i := sort.SearchStrings(keys, todayKey)
	keys = keys[:i]
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	return keys
}

// studyRate returns actual hours divided by the hours between the day's first
// session start and its last session end. Days whose last session is still
// open are skipped.
func studyRate(d *ledger.Day) (float64, bool) {
	if d == nil || d.Summary.ActualHours <= 0 || len(d.Sessions) == 0 {
		return 0, false
	}
	last := d.Sessions[len(d.Sessions)-1]
	if !last.Ended() {
		return 0, false
	}
	span := last.End - d.Sessions[0].Start
	if span <= 0 {
		return 0, false
	}
	hours := float64(span) / float64(time.Hour/time.Millisecond)
	return d.Summary.ActualHours / hours, true
}
