// Package timetrack derives statistics, predictions and exports from a
// ledger.Store. Every function is a pure read; none mutates the store.
package timetrack

import (
	"sort"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// SessionStats aggregates ended sessions across the whole store.
type SessionStats struct {
	Count         int
	TotalHours    float64
	AvgSession    time.Duration
	Longest       time.Duration
	SessionsToday int
	PauseReasons  map[string]int
}

// AvgHours returns the average session length in hours.
func (s SessionStats) AvgHours() float64 { return s.AvgSession.Hours() }

// LongestHours returns the longest session length in hours.
func (s SessionStats) LongestHours() float64 { return s.Longest.Hours() }

// Sessions computes aggregate statistics. Averages, the maximum and the
// today count consider ended sessions only; the pause reason histogram counts
// every logged pause.
func Sessions(store ledger.Store, todayKey string) SessionStats {
	stats := SessionStats{
		TotalHours:   TotalHours(store),
		PauseReasons: map[string]int{},
	}

	var total time.Duration
	for _, key := range SortedKeys(store) {
		for _, s := range store[key].Sessions {
			for _, p := range s.PauseReasons {
				stats.PauseReasons[p.Reason]++
			}
			if !s.Ended() {
				continue
			}
			d := s.Duration()
			stats.Count++
			total += d
			stats.Longest = max(stats.Longest, d)
			if key == todayKey {
				stats.SessionsToday++
			}
		}
	}

	if stats.Count > 0 {
		stats.AvgSession = total / time.Duration(stats.Count)
	}
	return stats
}

// TotalHours sums every day's recorded actual hours, rounded to the two
// decimals each day is stored with so float noise from the sum never shows.
func TotalHours(store ledger.Store) float64 {
	var sum float64
	for _, d := range store {
		if d != nil {
			sum += d.Summary.ActualHours
		}
	}
	return ledger.RoundHours(sum)
}

// SortedKeys returns the store's date keys in ascending order. ISO date keys
// sort chronologically.
func SortedKeys(store ledger.Store) []string {
	keys := make([]string, 0, len(store))
	for k, d := range store {
		if d != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// RecentAverage averages actual hours over the last n date keys, skipping days
// without study time.
func RecentAverage(store ledger.Store, n int) float64 {
	keys := SortedKeys(store)
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	var sum float64
	var count int
	for _, k := range keys {
		if h := store[k].Summary.ActualHours; h > 0 {
			sum += h
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// DayHours is one bar of the weekly chart.
type DayHours struct {
	Date  time.Time
	Key   string
	Hours float64
	Goal  float64
}

// Weekly returns the 7 calendar days ending with today, oldest first. Days
// absent from the store report zero hours.
func Weekly(store ledger.Store, today time.Time) []DayHours {
	y, m, d := today.Date()
	out := make([]DayHours, 0, 7)
	for i := 6; i >= 0; i-- {
		date := time.Date(y, m, d-i, 0, 0, 0, 0, today.Location())
		key := ledger.DateKey(date)
		row := DayHours{Date: date, Key: key}
		if day, ok := store[key]; ok && day != nil {
			row.Hours = day.Summary.ActualHours
			row.Goal = day.GoalHours
		}
		out = append(out, row)
	}
	return out
}
