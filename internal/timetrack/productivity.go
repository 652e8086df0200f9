package timetrack

import (
	"sort"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// HourScore is the productivity score of one start hour.
type HourScore struct {
	Hour     int
	Score    float64
	Sessions int
	Pauses   int
	Total    time.Duration
}

// ProductiveHours buckets ended sessions by the hour of their start in loc and
// scores each bucket as avgHours / (avgPauses + 1). All 24 hours are returned,
// highest score first; equal scores keep hour order.
func ProductiveHours(store ledger.Store, loc *time.Location) []HourScore {
	buckets := make([]HourScore, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}

	for _, d := range store {
		if d == nil {
			continue
		}
		for _, s := range d.Sessions {
			if !s.Ended() {
				continue
			}
			b := &buckets[s.StartTime(loc).Hour()]
			b.Sessions++
			b.Pauses += len(s.Pauses)
			b.Total += s.Duration()
		}
	}

	for i := range buckets {
		b := &buckets[i]
		if b.Sessions == 0 {
			continue
		}
		n := float64(b.Sessions)
		avgHours := b.Total.Hours() / n
		avgPauses := float64(b.Pauses) / n
		b.Score = avgHours * (1 / (avgPauses + 1))
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Score > buckets[j].Score
	})
	return buckets
}
