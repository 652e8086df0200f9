package timetrack

import (
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// ReportSession is one ended session in a printable report.
type ReportSession struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Pauses   int
}

// ReportDay holds one day of a printable report.
type ReportDay struct {
	Date           time.Time
	GoalHours      float64
	ActualHours    float64
	CompletionRate int
	CheckIn        string
	UnderGoal      string
	Memo           string
	Sessions       []ReportSession
}

// ReportData holds a printable summary of the days between From and To.
type ReportData struct {
	From       time.Time
	To         time.Time
	Days       []ReportDay
	TotalHours float64
	AvgRate    int
}

// BuildReport collects the days whose keys fall within [from, to], both
// inclusive, with session times expressed in loc.
func BuildReport(store ledger.Store, from, to time.Time, loc *time.Location) ReportData {
	fromKey, toKey := ledger.DateKey(from), ledger.DateKey(to)
	data := ReportData{From: from, To: to}

	var rateSum int
	for _, key := range SortedKeys(store) {
		if key < fromKey || key > toKey {
			continue
		}
		d := store[key]
		date, err := time.ParseInLocation(ledger.DateLayout, key, loc)
		if err != nil {
			continue
		}

		day := ReportDay{
			Date:           date,
			GoalHours:      d.GoalHours,
			ActualHours:    d.Summary.ActualHours,
			CompletionRate: d.Summary.CompletionRate,
			UnderGoal:      d.Summary.UnderGoalReason,
			Memo:           d.Summary.Memo,
		}
		if d.CheckIn != nil {
			day.CheckIn = *d.CheckIn
		}
		for _, s := range d.EndedSessions() {
			day.Sessions = append(day.Sessions, ReportSession{
				Start:    s.StartTime(loc),
				End:      s.EndTime(loc),
				Duration: s.Duration(),
				Pauses:   len(s.Pauses),
			})
		}

		data.Days = append(data.Days, day)
		data.TotalHours += day.ActualHours
		rateSum += day.CompletionRate
	}

	data.TotalHours = ledger.RoundHours(data.TotalHours)
	if len(data.Days) > 0 {
		data.AvgRate = rateSum / len(data.Days)
	}
	return data
}
