package timetrack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

// at returns 2025-03-<day> hh:mm in UTC.
func at(day, hh, mm int) time.Time {
	return time.Date(2025, 3, day, hh, mm, 0, 0, time.UTC)
}

// endedSession builds a session of the given effective length. Each pause is
// taken a minute after the previous resume and lasts the given duration.
func endedSession(start time.Time, length time.Duration, pauses ...time.Duration) ledger.Session {
	s := openSession(start, pauses...)
	s.End = start.Add(length).UnixMilli() + s.Acc
	return s
}

func openSession(start time.Time, pauses ...time.Duration) ledger.Session {
	s := ledger.Session{
		Start:        start.UnixMilli(),
		Pauses:       []int64{},
		Resumes:      []int64{},
		PauseReasons: []ledger.PauseReason{},
	}
	cursor := start
	for _, p := range pauses {
		cursor = cursor.Add(time.Minute)
		s.Pauses = append(s.Pauses, cursor.UnixMilli())
		s.PauseReasons = append(s.PauseReasons, ledger.PauseReason{Time: cursor.UnixMilli(), Reason: "break"})
		cursor = cursor.Add(p)
		s.Resumes = append(s.Resumes, cursor.UnixMilli())
		s.Acc += p.Milliseconds()
	}
	return s
}

func studyDay(goal float64, sessions ...ledger.Session) *ledger.Day {
	d := ledger.NewDay(goal)
	d.Sessions = append(d.Sessions, sessions...)
	d.Recompute()
	return d
}

func TestSessions(t *testing.T) {
	open := openSession(at(10, 15, 0))
	open.PauseReasons = append(open.PauseReasons, ledger.PauseReason{Time: at(10, 15, 5).UnixMilli(), Reason: "phone"})

	store := ledger.Store{
		"2025-03-09": studyDay(4, endedSession(at(9, 9, 0), 90*time.Minute, 5*time.Minute)),
		"2025-03-10": studyDay(4,
			endedSession(at(10, 9, 0), 30*time.Minute),
			endedSession(at(10, 11, 0), 60*time.Minute, time.Minute, time.Minute),
			open,
		),
	}

	stats := Sessions(store, "2025-03-10")
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 60*time.Minute, stats.AvgSession)
	assert.Equal(t, 90*time.Minute, stats.Longest)
	assert.Equal(t, 1.0, stats.AvgHours())
	assert.Equal(t, 1.5, stats.LongestHours())
	assert.Equal(t, 2, stats.SessionsToday)
	assert.Equal(t, map[string]int{"break": 3, "phone": 1}, stats.PauseReasons)
	assert.Equal(t, 3.0, stats.TotalHours)
}

func TestSessionsEmptyStore(t *testing.T) {
	stats := Sessions(ledger.Store{}, "2025-03-10")
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AvgSession)
	assert.Zero(t, stats.Longest)
	assert.Zero(t, stats.TotalHours)
	assert.NotNil(t, stats.PauseReasons)
	assert.Empty(t, stats.PauseReasons)
}

func TestTotalHours(t *testing.T) {
	store := ledger.Store{
		"2025-03-08": {Summary: ledger.Summary{ActualHours: 1.25}},
		"2025-03-09": {Summary: ledger.Summary{ActualHours: 2.5}},
		"2025-03-10": nil,
	}
	assert.Equal(t, 3.75, TotalHours(store))

	noisy := ledger.Store{
		"2025-03-08": {Summary: ledger.Summary{ActualHours: 0.1}},
		"2025-03-09": {Summary: ledger.Summary{ActualHours: 0.2}},
	}
	assert.Equal(t, 0.3, TotalHours(noisy))
}

func TestSortedKeys(t *testing.T) {
	store := ledger.Store{
		"2025-03-10": ledger.NewDay(4),
		"2024-12-31": ledger.NewDay(4),
		"2025-01-02": ledger.NewDay(4),
	}
	assert.Equal(t, []string{"2024-12-31", "2025-01-02", "2025-03-10"}, SortedKeys(store))
}

func TestRecentAverage(t *testing.T) {
	hours := map[string]float64{
		"2025-03-05": 5,
		"2025-03-06": 1,
		"2025-03-07": 0,
		"2025-03-08": 2,
		"2025-03-09": 3,
		"2025-03-10": 0,
	}
	store := ledger.Store{}
	for k, h := range hours {
		store[k] = &ledger.Day{Summary: ledger.Summary{ActualHours: h}}
	}

	assert.Equal(t, 2.0, RecentAverage(store, 5))
	assert.Equal(t, 0.0, RecentAverage(ledger.Store{}, 5))
	assert.Equal(t, 0.0, RecentAverage(ledger.Store{"2025-03-10": ledger.NewDay(4)}, 5))
}

func TestWeekly(t *testing.T) {
	store := ledger.Store{
		"2025-03-03": {GoalHours: 4, Summary: ledger.Summary{ActualHours: 9}},
		"2025-03-04": {GoalHours: 4, Summary: ledger.Summary{ActualHours: 1.5}},
		"2025-03-10": {GoalHours: 3, Summary: ledger.Summary{ActualHours: 2}},
	}

	week := Weekly(store, at(10, 22, 30))
	require.Len(t, week, 7)
	assert.Equal(t, "2025-03-04", week[0].Key)
	assert.Equal(t, 1.5, week[0].Hours)
	assert.Equal(t, "2025-03-05", week[1].Key)
	assert.Zero(t, week[1].Hours)
	assert.Equal(t, "2025-03-10", week[6].Key)
	assert.Equal(t, 2.0, week[6].Hours)
	assert.Equal(t, 3.0, week[6].Goal)
}

func TestWeeklyCrossesMonthBoundary(t *testing.T) {
	week := Weekly(ledger.Store{}, time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-02-24", week[0].Key)
	assert.Equal(t, "2025-03-02", week[6].Key)
}

func TestProductiveHours(t *testing.T) {
	store := ledger.Store{
		"2025-03-09": studyDay(4,
			endedSession(at(9, 9, 0), time.Hour),
			endedSession(at(9, 14, 0), 2*time.Hour),
		),
		"2025-03-10": studyDay(4,
			endedSession(at(10, 9, 30), time.Hour, 10*time.Minute),
			openSession(at(10, 20, 0)),
		),
	}

	scores := ProductiveHours(store, time.UTC)
	require.Len(t, scores, 24)

	assert.Equal(t, 14, scores[0].Hour)
	assert.InDelta(t, 2.0, scores[0].Score, 1e-9)

	assert.Equal(t, 9, scores[1].Hour)
	assert.InDelta(t, 1.0/1.5, scores[1].Score, 1e-9)
	assert.Equal(t, 2, scores[1].Sessions)
	assert.Equal(t, 1, scores[1].Pauses)

	// empty buckets keep hour order
	assert.Equal(t, 0, scores[2].Hour)
	assert.Equal(t, 1, scores[3].Hour)
	assert.Zero(t, scores[2].Score)

	for _, s := range scores {
		if s.Hour == 20 {
			assert.Zero(t, s.Sessions, "open sessions are not bucketed")
		}
	}
}

func TestProductiveHoursUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	store := ledger.Store{
		"2025-03-10": studyDay(4, endedSession(at(10, 1, 0), time.Hour)),
	}

	scores := ProductiveHours(store, seoul)
	assert.Equal(t, 10, scores[0].Hour)
}

func TestPredictCompleted(t *testing.T) {
	store := ledger.Store{
		"2025-03-10": studyDay(1, endedSession(at(10, 9, 0), time.Hour)),
	}
	p := Predict(store, "2025-03-10", at(10, 10, 0))
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestPredictUnknownWithoutHistory(t *testing.T) {
	store := ledger.Store{"2025-03-10": ledger.NewDay(4)}
	p := Predict(store, "2025-03-10", at(10, 10, 0))
	assert.Equal(t, StatusUnknown, p.Status)
	assert.Equal(t, 4.0, p.RemainingHours)
}

func TestPredictUnknownWhenPriorDaysHaveNoEndedSessions(t *testing.T) {
	store := ledger.Store{
		"2025-03-08": ledger.NewDay(4),
		"2025-03-09": studyDay(4, openSession(at(9, 9, 0))),
		"2025-03-10": ledger.NewDay(4),
	}
	p := Predict(store, "2025-03-10", at(10, 10, 0))
	assert.Equal(t, StatusUnknown, p.Status)
}

func TestPredictInProgress(t *testing.T) {
	// 1h studied over a 2h span: rate 0.5
	halfRate := func(day int) *ledger.Day {
		return studyDay(4, endedSession(at(day, 9, 0), time.Hour, time.Hour))
	}
	fullRate := func(day int) *ledger.Day {
		return studyDay(4, endedSession(at(day, 9, 0), time.Hour))
	}

	store := ledger.Store{
		"2025-03-05": fullRate(5),
		"2025-03-06": fullRate(6),
		"2025-03-07": halfRate(7),
		"2025-03-08": halfRate(8),
		"2025-03-09": halfRate(9),
		"2025-03-10": ledger.NewDay(4),
		"2025-03-11": fullRate(11),
	}

	now := at(10, 12, 0)
	p := Predict(store, "2025-03-10", now)
	require.Equal(t, StatusInProgress, p.Status)
	assert.Equal(t, 4.0, p.RemainingHours)
	assert.InDelta(t, 0.5, p.Rate, 1e-9)
	assert.Equal(t, 8.0, p.NeededHours)
	assert.Equal(t, now.Add(8*time.Hour), p.CompletesAt)
}

func TestPredictSkipsDayEndingInOpenSession(t *testing.T) {
	// the earlier ended session alone would give a rate of 1.0
	store := ledger.Store{
		"2025-03-09": studyDay(4, endedSession(at(9, 9, 0), time.Hour), openSession(at(9, 14, 0))),
		"2025-03-10": ledger.NewDay(4),
	}
	p := Predict(store, "2025-03-10", at(10, 10, 0))
	assert.Equal(t, StatusUnknown, p.Status)

	store["2025-03-08"] = studyDay(4, endedSession(at(8, 9, 0), time.Hour, time.Hour))
	p = Predict(store, "2025-03-10", at(10, 10, 0))
	require.Equal(t, StatusInProgress, p.Status)
	assert.InDelta(t, 0.5, p.Rate, 1e-9)
}

func TestPredictSkipsDaysWithoutStudyTime(t *testing.T) {
	store := ledger.Store{
		"2025-03-08": studyDay(4, endedSession(at(8, 9, 0), time.Hour)),
		"2025-03-09": studyDay(4, endedSession(at(9, 9, 0), 0)),
		"2025-03-10": studyDay(4, endedSession(at(10, 9, 0), time.Hour)),
	}
	p := Predict(store, "2025-03-10", at(10, 10, 0))
	require.Equal(t, StatusInProgress, p.Status)
	assert.InDelta(t, 1.0, p.Rate, 1e-9)
	assert.Equal(t, 3.0, p.RemainingHours)
	assert.Equal(t, 3.0, p.NeededHours)
}
