package timetrack

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/yeoul2023/study-timer/internal/ledger"
)

// ExportVersion is the version tag of the structured export.
const ExportVersion = "1.0"

// Export is the structured per-session export used for external analysis.
type Export struct {
	Version    string         `json:"version"`
	ExportDate time.Time      `json:"exportDate"`
	UserData   map[string]any `json:"userData"`
	DailyData  []ExportDay    `json:"dailyData"`
}

type ExportDay struct {
	Date     string          `json:"date"`
	Summary  ExportSummary   `json:"summary"`
	CheckIn  *string         `json:"checkIn"`
	Sessions []ExportSession `json:"sessions"`
}

type ExportSummary struct {
	ActualHours     float64 `json:"actualHours"`
	GoalHours       float64 `json:"goalHours"`
	CompletionRate  int     `json:"completionRate"`
	UnderGoalReason string  `json:"underGoalReason"`
	Memo            string  `json:"memo"`
}

type ExportSession struct {
	StartTime        int64                `json:"startTime"`
	EndTime          int64                `json:"endTime"`
	DurationMs       int64                `json:"durationMs"`
	DurationHours    float64              `json:"durationHours"`
	PauseCount       int                  `json:"pauseCount"`
	PauseTotalTimeMs int64                `json:"pauseTotalTimeMs"`
	PauseReasons     []ledger.PauseReason `json:"pauseReasons"`
	Timeline         []TimelineEvent      `json:"timeline"`
}

// TimelineEvent is one start, pause, resume or end mark of a session.
type TimelineEvent struct {
	Time   int64  `json:"time"`
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// ExportForAI builds the structured export. Only ended sessions are included.
func ExportForAI(store ledger.Store, now time.Time) Export {
	out := Export{
		Version:    ExportVersion,
		ExportDate: now.UTC(),
		UserData:   map[string]any{},
		DailyData:  []ExportDay{},
	}

	for _, key := range SortedKeys(store) {
		d := store[key]
		day := ExportDay{
			Date: key,
			Summary: ExportSummary{
				ActualHours:     d.Summary.ActualHours,
				GoalHours:       d.GoalHours,
				CompletionRate:  d.Summary.CompletionRate,
				UnderGoalReason: d.Summary.UnderGoalReason,
				Memo:            d.Summary.Memo,
			},
			CheckIn:  d.CheckIn,
			Sessions: []ExportSession{},
		}
		for _, s := range d.EndedSessions() {
			day.Sessions = append(day.Sessions, exportSession(s))
		}
		out.DailyData = append(out.DailyData, day)
	}
	return out
}

func exportSession(s ledger.Session) ExportSession {
	reasons := s.PauseReasons
	if reasons == nil {
		reasons = []ledger.PauseReason{}
	}
	ms := s.EffectiveMillis()
	return ExportSession{
		StartTime:        s.Start,
		EndTime:          s.End,
		DurationMs:       ms,
		DurationHours:    float64(ms) / float64(time.Hour/time.Millisecond),
		PauseCount:       len(s.Pauses),
		PauseTotalTimeMs: s.Acc,
		PauseReasons:     reasons,
		Timeline:         Timeline(s),
	}
}

// Timeline merges a session's marks in chronological order. Pause i carries
// the reason logged with it.
func Timeline(s ledger.Session) []TimelineEvent {
	events := []TimelineEvent{{Time: s.Start, Type: "start"}}
	for i, t := range s.Pauses {
		ev := TimelineEvent{Time: t, Type: "pause"}
		if i < len(s.PauseReasons) {
			ev.Reason = s.PauseReasons[i].Reason
		}
		events = append(events, ev)
	}
	for _, t := range s.Resumes {
		events = append(events, TimelineEvent{Time: t, Type: "resume"})
	}
	if s.Ended() {
		events = append(events, TimelineEvent{Time: s.End, Type: "end"})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events
}

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{
	"date", "goal_hours", "actual_hours", "completion_rate",
	"sessions", "avg_session_minutes", "pause_count",
}

// WriteCSV writes one row per date, ascending, counting ended sessions only.
func WriteCSV(w io.Writer, store ledger.Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, key := range SortedKeys(store) {
		d := store[key]
		ended := d.EndedSessions()

		var total int64
		var pauses int
		for _, s := range ended {
			total += s.EffectiveMillis()
			pauses += len(s.Pauses)
		}
		var avgMinutes float64
		if len(ended) > 0 {
			avgMinutes = float64(total) / float64(len(ended)) / 60000
		}

		row := []string{
			key,
			formatFloat(d.GoalHours),
			formatFloat(d.Summary.ActualHours),
			strconv.Itoa(d.Summary.CompletionRate),
			strconv.Itoa(len(ended)),
			fmt.Sprintf("%.2f", avgMinutes),
			strconv.Itoa(pauses),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
