package ledger

import "time"

// PauseReason records why a session was paused.
type PauseReason struct {
	Time   int64  `json:"time"`
	Reason string `json:"reason"`
}

// Session is one contiguous study attempt on a given day. All instants are
// milliseconds since the Unix epoch; End is 0 while the session is open.
type Session struct {
	Start        int64         `json:"start"`
	End          int64         `json:"end"`
	Acc          int64         `json:"acc"`
	Pauses       []int64       `json:"pauses"`
	Resumes      []int64       `json:"resumes"`
	PauseReasons []PauseReason `json:"pauseReasons"`
	PausedAt     *int64        `json:"pt,omitempty"`
}

// Ended reports whether the session has been terminated.
func (s Session) Ended() bool {
	return s.End != 0
}

// Paused reports whether the session has more pauses than resumes.
func (s Session) Paused() bool {
	return !s.Ended() && len(s.Pauses) > len(s.Resumes)
}

// EffectiveMillis returns the studied time of an ended session, excluding
// pauses. Open sessions report 0.
func (s Session) EffectiveMillis() int64 {
	if !s.Ended() {
		return 0
	}
	return max(0, s.End-s.Start-s.Acc)
}

// Duration is EffectiveMillis as a time.Duration.
func (s Session) Duration() time.Duration {
	return time.Duration(s.EffectiveMillis()) * time.Millisecond
}

// Elapsed returns the studied time as of now: the effective duration once
// ended, frozen at the pause instant while paused, and running otherwise.
func (s Session) Elapsed(now time.Time) time.Duration {
	if s.Ended() {
		return s.Duration()
	}
	until := now.UnixMilli()
	if s.Paused() && s.PausedAt != nil {
		until = *s.PausedAt
	}
	return time.Duration(max(0, until-s.Start-s.Acc)) * time.Millisecond
}

// StartTime returns Start in the given location.
func (s Session) StartTime(loc *time.Location) time.Time {
	return time.UnixMilli(s.Start).In(loc)
}

// EndTime returns End in the given location, or the zero time for an open session.
func (s Session) EndTime(loc *time.Location) time.Time {
	if !s.Ended() {
		return time.Time{}
	}
	return time.UnixMilli(s.End).In(loc)
}

// ValidateSession lists anomalies in a stored session. It returns nil for a
// healthy session.
func ValidateSession(s Session, now time.Time) []string {
	var problems []string
	if s.Start > now.UnixMilli() {
		problems = append(problems, "start time in future")
	}
	if s.Ended() && s.End < s.Start {
		problems = append(problems, "end before start")
	}
	if s.Acc < 0 {
		problems = append(problems, "negative pause time")
	}
	if len(s.Resumes) > len(s.Pauses) {
		problems = append(problems, "more resumes than pauses")
	}
	return problems
}
