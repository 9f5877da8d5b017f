package engine

import (
	"encoding/json"
	"time"
)

// =============================================================================
// TIMER SESSION - Explicit value object for the live stopwatch
// =============================================================================

// TimerSession captures the state of a running stopwatch. The session is
// owned by a single controller and serialized/restored explicitly at
// process boundaries. Methods are copy-on-write - they return a new
// session.
type TimerSession struct {
	EntryID     string    `json:"entry_id"` // authoritative id of the running entry
	StartedAt   time.Time `json:"started_at"`
	Project     string    `json:"project"`
	Task        string    `json:"task,omitempty"`
	Description string    `json:"description,omitempty"`

	AccumulatedBreakSeconds int64      `json:"accumulated_break_seconds"`
	OnBreak                 bool       `json:"on_break"`
	BreakStartedAt          *time.Time `json:"break_started_at,omitempty"`
}

// Elapsed returns the worked duration so far, excluding accumulated breaks
// and, if a break is running, the break in progress.
func (s TimerSession) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt) - time.Duration(s.AccumulatedBreakSeconds)*time.Second
	if s.OnBreak && s.BreakStartedAt != nil {
		d -= now.Sub(*s.BreakStartedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// BreakMinutes returns the total break time in whole minutes, including a
// break in progress.
func (s TimerSession) BreakMinutes(now time.Time) int {
	secs := s.AccumulatedBreakSeconds
	if s.OnBreak && s.BreakStartedAt != nil {
		secs += int64(now.Sub(*s.BreakStartedAt).Seconds())
	}
	return int(secs / 60)
}

// StartBreak returns a copy with a break running. Starting a break twice
// is a no-op.
func (s TimerSession) StartBreak(now time.Time) TimerSession {
	if s.OnBreak {
		return s
	}
	s.OnBreak = true
	s.BreakStartedAt = &now
	return s
}

// EndBreak returns a copy with the running break folded into the
// accumulated total.
func (s TimerSession) EndBreak(now time.Time) TimerSession {
	if !s.OnBreak || s.BreakStartedAt == nil {
		return s
	}
	s.AccumulatedBreakSeconds += int64(now.Sub(*s.BreakStartedAt).Seconds())
	s.OnBreak = false
	s.BreakStartedAt = nil
	return s
}

// Marshal serializes the session for persistence across restarts.
func (s TimerSession) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// RestoreTimerSession deserializes a previously persisted session.
func RestoreTimerSession(data []byte) (TimerSession, error) {
	var s TimerSession
	err := json.Unmarshal(data, &s)
	return s, err
}
