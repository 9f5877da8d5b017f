package reconcile

import (
	"context"
	"time"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/store"
)

// TimerController drives the live-timer workflow: starting a running
// entry, tracking breaks, and closing the entry out with derived fields
// when the timer stops. The session survives restarts through the
// timer-state store.
type TimerController struct {
	rec   *Reconciler
	state store.TimerStateStore

	now func() time.Time
}

func NewTimerController(rec *Reconciler, state store.TimerStateStore) *TimerController {
	return &TimerController{rec: rec, state: state, now: time.Now}
}

// SetClock replaces the wall clock, for tests.
func (t *TimerController) SetClock(now func() time.Time) { t.now = now }

// Start creates a running entry for today and persists the session. A
// running entry has start == end and zero hours until it is stopped.
func (t *TimerController) Start(ctx context.Context, project, task, description string) (engine.TimerSession, error) {
	now := t.now()
	clock := engine.FormatClock(now.Hour()*60 + now.Minute())

	entry, err := t.rec.Submit(ctx, engine.TimeEntry{
		Date:        engine.ISODate(now),
		StartTime:   clock,
		EndTime:     clock,
		Type:        engine.TypeWork,
		Project:     project,
		Task:        task,
		Description: description,
		Status:      engine.StatusRunning,
	})
	if err != nil {
		return engine.TimerSession{}, err
	}

	session := engine.TimerSession{
		EntryID:     entry.ID,
		StartedAt:   now,
		Project:     project,
		Task:        task,
		Description: description,
	}
	data, err := session.Marshal()
	if err != nil {
		return engine.TimerSession{}, err
	}
	if err := t.state.SaveTimerState(ctx, data); err != nil {
		return engine.TimerSession{}, err
	}
	return session, nil
}

// Status reports the active session, if any.
func (t *TimerController) Status(ctx context.Context) (engine.TimerSession, bool, error) {
	data, err := t.state.LoadTimerState(ctx)
	if err != nil {
		return engine.TimerSession{}, false, err
	}
	if len(data) == 0 {
		return engine.TimerSession{}, false, nil
	}
	session, err := engine.RestoreTimerSession(data)
	if err != nil {
		return engine.TimerSession{}, false, err
	}
	return session, true, nil
}

// StartBreak pauses the accumulating work time.
func (t *TimerController) StartBreak(ctx context.Context) (engine.TimerSession, error) {
	session, ok, err := t.Status(ctx)
	if err != nil {
		return engine.TimerSession{}, err
	}
	if !ok {
		return engine.TimerSession{}, engine.ErrNotFound
	}
	session = session.StartBreak(t.now())
	return t.save(ctx, session)
}

// EndBreak resumes the accumulating work time.
func (t *TimerController) EndBreak(ctx context.Context) (engine.TimerSession, error) {
	session, ok, err := t.Status(ctx)
	if err != nil {
		return engine.TimerSession{}, err
	}
	if !ok {
		return engine.TimerSession{}, engine.ErrNotFound
	}
	session = session.EndBreak(t.now())
	return t.save(ctx, session)
}

// Stop closes the running entry: the end time is stamped, the break time
// accumulated during the session becomes the entry's break, and the
// derived fields are recomputed through the reconciler. The session is
// cleared even if it pointed at an entry that no longer exists.
func (t *TimerController) Stop(ctx context.Context) (engine.TimeEntry, error) {
	session, ok, err := t.Status(ctx)
	if err != nil {
		return engine.TimeEntry{}, err
	}
	if !ok {
		return engine.TimeEntry{}, engine.ErrNotFound
	}

	now := t.now()
	endTime := engine.FormatClock(now.Hour()*60 + now.Minute())
	breakMinutes := session.BreakMinutes(now)
	status := engine.StatusCompleted

	entry, err := t.rec.Update(ctx, session.EntryID, store.EntryPatch{
		EndTime:      &endTime,
		BreakMinutes: &breakMinutes,
		Status:       &status,
	})
	if err != nil && !engine.IsNotFound(err) {
		return engine.TimeEntry{}, err
	}

	if clearErr := t.state.ClearTimerState(ctx); clearErr != nil {
		return entry, clearErr
	}
	return entry, err
}

func (t *TimerController) save(ctx context.Context, session engine.TimerSession) (engine.TimerSession, error) {
	data, err := session.Marshal()
	if err != nil {
		return engine.TimerSession{}, err
	}
	if err := t.state.SaveTimerState(ctx, data); err != nil {
		return engine.TimerSession{}, err
	}
	return session, nil
}
