package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/store/memory"
)

func TestTimerController_StartStopClosesEntry(t *testing.T) {
	// GIVEN: A timer started at 09:00
	// WHEN: Stopping it at 17:00 with a 60 minute break taken
	// THEN: The entry closes with 7.00 hours and completed status

	mem := memory.New()
	rec := reconcile.New(mem, decimal.NewFromInt(25))
	tc := reconcile.NewTimerController(rec, mem)

	day := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	clock := day
	tc.SetClock(func() time.Time { return clock })

	ctx := context.Background()
	session, err := tc.Start(ctx, "Ops", "", "")
	require.NoError(t, err)
	require.NotEmpty(t, session.EntryID)

	// A running entry exists with zero hours.
	entry, err := mem.GetEntry(ctx, session.EntryID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusRunning, entry.Status)
	assert.Equal(t, "09:00", entry.StartTime)
	assert.Equal(t, entry.StartTime, entry.EndTime)
	assert.True(t, entry.TotalHours.IsZero())

	// Break 12:00-13:00.
	clock = day.Add(3 * time.Hour)
	_, err = tc.StartBreak(ctx)
	require.NoError(t, err)
	clock = day.Add(4 * time.Hour)
	_, err = tc.EndBreak(ctx)
	require.NoError(t, err)

	// Stop at 17:00.
	clock = day.Add(8 * time.Hour)
	closed, err := tc.Stop(ctx)
	require.NoError(t, err)

	assert.Equal(t, engine.StatusCompleted, closed.Status)
	assert.Equal(t, "17:00", closed.EndTime)
	assert.Equal(t, 60, closed.BreakMinutes)
	assert.Equal(t, "7.00", closed.TotalHours.StringFixed(2))
	assert.Equal(t, "175.00", closed.Earnings.StringFixed(2))

	// The session is gone.
	_, active, err := tc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestTimerController_SessionSurvivesRestart(t *testing.T) {
	mem := memory.New()
	rec := reconcile.New(mem, decimal.NewFromInt(25))
	tc := reconcile.NewTimerController(rec, mem)

	_, err := tc.Start(context.Background(), "Ops", "", "")
	require.NoError(t, err)

	// A fresh controller over the same store sees the session.
	tc2 := reconcile.NewTimerController(rec, mem)
	session, active, err := tc2.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, "Ops", session.Project)
}

func TestTimerController_StopWithoutSession(t *testing.T) {
	mem := memory.New()
	rec := reconcile.New(mem, decimal.NewFromInt(25))
	tc := reconcile.NewTimerController(rec, mem)

	_, err := tc.Stop(context.Background())
	assert.True(t, engine.IsNotFound(err))
}
