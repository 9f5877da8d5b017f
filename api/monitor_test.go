package api

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/store/memory"
)

// waitForSnapshot polls until cond holds or the test times out.
func waitForSnapshot(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestStatisticsMonitor_TracksMutations(t *testing.T) {
	mem := memory.New()
	rec := reconcile.New(mem, decimal.NewFromInt(25))
	monitor := NewStatisticsMonitor(mem, rec, engine.DefaultTargets(), nil)

	ctx := context.Background()
	monitor.Start(ctx)
	defer monitor.Stop()

	// The subscription pushes the current snapshot immediately.
	waitForSnapshot(t, func() bool {
		_, ok := monitor.Current()
		return ok
	})

	_, err := rec.Submit(ctx, engine.TimeEntry{
		Date:      engine.ISODate(time.Now()),
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)

	waitForSnapshot(t, func() bool {
		stats, ok := monitor.Current()
		return ok && stats.Today.Entries == 1
	})
}

func TestStatisticsMonitor_StopBeforeStartIsSafe(t *testing.T) {
	mem := memory.New()
	rec := reconcile.New(mem, decimal.NewFromInt(25))
	monitor := NewStatisticsMonitor(mem, rec, engine.DefaultTargets(), nil)
	monitor.Stop()
}
