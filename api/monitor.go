/*
monitor.go - Background statistics monitor

PURPOSE:
  Subscribes to the store's entry stream and keeps a cached dashboard
  snapshot warm, recomputing aggregates on every emission. Mirrors the
  push-based consumption pattern of a live-synced frontend: the core is
  re-invoked with a fresh entry list each time and must produce a stable
  result.

DESIGN:
  - Runs a background goroutine fed by store.Watcher
  - Recomputes AggregateStatistics on each snapshot
  - Serves the cached snapshot without touching the store
  - A stop call tears the subscription down exactly once

USAGE:
  monitor := NewStatisticsMonitor(store, rec, targets, logger)
  monitor.Start(ctx)
  // ... later
  monitor.Stop()

SEE ALSO:
  - store/store.go: Watcher contract
  - engine/aggregate.go: AggregateStatistics
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/store"
)

// StatisticsMonitor keeps dashboard aggregates current by consuming the
// store's entry stream.
type StatisticsMonitor struct {
	watcher store.Watcher
	rec     *reconcile.Reconciler
	targets engine.Targets
	log     *slog.Logger

	mu      sync.Mutex
	current engine.Statistics
	fresh   bool
	cancel  func()
	done    chan struct{}

	now func() time.Time
}

func NewStatisticsMonitor(watcher store.Watcher, rec *reconcile.Reconciler, targets engine.Targets, log *slog.Logger) *StatisticsMonitor {
	if log == nil {
		log = slog.Default()
	}
	return &StatisticsMonitor{
		watcher: watcher,
		rec:     rec,
		targets: targets,
		log:     log,
		now:     time.Now,
	}
}

// Start subscribes to the entry stream. The first snapshot arrives
// immediately, so the cache is warm once the subscription is up.
func (m *StatisticsMonitor) Start(ctx context.Context) {
	updates, cancel := m.watcher.WatchEntries(ctx)

	m.mu.Lock()
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.run(updates)
	m.log.Info("statistics monitor started")
}

// Stop tears down the subscription and waits for the loop to drain.
// Safe to call once after Start.
func (m *StatisticsMonitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.log.Info("statistics monitor stopped")
}

func (m *StatisticsMonitor) run(updates <-chan store.EntryUpdate) {
	defer close(m.done)

	for update := range updates {
		if update.Err != nil {
			m.log.Warn("entry stream error", "error", update.Err)
			continue
		}
		stats := engine.AggregateStatistics(update.Entries, m.now(), m.rec.HourlyRate(), m.targets)

		m.mu.Lock()
		m.current = stats
		m.fresh = true
		m.mu.Unlock()
	}
}

// Current returns the latest cached snapshot. The second return is false
// until the first emission has been processed.
func (m *StatisticsMonitor) Current() (engine.Statistics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.fresh
}
