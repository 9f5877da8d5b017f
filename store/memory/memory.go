// Package memory provides an in-memory Store implementation with watch
// fan-out, for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/store"
)

type Memory struct {
	mu        sync.RWMutex
	entries   map[string]engine.TimeEntry
	projects  map[string]engine.Project
	timer     []byte
	watchers  map[int]chan store.EntryUpdate
	nextWatch int
	now       func() time.Time
}

func New() *Memory {
	return &Memory{
		entries:  make(map[string]engine.TimeEntry),
		projects: make(map[string]engine.Project),
		watchers: make(map[int]chan store.EntryUpdate),
		now:      time.Now,
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) AddEntry(_ context.Context, e engine.TimeEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The store assigns identity; whatever the client stamped is dropped.
	id := uuid.NewString()
	e.ID = id
	e.CreatedAt = m.now()
	e.UpdatedAt = e.CreatedAt
	m.entries[id] = e

	m.notifyLocked()
	return id, nil
}

// Seed inserts an entry preserving its ID and LegacyID fields. Test helper
// for reproducing historical records whose embedded id disagrees with the
// store key.
func (m *Memory) Seed(e engine.TimeEntry) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.entries[e.ID] = e
	m.notifyLocked()
	return e.ID
}

func (m *Memory) UpdateEntry(_ context.Context, id string, patch store.EntryPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return engine.ErrNotFound
	}
	applyPatch(&e, patch)
	e.UpdatedAt = m.now()
	m.entries[id] = e

	m.notifyLocked()
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return engine.ErrNotFound
	}
	delete(m.entries, id)

	m.notifyLocked()
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id string) (engine.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return engine.TimeEntry{}, engine.ErrNotFound
	}
	return e, nil
}

func (m *Memory) ListEntries(_ context.Context) ([]engine.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(), nil
}

func (m *Memory) RewriteLegacyIDs(_ context.Context, ids map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Atomic: verify everything exists before touching anything.
	for id := range ids {
		if _, ok := m.entries[id]; !ok {
			return engine.ErrNotFound
		}
	}
	for id, legacy := range ids {
		e := m.entries[id]
		e.LegacyID = legacy
		e.UpdatedAt = m.now()
		m.entries[id] = e
	}

	m.notifyLocked()
	return nil
}

func (m *Memory) snapshotLocked() []engine.TimeEntry {
	result := make([]engine.TimeEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date // newest first
		}
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// =============================================================================
// WATCH - Snapshot fan-out on every mutation
// =============================================================================

func (m *Memory) WatchEntries(ctx context.Context) (<-chan store.EntryUpdate, func()) {
	m.mu.Lock()
	id := m.nextWatch
	m.nextWatch++
	ch := make(chan store.EntryUpdate, 16)
	m.watchers[id] = ch
	ch <- store.EntryUpdate{Entries: m.snapshotLocked()}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if w, ok := m.watchers[id]; ok {
			delete(m.watchers, id)
			close(w)
		}
		m.mu.Unlock()
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return ch, cancel
}

func (m *Memory) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.watchers {
		select {
		case ch <- store.EntryUpdate{Entries: snap}:
		default:
			// Slow subscriber: drop this snapshot, a fresher one follows.
		}
	}
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) AddProject(_ context.Context, p engine.Project) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	p.ID = id
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	m.projects[id] = p
	return id, nil
}

func (m *Memory) UpdateProject(_ context.Context, id string, name *string, isActive *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return engine.ErrNotFound
	}
	if name != nil {
		p.Name = *name
	}
	if isActive != nil {
		p.IsActive = *isActive
	}
	p.UpdatedAt = m.now()
	m.projects[id] = p
	return nil
}

func (m *Memory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return engine.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *Memory) ListProjects(_ context.Context) ([]engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// TIMER STATE
// =============================================================================

func (m *Memory) SaveTimerState(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = append([]byte(nil), data...)
	return nil
}

func (m *Memory) LoadTimerState(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.timer == nil {
		return nil, nil
	}
	return append([]byte(nil), m.timer...), nil
}

func (m *Memory) ClearTimerState(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = nil
	return nil
}

// applyPatch copies non-nil patch fields onto the entry.
func applyPatch(e *engine.TimeEntry, patch store.EntryPatch) {
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.StartTime != nil {
		e.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		e.EndTime = *patch.EndTime
	}
	if patch.BreakMinutes != nil {
		e.BreakMinutes = *patch.BreakMinutes
	}
	if patch.ExtraHours != nil {
		e.ExtraHours = *patch.ExtraHours
	}
	if patch.TotalHours != nil {
		e.TotalHours = *patch.TotalHours
	}
	if patch.Earnings != nil {
		e.Earnings = *patch.Earnings
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.Project != nil {
		e.Project = *patch.Project
	}
	if patch.ProjectID != nil {
		e.ProjectID = *patch.ProjectID
	}
	if patch.Task != nil {
		e.Task = *patch.Task
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.LegacyID != nil {
		e.LegacyID = *patch.LegacyID
	}
}
