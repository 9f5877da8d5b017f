/*
Package sqlite provides the SQLite-backed Store implementation.

PURPOSE:
  Production persistence for time entries, projects, and the live-timer
  session. The same SQL patterns would apply to PostgreSQL with minor
  dialect changes.

IDENTITY:
  AddEntry assigns a UUID as the authoritative key and writes it to the
  id column. The legacy_id column carries the embedded id field of
  historical records; it is never used as a lookup key here - the
  reconciler owns the compatibility scan.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

CONCURRENCY:
  Watch fan-out happens after each mutation with a fresh snapshot,
  mirroring the push-based contract of the hosted document store this
  replaces.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/store"
)

type Store struct {
	db *sql.DB

	mu        sync.Mutex
	watchers  map[int]chan store.EntryUpdate
	nextWatch int
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, watchers: make(map[int]chan store.EntryUpdate)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		legacy_id TEXT,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		extra_hours TEXT NOT NULL DEFAULT '0',
		total_hours TEXT NOT NULL DEFAULT '0',
		earnings TEXT NOT NULL DEFAULT '0',
		entry_type TEXT NOT NULL DEFAULT 'work',
		project TEXT,
		project_id TEXT,
		task TEXT,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Date is the partition key for every aggregation read.
	CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date DESC, start_time);
	CREATE INDEX IF NOT EXISTS idx_entries_legacy ON entries(legacy_id) WHERE legacy_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single-row table for the serialized live-timer session.
	CREATE TABLE IF NOT EXISTS timer_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) AddEntry(ctx context.Context, e engine.TimeEntry) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, legacy_id, date, start_time, end_time, break_minutes,
			extra_hours, total_hours, earnings, entry_type, project, project_id,
			task, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.LegacyID, e.Date, e.StartTime, e.EndTime, e.BreakMinutes,
		e.ExtraHours.String(), e.TotalHours.String(), e.Earnings.String(),
		string(e.Type), e.Project, e.ProjectID, e.Task, e.Description,
		string(e.Status), now, now)
	if err != nil {
		return "", err
	}

	s.notify(ctx)
	return id, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id string, patch store.EntryPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.BreakMinutes != nil {
		add("break_minutes", *patch.BreakMinutes)
	}
	if patch.ExtraHours != nil {
		add("extra_hours", patch.ExtraHours.String())
	}
	if patch.TotalHours != nil {
		add("total_hours", patch.TotalHours.String())
	}
	if patch.Earnings != nil {
		add("earnings", patch.Earnings.String())
	}
	if patch.Type != nil {
		add("entry_type", string(*patch.Type))
	}
	if patch.Project != nil {
		add("project", *patch.Project)
	}
	if patch.ProjectID != nil {
		add("project_id", *patch.ProjectID)
	}
	if patch.Task != nil {
		add("task", *patch.Task)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.LegacyID != nil {
		add("legacy_id", *patch.LegacyID)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrNotFound
	}

	s.notify(ctx)
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrNotFound
	}

	s.notify(ctx)
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (engine.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return engine.TimeEntry{}, engine.ErrNotFound
	}
	return e, err
}

func (s *Store) ListEntries(ctx context.Context) ([]engine.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+" ORDER BY date DESC, start_time, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) RewriteLegacyIDs(ctx context.Context, ids map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for id, legacy := range ids {
		res, err := tx.ExecContext(ctx,
			"UPDATE entries SET legacy_id = ?, updated_at = ? WHERE id = ?",
			legacy, now, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return engine.ErrNotFound
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.notify(ctx)
	return nil
}

const selectEntry = `
	SELECT id, COALESCE(legacy_id, ''), date, start_time, end_time, break_minutes,
		extra_hours, total_hours, earnings, entry_type,
		COALESCE(project, ''), COALESCE(project_id, ''), COALESCE(task, ''),
		COALESCE(description, ''), status, created_at, updated_at
	FROM entries`

type scannable interface {
	Scan(dest ...any) error
}

func scanEntry(row scannable) (engine.TimeEntry, error) {
	var e engine.TimeEntry
	var extraHours, totalHours, earnings, entryType, status, createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.LegacyID, &e.Date, &e.StartTime, &e.EndTime,
		&e.BreakMinutes, &extraHours, &totalHours, &earnings, &entryType,
		&e.Project, &e.ProjectID, &e.Task, &e.Description, &status,
		&createdAt, &updatedAt)
	if err != nil {
		return engine.TimeEntry{}, err
	}

	e.ExtraHours = parseDecimal(extraHours)
	e.TotalHours = parseDecimal(totalHours)
	e.Earnings = parseDecimal(earnings)
	e.Type = engine.EntryType(entryType)
	e.Status = engine.EntryStatus(status)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// WATCH - Snapshot push after each mutation
// =============================================================================

func (s *Store) WatchEntries(ctx context.Context) (<-chan store.EntryUpdate, func()) {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	ch := make(chan store.EntryUpdate, 16)
	s.watchers[id] = ch
	s.mu.Unlock()

	// Deliver the current snapshot immediately, matching the hosted
	// store's onSnapshot contract.
	s.deliver(ctx, id)

	cancel := func() {
		s.mu.Lock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
		s.mu.Unlock()
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return ch, cancel
}

func (s *Store) notify(ctx context.Context) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.deliver(ctx, id)
	}
}

// deliver sends a fresh snapshot to the watcher with the given id, if it
// is still registered. Holding the lock across the send keeps the send
// from racing a concurrent close.
func (s *Store) deliver(ctx context.Context, id int) {
	entries, err := s.ListEntries(ctx)
	update := store.EntryUpdate{Entries: entries, Err: err}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.watchers[id]
	if !ok {
		return
	}
	select {
	case ch <- update:
	default:
		// Slow subscriber: drop, a fresher snapshot follows.
	}
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) AddProject(ctx context.Context, p engine.Project) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, p.Name, boolToInt(p.IsActive), now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, name *string, isActive *bool) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if isActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolToInt(*isActive))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrNotFound
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]engine.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, is_active, created_at, updated_at FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []engine.Project
	for rows.Next() {
		var p engine.Project
		var active int
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.IsActive = active != 0
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// =============================================================================
// TIMER STATE
// =============================================================================

func (s *Store) SaveTimerState(ctx context.Context, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timer_state (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		data, now)
	return err
}

func (s *Store) LoadTimerState(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM timer_state WHERE id = 1").Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return data, err
}

func (s *Store) ClearTimerState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM timer_state WHERE id = 1")
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
