/*
Package store defines the document-store collaborator interface.

PURPOSE:
  The computation core treats the backing store as an external
  collaborator: it assigns authoritative identifiers at add time, supports
  partial updates, distinguishes "not found" from other failures, and
  pushes snapshot updates to subscribers. Implementations:

  - store/memory: In-memory with watch fan-out (testing/dev)
  - store/sqlite: SQLite-backed production store

IDENTITY CONTRACT:
  Add() strips any client-side id on the incoming entry and returns the
  store-assigned key. That key is the ONLY identity going forward;
  the embedded legacy id field exists purely as a compatibility shim for
  historical data and is resolved by the reconciler, not the store.

EVENTUAL CONSISTENCY:
  Watch subscribers receive whole-collection snapshots, possibly delayed
  or repeated. Consumers must tolerate a stale-then-fresh sequence and
  recompute idempotently on every emission.
*/
package store

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
)

// EntryPatch is a partial update: nil fields are left untouched.
type EntryPatch struct {
	Date         *string
	StartTime    *string
	EndTime      *string
	BreakMinutes *int
	ExtraHours   *decimal.Decimal
	TotalHours   *decimal.Decimal
	Earnings     *decimal.Decimal
	Type         *engine.EntryType
	Project      *string
	ProjectID    *string
	Task         *string
	Description  *string
	Status       *engine.EntryStatus
	LegacyID     *string
}

// EntryStore is the persistence contract for time entries.
type EntryStore interface {
	// AddEntry persists a new entry and returns the authoritative id the
	// store assigned. Any id on the incoming entry is discarded.
	AddEntry(ctx context.Context, e engine.TimeEntry) (string, error)

	// UpdateEntry applies a partial update to the entry with the given
	// authoritative id. Returns engine.ErrNotFound if it does not exist.
	UpdateEntry(ctx context.Context, id string, patch EntryPatch) error

	// DeleteEntry removes an entry by authoritative id. A missing entry is
	// engine.ErrNotFound - distinguished and non-fatal.
	DeleteEntry(ctx context.Context, id string) error

	// GetEntry fetches by authoritative id. engine.ErrNotFound on miss.
	GetEntry(ctx context.Context, id string) (engine.TimeEntry, error)

	// ListEntries returns every entry, ordered by date descending then
	// start time. Used by aggregation reads and the repair/scan paths.
	ListEntries(ctx context.Context) ([]engine.TimeEntry, error)

	// RewriteLegacyIDs sets the embedded legacy id field for each
	// authoritative id in the map, as a single atomic multi-write.
	// Used only by the repair routine.
	RewriteLegacyIDs(ctx context.Context, ids map[string]string) error
}

// ProjectStore is the persistence contract for project labels.
type ProjectStore interface {
	AddProject(ctx context.Context, p engine.Project) (string, error)
	UpdateProject(ctx context.Context, id string, name *string, isActive *bool) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]engine.Project, error)
}

// TimerStateStore persists the serialized live-timer session so a restart
// can pick the stopwatch back up. An empty result with nil error means no
// session is saved.
type TimerStateStore interface {
	SaveTimerState(ctx context.Context, data []byte) error
	LoadTimerState(ctx context.Context) ([]byte, error)
	ClearTimerState(ctx context.Context) error
}

// EntryUpdate is one emission on a watch stream: either a fresh snapshot
// of the whole entry collection, or a subscription error.
type EntryUpdate struct {
	Entries []engine.TimeEntry
	Err     error
}

// Watcher pushes collection snapshots to subscribers on every mutation.
type Watcher interface {
	// WatchEntries returns a snapshot stream and a cancel function. The
	// current snapshot is delivered immediately on subscribe.
	WatchEntries(ctx context.Context) (<-chan EntryUpdate, func())
}

// Store is the full collaborator surface the service wires together.
type Store interface {
	EntryStore
	ProjectStore
	TimerStateStore
}
