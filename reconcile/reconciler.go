/*
Package reconcile validates entry drafts, derives their computed fields,
and mediates every identity-sensitive operation against the store.

PURPOSE:
  The store assigns the authoritative key at creation time. Historical
  records may carry an embedded legacy id that disagrees with that key,
  so every lookup by id resolves through the authoritative key first and
  falls back to a legacy-id scan only as a compatibility path. The
  reconciler owns that resolution, plus the one-time repair pass that
  rewrites stale embedded ids.

KEY CONCEPTS:
  - Submission state machine: Drafted -> Validated -> Submitting ->
    Persisted | Rejected. Validation failures never touch the store.
  - Rejected submissions carry the draft back to the caller so it can
    retry or abandon without reconstructing the input.
  - Bulk submissions are serialized per (month, day set) key by a
    process-local guard with an expiring cooldown.

SEE ALSO:
  - engine/timemath.go: Duration derivation
  - store/store.go: Collaborator contract
*/
package reconcile

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/store"
)

type Reconciler struct {
	entries store.EntryStore
	rate    decimal.Decimal
}

func New(entries store.EntryStore, hourlyRate decimal.Decimal) *Reconciler {
	return &Reconciler{entries: entries, rate: hourlyRate}
}

// HourlyRate reports the rate used for earnings derivation.
func (r *Reconciler) HourlyRate() decimal.Decimal { return r.rate }

// =============================================================================
// VALIDATION AND DERIVATION
// =============================================================================

// ComputeEntry validates a draft and fills in its derived fields. The
// returned entry is a new value; the draft is never mutated. Any
// client-supplied id is discarded so the store-assigned key remains the
// only identity.
func (r *Reconciler) ComputeEntry(draft engine.TimeEntry) (engine.TimeEntry, error) {
	if strings.TrimSpace(draft.Date) == "" {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "date", Message: "date is required"}
	}
	if strings.TrimSpace(draft.StartTime) == "" || strings.TrimSpace(draft.EndTime) == "" {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "startTime", Message: "start and end time are required"}
	}
	if _, err := engine.ParseClock(draft.StartTime); err != nil {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "startTime", Message: err.Error()}
	}
	if _, err := engine.ParseClock(draft.EndTime); err != nil {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "endTime", Message: err.Error()}
	}
	if draft.BreakMinutes < 0 {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "breakMinutes", Message: "break minutes must not be negative"}
	}
	if draft.ExtraHours.IsNegative() {
		return engine.TimeEntry{}, &engine.ValidationError{Field: "extraHours", Message: "extra hours must not be negative"}
	}

	e := draft
	e.ID = ""
	if e.Type == "" {
		e.Type = engine.TypeWork
	}
	if e.Status == "" {
		e.Status = engine.StatusCompleted
	}

	hours := engine.WorkingHours(e.StartTime, e.EndTime, e.BreakMinutes).Add(e.ExtraHours)
	e.TotalHours = engine.RoundHours(hours)
	if e.CountsTowardEarnings() {
		e.Earnings = engine.RoundMoney(engine.Earnings(hours, r.rate))
	} else {
		e.Earnings = decimal.Zero
	}
	return e, nil
}

// Submit runs a single draft through the full state machine and returns
// the persisted entry, carrying the store-assigned id. A remote failure
// is wrapped with the validated draft attached so the caller can retry.
func (r *Reconciler) Submit(ctx context.Context, draft engine.TimeEntry) (engine.TimeEntry, error) {
	e, err := r.ComputeEntry(draft)
	if err != nil {
		return engine.TimeEntry{}, err
	}

	id, err := r.entries.AddEntry(ctx, e)
	if err != nil {
		return engine.TimeEntry{}, &engine.RemoteError{Op: "add", Draft: &e, Err: err}
	}
	e.ID = id
	return e, nil
}

// =============================================================================
// IDENTITY RESOLUTION
// =============================================================================

// resolveID maps a requested id to the authoritative store key. Direct
// lookup first; on a miss, a linear scan over the legacy embedded ids.
func (r *Reconciler) resolveID(ctx context.Context, id string) (string, error) {
	_, err := r.entries.GetEntry(ctx, id)
	if err == nil {
		return id, nil
	}
	if !engine.IsNotFound(err) {
		return "", err
	}

	all, err := r.entries.ListEntries(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range all {
		if e.LegacyID != "" && e.LegacyID == id {
			return e.ID, nil
		}
	}
	return "", engine.ErrNotFound
}

// Get fetches an entry by either its authoritative key or a legacy id.
func (r *Reconciler) Get(ctx context.Context, id string) (engine.TimeEntry, error) {
	resolved, err := r.resolveID(ctx, id)
	if err != nil {
		return engine.TimeEntry{}, err
	}
	return r.entries.GetEntry(ctx, resolved)
}

// Delete removes an entry by either key. A missing target is reported
// as engine.ErrNotFound, never as a crash.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	resolved, err := r.resolveID(ctx, id)
	if err != nil {
		return err
	}
	return r.entries.DeleteEntry(ctx, resolved)
}

// Update applies a patch and recomputes the derived fields whenever any
// input to the derivation changed. Returns the entry as persisted.
func (r *Reconciler) Update(ctx context.Context, id string, patch store.EntryPatch) (engine.TimeEntry, error) {
	resolved, err := r.resolveID(ctx, id)
	if err != nil {
		return engine.TimeEntry{}, err
	}
	current, err := r.entries.GetEntry(ctx, resolved)
	if err != nil {
		return engine.TimeEntry{}, err
	}

	next := current
	recompute := false
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
		recompute = true
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
		recompute = true
	}
	if patch.BreakMinutes != nil {
		next.BreakMinutes = *patch.BreakMinutes
		recompute = true
	}
	if patch.ExtraHours != nil {
		next.ExtraHours = *patch.ExtraHours
		recompute = true
	}
	if patch.Type != nil {
		next.Type = *patch.Type
		recompute = true
	}
	if patch.Project != nil {
		next.Project = *patch.Project
	}
	if patch.ProjectID != nil {
		next.ProjectID = *patch.ProjectID
	}
	if patch.Task != nil {
		next.Task = *patch.Task
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}

	// An explicit totalHours in the patch is a manual correction and
	// wins over the derivation.
	if recompute && patch.TotalHours == nil {
		computed, err := r.ComputeEntry(next)
		if err != nil {
			return engine.TimeEntry{}, err
		}
		patch.TotalHours = &computed.TotalHours
		patch.Earnings = &computed.Earnings
	}

	if err := r.entries.UpdateEntry(ctx, resolved, patch); err != nil {
		return engine.TimeEntry{}, err
	}
	return r.entries.GetEntry(ctx, resolved)
}

// =============================================================================
// REPAIR
// =============================================================================

// Repair scans every record for a legacy embedded id that disagrees with
// the authoritative key, rewrites the embedded field to match in a single
// atomic multi-write, and reports how many records it fixed. Records with
// no embedded id are left alone.
func (r *Reconciler) Repair(ctx context.Context) (int, error) {
	all, err := r.entries.ListEntries(ctx)
	if err != nil {
		return 0, err
	}

	fixes := make(map[string]string)
	for _, e := range all {
		if e.LegacyID != "" && e.LegacyID != e.ID {
			fixes[e.ID] = e.ID
		}
	}
	if len(fixes) == 0 {
		return 0, nil
	}
	if err := r.entries.RewriteLegacyIDs(ctx, fixes); err != nil {
		return 0, err
	}
	return len(fixes), nil
}
