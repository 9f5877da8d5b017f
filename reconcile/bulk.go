package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/worktrack/earnings-engine/engine"
)

// DefaultSubmitDelay throttles the write rate against a backend that
// fans every mutation out to live subscribers. The loop is sequential
// on purpose: per-item failure attribution stays unambiguous.
const DefaultSubmitDelay = 500 * time.Millisecond

// Submitter runs bulk schedule submissions: expand, guard, then a
// serialized throttled loop that tallies per-item outcomes instead of
// aborting on the first error.
type Submitter struct {
	rec   *Reconciler
	guard *Guard
	delay time.Duration
	log   *slog.Logger
}

func NewSubmitter(rec *Reconciler, guard *Guard, delay time.Duration, log *slog.Logger) *Submitter {
	if delay < 0 {
		delay = DefaultSubmitDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{rec: rec, guard: guard, delay: delay, log: log}
}

// BulkResult is the per-item tally of a bulk submission. Entries holds
// only the successfully persisted records, in submission order. Errors
// holds one error per failed item.
type BulkResult struct {
	SuccessCount int
	ErrorCount   int
	Entries      []engine.TimeEntry
	Errors       []error
}

// SubmitBulk expands the schedule and submits the drafts one at a time.
//
// At most one batch per (month, day set) key may be in flight; a
// concurrent duplicate is rejected with a BulkInProgressError before any
// write happens. The guard is released exactly once, on every path.
//
// Cancellation stops further items from starting but never rolls back
// entries already persisted; the tally reflects what actually happened.
func (s *Submitter) SubmitBulk(ctx context.Context, month string, days []int, excludeWeekends bool, tmpl Template) (BulkResult, error) {
	drafts, err := ExpandSchedule(month, days, excludeWeekends, tmpl)
	if err != nil {
		return BulkResult{}, err
	}
	if len(drafts) == 0 {
		return BulkResult{}, &engine.ValidationError{Field: "days", Message: "no entries to submit after filtering"}
	}

	key := LockKey(month, days)
	if err := s.guard.Acquire(key); err != nil {
		return BulkResult{}, err
	}
	defer s.guard.Release(key)

	s.log.Info("bulk submission started", "month", month, "entries", len(drafts))

	var result BulkResult
	for i, draft := range drafts {
		if i > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		entry, err := s.rec.Submit(ctx, draft)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, err)
			s.log.Warn("bulk entry failed", "date", draft.Date, "error", err)
			continue
		}
		result.SuccessCount++
		result.Entries = append(result.Entries, entry)
	}

	s.log.Info("bulk submission finished",
		"month", month, "succeeded", result.SuccessCount, "failed", result.ErrorCount)
	return result, nil
}
