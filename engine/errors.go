/*
errors.go - Centralized error types for the computation core

ERROR CATEGORIES:
  1. Validation errors - local, recoverable, never partially persist
  2. Not-found - remote target missing after both key lookups
  3. Remote errors - backend failure, surfaced with the draft intact
  4. Concurrency rejection - duplicate bulk submission within cooldown

The pure math files never produce any of these; only reconciliation and
bulk operations do.
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a delete/update target is missing after
	// both the authoritative-key lookup and the legacy-id scan. It is a
	// distinguished, non-fatal condition - callers decide whether
	// "already gone" is success.
	ErrNotFound = errors.New("not found")

	// ErrBulkInProgress is returned when a bulk submission with identical
	// parameters is already in flight within the cooldown window.
	ErrBulkInProgress = errors.New("bulk submission already in progress")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a missing or invalid field on a draft entry.
// Surfaced synchronously, before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entry: %s %s", e.Field, e.Message)
}

// RemoteError wraps a backend failure during add/update/delete. The draft
// that was being submitted is kept intact so the caller can retry or
// abandon without re-deriving fields. Not auto-retried by the core.
type RemoteError struct {
	Op    string
	Draft *TimeEntry
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// BulkInProgressError identifies which batch key is holding the lock and
// since when, so the caller can explain "already in progress" rather
// than "failed".
type BulkInProgressError struct {
	Key   string
	Since time.Time
}

func (e *BulkInProgressError) Error() string {
	return fmt.Sprintf("bulk submission %s already in progress since %s", e.Key, e.Since.Format(time.RFC3339))
}

func (e *BulkInProgressError) Unwrap() error { return ErrBulkInProgress }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError returns true if the error is due to invalid client input
// rather than a backend failure.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrBulkInProgress)
}
