/*
Package engine provides the time/earnings computation core.

PURPOSE:
  This package contains the pure functions and value types that turn raw
  (date, start-time, end-time, break) tuples into validated hour and
  earning figures, and aggregate them into period statistics. It has no
  knowledge of persistence or HTTP - those live in store/ and api/.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: One logged work/leave session for a single day
  - EntryType: work | sick | leave-paid | leave-unpaid
  - Statistics / PeriodStatistic: Derived dashboard totals, never persisted
  - Targets: Configurable hour goals (daily/weekly/monthly)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for hours and money to avoid
     floating-point drift across aggregation.
  2. Copy-on-write: Derived fields are recomputed into a new TimeEntry,
     never mutated in place, so concurrent aggregation reads never observe
     a half-updated record.
  3. Graceful degradation: Aggregation never raises - malformed input
     contributes zero instead of failing a dashboard render.

SEE ALSO:
  - timemath.go: Span/working-hours arithmetic
  - aggregate.go: Period statistics and trends
  - ../reconcile: Validation and store reconciliation
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME ENTRY - The central record
// =============================================================================

type EntryType string

const (
	TypeWork        EntryType = "work"
	TypeSick        EntryType = "sick"
	TypeLeavePaid   EntryType = "leave-paid"
	TypeLeaveUnpaid EntryType = "leave-unpaid"
)

type EntryStatus string

const (
	StatusRunning   EntryStatus = "running"
	StatusCompleted EntryStatus = "completed"
)

// TimeEntry is one logged session. ID is the authoritative key assigned by
// the store at creation time; LegacyID is the embedded id field historical
// records carried before store-assigned keys became the only identity.
// The two can disagree on old data - see reconcile.Reconciler.Repair.
type TimeEntry struct {
	ID       string
	LegacyID string

	Date         string // yyyy-MM-dd, the partition key for all aggregation
	StartTime    string // HH:mm, 24-hour wall clock, no timezone
	EndTime      string
	BreakMinutes int

	// ExtraHours is added on top of the computed span (approved overtime).
	ExtraHours decimal.Decimal

	// TotalHours and Earnings are derived. They are recomputed whenever
	// start/end/break/extra change and are never hand-edited.
	TotalHours decimal.Decimal
	Earnings   decimal.Decimal

	Type        EntryType
	Project     string
	ProjectID   string
	Task        string
	Description string
	Status      EntryStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountsTowardEarnings reports whether this entry's hours earn money.
// Only work entries do; an empty type is treated as work because records
// created before the type field existed were all work sessions.
func (e TimeEntry) CountsTowardEarnings() bool {
	return e.Type == TypeWork || e.Type == ""
}

// =============================================================================
// PROJECT - Free label referenced by entries, no foreign-key enforcement
// =============================================================================

type Project struct {
	ID       string
	Name     string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// STATISTICS - Derived, recomputed on every entry-set change
// =============================================================================

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// PeriodStatistic is a pure view over one period. It has no identity or
// lifecycle of its own.
type PeriodStatistic struct {
	Hours    decimal.Decimal
	Earnings decimal.Decimal
	Entries  int
	Target   decimal.Decimal // zero for periods without an hour goal
}

type Productivity struct {
	Score      int // bounded [0,100]
	Trend      TrendDirection
	Comparison decimal.Decimal // percent change vs previous period
}

type Statistics struct {
	Today        PeriodStatistic
	Week         PeriodStatistic
	Month        PeriodStatistic
	Productivity Productivity
}

// Targets holds the configurable hour goals. Defaults are a standard
// 8-hour day, 40-hour week, 160-hour month.
type Targets struct {
	HoursPerDay decimal.Decimal
	WeekHours   decimal.Decimal
	MonthHours  decimal.Decimal
}

func DefaultTargets() Targets {
	return Targets{
		HoursPerDay: decimal.NewFromInt(8),
		WeekHours:   decimal.NewFromInt(40),
		MonthHours:  decimal.NewFromInt(160),
	}
}
