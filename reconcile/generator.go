package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worktrack/earnings-engine/engine"
)

// Template fields shared by every draft a schedule expansion produces.
// Zero-value labels fall back to the standard bulk-entry defaults.
type Template struct {
	StartTime     string
	StandardHours decimal.Decimal
	BreakMinutes  int
	Project       string
	Task          string
	Description   string
}

const (
	defaultBulkProject     = "Bulk Entry"
	defaultBulkTask        = "Standard Work"
	defaultBulkDescription = "Work"
)

func (t Template) withDefaults() Template {
	if t.Project == "" {
		t.Project = defaultBulkProject
	}
	if t.Task == "" {
		t.Task = defaultBulkTask
	}
	if t.Description == "" {
		t.Description = defaultBulkDescription
	}
	return t
}

// ExpandSchedule turns a month ("2006-01"), a day-of-month selection, and
// a shared template into an ordered list of entry drafts. Weekend days are
// dropped when excludeWeekends is set, days outside the month's calendar
// are dropped, and dates are deduplicated within the expansion. An empty
// result is not an error; the bulk submitter rejects it before locking.
func ExpandSchedule(month string, days []int, excludeWeekends bool, tmpl Template) ([]engine.TimeEntry, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, &engine.ValidationError{Field: "month", Message: fmt.Sprintf("invalid month %q, expected yyyy-MM", month)}
	}
	if tmpl.StartTime == "" {
		return nil, &engine.ValidationError{Field: "startTime", Message: "start time is required"}
	}
	if _, err := engine.ParseClock(tmpl.StartTime); err != nil {
		return nil, &engine.ValidationError{Field: "startTime", Message: err.Error()}
	}
	if tmpl.StandardHours.IsNegative() {
		return nil, &engine.ValidationError{Field: "standardHours", Message: "standard hours must not be negative"}
	}
	if tmpl.BreakMinutes < 0 {
		return nil, &engine.ValidationError{Field: "breakMinutes", Message: "break minutes must not be negative"}
	}
	tmpl = tmpl.withDefaults()

	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	limit := engine.DaysInMonth(first.Year(), first.Month())
	endTime := engine.EndTimeFromDuration(tmpl.StartTime, tmpl.StandardHours, tmpl.BreakMinutes)
	totalHours := engine.WorkingHours(tmpl.StartTime, endTime, tmpl.BreakMinutes)

	seen := make(map[string]bool)
	var drafts []engine.TimeEntry
	for _, day := range sorted {
		if day < 1 || day > limit {
			continue
		}
		d := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
		if excludeWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		date := engine.ISODate(d)
		if seen[date] {
			continue
		}
		seen[date] = true

		drafts = append(drafts, engine.TimeEntry{
			Date:         date,
			StartTime:    tmpl.StartTime,
			EndTime:      endTime,
			BreakMinutes: tmpl.BreakMinutes,
			TotalHours:   totalHours,
			Type:         engine.TypeWork,
			Project:      tmpl.Project,
			Task:         tmpl.Task,
			Description:  tmpl.Description,
			Status:       engine.StatusCompleted,
		})
	}
	return drafts, nil
}
