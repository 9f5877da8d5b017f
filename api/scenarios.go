/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario clears existing entries and
	seeds a month of time entries that demonstrate specific features.

AVAILABLE SCENARIOS:

	standard-month:   A month of regular 9-to-5 work entries
	mixed-types:      Work plus sick days and unpaid leave
	night-shifts:     Overnight shifts crossing midnight
	legacy-records:   Historical entries with stale embedded ids,
	                  ready for the repair endpoint

HOW SCENARIOS WORK:
 1. Clear all entries
 2. Submit scenario drafts through the reconciler so derived
    fields (hours, earnings) are computed the normal way
 3. Optionally plant legacy-id mismatches directly in the store

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-types"}

NOTE:

	Scenarios clear entry data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler wiring
  - reconcile/reconciler.go: Derivation and repair
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/worktrack/earnings-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario by id.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-month",
		Name:        "Standard Month",
		Description: "A month of regular 09:00-17:30 work entries with breaks",
	},
	{
		ID:          "mixed-types",
		Name:        "Mixed Entry Types",
		Description: "Work entries plus sick days and unpaid leave; only work earns",
	},
	{
		ID:          "night-shifts",
		Name:        "Night Shifts",
		Description: "Overnight shifts crossing midnight (22:00-06:00)",
	},
	{
		ID:          "legacy-records",
		Name:        "Legacy Records",
		Description: "Entries with stale embedded ids, ready for the repair endpoint",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario reports the last loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario clears entry data and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.clearEntries(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear entries", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "standard-month":
		err = h.loadStandardMonthScenario(ctx)
	case "mixed-types":
		err = h.loadMixedTypesScenario(ctx)
	case "night-shifts":
		err = h.loadNightShiftsScenario(ctx)
	case "legacy-records":
		err = h.loadLegacyRecordsScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": req.ScenarioID})
}

func (h *Handler) clearEntries(ctx context.Context) error {
	entries, err := h.Store.ListEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := h.Store.DeleteEntry(ctx, e.ID); err != nil && !engine.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// weekdaysOfCurrentMonth returns this month's weekday dates up to today.
func weekdaysOfCurrentMonth(now time.Time) []string {
	var dates []string
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for d := first; !d.After(now); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, engine.ISODate(d))
	}
	return dates
}

func (h *Handler) loadStandardMonthScenario(ctx context.Context) error {
	for _, date := range weekdaysOfCurrentMonth(h.now()) {
		_, err := h.Reconciler.Submit(ctx, engine.TimeEntry{
			Date:         date,
			StartTime:    "09:00",
			EndTime:      "17:30",
			BreakMinutes: 30,
			Project:      "Client Alpha",
			Task:         "Development",
			Description:  "Regular work day",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMixedTypesScenario(ctx context.Context) error {
	dates := weekdaysOfCurrentMonth(h.now())
	for i, date := range dates {
		draft := engine.TimeEntry{
			Date:         date,
			StartTime:    "09:00",
			EndTime:      "17:30",
			BreakMinutes: 30,
			Project:      "Client Alpha",
			Description:  "Regular work day",
		}
		// Sprinkle non-work days through the month.
		switch i % 7 {
		case 3:
			draft.Type = engine.TypeSick
			draft.Description = "Sick day"
		case 5:
			draft.Type = engine.TypeLeaveUnpaid
			draft.Description = "Unpaid leave"
		}
		if _, err := h.Reconciler.Submit(ctx, draft); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNightShiftsScenario(ctx context.Context) error {
	for i, date := range weekdaysOfCurrentMonth(h.now()) {
		draft := engine.TimeEntry{
			Date:         date,
			StartTime:    "22:00",
			EndTime:      "06:00",
			BreakMinutes: 45,
			Project:      "Operations",
			Task:         "Night shift",
		}
		// Some shifts run long and get overtime on top.
		if i%4 == 0 {
			draft.ExtraHours = decimal.NewFromFloat(1.5)
		}
		if _, err := h.Reconciler.Submit(ctx, draft); err != nil {
			return err
		}
	}
	return nil
}

// loadLegacyRecordsScenario plants entries whose embedded id disagrees
// with the store-assigned key, mimicking records written by older
// clients. POST /api/admin/repair cleans them up.
func (h *Handler) loadLegacyRecordsScenario(ctx context.Context) error {
	dates := weekdaysOfCurrentMonth(h.now())
	for i, date := range dates {
		e := engine.TimeEntry{
			Date:        date,
			StartTime:   "09:00",
			EndTime:     "17:00",
			Project:     "Client Beta",
			Description: "Imported record",
			LegacyID:    fmt.Sprintf("legacy-%d", i+1),
			Type:        engine.TypeWork,
			Status:      engine.StatusCompleted,
			TotalHours:  decimal.NewFromInt(8),
			Earnings:    decimal.NewFromInt(8).Mul(h.Reconciler.HourlyRate()),
		}
		// Bypass the reconciler: legacy imports carried their own
		// derived fields and embedded ids.
		if _, err := h.Store.AddEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
