/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the time-tracking and earnings engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the
  reconciler and aggregation logic.

ENDPOINTS:
  Entries:
    GET    /api/entries              List all entries
    POST   /api/entries              Create entry
    GET    /api/entries/{id}         Get entry (legacy ids resolve too)
    PUT    /api/entries/{id}         Update entry, recomputing derived fields
    DELETE /api/entries/{id}         Delete entry

  Statistics:
    GET    /api/statistics           Dashboard aggregates (today/week/month)

  Bulk:
    POST   /api/bulk                 Submit a bulk schedule
    POST   /api/bulk/preview         Expand without persisting

  Projects:
    GET    /api/projects             List projects
    POST   /api/projects             Create project
    PUT    /api/projects/{id}        Update project
    DELETE /api/projects/{id}        Delete project

  Timer:
    GET    /api/timer                Live timer status
    POST   /api/timer/start          Start timer
    POST   /api/timer/break          Start break
    POST   /api/timer/resume         End break
    POST   /api/timer/stop           Stop timer, close entry

  Admin:
    POST   /api/admin/repair         Rewrite stale legacy ids

  Export:
    GET    /api/export/csv           Timesheet export

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entry/project not found
  - 409: Bulk submission already in progress
  - 500: Store errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/worktrack/earnings-engine/engine"
	"github.com/worktrack/earnings-engine/reconcile"
	"github.com/worktrack/earnings-engine/report"
	"github.com/worktrack/earnings-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      store.Store
	Reconciler *reconcile.Reconciler
	Submitter  *reconcile.Submitter
	Timer      *reconcile.TimerController
	Targets    engine.Targets

	// now is swappable in tests.
	now func() time.Time

	// Track currently loaded demo scenario
	currentScenario string
}

// NewHandler wires the handler with its collaborators.
func NewHandler(s store.Store, rec *reconcile.Reconciler, sub *reconcile.Submitter, timer *reconcile.TimerController, targets engine.Targets) *Handler {
	return &Handler{
		Store:      s,
		Reconciler: rec,
		Submitter:  sub,
		Timer:      timer,
		Targets:    targets,
		now:        time.Now,
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns all entries, newest date first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry validates, derives, and persists a new entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft := engine.TimeEntry{}
	if req.Date != nil {
		draft.Date = *req.Date
	}
	if req.StartTime != nil {
		draft.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		draft.EndTime = *req.EndTime
	}
	if req.BreakMinutes != nil {
		draft.BreakMinutes = *req.BreakMinutes
	}
	if req.ExtraHours != nil {
		draft.ExtraHours = decimal.NewFromFloat(*req.ExtraHours)
	}
	if req.Type != nil {
		draft.Type = engine.EntryType(*req.Type)
	}
	if req.Project != nil {
		draft.Project = *req.Project
	}
	if req.ProjectID != nil {
		draft.ProjectID = *req.ProjectID
	}
	if req.Task != nil {
		draft.Task = *req.Task
	}
	if req.Description != nil {
		draft.Description = *req.Description
	}

	entry, err := h.Reconciler.Submit(r.Context(), draft)
	if err != nil {
		writeDomainError(w, "Failed to create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// GetEntry returns a single entry, resolving legacy ids.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Reconciler.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// UpdateEntry patches an entry and recomputes derived fields when a
// derivation input changed.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := store.EntryPatch{
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Project:      req.Project,
		ProjectID:    req.ProjectID,
		Task:         req.Task,
		Description:  req.Description,
	}
	if req.ExtraHours != nil {
		extra := decimal.NewFromFloat(*req.ExtraHours)
		patch.ExtraHours = &extra
	}
	if req.Type != nil {
		t := engine.EntryType(*req.Type)
		patch.Type = &t
	}

	entry, err := h.Reconciler.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, "Failed to update entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntry removes an entry by either its authoritative or legacy id.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Reconciler.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// =============================================================================
// STATISTICS
// =============================================================================

// GetStatistics returns the dashboard aggregates for the current
// day/week/month plus productivity.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	stats := engine.AggregateStatistics(entries, h.now(), h.Reconciler.HourlyRate(), h.Targets)

	dto := StatisticsDTO{
		Today:        toPeriodDTO(stats.Today),
		Week:         toPeriodDTO(stats.Week),
		Month:        toPeriodDTO(stats.Month),
		Productivity: ProductivityDTO{
			Score:      stats.Productivity.Score,
			Trend:      string(stats.Productivity.Trend),
			Comparison: stats.Productivity.Comparison.StringFixed(2),
		},
	}
	if hour, ok := engine.PeakHour(entries); ok {
		dto.Productivity.PeakHour = &hour
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// BULK SUBMISSION
// =============================================================================

func (req BulkRequest) template() reconcile.Template {
	return reconcile.Template{
		StartTime:     req.StartTime,
		StandardHours: decimal.NewFromFloat(req.StandardHours),
		BreakMinutes:  req.BreakMinutes,
		Project:       req.Project,
		Task:          req.Task,
		Description:   req.Description,
	}
}

// SubmitBulk expands a schedule and submits it through the throttled loop.
func (h *Handler) SubmitBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Submitter.SubmitBulk(r.Context(), req.Month, req.Days, req.ExcludeWeekends, req.template())
	if err != nil && result.SuccessCount == 0 && result.ErrorCount == 0 {
		writeDomainError(w, "Bulk submission failed", err)
		return
	}

	resp := BulkResponse{
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
		Entries:      make([]EntryDTO, len(result.Entries)),
	}
	for i, e := range result.Entries {
		resp.Entries[i] = toEntryDTO(e)
	}
	for _, itemErr := range result.Errors {
		resp.Errors = append(resp.Errors, itemErr.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// PreviewBulk expands a schedule without persisting anything.
func (h *Handler) PreviewBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	drafts, err := reconcile.ExpandSchedule(req.Month, req.Days, req.ExcludeWeekends, req.template())
	if err != nil {
		writeDomainError(w, "Invalid bulk parameters", err)
		return
	}

	resp := BulkPreviewResponse{Count: len(drafts), Entries: make([]EntryDTO, len(drafts))}
	for i, d := range drafts {
		resp.Entries[i] = toEntryDTO(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// ADMIN
// =============================================================================

// RepairLegacyIDs rewrites stale embedded ids to the authoritative key.
func (h *Handler) RepairLegacyIDs(w http.ResponseWriter, r *http.Request) {
	fixed, err := h.Reconciler.Repair(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Repair failed", err)
		return
	}
	writeJSON(w, http.StatusOK, RepairResponse{Fixed: fixed})
}

// =============================================================================
// PROJECTS
// =============================================================================

// ListProjects returns all project labels.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ProjectDTO{
			ID:        p.ID,
			Name:      p.Name,
			IsActive:  p.IsActive,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject adds a project label.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "Project name is required", nil)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	id, err := h.Store.AddProject(r.Context(), engine.Project{Name: *req.Name, IsActive: active})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProjectDTO{ID: id, Name: *req.Name, IsActive: active})
}

// UpdateProject renames or toggles a project label.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.UpdateProject(r.Context(), chi.URLParam(r, "id"), req.Name, req.IsActive); err != nil {
		writeDomainError(w, "Failed to update project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// DeleteProject removes a project label. Entries keep their free-text
// project field.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// =============================================================================
// TIMER
// =============================================================================

// TimerStatus reports the live timer, if one is running.
func (h *Handler) TimerStatus(w http.ResponseWriter, r *http.Request) {
	session, active, err := h.Timer.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load timer state", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimerDTO(session, active, h.now()))
}

// StartTimer begins a running entry for today.
func (h *Handler) StartTimer(w http.ResponseWriter, r *http.Request) {
	var req TimerStartRequest
	if r.Body != nil {
		// Body is optional; ignore decode errors from an empty body.
		json.NewDecoder(r.Body).Decode(&req)
	}

	if _, active, err := h.Timer.Status(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load timer state", err)
		return
	} else if active {
		writeError(w, http.StatusConflict, "Timer already running", nil)
		return
	}

	session, err := h.Timer.Start(r.Context(), req.Project, req.Task, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to start timer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimerDTO(session, true, h.now()))
}

// TimerBreak pauses the running timer.
func (h *Handler) TimerBreak(w http.ResponseWriter, r *http.Request) {
	session, err := h.Timer.StartBreak(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to start break", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimerDTO(session, true, h.now()))
}

// TimerResume ends the current break.
func (h *Handler) TimerResume(w http.ResponseWriter, r *http.Request) {
	session, err := h.Timer.EndBreak(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to end break", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimerDTO(session, true, h.now()))
}

// StopTimer closes the running entry with derived fields.
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Timer.Stop(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to stop timer", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportCSV streams all entries as a timesheet CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet.csv"`)
	if err := report.WriteCSV(w, entries); err != nil {
		// Headers are already sent; nothing useful left to report.
		return
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func toEntryDTO(e engine.TimeEntry) EntryDTO {
	dto := EntryDTO{
		ID:           e.ID,
		Date:         e.Date,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		BreakMinutes: e.BreakMinutes,
		ExtraHours:   engine.RoundHours(e.ExtraHours).StringFixed(2),
		TotalHours:   engine.RoundHours(e.TotalHours).StringFixed(2),
		Earnings:     engine.RoundMoney(e.Earnings).StringFixed(2),
		Type:         string(e.Type),
		Project:      e.Project,
		ProjectID:    e.ProjectID,
		Task:         e.Task,
		Description:  e.Description,
		Status:       string(e.Status),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		dto.UpdatedAt = e.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPeriodDTO(p engine.PeriodStatistic) PeriodStatisticDTO {
	return PeriodStatisticDTO{
		Hours:    p.Hours.StringFixed(2),
		Earnings: p.Earnings.StringFixed(2),
		Entries:  p.Entries,
		Target:   p.Target.StringFixed(2),
	}
}

func toTimerDTO(s engine.TimerSession, active bool, now time.Time) TimerDTO {
	if !active {
		return TimerDTO{Active: false}
	}
	return TimerDTO{
		Active:         true,
		EntryID:        s.EntryID,
		StartedAt:      s.StartedAt.Format(time.RFC3339),
		ElapsedSeconds: int64(s.Elapsed(now).Seconds()),
		OnBreak:        s.OnBreak,
		Project:        s.Project,
		Task:           s.Task,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, engine.ErrBulkInProgress):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
