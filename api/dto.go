/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY AND HOURS:
  Decimal fields cross the wire as JSON strings rendered with two
  fractional digits. Clients must not do float math on them.

VALIDATION:
  Structural validation is done in handlers; semantic validation (times,
  breaks, derived fields) lives in the reconciler. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - reconcile/reconciler.go: Draft validation
*/
package api

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EntryDTO represents a time entry in API responses.
type EntryDTO struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BreakMinutes int    `json:"break_minutes"`
	ExtraHours   string `json:"extra_hours"`
	TotalHours   string `json:"total_hours"`
	Earnings     string `json:"earnings"`
	Type         string `json:"type"`
	Project      string `json:"project,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	Task         string `json:"task,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// EntryRequest is the request body for creating or updating an entry.
// Pointer fields distinguish "absent" from "zero" on updates.
type EntryRequest struct {
	Date         *string  `json:"date"`
	StartTime    *string  `json:"start_time"`
	EndTime      *string  `json:"end_time"`
	BreakMinutes *int     `json:"break_minutes"`
	ExtraHours   *float64 `json:"extra_hours"`
	Type         *string  `json:"type"`
	Project      *string  `json:"project"`
	ProjectID    *string  `json:"project_id"`
	Task         *string  `json:"task"`
	Description  *string  `json:"description"`
}

// PeriodStatisticDTO is one aggregation window in the statistics response.
type PeriodStatisticDTO struct {
	Hours    string `json:"hours"`
	Earnings string `json:"earnings"`
	Entries  int    `json:"entries"`
	Target   string `json:"target"`
}

// ProductivityDTO carries the dashboard productivity block.
type ProductivityDTO struct {
	Score      int    `json:"score"`
	Trend      string `json:"trend"`
	Comparison string `json:"comparison"`
	PeakHour   *int   `json:"peak_hour,omitempty"`
}

// StatisticsDTO is the full dashboard statistics response.
type StatisticsDTO struct {
	Today        PeriodStatisticDTO `json:"today"`
	Week         PeriodStatisticDTO `json:"week"`
	Month        PeriodStatisticDTO `json:"month"`
	Productivity ProductivityDTO    `json:"productivity"`
}

// BulkRequest is the request body for a bulk schedule submission.
type BulkRequest struct {
	Month           string  `json:"month"`
	Days            []int   `json:"days"`
	ExcludeWeekends bool    `json:"exclude_weekends"`
	StartTime       string  `json:"start_time"`
	StandardHours   float64 `json:"standard_hours"`
	BreakMinutes    int     `json:"break_minutes"`
	Project         string  `json:"project,omitempty"`
	Task            string  `json:"task,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// BulkResponse is the per-item tally of a bulk submission.
type BulkResponse struct {
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Entries      []EntryDTO `json:"entries"`
	Errors       []string   `json:"errors,omitempty"`
}

// BulkPreviewResponse shows the drafts an expansion would produce,
// without persisting anything.
type BulkPreviewResponse struct {
	Count   int        `json:"count"`
	Entries []EntryDTO `json:"entries"`
}

// RepairResponse reports the legacy-id repair outcome.
type RepairResponse struct {
	Fixed int `json:"fixed"`
}

// ProjectDTO represents a project label in API responses.
type ProjectDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ProjectRequest is the request body for creating or updating a project.
type ProjectRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// TimerDTO reports the live timer state.
type TimerDTO struct {
	Active         bool   `json:"active"`
	EntryID        string `json:"entry_id,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	ElapsedSeconds int64  `json:"elapsed_seconds,omitempty"`
	OnBreak        bool   `json:"on_break,omitempty"`
	Project        string `json:"project,omitempty"`
	Task           string `json:"task,omitempty"`
}

// TimerStartRequest is the request body for starting the timer.
type TimerStartRequest struct {
	Project     string `json:"project,omitempty"`
	Task        string `json:"task,omitempty"`
	Description string `json:"description,omitempty"`
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
