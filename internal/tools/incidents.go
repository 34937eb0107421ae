package tools

import (
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/registry"
	"github.com/go-playground/validator/v10"
)

// DefaultListLimit applies when a list request carries no limit.
const DefaultListLimit = 20

// IncidentTools exposes registry operations to external collaborators.
type IncidentTools struct {
	registry *registry.Registry
	validate *validator.Validate
}

// NewIncidentTools creates the incident operation set.
func NewIncidentTools(reg *registry.Registry) *IncidentTools {
	return &IncidentTools{
		registry: reg,
		validate: validator.New(),
	}
}

// CreateIncidentRequest holds arguments for CreateIncident.
type CreateIncidentRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Severity    string            `json:"severity" validate:"required"`
	Tags        []string          `json:"tags"`
	CreatedBy   string            `json:"created_by"`
	SLAMinutes  *int              `json:"sla_minutes"`
	Metadata    map[string]string `json:"metadata"`
}

// CreateIncident creates a new incident and returns its summary.
func (t *IncidentTools) CreateIncident(req CreateIncidentRequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	severity, err := domain.ParseSeverity(req.Severity)
	if err != nil {
		return Errorf("invalid severity: %s", req.Severity)
	}
	if severity == "" {
		return Error("severity is required")
	}

	incident, err := t.registry.Create(registry.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    severity,
		CreatedBy:   req.CreatedBy,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		SLA:         slaFromMinutes(req.SLAMinutes),
	})
	if err != nil {
		return Error(err.Error())
	}
	return Success(toSummary(incident))
}

// GetIncident returns the incident detail, including the timeline.
func (t *IncidentTools) GetIncident(incidentID string) Response {
	incident, err := t.registry.Get(incidentID)
	if err != nil {
		return Error(err.Error())
	}
	return Success(toDetail(incident))
}

// ListIncidentsRequest holds optional filters for ListIncidents.
type ListIncidentsRequest struct {
	Status   string `json:"status"`
	Severity string `json:"severity"`
	Assignee string `json:"assignee"`
	Tag      string `json:"tag"`
	Limit    *int   `json:"limit"`
}

// ListIncidents returns filtered incident summaries sorted by most recent
// update.
func (t *IncidentTools) ListIncidents(req ListIncidentsRequest) Response {
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return Errorf("invalid status: %s", req.Status)
	}
	severity, err := domain.ParseSeverity(req.Severity)
	if err != nil {
		return Errorf("invalid severity: %s", req.Severity)
	}

	limit := DefaultListLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	incidents := t.registry.List(registry.ListFilter{
		Status:   status,
		Severity: severity,
		Assignee: req.Assignee,
		Tag:      req.Tag,
		Limit:    limit,
	})
	return Success(toSummaries(incidents))
}

// AssignIncidentRequest holds arguments for AssignIncident.
type AssignIncidentRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Assignee   string `json:"assignee" validate:"required"`
	Actor      string `json:"actor"`
}

// AssignIncident sets the incident assignee.
func (t *IncidentTools) AssignIncident(req AssignIncidentRequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	incident, err := t.registry.Assign(req.IncidentID, req.Assignee, req.Actor)
	if err != nil {
		return Error(err.Error())
	}
	return Success(toSummary(incident))
}

// UpdateStatusRequest holds arguments for UpdateIncidentStatus.
type UpdateStatusRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	Actor      string `json:"actor"`
	Note       string `json:"note"`
}

// UpdateIncidentStatus transitions the incident and records the note.
func (t *IncidentTools) UpdateIncidentStatus(req UpdateStatusRequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return Errorf("invalid status: %s", req.Status)
	}
	if status == "" {
		return Error("status is required")
	}
	incident, err := t.registry.UpdateStatus(req.IncidentID, status, req.Actor, req.Note)
	if err != nil {
		return Error(err.Error())
	}
	return Success(toSummary(incident))
}

// AddNoteRequest holds arguments for AddIncidentNote.
type AddNoteRequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	Note       string `json:"note" validate:"required"`
	Actor      string `json:"actor"`
}

// AddIncidentNote appends a note to the timeline and returns the detail.
func (t *IncidentTools) AddIncidentNote(req AddNoteRequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	incident, err := t.registry.AddNote(req.IncidentID, req.Actor, req.Note)
	if err != nil {
		return Error(err.Error())
	}
	return Success(toDetail(incident))
}

// UpdateSLARequest holds arguments for UpdateIncidentSLA. A nil SLAMinutes
// clears the due time.
type UpdateSLARequest struct {
	IncidentID string `json:"incident_id" validate:"required"`
	SLAMinutes *int   `json:"sla_minutes"`
	Actor      string `json:"actor"`
}

// UpdateIncidentSLA recomputes the incident due time.
func (t *IncidentTools) UpdateIncidentSLA(req UpdateSLARequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	incident, err := t.registry.UpdateSLA(req.IncidentID, slaFromMinutes(req.SLAMinutes), req.Actor)
	if err != nil {
		return Error(err.Error())
	}
	return Success(toSummary(incident))
}

// IncidentStats aggregates current registry state. Group keys are the
// localized display labels.
type IncidentStats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	BySeverity  map[string]int `json:"by_severity"`
	SLABreached int            `json:"sla_breached"`
}

// Stats returns totals by status and severity plus the count of unresolved
// incidents past their due time.
func (t *IncidentTools) Stats() Response {
	incidents := t.registry.All()
	stats := IncidentStats{
		Total:      len(incidents),
		ByStatus:   make(map[string]int),
		BySeverity: make(map[string]int),
	}
	now := time.Now()
	for _, incident := range incidents {
		stats.ByStatus[incident.Status.DisplayLabel()]++
		stats.BySeverity[incident.Severity.DisplayLabel()]++
		if incident.DueAt != nil && incident.DueAt.Before(now) && !incident.Status.IsTerminal() {
			stats.SLABreached++
		}
	}
	return Success(stats)
}

// slaFromMinutes converts a nullable minute count to a duration, clamping to
// at least one minute when set.
func slaFromMinutes(minutes *int) time.Duration {
	if minutes == nil {
		return 0
	}
	m := *minutes
	if m < 1 {
		m = 1
	}
	return time.Duration(m) * time.Minute
}
