package tools

import (
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/workflow"
	"github.com/go-playground/validator/v10"
)

// WorkflowTools exposes scheduler operations to external collaborators.
type WorkflowTools struct {
	scheduler *workflow.Scheduler
	validate  *validator.Validate
}

// NewWorkflowTools creates the workflow operation set.
func NewWorkflowTools(scheduler *workflow.Scheduler) *WorkflowTools {
	return &WorkflowTools{
		scheduler: scheduler,
		validate:  validator.New(),
	}
}

// ScheduleFollowUpRequest holds arguments for ScheduleFollowUp.
type ScheduleFollowUpRequest struct {
	IncidentID   string `json:"incident_id" validate:"required"`
	DelaySeconds *int   `json:"delay_seconds"`
	Message      string `json:"message"`
	Actor        string `json:"actor"`
}

// FollowUpAck acknowledges a scheduled follow-up.
type FollowUpAck struct {
	IncidentID   string `json:"incident_id"`
	DelaySeconds int    `json:"delay_seconds"`
	Message      string `json:"message"`
}

// ScheduleFollowUp arranges a delayed timeline note for the incident,
// replacing any follow-up already pending for it.
func (t *WorkflowTools) ScheduleFollowUp(req ScheduleFollowUpRequest) Response {
	if err := t.validate.Struct(req); err != nil {
		return Errorf("validation error: %s", err)
	}
	if req.DelaySeconds == nil || *req.DelaySeconds < 1 {
		return Error("delay_seconds must be at least 1")
	}
	delay := time.Duration(*req.DelaySeconds) * time.Second
	if err := t.scheduler.ScheduleFollowUp(req.IncidentID, delay, req.Message, req.Actor); err != nil {
		return Error(err.Error())
	}
	return Success(FollowUpAck{
		IncidentID:   req.IncidentID,
		DelaySeconds: *req.DelaySeconds,
		Message:      req.Message,
	})
}

// CancelAck acknowledges a canceled follow-up.
type CancelAck struct {
	IncidentID string `json:"incident_id"`
	Canceled   bool   `json:"canceled"`
}

// CancelFollowUp cancels the pending follow-up for the incident.
func (t *WorkflowTools) CancelFollowUp(incidentID string) Response {
	if err := t.scheduler.CancelFollowUp(incidentID); err != nil {
		return Error(err.Error())
	}
	return Success(CancelAck{IncidentID: incidentID, Canceled: true})
}

// BulkUpdateStatusRequest holds arguments for BulkUpdateStatus.
type BulkUpdateStatusRequest struct {
	IncidentIDs []string `json:"incident_ids" validate:"required,min=1"`
	Status      string   `json:"status" validate:"required"`
	Actor       string   `json:"actor"`
}

// BulkUpdateStatus transitions every existing incident in the list and
// reports the ids that were not found.
func (t *WorkflowTools) BulkUpdateStatus(req BulkUpdateStatusRequest) Response {
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
	result, err := t.scheduler.BulkUpdateStatus(req.IncidentIDs, status, req.Actor)
	if err != nil {
		return Error(err.Error())
	}
	return Success(result)
}

// MitigationPlan is the ordered step list for an incident.
type MitigationPlan struct {
	IncidentID string   `json:"incident_id"`
	Steps      []string `json:"steps"`
}

// PlanMitigation returns the severity-tier step list for the incident.
func (t *WorkflowTools) PlanMitigation(incidentID string) Response {
	steps, err := t.scheduler.PlanMitigation(incidentID)
	if err != nil {
		return Error(err.Error())
	}
	return Success(MitigationPlan{IncidentID: incidentID, Steps: steps})
}

// CorrelateRequest holds arguments for CorrelateIncidents.
type CorrelateRequest struct {
	Keyword string `json:"keyword"`
	Limit   *int   `json:"limit"`
}

// Correlation is the result of a correlation query.
type Correlation struct {
	Count int               `json:"count"`
	Items []IncidentSummary `json:"items"`
}

// CorrelateIncidents filters the most recently updated incidents by keyword.
func (t *WorkflowTools) CorrelateIncidents(req CorrelateRequest) Response {
	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}
	incidents := t.scheduler.Correlate(req.Keyword, limit)
	items := toSummaries(incidents)
	return Success(Correlation{Count: len(items), Items: items})
}
