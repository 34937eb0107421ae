package tools

import (
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
)

// IncidentSummary is the boundary view of an incident. Severity and status
// cross the boundary both as canonical tokens and as localized display
// labels.
type IncidentSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Status        domain.Status   `json:"status"`
	StatusLabel   string          `json:"status_label"`
	Severity      domain.Severity `json:"severity"`
	SeverityLabel string          `json:"severity_label"`
	Assignee      string          `json:"assignee,omitempty"`
	Tags          []string        `json:"tags"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DueAt         *time.Time      `json:"due_at,omitempty"`
}

// IncidentDetail extends the summary with description, creator, metadata and
// the full timeline.
type IncidentDetail struct {
	IncidentSummary
	Description string                 `json:"description"`
	CreatedBy   string                 `json:"created_by"`
	Metadata    map[string]string      `json:"metadata,omitempty"`
	Timeline    []domain.IncidentEvent `json:"timeline"`
}

func toSummary(incident *domain.Incident) IncidentSummary {
	return IncidentSummary{
		ID:            incident.ID,
		Title:         incident.Title,
		Status:        incident.Status,
		StatusLabel:   incident.Status.DisplayLabel(),
		Severity:      incident.Severity,
		SeverityLabel: incident.Severity.DisplayLabel(),
		Assignee:      incident.Assignee,
		Tags:          incident.Tags,
		CreatedAt:     incident.CreatedAt,
		UpdatedAt:     incident.UpdatedAt,
		DueAt:         incident.DueAt,
	}
}

func toDetail(incident *domain.Incident) IncidentDetail {
	return IncidentDetail{
		IncidentSummary: toSummary(incident),
		Description:     incident.Description,
		CreatedBy:       incident.CreatedBy,
		Metadata:        incident.Metadata,
		Timeline:        incident.Timeline,
	}
}

func toSummaries(incidents []*domain.Incident) []IncidentSummary {
	summaries := make([]IncidentSummary, 0, len(incidents))
	for _, incident := range incidents {
		summaries = append(summaries, toSummary(incident))
	}
	return summaries
}
