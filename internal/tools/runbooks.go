package tools

import (
	"strings"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/registry"
	"github.com/bissquit/incident-forge/internal/runbooks"
)

// RunbookTools exposes the read-only runbook catalog to external
// collaborators.
type RunbookTools struct {
	catalog  *runbooks.Catalog
	registry *registry.Registry
}

// NewRunbookTools creates the runbook operation set.
func NewRunbookTools(catalog *runbooks.Catalog, reg *registry.Registry) *RunbookTools {
	return &RunbookTools{catalog: catalog, registry: reg}
}

// ListRunbooks returns runbooks, optionally filtered by exact tag.
func (t *RunbookTools) ListRunbooks(tag string) Response {
	return Success(t.catalog.List(tag))
}

// GetRunbook returns the runbook with the given id, case-insensitively.
func (t *RunbookTools) GetRunbook(id string) Response {
	rb, err := t.catalog.Get(id)
	if err != nil {
		return Error(err.Error())
	}
	return Success(rb)
}

// SearchRunbooks matches the keyword against title, description and steps.
func (t *RunbookTools) SearchRunbooks(keyword string) Response {
	if strings.TrimSpace(keyword) == "" {
		return Error("keyword is required")
	}
	return Success(t.catalog.Search(keyword))
}

// Recommendation pairs an incident with its recommended runbooks.
type Recommendation struct {
	IncidentID string           `json:"incident_id"`
	Runbooks   []domain.Runbook `json:"runbooks"`
}

// RecommendRunbooks matches runbooks against the incident's tags, falling
// back to its severity display label.
func (t *RunbookTools) RecommendRunbooks(incidentID string) Response {
	incident, err := t.registry.Get(incidentID)
	if err != nil {
		return Error(err.Error())
	}
	return Success(Recommendation{
		IncidentID: incidentID,
		Runbooks:   t.catalog.Recommend(incident),
	})
}
