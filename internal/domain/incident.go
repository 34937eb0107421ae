// Package domain contains the core types for the incident workflow engine.
package domain

import "time"

// Timeline event types.
const (
	EventTypeCreated = "created"
	EventTypeStatus  = "status"
	EventTypeAssign  = "assign"
	EventTypeNote    = "note"
	EventTypeSLA     = "sla"
)

// IncidentEvent is a single immutable entry on an incident's timeline.
type IncidentEvent struct {
	At      time.Time `json:"at"`
	Type    string    `json:"type"`
	Actor   string    `json:"actor"`
	Message string    `json:"message"`
}

// Incident is the central entity tracked by the registry.
//
// ID, CreatedBy and CreatedAt never change after construction. Timeline is
// append-only. UpdatedAt is monotonically non-decreasing and matches the
// timestamp of the most recent mutation.
type Incident struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    Severity          `json:"severity"`
	Status      Status            `json:"status"`
	Assignee    string            `json:"assignee,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DueAt       *time.Time        `json:"due_at,omitempty"`
	Tags        []string          `json:"tags"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timeline    []IncidentEvent   `json:"timeline"`
}

// Clone returns an independent deep copy of the incident. The registry hands
// out clones so callers never share mutable state with the store.
func (i *Incident) Clone() *Incident {
	c := *i
	if i.DueAt != nil {
		due := *i.DueAt
		c.DueAt = &due
	}
	c.Tags = append([]string(nil), i.Tags...)
	c.Timeline = append([]IncidentEvent(nil), i.Timeline...)
	if i.Metadata != nil {
		c.Metadata = make(map[string]string, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// HasTag reports whether the incident carries the exact tag.
func (i *Incident) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
