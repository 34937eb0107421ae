// Package registry is the exclusive owner of all incident state. It is the
// single source of truth for identity, lookup and mutation ordering.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Registry errors.
var (
	ErrNotFound   = errors.New("incident not found")
	ErrEmptyTitle = errors.New("title is required")
)

// entry pairs an incident with its own mutex. Field mutations on one
// incident are serialized by the entry lock; the registry map lock is only
// held for lookups and inserts, so queries and mutations on unrelated
// incidents never block each other.
type entry struct {
	mu       sync.Mutex
	incident domain.Incident
}

// Registry is a concurrency-safe in-memory incident store.
type Registry struct {
	mu        sync.RWMutex
	incidents map[string]*entry
	sequence  atomic.Int64
	now       func() time.Time
}

// New creates an empty registry. The id sequence starts at 1000.
func New() *Registry {
	r := &Registry{
		incidents: make(map[string]*entry),
		now:       time.Now,
	}
	r.sequence.Store(999)
	return r
}

// CreateInput holds data for creating an incident.
type CreateInput struct {
	Title       string
	Description string
	Severity    domain.Severity
	CreatedBy   string
	Tags        []string
	Metadata    map[string]string
	SLA         time.Duration // zero means no due time
}

// Create stores a new incident with status OPEN and a single "created"
// timeline event. The id combines an atomically incremented sequence with a
// random suffix, so concurrent creates never collide.
func (r *Registry) Create(input CreateInput) (*domain.Incident, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSeverity, input.Severity)
	}

	now := r.now().UTC()
	id := fmt.Sprintf("INC-%d-%s", r.sequence.Add(1), uuid.NewString()[:6])

	var dueAt *time.Time
	if input.SLA > 0 {
		due := now.Add(input.SLA)
		dueAt = &due
	}

	var metadata map[string]string
	if len(input.Metadata) > 0 {
		metadata = make(map[string]string, len(input.Metadata))
		for k, v := range input.Metadata {
			metadata[k] = v
		}
	}

	incident := domain.Incident{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Status:      domain.StatusOpen,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueAt:       dueAt,
		Tags:        normalizeTags(input.Tags),
		Metadata:    metadata,
		Timeline: []domain.IncidentEvent{
			{At: now, Type: domain.EventTypeCreated, Actor: input.CreatedBy, Message: "incident created"},
		},
	}

	r.mu.Lock()
	r.incidents[id] = &entry{incident: incident}
	r.mu.Unlock()

	metrics.RecordIncidentCreated(string(input.Severity))
	return incident.Clone(), nil
}

// Get returns an independent copy of the incident, or ErrNotFound.
func (r *Registry) Get(id string) (*domain.Incident, error) {
	r.mu.RLock()
	e, ok := r.incidents[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incident.Clone(), nil
}

// ListFilter holds optional AND predicates for List. Zero values match
// everything.
type ListFilter struct {
	Status   domain.Status
	Severity domain.Severity
	Assignee string // case-insensitive
	Tag      string // exact membership
	Limit    int    // clamped to at least 1
}

// List returns matching incidents sorted by UpdatedAt descending, truncated
// to max(1, Limit). Ties in UpdatedAt break by id so repeated calls against
// unchanged state return the same order.
func (r *Registry) List(filter ListFilter) []*domain.Incident {
	matched := make([]*domain.Incident, 0)
	for _, incident := range r.All() {
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && incident.Severity != filter.Severity {
			continue
		}
		if filter.Assignee != "" && !strings.EqualFold(filter.Assignee, incident.Assignee) {
			continue
		}
		if filter.Tag != "" && !incident.HasTag(filter.Tag) {
			continue
		}
		matched = append(matched, incident)
	}

	sortByUpdatedAtDesc(matched)

	limit := filter.Limit
	if limit < 1 {
		limit = 1
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// UpdateStatus transitions the incident and appends a status event. An empty
// note produces a default message.
func (r *Registry) UpdateStatus(id string, status domain.Status, actor, note string) (*domain.Incident, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if note == "" {
		note = fmt.Sprintf("status changed to %s", status)
	}
	incident, err := r.mutate(id, func(incident *domain.Incident, now time.Time) {
		incident.Status = status
		incident.Timeline = append(incident.Timeline, domain.IncidentEvent{
			At: now, Type: domain.EventTypeStatus, Actor: actor, Message: note,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordStatusTransition(string(status))
	return incident, nil
}

// Assign sets the assignee and appends an assignment event.
func (r *Registry) Assign(id, assignee, actor string) (*domain.Incident, error) {
	return r.mutate(id, func(incident *domain.Incident, now time.Time) {
		incident.Assignee = assignee
		incident.Timeline = append(incident.Timeline, domain.IncidentEvent{
			At: now, Type: domain.EventTypeAssign, Actor: actor, Message: "assigned to " + assignee,
		})
	})
}

// AddNote appends a note event to the timeline.
func (r *Registry) AddNote(id, actor, note string) (*domain.Incident, error) {
	return r.mutate(id, func(incident *domain.Incident, now time.Time) {
		incident.Timeline = append(incident.Timeline, domain.IncidentEvent{
			At: now, Type: domain.EventTypeNote, Actor: actor, Message: note,
		})
	})
}

// UpdateSLA recomputes DueAt as now + sla and appends an SLA event. A zero
// sla clears the due time.
func (r *Registry) UpdateSLA(id string, sla time.Duration, actor string) (*domain.Incident, error) {
	return r.mutate(id, func(incident *domain.Incident, now time.Time) {
		if sla > 0 {
			due := now.Add(sla)
			incident.DueAt = &due
		} else {
			incident.DueAt = nil
		}
		incident.Timeline = append(incident.Timeline, domain.IncidentEvent{
			At: now, Type: domain.EventTypeSLA, Actor: actor, Message: "SLA updated",
		})
	})
}

// All returns independent copies of every incident's state at call time.
// Later mutations never change the returned values.
func (r *Registry) All() []*domain.Incident {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.incidents))
	for _, e := range r.incidents {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	incidents := make([]*domain.Incident, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		incidents = append(incidents, e.incident.Clone())
		e.mu.Unlock()
	}
	return incidents
}

// mutate applies fn to the incident under its entry lock and bumps
// UpdatedAt. The fresh timestamp never goes backwards relative to the
// incident's current UpdatedAt.
func (r *Registry) mutate(id string, fn func(incident *domain.Incident, now time.Time)) (*domain.Incident, error) {
	r.mu.RLock()
	e, ok := r.incidents[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := r.now().UTC()
	if now.Before(e.incident.UpdatedAt) {
		now = e.incident.UpdatedAt
	}
	fn(&e.incident, now)
	e.incident.UpdatedAt = now
	return e.incident.Clone(), nil
}

// SortByUpdatedAtDesc orders incidents by UpdatedAt descending with a
// deterministic id tie-break. Exported for callers ranking their own
// snapshots (workflow correlation).
func SortByUpdatedAtDesc(incidents []*domain.Incident) {
	sortByUpdatedAtDesc(incidents)
}

func sortByUpdatedAtDesc(incidents []*domain.Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		if incidents[i].UpdatedAt.Equal(incidents[j].UpdatedAt) {
			return incidents[i].ID < incidents[j].ID
		}
		return incidents[i].UpdatedAt.After(incidents[j].UpdatedAt)
	})
}

// normalizeTags trims tags, drops blanks and collapses duplicates while
// preserving first-seen order.
func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
