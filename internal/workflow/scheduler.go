// Package workflow provides time-deferred, cancellable follow-up actions
// against incidents, plus bulk and correlation operations that are pure
// functions of current registry state.
package workflow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/pkg/metrics"
	"github.com/bissquit/incident-forge/internal/registry"
)

// Scheduler errors.
var (
	ErrNoFollowUp   = errors.New("no pending follow-up")
	ErrInvalidDelay = errors.New("delay must be positive")
	ErrEmptyIDList  = errors.New("incident id list is empty")
)

// DefaultCorrelateLimit bounds Correlate when the caller gives no limit.
const DefaultCorrelateLimit = 10

// IncidentStore is the registry surface the scheduler depends on. The
// scheduler only looks up and mutates incidents; it never owns them.
type IncidentStore interface {
	Get(id string) (*domain.Incident, error)
	AddNote(id, actor, note string) (*domain.Incident, error)
	UpdateStatus(id string, status domain.Status, actor, note string) (*domain.Incident, error)
	All() []*domain.Incident
}

// followUp is one pending timer. Pointer identity doubles as the generation
// token: a fired or canceled handle that no longer sits in the map must not
// touch the incident.
type followUp struct {
	timer *time.Timer
}

// Scheduler tracks at most one pending follow-up per incident.
type Scheduler struct {
	store IncidentStore

	mu        sync.Mutex
	followUps map[string]*followUp
}

// NewScheduler creates a scheduler backed by the given store.
func NewScheduler(store IncidentStore) *Scheduler {
	return &Scheduler{
		store:     store,
		followUps: make(map[string]*followUp),
	}
}

// ScheduleFollowUp registers a delayed note append for the incident. An
// already-pending follow-up for the same incident is canceled and replaced
// atomically. The caller gets an acknowledgment immediately; firing is
// fire-and-forget on the timer goroutine.
func (s *Scheduler) ScheduleFollowUp(incidentID string, delay time.Duration, message, actor string) error {
	if delay <= 0 {
		return ErrInvalidDelay
	}
	if _, err := s.store.Get(incidentID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.followUps[incidentID]; ok {
		prev.timer.Stop()
		metrics.RecordFollowUp("replaced")
	}

	f := &followUp{}
	f.timer = time.AfterFunc(delay, func() {
		s.fire(incidentID, f, actor, message)
	})
	s.followUps[incidentID] = f

	metrics.RecordFollowUp("scheduled")
	metrics.SetFollowUpsPending(len(s.followUps))
	return nil
}

// CancelFollowUp removes and cancels the pending follow-up. Returns
// ErrNoFollowUp when nothing is pending for the incident.
func (s *Scheduler) CancelFollowUp(incidentID string) error {
	s.mu.Lock()
	f, ok := s.followUps[incidentID]
	if ok {
		delete(s.followUps, incidentID)
		metrics.SetFollowUpsPending(len(s.followUps))
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoFollowUp, incidentID)
	}
	f.timer.Stop()
	metrics.RecordFollowUp("canceled")
	return nil
}

// Pending reports whether a follow-up is currently scheduled for the
// incident.
func (s *Scheduler) Pending(incidentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.followUps[incidentID]
	return ok
}

// Stop cancels every pending follow-up. Called on shutdown; no follow-up
// survives the process.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, f := range s.followUps {
		f.timer.Stop()
		delete(s.followUps, id)
	}
	metrics.SetFollowUpsPending(0)
	s.mu.Unlock()
	slog.Info("workflow scheduler stopped")
}

func (s *Scheduler) fire(incidentID string, f *followUp, actor, message string) {
	s.mu.Lock()
	if s.followUps[incidentID] != f {
		// Replaced or canceled after the timer expired; the newer
		// registration wins.
		s.mu.Unlock()
		return
	}
	delete(s.followUps, incidentID)
	metrics.SetFollowUpsPending(len(s.followUps))
	s.mu.Unlock()

	if _, err := s.store.AddNote(incidentID, actor, message); err != nil {
		// Best effort: the caller was acknowledged at schedule time.
		slog.Warn("follow-up fire skipped", "incident_id", incidentID, "error", err)
		return
	}
	metrics.RecordFollowUp("fired")
}

// BulkResult partitions a bulk status update into ids that were changed and
// ids that do not exist.
type BulkResult struct {
	Updated []string `json:"updated"`
	Missing []string `json:"missing"`
}

// BulkUpdateStatus applies the transition independently to every id. One
// missing id never fails the batch.
func (s *Scheduler) BulkUpdateStatus(incidentIDs []string, status domain.Status, actor string) (BulkResult, error) {
	result := BulkResult{Updated: []string{}, Missing: []string{}}
	if len(incidentIDs) == 0 {
		return result, ErrEmptyIDList
	}
	if !status.IsValid() {
		return result, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	for _, id := range incidentIDs {
		if _, err := s.store.UpdateStatus(id, status, actor, "bulk update"); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				result.Missing = append(result.Missing, id)
				continue
			}
			return result, err
		}
		result.Updated = append(result.Updated, id)
	}
	return result, nil
}

// Mitigation step tables, keyed on severity tier. Pure data: changing a plan
// is a table edit.
var mitigationSteps = map[domain.Severity][]string{
	domain.SeverityCritical: {
		"Shift traffic to the standby cluster",
		"Notify the on-call rotation and the owner",
		"Freeze related releases and changes",
	},
	domain.SeverityHigh: {
		"Widen monitoring dimensions and confirm the blast radius",
		"Enable degradation and prepare a rollback",
	},
}

var defaultMitigationSteps = []string{
	"Collect logs and metrics",
	"Find the root cause and estimate the fix window",
}

const securityAuditStep = "Trigger security response and audit"

// securityTags mark an incident as security-related for mitigation planning.
var securityTags = map[string]struct{}{
	"security": {},
	"安全":       {},
}

// PlanMitigation returns the fixed step list for the incident's severity
// tier, with the security audit step appended when the incident carries a
// security-related tag.
func (s *Scheduler) PlanMitigation(incidentID string) ([]string, error) {
	incident, err := s.store.Get(incidentID)
	if err != nil {
		return nil, err
	}

	tier, ok := mitigationSteps[incident.Severity]
	if !ok {
		tier = defaultMitigationSteps
	}
	steps := append([]string(nil), tier...)

	for _, tag := range incident.Tags {
		if _, ok := securityTags[tag]; ok {
			steps = append(steps, securityAuditStep)
			break
		}
	}
	return steps, nil
}

// Correlate takes the limit most recently updated incidents, then filters by
// a case-insensitive substring match of keyword against title, description
// or any tag. A blank keyword matches everything.
//
// Limiting happens BEFORE filtering, so the result can hold fewer than limit
// items even when more matches exist further back in update order. That
// two-stage shape is intentional and pinned by tests.
func (s *Scheduler) Correlate(keyword string, limit int) []*domain.Incident {
	if limit <= 0 {
		limit = DefaultCorrelateLimit
	}

	incidents := s.store.All()
	registry.SortByUpdatedAtDesc(incidents)
	if len(incidents) > limit {
		incidents = incidents[:limit]
	}

	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return incidents
	}

	matched := make([]*domain.Incident, 0, len(incidents))
	for _, incident := range incidents {
		if correlateMatch(incident, needle) {
			matched = append(matched, incident)
		}
	}
	return matched
}

func correlateMatch(incident *domain.Incident, needle string) bool {
	if strings.Contains(strings.ToLower(incident.Title), needle) ||
		strings.Contains(strings.ToLower(incident.Description), needle) {
		return true
	}
	for _, tag := range incident.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
