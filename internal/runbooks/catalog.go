// Package runbooks provides the seeded remediation playbook catalog.
package runbooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bissquit/incident-forge/internal/domain"
	"golang.org/x/text/cases"
)

// ErrRunbookNotFound is returned when no runbook matches the requested id.
var ErrRunbookNotFound = errors.New("runbook not found")

// Catalog is a process-wide immutable set of runbooks, constructed once at
// startup with no further lifecycle.
type Catalog struct {
	runbooks []domain.Runbook
	fold     cases.Caser
}

// NewCatalog builds a catalog from the given runbooks. With no arguments the
// default seed set is used.
func NewCatalog(runbooks ...domain.Runbook) *Catalog {
	if len(runbooks) == 0 {
		runbooks = seedRunbooks()
	}
	return &Catalog{
		runbooks: runbooks,
		fold:     cases.Fold(),
	}
}

// List returns runbooks carrying the given tag, or every runbook when the
// tag is blank.
func (c *Catalog) List(tag string) []domain.Runbook {
	tag = strings.TrimSpace(tag)
	matched := make([]domain.Runbook, 0, len(c.runbooks))
	for _, rb := range c.runbooks {
		if tag == "" || rb.HasTag(tag) {
			matched = append(matched, rb)
		}
	}
	return matched
}

// Get returns the runbook whose id matches case-insensitively.
func (c *Catalog) Get(id string) (domain.Runbook, error) {
	for _, rb := range c.runbooks {
		if strings.EqualFold(rb.ID, id) {
			return rb, nil
		}
	}
	return domain.Runbook{}, fmt.Errorf("%w: %s", ErrRunbookNotFound, id)
}

// Search returns runbooks whose title, description or any step contains the
// keyword, case-insensitively.
func (c *Catalog) Search(keyword string) []domain.Runbook {
	needle := c.fold.String(keyword)
	matched := make([]domain.Runbook, 0)
	for _, rb := range c.runbooks {
		if c.contains(rb.Title, needle) || c.contains(rb.Description, needle) || c.containsAny(rb.Steps, needle) {
			matched = append(matched, rb)
		}
	}
	return matched
}

// Recommend matches runbooks against the incident. Exact tag intersection
// wins; when no runbook shares a tag with the incident, runbooks tagged with
// the incident's severity display label are returned instead. The result
// may be empty.
func (c *Catalog) Recommend(incident *domain.Incident) []domain.Runbook {
	matched := make([]domain.Runbook, 0)
	for _, rb := range c.runbooks {
		for _, tag := range rb.Tags {
			if incident.HasTag(tag) {
				matched = append(matched, rb)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}

	// Severity tags on seed runbooks are stored as display labels, so the
	// fallback stays a plain tag match.
	severityTag := incident.Severity.DisplayLabel()
	for _, rb := range c.runbooks {
		if rb.HasTag(severityTag) {
			matched = append(matched, rb)
		}
	}
	return matched
}

func (c *Catalog) contains(haystack, foldedNeedle string) bool {
	return strings.Contains(c.fold.String(haystack), foldedNeedle)
}

func (c *Catalog) containsAny(haystacks []string, foldedNeedle string) bool {
	for _, h := range haystacks {
		if c.contains(h, foldedNeedle) {
			return true
		}
	}
	return false
}

func seedRunbooks() []domain.Runbook {
	return []domain.Runbook{
		{
			ID:          "rb-ddos-001",
			Title:       "Denial-of-service mitigation",
			Description: "Standard procedure for identifying and mitigating denial-of-service attacks",
			Steps: []string{
				"Confirm the ingress traffic anomaly and the targeted service",
				"Shift traffic to scrubbing or the application firewall",
				"Enable stricter rate limits and blocklists",
				"Roll back or scale out edge resources",
				"Review and update the traffic baseline",
			},
			Tags: []string{"network", "attack", "严重"},
		},
		{
			ID:          "rb-auth-002",
			Title:       "Authentication failure triage",
			Description: "Procedure for elevated login failure rates or unexpected 401/403 responses",
			Steps: []string{
				"Check the health of the authentication service",
				"Review recent releases and configuration changes",
				"Roll back to the last stable version",
				"Verify third-party identity provider availability",
				"Add monitoring and alerting rules",
			},
			Tags: []string{"auth", "安全", "高"},
		},
		{
			ID:          "rb-data-003",
			Title:       "Data consistency repair",
			Description: "Handbook for data lag or corruption findings",
			Steps: []string{
				"Confirm the data source and replication path",
				"Isolate affected users and business operations",
				"Run validation scripts and produce a diff",
				"Backfill data from the diff",
				"Verify and hold a review",
			},
			Tags: []string{"data", "中"},
		},
	}
}
