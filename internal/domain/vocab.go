package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Vocabulary errors.
var (
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Severity is the criticality level of an incident.
type Severity string

// Severity levels, highest first.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Status is the lifecycle state of an incident.
type Status string

// Incident statuses. Open is the only valid initial state.
const (
	StatusOpen         Status = "OPEN"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusMitigating   Status = "MITIGATING"
	StatusResolved     Status = "RESOLVED"
	StatusClosed       Status = "CLOSED"
)

// Alias and label tables are plain data so new spellings are additions, not
// code changes. Keys are lower-cased; lookups fold case and trim whitespace.
var severityAliases = map[string]Severity{
	"critical": SeverityCritical,
	"s0":       SeverityCritical,
	"严重":       SeverityCritical,
	"high":     SeverityHigh,
	"s1":       SeverityHigh,
	"高":        SeverityHigh,
	"medium":   SeverityMedium,
	"s2":       SeverityMedium,
	"中":        SeverityMedium,
	"low":      SeverityLow,
	"s3":       SeverityLow,
	"低":        SeverityLow,
}

var severityLabels = map[Severity]string{
	SeverityCritical: "严重",
	SeverityHigh:     "高",
	SeverityMedium:   "中",
	SeverityLow:      "低",
}

var statusAliases = map[string]Status{
	"open":         StatusOpen,
	"未处理":          StatusOpen,
	"acknowledged": StatusAcknowledged,
	"已确认":          StatusAcknowledged,
	"mitigating":   StatusMitigating,
	"处理中":          StatusMitigating,
	"resolved":     StatusResolved,
	"已解决":          StatusResolved,
	"closed":       StatusClosed,
	"已关闭":          StatusClosed,
}

var statusLabels = map[Status]string{
	StatusOpen:         "未处理",
	StatusAcknowledged: "已确认",
	StatusMitigating:   "处理中",
	StatusResolved:     "已解决",
	StatusClosed:       "已关闭",
}

// ParseSeverity resolves a severity token. Canonical tokens, numeric tiers
// (S0..S3) and display labels are all accepted, case-insensitively. A blank
// token parses to the zero value with no error, so callers can tell
// "omitted" from "malformed".
func ParseSeverity(token string) (Severity, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return "", nil
	}
	if s, ok := severityAliases[normalized]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, token)
}

// ParseStatus resolves a status token with the same rules as ParseSeverity.
func ParseStatus(token string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return "", nil
	}
	if s, ok := statusAliases[normalized]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, token)
}

// IsValid checks if the severity is one of the defined levels.
func (s Severity) IsValid() bool {
	_, ok := severityLabels[s]
	return ok
}

// DisplayLabel returns the localized display label for the severity.
func (s Severity) DisplayLabel() string {
	return severityLabels[s]
}

// IsValid checks if the status is one of the defined states.
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// DisplayLabel returns the localized display label for the status.
func (s Status) DisplayLabel() string {
	return statusLabels[s]
}

// IsTerminal reports whether the status counts as finished for SLA purposes.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}
