package domain

// Runbook is an immutable remediation playbook. The catalog is seeded once
// at startup and read-only afterwards.
type Runbook struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Tags        []string `json:"tags"`
}

// HasTag reports whether the runbook carries the exact tag.
func (r *Runbook) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
