package runbooks

import (
	"testing"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	catalog := NewCatalog()

	all := catalog.List("")
	assert.Len(t, all, 3)

	tagged := catalog.List("安全")
	require.Len(t, tagged, 1)
	assert.Equal(t, "rb-auth-002", tagged[0].ID)

	assert.Empty(t, catalog.List("nonexistent"))
}

func TestGet_CaseInsensitive(t *testing.T) {
	catalog := NewCatalog()

	rb, err := catalog.Get("RB-DDOS-001")
	require.NoError(t, err)
	assert.Equal(t, "rb-ddos-001", rb.ID)

	_, err = catalog.Get("rb-missing-999")
	assert.ErrorIs(t, err, ErrRunbookNotFound)
}

func TestSearch(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name     string
		keyword  string
		expected []string
	}{
		{"title match", "denial-of-service", []string{"rb-ddos-001"}},
		{"case-insensitive", "AUTHENTICATION", []string{"rb-auth-002"}},
		{"step match", "validation scripts", []string{"rb-data-003"}},
		{"shared term across books", "roll back", []string{"rb-ddos-001", "rb-auth-002"}},
		{"no match", "kubernetes", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := catalog.Search(tt.keyword)
			ids := make([]string, 0, len(found))
			for _, rb := range found {
				ids = append(ids, rb.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestRecommend_TagIntersection(t *testing.T) {
	catalog := NewCatalog()

	incident := &domain.Incident{
		Severity: domain.SeverityLow,
		Tags:     []string{"安全", "login"},
	}

	matches := catalog.Recommend(incident)
	require.Len(t, matches, 1)
	assert.Equal(t, "rb-auth-002", matches[0].ID)
}

func TestRecommend_SeverityFallback(t *testing.T) {
	catalog := NewCatalog()

	// no tag overlap; the critical display label tag on the ddos runbook
	// catches it
	incident := &domain.Incident{
		Severity: domain.SeverityCritical,
		Tags:     []string{"checkout"},
	}

	matches := catalog.Recommend(incident)
	require.Len(t, matches, 1)
	assert.Equal(t, "rb-ddos-001", matches[0].ID)
}

func TestRecommend_NoMatch(t *testing.T) {
	catalog := NewCatalog()

	incident := &domain.Incident{
		Severity: domain.SeverityLow,
		Tags:     []string{"checkout"},
	}

	assert.Empty(t, catalog.Recommend(incident))
}

func TestNewCatalog_CustomRunbooks(t *testing.T) {
	custom := domain.Runbook{ID: "rb-custom-001", Title: "Custom", Tags: []string{"x"}}
	catalog := NewCatalog(custom)

	all := catalog.List("")
	require.Len(t, all, 1)
	assert.Equal(t, "rb-custom-001", all[0].ID)
}
