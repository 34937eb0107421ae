package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected Severity
	}{
		{"canonical", "CRITICAL", SeverityCritical},
		{"lower case", "high", SeverityHigh},
		{"numeric tier", "S0", SeverityCritical},
		{"numeric tier low", "s3", SeverityLow},
		{"display label", "严重", SeverityCritical},
		{"display label medium", "中", SeverityMedium},
		{"whitespace trimmed", "  Low  ", SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			severity, err := ParseSeverity(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, severity)
		})
	}
}

func TestParseSeverity_BlankMeansAbsent(t *testing.T) {
	for _, token := range []string{"", "   ", "\t"} {
		severity, err := ParseSeverity(token)
		require.NoError(t, err)
		assert.Equal(t, Severity(""), severity)
	}
}

func TestParseSeverity_UnknownToken(t *testing.T) {
	_, err := ParseSeverity("urgent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected Status
	}{
		{"canonical", "OPEN", StatusOpen},
		{"lower case", "resolved", StatusResolved},
		{"display label", "处理中", StatusMitigating},
		{"display label closed", "已关闭", StatusClosed},
		{"whitespace trimmed", " Acknowledged ", StatusAcknowledged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := ParseStatus(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestParseStatus_BlankAndUnknown(t *testing.T) {
	status, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, Status(""), status)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDisplayLabels_RoundTrip(t *testing.T) {
	for severity, label := range severityLabels {
		parsed, err := ParseSeverity(label)
		require.NoError(t, err)
		assert.Equal(t, severity, parsed)
	}
	for status, label := range statusLabels {
		parsed, err := ParseStatus(label)
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusResolved.IsTerminal())
	assert.True(t, StatusClosed.IsTerminal())
	assert.False(t, StatusOpen.IsTerminal())
	assert.False(t, StatusAcknowledged.IsTerminal())
	assert.False(t, StatusMitigating.IsTerminal())
}

func TestIncident_Clone_Independent(t *testing.T) {
	original := &Incident{
		ID:       "INC-1000-abc123",
		Title:    "db latency",
		Severity: SeverityHigh,
		Status:   StatusOpen,
		Tags:     []string{"db"},
		Metadata: map[string]string{"region": "eu"},
		Timeline: []IncidentEvent{{Type: EventTypeCreated}},
	}

	clone := original.Clone()
	clone.Tags[0] = "network"
	clone.Metadata["region"] = "us"
	clone.Timeline = append(clone.Timeline, IncidentEvent{Type: EventTypeNote})

	assert.Equal(t, "db", original.Tags[0])
	assert.Equal(t, "eu", original.Metadata["region"])
	assert.Len(t, original.Timeline, 1)
}
