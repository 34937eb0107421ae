package tools

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bissquit/incident-forge/internal/domain"
	"github.com/bissquit/incident-forge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIncidentTools() (*registry.Registry, *IncidentTools) {
	reg := registry.New()
	return reg, NewIncidentTools(reg)
}

func intPtr(n int) *int { return &n }

func TestCreateIncident(t *testing.T) {
	_, it := newIncidentTools()

	resp := it.CreateIncident(CreateIncidentRequest{
		Title:      "checkout is down",
		Severity:   "严重",
		CreatedBy:  "alice",
		Tags:       []string{"payments"},
		SLAMinutes: intPtr(30),
	})

	require.True(t, resp.Success)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Equal(t, time.UTC, resp.Timestamp.Location())

	summary, ok := resp.Data.(IncidentSummary)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityCritical, summary.Severity)
	assert.Equal(t, "严重", summary.SeverityLabel)
	assert.Equal(t, domain.StatusOpen, summary.Status)
	assert.Equal(t, "未处理", summary.StatusLabel)
	require.NotNil(t, summary.DueAt)
}

func TestCreateIncident_Errors(t *testing.T) {
	_, it := newIncidentTools()

	tests := []struct {
		name    string
		req     CreateIncidentRequest
		message string
	}{
		{"missing severity", CreateIncidentRequest{Title: "t"}, "validation error"},
		{"blank severity token", CreateIncidentRequest{Title: "t", Severity: "   "}, "severity is required"},
		{"bad severity token", CreateIncidentRequest{Title: "t", Severity: "urgent"}, "invalid severity"},
		{"missing title", CreateIncidentRequest{Severity: "HIGH"}, "validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := it.CreateIncident(tt.req)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.message)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestGetIncident_NotFound(t *testing.T) {
	_, it := newIncidentTools()

	resp := it.GetIncident("INC-0-none")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "incident not found")
}

func TestListIncidents_AcceptsAliasesAndLabels(t *testing.T) {
	_, it := newIncidentTools()

	for _, severity := range []string{"CRITICAL", "HIGH", "LOW"} {
		resp := it.CreateIncident(CreateIncidentRequest{Title: "t " + severity, Severity: severity})
		require.True(t, resp.Success)
	}

	// numeric-tier alias and display label both hit the same filter
	for _, token := range []string{"S0", "严重", "critical"} {
		resp := it.ListIncidents(ListIncidentsRequest{Severity: token})
		require.True(t, resp.Success)
		items, ok := resp.Data.([]IncidentSummary)
		require.True(t, ok)
		assert.Len(t, items, 1, "token %q", token)
	}

	resp := it.ListIncidents(ListIncidentsRequest{Severity: "urgent"})
	assert.False(t, resp.Success)
}

func TestUpdateStatusAndStats(t *testing.T) {
	_, it := newIncidentTools()

	created := it.CreateIncident(CreateIncidentRequest{Title: "a", Severity: "HIGH"})
	require.True(t, created.Success)
	id := created.Data.(IncidentSummary).ID

	resp := it.UpdateIncidentStatus(UpdateStatusRequest{IncidentID: id, Status: "已解决", Actor: "bob"})
	require.True(t, resp.Success)
	assert.Equal(t, domain.StatusResolved, resp.Data.(IncidentSummary).Status)

	other := it.CreateIncident(CreateIncidentRequest{Title: "b", Severity: "LOW"})
	require.True(t, other.Success)

	stats := it.Stats()
	require.True(t, stats.Success)
	data := stats.Data.(IncidentStats)
	assert.Equal(t, 2, data.Total)
	assert.Equal(t, 1, data.ByStatus["已解决"])
	assert.Equal(t, 1, data.ByStatus["未处理"])
	assert.Equal(t, 1, data.BySeverity["高"])
	assert.Equal(t, 0, data.SLABreached)
}

func TestResponse_EnvelopeJSON(t *testing.T) {
	success := Success(map[string]string{"k": "v"})
	raw, err := json.Marshal(success)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.NotContains(t, decoded, "message")
	assert.NotContains(t, decoded, "table")

	// timestamp is an RFC 3339 UTC instant
	ts, err := time.Parse(time.RFC3339Nano, decoded["timestamp"].(string))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())

	failure := Error("boom")
	raw, err = json.Marshal(failure)
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "boom", decoded["message"])
	assert.NotContains(t, decoded, "data")

	assert.Equal(t, "unknown error", Error("").Message)
}

func TestAddNote_ReturnsDetailWithTimeline(t *testing.T) {
	_, it := newIncidentTools()

	created := it.CreateIncident(CreateIncidentRequest{Title: "a", Severity: "MEDIUM", CreatedBy: "alice"})
	require.True(t, created.Success)
	id := created.Data.(IncidentSummary).ID

	resp := it.AddIncidentNote(AddNoteRequest{IncidentID: id, Note: "checking", Actor: "bob"})
	require.True(t, resp.Success)

	detail, ok := resp.Data.(IncidentDetail)
	require.True(t, ok)
	assert.Equal(t, "alice", detail.CreatedBy)
	require.Len(t, detail.Timeline, 2)
	assert.Equal(t, domain.EventTypeNote, detail.Timeline[1].Type)
}

func TestUpdateSLA_ClampAndClear(t *testing.T) {
	_, it := newIncidentTools()

	created := it.CreateIncident(CreateIncidentRequest{Title: "a", Severity: "LOW"})
	require.True(t, created.Success)
	id := created.Data.(IncidentSummary).ID

	// non-positive minutes clamp to one minute
	resp := it.UpdateIncidentSLA(UpdateSLARequest{IncidentID: id, SLAMinutes: intPtr(0), Actor: "bob"})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data.(IncidentSummary).DueAt)

	// absent minutes clear the due time
	resp = it.UpdateIncidentSLA(UpdateSLARequest{IncidentID: id, Actor: "bob"})
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data.(IncidentSummary).DueAt)
}
