package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bissquit/incident-forge/internal/pkg/ctxlog"
	"github.com/bissquit/incident-forge/internal/pkg/httputil"
	"github.com/bissquit/incident-forge/internal/tools"
	"github.com/bissquit/incident-forge/internal/version"
	"github.com/go-chi/chi/v5"
)

// toolHandler is the thin HTTP glue over the operation surface. Every
// operation answers 200 with the tool envelope carrying success or failure,
// matching the tool-call contract.
type toolHandler struct {
	incidents *tools.IncidentTools
	workflow  *tools.WorkflowTools
	runbooks  *tools.RunbookTools
}

func newToolHandler(incidents *tools.IncidentTools, workflow *tools.WorkflowTools, runbooks *tools.RunbookTools) *toolHandler {
	return &toolHandler{
		incidents: incidents,
		workflow:  workflow,
		runbooks:  runbooks,
	}
}

// RegisterRoutes registers all tool routes.
func (h *toolHandler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Post("/", h.createIncident)
		r.Get("/", h.listIncidents)
		r.Get("/stats", h.incidentStats)
		r.Get("/{id}", h.getIncident)
		r.Post("/{id}/assign", h.assignIncident)
		r.Post("/{id}/status", h.updateIncidentStatus)
		r.Post("/{id}/notes", h.addIncidentNote)
		r.Post("/{id}/sla", h.updateIncidentSLA)
	})

	r.Route("/workflow", func(r chi.Router) {
		r.Post("/follow-ups", h.scheduleFollowUp)
		r.Delete("/follow-ups/{id}", h.cancelFollowUp)
		r.Post("/bulk-status", h.bulkUpdateStatus)
		r.Get("/mitigation/{id}", h.planMitigation)
		r.Get("/correlate", h.correlateIncidents)
	})

	r.Route("/runbooks", func(r chi.Router) {
		r.Get("/", h.listRunbooks)
		r.Get("/search", h.searchRunbooks)
		r.Get("/recommend/{incidentID}", h.recommendRunbooks)
		r.Get("/{id}", h.getRunbook)
	})
}

func (h *toolHandler) createIncident(w http.ResponseWriter, r *http.Request) {
	var req tools.CreateIncidentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	respond(w, r, h.incidents.CreateIncident(req))
}

func (h *toolHandler) getIncident(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.incidents.GetIncident(chi.URLParam(r, "id")))
}

func (h *toolHandler) listIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := tools.ListIncidentsRequest{
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Assignee: q.Get("assignee"),
		Tag:      q.Get("tag"),
		Limit:    queryInt(q.Get("limit")),
	}
	respond(w, r, h.incidents.ListIncidents(req))
}

func (h *toolHandler) incidentStats(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.incidents.Stats())
}

func (h *toolHandler) assignIncident(w http.ResponseWriter, r *http.Request) {
	var req tools.AssignIncidentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IncidentID = chi.URLParam(r, "id")
	respond(w, r, h.incidents.AssignIncident(req))
}

func (h *toolHandler) updateIncidentStatus(w http.ResponseWriter, r *http.Request) {
	var req tools.UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IncidentID = chi.URLParam(r, "id")
	respond(w, r, h.incidents.UpdateIncidentStatus(req))
}

func (h *toolHandler) addIncidentNote(w http.ResponseWriter, r *http.Request) {
	var req tools.AddNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IncidentID = chi.URLParam(r, "id")
	respond(w, r, h.incidents.AddIncidentNote(req))
}

func (h *toolHandler) updateIncidentSLA(w http.ResponseWriter, r *http.Request) {
	var req tools.UpdateSLARequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IncidentID = chi.URLParam(r, "id")
	respond(w, r, h.incidents.UpdateIncidentSLA(req))
}

func (h *toolHandler) scheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	var req tools.ScheduleFollowUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	respond(w, r, h.workflow.ScheduleFollowUp(req))
}

func (h *toolHandler) cancelFollowUp(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.workflow.CancelFollowUp(chi.URLParam(r, "id")))
}

func (h *toolHandler) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req tools.BulkUpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	respond(w, r, h.workflow.BulkUpdateStatus(req))
}

func (h *toolHandler) planMitigation(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.workflow.PlanMitigation(chi.URLParam(r, "id")))
}

func (h *toolHandler) correlateIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := tools.CorrelateRequest{
		Keyword: q.Get("keyword"),
		Limit:   queryInt(q.Get("limit")),
	}
	respond(w, r, h.workflow.CorrelateIncidents(req))
}

func (h *toolHandler) listRunbooks(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.runbooks.ListRunbooks(r.URL.Query().Get("tag")))
}

func (h *toolHandler) getRunbook(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.runbooks.GetRunbook(chi.URLParam(r, "id")))
}

func (h *toolHandler) searchRunbooks(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.runbooks.SearchRunbooks(r.URL.Query().Get("keyword")))
}

func (h *toolHandler) recommendRunbooks(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.runbooks.RecommendRunbooks(chi.URLParam(r, "incidentID")))
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "ok")
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_commit": version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func respond(w http.ResponseWriter, r *http.Request, resp tools.Response) {
	if !resp.Success {
		ctxlog.FromContext(r.Context()).Debug("tool call failed", "message", resp.Message)
	}
	httputil.JSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, r, tools.Errorf("invalid request body: %s", err))
		return false
	}
	return true
}

func queryInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
