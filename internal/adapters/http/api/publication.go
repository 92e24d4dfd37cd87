package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adorzia/atelier/internal/adapters/repository"
	service "github.com/adorzia/atelier/internal/app"
)

type createProjectRequest struct {
	ProjectID  string `json:"project_id"`
	DesignerID string `json:"designer_id"`
}

// PublicationHandler handles project status requests.
type PublicationHandler struct {
	deps PublicationDependencies
}

// NewPublicationHandler creates a new publication handler.
func NewPublicationHandler(deps PublicationDependencies) *PublicationHandler {
	return &PublicationHandler{deps: deps}
}

// HandleListStatuses handles GET /publication/statuses.
func (h *PublicationHandler) HandleListStatuses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.PublicationStatuses())
}

// HandleCreateProject handles POST /projects.
func (h *PublicationHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_project"
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	ps, err := h.deps.CreateProject(r.Context(), req.ProjectID, req.DesignerID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, ps)
}

// HandleGetStatus handles GET /projects/{id}/status.
func (h *PublicationHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_project_status"
	ps, err := h.deps.ProjectStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleChangeStatus handles POST /projects/{id}/status. Refused moves
// answer 409.
func (h *PublicationHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.change_project_status"
	var req service.StatusChange
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	ps, err := h.deps.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// HandleHistory handles GET /projects/{id}/history.
func (h *PublicationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.project_history"
	id := chi.URLParam(r, "id")
	if _, err := h.deps.ProjectStatus(r.Context(), id); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	hist, err := h.deps.StatusHistory(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if hist == nil {
		hist = []repository.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, hist)
}
