package api

import (
	"net/http"

	service "github.com/adorzia/atelier/internal/app"
)

// TeamHandler handles team challenge requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleProgress handles POST /teams/progress.
func (h *TeamHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_progress"
	var st service.TeamState
	if err := decodeJSON(r, &st); err != nil {
		writeFailure(w, err)
		return
	}
	out, err := h.deps.TeamProgress(st)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
