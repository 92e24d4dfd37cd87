package api

import (
	"net/http"

	service "github.com/adorzia/atelier/internal/app"
)

// RankDependencies exposes the rank table.
type RankDependencies interface {
	Ranks() service.RankTable
}

// RankHandler handles rank table requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRanks handles GET /ranks.
func (h *RankHandler) HandleGetRanks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Ranks())
}
