package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adorzia/atelier/internal/domain/scoring"
)

type styleboxRequest struct {
	EntryID    string                   `json:"entry_id"`
	Difficulty string                   `json:"difficulty"`
	Scores     scoring.EvaluationScores `json:"evaluation_scores"`
	Timeliness string                   `json:"timeliness"`
}

func (s styleboxRequest) input() (scoring.StyleboxInput, error) {
	d, err := scoring.ParseDifficulty(s.Difficulty)
	if err != nil {
		return scoring.StyleboxInput{}, err
	}
	t, err := scoring.ParseTimeliness(s.Timeliness)
	if err != nil {
		return scoring.StyleboxInput{}, err
	}
	return scoring.StyleboxInput{Difficulty: d, Scores: s.Scores, Timeliness: t}, nil
}

type creditRequest struct {
	EntryID   string  `json:"entry_id"`
	Source    string  `json:"source"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
}

type founderRequest struct {
	Tier string `json:"tier"`
}

// DesignerHandler handles designer progression requests.
type DesignerHandler struct {
	deps DesignerDependencies
}

// NewDesignerHandler creates a new designer handler.
func NewDesignerHandler(deps DesignerDependencies) *DesignerHandler {
	return &DesignerHandler{deps: deps}
}

// HandlePreviewStylebox handles POST /styleboxes/score.
func (h *DesignerHandler) HandlePreviewStylebox(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview_stylebox"
	var req styleboxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	b, err := h.deps.PreviewStylebox(in)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleScoreStylebox handles POST /designers/{id}/styleboxes. A replayed
// entry_id is acknowledged without a second award.
func (h *DesignerHandler) HandleScoreStylebox(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_stylebox"
	var req styleboxRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	award, err := h.deps.ScoreStylebox(r.Context(), chi.URLParam(r, "id"), req.EntryID, in)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if !award.Applied {
		status = http.StatusOK
	}
	writeJSON(w, status, award)
}

// HandleAwardCredits handles POST /designers/{id}/credits.
func (h *DesignerHandler) HandleAwardCredits(w http.ResponseWriter, r *http.Request) {
	const op = "api.award_credits"
	var req creditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	award, err := h.deps.AwardCredits(r.Context(), chi.URLParam(r, "id"), req.EntryID, req.Source, req.Amount, req.Reference)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if !award.Applied {
		status = http.StatusOK
	}
	writeJSON(w, status, award)
}

// HandleGetDesigner handles GET /designers/{id}.
func (h *DesignerHandler) HandleGetDesigner(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_designer"
	profile, err := h.deps.DesignerProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandlePurchaseFounder handles POST /designers/{id}/founder.
func (h *DesignerHandler) HandlePurchaseFounder(w http.ResponseWriter, r *http.Request) {
	const op = "api.purchase_founder"
	var req founderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	profile, err := h.deps.PurchaseFounder(r.Context(), chi.URLParam(r, "id"), req.Tier)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
