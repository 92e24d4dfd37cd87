// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/adorzia/atelier/internal/adapters/repository"
	service "github.com/adorzia/atelier/internal/app"
	"github.com/adorzia/atelier/internal/domain/commission"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/scoring"
)

const requestTimeout = 30 * time.Second

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CommissionDependencies
	DesignerDependencies
	LeaderboardDependencies
	RankDependencies
	PublicationDependencies
	TeamDependencies
	StatsProvider
}

// CommissionDependencies records sales.
type CommissionDependencies interface {
	CalculateCommission(ctx context.Context, req commission.Request) (service.Sale, error)
}

// DesignerDependencies covers designer progression.
type DesignerDependencies interface {
	PreviewStylebox(in scoring.StyleboxInput) (scoring.Breakdown, error)
	ScoreStylebox(ctx context.Context, designerID, entryID string, in scoring.StyleboxInput) (service.StyleboxAward, error)
	AwardCredits(ctx context.Context, designerID, entryID, source string, amount float64, reference string) (service.CreditAward, error)
	DesignerProfile(ctx context.Context, designerID string) (service.DesignerProfile, error)
	PurchaseFounder(ctx context.Context, designerID, tier string) (service.DesignerProfile, error)
}

// PublicationDependencies covers project status.
type PublicationDependencies interface {
	PublicationStatuses() []publication.StatusInfo
	CreateProject(ctx context.Context, projectID, designerID string) (service.ProjectStatus, error)
	ProjectStatus(ctx context.Context, projectID string) (service.ProjectStatus, error)
	ChangeStatus(ctx context.Context, projectID string, ch service.StatusChange) (service.ProjectStatus, error)
	StatusHistory(ctx context.Context, projectID string) ([]repository.HistoryEntry, error)
}

// TeamDependencies evaluates team attempts.
type TeamDependencies interface {
	TeamProgress(st service.TeamState) (service.TeamProgress, error)
}

// Config holds the HTTP-level knobs.
type Config struct {
	MaxLeaderboardLimit  int
	CommissionRatePerSec float64
	CommissionBurst      int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	commissionHandler  *CommissionHandler
	designerHandler    *DesignerHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	publicationHandler *PublicationHandler
	teamHandler        *TeamHandler
	commissionLimiter  *IPRateLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, cfg Config) *Server {
	if cfg.MaxLeaderboardLimit < 1 {
		cfg.MaxLeaderboardLimit = 100
	}
	if cfg.CommissionRatePerSec <= 0 {
		cfg.CommissionRatePerSec = 50
	}
	if cfg.CommissionBurst < 1 {
		cfg.CommissionBurst = 100
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		commissionHandler:  NewCommissionHandler(deps),
		designerHandler:    NewDesignerHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.MaxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		publicationHandler: NewPublicationHandler(deps),
		teamHandler:        NewTeamHandler(deps),
		commissionLimiter:  NewIPRateLimiter(rate.Limit(cfg.CommissionRatePerSec), cfg.CommissionBurst),
	}
}

// Handler returns the chi router with all routes mounted. Callers may add
// more routes to it.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.With(RateLimitMiddleware(s.commissionLimiter)).
		Post("/commission", MetricsMiddleware(s.commissionHandler.HandleCalculate, "commission"))

	r.Post("/styleboxes/score", MetricsMiddleware(s.designerHandler.HandlePreviewStylebox, "stylebox_preview"))
	r.Get("/ranks", MetricsMiddleware(s.rankHandler.HandleGetRanks, "ranks"))

	r.Route("/designers", func(r chi.Router) {
		r.Get("/top", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "designers_top"))
		r.Get("/{id}", MetricsMiddleware(s.designerHandler.HandleGetDesigner, "designer"))
		r.Post("/{id}/styleboxes", MetricsMiddleware(s.designerHandler.HandleScoreStylebox, "designer_stylebox"))
		r.Post("/{id}/credits", MetricsMiddleware(s.designerHandler.HandleAwardCredits, "designer_credits"))
		r.Post("/{id}/founder", MetricsMiddleware(s.designerHandler.HandlePurchaseFounder, "designer_founder"))
	})

	r.Get("/publication/statuses", MetricsMiddleware(s.publicationHandler.HandleListStatuses, "publication_statuses"))
	r.Route("/projects", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.publicationHandler.HandleCreateProject, "project_create"))
		r.Get("/{id}/status", MetricsMiddleware(s.publicationHandler.HandleGetStatus, "project_status"))
		r.Post("/{id}/status", MetricsMiddleware(s.publicationHandler.HandleChangeStatus, "project_status_change"))
		r.Get("/{id}/history", MetricsMiddleware(s.publicationHandler.HandleHistory, "project_history"))
	})

	r.Post("/teams/progress", MetricsMiddleware(s.teamHandler.HandleProgress, "team_progress"))
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = publicMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code, public := classify(err)
	if public != nil {
		err = public
	}
	writeError(w, status, code, err)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind("api.decode", ErrBadRequest, err)
	}
	return nil
}
