// Package service wires the progression, commission and publication rules to
// persistence and exposes them to the HTTP API and CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adorzia/atelier/internal/adapters/repository"
	"github.com/adorzia/atelier/internal/adapters/scheduler"
	"github.com/adorzia/atelier/internal/domain/commission"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/rank"
	"github.com/adorzia/atelier/internal/domain/scoring"
	"github.com/adorzia/atelier/pkg/logger"
	"github.com/adorzia/atelier/pkg/metrics"
)

// Service implements the API dependencies for the progression system.
type Service struct {
	mu sync.RWMutex

	// Business tables, built once and shared read-only.
	ledger  *rank.Ledger
	engine  *scoring.Engine
	calc    *commission.Calculator
	machine *publication.Machine

	// Collaborators
	store    repository.Store
	ownStore bool
	approver *scheduler.AutoApprover

	// Configuration
	databasePath        string
	autoApproveEnabled  bool
	autoApproveSchedule string
	maxLeaderboardLimit int
	now                 func() time.Time

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabasePath sets the SQLite file opened on Start.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithStore injects an already-open store. The service will not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAutoApprove enables the background approver on the given cron spec.
func WithAutoApprove(enabled bool, schedule string) Option {
	return func(s *Service) {
		s.autoApproveEnabled = enabled
		if schedule != "" {
			s.autoApproveSchedule = schedule
		}
	}
}

// WithMaxLeaderboardLimit caps TopDesigners.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	ledger := rank.NewLedger()
	s := &Service{
		ledger:              ledger,
		engine:              scoring.NewEngine(),
		calc:                commission.NewCalculator(ledger),
		machine:             publication.NewMachine(),
		databasePath:        "atelier.db",
		autoApproveSchedule: "@every 5m",
		maxLeaderboardLimit: 100,
		now:                 time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and starts the auto-approver when enabled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting atelier service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.databasePath, s.ledger, s.machine,
			repository.WithLogger(s.logger.Named("repository")),
			repository.WithClock(s.now),
		)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.ownStore = true
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.databasePath))
	}

	s.approver = scheduler.NewAutoApprover(s.store, s.machine,
		scheduler.WithSchedule(s.autoApproveSchedule),
		scheduler.WithLogger(s.logger),
		scheduler.WithClock(s.now),
	)
	if s.autoApproveEnabled {
		if err := s.approver.Start(ctx); err != nil {
			s.closeStore()
			return err
		}
	}

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "atelier service started",
		logger.Bool("autoApprove", s.autoApproveEnabled),
		logger.String("schedule", s.autoApproveSchedule),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping atelier service...")

	if s.approver != nil {
		if err := s.approver.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "auto-approver shutdown", logger.Error(err))
		}
	}
	s.closeStore()

	s.started = false
	s.logger.Info(ctx, "atelier service stopped")
}

func (s *Service) closeStore() {
	if s.ownStore && s.store != nil {
		_ = s.store.Close()
		s.store = nil
		s.ownStore = false
	}
}

func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Ledger exposes the shared rank table.
func (s *Service) Ledger() *rank.Ledger { return s.ledger }

// Engine exposes the shared scoring engine.
func (s *Service) Engine() *scoring.Engine { return s.engine }

// Machine exposes the shared publication machine.
func (s *Service) Machine() *publication.Machine { return s.machine }

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// SweepAutoApprove runs one auto-approve pass now.
func (s *Service) SweepAutoApprove(ctx context.Context) (scheduler.SweepResult, error) {
	if _, err := s.ready(); err != nil {
		return scheduler.SweepResult{}, err
	}
	return s.approver.Sweep(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started, startedAt, store := s.started, s.startedAt, s.store
	s.mu.RUnlock()

	stats := map[string]any{
		"started":     started,
		"autoApprove": s.autoApproveEnabled,
	}
	if !started || store == nil {
		return stats
	}

	stats["uptimeSeconds"] = int64(s.now().Sub(startedAt).Seconds())
	st, err := store.Stats(ctx)
	if err != nil {
		s.logger.Warn(ctx, "stats unavailable", logger.Error(err))
		stats["error"] = err.Error()
		return stats
	}
	stats["designers"] = st.Designers
	stats["founders"] = st.Founders
	stats["projects"] = st.Projects
	stats["sales"] = st.Sales
	stats["totalProfit"] = st.TotalProfit
	stats["designerPayouts"] = st.DesignerPayouts
	stats["platformPayouts"] = st.PlatformPayouts
	stats["styleCreditsAwarded"] = st.StyleCreditsAwarded

	metrics.UpdateTotalDesigners(st.Designers)
	return stats
}
