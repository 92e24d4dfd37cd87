// Package scheduler runs the periodic auto-approve pass over pending reviews.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adorzia/atelier/internal/adapters/repository"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/pkg/logger"
	"github.com/adorzia/atelier/pkg/metrics"
)

const (
	defaultSchedule  = "@every 5m"
	defaultBatchSize = 100
	autoApproveActor = "auto-approve"
	autoApproveNotes = "approved automatically after the review window elapsed"
)

// ProjectStore is the part of the repository the approver needs.
type ProjectStore interface {
	ListDueForAutoApprove(ctx context.Context, now time.Time, limit int) ([]publication.Record, error)
	TransitionStatus(ctx context.Context, t repository.Transition) (publication.Record, error)
}

// SweepResult summarizes one pass.
type SweepResult struct {
	Examined int `json:"examined"`
	Approved int `json:"approved"`
	Skipped  int `json:"skipped"`
}

// AutoApprover moves pending reviews past their deadline to approved. A
// project that already left pending_review is skipped, so overlapping or
// repeated sweeps never apply a transition twice.
type AutoApprover struct {
	store     ProjectStore
	machine   *publication.Machine
	schedule  string
	batchSize int
	now       func() time.Time
	logger    logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewAutoApprover creates an approver. Call Start to run it on its schedule
// or Sweep for a single pass.
func NewAutoApprover(store ProjectStore, machine *publication.Machine, opts ...Option) *AutoApprover {
	a := &AutoApprover{
		store:     store,
		machine:   machine,
		schedule:  defaultSchedule,
		batchSize: defaultBatchSize,
		now:       time.Now,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("auto-approve")
	return a
}

// Start registers the sweep with cron and starts it. ctx bounds every sweep.
func (a *AutoApprover) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return errors.New("auto-approver already started")
	}

	cl := cronLogger{ctx: ctx, log: a.logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(a.schedule, func() {
		if _, err := a.Sweep(ctx); err != nil {
			a.logger.Error(ctx, "auto-approve sweep failed", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid auto-approve schedule %q: %w", a.schedule, err)
	}
	c.Start()
	a.cron = c

	a.logger.Info(ctx, "auto-approver started", logger.String("schedule", a.schedule))
	return nil
}

// Shutdown stops scheduling and waits for a running sweep to finish.
func (a *AutoApprover) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		a.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Sweep approves every due project once.
func (a *AutoApprover) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordAutoApproveSweep(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var (
		res  SweepResult
		errs []error
	)
	now := a.now()
	for {
		due, err := a.store.ListDueForAutoApprove(ctx, now, a.batchSize)
		if err != nil {
			return res, fmt.Errorf("list due projects: %w", err)
		}

		progressed := 0
		for _, rec := range due {
			res.Examined++
			if !a.machine.ShouldAutoApprove(rec, now) {
				res.Skipped++
				continue
			}
			ok, err := a.approve(ctx, rec)
			switch {
			case err != nil:
				errs = append(errs, err)
			case ok:
				res.Approved++
				progressed++
			default:
				res.Skipped++
			}
		}

		// A short batch was the last one; a batch that moved nothing would
		// come back unchanged.
		if len(due) < a.batchSize || progressed == 0 {
			break
		}
	}

	if res.Approved > 0 {
		a.logger.Info(ctx, "auto-approve sweep finished",
			logger.Int("examined", res.Examined),
			logger.Int("approved", res.Approved),
			logger.Int("skipped", res.Skipped),
			logger.Duration("took", time.Since(start)),
		)
	}
	return res, errors.Join(errs...)
}

func (a *AutoApprover) approve(ctx context.Context, rec publication.Record) (bool, error) {
	_, err := a.store.TransitionStatus(ctx, repository.Transition{
		ProjectID: rec.ProjectID,
		Expected:  publication.PendingReview,
		To:        publication.Approved,
		Notes:     autoApproveNotes,
		Actor:     autoApproveActor,
	})
	if errors.Is(err, repository.ErrStaleStatus) {
		metrics.RecordTransitionRejected("stale")
		a.logger.Debug(ctx, "project left review before auto-approve",
			logger.String("project_id", rec.ProjectID))
		return false, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("scheduler", "transition_error")
		return false, fmt.Errorf("auto-approve %s: %w", rec.ProjectID, err)
	}

	metrics.RecordAutoApproval()
	metrics.RecordStatusTransition(string(publication.PendingReview), string(publication.Approved))
	deadline, _ := a.machine.AutoApproveDeadline(rec)
	a.logger.Info(ctx, "project auto-approved",
		logger.String("project_id", rec.ProjectID),
		logger.Time("deadline", deadline),
	)
	return true, nil
}

// cronLogger routes cron's own logging through ours.
type cronLogger struct {
	ctx context.Context
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(l.ctx, msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(l.ctx, msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
