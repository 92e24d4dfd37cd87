package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adorzia/atelier/internal/adapters/repository"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/pkg/logger"
	"github.com/adorzia/atelier/pkg/metrics"
)

// ProjectStatus is a project's record with its display metadata.
type ProjectStatus struct {
	publication.Record
	Info           publication.StatusInfo `json:"info"`
	StageProgress  float64                `json:"stage_progress"`
	Successors     []publication.Status   `json:"successors"`
	AutoApproveAt  *time.Time             `json:"auto_approve_at,omitempty"`
	AutoApproveDue bool                   `json:"auto_approve_due"`
}

// StatusChange requests a move to Status, or to the target of Action when
// Action is set. Expected defaults to the status currently stored.
type StatusChange struct {
	Expected string `json:"expected_status,omitempty"`
	Status   string `json:"status,omitempty"`
	Action   string `json:"action,omitempty"`
	Notes    string `json:"reviewer_notes,omitempty"`
	Actor    string `json:"actor,omitempty"`
}

// PublicationStatuses returns the status table in display order.
func (s *Service) PublicationStatuses() []publication.StatusInfo {
	return s.machine.Statuses()
}

func (s *Service) projectStatus(rec publication.Record) ProjectStatus {
	info, _ := s.machine.Info(rec.Status)
	ps := ProjectStatus{
		Record:        rec,
		Info:          info,
		StageProgress: s.machine.StageProgress(rec.Status),
		Successors:    s.machine.Successors(rec.Status),
	}
	if deadline, ok := s.machine.AutoApproveDeadline(rec); ok {
		ps.AutoApproveAt = &deadline
		ps.AutoApproveDue = s.machine.ShouldAutoApprove(rec, s.now())
	}
	return ps
}

// CreateProject starts a project in draft.
func (s *Service) CreateProject(ctx context.Context, projectID, designerID string) (ProjectStatus, error) {
	store, err := s.ready()
	if err != nil {
		return ProjectStatus{}, err
	}
	rec, err := store.CreateProject(ctx, projectID, designerID)
	if err != nil {
		return ProjectStatus{}, err
	}
	return s.projectStatus(rec), nil
}

// ProjectStatus loads a project's current status.
func (s *Service) ProjectStatus(ctx context.Context, projectID string) (ProjectStatus, error) {
	store, err := s.ready()
	if err != nil {
		return ProjectStatus{}, err
	}
	rec, err := store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectStatus{}, err
	}
	return s.projectStatus(rec), nil
}

// ChangeStatus applies a status change. Moves the graph does not allow
// return publication.ErrIllegalTransition or publication.ErrIllegalAction;
// a project that moved since Expected was read returns repository.ErrStaleStatus.
func (s *Service) ChangeStatus(ctx context.Context, projectID string, ch StatusChange) (ProjectStatus, error) {
	store, err := s.ready()
	if err != nil {
		return ProjectStatus{}, err
	}
	cur, err := store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectStatus{}, err
	}

	from := cur.Status
	if ch.Expected != "" {
		if from, err = publication.ParseStatus(ch.Expected); err != nil {
			return ProjectStatus{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	to, err := s.resolveTarget(from, ch)
	if err != nil {
		if errors.Is(err, publication.ErrIllegalAction) && !errors.Is(err, ErrInvalidInput) {
			metrics.RecordTransitionRejected("illegal_action")
		}
		return ProjectStatus{}, err
	}
	if !s.machine.CanTransition(from, to) {
		metrics.RecordTransitionRejected("illegal")
		return ProjectStatus{}, fmt.Errorf("%w: %s -> %s", publication.ErrIllegalTransition, from, to)
	}

	rec, err := store.TransitionStatus(ctx, repository.Transition{
		ProjectID: projectID,
		Expected:  from,
		To:        to,
		Notes:     ch.Notes,
		Actor:     ch.Actor,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			metrics.RecordTransitionRejected("stale")
			s.logger.Warn(ctx, "stale status change refused",
				logger.String("project_id", projectID),
				logger.String("expected", string(from)),
				logger.String("to", string(to)),
			)
		}
		return ProjectStatus{}, err
	}

	metrics.RecordStatusTransition(string(from), string(to))
	return s.projectStatus(rec), nil
}

func (s *Service) resolveTarget(from publication.Status, ch StatusChange) (publication.Status, error) {
	switch {
	case ch.Action != "" && ch.Status != "":
		return "", fmt.Errorf("%w: set either status or action", ErrInvalidInput)
	case ch.Action != "":
		action, err := publication.ParseAction(ch.Action)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return s.machine.ActionTarget(from, action)
	case ch.Status != "":
		to, err := publication.ParseStatus(ch.Status)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return to, nil
	}
	return "", fmt.Errorf("%w: status or action is required", ErrInvalidInput)
}

// StatusHistory returns the project's audit trail, oldest first.
func (s *Service) StatusHistory(ctx context.Context, projectID string) ([]repository.HistoryEntry, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.StatusHistory(ctx, projectID)
}
