package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/pkg/logger"
)

const projectColumns = `id, designer_id, status, submitted_at, reviewed_at, reviewer_notes, updated_at`

func scanProject(row rowScanner) (publication.Record, error) {
	var (
		rec       publication.Record
		status    string
		submitted sql.NullInt64
		reviewed  sql.NullInt64
		updated   int64
	)
	if err := row.Scan(&rec.ProjectID, &rec.DesignerID, &status, &submitted, &reviewed, &rec.ReviewerNotes, &updated); err != nil {
		return publication.Record{}, err
	}
	s, err := publication.ParseStatus(status)
	if err != nil {
		return publication.Record{}, fmt.Errorf("project %s: %w", rec.ProjectID, err)
	}
	rec.Status = s
	rec.SubmittedAt = fromNullNanos(submitted)
	rec.ReviewedAt = fromNullNanos(reviewed)
	rec.UpdatedAt = fromNanos(updated)
	return rec, nil
}

func readProject(ctx context.Context, q queryer, projectID string) (publication.Record, error) {
	rec, err := scanProject(q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return publication.Record{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return publication.Record{}, fmt.Errorf("read project %s: %w", projectID, err)
	}
	return rec, nil
}

// CreateProject starts a project in draft. An empty projectID gets a random id.
func (s *SQLiteStore) CreateProject(ctx context.Context, projectID, designerID string) (publication.Record, error) {
	if strings.TrimSpace(projectID) == "" {
		projectID = uuid.NewString()
	}
	rec := publication.Record{
		ProjectID:  projectID,
		DesignerID: designerID,
		Status:     publication.Draft,
		UpdatedAt:  s.now().UTC(),
	}

	err := s.withTx(ctx, "create_project", func(tx *sql.Tx) error {
		r, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, designer_id, status, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			rec.ProjectID, rec.DesignerID, string(rec.Status), rec.UpdatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		if n, err := r.RowsAffected(); err != nil {
			return fmt.Errorf("insert project: %w", err)
		} else if n == 0 {
			return fmt.Errorf("project %s: %w", rec.ProjectID, ErrAlreadyExists)
		}
		return nil
	})
	if err != nil {
		return publication.Record{}, err
	}
	return rec, nil
}

// GetProject returns the project's publication record.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (publication.Record, error) {
	return readProject(ctx, s.db, projectID)
}

// TransitionStatus moves a project along the status graph. The graph is
// consulted again inside the transaction and the UPDATE only matches while
// the row still holds the status the transition was computed from.
func (s *SQLiteStore) TransitionStatus(ctx context.Context, t Transition) (publication.Record, error) {
	var next publication.Record
	err := s.withTx(ctx, "transition_status", func(tx *sql.Tx) error {
		cur, err := readProject(ctx, tx, t.ProjectID)
		if err != nil {
			return err
		}
		if t.Expected != "" && cur.Status != t.Expected {
			return fmt.Errorf("%w: project %s is %s, expected %s", ErrStaleStatus, t.ProjectID, cur.Status, t.Expected)
		}

		next, err = s.machine.Apply(cur, t.To, s.now(), t.Notes)
		if err != nil {
			return err
		}

		r, err := tx.ExecContext(ctx,
			`UPDATE projects SET status = ?, submitted_at = ?, reviewed_at = ?, reviewer_notes = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			string(next.Status), toNullNanos(next.SubmittedAt), toNullNanos(next.ReviewedAt), next.ReviewerNotes,
			next.UpdatedAt.UnixNano(), t.ProjectID, string(cur.Status))
		if err != nil {
			return fmt.Errorf("update project status: %w", err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return fmt.Errorf("update project status: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: project %s left %s", ErrStaleStatus, t.ProjectID, cur.Status)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO status_history (project_id, from_status, to_status, actor, notes, changed_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ProjectID, string(cur.Status), string(next.Status), t.Actor, t.Notes, next.UpdatedAt.UnixNano()); err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return publication.Record{}, err
	}

	s.log.Debug(ctx, "publication status changed",
		logger.String("project_id", t.ProjectID),
		logger.String("to", string(next.Status)),
		logger.String("actor", t.Actor),
	)
	return next, nil
}

// ListDueForAutoApprove returns up to limit pending reviews submitted at
// least the auto-approve window before now, oldest first.
func (s *SQLiteStore) ListDueForAutoApprove(ctx context.Context, now time.Time, limit int) ([]publication.Record, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	cutoff := now.Add(-publication.AutoApproveAfter).UTC().UnixNano()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE status = ? AND submitted_at IS NOT NULL AND submitted_at <= ?
		 ORDER BY submitted_at ASC, id ASC LIMIT ?`,
		string(publication.PendingReview), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list due projects: %w", err)
	}
	defer rows.Close()

	var out []publication.Record
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list due projects: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// StatusHistory returns the project's applied transitions, oldest first.
func (s *SQLiteStore) StatusHistory(ctx context.Context, projectID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, from_status, to_status, actor, notes, changed_at
		 FROM status_history WHERE project_id = ? ORDER BY id ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			h        HistoryEntry
			from, to string
			changed  int64
		)
		if err := rows.Scan(&h.ProjectID, &from, &to, &h.Actor, &h.Notes, &changed); err != nil {
			return nil, fmt.Errorf("status history: %w", err)
		}
		h.From = publication.Status(from)
		h.To = publication.Status(to)
		h.ChangedAt = fromNanos(changed)
		out = append(out, h)
	}
	return out, rows.Err()
}
