// Package repository persists designer progression, sales and publication
// status. All money-moving and status-changing writes are transactional.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adorzia/atelier/internal/domain/commission"
	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/rank"
)

// Source is where a style credit award came from.
type Source string

const (
	SourceStylebox    Source = "stylebox"
	SourcePublication Source = "publication"
	SourceSale        Source = "sale"
)

// ParseSource validates an external award source.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SourceStylebox, SourcePublication, SourceSale:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown source %q", ErrInvalidAward, raw)
}

// Designer is one consistent read of a designer's progression.
type Designer struct {
	ID                 string           `json:"designer_id"`
	SCTotal            float64          `json:"sc_total"`
	StyleCredits       int64            `json:"style_credits"`
	Founder            *rank.Definition `json:"-"`
	FounderPurchasedAt *time.Time       `json:"founder_purchased_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Standing is the snapshot the commission calculator works from.
func (d Designer) Standing() commission.Standing {
	return commission.Standing{StyleCredits: d.StyleCredits, Founder: d.Founder}
}

// MaxAwardAmount bounds a single ledger entry, in SC.
const MaxAwardAmount = 1e9

// Award is one append-only SC ledger entry. EntryID makes it idempotent; a
// random id is generated when it is empty.
type Award struct {
	EntryID    string
	DesignerID string
	Source     Source
	Amount     float64
	Reference  string
}

// AwardResult reports whether the entry was new and the designer afterwards.
type AwardResult struct {
	EntryID  string
	Applied  bool
	Designer Designer
}

// SaleFunc computes a sale's split from the designer's locked snapshot.
type SaleFunc func(Designer) (commission.Result, error)

// SaleRecord is a persisted sale with its earnings row.
type SaleRecord struct {
	SaleID     string
	EarningID  string
	RecordedAt time.Time
	Result     commission.Result
}

// Transition asks for a project to move to To. A non-empty Expected must match
// the current status or the write is refused as stale.
type Transition struct {
	ProjectID string
	Expected  publication.Status
	To        publication.Status
	Notes     string
	Actor     string
}

// HistoryEntry is one row of the status audit trail.
type HistoryEntry struct {
	ProjectID string             `json:"project_id"`
	From      publication.Status `json:"from"`
	To        publication.Status `json:"to"`
	Actor     string             `json:"actor,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	ChangedAt time.Time          `json:"changed_at"`
}

// Stats summarizes the stored state.
type Stats struct {
	Designers           int                        `json:"designers"`
	Founders            map[rank.Key]int           `json:"founders"`
	Projects            map[publication.Status]int `json:"projects"`
	Sales               int                        `json:"sales"`
	TotalProfit         float64                    `json:"total_profit"`
	DesignerPayouts     float64                    `json:"designer_payouts"`
	PlatformPayouts     float64                    `json:"platform_payouts"`
	StyleCreditsAwarded float64                    `json:"style_credits_awarded"`
}

// DesignerStore provides access to designer progression and sales.
type DesignerStore interface {
	// GetDesigner returns ErrNotFound for unknown designers.
	GetDesigner(ctx context.Context, designerID string) (Designer, error)
	// AwardCredits appends one ledger entry; a repeated EntryID is a no-op.
	AwardCredits(ctx context.Context, a Award) (AwardResult, error)
	// RecordSale runs calc against a locked snapshot and stores the sale and
	// its earnings together, or neither.
	RecordSale(ctx context.Context, designerID, productID string, calc SaleFunc) (SaleRecord, error)
	// PurchaseFounder grants a founder tier once, within its slot cap.
	PurchaseFounder(ctx context.Context, designerID string, tier rank.Key) (Designer, error)
	// TopDesigners returns the top-N designers by SC.
	TopDesigners(ctx context.Context, limit int) ([]Designer, error)
	// CountDesigners returns the number of designers.
	CountDesigners(ctx context.Context) (int, error)
}

// ProjectStore provides access to publication status records.
type ProjectStore interface {
	CreateProject(ctx context.Context, projectID, designerID string) (publication.Record, error)
	GetProject(ctx context.Context, projectID string) (publication.Record, error)
	// TransitionStatus applies t with an optimistic status check.
	TransitionStatus(ctx context.Context, t Transition) (publication.Record, error)
	// ListDueForAutoApprove returns pending reviews whose deadline is at or before now.
	ListDueForAutoApprove(ctx context.Context, now time.Time, limit int) ([]publication.Record, error)
	StatusHistory(ctx context.Context, projectID string) ([]HistoryEntry, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	DesignerStore
	ProjectStore
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
