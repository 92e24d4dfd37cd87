package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adorzia/atelier/internal/adapters/repository"
	"github.com/adorzia/atelier/internal/domain/commission"
	"github.com/adorzia/atelier/internal/domain/rank"
	"github.com/adorzia/atelier/internal/domain/scoring"
	"github.com/adorzia/atelier/pkg/logger"
	"github.com/adorzia/atelier/pkg/metrics"
)

// RankTable is the full ladder returned by Ranks.
type RankTable struct {
	Standard      []rank.Definition `json:"standard"`
	Founders      []rank.Definition `json:"founders"`
	MaxCommission float64           `json:"max_commission"`
}

// DesignerProfile is a designer's progression with everything derived from it.
type DesignerProfile struct {
	DesignerID          string           `json:"designer_id"`
	SCTotal             float64          `json:"sc_total"`
	StyleCredits        int64            `json:"style_credits"`
	Rank                rank.Definition  `json:"rank"`
	NextRank            *rank.Definition `json:"next_rank,omitempty"`
	Progress            float64          `json:"progress"`
	FounderTier         *rank.Definition `json:"founder_tier,omitempty"`
	FounderPurchasedAt  *time.Time       `json:"founder_purchased_at,omitempty"`
	EffectiveCommission float64          `json:"effective_commission"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// StyleboxAward is the result of grading a submission into the ledger.
type StyleboxAward struct {
	EntryID   string            `json:"entry_id"`
	Applied   bool              `json:"applied"`
	Breakdown scoring.Breakdown `json:"breakdown"`
	Profile   DesignerProfile   `json:"designer"`
}

// CreditAward is the result of appending a publication or sale award.
type CreditAward struct {
	EntryID string          `json:"entry_id"`
	Applied bool            `json:"applied"`
	Profile DesignerProfile `json:"designer"`
}

// Sale is a recorded commission calculation.
type Sale struct {
	SaleID    string            `json:"sale_id"`
	EarningID string            `json:"earning_id"`
	Result    commission.Result `json:"result"`
}

// Ranks returns the rank ladder and founder tiers.
func (s *Service) Ranks() RankTable {
	return RankTable{
		Standard:      s.ledger.Standard(),
		Founders:      s.ledger.Founders(),
		MaxCommission: rank.MaxCommission,
	}
}

// Profile derives the rank view of d.
func (s *Service) Profile(d repository.Designer) DesignerProfile {
	std := s.ledger.ForSC(d.StyleCredits)
	p := DesignerProfile{
		DesignerID:          d.ID,
		SCTotal:             d.SCTotal,
		StyleCredits:        d.StyleCredits,
		Rank:                std,
		Progress:            s.ledger.Progress(std, d.StyleCredits),
		FounderTier:         d.Founder,
		FounderPurchasedAt:  d.FounderPurchasedAt,
		EffectiveCommission: s.ledger.EffectiveCommission(std, d.Founder),
		UpdatedAt:           d.UpdatedAt,
	}
	if next, ok := s.ledger.Next(std); ok {
		p.NextRank = &next
	}
	return p
}

// DesignerProfile loads a designer. Unknown designers return repository.ErrNotFound.
func (s *Service) DesignerProfile(ctx context.Context, designerID string) (DesignerProfile, error) {
	store, err := s.ready()
	if err != nil {
		return DesignerProfile{}, err
	}
	d, err := store.GetDesigner(ctx, designerID)
	if err != nil {
		return DesignerProfile{}, err
	}
	return s.Profile(d), nil
}

// PreviewStylebox scores a submission without recording it.
func (s *Service) PreviewStylebox(in scoring.StyleboxInput) (scoring.Breakdown, error) {
	return s.engine.StyleboxScore(in)
}

// ScoreStylebox grades a submission and appends the score to the designer's
// SC ledger. A repeated entryID is accepted without awarding again.
func (s *Service) ScoreStylebox(ctx context.Context, designerID, entryID string, in scoring.StyleboxInput) (StyleboxAward, error) {
	store, err := s.ready()
	if err != nil {
		return StyleboxAward{}, err
	}
	b, err := s.engine.StyleboxScore(in)
	if err != nil {
		return StyleboxAward{}, err
	}
	metrics.RecordStyleboxScored(string(in.Difficulty))

	res, err := store.AwardCredits(ctx, repository.Award{
		EntryID:    entryID,
		DesignerID: designerID,
		Source:     repository.SourceStylebox,
		Amount:     b.Score,
		Reference:  string(in.Difficulty),
	})
	if err != nil {
		return StyleboxAward{}, err
	}
	s.recordAward(ctx, repository.SourceStylebox, b.Score, res)

	return StyleboxAward{
		EntryID:   res.EntryID,
		Applied:   res.Applied,
		Breakdown: b,
		Profile:   s.Profile(res.Designer),
	}, nil
}

// AwardCredits appends a publication or sale award. Stylebox awards must go
// through ScoreStylebox so the amount is derived from the grade.
func (s *Service) AwardCredits(ctx context.Context, designerID, entryID, source string, amount float64, reference string) (CreditAward, error) {
	store, err := s.ready()
	if err != nil {
		return CreditAward{}, err
	}
	src, err := repository.ParseSource(source)
	if err != nil {
		return CreditAward{}, err
	}
	if src == repository.SourceStylebox {
		return CreditAward{}, fmt.Errorf("%w: stylebox credits are awarded by grading", ErrInvalidInput)
	}

	res, err := store.AwardCredits(ctx, repository.Award{
		EntryID:    entryID,
		DesignerID: designerID,
		Source:     src,
		Amount:     amount,
		Reference:  reference,
	})
	if err != nil {
		return CreditAward{}, err
	}
	s.recordAward(ctx, src, amount, res)

	return CreditAward{EntryID: res.EntryID, Applied: res.Applied, Profile: s.Profile(res.Designer)}, nil
}

func (s *Service) recordAward(ctx context.Context, src repository.Source, amount float64, res repository.AwardResult) {
	if !res.Applied {
		metrics.RecordStyleCreditDuplicate()
		s.logger.Debug(ctx, "duplicate ledger entry ignored",
			logger.String("entry_id", res.EntryID),
			logger.String("designer_id", res.Designer.ID),
		)
		return
	}
	metrics.RecordStyleCreditsAwarded(string(src), amount)
}

// PurchaseFounder grants a founder tier. The tier is permanent.
func (s *Service) PurchaseFounder(ctx context.Context, designerID, tier string) (DesignerProfile, error) {
	store, err := s.ready()
	if err != nil {
		return DesignerProfile{}, err
	}
	if strings.TrimSpace(designerID) == "" {
		return DesignerProfile{}, fmt.Errorf("%w: designer id is required", ErrInvalidInput)
	}
	key, err := rank.ParseKey(tier)
	if err != nil {
		return DesignerProfile{}, err
	}

	d, err := store.PurchaseFounder(ctx, designerID, key)
	if err != nil {
		return DesignerProfile{}, err
	}
	metrics.RecordFounderPurchase(string(key))
	s.logger.Info(ctx, "founder tier purchased",
		logger.String("designer_id", designerID),
		logger.String("tier", string(key)),
	)
	return s.Profile(d), nil
}

// TopDesigners returns up to limit designers by SC. The limit is capped.
func (s *Service) TopDesigners(ctx context.Context, limit int) ([]DesignerProfile, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	if limit > s.maxLeaderboardLimit {
		limit = s.maxLeaderboardLimit
	}
	ds, err := store.TopDesigners(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]DesignerProfile, 0, len(ds))
	for _, d := range ds {
		out = append(out, s.Profile(d))
	}
	return out, nil
}

// CalculateCommission computes a sale's split from the designer's current
// standing and records the sale and its earnings in one transaction.
func (s *Service) CalculateCommission(ctx context.Context, req commission.Request) (Sale, error) {
	store, err := s.ready()
	if err != nil {
		return Sale{}, err
	}
	if err := req.Validate(); err != nil {
		return Sale{}, err
	}

	rec, err := store.RecordSale(ctx, req.DesignerID, req.ProductID, func(d repository.Designer) (commission.Result, error) {
		return s.calc.Calculate(req, d.Standing())
	})
	if err != nil {
		if !errors.Is(err, commission.ErrInvalidRequest) && !errors.Is(err, repository.ErrNotFound) {
			metrics.RecordReconciliationFailure()
			s.logger.Error(ctx, "sale not recorded",
				logger.String("designer_id", req.DesignerID),
				logger.String("product_id", req.ProductID),
				logger.Error(err),
			)
		}
		return Sale{}, err
	}

	metrics.RecordCommission(rec.Result.DesignerPayout)
	s.logger.Debug(ctx, "sale recorded",
		logger.String("sale_id", rec.SaleID),
		logger.String("designer_id", req.DesignerID),
		logger.Float64("commission", rec.Result.TotalCommission),
		logger.Int64("style_credits", rec.Result.StyleCredits),
	)
	return Sale{SaleID: rec.SaleID, EarningID: rec.EarningID, Result: rec.Result}, nil
}
