// Package commission splits a sale's profit between designer and platform.
package commission

import (
	"fmt"
	"math"
	"strings"

	"github.com/adorzia/atelier/internal/domain/rank"
)

// RetailMarkup is the fixed multiplier from production cost to retail price.
const RetailMarkup = 2.3

// MaxSaleRetail caps the retail value of one sale (unit price times
// quantity), in currency units. Every cent amount below it fits in an int64
// and is exact in a float64.
const MaxSaleRetail = 1e13

// Request describes one sale.
type Request struct {
	DesignerID     string  `json:"designer_id"`
	ProductID      string  `json:"product_id,omitempty"`
	ProductionCost float64 `json:"production_cost"`
	Quantity       int     `json:"sale_quantity"`
}

// Validate rejects requests that must not reach the calculation.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.DesignerID) == "":
		return fmt.Errorf("%w: designer_id is required", ErrInvalidRequest)
	case math.IsNaN(r.ProductionCost) || math.IsInf(r.ProductionCost, 0):
		return fmt.Errorf("%w: production_cost must be a finite number", ErrInvalidRequest)
	case r.ProductionCost < 0:
		return fmt.Errorf("%w: production_cost must not be negative", ErrInvalidRequest)
	case r.Quantity < 0:
		return fmt.Errorf("%w: sale_quantity must not be negative", ErrInvalidRequest)
	case r.ProductionCost*RetailMarkup > MaxSaleRetail,
		r.ProductionCost*RetailMarkup*float64(r.Quantity) > MaxSaleRetail:
		return fmt.Errorf("%w: sale value exceeds %.0f", ErrInvalidRequest, MaxSaleRetail)
	}
	return nil
}

// Standing is a single consistent snapshot of a designer's progression.
type Standing struct {
	StyleCredits int64
	Founder      *rank.Definition
}

// Result is the outcome of one calculation. Money fields are in currency
// units rounded to cents; DesignerPayout+PlatformPayout == TotalProfit.
type Result struct {
	DesignerID      string    `json:"designer_id"`
	ProductID       string    `json:"product_id,omitempty"`
	Quantity        int       `json:"sale_quantity"`
	StyleCredits    int64     `json:"style_credits"`
	Rank            rank.Key  `json:"rank"`
	FounderTier     *rank.Key `json:"founder_tier,omitempty"`
	BaseCommission  float64   `json:"base_commission"`
	FounderBonus    float64   `json:"founder_bonus"`
	TotalCommission float64   `json:"total_commission"`
	ProductionCost  float64   `json:"production_cost"`
	RetailPrice     float64   `json:"retail_price"`
	TotalProfit     float64   `json:"total_profit"`
	DesignerPayout  float64   `json:"designer_payout"`
	PlatformPayout  float64   `json:"adorzia_payout"`

	// Cent amounts are what gets persisted.
	TotalProfitCents    int64 `json:"-"`
	DesignerPayoutCents int64 `json:"-"`
	PlatformPayoutCents int64 `json:"-"`
}

// Calculator is stateless apart from the shared rank ledger.
type Calculator struct {
	ledger *rank.Ledger
}

// NewCalculator returns a calculator bound to ledger.
func NewCalculator(ledger *rank.Ledger) *Calculator {
	return &Calculator{ledger: ledger}
}

// Calculate computes the split for req against standing.
func (c *Calculator) Calculate(req Request, standing Standing) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	std := c.ledger.ForSC(standing.StyleCredits)
	var founder *rank.Definition
	if standing.Founder != nil && standing.Founder.Founder {
		founder = standing.Founder
	}
	eff := c.ledger.EffectiveCommission(std, founder)

	q := float64(req.Quantity)
	retail := req.ProductionCost * RetailMarkup
	totalCents := int64(math.Round((retail*q - req.ProductionCost*q) * 100))
	designerCents := int64(math.Round(float64(totalCents) * eff / 100))
	platformCents := totalCents - designerCents

	res := Result{
		DesignerID:          req.DesignerID,
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		StyleCredits:        standing.StyleCredits,
		Rank:                std.Key,
		BaseCommission:      std.Commission,
		TotalCommission:     eff,
		ProductionCost:      req.ProductionCost,
		RetailPrice:         fromCents(int64(math.Round(retail * 100))),
		TotalProfit:         fromCents(totalCents),
		DesignerPayout:      fromCents(designerCents),
		PlatformPayout:      fromCents(platformCents),
		TotalProfitCents:    totalCents,
		DesignerPayoutCents: designerCents,
		PlatformPayoutCents: platformCents,
	}
	if founder != nil {
		key := founder.Key
		res.FounderTier = &key
		res.FounderBonus = founder.Bonus
	}
	return res, nil
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}
