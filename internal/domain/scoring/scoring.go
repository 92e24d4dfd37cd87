// Package scoring converts graded stylebox submissions into style credits.
//
// A submission carries a difficulty, four evaluation axes scored by a
// reviewer, and a timeliness flag. The engine weights the axes by
// difficulty, maps the weighted average onto a quality multiplier, and scales
// the difficulty's base points by that multiplier and a timeliness
// adjustment. The result becomes one append-only SC ledger entry.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Axis bounds for evaluation scores.
const (
	minAxisScore = 0
	maxAxisScore = 100
)

// Difficulty is the stylebox difficulty tier.
type Difficulty string

const (
	Free   Difficulty = "free"
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Insane Difficulty = "insane"
)

// Difficulties lists every tier, easiest first.
func Difficulties() []Difficulty {
	return []Difficulty{Free, Easy, Medium, Hard, Insane}
}

// ParseDifficulty converts a wire value into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case Free, Easy, Medium, Hard, Insane:
		return d, nil
	}
	return "", fmt.Errorf("%w: difficulty %q", ErrInvalidInput, raw)
}

// Timeliness describes when a submission arrived relative to its deadline.
type Timeliness string

const (
	Early  Timeliness = "early"
	OnTime Timeliness = "on_time"
	Late   Timeliness = "late"
)

// ParseTimeliness converts a wire value into a Timeliness. Both "on_time" and
// the camel-cased "onTime" are accepted.
func ParseTimeliness(raw string) (Timeliness, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "early":
		return Early, nil
	case "on_time", "ontime", "on-time":
		return OnTime, nil
	case "late":
		return Late, nil
	}
	return "", fmt.Errorf("%w: timeliness %q", ErrInvalidInput, raw)
}

// EvaluationScores are the four reviewer axes, each in [0,100].
type EvaluationScores struct {
	TrendAlignment     float64 `json:"trend_alignment"`
	CreativeInnovation float64 `json:"creative_innovation"`
	TechnicalExecution float64 `json:"technical_execution"`
	Craftsmanship      float64 `json:"craftsmanship"`
}

func (s EvaluationScores) validate() error {
	axes := [...]struct {
		name string
		v    float64
	}{
		{"trend_alignment", s.TrendAlignment},
		{"creative_innovation", s.CreativeInnovation},
		{"technical_execution", s.TechnicalExecution},
		{"craftsmanship", s.Craftsmanship},
	}
	for _, a := range axes {
		if math.IsNaN(a.v) || a.v < minAxisScore || a.v > maxAxisScore {
			return fmt.Errorf("%w: %s must be within [0,100], got %v", ErrInvalidInput, a.name, a.v)
		}
	}
	return nil
}

// StyleboxInput is one graded submission.
type StyleboxInput struct {
	Difficulty Difficulty       `json:"difficulty"`
	Scores     EvaluationScores `json:"evaluation_scores"`
	Timeliness Timeliness       `json:"timeliness"`
}

// Breakdown explains how a stylebox score was reached.
type Breakdown struct {
	WeightedEvaluation   float64 `json:"weighted_evaluation"`
	QualityMultiplier    float64 `json:"quality_multiplier"`
	BasePoints           float64 `json:"base_points"`
	TimelinessAdjustment float64 `json:"timeliness_adjustment"`
	Score                float64 `json:"score"`
}

// Weights is a difficulty-specific axis weighting, in percent.
type Weights struct {
	TrendAlignment     int `json:"trend_alignment"`
	CreativeInnovation int `json:"creative_innovation"`
	TechnicalExecution int `json:"technical_execution"`
	Craftsmanship      int `json:"craftsmanship"`
}

// Sum returns the total weight; every row of the table sums to 100.
func (w Weights) Sum() int {
	return w.TrendAlignment + w.CreativeInnovation + w.TechnicalExecution + w.Craftsmanship
}

// Components are the four already-computed inputs to a designer's weighted total.
type Components struct {
	Stylebox    float64 `json:"stylebox"`
	Portfolio   float64 `json:"portfolio"`
	Publication float64 `json:"publication"`
	Selling     float64 `json:"selling"`
}

// Component weights for WeightedTotal; they sum to 1.0.
const (
	StyleboxWeight    = 0.30
	PortfolioWeight   = 0.35
	PublicationWeight = 0.15
	SellingWeight     = 0.20
)

type tier struct {
	basePoints float64
	weights    Weights
}

// Higher difficulty moves weight from trend alignment toward creative innovation.
var tierTable = map[Difficulty]tier{
	Free:   {basePoints: 5, weights: Weights{40, 20, 20, 20}},
	Easy:   {basePoints: 15, weights: Weights{35, 25, 20, 20}},
	Medium: {basePoints: 30, weights: Weights{25, 25, 30, 20}},
	Hard:   {basePoints: 50, weights: Weights{20, 30, 30, 20}},
	Insane: {basePoints: 80, weights: Weights{15, 35, 30, 20}},
}

type band struct {
	floor      float64
	multiplier float64
}

// Highest band first; an average is matched against the first floor it reaches.
var qualityBands = [...]band{
	{floor: 95, multiplier: 1.1},
	{floor: 90, multiplier: 1.0},
	{floor: 80, multiplier: 0.85},
	{floor: 70, multiplier: 0.7},
}

const lowestMultiplier = 0.5

var timelinessAdjustments = map[Timeliness]float64{
	Early:  0.05,
	OnTime: 0,
	Late:   -0.05,
}

// Engine evaluates stylebox submissions against the fixed scoring tables.
type Engine struct {
	tiers map[Difficulty]tier
}

// NewEngine builds an engine over the constant tables.
func NewEngine() *Engine {
	tiers := make(map[Difficulty]tier, len(tierTable))
	for d, t := range tierTable {
		tiers[d] = t
	}
	return &Engine{tiers: tiers}
}

// Weights returns the axis weighting for a difficulty.
func (e *Engine) Weights(d Difficulty) (Weights, bool) {
	t, ok := e.tiers[d]
	return t.weights, ok
}

// BasePoints returns the SC a perfect-multiplier submission earns at d.
func (e *Engine) BasePoints(d Difficulty) (float64, bool) {
	t, ok := e.tiers[d]
	return t.basePoints, ok
}

// WeightedEvaluationScore combines the four axes with d's weights. The result
// lies in [0,100]. Unknown difficulties score 0.
func (e *Engine) WeightedEvaluationScore(s EvaluationScores, d Difficulty) float64 {
	t, ok := e.tiers[d]
	if !ok {
		return 0
	}
	w := t.weights
	sum := s.TrendAlignment*float64(w.TrendAlignment) +
		s.CreativeInnovation*float64(w.CreativeInnovation) +
		s.TechnicalExecution*float64(w.TechnicalExecution) +
		s.Craftsmanship*float64(w.Craftsmanship)
	return math.Max(minAxisScore, math.Min(maxAxisScore, sum/float64(w.Sum())))
}

// QualityMultiplier maps an average score onto the multiplier curve. Values
// outside [0,100] get the lowest multiplier.
func (e *Engine) QualityMultiplier(avg float64) float64 {
	if math.IsNaN(avg) || avg < minAxisScore || avg > maxAxisScore {
		return lowestMultiplier
	}
	for _, b := range qualityBands {
		if avg >= b.floor {
			return b.multiplier
		}
	}
	return lowestMultiplier
}

// TimelinessAdjustment returns the fractional bonus or penalty for t.
func (e *Engine) TimelinessAdjustment(t Timeliness) (float64, bool) {
	adj, ok := timelinessAdjustments[t]
	return adj, ok
}

// StyleboxScore computes the SC contribution of one graded submission,
// rounded to two decimal places.
func (e *Engine) StyleboxScore(in StyleboxInput) (Breakdown, error) {
	t, ok := e.tiers[in.Difficulty]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	adj, ok := timelinessAdjustments[in.Timeliness]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: timeliness %q", ErrInvalidInput, in.Timeliness)
	}
	if err := in.Scores.validate(); err != nil {
		return Breakdown{}, err
	}

	weighted := e.WeightedEvaluationScore(in.Scores, in.Difficulty)
	multiplier := e.QualityMultiplier(weighted)

	return Breakdown{
		WeightedEvaluation:   round2(weighted),
		QualityMultiplier:    multiplier,
		BasePoints:           t.basePoints,
		TimelinessAdjustment: adj,
		Score:                round2(t.basePoints * multiplier * (1 + adj)),
	}, nil
}

// WeightedTotal combines the four designer components into one score.
func (e *Engine) WeightedTotal(c Components) float64 {
	return c.Stylebox*StyleboxWeight +
		c.Portfolio*PortfolioWeight +
		c.Publication*PublicationWeight +
		c.Selling*SellingWeight
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
