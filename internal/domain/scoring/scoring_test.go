package scoring_test

import (
	"errors"
	"math"
	"testing"

	scoring "github.com/adorzia/atelier/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngine_Weights(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("Then every difficulty's weights sum to exactly 100", func() {
			for _, d := range scoring.Difficulties() {
				w, ok := e.Weights(d)
				So(ok, ShouldBeTrue)
				So(w.Sum(), ShouldEqual, 100)
			}
		})

		Convey("Then harder tiers shift weight from trend alignment to creative innovation", func() {
			prev, _ := e.Weights(scoring.Free)
			for _, d := range scoring.Difficulties()[1:] {
				w, _ := e.Weights(d)
				So(w.TrendAlignment, ShouldBeLessThan, prev.TrendAlignment)
				So(w.CreativeInnovation, ShouldBeGreaterThanOrEqualTo, prev.CreativeInnovation)
				prev = w
			}
		})

		Convey("Then component weights sum to 1.0", func() {
			sum := scoring.StyleboxWeight + scoring.PortfolioWeight + scoring.PublicationWeight + scoring.SellingWeight
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}

func TestEngine_StyleboxScore(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("When scoring an early hard submission", func() {
			in := scoring.StyleboxInput{
				Difficulty: scoring.Hard,
				Scores: scoring.EvaluationScores{
					TrendAlignment:     90,
					CreativeInnovation: 95,
					TechnicalExecution: 90,
					Craftsmanship:      85,
				},
				Timeliness: scoring.Early,
			}

			b, err := e.StyleboxScore(in)

			Convey("Then the early hard submission earns 52.5", func() {
				So(err, ShouldBeNil)
				So(b.WeightedEvaluation, ShouldAlmostEqual, 90.5, 1e-9)
				So(b.QualityMultiplier, ShouldEqual, 1.0)
				So(b.BasePoints, ShouldEqual, 50)
				So(b.TimelinessAdjustment, ShouldEqual, 0.05)
				So(b.Score, ShouldEqual, 52.5)
			})
		})

		Convey("When scoring an on-time medium submission in the 80s band", func() {
			in := scoring.StyleboxInput{
				Difficulty: scoring.Medium,
				Scores:     scoring.EvaluationScores{TrendAlignment: 84, CreativeInnovation: 84, TechnicalExecution: 84, Craftsmanship: 84},
				Timeliness: scoring.OnTime,
			}

			b, err := e.StyleboxScore(in)

			Convey("Then it applies the 0.85 multiplier with no adjustment", func() {
				So(err, ShouldBeNil)
				So(b.QualityMultiplier, ShouldEqual, 0.85)
				So(b.Score, ShouldAlmostEqual, 25.5, 1e-9)
			})
		})

		Convey("When a late free submission scores below 70", func() {
			in := scoring.StyleboxInput{
				Difficulty: scoring.Free,
				Scores:     scoring.EvaluationScores{TrendAlignment: 50, CreativeInnovation: 50, TechnicalExecution: 50, Craftsmanship: 50},
				Timeliness: scoring.Late,
			}

			b, err := e.StyleboxScore(in)

			Convey("Then it earns the lowest multiplier less the late penalty", func() {
				So(err, ShouldBeNil)
				So(b.QualityMultiplier, ShouldEqual, 0.5)
				So(b.Score, ShouldAlmostEqual, 2.38, 0.006) // 5 * 0.5 * 0.95
			})
		})

		Convey("When an axis is out of range", func() {
			in := scoring.StyleboxInput{
				Difficulty: scoring.Easy,
				Scores:     scoring.EvaluationScores{TrendAlignment: 101},
				Timeliness: scoring.OnTime,
			}

			_, err := e.StyleboxScore(in)

			Convey("Then it reports invalid input", func() {
				So(errors.Is(err, scoring.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the difficulty or timeliness is unknown", func() {
			_, err := e.StyleboxScore(scoring.StyleboxInput{Difficulty: "legendary", Timeliness: scoring.Early})
			So(errors.Is(err, scoring.ErrInvalidInput), ShouldBeTrue)

			_, err = e.StyleboxScore(scoring.StyleboxInput{Difficulty: scoring.Free, Timeliness: "someday"})
			So(errors.Is(err, scoring.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestEngine_QualityMultiplier(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("When checking each band edge", func() {
			So(e.QualityMultiplier(0), ShouldEqual, 0.5)
			So(e.QualityMultiplier(69.99), ShouldEqual, 0.5)
			So(e.QualityMultiplier(70), ShouldEqual, 0.7)
			So(e.QualityMultiplier(79.99), ShouldEqual, 0.7)
			So(e.QualityMultiplier(80), ShouldEqual, 0.85)
			So(e.QualityMultiplier(89.99), ShouldEqual, 0.85)
			So(e.QualityMultiplier(90), ShouldEqual, 1.0)
			So(e.QualityMultiplier(94.99), ShouldEqual, 1.0)
			So(e.QualityMultiplier(95), ShouldEqual, 1.1)
			So(e.QualityMultiplier(100), ShouldEqual, 1.1)
		})

		Convey("When the input is out of range it defaults to the lowest multiplier", func() {
			So(e.QualityMultiplier(-1), ShouldEqual, 0.5)
			So(e.QualityMultiplier(120), ShouldEqual, 0.5)
			So(e.QualityMultiplier(math.NaN()), ShouldEqual, 0.5)
		})

		Convey("Then the curve is monotonically non-decreasing on [0,100]", func() {
			prev := e.QualityMultiplier(0)
			for avg := 0.0; avg <= 100; avg += 0.25 {
				m := e.QualityMultiplier(avg)
				So(m, ShouldBeGreaterThanOrEqualTo, prev)
				prev = m
			}
		})
	})
}

func TestEngine_WeightedEvaluationScore(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("When every axis has the same score", func() {
			s := scoring.EvaluationScores{TrendAlignment: 77, CreativeInnovation: 77, TechnicalExecution: 77, Craftsmanship: 77}
			Convey("Then every difficulty returns that score", func() {
				for _, d := range scoring.Difficulties() {
					So(e.WeightedEvaluationScore(s, d), ShouldAlmostEqual, 77, 1e-9)
				}
			})
		})

		Convey("When the extremes are used it stays within [0,100]", func() {
			hi := scoring.EvaluationScores{TrendAlignment: 100, CreativeInnovation: 100, TechnicalExecution: 100, Craftsmanship: 100}
			So(e.WeightedEvaluationScore(hi, scoring.Insane), ShouldEqual, 100)
			So(e.WeightedEvaluationScore(scoring.EvaluationScores{}, scoring.Insane), ShouldEqual, 0)
		})
	})
}

func TestEngine_WeightedTotal(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("When all components are zero", func() {
			So(e.WeightedTotal(scoring.Components{}), ShouldEqual, 0)
		})

		Convey("When components are mixed", func() {
			total := e.WeightedTotal(scoring.Components{Stylebox: 100, Portfolio: 80, Publication: 60, Selling: 40})
			So(total, ShouldAlmostEqual, 30+28+9+8, 1e-9)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given wire values", t, func() {
		d, err := scoring.ParseDifficulty(" HARD ")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, scoring.Hard)

		_, err = scoring.ParseDifficulty("nightmare")
		So(err, ShouldNotBeNil)

		for _, raw := range []string{"on_time", "onTime", "ontime"} {
			tl, err := scoring.ParseTimeliness(raw)
			So(err, ShouldBeNil)
			So(tl, ShouldEqual, scoring.OnTime)
		}

		_, err = scoring.ParseTimeliness("whenever")
		So(err, ShouldNotBeNil)
	})
}
