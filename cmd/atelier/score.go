package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/adorzia/atelier/internal/domain/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		difficulty string
		timeliness string
		scores     scoring.EvaluationScores
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Preview the style credits a graded stylebox would earn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := scoring.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			t, err := scoring.ParseTimeliness(timeliness)
			if err != nil {
				return err
			}
			b, err := scoring.NewEngine().StyleboxScore(scoring.StyleboxInput{Difficulty: d, Scores: scores, Timeliness: t})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		},
	}

	f := cmd.Flags()
	f.StringVar(&difficulty, "difficulty", "medium", "free, easy, medium, hard or insane")
	f.StringVar(&timeliness, "timeliness", "on_time", "early, on_time or late")
	f.Float64Var(&scores.TrendAlignment, "trend", 0, "trend alignment score (0-100)")
	f.Float64Var(&scores.CreativeInnovation, "creative", 0, "creative innovation score (0-100)")
	f.Float64Var(&scores.TechnicalExecution, "technical", 0, "technical execution score (0-100)")
	f.Float64Var(&scores.Craftsmanship, "craft", 0, "craftsmanship score (0-100)")
	return cmd
}
