// Command atelier serves the designer progression API and runs its
// maintenance jobs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adorzia/atelier/internal/config"
	"github.com/adorzia/atelier/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "atelier",
		Short:        "Designer progression and publication economics service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSweepCmd(), newScoreCmd())
	return root
}

// setup loads configuration and initializes the global logger from it.
func setup(ctx context.Context, cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitWithFormat(logger.Format(cfg.LogFormat), cmd.ErrOrStderr()); err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}
