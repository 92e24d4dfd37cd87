package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/adorzia/atelier/internal/app"
	"github.com/adorzia/atelier/pkg/logger"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Approve every pending review past its deadline once, then exit",
		Long: `Runs a single auto-approve pass against the configured database.
Use it from an external scheduler when the in-process poller is disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			svc := app.New(
				app.WithLogger(log),
				app.WithDatabasePath(cfg.DatabasePath),
				app.WithAutoApprove(false, ""),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop(ctx)

			res, err := svc.SweepAutoApprove(ctx)
			if err != nil {
				log.Error(ctx, "sweep finished with errors", logger.Error(err))
			}
			out, merr := json.Marshal(res)
			if merr != nil {
				return merr
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
