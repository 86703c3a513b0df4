package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/app"
)

func (c *cli) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print row counts of the jobs tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repo, err := app.OpenRepository(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					c.logger.Warn("Failed to close repository", "error", err)
				}
			}()

			counts, err := repo.Counts(ctx)
			if err != nil {
				return fmt.Errorf("failed to count jobs: %w", err)
			}
			app.PrintCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}
}
