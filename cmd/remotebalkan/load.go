package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/app"
)

func (c *cli) loadCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert an NDJSON file into jobs and hybrid_jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				input = c.cfg.Output.Path
			}

			ctx, stop := app.GracefulShutdown(cmd.Context(), c.logger)
			defer stop()

			repo, err := app.OpenRepository(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					c.logger.Warn("Failed to close repository", "error", err)
				}
			}()

			res, err := app.NewLoader(repo, c.cfg.Storage.BatchSize, c.logger).LoadFile(ctx, input)
			if res != nil {
				app.PrintLoadResult(cmd.OutOrStdout(), res)
			}
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", input, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "NDJSON file to load (defaults to output.path)")
	return cmd
}
