package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/app"
	"remotebalkan-scraper/internal/fetcher"
	"remotebalkan-scraper/internal/normalize"
	"remotebalkan-scraper/internal/sources"
)

func (c *cli) runCommand() *cobra.Command {
	var (
		only            []string
		limit           int
		remoteOnly      bool
		hybridOnly      bool
		noSave          bool
		includeDisabled bool
		output          string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every enabled source and write normalized jobs as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remoteOnly && hybridOnly {
				return fmt.Errorf("--remote-only and --hybrid-only are mutually exclusive")
			}

			sf, err := c.loadSources()
			if err != nil {
				return err
			}

			f := fetcher.NewFetcher(c.cfg, c.logger)
			defer f.CloseIdleConnections()

			registry := sources.NewRegistry(f, sf, c.cfg.GetPageDelay(), c.logger)
			runner := app.NewRunner(sf, registry, normalize.NewNormalizer(), c.logger)

			opts := app.DefaultRunOptions()
			opts.Only = only
			opts.SkipDisabled = !includeDisabled
			opts.LimitPerSource = c.cfg.Runner.LimitPerSource
			if cmd.Flags().Changed("limit") {
				opts.LimitPerSource = limit
			}
			opts.IncludeRemote = !hybridOnly
			opts.IncludeHybrid = !remoteOnly

			ctx, stop := app.GracefulShutdown(cmd.Context(), c.logger)
			defer stop()
			if d := c.cfg.GetMaxDuration(); d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			_, runErr := runner.Run(ctx, opts)
			app.PrintSummary(cmd.OutOrStdout(), runner.Summary())

			if !noSave && len(runner.Jobs()) > 0 {
				path := output
				if path == "" {
					path = c.cfg.Output.Path
				}
				if err := runner.SaveNDJSON(path); err != nil {
					return fmt.Errorf("failed to save jobs: %w", err)
				}
				c.logger.Info("Jobs saved", "path", path, "jobs", len(runner.Jobs()))
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "comma-separated source ids to run")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records per source (0 = no limit)")
	cmd.Flags().BoolVar(&remoteOnly, "remote-only", false, "keep only sources that are fully remote")
	cmd.Flags().BoolVar(&hybridOnly, "hybrid-only", false, "keep only hybrid and onsite sources")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the NDJSON file")
	cmd.Flags().BoolVar(&includeDisabled, "include-disabled", false, "also run sources marked enabled: false")
	cmd.Flags().StringVarP(&output, "output", "o", "", "NDJSON output path (defaults to output.path)")
	return cmd
}
