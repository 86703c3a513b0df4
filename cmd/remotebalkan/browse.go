package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remotebalkan-scraper/internal/app"
	"remotebalkan-scraper/internal/browser"
	"remotebalkan-scraper/internal/normalize"
)

func (c *cli) browseCommand() *cobra.Command {
	var (
		siteIDs []string
		maxJobs int
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Scrape browser-rendered job boards with headless Chromium",
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := browser.Lookup(siteIDs)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-jobs") {
				maxJobs = c.cfg.Rod.MaxJobs
			}
			dryRun = dryRun || c.cfg.Runner.DryRun

			ctx, stop := app.GracefulShutdown(cmd.Context(), c.logger)
			defer stop()

			var loader *app.Loader
			if !dryRun {
				repo, err := app.OpenRepository(ctx, c.cfg, c.logger)
				if err != nil {
					return err
				}
				defer func() {
					if err := repo.Close(); err != nil {
						c.logger.Warn("Failed to close repository", "error", err)
					}
				}()
				loader = app.NewLoader(repo, c.cfg.Storage.BatchSize, c.logger)
			}

			manager, err := browser.NewManager(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := manager.Close(); err != nil {
					c.logger.Warn("Failed to close browser", "error", err)
				}
			}()

			scr := browser.NewScraper(manager, maxJobs, c.logger)
			res, err := app.Browse(ctx, scr, normalize.NewNormalizer(), loader, sites, c.logger)
			if res != nil {
				out := cmd.OutOrStdout()
				for _, site := range res.Sites {
					status := fmt.Sprintf("%d jobs", len(site.Jobs))
					if site.Err != nil {
						status = "failed: " + site.Err.Error()
					}
					fmt.Fprintf(out, "%-16s %s (%.1fs)\n", site.Site.ID, status, site.Duration.Seconds())
				}
				fmt.Fprintf(out, "Run %s: %d remote, %d hybrid\n", res.RunID, res.Remote, res.Hybrid)
				if res.Load != nil {
					app.PrintLoadResult(out, res.Load)
				}
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&siteIDs, "site", nil, "comma-separated site ids (default: all)")
	cmd.Flags().IntVar(&maxJobs, "max-jobs", 0, "maximum jobs per site (defaults to rod.max_jobs)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scrape without writing to the database")
	return cmd
}
