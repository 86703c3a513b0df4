package app

import (
	"context"

	"github.com/google/uuid"

	"remotebalkan-scraper/internal/browser"
	"remotebalkan-scraper/internal/normalize"
	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

// SiteScraper renders job boards in a browser.
type SiteScraper interface {
	ScrapeAll(ctx context.Context, sites []browser.Site) []browser.SiteResult
}

type BrowseResult struct {
	RunID  string
	Sites  []browser.SiteResult
	Jobs   []storage.Job
	Remote int
	Hybrid int
	// Load is nil on a dry run.
	Load *LoadResult
}

// Browse scrapes the sites, normalizes and de-duplicates their cards and,
// unless loader is nil, upserts the result.
func Browse(ctx context.Context, scr SiteScraper, normalizer *normalize.Normalizer, loader *Loader, sites []browser.Site, logger *observability.Logger) (*BrowseResult, error) {
	res := &BrowseResult{RunID: uuid.NewString()}
	logger = logger.With("run_id", res.RunID)
	logger.Info("Browser scrape started", "sites", len(sites))

	res.Sites = scr.ScrapeAll(ctx, sites)

	seen := make(map[string]struct{})
	for _, site := range res.Sites {
		src := site.Site.Source()
		for _, raw := range site.Jobs {
			job := normalizer.Normalize(src, raw)
			id := job.ID()
			if _, dup := seen[id]; dup || id == "" {
				continue
			}
			seen[id] = struct{}{}
			res.Jobs = append(res.Jobs, job)
			if job.Remote != nil {
				res.Remote++
			} else {
				res.Hybrid++
			}
		}
	}

	logger.Info("Browser scrape finished", "remote", res.Remote, "hybrid", res.Hybrid)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if loader == nil {
		logger.Warn("Dry run, not writing to database")
		return res, nil
	}

	load, err := loader.LoadJobs(ctx, res.Jobs)
	res.Load = load
	return res, err
}
