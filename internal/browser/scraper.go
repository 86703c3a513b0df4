package browser

import (
	"context"
	"time"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/scraper"
)

// SiteResult is the outcome for one site.
type SiteResult struct {
	Site     Site
	Jobs     []scraper.RawJob
	Duration time.Duration
	Err      error
}

// Scraper renders each site and pulls its cards.
type Scraper struct {
	renderer Renderer
	maxJobs  int
	logger   *observability.Logger
}

func NewScraper(renderer Renderer, maxJobs int, logger *observability.Logger) *Scraper {
	return &Scraper{
		renderer: renderer,
		maxJobs:  maxJobs,
		logger:   logger,
	}
}

func (s *Scraper) Scrape(ctx context.Context, site Site) ([]scraper.RawJob, error) {
	html, err := s.renderer.Render(ctx, site.StartURL, site.Card)
	if err != nil {
		return nil, err
	}
	return ExtractCards(html, site, s.maxJobs)
}

// ScrapeAll runs the sites in order. A failing site is reported in its
// result and does not stop the others.
func (s *Scraper) ScrapeAll(ctx context.Context, sites []Site) []SiteResult {
	results := make([]SiteResult, 0, len(sites))
	for _, site := range sites {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		s.logger.Info("Scraping site", "site", site.ID, "url", site.StartURL)
		jobs, err := s.Scrape(ctx, site)
		result := SiteResult{Site: site, Jobs: jobs, Duration: time.Since(start), Err: err}
		if err != nil {
			s.logger.Error("Site scraper failed", "site", site.ID, "error", err.Error())
		} else {
			s.logger.Info("Site scraped", "site", site.ID, "jobs", len(jobs), "duration", result.Duration)
		}
		results = append(results, result)
	}
	return results
}
