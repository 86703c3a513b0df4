package sources

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
)

// HTMLFetcher scrapes listing pages, preferring JSON-LD JobPosting data
// when the source asks for it and falling back to CSS selectors.
type HTMLFetcher struct {
	*base
}

func (f *HTMLFetcher) Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error) {
	pages := htmlPages(src.EntryURL(), src.HTML.Pagination)
	cards := scraper.NewScraper(src.HTML.Selectors)

	parse := func(doc *goquery.Document, pg page) pageResult {
		if src.HTML.PreferJSONLD {
			jobs, err := scraper.ExtractJSONLD(doc)
			if err != nil {
				f.logger.Warn("Failed to parse JSON-LD", "source", src.ID, "url", pg.URL, "error", err.Error())
			}
			if len(jobs) > 0 {
				return pageResult{Jobs: jobs}
			}
		}

		if !cards.CanParse() {
			return pageResult{Stop: "no item selector"}
		}
		if cards.CountCards(doc) == 0 {
			return pageResult{Stop: "no cards on page"}
		}
		return pageResult{Jobs: cards.ParseDocument(doc), Delay: true}
	}

	return f.paginate(ctx, src, pages, paginationStart(src.HTML.Pagination), parse)
}

func paginationStart(p *config.Pagination) int {
	if p == nil {
		return 1
	}
	return p.StartPage()
}
