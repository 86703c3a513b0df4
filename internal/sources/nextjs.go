package sources

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/scraper"
)

// NextJSFetcher reads the Apollo cache embedded in __NEXT_DATA__.
type NextJSFetcher struct {
	*base
}

func (f *NextJSFetcher) Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error) {
	pages := nextPages(src.EntryURL(), src.NextJS.Pagination)

	parse := func(doc *goquery.Document, pg page) pageResult {
		data, ok, err := scraper.NextData(doc)
		if err != nil {
			return pageResult{Err: fmt.Errorf("%s: %w", pg.URL, err)}
		}
		if !ok {
			return pageResult{Stop: "no __NEXT_DATA__"}
		}
		if !src.NextJS.ApolloState {
			return pageResult{Delay: true}
		}

		jobs := scraper.ApolloJobs(data, src.JobKeyPrefix(), src.NextJS.FieldMapping)
		if len(jobs) == 0 {
			return pageResult{Stop: "no jobs in Apollo state"}
		}
		return pageResult{Jobs: jobs, Delay: true}
	}

	return f.paginate(ctx, src, pages, paginationStart(src.NextJS.Pagination), parse)
}
