package sources

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/fetcher"
	"remotebalkan-scraper/internal/scraper"
)

// page is one listing URL. Bare marks the unnumbered base URL.
type page struct {
	URL  string
	Num  int
	Bare bool
}

// htmlPages lists start+i*step for i < max_pages. Path pagination, and
// query pagination starting past 1, fetch the base URL first. With a step
// other than 1 the start page is the base URL itself.
func htmlPages(baseURL string, p *config.Pagination) []page {
	if !paginated(p) {
		return []page{{URL: baseURL, Bare: true}}
	}
	pg := p.Normalized()
	start := pg.StartPage()

	var pages []page
	if pg.Type == config.PaginationPath || (pg.Type == config.PaginationQueryParam && start > 1) {
		pages = append(pages, page{URL: baseURL, Bare: true})
	}
	for i := 0; i < pg.MaxPages; i++ {
		num := start + i*pg.Step
		var u string
		switch {
		case num == start && pg.Step != 1:
			u = baseURL
		case pg.Type == config.PaginationPath:
			u = baseURL + strings.ReplaceAll(pg.Pattern, "{page}", strconv.Itoa(num))
		default:
			u = withQuery(baseURL, pg.Param, num)
		}
		pages = append(pages, page{URL: u, Num: num})
	}
	return pages
}

// nextPages starting at 1 fetches the base URL and then 2..max_pages;
// any other start fetches start..start+max_pages-1.
func nextPages(baseURL string, p *config.Pagination) []page {
	if !paginated(p) {
		return []page{{URL: baseURL, Bare: true}}
	}
	pg := p.Normalized()
	start := pg.StartPage()

	var pages []page
	first := start
	if start == 1 {
		pages = append(pages, page{URL: baseURL, Bare: true})
		first = 2
	}
	for num := first; num < start+pg.MaxPages; num++ {
		pages = append(pages, page{URL: withQuery(baseURL, pg.Param, num), Num: num})
	}
	return pages
}

// paginated reports whether p asks for more than the bare URL. An empty
// pagination block counts as absent.
func paginated(p *config.Pagination) bool {
	return p != nil && *p != (config.Pagination{})
}

func withQuery(baseURL, param string, num int) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", baseURL, sep, param, num)
}

// pageResult is what a parser found on one page. A non-empty Stop ends
// pagination after this page; Delay asks for the pause before the next one.
// Err is handled like a failed fetch of the page.
type pageResult struct {
	Jobs  []scraper.RawJob
	Delay bool
	Stop  string
	Err   error
}

type parseFunc func(doc *goquery.Document, pg page) pageResult

type paginationStats struct {
	TotalPages    int
	TotalJobs     int
	StoppedReason string
}

// paginate fetches pages in order. A failure on a numbered page past start
// ends pagination with what was collected so far; any other failure is
// returned.
func (b *base) paginate(ctx context.Context, src config.Source, pages []page, start int, parse parseFunc) ([]scraper.RawJob, error) {
	opts := b.options(src, fetcher.AcceptHTML)
	stats := &paginationStats{}

	var jobs []scraper.RawJob
	for _, pg := range pages {
		b.logger.Debug("Processing page", "source", src.ID, "page", pg.Num, "url", pg.URL)

		var result pageResult
		doc, err := b.document(ctx, pg.URL, opts)
		if err == nil {
			result = parse(doc, pg)
			err = result.Err
		}
		if err != nil {
			if ctx.Err() == nil && !pg.Bare && pg.Num > start {
				b.logger.Warn("Page failed, stopping pagination",
					"source", src.ID,
					"page", pg.Num,
					"url", pg.URL,
					"error", err.Error(),
				)
				stats.StoppedReason = fmt.Sprintf("error at page %d: %v", pg.Num, err)
				break
			}
			return nil, err
		}

		for _, job := range result.Jobs {
			if href := job.String("url"); href != "" {
				job["url"] = scraper.ResolveURL(pg.URL, href)
			}
		}
		jobs = append(jobs, result.Jobs...)
		stats.TotalPages++
		stats.TotalJobs += len(result.Jobs)

		if result.Stop != "" {
			stats.StoppedReason = result.Stop
			break
		}

		if result.Delay && !pg.Bare && len(pages) > 1 {
			if err := sleep(ctx, b.pageDelay); err != nil {
				return nil, err
			}
		}
	}

	b.logger.Info("Pagination completed",
		"source", src.ID,
		"total_pages", stats.TotalPages,
		"total_jobs", stats.TotalJobs,
		"reason", stats.StoppedReason,
	)
	return jobs, nil
}

func (b *base) document(ctx context.Context, url string, opts fetcher.Options) (*goquery.Document, error) {
	resp, err := b.client.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}
