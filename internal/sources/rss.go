package sources

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/fetcher"
	"remotebalkan-scraper/internal/scraper"
)

// RSSFetcher reads RSS and Atom feeds.
type RSSFetcher struct {
	*base
}

func (f *RSSFetcher) Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error) {
	resp, err := f.client.Fetch(ctx, src.URL, f.options(src, fetcher.AcceptFeed))
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", src.URL, err)
	}

	jobs := make([]scraper.RawJob, 0, len(feed.Items))
	for _, item := range feed.Items {
		jobs = append(jobs, feedItem(item))
	}
	return jobs, nil
}

func feedItem(item *gofeed.Item) scraper.RawJob {
	description := item.Description
	if description == "" {
		description = item.Content
	}

	job := scraper.RawJob{
		"title":       item.Title,
		"url":         item.Link,
		"description": scraper.SanitizeHTML(description),
		"posted_at":   item.Published,
		"company":     author(item),
	}

	var tags []string
	for _, c := range item.Categories {
		if c != "" {
			tags = append(tags, c)
		}
	}
	if len(tags) > 0 {
		job["tags"] = tags
	}
	return job
}

func author(item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			return p.Name
		}
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
