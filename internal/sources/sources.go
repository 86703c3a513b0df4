package sources

import (
	"context"
	"fmt"
	"time"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/fetcher"
	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/scraper"
)

// Client is the HTTP side of a fetcher. *fetcher.Fetcher implements it.
type Client interface {
	Fetch(ctx context.Context, url string, opts fetcher.Options) (*fetcher.FetchResponse, error)
}

// Fetcher turns one configured source into raw records.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error)
}

// Registry dispatches a source to the fetcher for its kind.
type Registry struct {
	fetchers map[string]Fetcher
}

func NewRegistry(client Client, sf *config.SourceFile, pageDelay time.Duration, logger *observability.Logger) *Registry {
	b := &base{
		client:    client,
		files:     sf,
		pageDelay: pageDelay,
		logger:    logger,
	}
	return &Registry{
		fetchers: map[string]Fetcher{
			config.KindAPI:    &APIFetcher{base: b},
			config.KindRSS:    &RSSFetcher{base: b},
			config.KindHTML:   &HTMLFetcher{base: b},
			config.KindNextJS: &NextJSFetcher{base: b},
		},
	}
}

func (r *Registry) Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error) {
	f, ok := r.fetchers[src.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return f.Fetch(ctx, src)
}

type base struct {
	client    Client
	files     *config.SourceFile
	pageDelay time.Duration
	logger    *observability.Logger
}

func (b *base) options(src config.Source, accept string) fetcher.Options {
	return fetcher.Options{
		UserAgent: b.files.UserAgent(),
		Accept:    accept,
		Timeout:   b.files.Timeout(src),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
