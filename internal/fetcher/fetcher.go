package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/observability"
)

const (
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptJSON = "application/json,text/plain;q=0.9,*/*;q=0.8"
	AcceptFeed = "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5"
)

// ErrDisallowed is returned when robots.txt forbids the URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StatusError reports a final non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	client      *http.Client
	cfg         *config.Config
	logger      *observability.Logger
	robotsCache *RobotsCache
	rateLimiter *RateLimiter
}

// Options are per-request settings that come from the source definition.
type Options struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Timeout        time.Duration
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnectionsPerHost,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		},
	}

	limiter := NewRateLimiter(cfg.RateLimit.RPM, cfg.RateLimit.Burst)

	var robots *RobotsCache
	if cfg.Robots.Enabled {
		robots = NewRobotsCache(cfg.GetRobotsCacheTTL(), limiter, logger)
	}

	return &Fetcher{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		robotsCache: robots,
		rateLimiter: limiter,
	}
}

// Fetch GETs urlStr, retrying transport errors, 5xx and 429 with backoff.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string, opts Options) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host in %q", urlStr)
	}

	opts = f.withDefaults(opts)

	if f.robotsCache != nil {
		if !f.robotsCache.IsAllowed(ctx, f.client, parsedURL, opts.UserAgent) {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, urlStr)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.calculateBackoff(attempt)
			f.logger.Debug("Retrying request", "url", urlStr, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := f.rateLimiter.Wait(ctx, parsedURL.Host); err != nil {
			return nil, fmt.Errorf("rate limit error: %w", err)
		}

		resp, err := f.fetchOnce(ctx, urlStr, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &StatusError{StatusCode: resp.StatusCode, URL: urlStr}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: urlStr}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

func (f *Fetcher) withDefaults(opts Options) Options {
	if opts.UserAgent == "" {
		opts.UserAgent = f.cfg.HTTP.UserAgent
	}
	if opts.Accept == "" {
		opts.Accept = AcceptHTML
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = f.cfg.HTTP.AcceptLanguage
	}
	return opts
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string, opts Options) (*FetchResponse, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", opts.Accept)
	req.Header.Set("Accept-Encoding", "gzip")
	if opts.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", opts.AcceptLanguage)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "url", urlStr, "error", err)
		}
	}()

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"bytes", len(body),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	minMS := f.cfg.Backoff.MinMS
	maxMS := f.cfg.Backoff.MaxMS
	jitterPct := f.cfg.Backoff.JitterPct

	// Exponential backoff: min * 2^(attempt-1)
	exponential := minMS * (1 << uint(attempt-1))
	if exponential > maxMS || exponential <= 0 {
		exponential = maxMS
	}

	// Apply jitter: ±jitterPct%
	jitterRange := float64(exponential) * float64(jitterPct) / 100
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange
	finalMS := float64(exponential) + jitter

	if finalMS < float64(minMS) {
		finalMS = float64(minMS)
	}

	return time.Duration(math.Max(finalMS, 0)) * time.Millisecond
}

// CloseIdleConnections releases pooled connections.
func (f *Fetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}
