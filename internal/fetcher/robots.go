package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"remotebalkan-scraper/internal/observability"
)

// RobotsCache keeps parsed robots.txt files per scheme+host.
type RobotsCache struct {
	cache   map[string]*robotsEntry
	ttl     time.Duration
	mu      sync.RWMutex
	limiter *RateLimiter
	logger  *observability.Logger
	now     func() time.Time
}

type robotsEntry struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

// NewRobotsCache builds a cache whose robots.txt requests go through
// limiter like any other request to the host.
func NewRobotsCache(ttl time.Duration, limiter *RateLimiter, logger *observability.Logger) *RobotsCache {
	return &RobotsCache{
		cache:   make(map[string]*robotsEntry),
		ttl:     ttl,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// IsAllowed reports whether agent may fetch target. When robots.txt
// cannot be retrieved the URL is allowed.
func (rc *RobotsCache) IsAllowed(ctx context.Context, client *http.Client, target *url.URL, agent string) bool {
	key := target.Scheme + "://" + target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[key]
	rc.mu.RUnlock()

	if !exists || rc.now().After(cached.expiresAt) {
		data, ok := rc.fetch(ctx, client, target.Host, key, agent)
		if !ok {
			return true
		}
		cached = &robotsEntry{data: data, expiresAt: rc.now().Add(rc.ttl)}
		rc.mu.Lock()
		rc.cache[key] = cached
		rc.mu.Unlock()
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return cached.data.TestAgent(path, agent)
}

func (rc *RobotsCache) fetch(ctx context.Context, client *http.Client, host, base, agent string) (*robotstxt.RobotsData, bool) {
	if rc.limiter != nil {
		if err := rc.limiter.Wait(ctx, host); err != nil {
			return nil, false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/robots.txt", nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", agent)

	resp, err := client.Do(req)
	if err != nil {
		rc.logger.Debug("robots.txt unavailable", "host", base, "error", err)
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		rc.logger.Warn("Failed to parse robots.txt", "host", base, "error", err)
		return nil, false
	}
	return data, true
}
