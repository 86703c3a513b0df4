package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/observability"
)

// Renderer returns the HTML of a page after scripts have run.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

// Manager owns one headless Chromium and renders pages in fresh tabs.
type Manager struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	userAgent   string
	pageTimeout time.Duration
	waitTimeout time.Duration
	lazyDelay   time.Duration
	logger      *observability.Logger
}

func NewManager(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Manager, error) {
	l := launcher.New().Headless(cfg.Rod.Headless)
	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	return &Manager{
		browser:     browser,
		launcher:    l,
		userAgent:   cfg.HTTP.UserAgent,
		pageTimeout: cfg.GetRodPageTimeout(),
		waitTimeout: cfg.GetRodWaitLoadTimeout(),
		lazyDelay:   cfg.GetRodLazyLoadDelay(),
		logger:      logger,
	}, nil
}

func (m *Manager) Render(ctx context.Context, url, waitSelector string) (string, error) {
	page, err := m.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			m.logger.Debug("Failed to close page", "url", url, "error", err)
		}
	}()

	if m.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.userAgent}); err != nil {
			m.logger.Warn("Failed to set user agent", "error", err)
		}
	}

	timed := page.Timeout(m.pageTimeout)
	if err := timed.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := timed.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", url, err)
	}

	if waitSelector != "" {
		if _, err := page.Timeout(m.waitTimeout).Element(waitSelector); err != nil {
			m.logger.Warn("Listing did not appear", "url", url, "selector", waitSelector, "error", err)
		}
	}

	if m.lazyDelay > 0 {
		if err := page.Mouse.Scroll(0, 4000, 8); err != nil {
			m.logger.Debug("Scroll failed", "url", url, "error", err)
		}
		select {
		case <-time.After(m.lazyDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read HTML of %s: %w", url, err)
	}
	return html, nil
}

func (m *Manager) Close() error {
	err := m.browser.Close()
	m.launcher.Cleanup()
	return err
}
