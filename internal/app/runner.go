package app

import (
	"context"
	"time"

	"remotebalkan-scraper/internal/config"
	"remotebalkan-scraper/internal/normalize"
	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/scraper"
	"remotebalkan-scraper/internal/storage"
)

const (
	StatusOK    = "OK"
	StatusEmpty = "EMPTY"
	StatusError = "ERROR"
)

// SourceFetcher returns the raw records of one source.
type SourceFetcher interface {
	Fetch(ctx context.Context, src config.Source) ([]scraper.RawJob, error)
}

type RunOptions struct {
	Only           []string
	SkipDisabled   bool
	LimitPerSource int
	IncludeRemote  bool
	IncludeHybrid  bool
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		SkipDisabled:  true,
		IncludeRemote: true,
		IncludeHybrid: true,
	}
}

type SourceStats struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Raw        int           `json:"raw"`
	Kept       int           `json:"kept"`
	Duplicates int           `json:"duplicates"`
	Duration   time.Duration `json:"duration"`
	Enabled    bool          `json:"enabled"`
	Error      string        `json:"error,omitempty"`
}

func (s SourceStats) Status() string {
	switch {
	case s.Error != "":
		return StatusError
	case s.Kept == 0:
		return StatusEmpty
	}
	return StatusOK
}

type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type Summary struct {
	Total   int           `json:"total"`
	Remote  int           `json:"remote"`
	Hybrid  int           `json:"hybrid"`
	Onsite  int           `json:"onsite"`
	Sources []SourceStats `json:"sources"`
	Errors  []SourceError `json:"errors"`
}

// Runner walks the configured sources one after another and keeps the
// unique normalized jobs of the last run.
type Runner struct {
	sources    *config.SourceFile
	fetcher    SourceFetcher
	normalizer *normalize.Normalizer
	logger     *observability.Logger

	jobs   []storage.Job
	seen   map[string]struct{}
	stats  []SourceStats
	errors []SourceError
}

func NewRunner(sources *config.SourceFile, fetcher SourceFetcher, normalizer *normalize.Normalizer, logger *observability.Logger) *Runner {
	return &Runner{
		sources:    sources,
		fetcher:    fetcher,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Run collects jobs from the selected sources. A failing source is
// recorded and skipped; only cancellation ends the run early, in which case
// the jobs collected so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, opts RunOptions) ([]storage.Job, error) {
	r.jobs = nil
	r.seen = make(map[string]struct{})
	r.stats = nil
	r.errors = nil

	selected := r.sources.Select(opts.Only, opts.SkipDisabled)
	if len(selected) == 0 {
		r.logger.Warn("No sources selected, nothing to do")
		return nil, nil
	}

	r.logger.Info("Starting scraper run", "sources", len(selected))

	for _, src := range selected {
		if err := ctx.Err(); err != nil {
			return r.jobs, err
		}

		stats, err := r.runSource(ctx, src, opts)
		r.stats = append(r.stats, stats)
		if err != nil && ctx.Err() != nil {
			return r.jobs, ctx.Err()
		}
	}

	s := r.Summary()
	r.logger.Info("Scraper run completed",
		"total", s.Total,
		"remote", s.Remote,
		"hybrid", s.Hybrid,
		"onsite", s.Onsite,
		"errors", len(s.Errors),
	)
	return r.jobs, nil
}

func (r *Runner) runSource(ctx context.Context, src config.Source, opts RunOptions) (SourceStats, error) {
	start := time.Now()
	stats := SourceStats{ID: src.ID, Kind: src.Kind, Enabled: src.IsEnabled()}

	r.logger.Info("Fetching source", "source", src.ID, "kind", src.Kind)
	raws, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		stats.Duration = time.Since(start)
		stats.Error = err.Error()
		r.errors = append(r.errors, SourceError{Source: src.ID, Error: err.Error()})
		r.logger.Error("Source failed", "source", src.ID, "error", err.Error())
		return stats, err
	}

	if opts.LimitPerSource > 0 && len(raws) > opts.LimitPerSource {
		raws = raws[:opts.LimitPerSource]
	}
	stats.Raw = len(raws)

	remote := src.RemoteType() == config.RemoteTypeRemote
	for _, raw := range raws {
		if remote && !opts.IncludeRemote || !remote && !opts.IncludeHybrid {
			continue
		}
		if r.add(r.normalizer.Normalize(src, raw)) {
			stats.Kept++
		} else {
			stats.Duplicates++
		}
	}

	r.logger.Info("Source fetched",
		"source", src.ID,
		"raw", stats.Raw,
		"kept", stats.Kept,
		"duplicates", stats.Duplicates,
	)

	err = sleep(ctx, r.sources.Pause(src))
	stats.Duration = time.Since(start)
	return stats, err
}

// add keeps job unless its id is empty or already seen in this run.
func (r *Runner) add(job storage.Job) bool {
	id := job.ID()
	if id == "" {
		return false
	}
	if _, dup := r.seen[id]; dup {
		return false
	}
	r.seen[id] = struct{}{}
	r.jobs = append(r.jobs, job)
	return true
}

func (r *Runner) Jobs() []storage.Job {
	return r.jobs
}

func (r *Runner) Summary() Summary {
	s := Summary{
		Total:   len(r.jobs),
		Sources: r.stats,
		Errors:  r.errors,
	}
	for _, job := range r.jobs {
		switch job.RemoteType() {
		case config.RemoteTypeRemote:
			s.Remote++
		case config.RemoteTypeHybrid:
			s.Hybrid++
		case config.RemoteTypeOnsite:
			s.Onsite++
		}
	}
	return s
}

// SaveNDJSON writes the jobs of the last run, one per line.
func (r *Runner) SaveNDJSON(path string) error {
	return storage.SaveNDJSON(path, r.jobs)
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
