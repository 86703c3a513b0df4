package app

import (
	"context"
	"fmt"

	"remotebalkan-scraper/internal/checksum"
	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

// excludedFields never exist in the table schemas.
var excludedFields = []string{"remote_type", "source"}

type LoadResult struct {
	Read          int
	RemoteRecords int
	HybridRecords int
	Jobs          int
	HybridJobs    int
	FailedBatches int
	Failed        int
}

// Loader upserts NDJSON records into the jobs and hybrid_jobs tables.
type Loader struct {
	repo      storage.Repository
	ids       *checksum.Generator
	batchSize int
	logger    *observability.Logger
}

func NewLoader(repo storage.Repository, batchSize int, logger *observability.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Loader{
		repo:      repo,
		ids:       checksum.NewGenerator(),
		batchSize: batchSize,
		logger:    logger,
	}
}

func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	records, err := storage.LoadNDJSON(path)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Loaded records from file", "path", path, "records", len(records))
	return l.Load(ctx, records)
}

// LoadJobs upserts normalized jobs without going through a file.
func (l *Loader) LoadJobs(ctx context.Context, jobs []storage.Job) (*LoadResult, error) {
	records := make([]storage.Record, 0, len(jobs))
	for _, job := range jobs {
		rec, err := job.Record()
		if err != nil {
			return nil, fmt.Errorf("failed to convert job %s: %w", job.ID(), err)
		}
		records = append(records, rec)
	}
	return l.Load(ctx, records)
}

// Load splits records by table and upserts them batch by batch. A failed
// batch is logged and counted; the remaining batches still run.
func (l *Loader) Load(ctx context.Context, records []storage.Record) (*LoadResult, error) {
	remote, hybrid := SplitByTable(records, l.ids)
	res := &LoadResult{
		Read:          len(records),
		RemoteRecords: len(remote),
		HybridRecords: len(hybrid),
	}

	var err error
	if res.Jobs, err = l.upsert(ctx, storage.RemoteTable, remote, res); err != nil {
		return res, err
	}
	if res.HybridJobs, err = l.upsert(ctx, storage.HybridTable, hybrid, res); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) upsert(ctx context.Context, table storage.Table, records []storage.Record, res *LoadResult) (int, error) {
	total := 0
	for i := 0; i < len(records); i += l.batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		end := min(i+l.batchSize, len(records))
		batch := make([]storage.Record, 0, end-i)
		for _, rec := range records[i:end] {
			batch = append(batch, StripFields(rec))
		}

		n, err := l.repo.Upsert(ctx, table, batch)
		if err != nil {
			res.FailedBatches++
			res.Failed += len(batch)
			l.logger.Error("Batch failed",
				"table", table.Name,
				"batch", i/l.batchSize+1,
				"records", len(batch),
				"error", err.Error(),
			)
			continue
		}
		total += n
		l.logger.Info("Batch upserted", "table", table.Name, "batch", i/l.batchSize+1, "records", n)
	}
	return total, nil
}

// SplitByTable routes records with a stable_key to jobs and everything
// else to hybrid_jobs, filling a missing external_id.
func SplitByTable(records []storage.Record, ids *checksum.Generator) (remote, hybrid []storage.Record) {
	for _, rec := range records {
		if _, ok := rec["stable_key"]; ok {
			remote = append(remote, rec)
			continue
		}
		if _, ok := rec["external_id"]; !ok {
			rec["external_id"] = ids.FallbackExternalID(text(rec, "title"), text(rec, "company_name"), link(rec))
		}
		hybrid = append(hybrid, rec)
	}
	return remote, hybrid
}

// StripFields returns a copy of rec without the columns no table has.
func StripFields(rec storage.Record) storage.Record {
	out := make(storage.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, k := range excludedFields {
		delete(out, k)
	}
	return out
}

// link prefers url and falls back to application_url.
func link(rec storage.Record) string {
	if u := text(rec, "url"); u != "" {
		return u
	}
	return text(rec, "application_url")
}

func text(rec storage.Record, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}
