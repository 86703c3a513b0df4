package storage

import (
	"context"
	"errors"
	"sort"
)

// ErrMissingCredentials is returned when a sink has no URL, key or DSN.
var ErrMissingCredentials = errors.New("missing database credentials")

// Record is one row as read back from the NDJSON file.
type Record map[string]any

// Table names a destination table and the column upserts conflict on.
type Table struct {
	Name        string
	ConflictKey string
}

var (
	RemoteTable = Table{Name: "jobs", ConflictKey: "stable_key"}
	HybridTable = Table{Name: "hybrid_jobs", ConflictKey: "external_id"}
)

// Counts are row totals reported by the check command.
type Counts struct {
	Jobs           int
	HybridJobs     int
	HybridBySource map[string]int
}

// Repository is a destination for normalized postings
type Repository interface {
	// Upsert inserts or updates rows keyed by table.ConflictKey and returns
	// the number of rows written.
	Upsert(ctx context.Context, table Table, rows []Record) (int, error)

	// Counts reports row totals for both tables.
	Counts(ctx context.Context) (*Counts, error)

	Close() error
}

// Columns returns the sorted union of keys across rows.
func Columns(rows []Record) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
