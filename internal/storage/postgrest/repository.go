package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	postgrestgo "github.com/supabase-community/postgrest-go"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

const pageSize = 1000

// Repository writes to a Supabase project through its PostgREST endpoint.
type Repository struct {
	client         *postgrestgo.Client
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(baseURL, serviceKey string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("postgrest: %w: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required", storage.ErrMissingCredentials)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("postgrest: invalid url: %w", err)
	}

	client := postgrestgo.NewClient(strings.TrimRight(baseURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": "Bearer " + serviceKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("postgrest: %w", client.ClientError)
	}

	return &Repository{
		client:         client,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// Upsert sends rows as one bulk insert with merge-duplicates resolution on
// table.ConflictKey. PostgREST requires every object in a bulk body to carry
// the same keys, so rows are padded with nulls to the union of their columns.
func (r *Repository) Upsert(ctx context.Context, table storage.Table, rows []storage.Record) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	_, _, err := r.client.From(table.Name).
		Upsert(uniformRows(rows), table.ConflictKey, "minimal", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert into %s: %w", table.Name, asAPIError(err))
	}

	return len(rows), nil
}

func (r *Repository) Counts(ctx context.Context) (*storage.Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	jobs, err := r.count(ctx, storage.RemoteTable)
	if err != nil {
		return nil, err
	}
	hybrid, err := r.count(ctx, storage.HybridTable)
	if err != nil {
		return nil, err
	}
	bySource, err := r.countBySource(ctx)
	if err != nil {
		return nil, err
	}

	return &storage.Counts{Jobs: jobs, HybridJobs: hybrid, HybridBySource: bySource}, nil
}

// count asks for an exact total, which the server reports in Content-Range.
func (r *Repository) count(ctx context.Context, table storage.Table) (int, error) {
	_, total, err := r.client.From(table.Name).
		Select(table.ConflictKey, "exact", false).
		Limit(1, "").
		ExecuteWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table.Name, asAPIError(err))
	}
	return int(total), nil
}

func (r *Repository) countBySource(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for offset := 0; ; offset += pageSize {
		body, _, err := r.client.From(storage.HybridTable.Name).
			Select("source_name", "", false).
			Order("external_id", &postgrestgo.OrderOpts{Ascending: true}).
			Range(offset, offset+pageSize-1, "").
			ExecuteWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sources: %w", asAPIError(err))
		}

		var rows []struct {
			SourceName *string `json:"source_name"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("failed to list sources: %w", err)
		}

		for _, row := range rows {
			name := "unknown"
			if row.SourceName != nil && *row.SourceName != "" {
				name = *row.SourceName
			}
			counts[name]++
		}
		if len(rows) < pageSize {
			r.logger.Debug("Listed hybrid sources", "pages", offset/pageSize+1, "sources", len(counts))
			return counts, nil
		}
	}
}

// Close is a no-op; the client holds no pooled resources of its own.
func (r *Repository) Close() error {
	return nil
}

func uniformRows(rows []storage.Record) []storage.Record {
	cols := storage.Columns(rows)
	out := make([]storage.Record, len(rows))
	for i, row := range rows {
		padded := make(storage.Record, len(cols))
		for _, col := range cols {
			padded[col] = row[col]
		}
		out[i] = padded
	}
	return out
}

// APIError is a PostgREST error response.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return "postgrest: " + e.Message
	}
	return "postgrest (" + e.Code + "): " + e.Message
}

var clientErrorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

// asAPIError turns the client's "(code) message" errors back into an
// APIError. Transport failures pass through unchanged.
func asAPIError(err error) error {
	m := clientErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	return &APIError{Code: m[1], Message: m[2]}
}
