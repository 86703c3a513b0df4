package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

// Repository upserts straight into Postgres (for example the Supabase
// database behind the REST API).
type Repository struct {
	db             *pgxpool.Pool
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: %w: DATABASE_URL is required", storage.ErrMissingCredentials)
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = time.Hour

	// The Supabase pooler runs in transaction mode and cannot keep
	// prepared statements between calls.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{
		db:             pool,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// Upsert sends the whole batch as one JSON document and lets Postgres
// expand it with jsonb_populate_recordset, so column types come from the
// table definition.
func (r *Repository) Upsert(ctx context.Context, table storage.Table, rows []storage.Record) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	payload, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to encode rows: %w", err)
	}

	query := upsertSQL(table, storage.Columns(rows))
	tag, err := r.db.Exec(ctx, query, string(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert into %s: %w", table.Name, err)
	}

	r.logger.Debug("Batch upserted", "table", table.Name, "rows", len(rows), "affected", tag.RowsAffected())
	return len(rows), nil
}

func upsertSQL(table storage.Table, cols []string) string {
	name := pgx.Identifier{table.Name}.Sanitize()
	key := pgx.Identifier{table.ConflictKey}.Sanitize()

	quoted := make([]string, len(cols))
	var updates []string
	for i, col := range cols {
		quoted[i] = pgx.Identifier{col}.Sanitize()
		if col != table.ConflictKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", quoted[i], quoted[i]))
		}
	}
	colList := strings.Join(quoted, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) SELECT %s FROM jsonb_populate_recordset(NULL::%s, $1::jsonb) ON CONFLICT (%s) ",
		name, colList, colList, name, key)
	if len(updates) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET ")
		b.WriteString(strings.Join(updates, ", "))
	}
	return b.String()
}

func (r *Repository) Counts(ctx context.Context) (*storage.Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	batch.Queue(`SELECT count(*) FROM jobs`)
	batch.Queue(`SELECT count(*) FROM hybrid_jobs`)
	batch.Queue(`SELECT coalesce(nullif(source_name, ''), 'unknown'), count(*) FROM hybrid_jobs GROUP BY 1`)

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			r.logger.Warn("Failed to close batch results", "error", err)
		}
	}()

	counts := &storage.Counts{HybridBySource: make(map[string]int)}
	if err := results.QueryRow().Scan(&counts.Jobs); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if err := results.QueryRow().Scan(&counts.HybridJobs); err != nil {
		return nil, fmt.Errorf("failed to count hybrid_jobs: %w", err)
	}

	rows, err := results.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts.HybridBySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}

	return counts, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}
