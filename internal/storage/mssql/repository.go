package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mssql: %w: DATABASE_URL is required", storage.ErrMissingCredentials)
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// Upsert runs one MERGE per row inside a single transaction.
func (r *Repository) Upsert(ctx context.Context, table storage.Table, rows []storage.Record) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			r.logger.Error("Failed to roll back", "table", table.Name, "error", err.Error())
		}
	}()

	for i, row := range rows {
		cols := storage.Columns([]storage.Record{row})
		if _, ok := row[table.ConflictKey]; !ok {
			return 0, fmt.Errorf("row %d has no %s", i, table.ConflictKey)
		}

		args := make([]any, len(cols))
		for j, col := range cols {
			value, err := sqlValue(row[col])
			if err != nil {
				return 0, fmt.Errorf("row %d column %s: %w", i, col, err)
			}
			args[j] = sql.Named(fmt.Sprintf("p%d", j), value)
		}

		if _, err := tx.ExecContext(ctx, mergeSQL(table, cols), args...); err != nil {
			return 0, fmt.Errorf("failed to execute upsert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(rows), nil
}

func mergeSQL(table storage.Table, cols []string) string {
	selects := make([]string, len(cols))
	quoted := make([]string, len(cols))
	sources := make([]string, len(cols))
	var updates []string
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		selects[i] = fmt.Sprintf("@p%d AS %s", i, quoted[i])
		sources[i] = "source." + quoted[i]
		if col != table.ConflictKey {
			updates = append(updates, fmt.Sprintf("target.%s = source.%s", quoted[i], quoted[i]))
		}
	}
	key := quoteIdent(table.ConflictKey)

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE INTO %s WITH (HOLDLOCK) AS target\n", quoteIdent(table.Name))
	fmt.Fprintf(&b, "USING (SELECT %s) AS source\n", strings.Join(selects, ", "))
	fmt.Fprintf(&b, "ON target.%s = source.%s\n", key, key)
	if len(updates) > 0 {
		fmt.Fprintf(&b, "WHEN MATCHED THEN\n\tUPDATE SET %s\n", strings.Join(updates, ", "))
	}
	fmt.Fprintf(&b, "WHEN NOT MATCHED THEN\n\tINSERT (%s)\n\tVALUES (%s);", strings.Join(quoted, ", "), strings.Join(sources, ", "))
	return b.String()
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// sqlValue stores nested JSON (raw, skills) as NVARCHAR text.
func sqlValue(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any, []string:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
	return v, nil
}

func (r *Repository) Counts(ctx context.Context) (*storage.Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	counts := &storage.Counts{HybridBySource: make(map[string]int)}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM [jobs]`).Scan(&counts.Jobs); err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM [hybrid_jobs]`).Scan(&counts.HybridJobs); err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF([source_name], ''), 'unknown') AS source, COUNT(*)
		FROM [hybrid_jobs]
		GROUP BY COALESCE(NULLIF([source_name], ''), 'unknown')`)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err.Error())
		}
	}()

	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts.HybridBySource[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return counts, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
