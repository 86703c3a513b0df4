package mssql

import (
	"errors"
	"strings"
	"testing"
	"time"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

func TestMergeSQL(t *testing.T) {
	got := mergeSQL(storage.HybridTable, []string{"external_id", "title"})

	wantParts := []string{
		"MERGE INTO [hybrid_jobs] WITH (HOLDLOCK) AS target",
		"USING (SELECT @p0 AS [external_id], @p1 AS [title]) AS source",
		"ON target.[external_id] = source.[external_id]",
		"UPDATE SET target.[title] = source.[title]",
		"INSERT ([external_id], [title])",
		"VALUES (source.[external_id], source.[title]);",
	}
	for _, part := range wantParts {
		if !strings.Contains(got, part) {
			t.Errorf("mergeSQL() missing %q in:\n%s", part, got)
		}
	}
	if strings.Contains(got, "target.[external_id] = source.[external_id],") {
		t.Errorf("conflict key must not be updated:\n%s", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("odd]name"); got != "[odd]]name]" {
		t.Errorf("quoteIdent() = %q", got)
	}
}

func TestSQLValue(t *testing.T) {
	v, err := sqlValue([]any{"go", "sql"})
	if err != nil {
		t.Fatal(err)
	}
	if v != `["go","sql"]` {
		t.Errorf("sqlValue(list) = %v", v)
	}

	v, err = sqlValue(map[string]any{"id": float64(1)})
	if err != nil {
		t.Fatal(err)
	}
	if v != `{"id":1}` {
		t.Errorf("sqlValue(map) = %v", v)
	}

	if v, _ := sqlValue("plain"); v != "plain" {
		t.Errorf("sqlValue(string) = %v", v)
	}
}

func TestNewRepositoryRequiresDSN(t *testing.T) {
	_, err := NewRepository("", time.Second, observability.NewNop())
	if !errors.Is(err, storage.ErrMissingCredentials) {
		t.Errorf("NewRepository() error = %v, want ErrMissingCredentials", err)
	}
}
