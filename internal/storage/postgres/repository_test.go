package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"remotebalkan-scraper/internal/observability"
	"remotebalkan-scraper/internal/storage"
)

func TestUpsertSQL(t *testing.T) {
	got := upsertSQL(storage.RemoteTable, []string{"company", "stable_key", "title"})
	want := `INSERT INTO "jobs" ("company", "stable_key", "title") SELECT "company", "stable_key", "title" ` +
		`FROM jsonb_populate_recordset(NULL::"jobs", $1::jsonb) ON CONFLICT ("stable_key") ` +
		`DO UPDATE SET "company" = EXCLUDED."company", "title" = EXCLUDED."title"`
	assert.Equal(t, want, got)
}

func TestUpsertSQLOnlyKey(t *testing.T) {
	got := upsertSQL(storage.HybridTable, []string{"external_id"})
	assert.Contains(t, got, `ON CONFLICT ("external_id") DO NOTHING`)
}

func TestNewRepositoryRequiresDSN(t *testing.T) {
	_, err := NewRepository(context.Background(), "", time.Second, observability.NewNop())
	assert.True(t, errors.Is(err, storage.ErrMissingCredentials))
}
