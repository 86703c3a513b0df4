package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sourcesYAML = `
defaults:
  timeout_sec: 20
  rate_limit_per_host: 2
sources:
  - id: remotive
    kind: api
    url: https://remotive.com/api/remote-jobs
    mapping:
      list_path: jobs
      fields:
        title: title
    derive:
      remote_type: REMOTE
  - id: infostud
    kind: html
    start_url: https://poslovi.infostud.com/oglasi-za-posao
    timeout: 5
    rate_limit: 0
    html:
      selectors:
        item: div.job
        title: ["h2 a", ".title"]
      pagination:
        type: path
        pattern: /strana/{page}
  - id: disabled
    enabled: false
    kind: rss
    url: https://example.com/feed
`

func TestLoadSources(t *testing.T) {
	sf, err := LoadSources(writeFile(t, "jobsites.yaml", sourcesYAML))
	require.NoError(t, err)
	require.Len(t, sf.Sources, 3)

	infostud := sf.Sources[1]
	assert.Equal(t, "div.job", infostud.HTML.Selectors["item"][0])
	assert.Len(t, infostud.HTML.Selectors["title"], 2)
	assert.Equal(t, PaginationPath, infostud.HTML.Pagination.Type)
	assert.Equal(t, "https://poslovi.infostud.com/oglasi-za-posao", infostud.EntryURL())
	assert.Equal(t, RemoteTypeUnknown, infostud.RemoteType())
	assert.Equal(t, "GLOBAL", infostud.Region())
	assert.Equal(t, "infostud", infostud.DisplayName())
	assert.False(t, sf.Sources[2].IsEnabled())
}

func TestLoadSourcesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown kind", "sources:\n  - id: a\n    kind: ftp\n    url: https://a.example\n"},
		{"missing id", "sources:\n  - kind: api\n    url: https://a.example\n"},
		{"api without url", "sources:\n  - id: a\n    kind: api\n"},
		{"html without url", "sources:\n  - id: a\n    kind: html\n"},
		{"duplicate id", "sources:\n  - id: a\n    kind: rss\n    url: https://a.example\n  - id: a\n    kind: rss\n    url: https://b.example\n"},
		{"bad remote type", "sources:\n  - id: a\n    kind: rss\n    url: https://a.example\n    derive:\n      remote_type: SOMETIMES\n"},
		{"bad pagination", "sources:\n  - id: a\n    kind: html\n    url: https://a.example\n    html:\n      pagination:\n        type: cursor\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSources(writeFile(t, "jobsites.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadSourcesEmpty(t *testing.T) {
	_, err := LoadSources(writeFile(t, "jobsites.yaml", "defaults:\n  timeout_sec: 10\n"))
	assert.True(t, errors.Is(err, ErrNoSources))
}

func TestSelect(t *testing.T) {
	sf, err := LoadSources(writeFile(t, "jobsites.yaml", sourcesYAML))
	require.NoError(t, err)

	ids := func(srcs []Source) []string {
		var out []string
		for _, s := range srcs {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"remotive", "infostud"}, ids(sf.Select(nil, true)))
	assert.Equal(t, []string{"remotive", "infostud", "disabled"}, ids(sf.Select(nil, false)))
	assert.Equal(t, []string{"remotive", "infostud"}, ids(sf.Select([]string{" infostud", "remotive", ""}, true)))
	assert.Empty(t, sf.Select([]string{"disabled"}, true))
	assert.Empty(t, sf.Select([]string{"nope"}, false))
}

func TestTimeoutAndPause(t *testing.T) {
	sf, err := LoadSources(writeFile(t, "jobsites.yaml", sourcesYAML))
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, sf.Timeout(sf.Sources[0]))
	assert.Equal(t, 5*time.Second, sf.Timeout(sf.Sources[1]))
	assert.Equal(t, 30*time.Second, (&SourceFile{}).Timeout(Source{}))

	assert.Equal(t, 500*time.Millisecond, sf.Pause(sf.Sources[0]))
	assert.Zero(t, sf.Pause(sf.Sources[1]))
	assert.Equal(t, time.Second, (&SourceFile{}).Pause(Source{}))
}

func TestPaginationNormalized(t *testing.T) {
	p := Pagination{}.Normalized()
	assert.Equal(t, PaginationQueryParam, p.Type)
	assert.Equal(t, "page", p.Param)
	assert.Equal(t, 1, p.StartPage())
	assert.Equal(t, 1, p.MaxPages)
	assert.Equal(t, 1, p.Step)

	zero := 0
	p = Pagination{Start: &zero, MaxPages: 4, Step: 20}.Normalized()
	assert.Equal(t, 0, p.StartPage())
	assert.Equal(t, 4, p.MaxPages)
	assert.Equal(t, 20, p.Step)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NEXT_PUBLIC_SUPABASE_URL":  "https://abc.supabase.co",
		"SUPABASE_SERVICE_ROLE_KEY": "secret",
		"STORAGE_DRIVER":            "postgres",
		"DATABASE_URL":              "postgres://localhost/jobs",
		"MAX_JOBS_PER_SOURCE":       "25",
		"DRY_RUN":                   "TRUE",
	}
	cfg := &Config{}
	require.NoError(t, ApplyEnv(cfg, func(k string) string { return env[k] }))

	assert.Equal(t, "https://abc.supabase.co", cfg.Storage.URL)
	assert.Equal(t, "secret", cfg.Storage.ServiceKey)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/jobs", cfg.Storage.DSN)
	assert.Equal(t, 25, cfg.Runner.LimitPerSource)
	assert.Equal(t, 25, cfg.Rod.MaxJobs)
	assert.True(t, cfg.Runner.DryRun)

	env = map[string]string{"MAX_JOBS_PER_SOURCE": "lots"}
	assert.Error(t, ApplyEnv(&Config{}, func(k string) string { return env[k] }))
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MAX_JOBS_PER_SOURCE", "")
	t.Setenv("DRY_RUN", "")

	cfg, err := LoadConfig(writeFile(t, "config.yaml", "runner:\n  max_duration_s: 60\n"))
	require.NoError(t, err)

	assert.Equal(t, "configs/jobsites.yaml", cfg.SourcesFile)
	assert.Equal(t, DriverPostgREST, cfg.Storage.Driver)
	assert.Equal(t, 100, cfg.Storage.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.GetPageDelay())
	assert.Equal(t, time.Minute, cfg.GetMaxDuration())
	assert.Equal(t, "https://abc.supabase.co", cfg.Storage.URL)
}

func TestValidateRejectsBadDriver(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: "sqlite"}}
	cfg.ApplyDefaults()
	assert.Error(t, cfg.Validate())
}
