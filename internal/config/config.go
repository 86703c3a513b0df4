package config

import (
	"fmt"
	"time"
)

type Config struct {
	SourcesFile   string              `yaml:"sources_file"`
	Output        OutputConfig        `yaml:"output"`
	HTTP          HttpConfig          `yaml:"http"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Robots        RobotsConfig        `yaml:"robots"`
	Runner        RunnerConfig        `yaml:"runner"`
	Rod           RodConfig           `yaml:"rod"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	TotalTimeoutMS            int    `yaml:"total_timeout_ms"`
	MaxRetries                int    `yaml:"max_retries"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
	AcceptLanguage            string `yaml:"accept_language"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

// RateLimitConfig bounds requests per host inside the fetcher. The pause
// between sources is configured per source in the sources file.
type RateLimitConfig struct {
	RPM   int `yaml:"rpm"`
	Burst int `yaml:"burst"`
}

type RobotsConfig struct {
	Enabled       bool `yaml:"enabled"`
	CacheTTLHours int  `yaml:"cache_ttl_hours"`
}

type RunnerConfig struct {
	LimitPerSource int  `yaml:"limit_per_source"`
	PageDelayMS    int  `yaml:"page_delay_ms"`
	MaxDurationS   int  `yaml:"max_duration_s"`
	DryRun         bool `yaml:"dry_run"`
}

type RodConfig struct {
	ChromePath       string `yaml:"chrome_path"`
	Headless         bool   `yaml:"headless"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
	MaxJobs          int    `yaml:"max_jobs"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	URL              string `yaml:"url"`
	ServiceKey       string `yaml:"service_key"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
	BatchSize        int    `yaml:"batch_size"`
}

type ObservabilityConfig struct {
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverMSSQL     = "mssql"
)

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.SourcesFile == "" {
		c.SourcesFile = "configs/jobsites.yaml"
	}
	if c.Output.Path == "" {
		c.Output.Path = "out/jobs.ndjson"
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "RemoteBalkan/1.0"
	}
	if c.HTTP.TotalTimeoutMS == 0 {
		c.HTTP.TotalTimeoutMS = 30000
	}
	if c.HTTP.MaxIdleConnections == 0 {
		c.HTTP.MaxIdleConnections = 100
	}
	if c.HTTP.MaxIdleConnectionsPerHost == 0 {
		c.HTTP.MaxIdleConnectionsPerHost = 10
	}
	if c.HTTP.IdleConnectionTimeoutS == 0 {
		c.HTTP.IdleConnectionTimeoutS = 90
	}
	if c.Backoff.MinMS == 0 {
		c.Backoff.MinMS = 250
	}
	if c.Backoff.MaxMS == 0 {
		c.Backoff.MaxMS = 4000
	}
	if c.RateLimit.RPM == 0 {
		c.RateLimit.RPM = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
	if c.Robots.CacheTTLHours == 0 {
		c.Robots.CacheTTLHours = 12
	}
	if c.Runner.PageDelayMS == 0 {
		c.Runner.PageDelayMS = 500
	}
	if c.Rod.PageTimeoutS == 0 {
		c.Rod.PageTimeoutS = 60
	}
	if c.Rod.WaitLoadTimeoutS == 0 {
		c.Rod.WaitLoadTimeoutS = 10
	}
	if c.Rod.MaxJobs == 0 {
		c.Rod.MaxJobs = 50
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgREST
	}
	if c.Storage.CommandTimeoutMS == 0 {
		c.Storage.CommandTimeoutMS = 30000
	}
	if c.Storage.BatchSize == 0 {
		c.Storage.BatchSize = 100
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.MaxSizeMB == 0 {
		c.Observability.MaxSizeMB = 10
	}
}

// Validation
func (c *Config) Validate() error {
	if c.SourcesFile == "" {
		return fmt.Errorf("sources_file is required")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.RateLimit.RPM <= 0 {
		return fmt.Errorf("rate_limit.rpm must be > 0")
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit.burst must be > 0")
	}
	if c.Robots.Enabled && c.Robots.CacheTTLHours <= 0 {
		return fmt.Errorf("robots.cache_ttl_hours must be > 0")
	}
	if c.Runner.LimitPerSource < 0 {
		return fmt.Errorf("runner.limit_per_source must be >= 0")
	}
	if c.Runner.PageDelayMS < 0 {
		return fmt.Errorf("runner.page_delay_ms must be >= 0")
	}
	if c.Runner.MaxDurationS < 0 {
		return fmt.Errorf("runner.max_duration_s must be >= 0")
	}
	if c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	if c.Rod.WaitLoadTimeoutS <= 0 {
		return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
	}
	if c.Rod.LazyLoadDelayS < 0 {
		return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
	}
	if c.Rod.MaxJobs <= 0 {
		return fmt.Errorf("rod.max_jobs must be > 0")
	}
	switch c.Storage.Driver {
	case DriverPostgREST, DriverPostgres, DriverMSSQL:
	default:
		return fmt.Errorf("storage.driver must be 'postgrest', 'postgres' or 'mssql'")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Storage.BatchSize <= 0 {
		return fmt.Errorf("storage.batch_size must be > 0")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	return nil
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.Robots.CacheTTLHours) * time.Hour
}

func (c *Config) GetPageDelay() time.Duration {
	return time.Duration(c.Runner.PageDelayMS) * time.Millisecond
}

// GetMaxDuration returns 0 when the run is unbounded.
func (c *Config) GetMaxDuration() time.Duration {
	return time.Duration(c.Runner.MaxDurationS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}
