package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func LoadConfig(filePath string) (*Config, error) {
	loadDotEnv()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return nil, fmt.Errorf("config environment error: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv reads .env and, when the Supabase URL is still unknown,
// .env.local. Variables already present in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
	if os.Getenv("SUPABASE_URL") == "" && os.Getenv("NEXT_PUBLIC_SUPABASE_URL") == "" {
		_ = godotenv.Load(".env.local")
	}
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := firstNonEmpty(getenv("SUPABASE_URL"), getenv("NEXT_PUBLIC_SUPABASE_URL")); v != "" {
		cfg.Storage.URL = v
	}
	if v := getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		cfg.Storage.ServiceKey = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := getenv("MAX_JOBS_PER_SOURCE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_JOBS_PER_SOURCE %q: %w", v, err)
		}
		cfg.Runner.LimitPerSource = n
		cfg.Rod.MaxJobs = n
	}
	if v := getenv("DRY_RUN"); v != "" {
		cfg.Runner.DryRun = strings.EqualFold(v, "true") || v == "1"
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
