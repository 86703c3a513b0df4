package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"remotebalkan-scraper/internal/scraper"
)

// ErrNoSources is returned when a sources file declares nothing to run.
var ErrNoSources = errors.New("no sources configured")

const (
	KindAPI    = "api"
	KindRSS    = "rss"
	KindHTML   = "html"
	KindNextJS = "nextjs"

	RemoteTypeRemote  = "REMOTE"
	RemoteTypeHybrid  = "HYBRID"
	RemoteTypeOnsite  = "ONSITE"
	RemoteTypeUnknown = "UNKNOWN"

	PaginationQueryParam = "query_param"
	PaginationPath       = "path"

	defaultRegion       = "GLOBAL"
	defaultJobKeyPrefix = "SearchJob:"
	defaultTimeoutSec   = 30
	defaultRatePerHost  = 1.0
)

// SourceFile is the declarative list of job sites.
type SourceFile struct {
	Defaults Defaults `yaml:"defaults"`
	Sources  []Source `yaml:"sources" validate:"dive"`
}

type Defaults struct {
	UserAgent        string   `yaml:"user_agent"`
	TimeoutSec       int      `yaml:"timeout_sec" validate:"gte=0"`
	RateLimitPerHost *float64 `yaml:"rate_limit_per_host" validate:"omitempty,gte=0"`
}

type Source struct {
	ID        string       `yaml:"id" validate:"required"`
	Name      string       `yaml:"name"`
	Enabled   *bool        `yaml:"enabled"`
	Kind      string       `yaml:"kind" validate:"required,oneof=api rss html nextjs"`
	URL       string       `yaml:"url" validate:"omitempty,url"`
	StartURL  string       `yaml:"start_url" validate:"omitempty,url"`
	RateLimit *float64     `yaml:"rate_limit" validate:"omitempty,gte=0"`
	Timeout   int          `yaml:"timeout" validate:"gte=0"`
	Mapping   APIMapping   `yaml:"mapping"`
	HTML      HTMLConfig   `yaml:"html"`
	NextJS    NextJSConfig `yaml:"nextjs"`
	Derive    DeriveConfig `yaml:"derive"`
}

// APIMapping maps our field names to paths inside each API item.
type APIMapping struct {
	ListPath string            `yaml:"list_path"`
	Fields   map[string]string `yaml:"fields"`
}

type HTMLConfig struct {
	PreferJSONLD bool                            `yaml:"prefer_jsonld"`
	Selectors    map[string]scraper.SelectorList `yaml:"selectors"`
	Pagination   *Pagination                     `yaml:"pagination" validate:"omitempty"`
}

type NextJSConfig struct {
	ApolloState  bool              `yaml:"apollo_state"`
	JobKeyPrefix string            `yaml:"job_key_prefix"`
	FieldMapping map[string]string `yaml:"field_mapping"`
	Pagination   *Pagination       `yaml:"pagination" validate:"omitempty"`
}

type Pagination struct {
	Type     string `yaml:"type" validate:"omitempty,oneof=query_param path"`
	Param    string `yaml:"param"`
	Pattern  string `yaml:"pattern"`
	Start    *int   `yaml:"start"`
	MaxPages int    `yaml:"max_pages" validate:"gte=0"`
	Step     int    `yaml:"step" validate:"gte=0"`
}

type DeriveConfig struct {
	RemoteType  string `yaml:"remote_type" validate:"omitempty,oneof=REMOTE HYBRID ONSITE UNKNOWN"`
	Region      string `yaml:"region"`
	CountryCode string `yaml:"country_code"`
}

// SourceInfo is the listing row printed by the sources command.
type SourceInfo struct {
	ID         string
	Name       string
	Enabled    bool
	Kind       string
	RemoteType string
	Region     string
	URL        string
}

func LoadSources(filePath string) (*SourceFile, error) {
	if filePath == "" {
		return nil, fmt.Errorf("sources file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close sources file: %v", closeErr)
		}
	}()

	var sf SourceFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	if err := sf.Validate(); err != nil {
		return nil, fmt.Errorf("sources validation error: %w", err)
	}

	return &sf, nil
}

func (sf *SourceFile) Validate() error {
	if len(sf.Sources) == 0 {
		return ErrNoSources
	}

	if err := validator.New().Struct(sf); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(sf.Sources))
	for _, src := range sf.Sources {
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}

		switch src.Kind {
		case KindAPI, KindRSS:
			if src.URL == "" {
				return fmt.Errorf("source %q: url is required for kind %s", src.ID, src.Kind)
			}
		case KindHTML, KindNextJS:
			if src.EntryURL() == "" {
				return fmt.Errorf("source %q: url or start_url is required for kind %s", src.ID, src.Kind)
			}
		}
	}
	return nil
}

// Select returns sources in file order, filtered by id and enabled flag.
func (sf *SourceFile) Select(only []string, skipDisabled bool) []Source {
	var wanted map[string]struct{}
	for _, id := range only {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if wanted == nil {
			wanted = make(map[string]struct{})
		}
		wanted[id] = struct{}{}
	}

	var selected []Source
	for _, src := range sf.Sources {
		if wanted != nil {
			if _, ok := wanted[src.ID]; !ok {
				continue
			}
		}
		if skipDisabled && !src.IsEnabled() {
			continue
		}
		selected = append(selected, src)
	}
	return selected
}

func (sf *SourceFile) List() []SourceInfo {
	infos := make([]SourceInfo, 0, len(sf.Sources))
	for _, src := range sf.Sources {
		infos = append(infos, SourceInfo{
			ID:         src.ID,
			Name:       src.DisplayName(),
			Enabled:    src.IsEnabled(),
			Kind:       src.Kind,
			RemoteType: src.RemoteType(),
			Region:     src.Region(),
			URL:        firstNonEmpty(src.URL, src.StartURL),
		})
	}
	return infos
}

// UserAgent falls back to a generic product token when unset.
func (sf *SourceFile) UserAgent() string {
	if sf.Defaults.UserAgent == "" {
		return "RemoteBalkan/1.0"
	}
	return sf.Defaults.UserAgent
}

// Timeout resolves the request timeout for src.
func (sf *SourceFile) Timeout(src Source) time.Duration {
	sec := src.Timeout
	if sec == 0 {
		sec = sf.Defaults.TimeoutSec
	}
	if sec == 0 {
		sec = defaultTimeoutSec
	}
	return time.Duration(sec) * time.Second
}

// Pause is the sleep after a source finishes: 1/rate_limit seconds.
// A zero rate disables the pause.
func (sf *SourceFile) Pause(src Source) time.Duration {
	rate := defaultRatePerHost
	if sf.Defaults.RateLimitPerHost != nil {
		rate = *sf.Defaults.RateLimitPerHost
	}
	if src.RateLimit != nil {
		rate = *src.RateLimit
	}
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rate)
}

func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s Source) DisplayName() string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}

// EntryURL is the first page to fetch for html and nextjs sources.
func (s Source) EntryURL() string {
	return firstNonEmpty(s.StartURL, s.URL)
}

func (s Source) RemoteType() string {
	if s.Derive.RemoteType == "" {
		return RemoteTypeUnknown
	}
	return s.Derive.RemoteType
}

func (s Source) Region() string {
	if s.Derive.Region == "" {
		return defaultRegion
	}
	return s.Derive.Region
}

func (s Source) JobKeyPrefix() string {
	if s.NextJS.JobKeyPrefix == "" {
		return defaultJobKeyPrefix
	}
	return s.NextJS.JobKeyPrefix
}

// Normalized returns a copy with defaults filled in.
func (p Pagination) Normalized() Pagination {
	if p.Type == "" {
		p.Type = PaginationQueryParam
	}
	if p.Param == "" {
		p.Param = "page"
	}
	if p.Start == nil {
		one := 1
		p.Start = &one
	}
	if p.MaxPages == 0 {
		p.MaxPages = 1
	}
	if p.Step == 0 {
		p.Step = 1
	}
	return p
}

func (p Pagination) StartPage() int {
	if p.Start == nil {
		return 1
	}
	return *p.Start
}
