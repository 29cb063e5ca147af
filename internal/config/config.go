// Package config provides configuration types, defaults and validation for
// sieve.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/tracing"
)

// Config holds all configuration options for sieve.
type Config struct {
	Database     string              `mapstructure:"database"`
	Debug        bool                `mapstructure:"debug"`
	LogPath      string              `mapstructure:"log_path"`
	LogLevel     string              `mapstructure:"log_level"`
	Query        QueryConfig         `mapstructure:"query"`
	Watch        WatchConfig         `mapstructure:"watch"`
	Tracing      tracing.Config      `mapstructure:"tracing"`
	Metrics      MetricsConfig       `mapstructure:"metrics"`
	SavedFilters []SavedFilterConfig `mapstructure:"saved_filters"`
}

// QueryConfig controls how queries are compiled.
type QueryConfig struct {
	// Timezone is the IANA location relative and ISO dates are read in.
	// Empty means the local timezone.
	Timezone string `mapstructure:"timezone"`

	// CacheTTL bounds how long compiled queries and resolved references
	// are reused. Zero disables caching.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// CurrentUser is the login "me" refers to.
	CurrentUser string `mapstructure:"current_user"`

	// WithCurrentUserCriteria allows criteria such as "mentioned me".
	WithCurrentUserCriteria bool `mapstructure:"with_current_user_criteria"`
}

// WatchConfig configures database watching for saved filter notifications.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics, empty to disable.
	Addr string `mapstructure:"addr"`
}

// SavedFilterConfig declares a saved filter in the config file. Declared
// filters are synced into the database on startup.
type SavedFilterConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Entity string `mapstructure:"entity" yaml:"entity"`
	Query  string `mapstructure:"query" yaml:"query"`
	Notify bool   `mapstructure:"notify" yaml:"notify,omitempty"`
}

// Location returns the configured timezone.
func (q QueryConfig) Location() (*time.Location, error) {
	if q.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("query.timezone: %w", err)
	}
	return loc, nil
}

// DefaultDatabasePath returns the default database location.
func DefaultDatabasePath() string {
	return filepath.Join(".sieve", "sieve.db")
}

// DefaultLogPath returns the default debug log location.
func DefaultLogPath() string {
	return filepath.Join(".sieve", "debug.log")
}

// DefaultTracesFilePath returns the default trace file for the "file"
// exporter.
func DefaultTracesFilePath() string {
	return filepath.Join(".sieve", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Database: DefaultDatabasePath(),
		LogPath:  DefaultLogPath(),
		LogLevel: "debug",
		Query: QueryConfig{
			CacheTTL:                5 * time.Minute,
			WithCurrentUserCriteria: true,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Tracing: tr,
	}
}

// Validate checks every section of cfg.
func Validate(cfg Config) error {
	if cfg.Database == "" {
		return errors.New("database is required")
	}
	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	if _, err := cfg.Query.Location(); err != nil {
		return err
	}
	if cfg.Query.CacheTTL < 0 {
		return fmt.Errorf("query.cache_ttl must not be negative, got %s", cfg.Query.CacheTTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return errors.New("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return errors.New("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateSavedFilters checks that every saved filter names a known entity,
// has a unique name within it, and compiles. compile reports the compile
// error of a query for an entity.
func ValidateSavedFilters(filters []SavedFilterConfig, compile func(entity, query string) error) error {
	seen := make(map[string]bool)
	for i, f := range filters {
		if f.Name == "" {
			return fmt.Errorf("saved_filters[%d]: name is required", i)
		}
		if f.Entity == "" {
			return fmt.Errorf("saved_filters[%d] %q: entity is required", i, f.Name)
		}
		key := f.Entity + "/" + f.Name
		if seen[key] {
			return fmt.Errorf("saved_filters[%d]: duplicate filter %q for %s", i, f.Name, f.Entity)
		}
		seen[key] = true
		if err := compile(f.Entity, f.Query); err != nil {
			return fmt.Errorf("saved_filters[%d] %q: %w", i, f.Name, err)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with
// comments.
func DefaultConfigTemplate() string {
	return `# Sieve Configuration

# SQLite database holding records, users, commits and saved filters
database: .sieve/sieve.db

# Write a debug log (also enabled by --debug or SIEVE_DEBUG=1)
debug: false
# log_path: .sieve/debug.log
# log_level: debug        # debug, info, warn or error

query:
  # timezone: Europe/Berlin   # Location for dates (default: local)
  cache_ttl: 5m               # Reuse compiled queries, 0 to disable
  # current_user: alice       # Login that "me" refers to
  with_current_user_criteria: true

watch:
  debounce: 250ms             # Coalesce bursts of database writes

# metrics:
#   addr: ":9090"             # Serve Prometheus metrics from "sieve watch"

# tracing:
#   enabled: true
#   exporter: file            # none, file, stdout or otlp
#   file_path: .sieve/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Saved filters are compiled on startup. Filters with notify: true are
# matched against every saved record by "sieve watch".
# saved_filters:
#   - name: open bugs
#     entity: issue
#     query: '"Status" is "Open" and "Label" is "bug"'
#     notify: true
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
