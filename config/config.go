// Package config provides YAML configuration parsing for TrustWatch.
//
// This package enables running TrustWatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	port: 8080
//	data_path: /var/lib/trustwatch/data.db
//	sync_interval: 60m
//	fetch_timeout: 10s
//
//	sources:
//	  - name: main feed
//	    url: https://feeds.example.com/watchlist
//	    enabled: true
//	    auth_token: ${TRUSTWATCH_FEED_TOKEN:-}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minSyncInterval is the minimum allowed sync interval. This prevents
// accidental DoS of feed origins with overly aggressive polling.
const minSyncInterval = 1 * time.Minute

// minFetchTimeout is the minimum allowed per-source fetch timeout.
const minFetchTimeout = 1 * time.Second

// Config is the root configuration structure for TrustWatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// DataPath is the SQLite database location. Empty means state is
	// kept in memory only and lost on exit.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	DataPath string `yaml:"data_path"`

	// SyncInterval is the time between sync cycles.
	// Accepts duration strings like "30m", "1h". Defaults to 60m.
	SyncInterval Duration `yaml:"sync_interval"`

	// FetchTimeout is the per-source fetch timeout. A source that
	// does not respond in time is treated as failed for that cycle.
	// Defaults to 10s.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// DisableFallback turns off the built-in fallback entries that
	// are injected when a cycle produces an empty merged watchlist.
	DisableFallback bool `yaml:"disable_fallback"`

	// Sources defines the watchlist feeds. At least one is required,
	// and source order defines merge order.
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig defines a single watchlist feed.
type SourceConfig struct {
	// Name is the display name shown in the dashboard and attached
	// to entries as their origin.
	Name string `yaml:"name"`

	// URL is the feed endpoint.
	// Supports environment variable substitution.
	URL string `yaml:"url"`

	// Enabled controls whether the source participates in sync
	// cycles. Defaults to true.
	Enabled *bool `yaml:"enabled"`

	// AuthToken is an optional static bearer credential.
	// Supports environment variable substitution.
	AuthToken string `yaml:"auth_token"`
}

// IsEnabled reports the effective enabled state (default true).
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in DataPath, source URLs, and
// auth tokens. Defaults are applied for Port (8080), SyncInterval
// (60m), and FetchTimeout (10s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = Duration(60 * time.Minute)
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = Duration(10 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the
// config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.SyncInterval.Duration() < minSyncInterval {
		return fmt.Errorf("sync_interval must be at least %s, got %s", minSyncInterval, c.SyncInterval.Duration())
	}
	if c.FetchTimeout.Duration() < minFetchTimeout {
		return fmt.Errorf("fetch_timeout must be at least %s, got %s", minFetchTimeout, c.FetchTimeout.Duration())
	}

	expanded, err := expandEnvVars(c.DataPath)
	if err != nil {
		return fmt.Errorf("data_path: %w", err)
	}
	c.DataPath = expanded

	if len(c.Sources) == 0 {
		return errors.New("at least one source must be defined")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]

		if src.URL == "" {
			return fmt.Errorf("sources[%d]: url is required", i)
		}
		expanded, err := expandEnvVars(src.URL)
		if err != nil {
			return fmt.Errorf("sources[%d] (%s): url: %w", i, src.Name, err)
		}
		src.URL = expanded

		parsedURL, err := url.Parse(src.URL)
		if err != nil {
			return fmt.Errorf("sources[%d] (%s): invalid url: %w", i, src.Name, err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("sources[%d] (%s): url scheme must be http or https, got %q", i, src.Name, parsedURL.Scheme)
		}

		if _, exists := seen[src.URL]; exists {
			return fmt.Errorf("sources[%d] (%s): duplicate source url %q", i, src.Name, src.URL)
		}
		seen[src.URL] = struct{}{}

		expanded, err = expandEnvVars(src.AuthToken)
		if err != nil {
			return fmt.Errorf("sources[%d] (%s): auth_token: %w", i, src.Name, err)
		}
		src.AuthToken = expanded
	}

	return nil
}
