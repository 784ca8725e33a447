package trustwatch

import (
	"errors"
	"log/slog"
	"time"
)

// twConfig holds mutable state during [App] construction.
type twConfig struct {
	sources      []Source
	syncInterval time.Duration
	fetchTimeout time.Duration
	port         int
	dataPath     string
	fallback     []WatchlistEntry
	logger       *slog.Logger
}

// Option is a function that configures an [App] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*twConfig) error

// WithSource adds a single [Source] to the configured feed list.
//
// Can be called multiple times; source order defines fetch and merge
// order. At least one source must be configured for [New] to succeed.
func WithSource(src Source) Option {
	return func(cfg *twConfig) error {
		cfg.sources = append(cfg.sources, src)
		return nil
	}
}

// WithSources adds multiple [Source] values to the configured feed
// list. Equivalent to calling [WithSource] multiple times.
func WithSources(sources ...Source) Option {
	return func(cfg *twConfig) error {
		cfg.sources = append(cfg.sources, sources...)
		return nil
	}
}

// WithSyncInterval sets how often a sync cycle runs.
//
// Defaults to 60 minutes if not specified.
//
// Returns an error if the duration is zero or negative.
func WithSyncInterval(d time.Duration) Option {
	return func(cfg *twConfig) error {
		if d <= 0 {
			return errors.New("sync interval must be positive")
		}
		cfg.syncInterval = d
		return nil
	}
}

// WithFetchTimeout sets the per-source fetch timeout.
//
// A source that does not respond within the timeout is treated as
// failed for that cycle without affecting its siblings. Defaults to
// 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *twConfig) error {
		if d <= 0 {
			return errors.New("fetch timeout must be positive")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard and API server.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *twConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithDataPath sets the SQLite database location for durable state.
//
// If not specified, all state is kept in memory and lost on exit.
func WithDataPath(path string) Option {
	return func(cfg *twConfig) error {
		cfg.dataPath = path
		return nil
	}
}

// WithFallbackEntries replaces [DefaultFallbackEntries] as the set
// injected when a sync cycle produces an empty merged watchlist.
//
// Entries are stamped Synthetic regardless of the given values, so
// consumers can always tell fallback data from synced data.
func WithFallbackEntries(entries ...WatchlistEntry) Option {
	return func(cfg *twConfig) error {
		marked := make([]WatchlistEntry, len(entries))
		for i, e := range entries {
			e.Synthetic = true
			marked[i] = e
		}
		cfg.fallback = marked
		return nil
	}
}

// WithoutFallback disables fallback injection entirely: an empty sync
// result persists an empty watchlist.
func WithoutFallback() Option {
	return func(cfg *twConfig) error {
		cfg.fallback = nil
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the App.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *twConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
