package syncer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/trustwatch/trustwatch/internal/store"
)

// Sentinel errors for source management operations.
var (
	// ErrSourceExists is returned when adding a source whose URL is
	// already configured. The add is a no-op.
	ErrSourceExists = errors.New("source already exists")

	// ErrSourceNotFound is returned when the given URL does not match
	// any configured source.
	ErrSourceNotFound = errors.New("source not found")

	// ErrLastSource is returned when removing the only remaining
	// source. At least one source must always exist.
	ErrLastSource = errors.New("cannot remove the last source")
)

// SourceManager applies add/remove/toggle operations to the configured
// source list.
//
// Every successful mutation triggers a sync cycle, so the merged
// watchlist always reflects the current configuration. Mutations are
// serialized by a mutex; the read-modify-write against the store is
// atomic with respect to other SourceManager calls.
type SourceManager struct {
	store   store.Store
	trigger func()
	logger  *slog.Logger

	mu sync.Mutex
}

// NewSourceManager creates a [SourceManager].
//
// trigger is invoked after every successful mutation to request a sync
// cycle; nil disables triggering (useful in tests).
func NewSourceManager(st store.Store, trigger func(), logger *slog.Logger) *SourceManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceManager{store: st, trigger: trigger, logger: logger}
}

// Add appends a new enabled source to the end of the list.
//
// Returns [ErrSourceExists] (with the unchanged list) when the URL is
// already configured; the list order of existing sources is never
// affected.
func (m *SourceManager) Add(url, name string) ([]store.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := m.store.Sources()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	for _, src := range sources {
		if src.URL == url {
			return sources, ErrSourceExists
		}
	}

	sources = append(sources, store.Source{URL: url, Name: name, Enabled: true})
	if err := m.store.SaveSources(sources); err != nil {
		return nil, fmt.Errorf("save sources: %w", err)
	}

	m.logger.Info("source added", "url", url, "name", name)
	m.requestSync()
	return sources, nil
}

// Remove deletes a source and its persisted entry snapshot.
//
// Returns [ErrLastSource] when exactly one source remains and
// [ErrSourceNotFound] when the URL is not configured.
func (m *SourceManager) Remove(url string) ([]store.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := m.store.Sources()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	idx := -1
	for i, src := range sources {
		if src.URL == url {
			idx = i
			break
		}
	}
	if idx == -1 {
		return sources, ErrSourceNotFound
	}
	if len(sources) == 1 {
		return sources, ErrLastSource
	}

	sources = append(sources[:idx], sources[idx+1:]...)
	if err := m.store.SaveSources(sources); err != nil {
		return nil, fmt.Errorf("save sources: %w", err)
	}
	if err := m.store.DeleteSourceEntries(url); err != nil {
		m.logger.Warn("failed to delete source snapshot", "url", url, "error", err)
	}

	m.logger.Info("source removed", "url", url)
	m.requestSync()
	return sources, nil
}

// Toggle enables or disables a source in place.
//
// Returns [ErrSourceNotFound] when the URL is not configured. Toggling
// a source to its current state still triggers a sync.
func (m *SourceManager) Toggle(url string, enabled bool) ([]store.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := m.store.Sources()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	found := false
	for i := range sources {
		if sources[i].URL == url {
			sources[i].Enabled = enabled
			found = true
			break
		}
	}
	if !found {
		return sources, ErrSourceNotFound
	}

	if err := m.store.SaveSources(sources); err != nil {
		return nil, fmt.Errorf("save sources: %w", err)
	}

	m.logger.Info("source toggled", "url", url, "enabled", enabled)
	m.requestSync()
	return sources, nil
}

func (m *SourceManager) requestSync() {
	if m.trigger != nil {
		m.trigger()
	}
}
