package trustwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/trustwatch/trustwatch/dashboard"
	"github.com/trustwatch/trustwatch/internal/fetcher"
	"github.com/trustwatch/trustwatch/internal/server"
	"github.com/trustwatch/trustwatch/internal/store"
	"github.com/trustwatch/trustwatch/internal/syncer"
)

const (
	defaultSyncInterval = 60 * time.Minute
	defaultFetchTimeout = 10 * time.Second
	defaultPort         = 8080
)

// App is the main orchestrator for watchlist syncing and serving.
//
// App wires the sync coordinator, the periodic scheduler, persistence,
// and the HTTP command surface together. It is created using [New]
// with functional options and run with [App.Start].
//
// The typical lifecycle is:
//
//	tw, err := trustwatch.New(trustwatch.WithSource(src))
//	if err != nil {
//	    slog.Error("failed to create trustwatch", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	tw.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the
// context to trigger graceful shutdown.
type App struct {
	sources      []Source
	fetchTimeout time.Duration
	port         int
	dataPath     string
	fallback     []WatchlistEntry
	logger       *slog.Logger

	mu           sync.Mutex
	syncInterval time.Duration
	scheduler    *syncer.Scheduler
	runningStore store.Store
}

// New creates a new [App] instance with the given options.
//
// At least one source must be configured via [WithSource] or
// [WithSources], and source URLs must be unique. Other options have
// sensible defaults:
//   - Sync interval: 60 minutes
//   - Fetch timeout: 10 seconds
//   - Port: 8080
//   - Fallback entries: [DefaultFallbackEntries]
//   - Storage: in-memory (see [WithDataPath] for durable state)
//
// Returns an error if no sources are configured or if any option is
// invalid.
func New(opts ...Option) (*App, error) {
	cfg := &twConfig{
		syncInterval: defaultSyncInterval,
		fetchTimeout: defaultFetchTimeout,
		port:         defaultPort,
		fallback:     DefaultFallbackEntries,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.sources) == 0 {
		return nil, errors.New("at least one source is required")
	}

	// source identity is the URL; duplicates would corrupt per-source
	// snapshot bookkeeping
	seen := make(map[string]bool, len(cfg.sources))
	for _, src := range cfg.sources {
		if src.URL == "" {
			return nil, errors.New("source url cannot be empty")
		}
		if seen[src.URL] {
			return nil, fmt.Errorf("duplicate source url: %q", src.URL)
		}
		seen[src.URL] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		sources:      cfg.sources,
		syncInterval: cfg.syncInterval,
		fetchTimeout: cfg.fetchTimeout,
		port:         cfg.port,
		dataPath:     cfg.dataPath,
		fallback:     cfg.fallback,
		logger:       logger,
	}, nil
}

// Start runs the daemon: periodic sync cycles plus the HTTP dashboard
// and API.
//
// Start is a blocking call that runs until the provided context is
// cancelled. During execution:
//
//   - A sync cycle runs immediately, then at the configured interval
//   - The HTTP server serves the dashboard and API on the configured port
//   - Source mutations through the API trigger fresh cycles
//
// Returns nil on graceful shutdown. Returns an error if storage cannot
// be opened or the HTTP server fails to start.
func (a *App) Start(ctx context.Context) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seedSources(st, a.sources); err != nil {
		return err
	}

	client := fetcher.NewClient()
	defer client.Close()

	coordinator := syncer.NewCoordinator(st, client, a.fetchTimeout, toStoreEntries(a.fallback), a.logger)
	scheduler := syncer.NewScheduler(coordinator, a.SyncInterval(), a.logger)
	manager := syncer.NewSourceManager(st, scheduler.TriggerSync, a.logger)

	a.mu.Lock()
	a.scheduler = scheduler
	a.runningStore = st
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.scheduler = nil
		a.runningStore = nil
		a.mu.Unlock()
	}()

	a.logger.Info("trustwatch starting",
		"sources", len(a.sources),
		"sync_interval", a.SyncInterval().String(),
	)
	a.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", a.port))

	if ctx.Err() != nil {
		return nil
	}

	scheduler.Start(ctx)

	srv := server.NewServer(server.Config{
		Store:        st,
		Sources:      manager,
		Trigger:      scheduler,
		Scan:         scanStored,
		SyncInterval: a.SyncInterval,
		Port:         a.port,
		Assets:       dashboard.Assets,
		Logger:       a.logger,
	})
	if err := srv.Start(ctx); err != nil {
		scheduler.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	scheduler.Stop()
	a.logger.Info("trustwatch stopped")
	return nil
}

// SyncOnce runs a single sync cycle and returns the terminal status.
//
// SyncOnce is self-contained: it opens storage, runs the cycle, and
// releases resources. It is intended for one-shot CLI use and does not
// require [App.Start].
func (a *App) SyncOnce(ctx context.Context) (SyncStatus, error) {
	st, err := a.openStore()
	if err != nil {
		return SyncStatus{}, err
	}
	defer st.Close()

	if err := seedSources(st, a.sources); err != nil {
		return SyncStatus{}, err
	}

	client := fetcher.NewClient()
	defer client.Close()

	coordinator := syncer.NewCoordinator(st, client, a.fetchTimeout, toStoreEntries(a.fallback), a.logger)
	return fromStoreStatus(coordinator.Sync(ctx)), nil
}

// CheckURL matches a candidate URL against the persisted watchlist and
// returns the matching entries.
//
// Like [App.SyncOnce], CheckURL is self-contained and reads whatever
// watchlist was last persisted, possibly by another process.
func (a *App) CheckURL(rawURL string) ([]WatchlistEntry, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	watchlist, err := st.Watchlist()
	if err != nil {
		return nil, err
	}

	hostname := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		hostname = u.Hostname()
	}
	return fromStoreEntries(scanStored(rawURL, hostname, watchlist)), nil
}

// TriggerSync requests an immediate sync cycle from a running App.
// A no-op when the App is not running.
func (a *App) TriggerSync() {
	a.mu.Lock()
	scheduler := a.scheduler
	a.mu.Unlock()

	if scheduler != nil {
		scheduler.TriggerSync()
	}
}

// SyncInterval returns the currently configured sync interval.
func (a *App) SyncInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.syncInterval
}

// SetSyncInterval reschedules the periodic sync trigger.
//
// Intended for configuration reloads while the App is running.
// Non-positive intervals are ignored.
func (a *App) SetSyncInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	a.mu.Lock()
	changed := a.syncInterval != d
	a.syncInterval = d
	scheduler := a.scheduler
	a.mu.Unlock()

	if changed && scheduler != nil {
		scheduler.SetInterval(d)
	}
}

// UpdateSources merges a freshly loaded source configuration into the
// running App's stored source list and triggers a sync cycle.
//
// The merge is by URL: new sources are appended, existing sources take
// the configuration's name, enabled flag, and credential while keeping
// their cache token, and sources added at runtime through the API are
// left untouched. A no-op when the App is not running.
func (a *App) UpdateSources(sources []Source) error {
	a.mu.Lock()
	st := a.runningStore
	scheduler := a.scheduler
	a.mu.Unlock()

	if st == nil {
		return nil
	}
	if err := seedSources(st, sources); err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.TriggerSync()
	}
	return nil
}

// Port returns the configured HTTP port.
func (a *App) Port() int {
	return a.port
}

// openStore opens the configured storage backend.
func (a *App) openStore() (store.Store, error) {
	if a.dataPath == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.OpenSQLite(a.dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// seedSources merges the configured source list into storage.
//
// Configured sources are upserted by URL: missing ones are appended in
// configuration order, existing ones take the configured name, enabled
// flag, and credential while keeping their cache token. Sources
// present only in storage (added at runtime) are preserved.
func seedSources(st store.Store, configured []Source) error {
	stored, err := st.Sources()
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	byURL := make(map[string]int, len(stored))
	for i, src := range stored {
		byURL[src.URL] = i
	}

	changed := false
	for _, src := range configured {
		if i, ok := byURL[src.URL]; ok {
			if stored[i].Name != src.Name || stored[i].Enabled != src.Enabled || stored[i].AuthToken != src.AuthToken {
				stored[i].Name = src.Name
				stored[i].Enabled = src.Enabled
				stored[i].AuthToken = src.AuthToken
				changed = true
			}
			continue
		}
		stored = append(stored, store.Source{
			URL:       src.URL,
			Name:      src.Name,
			Enabled:   src.Enabled,
			AuthToken: src.AuthToken,
		})
		changed = true
	}

	if !changed {
		return nil
	}
	if err := st.SaveSources(stored); err != nil {
		return fmt.Errorf("save sources: %w", err)
	}
	return nil
}

// scanStored is the storage-typed scan function injected into the
// HTTP server.
func scanStored(currentURL, currentHostname string, watchlist []store.Entry) []store.Entry {
	var matched []store.Entry
	for _, entry := range watchlist {
		if entry.Address == "" {
			continue
		}
		if Matches(currentURL, entry.Address) || Matches(currentHostname, entry.Address) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// toStoreEntries converts public entries to their storage form.
func toStoreEntries(entries []WatchlistEntry) []store.Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]store.Entry, len(entries))
	for i, e := range entries {
		out[i] = store.Entry{
			Address:          e.Address,
			ShortRemark:      e.ShortRemark,
			NoteText:         e.NoteText,
			Source:           e.Source,
			OriginSourceURL:  e.OriginSourceURL,
			OriginSourceName: e.OriginSourceName,
			Synthetic:        e.Synthetic,
		}
	}
	return out
}

// fromStoreEntries converts storage entries to their public form.
func fromStoreEntries(entries []store.Entry) []WatchlistEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]WatchlistEntry, len(entries))
	for i, e := range entries {
		out[i] = WatchlistEntry{
			Address:          e.Address,
			ShortRemark:      e.ShortRemark,
			NoteText:         e.NoteText,
			Source:           e.Source,
			OriginSourceURL:  e.OriginSourceURL,
			OriginSourceName: e.OriginSourceName,
			Synthetic:        e.Synthetic,
		}
	}
	return out
}

// fromStoreStatus converts a storage status to its public form.
func fromStoreStatus(status store.SyncStatus) SyncStatus {
	return SyncStatus{
		LastSync:   status.LastSync,
		State:      SyncState(status.State),
		Message:    status.Message,
		EntryCount: status.EntryCount,
	}
}
