package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trustwatch/trustwatch/internal/fetcher"
	"github.com/trustwatch/trustwatch/internal/store"
)

// Sync state strings persisted in [store.SyncStatus].
//
// These are the syncer-internal versions of the public trustwatch
// state constants, duplicated to avoid circular dependencies.
const (
	stateSyncing = "syncing"
	stateSuccess = "success"
	stateError   = "error"
	stateWarning = "warning"
)

// Coordinator runs sync cycles against the configured sources.
//
// A cycle fetches each enabled source sequentially, in configured
// order. Sequential fetching is a design choice, not an accident: it
// bounds worst-case load against any single origin, keeps cache-token
// bookkeeping race-free, and keeps failure attribution unambiguous.
// One source's failure never aborts its siblings.
//
// Concurrent Sync calls serialize behind a mutex, so a manual trigger
// racing the periodic trigger cannot interleave storage writes.
type Coordinator struct {
	store    store.Store
	client   *fetcher.Client
	timeout  time.Duration
	fallback []store.Entry
	logger   *slog.Logger

	mu sync.Mutex
}

// NewCoordinator creates a sync [Coordinator].
//
// Parameters:
//   - st: Persistence for sources, snapshots, watchlist, and status
//   - client: Feed fetch client
//   - fetchTimeout: Per-source fetch timeout; expiry is a per-source failure
//   - fallback: Entries injected when a cycle produces an empty merged
//     list; nil disables the fallback
//   - logger: Logger for cycle events
func NewCoordinator(st store.Store, client *fetcher.Client, fetchTimeout time.Duration, fallback []store.Entry, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    st,
		client:   client,
		timeout:  fetchTimeout,
		fallback: fallback,
		logger:   logger,
	}
}

// Sync runs one full cycle and returns the terminal status.
//
// The cycle transitions status to "syncing" before any network I/O,
// processes every enabled source in order, writes cache tokens back in
// a single batch merged against the currently stored source list, and
// finishes with a terminal "success", "warning", or "error" status.
// Any panic escaping the cycle is recovered at this boundary: the
// status becomes "error" with a correlation ID and the previously
// persisted watchlist remains authoritative.
func (c *Coordinator) Sync(ctx context.Context) store.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With("cycle_id", uuid.NewString())
	return c.runCycle(ctx, logger)
}

// runCycle executes cycle steps inside the panic recovery boundary.
func (c *Coordinator) runCycle(ctx context.Context, logger *slog.Logger) (status store.SyncStatus) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sync cycle panic",
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			status = c.transition(stateError, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	start := time.Now()
	c.transition(stateSyncing, "syncing watchlist sources", nil)

	// snapshot the source list for this cycle; user edits made while
	// the cycle is in flight are honored at write-back time
	sources, err := c.store.Sources()
	if err != nil {
		return c.transition(stateError, fmt.Sprintf("load sources: %v", err), nil)
	}

	enabled := make([]store.Source, 0, len(sources))
	for _, src := range sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	if len(enabled) == 0 {
		if err := c.store.SaveWatchlist(nil); err != nil {
			return c.transition(stateError, fmt.Sprintf("clear watchlist: %v", err), nil)
		}
		logger.Warn("no sources enabled, watchlist cleared")
		zero := 0
		return c.transition(stateWarning, "no sources enabled", &zero)
	}

	var merged []store.Entry
	tokens := make(map[string]string)
	failures := 0

	for _, src := range enabled {
		result := c.client.Fetch(ctx, fetcher.Source{
			URL:        src.URL,
			Name:       src.Name,
			CacheToken: src.CacheToken,
			AuthToken:  src.AuthToken,
		}, c.timeout)

		switch result.Outcome {
		case fetcher.OutcomeUnchanged:
			cached, err := c.store.SourceEntries(src.URL)
			if err != nil {
				logger.Warn("source snapshot unavailable", "source", src.URL, "error", err)
				failures++
				continue
			}
			merged = append(merged, cached...)
			logger.Debug("source unchanged", "source", src.URL, "entries", len(cached))

		case fetcher.OutcomeUpdated:
			entries := toStoreEntries(result.Entries)
			if err := c.store.SaveSourceEntries(src.URL, entries); err != nil {
				logger.Warn("source snapshot write failed", "source", src.URL, "error", err)
				failures++
				continue
			}
			merged = append(merged, entries...)
			tokens[src.URL] = result.CacheToken
			logger.Debug("source updated", "source", src.URL, "entries", len(entries))

		case fetcher.OutcomeFailed:
			logger.Warn("source fetch failed",
				"source", src.URL,
				"status_code", result.StatusCode,
				"error", result.Err,
			)
			failures++
		}
	}

	if err := c.writeBackTokens(tokens); err != nil {
		return c.transition(stateError, fmt.Sprintf("persist cache tokens: %v", err), nil)
	}

	if len(merged) == 0 && len(c.fallback) > 0 {
		logger.Info("merged watchlist empty, injecting fallback entries", "entries", len(c.fallback))
		merged = append([]store.Entry(nil), c.fallback...)
	}

	if err := c.store.SaveWatchlist(merged); err != nil {
		return c.transition(stateError, fmt.Sprintf("persist watchlist: %v", err), nil)
	}

	logger.Info("sync complete",
		"entries", len(merged),
		"sources", len(enabled),
		"failed_sources", failures,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	count := len(merged)
	return c.transition(stateSuccess, "data synced successfully", &count)
}

// writeBackTokens persists updated cache tokens in one batch, merged by
// URL against the currently stored source list rather than the cycle's
// snapshot. This avoids clobbering add/remove/toggle edits made while
// the cycle was in flight.
func (c *Coordinator) writeBackTokens(tokens map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	current, err := c.store.Sources()
	if err != nil {
		return err
	}

	changed := false
	for i := range current {
		if token, ok := tokens[current[i].URL]; ok && current[i].CacheToken != token {
			current[i].CacheToken = token
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.store.SaveSources(current)
}

// transition overwrites the persisted sync status.
//
// The timestamp is stamped only on terminal transitions (success or
// error), never on syncing. A nil entryCount preserves the previous
// count, matching the overwrite-in-place status model.
func (c *Coordinator) transition(state, message string, entryCount *int) store.SyncStatus {
	status, err := c.store.SyncStatus()
	if err != nil {
		status = store.SyncStatus{}
	}

	status.State = state
	status.Message = message
	if state == stateSuccess || state == stateError {
		now := time.Now().UTC()
		status.LastSync = &now
	}
	if entryCount != nil {
		status.EntryCount = *entryCount
	}

	if err := c.store.SaveSyncStatus(status); err != nil {
		c.logger.Error("failed to persist sync status", "error", err)
	}
	return status
}

// toStoreEntries converts fetcher entries to their storage form.
func toStoreEntries(entries []fetcher.Entry) []store.Entry {
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
		}
	}
	return out
}
