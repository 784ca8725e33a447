package store

import "sync"

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage without durability: all
// state is lost when the process exits. It backs tests and ephemeral
// runs (a daemon configured without a data path).
type MemoryStore struct {
	mu            sync.RWMutex
	sources       []Source
	sourceEntries map[string][]Entry
	watchlist     []Entry
	status        SyncStatus
	hasStatus     bool

	hub statusHub
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when
// done; Close is a no-op.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sourceEntries: make(map[string][]Entry),
	}
}

// Sources returns a copy of the configured source list in order.
func (m *MemoryStore) Sources() ([]Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Source(nil), m.sources...), nil
}

// SaveSources replaces the configured source list.
func (m *MemoryStore) SaveSources(sources []Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append([]Source(nil), sources...)
	return nil
}

// SourceEntries returns the last-known snapshot for a source, or an
// empty slice if none exists.
func (m *MemoryStore) SourceEntries(sourceURL string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.sourceEntries[sourceURL]...), nil
}

// SaveSourceEntries replaces the snapshot for a source.
func (m *MemoryStore) SaveSourceEntries(sourceURL string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceEntries[sourceURL] = append([]Entry(nil), entries...)
	return nil
}

// DeleteSourceEntries removes the snapshot for a source.
func (m *MemoryStore) DeleteSourceEntries(sourceURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sourceEntries, sourceURL)
	return nil
}

// Watchlist returns a copy of the merged watchlist.
func (m *MemoryStore) Watchlist() ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.watchlist...), nil
}

// SaveWatchlist replaces the merged watchlist.
func (m *MemoryStore) SaveWatchlist(entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchlist = append([]Entry(nil), entries...)
	return nil
}

// SyncStatus returns the stored status, or an "unknown" status if none
// has been saved.
func (m *MemoryStore) SyncStatus() (SyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasStatus {
		return SyncStatus{State: "unknown", Message: "not synced yet"}, nil
	}
	return m.status, nil
}

// SaveSyncStatus overwrites the stored status and notifies subscribers.
func (m *MemoryStore) SaveSyncStatus(status SyncStatus) error {
	m.mu.Lock()
	m.status = status
	m.hasStatus = true
	m.mu.Unlock()

	m.hub.notify(status)
	return nil
}

// Subscribe creates a new subscription for status transitions.
func (m *MemoryStore) Subscribe() <-chan SyncStatus {
	return m.hub.subscribe()
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan SyncStatus) {
	m.hub.unsubscribe(ch)
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
