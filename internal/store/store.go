package store

import "time"

// Source is the storage representation of a configured feed.
//
// Source is decoupled from the public trustwatch.Source type to allow
// independent evolution of the storage schema and to avoid circular
// dependencies. Ordering of the persisted list is significant: it
// defines fetch order and therefore merge order.
type Source struct {
	// URL is the feed endpoint and the source's identity.
	URL string `json:"url"`

	// Name is the display name of the source.
	Name string `json:"name"`

	// Enabled controls participation in sync cycles.
	Enabled bool `json:"enabled"`

	// CacheToken is the validator returned by the origin on the last
	// successful fetch. Empty when no token is held.
	CacheToken string `json:"cacheToken,omitempty"`

	// AuthToken is the optional static bearer credential for this
	// source.
	AuthToken string `json:"authToken,omitempty"`
}

// Entry is the storage representation of one watchlist entry.
type Entry struct {
	// Address is the matchable pattern. Always non-empty in storage;
	// records without an address are dropped before persistence.
	Address string `json:"address"`

	// ShortRemark is the brief warning label.
	ShortRemark string `json:"shortRemark"`

	// NoteText is the long-form explanation.
	NoteText string `json:"noteText"`

	// Source is the citation backing the remark.
	Source string `json:"source"`

	// OriginSourceURL is the URL of the feed this entry came from.
	OriginSourceURL string `json:"originSourceUrl,omitempty"`

	// OriginSourceName is the display name of that feed.
	OriginSourceName string `json:"originSourceName,omitempty"`

	// Synthetic marks built-in fallback entries.
	Synthetic bool `json:"synthetic,omitempty"`
}

// SyncStatus is the storage representation of the last sync outcome.
type SyncStatus struct {
	// LastSync is the time of the last terminal transition. Nil when
	// no cycle has reached a terminal state.
	LastSync *time.Time `json:"lastSync"`

	// State is the sync state as a string (e.g., "success", "error").
	State string `json:"state"`

	// Message is the human-readable summary of the last transition.
	Message string `json:"message"`

	// EntryCount is the size of the most recently persisted merged
	// watchlist.
	EntryCount int `json:"entryCount"`
}

// Store defines the persistence interface for TrustWatch state.
//
// Implementations must be safe for concurrent access. Writes have
// last-writer-wins semantics; callers that need read-modify-write
// atomicity across calls (such as the sync coordinator's cache-token
// write-back) must re-read and merge rather than blindly overwrite.
type Store interface {
	// Sources returns the configured source list in insertion order.
	Sources() ([]Source, error)

	// SaveSources replaces the configured source list, preserving the
	// order of the given slice.
	SaveSources(sources []Source) error

	// SourceEntries returns the last-known entry snapshot for a
	// source. A source that has never fetched successfully yields an
	// empty slice, not an error.
	SourceEntries(sourceURL string) ([]Entry, error)

	// SaveSourceEntries atomically replaces the entry snapshot for a
	// source.
	SaveSourceEntries(sourceURL string, entries []Entry) error

	// DeleteSourceEntries removes the entry snapshot for a source.
	// Deleting a snapshot that does not exist is a no-op.
	DeleteSourceEntries(sourceURL string) error

	// Watchlist returns the most recently persisted merged watchlist.
	Watchlist() ([]Entry, error)

	// SaveWatchlist atomically replaces the merged watchlist.
	SaveWatchlist(entries []Entry) error

	// SyncStatus returns the persisted sync status. A store that has
	// never seen a status returns a zero-value status with state
	// "unknown".
	SyncStatus() (SyncStatus, error)

	// SaveSyncStatus overwrites the persisted sync status and
	// notifies all subscribers.
	SaveSyncStatus(status SyncStatus) error

	// Subscribe returns a channel that receives every status
	// transition. The channel is buffered; slow consumers may miss
	// updates. Caller must call Unsubscribe when done.
	Subscribe() <-chan SyncStatus

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan SyncStatus)

	// Close releases any resources held by the store.
	Close() error
}
