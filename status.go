package trustwatch

import "time"

// SyncState represents the outcome of the most recent sync cycle.
//
// SyncState is a string type that can hold one of five predefined values:
// [StateUnknown], [StateSyncing], [StateSuccess], [StateError], or
// [StateWarning]. Using a string type allows for easy JSON serialization
// and human-readable logging while maintaining type safety through the
// defined constants.
type SyncState string

const (
	// StateUnknown indicates no sync cycle has completed yet.
	StateUnknown SyncState = "unknown"

	// StateSyncing indicates a sync cycle is currently in flight.
	StateSyncing SyncState = "syncing"

	// StateSuccess indicates the last cycle completed and persisted a
	// merged watchlist, even if individual sources failed.
	StateSuccess SyncState = "success"

	// StateError indicates the last cycle aborted before persisting;
	// the previously persisted watchlist remains authoritative.
	StateError SyncState = "error"

	// StateWarning indicates a non-fatal configuration condition,
	// such as no sources being enabled.
	StateWarning SyncState = "warning"
)

// String returns the string representation of the state.
// This implements the fmt.Stringer interface.
func (s SyncState) String() string {
	return string(s)
}

// SyncStatus is the process-wide record of the last sync outcome.
//
// Exactly one SyncStatus exists; it is overwritten (never appended) on
// every state transition and persisted so it survives restarts.
type SyncStatus struct {
	// LastSync is the time of the last terminal transition (success
	// or error). It is not updated on the syncing transition. Nil
	// when no cycle has reached a terminal state yet.
	LastSync *time.Time `json:"lastSync"`

	// State is the current sync state.
	State SyncState `json:"state"`

	// Message is the human-readable summary of the last transition.
	Message string `json:"message"`

	// EntryCount is the number of entries most recently persisted to
	// the merged watchlist. Zero when no sources are enabled.
	EntryCount int `json:"entryCount"`
}
