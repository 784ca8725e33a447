package trustwatch

// Source describes one configured remote feed of watchlist entries.
//
// A Source is identified by its URL, which must be unique within the
// configured source list. Insertion order defines fetch order during a
// sync cycle and therefore the order of entries in the merged watchlist.
type Source struct {
	// URL is the feed endpoint. It is the source's identity.
	URL string `json:"url"`

	// Name is the human-readable display name of the source.
	Name string `json:"name"`

	// Enabled controls whether the source participates in sync cycles.
	// Disabled sources contribute nothing to the merged watchlist.
	Enabled bool `json:"enabled"`

	// CacheToken is the opaque validator (typically an entity tag)
	// returned by the origin on the last successful fetch. It is sent
	// back on the next request so the origin can short-circuit with
	// "not modified". Empty when no token is held.
	CacheToken string `json:"cacheToken,omitempty"`

	// AuthToken is an optional static credential sent as a bearer
	// token with every request to this source.
	AuthToken string `json:"authToken,omitempty"`
}

// WatchlistEntry is one flagged address with its annotations.
//
// Entries are immutable once created; the whole collection for a source
// is replaced atomically on each successful fetch.
type WatchlistEntry struct {
	// Address is the matchable pattern: a bare hostname, a URL
	// fragment, or a wildcard expression. Required; records without
	// an address are discarded during normalization.
	Address string `json:"address"`

	// ShortRemark is the brief warning label shown to the user.
	ShortRemark string `json:"shortRemark"`

	// NoteText is the long-form explanation behind the remark.
	NoteText string `json:"noteText"`

	// Source is the citation backing the remark (typically a URL).
	Source string `json:"source"`

	// OriginSourceURL is the URL of the feed this entry came from.
	OriginSourceURL string `json:"originSourceUrl,omitempty"`

	// OriginSourceName is the display name of the feed this entry
	// came from.
	OriginSourceName string `json:"originSourceName,omitempty"`

	// Synthetic marks entries injected from the built-in fallback set
	// rather than synced from a real feed.
	Synthetic bool `json:"synthetic,omitempty"`
}
