package trustwatch

// Scan returns every watchlist entry whose address matches either the
// full candidate URL or the bare hostname.
//
// Scan is a pure function: calling it twice with the same inputs
// produces the same matching set, which keeps any downstream rendering
// idempotent. Entries without an address never match. The returned
// slice preserves watchlist order; it is nil when nothing matches.
func Scan(currentURL, currentHostname string, watchlist []WatchlistEntry) []WatchlistEntry {
	var matched []WatchlistEntry
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
