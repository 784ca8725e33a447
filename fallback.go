package trustwatch

// DefaultFallbackEntries is the built-in entry set injected when a
// sync cycle produces an empty merged watchlist (all sources failed or
// returned nothing).
//
// Injecting fallback data is a deliberate product decision: the user
// always sees the feature as live rather than broken. Every fallback
// entry is marked Synthetic so presentation layers can distinguish it
// from genuinely synced data, and the whole mechanism can be disabled
// with [WithoutFallback] or replaced with [WithFallbackEntries].
var DefaultFallbackEntries = []WatchlistEntry{
	{
		Address:     "example.com",
		ShortRemark: "false information",
		NoteText:    "This site contains misleading information about various topics.",
		Source:      "https://factcheck.org/example",
		Synthetic:   true,
	},
	{
		Address:     "bbc.com",
		ShortRemark: "false information",
		NoteText:    "This site contains misleading information.",
		Source:      "https://example.com/source",
		Synthetic:   true,
	},
}
