// Package fetcher performs conditional HTTP fetches of remote
// watchlist feeds and normalizes their payloads into entries.
//
// Fetch outcomes are data, not errors: every call yields a [Result]
// whose [Outcome] is unchanged, updated, or failed. This keeps one
// source's failure from ever aborting its siblings during a sync cycle.
package fetcher
