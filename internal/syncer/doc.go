// Package syncer orchestrates sync cycles: fetching all enabled
// sources in order, merging their entries, persisting the merged
// watchlist, and reporting status.
//
// The [Coordinator] runs one cycle at a time with per-source failure
// isolation; the [Scheduler] drives it periodically and on demand.
package syncer
