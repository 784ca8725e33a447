// Package store provides persistence for TrustWatch state: the
// configured source list, per-source entry snapshots, the merged
// watchlist, and the sync status.
//
// Two implementations are provided: [MemoryStore] for tests and
// ephemeral runs, and [SQLiteStore] for durable single-binary
// deployment. Both are safe for concurrent use and fan sync status
// transitions out to subscribers so presentation layers (SSE, the
// dashboard) can react in real time.
package store
