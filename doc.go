// Package trustwatch maintains a locally cached, periodically refreshed
// watchlist of annotated hostnames and URLs, fetched from one or more
// remote feeds, and matches candidate URLs against it.
//
// TrustWatch is designed as an SDK-first library: the sync engine, the
// URL matcher, and the page scanner are exposed programmatically, while
// the bundled CLI and HTTP surface wrap them for standalone deployment.
//
// # Quick Start
//
// Configure sources and start the daemon with graceful shutdown:
//
//	tw, _ := trustwatch.New(
//	    trustwatch.WithSource(trustwatch.Source{Name: "main feed", URL: "https://feeds.example.com/watchlist", Enabled: true}),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	tw.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// TrustWatch uses the functional options pattern for configuration:
//
//	tw, err := trustwatch.New(
//	    trustwatch.WithSources(src1, src2),
//	    trustwatch.WithSyncInterval(30 * time.Minute),
//	    trustwatch.WithPort(9090),
//	    trustwatch.WithDataPath("/var/lib/trustwatch/data.db"),
//	)
//
// # Matching
//
// [Matches] decides whether a watchlist pattern applies to a candidate
// URL or hostname. Patterns containing a wildcard ("*") are compiled
// into case-insensitive regular expressions and tested against the full
// candidate; all other patterns are tested as case-insensitive
// substrings of both the candidate's hostname and the full candidate
// string. [Scan] applies the matcher across a whole watchlist.
//
// # Architecture
//
// TrustWatch consists of several internal packages (under internal/):
//
//   - internal/fetcher: Conditional HTTP fetching and feed normalization
//   - internal/syncer: The sync coordinator and periodic scheduler
//   - internal/store: Durable (SQLite) and in-memory persistence with
//     pub/sub status updates
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package trustwatch
