package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// feedRevision is one version of the mock feed's content.
type feedRevision struct {
	etag    string
	records []map[string]any
}

// revisions are cycled through to exercise the conditional fetch path:
// while the revision holds, repeat fetches get 304s, then the next
// revision invalidates the cached token.
var revisions = []feedRevision{
	{
		etag: `"rev-1"`,
		records: []map[string]any{
			{"fields": map[string]any{
				"address":      "unreliable-news.example",
				"short remark": "false information",
				"Note text":    "Repeatedly published fabricated stories.",
				"Source":       "https://factcheck.example/unreliable-news",
			}},
			{"fields": map[string]any{
				"address":      "*.clickbait-*.example",
				"short remark": "clickbait network",
				"Note text":    "Part of a coordinated clickbait network.",
			}},
		},
	},
	{
		etag: `"rev-2"`,
		records: []map[string]any{
			{"fields": map[string]any{
				"address":      "unreliable-news.example",
				"short remark": "false information",
				"Note text":    "Repeatedly published fabricated stories.",
				"Source":       "https://factcheck.example/unreliable-news",
			}},
			{"fields": map[string]any{
				"address":      "satire-site.example",
				"short remark": "satire",
				"Note text":    "Satirical content often shared as real news.",
			}},
		},
	},
}

// revisionHold is how long each feed revision stays current.
const revisionHold = 45 * time.Second

// StartMockFeedServer runs a mock watchlist feed with ETag support.
// The feed content rotates between revisions so both the 304 path and
// the changed-content path get exercised.
// Call this in a goroutine before starting TrustWatch.
func StartMockFeedServer(addr string) {
	var (
		mu        sync.Mutex
		idx       int
		changedAt = time.Now()
	)

	http.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if time.Since(changedAt) > revisionHold {
			idx = (idx + 1) % len(revisions)
			changedAt = time.Now()
			slog.Info("feed revision changed", "etag", revisions[idx].etag)
		}
		rev := revisions[idx]
		mu.Unlock()

		if r.Header.Get("If-None-Match") == rev.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", rev.etag)
		if err := json.NewEncoder(w).Encode(rev.records); err != nil {
			slog.Error("failed to write feed response", "error", err)
		}
	})

	// a feed that always fails, to demonstrate failure isolation
	http.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	fmt.Printf("Mock feed server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock feed server error", "error", err)
	}
}
