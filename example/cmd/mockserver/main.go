// Standalone mock feed server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/trustwatch serve -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

type feedRevision struct {
	etag    string
	records []map[string]any
}

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

const revisionHold = 45 * time.Second

func main() {
	fmt.Println("Mock feed server starting on :9999")
	fmt.Println("Feed content rotates every 45s; unchanged fetches get 304")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

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
		_ = json.NewEncoder(w).Encode(rev.records)
	})

	http.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
