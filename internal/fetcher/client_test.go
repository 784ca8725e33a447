package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

func TestClient_FetchUpdated(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"fields": {"address": "bad.example", "short remark": "false information"}}]`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	result := client.Fetch(context.Background(), Source{URL: server.URL, Name: "feed"}, testTimeout)

	if result.Outcome != OutcomeUpdated {
		t.Fatalf("Fetch() Outcome = %v, want %v (err: %v)", result.Outcome, OutcomeUpdated, result.Err)
	}
	if result.CacheToken != `"v1"` {
		t.Errorf("Fetch() CacheToken = %q, want %q", result.CacheToken, `"v1"`)
	}
	if len(result.Entries) != 1 || result.Entries[0].Address != "bad.example" {
		t.Errorf("Fetch() Entries = %+v, want one bad.example entry", result.Entries)
	}
	if result.Entries[0].OriginSourceName != "feed" {
		t.Errorf("Fetch() Entries[0].OriginSourceName = %q, want feed", result.Entries[0].OriginSourceName)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept header = %q, want application/json", gotAccept)
	}
}

func TestClient_FetchUnchanged(t *testing.T) {
	var gotIfNoneMatch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfNoneMatch = r.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	result := client.Fetch(context.Background(), Source{URL: server.URL, CacheToken: `"v1"`}, testTimeout)

	if result.Outcome != OutcomeUnchanged {
		t.Fatalf("Fetch() Outcome = %v, want %v", result.Outcome, OutcomeUnchanged)
	}
	if gotIfNoneMatch != `"v1"` {
		t.Errorf("If-None-Match header = %q, want %q", gotIfNoneMatch, `"v1"`)
	}
	if len(result.Entries) != 0 {
		t.Errorf("Fetch() Entries = %v, want none for 304", result.Entries)
	}
}

func TestClient_FetchOmitsConditionalHeaderWithoutToken(t *testing.T) {
	var sawHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["If-None-Match"]
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	client.Fetch(context.Background(), Source{URL: server.URL}, testTimeout)
	if sawHeader {
		t.Error("If-None-Match sent without a cache token")
	}
}

func TestClient_FetchSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	client.Fetch(context.Background(), Source{URL: server.URL, AuthToken: "secret"}, testTimeout)
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization header = %q, want 'Bearer secret'", gotAuth)
	}
}

func TestClient_FetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	result := client.Fetch(context.Background(), Source{URL: server.URL}, testTimeout)

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Fetch() Outcome = %v, want %v", result.Outcome, OutcomeFailed)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("Fetch() StatusCode = %v, want 500", result.StatusCode)
	}
	if result.Err == nil {
		t.Error("Fetch() Err = nil, want diagnostic error")
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	start := time.Now()
	result := client.Fetch(context.Background(), Source{URL: server.URL}, 100*time.Millisecond)

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Fetch() Outcome = %v, want %v", result.Outcome, OutcomeFailed)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Fetch() took %v, timeout did not apply", elapsed)
	}
}

func TestClient_FetchMalformedPayloadIsEmptyUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is not json`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	result := client.Fetch(context.Background(), Source{URL: server.URL}, testTimeout)

	// a 2xx with a malformed body normalizes to zero entries
	if result.Outcome != OutcomeUpdated {
		t.Fatalf("Fetch() Outcome = %v, want %v", result.Outcome, OutcomeUpdated)
	}
	if len(result.Entries) != 0 {
		t.Errorf("Fetch() Entries = %v, want none", result.Entries)
	}
}

func TestClient_FetchInvalidURL(t *testing.T) {
	client := NewClient()
	defer client.Close()

	result := client.Fetch(context.Background(), Source{URL: "://not-a-url"}, testTimeout)
	if result.Outcome != OutcomeFailed {
		t.Fatalf("Fetch() Outcome = %v, want %v", result.Outcome, OutcomeFailed)
	}
	if result.Err == nil {
		t.Error("Fetch() Err = nil, want error")
	}
}
