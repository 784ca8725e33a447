package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// failure diagnostics keep only the head of the body
const maxFailureBodySnippet = 512

// connection pooling limits to prevent resource exhaustion when
// syncing many sources
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Outcome classifies the result of fetching one source.
type Outcome string

const (
	// OutcomeUnchanged means the origin reported "not modified"; the
	// caller must reuse the previously cached entries for the source.
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeUpdated means the origin returned a fresh payload that
	// was normalized into entries.
	OutcomeUpdated Outcome = "updated"

	// OutcomeFailed means the fetch did not produce usable data; the
	// caller must leave the source's cached entries untouched.
	OutcomeFailed Outcome = "failed"
)

// Source is the fetcher's view of one configured feed.
//
// It is decoupled from the storage and public source types to avoid
// circular dependencies; the sync coordinator converts between them.
type Source struct {
	// URL is the feed endpoint.
	URL string

	// Name is the display name, attached to normalized entries as
	// their origin.
	Name string

	// CacheToken is the validator from the previous successful fetch.
	// When non-empty it is sent as If-None-Match so the origin can
	// short-circuit with 304.
	CacheToken string

	// AuthToken is an optional static credential sent as a bearer
	// token.
	AuthToken string
}

// Result holds the outcome of fetching a single source.
//
// Fetch always returns a Result; errors are captured in the Err field
// rather than returned separately. This simplifies handling in the
// sync coordinator.
type Result struct {
	// Outcome classifies the fetch.
	Outcome Outcome

	// Entries holds the normalized entries. Populated only for
	// OutcomeUpdated.
	Entries []Entry

	// CacheToken is the validator returned by the origin, captured
	// verbatim for the next request. Empty when the response carried
	// none. Populated only for OutcomeUpdated.
	CacheToken string

	// StatusCode is the HTTP status code. Zero if the request failed
	// before receiving a response.
	StatusCode int

	// Err describes the failure for OutcomeFailed results.
	Err error
}

// Client is an HTTP client wrapper for fetching watchlist feeds with
// conditional-request caching.
//
// Client uses per-request timeouts via context rather than a global
// timeout. Response bodies are limited to 1MB.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new feed [Client].
//
// The client is configured with connection pooling limits to prevent
// resource exhaustion when syncing many sources. Timeouts are applied
// per-request via the timeout parameter in [Client.Fetch].
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Fetch performs a conditional GET against a source's feed URL.
//
// If the source holds a cache token it is attached as If-None-Match. A
// 304 response yields [OutcomeUnchanged] without body processing. Any
// non-2xx response, transport error, or timeout yields [OutcomeFailed]
// with diagnostics in Err. A 2xx response is normalized into entries,
// and a returned ETag is surfaced verbatim as the new cache token.
func (c *Client) Fetch(ctx context.Context, src Source, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	if src.CacheToken != "" {
		req.Header.Set("If-None-Match", src.CacheToken)
	}
	if src.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+src.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		return Result{Outcome: OutcomeUnchanged, StatusCode: resp.StatusCode}
	}

	// read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Result{
			Outcome:    OutcomeFailed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			Outcome:    OutcomeFailed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("feed returned status %d: %s", resp.StatusCode, bodySnippet(body)),
		}
	}

	return Result{
		Outcome:    OutcomeUpdated,
		Entries:    Normalize(body, src.URL, src.Name),
		CacheToken: resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable
// but new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// bodySnippet trims a response body down to a single-line diagnostic.
func bodySnippet(body []byte) string {
	s := string(body)
	if len(s) > maxFailureBodySnippet {
		s = s[:maxFailureBodySnippet]
	}
	return strings.TrimSpace(s)
}
