package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trustwatch/trustwatch/internal/store"
	"github.com/trustwatch/trustwatch/internal/syncer"
)

// sseWriteTimeout is the maximum time allowed for a single SSE write
// operation. This prevents goroutine leaks when clients are slow or
// disconnected. Must be <= shutdown timeout to ensure clean shutdown.
const sseWriteTimeout = 5 * time.Second

// Trigger requests sync cycles without waiting for them.
type Trigger interface {
	TriggerSync()
}

// ScanFunc matches a candidate URL and hostname against a watchlist,
// returning the matching entries. Injected by the application so the
// server does not depend on the public matcher package.
type ScanFunc func(currentURL, currentHostname string, watchlist []store.Entry) []store.Entry

// Config carries the collaborators and settings for [NewServer].
type Config struct {
	// Store provides watchlist, source, and status persistence.
	Store store.Store

	// Sources manages add/remove/toggle operations.
	Sources *syncer.SourceManager

	// Trigger requests sync cycles (fire-and-forget).
	Trigger Trigger

	// Scan matches URLs against the persisted watchlist.
	Scan ScanFunc

	// SyncInterval reports the currently configured interval; read
	// per-request because config reloads can change it.
	SyncInterval func() time.Duration

	// Port is the TCP port to listen on.
	Port int

	// Assets is the embedded filesystem with dashboard assets (may
	// be nil, disabling the dashboard).
	Assets fs.FS

	// Logger receives server events.
	Logger *slog.Logger
}

// Server handles HTTP requests for the TrustWatch dashboard and API.
//
// Server provides these endpoints:
//   - GET /: Embedded dashboard
//   - GET /api/status: Current sync status as JSON
//   - GET /api/watchlist: The merged watchlist as JSON
//   - GET /api/config: Sync interval and source list
//   - POST /api/sync: Trigger a sync cycle (202)
//   - POST/PATCH/DELETE /api/sources: Source management
//   - GET /api/check?url=: Match a URL against the watchlist
//   - GET /api/sse: Server-Sent Events stream of status transitions
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the
// server is listening. The server runs until the context is cancelled,
// at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/sync", s.handleSync)
	mux.HandleFunc("/api/sources", s.handleSources)
	mux.HandleFunc("/api/check", s.handleCheck)
	mux.HandleFunc("/api/sse", s.handleSSE)

	if s.cfg.Assets != nil {
		mux.HandleFunc("/", s.handleDashboard)
	}

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler: mux,
		// BaseContext derives all request contexts from the server
		// context so cancellation also ends long-running handlers
		// like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the embedded dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write(content); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleStatus returns the current sync status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := s.cfg.Store.SyncStatus()
	if err != nil {
		http.Error(w, "Failed to load sync status", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleWatchlist returns the merged watchlist as JSON.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := s.cfg.Store.Watchlist()
	if err != nil {
		http.Error(w, "Failed to load watchlist", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// configResponse is the wire shape of GET /api/config.
type configResponse struct {
	SyncIntervalMinutes int            `json:"syncIntervalMinutes"`
	Sources             []store.Source `json:"sources"`
}

// handleConfig returns the sync interval and source list.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources, err := s.cfg.Store.Sources()
	if err != nil {
		http.Error(w, "Failed to load sources", http.StatusInternalServerError)
		return
	}
	if sources == nil {
		sources = []store.Source{}
	}

	s.writeJSON(w, http.StatusOK, configResponse{
		SyncIntervalMinutes: int(s.cfg.SyncInterval().Minutes()),
		Sources:             sources,
	})
}

// handleSync triggers a sync cycle and returns immediately.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.cfg.Trigger.TriggerSync()
	s.writeJSON(w, http.StatusAccepted, map[string]bool{"success": true})
}

// sourcesResponse is the wire shape of source mutation responses.
type sourcesResponse struct {
	Success bool           `json:"success"`
	Sources []store.Source `json:"sources"`
}

// handleSources dispatches source management operations:
// POST adds, PATCH toggles, DELETE removes.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAddSource(w, r)
	case http.MethodPatch:
		s.handleToggleSource(w, r)
	case http.MethodDelete:
		s.handleRemoveSource(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sources, err := s.cfg.Sources.Add(req.URL, req.Name)
	if errors.Is(err, syncer.ErrSourceExists) {
		// duplicate add is a no-op, not an error
		s.writeSources(w, http.StatusOK, false, sources)
		return
	}
	if err != nil {
		http.Error(w, "Failed to add source", http.StatusInternalServerError)
		return
	}
	s.writeSources(w, http.StatusOK, true, sources)
}

func (s *Server) handleToggleSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL     string `json:"url"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sources, err := s.cfg.Sources.Toggle(req.URL, req.Enabled)
	if errors.Is(err, syncer.ErrSourceNotFound) {
		http.Error(w, "Source not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to toggle source", http.StatusInternalServerError)
		return
	}
	s.writeSources(w, http.StatusOK, true, sources)
}

func (s *Server) handleRemoveSource(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	sources, err := s.cfg.Sources.Remove(sourceURL)
	switch {
	case errors.Is(err, syncer.ErrLastSource):
		http.Error(w, "Cannot remove the last source", http.StatusConflict)
		return
	case errors.Is(err, syncer.ErrSourceNotFound):
		http.Error(w, "Source not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Failed to remove source", http.StatusInternalServerError)
		return
	}
	s.writeSources(w, http.StatusOK, true, sources)
}

// checkResponse is the wire shape of GET /api/check.
type checkResponse struct {
	URL     string        `json:"url"`
	Matches []store.Entry `json:"matches"`
}

// handleCheck matches a candidate URL against the persisted watchlist.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	candidate := r.URL.Query().Get("url")
	if candidate == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	watchlist, err := s.cfg.Store.Watchlist()
	if err != nil {
		http.Error(w, "Failed to load watchlist", http.StatusInternalServerError)
		return
	}

	hostname := candidate
	if u, err := url.Parse(candidate); err == nil && u.Hostname() != "" {
		hostname = u.Hostname()
	}

	matches := s.cfg.Scan(candidate, hostname, watchlist)
	if matches == nil {
		matches = []store.Entry{}
	}
	s.writeJSON(w, http.StatusOK, checkResponse{URL: candidate, Matches: matches})
}

// handleSSE streams sync status transitions via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when
// clients are slow or disconnected. Without deadlines, a blocked write
// would prevent the handler from detecting context cancellation.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush
	// operations (Go 1.20+)
	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.cfg.Store.Subscribe()
	defer s.cfg.Store.Unsubscribe(ch)

	// send the current status first so clients render immediately
	if status, err := s.cfg.Store.SyncStatus(); err == nil {
		if data, err := json.Marshal(status); err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
		}
	}

	for {
		select {
		case status, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(status)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}

// writeSources writes a source mutation response.
func (s *Server) writeSources(w http.ResponseWriter, code int, success bool, sources []store.Source) {
	if sources == nil {
		sources = []store.Source{}
	}
	s.writeJSON(w, code, sourcesResponse{Success: success, Sources: sources})
}

// writeJSON writes a JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
