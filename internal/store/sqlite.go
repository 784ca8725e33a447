package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// State table keys. Per-source snapshots are stored under
// "sourceEntries:<sourceURL>".
const (
	keyWatchlist           = "watchlist"
	keySyncStatus          = "syncStatus"
	keySourceEntriesPrefix = "sourceEntries:"
)

// SQLiteStore is a durable implementation of [Store] backed by a local
// SQLite database.
//
// The schema has two tables: an ordered "sources" table holding the
// configured feed list, and a "state" key-value table holding JSON
// blobs for the merged watchlist, the sync status, and one per-source
// entry snapshot per key. The database is opened in WAL mode.
type SQLiteStore struct {
	db *sql.DB

	hub statusHub
}

// OpenSQLite opens (creating if necessary) a SQLite-backed [Store] at
// the given path. Parent directories are created as needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not exist.
func (s *SQLiteStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS sources (
  url TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  enabled INTEGER NOT NULL DEFAULT 1,
  cache_token TEXT NOT NULL DEFAULT '',
  auth_token TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS state (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Sources returns the configured source list ordered by position.
func (s *SQLiteStore) Sources() ([]Source, error) {
	rows, err := s.db.Query(`
		SELECT url, name, enabled, cache_token, auth_token
		FROM sources ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var enabled int
		if err := rows.Scan(&src.URL, &src.Name, &enabled, &src.CacheToken, &src.AuthToken); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Enabled = enabled != 0
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// SaveSources replaces the source list, assigning positions from slice
// order. The replacement happens in a single transaction.
func (s *SQLiteStore) SaveSources(sources []Source) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sources`); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sources (url, name, enabled, cache_token, auth_token, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, src := range sources {
		enabled := 0
		if src.Enabled {
			enabled = 1
		}
		if _, err := stmt.Exec(src.URL, src.Name, enabled, src.CacheToken, src.AuthToken, i); err != nil {
			return fmt.Errorf("insert source %s: %w", src.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SourceEntries returns the last-known snapshot for a source, or an
// empty slice if none exists.
func (s *SQLiteStore) SourceEntries(sourceURL string) ([]Entry, error) {
	return s.loadEntries(keySourceEntriesPrefix + sourceURL)
}

// SaveSourceEntries replaces the snapshot for a source.
func (s *SQLiteStore) SaveSourceEntries(sourceURL string, entries []Entry) error {
	return s.saveJSON(keySourceEntriesPrefix+sourceURL, entries)
}

// DeleteSourceEntries removes the snapshot for a source.
func (s *SQLiteStore) DeleteSourceEntries(sourceURL string) error {
	if _, err := s.db.Exec(`DELETE FROM state WHERE key = ?`, keySourceEntriesPrefix+sourceURL); err != nil {
		return fmt.Errorf("delete source entries: %w", err)
	}
	return nil
}

// Watchlist returns the persisted merged watchlist.
func (s *SQLiteStore) Watchlist() ([]Entry, error) {
	return s.loadEntries(keyWatchlist)
}

// SaveWatchlist replaces the merged watchlist.
func (s *SQLiteStore) SaveWatchlist(entries []Entry) error {
	return s.saveJSON(keyWatchlist, entries)
}

// SyncStatus returns the persisted status, or an "unknown" status if
// none has been saved yet.
func (s *SQLiteStore) SyncStatus() (SyncStatus, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, keySyncStatus).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncStatus{State: "unknown", Message: "not synced yet"}, nil
	}
	if err != nil {
		return SyncStatus{}, fmt.Errorf("query sync status: %w", err)
	}

	var status SyncStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return SyncStatus{}, fmt.Errorf("decode sync status: %w", err)
	}
	return status, nil
}

// SaveSyncStatus overwrites the persisted status and notifies
// subscribers.
func (s *SQLiteStore) SaveSyncStatus(status SyncStatus) error {
	if err := s.saveJSON(keySyncStatus, status); err != nil {
		return err
	}
	s.hub.notify(status)
	return nil
}

// Subscribe creates a new subscription for status transitions.
func (s *SQLiteStore) Subscribe() <-chan SyncStatus {
	return s.hub.subscribe()
}

// Unsubscribe removes a subscription and closes its channel.
func (s *SQLiteStore) Unsubscribe(ch <-chan SyncStatus) {
	s.hub.unsubscribe(ch)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// loadEntries reads and decodes an entry list stored under key. A
// missing key yields an empty slice.
func (s *SQLiteStore) loadEntries(key string) ([]Entry, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return entries, nil
}

// saveJSON upserts a JSON-encoded value under key.
func (s *SQLiteStore) saveJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
