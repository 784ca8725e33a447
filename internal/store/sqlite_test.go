package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trustwatch.db")
	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore_SourcesRoundTrip(t *testing.T) {
	st := openTestStore(t)

	want := []Source{
		{URL: "https://a.example/feed", Name: "a", Enabled: true, CacheToken: `"etag-a"`},
		{URL: "https://b.example/feed", Name: "b", Enabled: false, AuthToken: "secret"},
	}
	if err := st.SaveSources(want); err != nil {
		t.Fatalf("SaveSources() error = %v", err)
	}

	got, err := st.Sources()
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Sources() = %v items, want 2", len(got))
	}

	// order must follow slice order, not insertion accidents
	if got[0].URL != want[0].URL || got[1].URL != want[1].URL {
		t.Errorf("Sources() order = [%s, %s], want [%s, %s]",
			got[0].URL, got[1].URL, want[0].URL, want[1].URL)
	}
	if got[0].CacheToken != `"etag-a"` {
		t.Errorf("Sources()[0].CacheToken = %v, want %v", got[0].CacheToken, `"etag-a"`)
	}
	if got[1].Enabled {
		t.Error("Sources()[1].Enabled = true, want false")
	}
	if got[1].AuthToken != "secret" {
		t.Errorf("Sources()[1].AuthToken = %v, want secret", got[1].AuthToken)
	}
}

func TestSQLiteStore_SaveSourcesReplaces(t *testing.T) {
	st := openTestStore(t)

	if err := st.SaveSources([]Source{
		{URL: "https://a.example/feed", Enabled: true},
		{URL: "https://b.example/feed", Enabled: true},
	}); err != nil {
		t.Fatalf("SaveSources() error = %v", err)
	}

	if err := st.SaveSources([]Source{
		{URL: "https://b.example/feed", Enabled: true},
	}); err != nil {
		t.Fatalf("SaveSources() error = %v", err)
	}

	got, err := st.Sources()
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Sources() = %v items, want 1", len(got))
	}
	if got[0].URL != "https://b.example/feed" {
		t.Errorf("Sources()[0].URL = %v, want https://b.example/feed", got[0].URL)
	}
}

func TestSQLiteStore_WatchlistRoundTrip(t *testing.T) {
	st := openTestStore(t)

	// missing key means empty list, not an error
	got, err := st.Watchlist()
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Watchlist() = %v items, want 0", len(got))
	}

	want := []Entry{
		{Address: "bad.example", ShortRemark: "false information", NoteText: "note", Source: "https://cite.example"},
		{Address: "*.mirror-*.example", OriginSourceName: "main feed", Synthetic: false},
	}
	if err := st.SaveWatchlist(want); err != nil {
		t.Fatalf("SaveWatchlist() error = %v", err)
	}

	got, err = st.Watchlist()
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Watchlist() = %v items, want 2", len(got))
	}
	if got[0] != want[0] {
		t.Errorf("Watchlist()[0] = %+v, want %+v", got[0], want[0])
	}
}

func TestSQLiteStore_SourceEntriesIsolatedPerSource(t *testing.T) {
	st := openTestStore(t)

	if err := st.SaveSourceEntries("https://a.example/feed", []Entry{{Address: "a.example"}}); err != nil {
		t.Fatalf("SaveSourceEntries() error = %v", err)
	}
	if err := st.SaveSourceEntries("https://b.example/feed", []Entry{{Address: "b.example"}}); err != nil {
		t.Fatalf("SaveSourceEntries() error = %v", err)
	}

	a, err := st.SourceEntries("https://a.example/feed")
	if err != nil {
		t.Fatalf("SourceEntries(a) error = %v", err)
	}
	if len(a) != 1 || a[0].Address != "a.example" {
		t.Errorf("SourceEntries(a) = %+v, want one a.example entry", a)
	}

	if err := st.DeleteSourceEntries("https://a.example/feed"); err != nil {
		t.Fatalf("DeleteSourceEntries() error = %v", err)
	}

	a, _ = st.SourceEntries("https://a.example/feed")
	if len(a) != 0 {
		t.Errorf("SourceEntries(a) after delete = %v items, want 0", len(a))
	}
	b, _ := st.SourceEntries("https://b.example/feed")
	if len(b) != 1 {
		t.Errorf("SourceEntries(b) = %v items, want 1; delete must not leak across sources", len(b))
	}
}

func TestSQLiteStore_SyncStatusSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustwatch.db")

	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := st.SaveSyncStatus(SyncStatus{
		LastSync:   &now,
		State:      "success",
		Message:    "data synced successfully",
		EntryCount: 7,
	}); err != nil {
		t.Fatalf("SaveSyncStatus() error = %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() reopen error = %v", err)
	}
	defer reopened.Close()

	status, err := reopened.SyncStatus()
	if err != nil {
		t.Fatalf("SyncStatus() error = %v", err)
	}
	if status.State != "success" {
		t.Errorf("SyncStatus().State = %v, want success", status.State)
	}
	if status.EntryCount != 7 {
		t.Errorf("SyncStatus().EntryCount = %v, want 7", status.EntryCount)
	}
	if status.LastSync == nil || !status.LastSync.Equal(now) {
		t.Errorf("SyncStatus().LastSync = %v, want %v", status.LastSync, now)
	}
}

func TestSQLiteStore_SyncStatusDefault(t *testing.T) {
	st := openTestStore(t)

	status, err := st.SyncStatus()
	if err != nil {
		t.Fatalf("SyncStatus() error = %v", err)
	}
	if status.State != "unknown" {
		t.Errorf("SyncStatus().State = %v, want unknown", status.State)
	}
}

func TestSQLiteStore_SubscribeReceivesSaves(t *testing.T) {
	st := openTestStore(t)

	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	go func() {
		_ = st.SaveSyncStatus(SyncStatus{State: "syncing"})
	}()

	select {
	case status := <-ch:
		if status.State != "syncing" {
			t.Errorf("received State = %v, want syncing", status.State)
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}
