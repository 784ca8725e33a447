package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validConfig = `
sources:
  - name: main feed
    url: https://feeds.example.com/watchlist
`

const updatedConfig = `
port: 9191
sources:
  - name: main feed
    url: https://feeds.example.com/watchlist
`

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, testLogger(), func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// give the watcher time to install
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(updatedConfig), 0o644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Port != 9191 {
			t.Errorf("reloaded Port = %d, want 9191", cfg.Port)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not invoked after config write")
	}
}

func TestWatch_SkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	go func() {
		_ = Watch(ctx, path, testLogger(), func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// an invalid change must be ignored, keeping the previous config
	if err := os.WriteFile(path, []byte(`port: 99999`), 0o644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("onChange invoked for invalid config: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
		// expected: invalid write skipped
	}

	// a subsequent valid change still reloads
	if err := os.WriteFile(path, []byte(updatedConfig), 0o644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Port != 9191 {
			t.Errorf("reloaded Port = %d, want 9191", cfg.Port)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not invoked after recovery write")
	}
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, testLogger(), func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// writes to other files in the watched directory must not reload
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}

	select {
	case <-reloaded:
		t.Fatal("onChange invoked for a sibling file write")
	case <-time.After(500 * time.Millisecond):
		// expected
	}
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, testLogger(), func(*Config) {})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after context cancellation")
	}
}
