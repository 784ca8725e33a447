package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of write events editors and
// atomic-rename saves produce for a single logical change.
const watchDebounce = 200 * time.Millisecond

// Watch monitors a configuration file and invokes onChange with the
// freshly loaded config after every change.
//
// The parent directory is watched rather than the file itself, because
// most editors replace files via rename, which would otherwise drop
// the watch. Events are debounced, and a change that fails to load or
// validate is logged and skipped; the previous configuration stays in
// effect.
//
// Watch blocks until ctx is cancelled. The onChange callback is
// invoked from the watching goroutine and should return promptly.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-pending:
			pending = nil
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config change ignored", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onChange(cfg)

		case <-ctx.Done():
			return nil
		}
	}
}
