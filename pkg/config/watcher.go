package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors save atomically (write temp, rename over), which arrives as a
// burst of events; one debounced notification covers the burst.
const watchDebounce = 500 * time.Millisecond

// WatchConfig watches the given config files and emits one notification per
// debounced change, so `serve` can rebuild its channels without a restart.
// The watcher goroutine lives until ctx is canceled; the channel is closed
// on exit.
func WatchConfig(ctx context.Context, files ...string) <-chan struct{} {
	changed := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Config watching disabled", "error", err)
		return changed
	}

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("Skipping unwatchable config file", "file", file, "error", err)
			continue
		}
		if err := watcher.Add(abs); err != nil {
			slog.Warn("Skipping unwatchable config file", "file", file, "error", err)
			continue
		}
		slog.Debug("Watching config file", "file", file)
	}

	go func() {
		defer watcher.Close()
		defer close(changed)

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Create covers the rename step of atomic saves.
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, func() {
					slog.Info("Config change detected", "file", event.Name)
					select {
					case changed <- struct{}{}:
					default: // a reload is already pending
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()

	return changed
}
