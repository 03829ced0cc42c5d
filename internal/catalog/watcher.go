package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/meur/stadiumforge/internal/models"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Catalog whenever a new manifest lands in its directory.
// The manifest is the last file a build writes, so its arrival means the
// other files are complete.
type Watcher struct {
	catalog  *Catalog
	dir      string
	debounce time.Duration
	reloaded chan struct{}
}

// NewWatcher creates a Watcher for dir
func NewWatcher(c *Catalog, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{catalog: c, dir: dir, debounce: debounce}
}

// Run watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	catalogLog.Info().Str("dir", w.dir).Msg("watching catalog")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != models.MetaFile || !ev.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			catalogLog.Warn().Err(err).Msg("watcher error")

		case <-timer.C:
			if err := w.catalog.Reload(ctx); err != nil {
				catalogLog.Error().Err(err).Msg("reload failed, keeping previous catalog")
				continue
			}
			if w.reloaded != nil {
				select {
				case w.reloaded <- struct{}{}:
				default:
				}
			}
		}
	}
}
