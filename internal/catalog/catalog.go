package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/meur/stadiumforge/internal/logging"
)

var catalogLog = logging.Module("catalog")

// Catalog holds the current snapshot. Readers never block a reload.
type Catalog struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
}

// New creates a Catalog that starts out empty
func New(loader Loader) (*Catalog, error) {
	if loader == nil {
		return nil, errors.New("loader is required")
	}
	c := &Catalog{loader: loader}
	c.current.Store(Empty())
	return c, nil
}

// Snapshot returns the current snapshot
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Reload replaces the snapshot with a fresh load. On failure the previous
// snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) error {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	if snap == nil {
		snap = Empty()
	}
	c.current.Store(snap)

	catalogLog.Info().
		Int("items", len(snap.items)).
		Int("heroes", len(snap.heroes)).
		Str("generatedAt", snap.manifest.GeneratedAt).
		Msg("catalog loaded")
	return nil
}
