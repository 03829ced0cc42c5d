package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/meur/stadiumforge/internal/assets"
	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/pkg/clock"
	"github.com/meur/stadiumforge/internal/storage/jsonfile"
)

// Config configures a Merger
type Config struct {
	OutDir    string
	Inventory *assets.Inventory
	Clock     clock.Clock
	DryRun    bool
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if c.OutDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// Batch is one run's freshly parsed records
type Batch struct {
	Items  []models.Item
	Heroes []models.Hero
}

// Result is the catalog a run produced
type Result struct {
	Items    []models.Item
	Heroes   []models.Hero
	Manifest models.Manifest
	Stats    Stats
	// StatPowers is set only by ReplaceRoster
	StatPowers []models.StatPower
	Written    bool
}

// Merger is the single writer of a catalog directory
type Merger struct {
	outDir string
	inv    *assets.Inventory
	clock  clock.Clock
	dryRun bool
}

// New creates a Merger
func New(cfg *Config) (*Merger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Merger{
		outDir: cfg.OutDir,
		inv:    cfg.Inventory,
		clock:  clk,
		dryRun: cfg.DryRun,
	}, nil
}

func (m *Merger) path(name string) string {
	return filepath.Join(m.outDir, name)
}

// LoadHeroes reads the prior heroes.json; a missing file is an empty catalog
func (m *Merger) LoadHeroes() ([]models.Hero, error) {
	var heroes []models.Hero
	if _, err := jsonfile.Read(m.path(models.HeroesFile), &heroes); err != nil {
		return nil, err
	}
	return heroes, nil
}

// LoadItems reads the prior items.json; a missing file is an empty catalog
func (m *Merger) LoadItems() ([]models.Item, error) {
	var items []models.Item
	if _, err := jsonfile.Read(m.path(models.ItemsFile), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Run merges batch into the catalog and writes items.json, heroes.json and
// finally meta.json. Re-running with the same batch yields the same files
// apart from generatedAt.
func (m *Merger) Run(ctx context.Context, batch Batch) (*Result, error) {
	prior, err := m.LoadHeroes()
	if err != nil {
		return nil, fmt.Errorf("failed to load prior heroes: %w", err)
	}

	items := make([]models.Item, 0, len(batch.Items))
	for _, it := range DedupeItems(batch.Items) {
		items = append(items, it.Clone())
	}
	heroes, stats := MergeHeroes(prior, batch.Heroes)
	ReconcileImages(items, heroes, m.inv)

	res := &Result{
		Items:    items,
		Heroes:   heroes,
		Manifest: models.NewManifest(m.clock.Now(), len(items), len(heroes)),
		Stats:    stats,
	}

	mergeLog.Info().
		Int("items", len(items)).
		Int("duplicates", len(batch.Items)-len(items)).
		Int("heroes", len(heroes)).
		Int("updated", stats.Updated).
		Int("added", stats.Added).
		Int("powers", stats.TotalPowers).
		Msg("merged catalog")

	if m.dryRun {
		m.preview(items)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.write(models.ItemsFile, items); err != nil {
		return nil, err
	}
	if err := m.write(models.HeroesFile, heroes); err != nil {
		return nil, err
	}
	if err := m.write(models.MetaFile, res.Manifest); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// RefreshHeroes merges only heroes into the catalog, leaving items.json as
// it is. The manifest is restamped with the current counts.
func (m *Merger) RefreshHeroes(ctx context.Context, fresh []models.Hero) (*Result, error) {
	prior, err := m.LoadHeroes()
	if err != nil {
		return nil, fmt.Errorf("failed to load prior heroes: %w", err)
	}
	items, err := m.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load prior items: %w", err)
	}

	heroes, stats := MergeHeroes(prior, fresh)
	ReconcileImages(nil, heroes, m.inv)

	res := &Result{
		Items:    items,
		Heroes:   heroes,
		Manifest: models.NewManifest(m.clock.Now(), len(items), len(heroes)),
		Stats:    stats,
	}

	mergeLog.Info().
		Int("parsed", stats.Parsed).
		Int("updated", stats.Updated).
		Int("added", stats.Added).
		Int("totalPowers", stats.TotalPowers).
		Msg("refreshed hero powers")

	if m.dryRun {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.write(models.HeroesFile, heroes); err != nil {
		return nil, err
	}
	if err := m.write(models.MetaFile, res.Manifest); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// ReplaceItems writes items as the new items.json and restamps the manifest.
// heroes.json is read for its count only.
func (m *Merger) ReplaceItems(ctx context.Context, items []models.Item) (*Result, error) {
	heroes, err := m.LoadHeroes()
	if err != nil {
		return nil, fmt.Errorf("failed to load prior heroes: %w", err)
	}
	res := &Result{
		Items:    items,
		Heroes:   heroes,
		Manifest: models.NewManifest(m.clock.Now(), len(items), len(heroes)),
	}
	if m.dryRun {
		m.preview(items)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.write(models.ItemsFile, items); err != nil {
		return nil, err
	}
	if err := m.write(models.MetaFile, res.Manifest); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// ReplaceRoster writes heroes as the new heroes.json and powers as
// powers.json, then restamps the manifest. items.json is read for its count
// only.
func (m *Merger) ReplaceRoster(ctx context.Context, heroes []models.Hero, powers []models.StatPower) (*Result, error) {
	items, err := m.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load prior items: %w", err)
	}
	res := &Result{
		Items:      items,
		Heroes:     heroes,
		Manifest:   models.NewManifest(m.clock.Now(), len(items), len(heroes)),
		StatPowers: powers,
	}
	if m.dryRun {
		mergeLog.Info().Int("heroes", len(heroes)).Int("powers", len(powers)).Msg("dry run, nothing written")
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.write(models.HeroesFile, heroes); err != nil {
		return nil, err
	}
	if err := m.write(models.PowersFile, powers); err != nil {
		return nil, err
	}
	if err := m.write(models.MetaFile, res.Manifest); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

func (m *Merger) write(name string, v any) error {
	if err := jsonfile.Write(m.path(name), v); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	mergeLog.Debug().Str("file", m.path(name)).Msg("wrote catalog file")
	return nil
}

func (m *Merger) preview(items []models.Item) {
	slugs := make([]string, 0, 3)
	for _, it := range items[:min(len(items), 3)] {
		slugs = append(slugs, it.Slug)
	}
	mergeLog.Info().Int("items", len(items)).Strs("preview", slugs).Msg("dry run, nothing written")
}
