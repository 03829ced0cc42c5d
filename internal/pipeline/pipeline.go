// Package pipeline runs the extraction end to end: read the dumps, parse,
// merge into the output directory, then mirror the result to the optional
// sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meur/stadiumforge/internal/assets"
	"github.com/meur/stadiumforge/internal/catalog"
	"github.com/meur/stadiumforge/internal/config"
	"github.com/meur/stadiumforge/internal/importer"
	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/merge"
	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/parser"
	"github.com/meur/stadiumforge/internal/pkg/clock"
	"github.com/meur/stadiumforge/internal/redis"
	"github.com/meur/stadiumforge/internal/source"
	"github.com/meur/stadiumforge/internal/storage"
	"github.com/meur/stadiumforge/internal/storage/redisstore"
	"github.com/meur/stadiumforge/internal/validate"
)

var pipelineLog = logging.Module("pipeline")

// Options are the run-time switches that do not belong in the config file
type Options struct {
	DryRun bool
	Clock  clock.Clock
	// Redis overrides the client built from the config's redis address
	Redis redis.Client
}

// Report describes what a run did
type Report struct {
	Result     *merge.Result
	Validation *validate.Report
	Assets     assets.CopyStats
	Import     *importer.Stats
	// RosterAdded counts heroes DeriveRoster added
	RosterAdded int
}

// Pipeline owns one configured run
type Pipeline struct {
	cfg       *config.Config
	opts      Options
	redis     redis.Client
	ownsRedis bool
}

// New validates cfg and connects the optional Redis sink
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	p := &Pipeline{cfg: cfg, opts: opts, redis: opts.Redis}
	if p.redis == nil && cfg.Redis.Addr != "" {
		client, err := redis.NewClient(cfg.Redis.Addr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		p.redis = client
		p.ownsRedis = true
	}
	return p, nil
}

// Close releases the Redis client if the pipeline created it
func (p *Pipeline) Close() error {
	if p.ownsRedis {
		return p.redis.Close()
	}
	return nil
}

func (p *Pipeline) merger(inv *assets.Inventory) (*merge.Merger, error) {
	return merge.New(&merge.Config{
		OutDir:    p.cfg.Output.Dir,
		Inventory: inv,
		Clock:     p.opts.Clock,
		DryRun:    p.opts.DryRun,
	})
}

// Build parses both dumps and merges them into the output directory. Every
// required input is checked before anything is written.
func (p *Pipeline) Build(ctx context.Context) (*Report, error) {
	itemsRoot, heroesRoot := p.cfg.Dumps.Items, p.cfg.Dumps.Heroes
	for _, dir := range []string{itemsRoot, heroesRoot} {
		if err := source.RequireDir(dir); err != nil {
			return nil, err
		}
	}

	itemList, heroList, err := source.DumpPages(itemsRoot, heroesRoot)
	if err != nil {
		return nil, err
	}
	itemPages, err := source.Load(ctx, itemList, p.cfg.Build.Concurrency)
	if err != nil {
		return nil, err
	}
	heroPages, err := source.Load(ctx, heroList, p.cfg.Build.Concurrency)
	if err != nil {
		return nil, err
	}

	var batch merge.Batch
	for _, page := range itemPages {
		batch.Items = append(batch.Items, parser.ParseItems(page.Text, page.Title)...)
	}
	for _, page := range heroPages {
		hero := parser.ParseHero(page.Text, page.Title)
		batch.Items = append(batch.Items, hero.Items...)
		batch.Heroes = append(batch.Heroes, hero)
	}
	pipelineLog.Info().
		Int("itemPages", len(itemPages)).
		Int("heroPages", len(heroPages)).
		Int("items", len(batch.Items)).
		Int("heroes", len(batch.Heroes)).
		Msg("parsed dumps")

	rep := &Report{}
	if p.cfg.Build.Validate {
		v := validate.Dataset(batch.Items, batch.Heroes)
		rep.Validation = &v
	}

	inv, err := assets.Scan(assets.CandidateDirs(itemsRoot, heroesRoot)...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan images: %w", err)
	}
	m, err := p.merger(inv)
	if err != nil {
		return nil, err
	}
	if rep.Result, err = m.Run(ctx, batch); err != nil {
		return nil, err
	}
	if !rep.Result.Written {
		return rep, nil
	}

	if p.cfg.Build.CopyAssets {
		rep.Assets = p.copyAssets(inv, rep.Result.Heroes)
	}
	if err := p.mirror(ctx, rep.Result); err != nil {
		return nil, err
	}
	return rep, nil
}

// RefreshPowers re-parses hero pages from wikiDir and replaces the powers of
// the heroes already in the output directory. items.json is untouched.
func (p *Pipeline) RefreshPowers(ctx context.Context, wikiDir string) (*Report, error) {
	if err := source.RequireDir(wikiDir); err != nil {
		return nil, err
	}
	pages, err := p.load(ctx, source.HeroPages, wikiDir)
	if err != nil {
		return nil, err
	}
	heroes := make([]models.Hero, 0, len(pages))
	for _, page := range pages {
		heroes = append(heroes, parser.ParseHero(page.Text, page.Title))
	}

	inv, err := assets.Scan(assets.CandidateDirs(wikiDir)...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan images: %w", err)
	}
	m, err := p.merger(inv)
	if err != nil {
		return nil, err
	}

	rep := &Report{}
	if p.cfg.Build.Validate {
		v := validate.Dataset(nil, heroes)
		rep.Validation = &v
	}
	if rep.Result, err = m.RefreshHeroes(ctx, heroes); err != nil {
		return nil, err
	}
	if rep.Result.Written {
		if err := p.mirror(ctx, rep.Result); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// ImportHeroItems folds a hero item manifest into items.json. Images are
// copied from imagesRoot when it is set.
func (p *Pipeline) ImportHeroItems(ctx context.Context, csvPath, imagesRoot string) (*Report, error) {
	rows, err := importer.ReadManifest(csvPath)
	if err != nil {
		return nil, err
	}
	m, err := p.merger(nil)
	if err != nil {
		return nil, err
	}
	items, err := m.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	opts := importer.Options{ImagesRoot: imagesRoot}
	if !p.opts.DryRun {
		opts.PublicItemsRoot = p.cfg.Output.ItemsAssetDir()
	}
	merged, stats := importer.Import(items, rows, opts)
	pipelineLog.Info().
		Int("rows", stats.Rows).
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("copied", stats.Copied).
		Msg("imported hero items")

	rep := &Report{Import: &stats}
	if rep.Result, err = m.ReplaceItems(ctx, merged); err != nil {
		return nil, err
	}
	if rep.Result.Written {
		if err := p.mirror(ctx, rep.Result); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// DeriveRoster rebuilds heroes.json around items.json: heroes named only by
// item heroSlugs or by hero folders under imagesRoot are added, each hero's
// items are regrouped, and the stat icons are written to powers.json.
func (p *Pipeline) DeriveRoster(ctx context.Context, imagesRoot string) (*Report, error) {
	m, err := p.merger(nil)
	if err != nil {
		return nil, err
	}
	items, err := m.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	heroes, err := m.LoadHeroes()
	if err != nil {
		return nil, fmt.Errorf("failed to load heroes: %w", err)
	}
	roster, err := importer.DeriveRoster(heroes, items, imagesRoot)
	if err != nil {
		return nil, err
	}

	rep := &Report{RosterAdded: roster.Added}
	if rep.Result, err = m.ReplaceRoster(ctx, roster.Heroes, roster.Powers); err != nil {
		return nil, err
	}
	if rep.Result.Written {
		if err := p.mirror(ctx, rep.Result); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// Sync mirrors the catalog already in the output directory to SQLite and
// Redis without parsing anything.
func (p *Pipeline) Sync(ctx context.Context) (*Report, error) {
	if err := source.RequireDir(p.cfg.Output.Dir); err != nil {
		return nil, err
	}
	snap, err := catalog.NewFileLoader(p.cfg.Output.Dir).Load(ctx)
	if err != nil {
		return nil, err
	}
	res := &merge.Result{
		Items:    snap.Items(),
		Heroes:   snap.Heroes(),
		Manifest: snap.Manifest(),
	}
	if res.Manifest.GeneratedAt == "" {
		res.Manifest = models.NewManifest(p.opts.Clock.Now(), len(res.Items), len(res.Heroes))
	}
	if p.opts.DryRun {
		return &Report{Result: res}, nil
	}
	if err := p.mirror(ctx, res); err != nil {
		return nil, err
	}
	res.Written = true
	return &Report{Result: res}, nil
}

func (p *Pipeline) load(ctx context.Context, list func(string) ([]source.Page, error), root string) ([]source.Page, error) {
	pages, err := list(root)
	if err != nil {
		return nil, err
	}
	return source.Load(ctx, pages, p.cfg.Build.Concurrency)
}

// copyAssets mirrors the scanned images into the public stadium root. Files
// referenced by a power go under powers/, the rest by the dump they came from.
func (p *Pipeline) copyAssets(inv *assets.Inventory, heroes []models.Hero) assets.CopyStats {
	powerImages := map[string]bool{}
	for _, h := range heroes {
		for _, pw := range h.Powers {
			if pw.Image != "" {
				powerImages[pw.Image] = true
			}
		}
	}

	heroesImages := filepath.Clean(filepath.Join(p.cfg.Dumps.Heroes, "images"))
	byCategory := map[string][]string{}
	for _, f := range inv.Files() {
		switch {
		case powerImages[filepath.Base(f)]:
			byCategory[assets.CategoryPowers] = append(byCategory[assets.CategoryPowers], f)
		case filepath.Dir(f) == heroesImages:
			byCategory[assets.CategoryHeroes] = append(byCategory[assets.CategoryHeroes], f)
		default:
			byCategory[assets.CategoryItems] = append(byCategory[assets.CategoryItems], f)
		}
	}

	var total assets.CopyStats
	root := p.cfg.Output.StadiumAssetDir()
	for _, category := range []string{assets.CategoryHeroes, assets.CategoryItems, assets.CategoryPowers} {
		stats, err := assets.CopyFiles(byCategory[category], filepath.Join(root, category))
		if err != nil {
			pipelineLog.Warn().Err(err).Str("category", category).Msg("failed to copy assets")
		}
		total.Copied += stats.Copied
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed
	}
	pipelineLog.Info().
		Int("copied", total.Copied).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Str("root", root).
		Msg("copied assets")
	return total
}

// mirror pushes a written catalog to the SQLite mirror and Redis when they
// are configured.
func (p *Pipeline) mirror(ctx context.Context, res *merge.Result) error {
	if p.cfg.Output.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(p.cfg.Output.DBPath), 0o755); err != nil {
			return fmt.Errorf("failed to create db directory: %w", err)
		}
		store, err := storage.New(p.cfg.Output.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog db: %w", err)
		}
		defer store.Close()
		if err := store.ReplaceCatalog(ctx, res.Items, res.Heroes, res.Manifest); err != nil {
			return err
		}
		pipelineLog.Info().Str("db", p.cfg.Output.DBPath).Msg("mirrored catalog to sqlite")
	}

	if p.redis != nil {
		pub, err := redisstore.NewPublisher(p.redis, p.cfg.Redis.Prefix)
		if err != nil {
			return err
		}
		if err := pub.Publish(ctx, res.Items, res.Heroes, res.Manifest); err != nil {
			return err
		}
	}
	return nil
}
