// Package importer folds a hero item manifest (CSV) into the items catalog.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/meur/stadiumforge/internal/assets"
	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/slug"
	"github.com/meur/stadiumforge/internal/source"
)

var importLog = logging.Module("importer")

// AssetPrefix is the public URL prefix of hero item images
const AssetPrefix = "/assets/items/"

var imageExtRe = regexp.MustCompile(`(?i)\.(png|svg|jpe?g)$`)

// Row is one manifest line
type Row struct {
	Hero      string
	PageTitle string
	ItemName  string
	SavedPath string
}

// ReadManifest parses a manifest with a hero,page_title,item_name,saved_path
// header. Columns may come in any order; unknown ones are ignored.
func ReadManifest(csvPath string) ([]Row, error) {
	f, err := os.Open(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", source.ErrInputNotFound, csvPath)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseManifest(f)
}

// ParseManifest reads manifest rows from r
func ParseManifest(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := []Row{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
		rows = append(rows, Row{
			Hero:      get(rec, "hero"),
			PageTitle: get(rec, "page_title"),
			ItemName:  get(rec, "item_name"),
			SavedPath: get(rec, "saved_path"),
		})
	}
	return rows, nil
}

// Options controls the optional asset copy
type Options struct {
	ImagesRoot      string // base dir of saved_path; empty disables copying
	PublicItemsRoot string // destination, one subdirectory per hero
}

// Stats counts what an import did
type Stats struct {
	Rows    int
	Added   int
	Updated int
	Copied  int
}

// Import applies rows to items and returns the new catalog sorted by slug.
// Items already present gain the row's hero and image path; new ones are
// added as hero-specific items.
func Import(items []models.Item, rows []Row, opts Options) ([]models.Item, Stats) {
	out := make([]models.Item, 0, len(items)+len(rows))
	bySlug := make(map[string]int, len(items)+len(rows))
	for _, it := range items {
		if _, ok := bySlug[it.Slug]; ok {
			continue
		}
		bySlug[it.Slug] = len(out)
		out = append(out, it.Clone())
	}

	stats := Stats{Rows: len(rows)}
	for _, r := range rows {
		if r.ItemName == "" {
			continue
		}
		itemSlug := slug.Normalize(imageExtRe.ReplaceAllString(r.ItemName, ""))
		heroSlug := slug.Normalize(r.Hero)
		filename := path.Base(filepath.ToSlash(r.SavedPath))
		assetPath := AssetPrefix + heroSlug + "/" + filename

		if i, ok := bySlug[itemSlug]; ok {
			it := &out[i]
			if it.HeroSlug == "" {
				it.HeroSlug = heroSlug
			}
			if it.SourceTitle == "" {
				it.SourceTitle = r.PageTitle
			}
			if !slices.Contains(it.ImageFilenames, assetPath) {
				it.ImageFilenames = append(it.ImageFilenames, assetPath)
				stats.Updated++
			}
		} else {
			bySlug[itemSlug] = len(out)
			out = append(out, models.Item{
				Slug:           itemSlug,
				Name:           r.ItemName,
				HeroSlug:       heroSlug,
				Tags:           []string{},
				Buffs:          []models.Buff{},
				SourceTitle:    r.PageTitle,
				ImageFilenames: []string{assetPath},
			})
			stats.Added++
		}

		if copyAsset(r, heroSlug, filename, opts) {
			stats.Copied++
		}
	}

	slices.SortStableFunc(out, func(a, b models.Item) int { return strings.Compare(a.Slug, b.Slug) })
	Cleanup(out)
	return out, stats
}

func copyAsset(r Row, heroSlug, filename string, opts Options) bool {
	if opts.ImagesRoot == "" || opts.PublicItemsRoot == "" || r.SavedPath == "" {
		return false
	}
	src := r.SavedPath
	if !filepath.IsAbs(src) {
		src = filepath.Join(opts.ImagesRoot, src)
	}
	if _, err := os.Stat(src); err != nil {
		return false
	}
	copied, err := assets.CopyIfChanged(src, filepath.Join(opts.PublicItemsRoot, heroSlug, filename))
	if err != nil {
		importLog.Warn().Err(err).Str("src", src).Msg("failed to copy item asset")
		return false
	}
	return copied
}

// Cleanup normalizes hero slugs, including the hero segment of asset paths,
// and drops repeated image paths.
func Cleanup(items []models.Item) {
	for i := range items {
		it := &items[i]
		if it.HeroSlug != "" {
			it.HeroSlug = slug.Normalize(it.HeroSlug)
		}
		cleaned := make([]string, 0, len(it.ImageFilenames))
		for _, p := range it.ImageFilenames {
			p = normalizeAssetPath(p)
			if !slices.Contains(cleaned, p) {
				cleaned = append(cleaned, p)
			}
		}
		it.ImageFilenames = cleaned
	}
}

func normalizeAssetPath(p string) string {
	rest, ok := strings.CutPrefix(p, AssetPrefix)
	if !ok {
		return p
	}
	hero, file, ok := strings.Cut(rest, "/")
	if !ok {
		return p
	}
	return AssetPrefix + slug.Normalize(hero) + "/" + file
}
