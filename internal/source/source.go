// Package source finds and reads the wikitext pages of a dump directory.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/storage/jsonfile"
)

var sourceLog = logging.Module("source")

// ErrInputNotFound marks a required input path that does not exist
var ErrInputNotFound = errors.New("input not found")

// IndexFile is the optional page index at the root of a dump
const IndexFile = "index.json"

const defaultItemsWikitext = "wikitext/Stadium_Items.txt"

var (
	stadiumItemsTitleRe = regexp.MustCompile(`(?i)Stadium/?Items`)
	itemsTitleRe        = regexp.MustCompile(`(?i)Items`)
	stadiumTitleRe      = regexp.MustCompile(`(?i)Stadium`)
	dumpRelativeRe      = regexp.MustCompile(`(?i)^stadium_`)
)

// IndexEntry is one page listed in index.json
type IndexEntry struct {
	Title        string `json:"title"`
	WikitextFile string `json:"wikitext_file,omitempty"`
	Wikitext     string `json:"wikitext,omitempty"`
}

// File returns the entry's wikitext path, or fallback when none is set
func (e IndexEntry) File(fallback string) string {
	if e.WikitextFile != "" {
		return e.WikitextFile
	}
	if e.Wikitext != "" {
		return e.Wikitext
	}
	return fallback
}

// Page is one wikitext source. Text is empty until Load.
type Page struct {
	Title string
	Path  string
	Text  string
}

// RequireDir fails with ErrInputNotFound unless path is an existing directory
func RequireDir(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no directory given", ErrInputNotFound)
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, path)
	}
	return nil
}

// ReadIndex loads root/index.json. It reports false when there is no index.
func ReadIndex(root string) ([]IndexEntry, bool, error) {
	var entries []IndexEntry
	found, err := jsonfile.Read(filepath.Join(root, IndexFile), &entries)
	if err != nil {
		return nil, false, err
	}
	return entries, found, nil
}

// ResolvePath resolves a wikitext path from an index. Paths naming a
// stadium_ dump are relative to the dump's parent directory.
func ResolvePath(root, file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	base := root
	if dumpRelativeRe.MatchString(file) {
		base = filepath.Dir(root)
	}
	return filepath.Join(base, file)
}

// ItemPages lists the item pages of a dump: the index's items entry, or every
// .txt file in root when there is no index.
func ItemPages(root string) ([]Page, error) {
	if err := RequireDir(root); err != nil {
		return nil, err
	}
	entries, found, err := ReadIndex(root)
	if err != nil {
		return nil, err
	}
	if !found {
		return scanDir(root)
	}

	entry, ok := itemsEntry(entries)
	if !ok {
		sourceLog.Warn().Str("root", root).Msg("index has no items entry")
		return []Page{}, nil
	}
	path := ResolvePath(root, entry.File(defaultItemsWikitext))
	if !exists(path) {
		sourceLog.Warn().Str("path", path).Msg("items wikitext not found")
		return []Page{}, nil
	}
	return []Page{{Title: entry.Title, Path: path}}, nil
}

// HeroPages lists the hero pages of a dump: every index entry titled with
// Stadium other than the items page, or every .txt file when there is no index.
func HeroPages(root string) ([]Page, error) {
	if err := RequireDir(root); err != nil {
		return nil, err
	}
	entries, found, err := ReadIndex(root)
	if err != nil {
		return nil, err
	}
	if !found {
		return scanDir(root)
	}

	items, hasItems := itemsEntry(entries)
	pages := []Page{}
	for _, e := range entries {
		if !stadiumTitleRe.MatchString(e.Title) {
			continue
		}
		if hasItems && e.Title == items.Title {
			continue
		}
		path := ResolvePath(root, e.File("wikitext/"+e.Title+".txt"))
		if !exists(path) {
			sourceLog.Debug().Str("title", e.Title).Str("path", path).Msg("skipping missing hero page")
			continue
		}
		pages = append(pages, Page{Title: e.Title, Path: path})
	}
	return pages, nil
}

// DumpPages lists the item and hero pages of a build. When both dumps are the
// same directory without an index, its .txt files are split by title: pages
// titled like an items page feed the items pass and the rest are hero pages.
func DumpPages(itemsRoot, heroesRoot string) (items, heroes []Page, err error) {
	if filepath.Clean(itemsRoot) == filepath.Clean(heroesRoot) {
		if err := RequireDir(itemsRoot); err != nil {
			return nil, nil, err
		}
		_, found, err := ReadIndex(itemsRoot)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return splitShared(itemsRoot)
		}
	}

	if items, err = ItemPages(itemsRoot); err != nil {
		return nil, nil, err
	}
	if heroes, err = HeroPages(heroesRoot); err != nil {
		return nil, nil, err
	}
	return items, heroes, nil
}

func splitShared(root string) (items, heroes []Page, err error) {
	pages, err := scanDir(root)
	if err != nil {
		return nil, nil, err
	}
	items, heroes = []Page{}, []Page{}
	for _, p := range pages {
		if itemsTitleRe.MatchString(p.Title) {
			items = append(items, p)
		} else {
			heroes = append(heroes, p)
		}
	}
	sourceLog.Debug().
		Str("root", root).
		Int("itemPages", len(items)).
		Int("heroPages", len(heroes)).
		Msg("split shared dump by title")
	return items, heroes, nil
}

func itemsEntry(entries []IndexEntry) (IndexEntry, bool) {
	for _, re := range []*regexp.Regexp{stadiumItemsTitleRe, itemsTitleRe} {
		if i := slices.IndexFunc(entries, func(e IndexEntry) bool { return re.MatchString(e.Title) }); i >= 0 {
			return entries[i], true
		}
	}
	return IndexEntry{}, false
}

// scanDir lists every .txt file in dir, sorted, titled by file name minus
// the extension.
func scanDir(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	pages := []Page{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".txt") {
			continue
		}
		pages = append(pages, Page{
			Title: strings.TrimSuffix(name, filepath.Ext(name)),
			Path:  filepath.Join(dir, name),
		})
	}
	return pages, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads every page concurrently, at most limit at a time. The result
// keeps the input order.
func Load(ctx context.Context, pages []Page, limit int) ([]Page, error) {
	out := make([]Page, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p.Path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", p.Title, err)
			}
			p.Text = string(data)
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sourceLog.Debug().Int("pages", len(out)).Msg("loaded wikitext")
	return out, nil
}
