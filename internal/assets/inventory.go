// Package assets resolves parsed image references against the image files
// actually present on disk, and copies those files into the public asset root.
package assets

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/meur/stadiumforge/internal/logging"
)

var assetsLog = logging.Module("assets")

var (
	spaceRunRe = regexp.MustCompile(`\s+`)
	quoteRe    = regexp.MustCompile("[\"'`]")
	disallowRe = regexp.MustCompile(`[^a-z0-9._-]`)
)

// NormKey is the fully sanitized lookup key for a filename: lowercase,
// whitespace runs and quote characters become underscores, and any other
// character outside [a-z0-9._-] becomes an underscore too.
func NormKey(name string) string {
	k := strings.ToLower(name)
	k = spaceRunRe.ReplaceAllString(k, "_")
	k = quoteRe.ReplaceAllString(k, "_")
	return disallowRe.ReplaceAllString(k, "_")
}

// spaceKey only folds case and whitespace
func spaceKey(name string) string {
	return spaceRunRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// Inventory is the set of image filenames present on disk
type Inventory struct {
	files   []string // full paths, sorted
	exact   map[string]string
	bySpace map[string]string
	byKey   map[string]string
}

// NewInventory indexes bare filenames. When two files share a key the one
// that sorts first wins.
func NewInventory(filenames []string) *Inventory {
	names := slices.Clone(filenames)
	slices.Sort(names)

	inv := &Inventory{
		exact:   make(map[string]string, len(names)),
		bySpace: make(map[string]string, len(names)),
		byKey:   make(map[string]string, len(names)),
	}
	for _, n := range names {
		inv.add(n)
	}
	return inv
}

func (inv *Inventory) add(name string) {
	if _, ok := inv.exact[name]; !ok {
		inv.exact[name] = name
	}
	if _, ok := inv.bySpace[spaceKey(name)]; !ok {
		inv.bySpace[spaceKey(name)] = name
	}
	if _, ok := inv.byKey[NormKey(name)]; !ok {
		inv.byKey[NormKey(name)] = name
	}
}

// Scan builds an inventory from the regular files in dirs. Directories that
// do not exist are skipped.
func Scan(dirs ...string) (*Inventory, error) {
	var names, files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			names = append(names, e.Name())
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	inv := NewInventory(names)
	slices.Sort(files)
	inv.files = files
	assetsLog.Debug().Int("files", len(files)).Strs("dirs", dirs).Msg("scanned asset inventory")
	return inv, nil
}

// Len returns the number of distinct filenames
func (inv *Inventory) Len() int {
	return len(inv.exact)
}

// Files returns the full paths found by Scan
func (inv *Inventory) Files() []string {
	return slices.Clone(inv.files)
}

// Lookup resolves name by exact filename, then whitespace-normalized, then
// fully sanitized key.
func (inv *Inventory) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if f, ok := inv.exact[name]; ok {
		return f, true
	}
	if f, ok := inv.bySpace[spaceKey(name)]; ok {
		return f, true
	}
	if f, ok := inv.byKey[NormKey(name)]; ok {
		return f, true
	}
	return "", false
}

// Resolve is Lookup that falls back to the original name
func (inv *Inventory) Resolve(name string) string {
	if f, ok := inv.Lookup(name); ok {
		return f
	}
	return name
}

// CandidateDirs lists the image directories that may sit next to the given
// dump roots, without duplicates and in a stable order.
func CandidateDirs(roots ...string) []string {
	var out []string
	seen := map[string]bool{}
	push := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		parent := filepath.Dir(root)
		push(filepath.Join(root, "images"))
		push(filepath.Join(parent, "images"))
		push(filepath.Join(parent, "stadium_items_dump", "images"))
		push(filepath.Join(parent, "stadium_heroes_dump", "images"))
	}
	return out
}
