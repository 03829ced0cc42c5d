// Package merge reconciles a freshly parsed batch against the catalog already
// on disk and the asset inventory, then writes the result.
package merge

import (
	"slices"
	"strings"

	"github.com/meur/stadiumforge/internal/assets"
	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/models"
)

var mergeLog = logging.Module("merge")

// Stats summarises a hero merge
type Stats struct {
	Parsed      int
	Updated     int
	Added       int
	TotalPowers int
}

// DedupeItems keeps the first item seen for each slug, preserving order
func DedupeItems(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.Slug] {
			mergeLog.Debug().Str("slug", it.Slug).Str("source", it.SourceTitle).Msg("dropping duplicate item")
			continue
		}
		seen[it.Slug] = true
		out = append(out, it)
	}
	return out
}

// MergeHeroes folds fresh heroes into the prior catalog. A hero already in
// prior gets its powers replaced and keeps its items; a new hero is added
// with no items. The result is sorted by slug.
func MergeHeroes(prior, fresh []models.Hero) ([]models.Hero, Stats) {
	merged := make([]models.Hero, 0, len(prior)+len(fresh))
	bySlug := make(map[string]int, len(prior)+len(fresh))
	for _, h := range prior {
		if _, ok := bySlug[h.Slug]; ok {
			continue
		}
		bySlug[h.Slug] = len(merged)
		merged = append(merged, h.Clone())
	}

	var stats Stats
	for _, h := range fresh {
		stats.Parsed++
		stats.TotalPowers += len(h.Powers)
		powers := append([]models.Power{}, h.Powers...)

		if i, ok := bySlug[h.Slug]; ok {
			merged[i].Powers = powers
			stats.Updated++
			continue
		}

		bySlug[h.Slug] = len(merged)
		merged = append(merged, models.Hero{
			Slug:           h.Slug,
			Name:           h.Name,
			Role:           h.Role,
			Description:    h.Description,
			Items:          []models.Item{},
			Powers:         powers,
			SourceTitle:    h.SourceTitle,
			ImageFilenames: append([]string{}, h.ImageFilenames...),
		})
		stats.Added++
	}

	slices.SortStableFunc(merged, func(a, b models.Hero) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return merged, stats
}

// ReconcileImages rewrites image references in place to the filenames found
// in inv. Names with no match are left as parsed. A nil inventory is a no-op.
func ReconcileImages(items []models.Item, heroes []models.Hero, inv *assets.Inventory) {
	if inv == nil {
		return
	}
	for i := range items {
		remapAll(items[i].ImageFilenames, inv)
	}
	for i := range heroes {
		h := &heroes[i]
		remapAll(h.ImageFilenames, inv)
		for j := range h.Items {
			remapAll(h.Items[j].ImageFilenames, inv)
		}
		for j := range h.Powers {
			if h.Powers[j].Image != "" {
				h.Powers[j].Image = inv.Resolve(h.Powers[j].Image)
			}
		}
	}
}

func remapAll(names []string, inv *assets.Inventory) {
	for i, n := range names {
		names[i] = inv.Resolve(n)
	}
}
