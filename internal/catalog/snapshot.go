// Package catalog serves a built catalog read-only. A Catalog holds one
// immutable Snapshot at a time and swaps it whole on reload.
package catalog

import (
	"errors"

	"github.com/meur/stadiumforge/internal/models"
)

// ErrNotFound is returned for a slug the snapshot does not contain
var ErrNotFound = errors.New("not found")

// Snapshot is an immutable view of one catalog build. Lookups return copies.
type Snapshot struct {
	items    []models.Item
	heroes   []models.Hero
	manifest models.Manifest

	itemIdx map[string]int
	heroIdx map[string]int
}

// NewSnapshot indexes items and heroes by slug. When a slug repeats the first
// record wins.
func NewSnapshot(items []models.Item, heroes []models.Hero, m models.Manifest) *Snapshot {
	s := &Snapshot{
		items:    make([]models.Item, 0, len(items)),
		heroes:   make([]models.Hero, 0, len(heroes)),
		manifest: m,
		itemIdx:  make(map[string]int, len(items)),
		heroIdx:  make(map[string]int, len(heroes)),
	}
	for _, it := range items {
		if _, ok := s.itemIdx[it.Slug]; ok {
			continue
		}
		s.itemIdx[it.Slug] = len(s.items)
		s.items = append(s.items, it.Clone())
	}
	for _, h := range heroes {
		if _, ok := s.heroIdx[h.Slug]; ok {
			continue
		}
		s.heroIdx[h.Slug] = len(s.heroes)
		s.heroes = append(s.heroes, h.Clone())
	}
	return s
}

// Empty returns a snapshot with no records
func Empty() *Snapshot {
	return NewSnapshot(nil, nil, models.Manifest{})
}

// Manifest returns the build manifest
func (s *Snapshot) Manifest() models.Manifest {
	return s.manifest
}

// Items returns every item, general and hero-specific
func (s *Snapshot) Items() []models.Item {
	out := make([]models.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	return out
}

// GeneralItems returns the items not tied to a hero
func (s *Snapshot) GeneralItems() []models.Item {
	out := []models.Item{}
	for _, it := range s.items {
		if !it.HeroSpecific() {
			out = append(out, it.Clone())
		}
	}
	return out
}

// Item looks an item up by slug
func (s *Snapshot) Item(slug string) (models.Item, error) {
	i, ok := s.itemIdx[slug]
	if !ok {
		return models.Item{}, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

// Heroes returns every hero
func (s *Snapshot) Heroes() []models.Hero {
	out := make([]models.Hero, 0, len(s.heroes))
	for _, h := range s.heroes {
		out = append(out, h.Clone())
	}
	return out
}

// Hero looks a hero up by slug
func (s *Snapshot) Hero(slug string) (models.Hero, error) {
	i, ok := s.heroIdx[slug]
	if !ok {
		return models.Hero{}, ErrNotFound
	}
	return s.heroes[i].Clone(), nil
}

// ItemsForHero returns the general items plus those tied to the hero, in
// catalog order. Items embedded in the hero record are appended when the
// flat list does not already carry them.
func (s *Snapshot) ItemsForHero(slug string) ([]models.Item, error) {
	i, ok := s.heroIdx[slug]
	if !ok {
		return nil, ErrNotFound
	}

	out := []models.Item{}
	seen := map[string]bool{}
	for _, it := range s.items {
		if it.HeroSlug == "" || it.HeroSlug == slug {
			out = append(out, it.Clone())
			seen[it.Slug] = true
		}
	}
	for _, it := range s.heroes[i].Items {
		if !seen[it.Slug] {
			out = append(out, it.Clone())
			seen[it.Slug] = true
		}
	}
	return out, nil
}
