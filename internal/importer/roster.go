package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/slug"
)

// StatPowerNames are the global stat icons collected into powers.json,
// compared with whitespace and image extension removed.
var StatPowerNames = []string{
	"AbilityPower",
	"AbilityLifesteal",
	"AttackSpeed",
	"CooldownReduction",
	"MaxAmmo",
	"MoveSpeed",
	"MeleeDamage",
	"WeaponPower",
	"WeaponLifesteal",
	"StadiumCash",
	"StadiumArmor",
	"StadiumStar",
	"StadiumShields",
}

// heroImageDirs are tried in order under an images root; the first existing
// one holds a folder per hero.
var heroImageDirs = []string{
	filepath.Join("hero_item_assets_v2", "images"),
	"images",
	".",
}

// Roster is the hero list and stat icons derived from the item catalog
type Roster struct {
	Heroes []models.Hero
	Powers []models.StatPower
	// Added counts heroes that were not in the prior list
	Added int
}

// DeriveRoster rebuilds the hero list around the item catalog. Known heroes
// keep their powers and details. A hero referenced only by an item's
// heroSlug, or only by a folder under imagesRoot, is added without powers.
// Every hero's items are the catalog items tagged with its slug. Heroes and
// powers come back sorted by slug.
func DeriveRoster(heroes []models.Hero, items []models.Item, imagesRoot string) (Roster, error) {
	var r Roster
	bySlug := make(map[string]int, len(heroes))
	add := func(h models.Hero) {
		bySlug[h.Slug] = len(r.Heroes)
		r.Heroes = append(r.Heroes, h)
	}
	for _, h := range heroes {
		if _, ok := bySlug[h.Slug]; ok {
			continue
		}
		add(h.Clone())
	}

	for _, it := range items {
		heroSlug := slug.Normalize(it.HeroSlug)
		if heroSlug == "" {
			continue
		}
		if _, ok := bySlug[heroSlug]; !ok {
			add(derivedHero(heroSlug, it.SourceTitle))
			r.Added++
		}
	}

	folders, err := heroFolders(imagesRoot)
	if err != nil {
		return Roster{}, err
	}
	for _, name := range folders {
		heroSlug := slug.Normalize(name)
		if heroSlug == "" {
			continue
		}
		if _, ok := bySlug[heroSlug]; !ok {
			add(derivedHero(heroSlug, ""))
			r.Added++
		}
	}

	for i := range r.Heroes {
		r.Heroes[i].Items = []models.Item{}
	}
	for _, it := range items {
		if it.HeroSlug == "" {
			continue
		}
		if i, ok := bySlug[slug.Normalize(it.HeroSlug)]; ok {
			r.Heroes[i].Items = append(r.Heroes[i].Items, it.Clone())
		}
	}
	slices.SortStableFunc(r.Heroes, func(a, b models.Hero) int { return strings.Compare(a.Slug, b.Slug) })

	r.Powers = StatPowers(items)
	importLog.Info().
		Int("heroes", len(r.Heroes)).
		Int("added", r.Added).
		Int("powers", len(r.Powers)).
		Msg("derived hero roster")
	return r, nil
}

// StatPowers picks the global stat icons out of items. The first item seen
// for an icon wins.
func StatPowers(items []models.Item) []models.StatPower {
	powers := []models.StatPower{}
	seen := map[string]bool{}
	for _, it := range items {
		base := imageExtRe.ReplaceAllString(it.Name, "")
		compact := strings.Join(strings.Fields(base), "")
		if !slices.Contains(StatPowerNames, compact) {
			continue
		}
		s := slug.Normalize(compact)
		if seen[s] {
			continue
		}
		seen[s] = true
		var icon string
		if len(it.ImageFilenames) > 0 {
			icon = it.ImageFilenames[0]
		}
		powers = append(powers, models.StatPower{Slug: s, Name: base, Icon: icon})
	}
	slices.SortFunc(powers, func(a, b models.StatPower) int { return strings.Compare(a.Slug, b.Slug) })
	return powers
}

func derivedHero(heroSlug, sourceTitle string) models.Hero {
	name := cases.Title(language.English).String(strings.ReplaceAll(heroSlug, "-", " "))
	if page, _, ok := strings.Cut(sourceTitle, "/"); ok && strings.TrimSpace(page) != "" {
		name = strings.Join(strings.Fields(page), " ")
	}
	return models.Hero{
		Slug:           heroSlug,
		Name:           name,
		Items:          []models.Item{},
		Powers:         []models.Power{},
		SourceTitle:    sourceTitle,
		ImageFilenames: []string{},
	}
}

// heroFolders lists the per-hero folders under imagesRoot. An empty root or
// one with no candidate directory yields nothing.
func heroFolders(imagesRoot string) ([]string, error) {
	if imagesRoot == "" {
		return nil, nil
	}
	for _, rel := range heroImageDirs {
		dir := filepath.Join(imagesRoot, rel)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		return names, nil
	}
	return nil, nil
}
