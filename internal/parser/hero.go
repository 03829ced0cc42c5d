package parser

import (
	"regexp"
	"strings"

	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/slug"
	"github.com/meur/stadiumforge/internal/wikitext"
)

var (
	stadiumSuffixRe = regexp.MustCompile(`(?i)(?:_|\s+|/)Stadium$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// HeroDisplayName derives a readable hero name from a page title such as
// "Cassidy_Stadium", "Soldier: 76 Stadium" or "Ana/Stadium".
func HeroDisplayName(sourceTitle string) string {
	name := strings.ReplaceAll(strings.TrimSpace(sourceTitle), "_", " ")
	name = stadiumSuffixRe.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
}

// ParseHero assembles a hero from every Ability details block on its page.
// Items found on the page are tagged with the hero's slug.
func ParseHero(src, sourceTitle string) models.Hero {
	name := HeroDisplayName(sourceTitle)
	hero := models.Hero{
		Slug:           slug.Normalize(name),
		Name:           name,
		Items:          []models.Item{},
		Powers:         []models.Power{},
		SourceTitle:    sourceTitle,
		ImageFilenames: []string{},
	}

	discarded := 0
	for block := range wikitext.Templates(src, wikitext.AbilityDetails) {
		c := Classify(block, sourceTitle)
		switch c.Kind {
		case KindPower:
			hero.Powers = append(hero.Powers, *c.Power)
		case KindItem:
			c.Item.HeroSlug = hero.Slug
			hero.Items = append(hero.Items, *c.Item)
		default:
			discarded++
		}
	}

	parserLog.Debug().
		Str("hero", hero.Slug).
		Int("items", len(hero.Items)).
		Int("powers", len(hero.Powers)).
		Int("discarded", discarded).
		Msg("parsed hero page")
	return hero
}

// ParseItems returns every block on a page that classifies as an item, in
// page order. Powers and unclassifiable blocks are dropped.
func ParseItems(src, sourceTitle string) []models.Item {
	items := []models.Item{}
	for block := range wikitext.Templates(src, wikitext.AbilityDetails) {
		if c := Classify(block, sourceTitle); c.Kind == KindItem {
			items = append(items, *c.Item)
		}
	}
	return items
}
