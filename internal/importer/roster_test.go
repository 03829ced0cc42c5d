package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/stadiumforge/internal/models"
)

func catalogItem(itemSlug, name, heroSlug, source string, images ...string) models.Item {
	if images == nil {
		images = []string{}
	}
	return models.Item{
		Slug:           itemSlug,
		Name:           name,
		HeroSlug:       heroSlug,
		Tags:           []string{},
		Buffs:          []models.Buff{},
		SourceTitle:    source,
		ImageFilenames: images,
	}
}

func TestDeriveRosterAddsHeroesFromItems(t *testing.T) {
	cassidy := models.Hero{
		Slug:        "cassidy",
		Name:        "Cassidy",
		Items:       []models.Item{},
		Powers:      []models.Power{{Name: "Bullseye", Type: models.PowerTypeStadium}},
		SourceTitle: "Cassidy_Stadium",
	}
	items := []models.Item{
		catalogItem("biotic-bouncer", "Biotic Bouncer", "ana", "Ana/Stadium"),
		catalogItem("compensator", "Compensator", "", "Stadium/Items"),
		catalogItem("quickload-chamber", "Quickload Chamber", "cassidy", "Cassidy/Stadium"),
		catalogItem("sonic-boom", "Sonic Boom", "l-cio", ""),
		catalogItem("sleep-regimen", "Sleep Regimen", "ana", "Ana/Stadium"),
	}

	r, err := DeriveRoster([]models.Hero{cassidy}, items, "")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Added)
	require.Len(t, r.Heroes, 3)

	ana, cas, lucio := r.Heroes[0], r.Heroes[1], r.Heroes[2]
	assert.Equal(t, "ana", ana.Slug)
	assert.Equal(t, "Ana", ana.Name)
	assert.Equal(t, "Ana/Stadium", ana.SourceTitle)
	assert.Empty(t, ana.Powers)
	require.Len(t, ana.Items, 2)
	assert.Equal(t, "biotic-bouncer", ana.Items[0].Slug)
	assert.Equal(t, "sleep-regimen", ana.Items[1].Slug)

	assert.Equal(t, "cassidy", cas.Slug)
	assert.Equal(t, "Cassidy_Stadium", cas.SourceTitle)
	require.Len(t, cas.Powers, 1, "known heroes keep their powers")
	require.Len(t, cas.Items, 1)
	assert.Equal(t, "quickload-chamber", cas.Items[0].Slug)

	assert.Equal(t, "lucio", lucio.Slug)
	assert.Equal(t, "Lucio", lucio.Name)
	require.Len(t, lucio.Items, 1)
}

func TestDeriveRosterAddsHeroesFromImageFolders(t *testing.T) {
	root := t.TempDir()
	images := filepath.Join(root, "hero_item_assets_v2", "images")
	for _, dir := range []string{"Junker Queen", "ana", "Torbjörn"} {
		require.NoError(t, os.MkdirAll(filepath.Join(images, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(images, "stray.png"), []byte("x"), 0o644))
	items := []models.Item{catalogItem("biotic-bouncer", "Biotic Bouncer", "ana", "Ana/Stadium")}

	r, err := DeriveRoster(nil, items, root)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Added)

	var slugs, names []string
	for _, h := range r.Heroes {
		slugs = append(slugs, h.Slug)
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"ana", "junker-queen", "torbjorn"}, slugs)
	assert.Equal(t, []string{"Ana", "Junker Queen", "Torbjorn"}, names)
	assert.Empty(t, r.Heroes[1].Items)
}

func TestDeriveRosterFallsBackToImagesRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "mauga"), 0o755))

	r, err := DeriveRoster(nil, nil, root)
	require.NoError(t, err)
	require.Len(t, r.Heroes, 1)
	assert.Equal(t, "mauga", r.Heroes[0].Slug)
	assert.Empty(t, r.Powers)
}

func TestDeriveRosterIsStable(t *testing.T) {
	items := []models.Item{catalogItem("quick-draw", "Quick Draw", "cassidy", "Cassidy/Stadium")}

	first, err := DeriveRoster(nil, items, "")
	require.NoError(t, err)
	second, err := DeriveRoster(first.Heroes, items, "")
	require.NoError(t, err)

	assert.Equal(t, 0, second.Added)
	assert.Equal(t, first.Heroes, second.Heroes)
}

func TestStatPowers(t *testing.T) {
	items := []models.Item{
		catalogItem("weaponpower", "WeaponPower.svg", "", "", "WeaponPower.svg"),
		catalogItem("weapon-power", "Weapon Power", "", "", "Other.png"),
		catalogItem("attack-speed", "Attack Speed", "", ""),
		catalogItem("compensator", "Compensator", "", "", "Compensator.png"),
	}

	powers := StatPowers(items)
	assert.Equal(t, []models.StatPower{
		{Slug: "attackspeed", Name: "Attack Speed"},
		{Slug: "weaponpower", Name: "WeaponPower", Icon: "WeaponPower.svg"},
	}, powers)
}

func TestStatPowersNone(t *testing.T) {
	powers := StatPowers([]models.Item{catalogItem("compensator", "Compensator", "", "")})
	assert.NotNil(t, powers)
	assert.Empty(t, powers)
}
