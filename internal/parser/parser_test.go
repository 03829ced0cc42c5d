package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/wikitext"
)

const itemBlock = `{{Ability details
| ability_name = Test Item
| ability_image = Test.png
| ability_type = General Item (Weapon)
| stadium_buffs = Weapon Power;;5%::Attack Speed;;10%
| stadium_rarity = Rare
| stadium_cost = 4000
| official_description = Test description
}}`

const sampleHero = `{{HeroTabs}}
'''Cassidy''' is a playable hero.

== Hero Items ==
{{Ability details
| ability_name = Quickload Chamber
| ability_image = Quickload_Chamber.png
| ability_type = Hero Item (Weapon)
| official_description = Reloading within 6m of an enemy adds 20% of Max Ammo as extra ammo.
| stadium_rarity = Rare
| stadium_cost = 4000
| stadium_buffs = Reload Speed;;20%
}}

== Powers ==
{{Ability details
| ability_name = Bullseye
| ability_image = Bullseye.png
| ability_type = Stadium Power
| affected_ability = Peacekeeper
| official_description = Critical hit reduces [Combat Roll]'s cooldown by 2s.
}}
`

func TestParseItem(t *testing.T) {
	item, ok := ParseItem(itemBlock, "Stadium Items")
	require.True(t, ok)

	assert.Equal(t, "test-item", item.Slug)
	assert.Equal(t, "Test Item", item.Name)
	assert.Equal(t, "Test description", item.Description)
	require.NotNil(t, item.Cost)
	assert.Equal(t, 4000, *item.Cost)
	assert.Equal(t, models.RarityRare, item.Rarity)
	assert.Equal(t, "General Item (Weapon)", item.AbilityType)
	assert.Equal(t, []models.Buff{
		{Key: "Weapon Power", Value: "5%"},
		{Key: "Attack Speed", Value: "10%"},
	}, item.Buffs)
	assert.Equal(t, []string{}, item.Tags)
	assert.Equal(t, "Stadium Items", item.SourceTitle)
	assert.Equal(t, []string{"Test.png"}, item.ImageFilenames)
}

func TestParseItemSingleLineScenario(t *testing.T) {
	item, ok := ParseItem("{{Ability details | ability_name = Test Item | ability_image = Test.png | stadium_cost = 4,000 }}", "Stadium Items")
	require.True(t, ok)

	assert.Equal(t, "test-item", item.Slug)
	assert.Equal(t, "Test Item", item.Name)
	require.NotNil(t, item.Cost)
	assert.Equal(t, 4000, *item.Cost)
	assert.Equal(t, []string{"Test.png"}, item.ImageFilenames)
}

func TestParseItemWithoutNameIsDiscarded(t *testing.T) {
	_, ok := ParseItem("{{Ability details\n| ability_image = Lonely.png\n| stadium_cost = 100\n}}", "x")
	assert.False(t, ok)
}

func TestParseItemOptionalFields(t *testing.T) {
	item, ok := ParseItem("{{Ability details\n| ability_name = Plain\n| stadium_cost = free\n}}", "x")
	require.True(t, ok)

	assert.Nil(t, item.Cost)
	assert.Equal(t, models.Rarity(""), item.Rarity)
	assert.Equal(t, []models.Buff{}, item.Buffs)
	assert.Equal(t, []string{}, item.ImageFilenames)
	assert.Equal(t, "", item.Description)
}

func TestParseItemRarityIsVerbatim(t *testing.T) {
	item, ok := ParseItem("{{Ability details\n| ability_name = Odd\n| stadium_rarity = Mythic\n}}", "x")
	require.True(t, ok)
	assert.Equal(t, models.Rarity("Mythic"), item.Rarity)
	assert.False(t, item.Rarity.Valid())
}

func TestParseBuffs(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []models.Buff
	}{
		{name: "empty", raw: "", want: []models.Buff{}},
		{name: "single", raw: "Max Life;;25", want: []models.Buff{{Key: "Max Life", Value: "25"}}},
		{name: "empty entries skipped", raw: "::A;;1::::B;;2::", want: []models.Buff{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}},
		{name: "key only", raw: "Unstoppable", want: []models.Buff{{Key: "Unstoppable", Value: ""}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseBuffs(tc.raw))
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		block    string
		wantKind Kind
		wantRule string
	}{
		{
			name:     "stadium power",
			block:    "{{Ability details\n| ability_name = Bullseye\n| ability_type = Stadium Power\n}}",
			wantKind: KindPower,
			wantRule: "power",
		},
		{
			name:     "power type found by raw scan",
			block:    "{{Ability details\n| ability_name = Bullseye\n| Ability_Type = stadium power\n}}",
			wantKind: KindPower,
			wantRule: "power",
		},
		{
			name:     "hero item",
			block:    "{{Ability details\n| ability_name = Chamber\n| ability_type = Hero Item (Weapon)\n}}",
			wantKind: KindItem,
			wantRule: "hero-item",
		},
		{
			name:     "general survival item",
			block:    "{{Ability details\n| ability_name = Vest\n| ability_type = General Item (Survival)\n}}",
			wantKind: KindItem,
			wantRule: "general-item",
		},
		{
			name:     "no type but cost",
			block:    "{{Ability details\n| ability_name = Coin\n| stadium_cost = 1000\n}}",
			wantKind: KindItem,
			wantRule: "priced",
		},
		{
			name:     "no type but rarity",
			block:    "{{Ability details\n| ability_name = Coin\n| stadium_rarity = Epic\n}}",
			wantKind: KindItem,
			wantRule: "priced",
		},
		{
			name:     "unknown type without evidence",
			block:    "{{Ability details\n| ability_name = Lore\n| ability_type = Trivia\n}}",
			wantKind: KindDiscard,
			wantRule: "fallthrough",
		},
		{
			name:     "no name",
			block:    "{{Ability details\n| ability_type = Stadium Power\n}}",
			wantKind: KindDiscard,
			wantRule: "unnamed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.block, "src")
			assert.Equal(t, tc.wantKind, c.Kind)
			assert.Equal(t, tc.wantRule, c.Rule)
			assert.Equal(t, tc.wantKind == KindItem, c.Item != nil)
			assert.Equal(t, tc.wantKind == KindPower, c.Power != nil)
		})
	}
}

func TestClassifyPowerFields(t *testing.T) {
	c := Classify("{{Ability details\n| ability_name = Bullseye\n| ability_image = [[File:Bullseye.png|32px]]\n| ability_type = Stadium Power\n| affected_ability = Peacekeeper\n| official_description = Crits help.\n}}", "Cassidy_Stadium")
	require.Equal(t, KindPower, c.Kind)

	assert.Equal(t, models.Power{
		Name:            "Bullseye",
		Image:           "Bullseye.png",
		AffectedAbility: "Peacekeeper",
		Description:     "Crits help.",
		Type:            models.PowerTypeStadium,
	}, *c.Power)
}

func TestParseHero(t *testing.T) {
	hero := ParseHero(sampleHero, "Cassidy_Stadium")

	assert.Equal(t, "cassidy", hero.Slug)
	assert.Equal(t, "Cassidy", hero.Name)
	assert.Equal(t, "Cassidy_Stadium", hero.SourceTitle)
	require.Len(t, hero.Powers, 1)
	require.Len(t, hero.Items, 1)

	assert.Equal(t, "Bullseye", hero.Powers[0].Name)
	assert.Equal(t, "Peacekeeper", hero.Powers[0].AffectedAbility)
	assert.Equal(t, "Bullseye.png", hero.Powers[0].Image)

	assert.Equal(t, "quickload-chamber", hero.Items[0].Slug)
	assert.Equal(t, "cassidy", hero.Items[0].HeroSlug)
}

func TestParseHeroPowerNeverInItems(t *testing.T) {
	hero := ParseHero(sampleHero, "Cassidy_Stadium")
	for _, it := range hero.Items {
		assert.NotEqual(t, "Bullseye", it.Name)
	}
}

func TestHeroDisplayName(t *testing.T) {
	testCases := map[string]string{
		"Cassidy_Stadium":       "Cassidy",
		"Cassidy stadium":       "Cassidy",
		"Junker_Queen__Stadium": "Junker Queen",
		"  Ana/Stadium ":        "Ana",
		"Stadium":               "Stadium",
		"Mauga":                 "Mauga",
	}
	for title, want := range testCases {
		assert.Equal(t, want, HeroDisplayName(title), title)
	}
}

func TestParseHeroSlugUsesNormalizer(t *testing.T) {
	testCases := []struct {
		title    string
		wantName string
		wantSlug string
	}{
		{title: "Lúcio_Stadium", wantName: "Lúcio", wantSlug: "lucio"},
		{title: "Soldier:_76_Stadium", wantName: "Soldier: 76", wantSlug: "soldier-76"},
		{title: "D.Va Stadium", wantName: "D.Va", wantSlug: "dva"},
		{title: "Ana/Stadium", wantName: "Ana", wantSlug: "ana"},
		{title: "Wrecking_Ball", wantName: "Wrecking Ball", wantSlug: "wrecking-ball"},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			hero := ParseHero("", tc.title)
			assert.Equal(t, tc.wantName, hero.Name)
			assert.Equal(t, tc.wantSlug, hero.Slug)
			assert.Empty(t, hero.Items)
			assert.Empty(t, hero.Powers)
		})
	}
}

func TestDuplicatedBlocksYieldIdenticalItems(t *testing.T) {
	src := itemBlock + "\n" + itemBlock
	blocks := wikitext.FindAbilityTemplates(src)
	require.Len(t, blocks, 2)

	first, ok := ParseItem(blocks[0], "Stadium Items")
	require.True(t, ok)
	second, ok := ParseItem(blocks[1], "Stadium Items")
	require.True(t, ok)
	assert.Equal(t, first, second)

	assert.Len(t, ParseItems(src, "Stadium Items"), 2)
}

func TestParseItemsDropsPowers(t *testing.T) {
	items := ParseItems(sampleHero, "Stadium Items")
	require.Len(t, items, 1)
	assert.Equal(t, "Quickload Chamber", items[0].Name)
	assert.Empty(t, items[0].HeroSlug)
}
