package merge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/meur/stadiumforge/internal/assets"
	"github.com/meur/stadiumforge/internal/models"
	mockclock "github.com/meur/stadiumforge/internal/pkg/clock/mock"
	"github.com/meur/stadiumforge/internal/storage/jsonfile"
)

func item(slug, source string, images ...string) models.Item {
	if images == nil {
		images = []string{}
	}
	return models.Item{
		Slug:           slug,
		Name:           slug,
		Tags:           []string{},
		Buffs:          []models.Buff{},
		SourceTitle:    source,
		ImageFilenames: images,
	}
}

func hero(slug string, powers ...string) models.Hero {
	h := models.Hero{
		Slug:           slug,
		Name:           slug,
		Items:          []models.Item{},
		Powers:         []models.Power{},
		SourceTitle:    slug + "_Stadium",
		ImageFilenames: []string{},
	}
	for _, p := range powers {
		h.Powers = append(h.Powers, models.Power{Name: p, Type: models.PowerTypeStadium})
	}
	return h
}

func TestDedupeItemsKeepsFirst(t *testing.T) {
	got := DedupeItems([]models.Item{
		item("a", "first"),
		item("b", "first"),
		item("a", "second"),
		item("c", "first"),
		item("b", "second"),
	})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Slug, got[1].Slug, got[2].Slug})
	for _, it := range got {
		assert.Equal(t, "first", it.SourceTitle)
	}
}

func TestDedupeItemsEmpty(t *testing.T) {
	got := DedupeItems(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeHeroes(t *testing.T) {
	existing := hero("cassidy", "Old Power")
	existing.Items = []models.Item{item("peacekeeper-plus", "csv")}
	existing.Role = "Damage"

	fresh := []models.Hero{
		hero("cassidy", "Quick Draw", "Dead Man Walking"),
		hero("ana", "Headhunter"),
	}
	fresh[1].Items = []models.Item{item("ignored", "page")}

	merged, stats := MergeHeroes([]models.Hero{existing, hero("zarya")}, fresh)

	assert.Equal(t, Stats{Parsed: 2, Updated: 1, Added: 1, TotalPowers: 3}, stats)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"ana", "cassidy", "zarya"}, []string{merged[0].Slug, merged[1].Slug, merged[2].Slug})

	ana := merged[0]
	assert.Empty(t, ana.Items, "new heroes start without items")
	assert.NotNil(t, ana.Items)
	assert.Len(t, ana.Powers, 1)

	cassidy := merged[1]
	assert.Equal(t, "Damage", cassidy.Role)
	require.Len(t, cassidy.Items, 1)
	assert.Equal(t, "peacekeeper-plus", cassidy.Items[0].Slug)
	require.Len(t, cassidy.Powers, 2)
	assert.Equal(t, "Quick Draw", cassidy.Powers[0].Name)

	assert.Equal(t, "Old Power", existing.Powers[0].Name, "prior input must not be mutated")
}

func TestMergeHeroesEmptyPowersReplace(t *testing.T) {
	merged, stats := MergeHeroes([]models.Hero{hero("mei", "Blizzard Mastery")}, []models.Hero{hero("mei")})
	assert.Equal(t, 1, stats.Updated)
	require.Len(t, merged, 1)
	assert.Empty(t, merged[0].Powers)
}

func TestReconcileImages(t *testing.T) {
	inv := assets.NewInventory([]string{"Quickload_Chamber.png", "Headhunter.png", "Hero_Icon.png"})

	items := []models.Item{item("quickload-chamber", "items", "Quickload Chamber.png", "Unknown.png")}
	h := hero("ana", "Headhunter")
	h.Powers[0].Image = "headhunter.png"
	h.Powers = append(h.Powers, models.Power{Name: "No Image"})
	h.ImageFilenames = []string{"hero icon.png"}
	h.Items = []models.Item{item("x", "page", "QUICKLOAD CHAMBER.png")}
	heroes := []models.Hero{h}

	ReconcileImages(items, heroes, inv)

	assert.Equal(t, []string{"Quickload_Chamber.png", "Unknown.png"}, items[0].ImageFilenames)
	assert.Equal(t, "Headhunter.png", heroes[0].Powers[0].Image)
	assert.Equal(t, "", heroes[0].Powers[1].Image)
	assert.Equal(t, []string{"Hero_Icon.png"}, heroes[0].ImageFilenames)
	assert.Equal(t, []string{"Quickload_Chamber.png"}, heroes[0].Items[0].ImageFilenames)
}

func TestReconcileImagesNilInventory(t *testing.T) {
	items := []models.Item{item("a", "items", "A b.png")}
	ReconcileImages(items, nil, nil)
	assert.Equal(t, []string{"A b.png"}, items[0].ImageFilenames)
}

type MergerTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockClock *mockclock.MockClock
	outDir    string
	merger    *Merger
	ctx       context.Context
}

func (s *MergerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mockclock.NewMockClock(s.ctrl)
	s.outDir = filepath.Join(s.T().TempDir(), "data", "stadium")
	s.ctx = context.Background()

	m, err := New(&Config{
		OutDir:    s.outDir,
		Inventory: assets.NewInventory([]string{"Test_Item.png"}),
		Clock:     s.mockClock,
	})
	s.Require().NoError(err)
	s.merger = m
}

func (s *MergerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MergerTestSuite) batch() Batch {
	return Batch{
		Items: []models.Item{
			item("test-item", "Stadium/Items", "Test Item.png"),
			item("other", "Stadium/Items"),
			item("test-item", "Cassidy_Stadium"),
		},
		Heroes: []models.Hero{hero("cassidy", "Quick Draw")},
	}
}

func (s *MergerTestSuite) readFile(name string) []byte {
	data, err := os.ReadFile(filepath.Join(s.outDir, name))
	s.Require().NoError(err)
	return data
}

func (s *MergerTestSuite) TestRunWritesCatalog() {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(at)

	res, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	s.True(res.Written)
	s.Equal(models.Manifest{GeneratedAt: "2026-03-04T05:06:07Z", Counts: models.Counts{Items: 2, Heroes: 1}}, res.Manifest)

	var items []models.Item
	found, err := jsonfile.Read(filepath.Join(s.outDir, models.ItemsFile), &items)
	s.Require().NoError(err)
	s.True(found)
	s.Require().Len(items, 2)
	s.Equal("Stadium/Items", items[0].SourceTitle)
	s.Equal([]string{"Test_Item.png"}, items[0].ImageFilenames)

	var meta models.Manifest
	_, err = jsonfile.Read(filepath.Join(s.outDir, models.MetaFile), &meta)
	s.Require().NoError(err)
	s.Equal(res.Manifest, meta)
}

func (s *MergerTestSuite) TestRunIsIdempotent() {
	s.mockClock.EXPECT().Now().Return(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	first, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	items1 := s.readFile(models.ItemsFile)
	heroes1 := s.readFile(models.HeroesFile)

	s.mockClock.EXPECT().Now().Return(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	second, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)

	s.Equal(items1, s.readFile(models.ItemsFile))
	s.Equal(heroes1, s.readFile(models.HeroesFile))
	if diff := cmp.Diff(first.Heroes, second.Heroes); diff != "" {
		s.Failf("heroes changed between runs", "(-first +second):\n%s", diff)
	}
	s.NotEqual(first.Manifest.GeneratedAt, second.Manifest.GeneratedAt)
	s.Equal(first.Manifest.Counts, second.Manifest.Counts)
}

func (s *MergerTestSuite) TestRunKeepsPriorHeroItems() {
	prior := hero("cassidy", "Old")
	prior.Items = []models.Item{item("peacekeeper-plus", "csv")}
	s.Require().NoError(jsonfile.Write(filepath.Join(s.outDir, models.HeroesFile), []models.Hero{prior}))

	s.mockClock.EXPECT().Now().Return(time.Now())
	res, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)

	s.Require().Len(res.Heroes, 1)
	s.Equal("Quick Draw", res.Heroes[0].Powers[0].Name)
	s.Require().Len(res.Heroes[0].Items, 1)
	s.Equal(1, res.Stats.Updated)
}

func (s *MergerTestSuite) TestRunDryRunWritesNothing() {
	m, err := New(&Config{OutDir: s.outDir, Clock: s.mockClock, DryRun: true})
	s.Require().NoError(err)

	s.mockClock.EXPECT().Now().Return(time.Now())
	res, err := m.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	s.False(res.Written)
	s.Len(res.Items, 2)

	_, err = os.Stat(s.outDir)
	s.True(os.IsNotExist(err))
}

func (s *MergerTestSuite) TestRunCorruptPriorFails() {
	s.Require().NoError(jsonfile.WriteBytes(filepath.Join(s.outDir, models.HeroesFile), []byte("[{")))

	_, err := s.merger.Run(s.ctx, s.batch())
	s.Error(err)
}

func (s *MergerTestSuite) TestRefreshHeroesLeavesItems() {
	s.mockClock.EXPECT().Now().Return(time.Now()).Times(2)
	_, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	itemsBefore := s.readFile(models.ItemsFile)

	res, err := s.merger.RefreshHeroes(s.ctx, []models.Hero{hero("cassidy", "A", "B"), hero("ana", "C")})
	s.Require().NoError(err)

	s.Equal(Stats{Parsed: 2, Updated: 1, Added: 1, TotalPowers: 3}, res.Stats)
	s.Equal(itemsBefore, s.readFile(models.ItemsFile))
	s.Equal(models.Counts{Items: 2, Heroes: 2}, res.Manifest.Counts)
}

func (s *MergerTestSuite) TestReplaceItemsLeavesHeroes() {
	s.mockClock.EXPECT().Now().Return(time.Now()).Times(2)
	_, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	heroesBefore := s.readFile(models.HeroesFile)

	res, err := s.merger.ReplaceItems(s.ctx, []models.Item{item("only", "csv")})
	s.Require().NoError(err)
	s.True(res.Written)

	s.Equal(heroesBefore, s.readFile(models.HeroesFile))
	s.Equal(models.Counts{Items: 1, Heroes: 1}, res.Manifest.Counts)

	items, err := s.merger.LoadItems()
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("only", items[0].Slug)
}

func (s *MergerTestSuite) TestReplaceRosterWritesHeroesAndPowers() {
	s.mockClock.EXPECT().Now().Return(time.Now()).Times(2)
	_, err := s.merger.Run(s.ctx, s.batch())
	s.Require().NoError(err)
	itemsBefore := s.readFile(models.ItemsFile)

	heroes := []models.Hero{hero("ana"), hero("cassidy", "Quick Draw")}
	powers := []models.StatPower{{Slug: "weaponpower", Name: "Weapon Power", Icon: "WeaponPower.svg"}}
	res, err := s.merger.ReplaceRoster(s.ctx, heroes, powers)
	s.Require().NoError(err)
	s.True(res.Written)
	s.Equal(models.Counts{Items: 2, Heroes: 2}, res.Manifest.Counts)
	s.Equal(itemsBefore, s.readFile(models.ItemsFile))

	loaded, err := s.merger.LoadHeroes()
	s.Require().NoError(err)
	s.Empty(cmp.Diff(heroes, loaded))

	var written []models.StatPower
	found, err := jsonfile.Read(filepath.Join(s.outDir, models.PowersFile), &written)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(powers, written)
}

func (s *MergerTestSuite) TestReplaceRosterDryRunWritesNothing() {
	s.mockClock.EXPECT().Now().Return(time.Now())
	m, err := New(&Config{OutDir: s.outDir, Clock: s.mockClock, DryRun: true})
	s.Require().NoError(err)

	res, err := m.ReplaceRoster(s.ctx, []models.Hero{hero("ana")}, []models.StatPower{})
	s.Require().NoError(err)
	s.False(res.Written)
	s.NoFileExists(filepath.Join(s.outDir, models.PowersFile))
	s.NoFileExists(filepath.Join(s.outDir, models.HeroesFile))
}

func TestMergerTestSuite(t *testing.T) {
	suite.Run(t, new(MergerTestSuite))
}

func TestNewRequiresOutDir(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}
