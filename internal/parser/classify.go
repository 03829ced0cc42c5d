package parser

import (
	"regexp"

	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/wikitext"
)

// Kind is what a template block turned out to describe
type Kind int

const (
	KindDiscard Kind = iota
	KindItem
	KindPower
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindPower:
		return "power"
	default:
		return "discard"
	}
}

var (
	powerTypeRe    = regexp.MustCompile(`(?i)power`)
	heroItemTypeRe = regexp.MustCompile(`(?i)hero item`)
	generalTypeRe  = regexp.MustCompile(`(?i)item|weapon|ability|survival`)
)

// candidate is a parsed block waiting for a classification
type candidate struct {
	typ  string
	item models.Item
}

type rule struct {
	name  string
	match func(c candidate) bool
	kind  Kind
}

func typeMatches(re *regexp.Regexp) func(c candidate) bool {
	return func(c candidate) bool { return re.MatchString(c.typ) }
}

// rules are evaluated top to bottom; the last one always matches
var rules = []rule{
	{name: "power", match: typeMatches(powerTypeRe), kind: KindPower},
	{name: "hero-item", match: typeMatches(heroItemTypeRe), kind: KindItem},
	{name: "general-item", match: typeMatches(generalTypeRe), kind: KindItem},
	{
		name:  "priced",
		match: func(c candidate) bool { return c.item.Cost != nil || c.item.Rarity != "" },
		kind:  KindItem,
	},
	{name: "fallthrough", match: func(candidate) bool { return true }, kind: KindDiscard},
}

// Classification is the outcome of classifying one block
type Classification struct {
	Kind  Kind
	Rule  string
	Item  *models.Item
	Power *models.Power
}

// Classify decides whether a block is an item, a power, or noise
func Classify(block, sourceTitle string) Classification {
	fields := wikitext.ParseFields(block)
	item, ok := buildItem(fields, block, sourceTitle)
	if !ok {
		return Classification{Kind: KindDiscard, Rule: "unnamed"}
	}

	typ, ok := fields.Get(FieldType)
	if !ok {
		typ, _ = wikitext.ScanField(block, FieldType)
	}
	c := candidate{typ: typ, item: item}

	for _, r := range rules {
		if !r.match(c) {
			continue
		}
		out := Classification{Kind: r.kind, Rule: r.name}
		switch r.kind {
		case KindItem:
			out.Item = &item
		case KindPower:
			out.Power = buildPower(fields, block, item)
		}
		return out
	}
	return Classification{Kind: KindDiscard, Rule: "fallthrough"}
}

func buildPower(fields wikitext.FieldMap, block string, item models.Item) *models.Power {
	affected, ok := fields.Get(FieldAffectedAbility)
	if !ok {
		affected, _ = wikitext.ScanField(block, FieldAffectedAbility)
	}
	p := &models.Power{
		Name:            item.Name,
		AffectedAbility: affected,
		Description:     item.Description,
		Type:            models.PowerTypeStadium,
	}
	if len(item.ImageFilenames) > 0 {
		p.Image = item.ImageFilenames[0]
	}
	return p
}
