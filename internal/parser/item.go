// Package parser turns Ability details template blocks into items, powers and
// hero records.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/slug"
	"github.com/meur/stadiumforge/internal/wikitext"
)

// Template field names
const (
	FieldName            = "ability_name"
	FieldType            = "ability_type"
	FieldCost            = "stadium_cost"
	FieldRarity          = "stadium_rarity"
	FieldBuffs           = "stadium_buffs"
	FieldDescription     = "official_description"
	FieldAltDescription  = "description"
	FieldAffectedAbility = "affected_ability"
)

const (
	buffSeparator = "::"
	pairSeparator = ";;"
)

var (
	parserLog = logging.Module("parser")
	nonDigit  = regexp.MustCompile(`[^0-9]`)
)

// ParseItem builds an item from one template block. It reports false when the
// block has no ability name.
func ParseItem(block, sourceTitle string) (models.Item, bool) {
	return buildItem(wikitext.ParseFields(block), block, sourceTitle)
}

func buildItem(fields wikitext.FieldMap, block, sourceTitle string) (models.Item, bool) {
	name, ok := fields.Get(FieldName)
	if !ok {
		return models.Item{}, false
	}

	description, _ := fields.Get(FieldDescription, FieldAltDescription)

	item := models.Item{
		Slug:           slug.Normalize(name),
		Name:           name,
		Description:    description,
		Cost:           parseCost(fields.Value(FieldCost)),
		Rarity:         models.Rarity(fields.Value(FieldRarity)),
		Tags:           []string{},
		AbilityType:    fields.Value(FieldType),
		Buffs:          parseBuffs(fields.Value(FieldBuffs)),
		SourceTitle:    sourceTitle,
		ImageFilenames: wikitext.ResolveImages(fields, block),
	}
	return item, true
}

// parseCost keeps only the digits of raw; "4,000 gold" is 4000. It returns nil
// when no digits remain.
func parseCost(raw string) *int {
	digits := nonDigit.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		parserLog.Debug().Str("cost", raw).Err(err).Msg("cost out of range")
		return nil
	}
	return &n
}

// parseBuffs splits `Key;;Value::Key;;Value` into ordered buffs
func parseBuffs(raw string) []models.Buff {
	buffs := []models.Buff{}
	for _, entry := range strings.Split(raw, buffSeparator) {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		key, value, _ := strings.Cut(entry, pairSeparator)
		buffs = append(buffs, models.Buff{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return buffs
}
