package models

// Rarity is the tier label on a stadium item
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Valid reports whether r is one of the known rarity labels
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Buff is a single named effect attached to an item
type Buff struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Item represents a purchasable stadium item
type Item struct {
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	HeroSlug       string   `json:"heroSlug,omitempty"` // empty = general item
	Description    string   `json:"description"`
	Cost           *int     `json:"cost,omitempty"`
	Rarity         Rarity   `json:"rarity,omitempty"`
	Tags           []string `json:"tags"`
	AbilityType    string   `json:"ability_type,omitempty"`
	Buffs          []Buff   `json:"buffs"`
	SourceTitle    string   `json:"sourceTitle"`
	ImageFilenames []string `json:"imageFilenames"` // first is primary
}

// HeroSpecific reports whether the item belongs to a single hero
func (i Item) HeroSpecific() bool {
	return i.HeroSlug != ""
}

// Clone returns a deep copy of the item
func (i Item) Clone() Item {
	out := i
	if i.Cost != nil {
		cost := *i.Cost
		out.Cost = &cost
	}
	out.Tags = append([]string{}, i.Tags...)
	out.Buffs = append([]Buff{}, i.Buffs...)
	out.ImageFilenames = append([]string{}, i.ImageFilenames...)
	return out
}

// ItemList is a collection of items
type ItemList struct {
	Items      []Item `json:"items"`
	TotalCount int    `json:"total_count"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
