package models

// PowerTypeStadium is the type tag stamped on every parsed power
const PowerTypeStadium = "Stadium Power"

// Power is a persistent passive modifier tied to a hero's kit
type Power struct {
	Name            string `json:"name"`
	Image           string `json:"image,omitempty"`
	AffectedAbility string `json:"affectedAbility,omitempty"` // base kit ability it modifies
	Description     string `json:"description,omitempty"`
	Type            string `json:"type,omitempty"`
}

// Hero represents a playable hero with its items and powers
type Hero struct {
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Role           string   `json:"role,omitempty"`
	Description    string   `json:"description,omitempty"`
	Items          []Item   `json:"items"`
	Powers         []Power  `json:"powers"`
	SourceTitle    string   `json:"sourceTitle"`
	ImageFilenames []string `json:"imageFilenames"`
}

// Clone returns a deep copy of the hero
func (h Hero) Clone() Hero {
	out := h
	out.Items = make([]Item, 0, len(h.Items))
	for _, it := range h.Items {
		out.Items = append(out.Items, it.Clone())
	}
	out.Powers = append([]Power{}, h.Powers...)
	out.ImageFilenames = append([]string{}, h.ImageFilenames...)
	return out
}

// HeroSummary is a lightweight version for listings
type HeroSummary struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	ItemCount  int    `json:"item_count"`
	PowerCount int    `json:"power_count"`
}

// Summary returns the listing view of the hero
func (h Hero) Summary() HeroSummary {
	return HeroSummary{
		Slug:       h.Slug,
		Name:       h.Name,
		Role:       h.Role,
		ItemCount:  len(h.Items),
		PowerCount: len(h.Powers),
	}
}

// StatPower is a global stat icon, such as Weapon Power, shared by every hero
type StatPower struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
