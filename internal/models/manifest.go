package models

import "time"

// Manifest records when a catalog was generated and how big it is
type Manifest struct {
	GeneratedAt string `json:"generatedAt"`
	Counts      Counts `json:"counts"`
}

// Counts holds the record totals of a catalog
type Counts struct {
	Items  int `json:"items"`
	Heroes int `json:"heroes"`
}

// NewManifest stamps a manifest for the given catalog sizes
func NewManifest(at time.Time, items, heroes int) Manifest {
	return Manifest{
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Counts:      Counts{Items: items, Heroes: heroes},
	}
}

// File names of the persisted catalog inside an output directory
const (
	ItemsFile  = "items.json"
	HeroesFile = "heroes.json"
	MetaFile   = "meta.json"
	PowersFile = "powers.json"
)
