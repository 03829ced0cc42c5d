// Package validate is the optional schema pass over a parsed catalog. It never
// fails a run: invalid records are logged and left out of the validated subset.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/models"
)

var validateLog = logging.Module("validate")

// maxDiagnostic caps the diagnostic text kept per issue
const maxDiagnostic = 120

// ValidationError collects the failed fields of one record
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Error implements the error interface. Fields are listed in sorted order.
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddFieldError adds an error for a specific field
func (v *ValidationError) AddFieldError(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors returns true if there are any validation errors
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

func (v *ValidationError) orNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// Issue is one record that failed validation
type Issue struct {
	Kind       string // "item" or "hero"
	Index      int
	Slug       string
	Diagnostic string
}

// Report is the outcome of validating a catalog
type Report struct {
	Items  []models.Item
	Heroes []models.Hero
	Issues []Issue
}

// Item checks a single item
func Item(it models.Item) error {
	verr := NewValidationError()
	checkItem("", it, verr)
	return verr.orNil()
}

// Hero checks a hero and everything embedded in it
func Hero(h models.Hero) error {
	verr := NewValidationError()
	required(verr, "slug", h.Slug)
	required(verr, "name", h.Name)
	for i, it := range h.Items {
		checkItem(fmt.Sprintf("items[%d].", i), it, verr)
	}
	for i, p := range h.Powers {
		required(verr, fmt.Sprintf("powers[%d].name", i), p.Name)
	}
	return verr.orNil()
}

func checkItem(prefix string, it models.Item, verr *ValidationError) {
	required(verr, prefix+"slug", it.Slug)
	required(verr, prefix+"name", it.Name)
	if it.Cost != nil && *it.Cost < 0 {
		verr.AddFieldError(prefix+"cost", "must not be negative")
	}
	if it.Rarity != "" && !it.Rarity.Valid() {
		verr.AddFieldError(prefix+"rarity", fmt.Sprintf("unknown rarity %q", it.Rarity))
	}
	for i, b := range it.Buffs {
		required(verr, fmt.Sprintf("%sbuffs[%d].key", prefix, i), b.Key)
	}
}

func required(verr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.AddFieldError(field, "is required")
	}
}

// Dataset returns the valid subsets of items and heroes. Each invalid record
// is logged with its index and a truncated diagnostic.
func Dataset(items []models.Item, heroes []models.Hero) Report {
	rep := Report{Items: []models.Item{}, Heroes: []models.Hero{}}

	for i, it := range items {
		if err := Item(it); err != nil {
			rep.Issues = append(rep.Issues, issue("item", i, it.Slug, err))
			continue
		}
		rep.Items = append(rep.Items, it)
	}
	for i, h := range heroes {
		if err := Hero(h); err != nil {
			rep.Issues = append(rep.Issues, issue("hero", i, h.Slug, err))
			continue
		}
		rep.Heroes = append(rep.Heroes, h)
	}

	validateLog.Info().
		Int("items", len(rep.Items)).
		Int("heroes", len(rep.Heroes)).
		Int("issues", len(rep.Issues)).
		Msg("validated dataset")
	return rep
}

func issue(kind string, index int, slug string, err error) Issue {
	is := Issue{Kind: kind, Index: index, Slug: slug, Diagnostic: truncate(err.Error(), maxDiagnostic)}
	validateLog.Warn().
		Str("kind", kind).
		Int("index", index).
		Str("slug", slug).
		Str("diagnostic", is.Diagnostic).
		Msg("record failed validation")
	return is
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
