// Package slug turns display names into canonical, URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Overrides maps automatic slugs that do not match the name used elsewhere in
// the dataset to their canonical form. Every key is the output of the
// automatic rules; no value may itself be a key.
var Overrides = map[string]string{
	"l-cio":    "lucio",
	"lcio":     "lucio",
	"d-va":     "dva",
	"torbj-rn": "torbjorn",
	"torbjrn":  "torbjorn",
	"s76":      "soldier-76",
}

// Normalize lowercases name, strips diacritics and trademark marks, collapses
// every run of non-alphanumeric characters to a single hyphen and applies
// Overrides. It is idempotent.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "™", "")

	// transform chains keep state, so build one per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = nonAlnumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if o, ok := Overrides[s]; ok {
		return o
	}
	return s
}
