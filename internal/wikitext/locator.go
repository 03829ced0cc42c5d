// Package wikitext scans raw wiki markup for template blocks and the
// `| key = value` fields inside them. It is a tolerant scanner bounded to the
// template shapes found in game-data dumps, not a wikitext grammar: anything
// outside that shape is skipped rather than reported.
package wikitext

import (
	"iter"
	"regexp"
	"slices"
	"sync"
)

// AbilityDetails is the template that encodes one item or power
const AbilityDetails = "Ability details"

var patterns sync.Map // template name -> *regexp.Regexp

func templatePattern(name string) *regexp.Regexp {
	if re, ok := patterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\{\{` + regexp.QuoteMeta(name) + `[\s\S]*?\}\}`)
	actual, _ := patterns.LoadOrStore(name, re)
	return actual.(*regexp.Regexp)
}

// Templates lazily yields every `{{name ... }}` block in src, matched
// non-greedily up to the nearest closing braces. Nested templates of the
// same name are cut at the first `}}` and unterminated ones never match.
func Templates(src, name string) iter.Seq[string] {
	re := templatePattern(name)
	return func(yield func(string) bool) {
		for off := 0; off < len(src); {
			loc := re.FindStringIndex(src[off:])
			if loc == nil {
				return
			}
			if !yield(src[off+loc[0] : off+loc[1]]) {
				return
			}
			off += loc[1]
		}
	}
}

// FindTemplates collects every `{{name ... }}` block in src
func FindTemplates(src, name string) []string {
	return slices.Collect(Templates(src, name))
}

// FindAbilityTemplates collects every Ability details block in src
func FindAbilityTemplates(src string) []string {
	return FindTemplates(src, AbilityDetails)
}
