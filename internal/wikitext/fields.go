package wikitext

import (
	"regexp"
	"strings"
	"sync"
)

// FieldMap maps template field names to their raw values
type FieldMap map[string]string

// fieldStartRe matches the `| name =` head of a field at the start of the
// input. A pipe not followed by a name and `=` is part of the running value.
var fieldStartRe = regexp.MustCompile(`^\|\s*([^=\s|{}\[\]]+)\s*=[ \t]*`)

// ParseFields extracts the key/value fields of one template block. A value
// runs to the end of its line, the brace that closes the template, or the
// next `| name =` head. Pipes inside nested {{...}} and [[...]] never start
// a field. Later occurrences of a key overwrite earlier ones.
func ParseFields(block string) FieldMap {
	out := FieldMap{}
	var (
		key     string
		open    bool
		depth   int // open {{
		links   int // open [[
		fieldAt int // template depth the open field belongs to
		val     strings.Builder
	)
	// fields belong to the outer template, or to no template for a bare fragment
	outer := 0
	if strings.HasPrefix(strings.TrimSpace(block), "{{") {
		outer = 1
	}
	closeField := func() {
		if open {
			out[key] = strings.TrimSpace(val.String())
			open = false
			val.Reset()
		}
	}
	emit := func(s string) {
		if open {
			val.WriteString(s)
		}
	}

	for i := 0; i < len(block); {
		rest := block[i:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			depth++
			emit("{{")
			i += 2
		case strings.HasPrefix(rest, "}}"):
			if depth <= fieldAt {
				closeField()
			}
			emit("}}")
			if depth > 0 {
				depth--
			}
			i += 2
		case strings.HasPrefix(rest, "[["):
			links++
			emit("[[")
			i += 2
		case strings.HasPrefix(rest, "]]"):
			if links > 0 {
				links--
			}
			emit("]]")
			i += 2
		case rest[0] == '\n':
			closeField()
			i++
		case rest[0] == '}' && depth <= fieldAt:
			closeField()
			i++
		case rest[0] == '|' && links == 0 && depth <= outer:
			if m := fieldStartRe.FindStringSubmatch(rest); m != nil {
				closeField()
				key, open, fieldAt = m[1], true, depth
				i += len(m[0])
				continue
			}
			emit("|")
			i++
		default:
			emit(rest[:1])
			i++
		}
	}
	closeField()
	return out
}

// Get returns the first non-empty value among keys
func (f FieldMap) Get(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Value returns the value for key, or "" when absent
func (f FieldMap) Value(key string) string {
	return f[key]
}

var scanPatterns sync.Map // field name -> *regexp.Regexp

// ScanField finds the first `| key = value` in raw block text, matching the
// key case-insensitively.
func ScanField(block, key string) (string, bool) {
	var re *regexp.Regexp
	if v, ok := scanPatterns.Load(key); ok {
		re = v.(*regexp.Regexp)
	} else {
		re = regexp.MustCompile(`(?i)\|\s*` + regexp.QuoteMeta(key) + `\s*=[ \t]*([^\n}]+)`)
		scanPatterns.Store(key, re)
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}
