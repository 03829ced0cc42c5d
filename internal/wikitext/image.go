package wikitext

import (
	"regexp"
	"strings"
)

// ImageFields lists the fields checked for an image, in priority order
var ImageFields = []string{
	"ability_image",
	"power_image",
	"image",
	"icon",
	"image1",
	"image_name",
}

var (
	imageExtRe  = regexp.MustCompile(`(?i)\.(png|svg|jpg|jpeg|webp)$`)
	fileLinkRe  = regexp.MustCompile(`(?i)\[\[\s*File:([^\]|]+)(?:\|[^\]]*)?\]\]`)
	bareImageRe = regexp.MustCompile(`(?i)[A-Za-z0-9._-]+\.(?:png|svg|jpg|jpeg|webp)`)
)

const filePrefix = "file:"

// NormalizeImageToken reduces a raw image reference such as
// `[[File:Name.png|32px]]`, `File:Name.png` or `dir/Name.png` to a bare
// filename. It reports false when the remainder is not an image filename.
func NormalizeImageToken(raw string) (string, bool) {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "[[")
	t = strings.TrimSuffix(t, "]]")
	t = strings.TrimSpace(t)
	if len(t) >= len(filePrefix) && strings.EqualFold(t[:len(filePrefix)], filePrefix) {
		t = t[len(filePrefix):]
	}
	if i := strings.IndexByte(t, '|'); i >= 0 {
		t = t[:i]
	}
	if i := strings.LastIndexByte(t, '/'); i >= 0 {
		t = t[i+1:]
	}
	t = strings.TrimSpace(t)
	if !imageExtRe.MatchString(t) {
		return "", false
	}
	return t, true
}

// FindAnyImage scans the whole block for a filename: a [[File:...]] link
// first, then any bare filename-shaped token.
func FindAnyImage(block string) (string, bool) {
	if m := fileLinkRe.FindStringSubmatch(block); m != nil {
		if name, ok := NormalizeImageToken(m[1]); ok {
			return name, true
		}
	}
	if m := bareImageRe.FindString(block); m != "" {
		return m, true
	}
	return "", false
}

// ResolveImages returns the image filenames of a block. The first valid
// candidate field is the primary; further distinct valid candidates follow
// as alternates. Without any usable field the block text is scanned. The
// result is empty, never nil, when nothing is found.
func ResolveImages(fields FieldMap, block string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, key := range ImageFields {
		name, ok := NormalizeImageToken(fields[key])
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) > 0 {
		return out
	}
	if name, ok := FindAnyImage(block); ok {
		out = append(out, name)
	}
	return out
}
