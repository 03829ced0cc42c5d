package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Test Item", want: "test-item"},
		{name: "punctuation runs", in: "Quickload  --  Chamber!!", want: "quickload-chamber"},
		{name: "leading and trailing separators", in: "  (Bullseye)  ", want: "bullseye"},
		{name: "diacritics", in: "Lúcio", want: "lucio"},
		{name: "nordic letters", in: "Torbjörn", want: "torbjorn"},
		{name: "colon", in: "Soldier: 76", want: "soldier-76"},
		{name: "dotted", in: "D.Va", want: "dva"},
		{name: "trademark", in: "Nano Boost™ Chip", want: "nano-boost-chip"},
		{name: "apostrophe", in: "Junker Queen's Edge", want: "junker-queen-s-edge"},
		{name: "already a slug", in: "wrecking-ball", want: "wrecking-ball"},
		{name: "empty", in: "", want: ""},
		{name: "only symbols", in: "!!!", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestOverrides(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "L-cio", want: "lucio"},
		{in: "Lcio", want: "lucio"},
		{in: "D-Va", want: "dva"},
		{in: "Torbj rn", want: "torbjorn"},
		{in: "Torbjrn", want: "torbjorn"},
		{in: "S76", want: "soldier-76"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestOverrideValuesAreFixedPoints(t *testing.T) {
	for key, value := range Overrides {
		_, chained := Overrides[value]
		assert.False(t, chained, "override %q -> %q chains into another override", key, value)
		assert.Equal(t, value, Normalize(value))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	names := []string{
		"Test Item", "Lúcio", "Soldier: 76", "D.Va", "Torbjörn", "Wrecking Ball",
		"Junker Queen", "Nano Boost™", "  --weird__NAME--  ", "Ana/Stadium",
		"Café Überladen", "l-cio", "s76", "Ēcho", "Kiriko 2.0",
	}
	for _, n := range names {
		once := Normalize(n)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice", n)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, "lucio", Normalize("Lúcio"))
	}
}
