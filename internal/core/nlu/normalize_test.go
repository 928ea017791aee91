package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Rice VENAM", "rice venam"},
		{"strips punctuation", "അരി, പഞ്ചസാര!", "അരി പഞ്ചസാര"},
		{"collapses whitespace", "  2   kg\tഅരി  ", "2 kg അരി"},
		{"question mark", "ടോട്ടൽ എത്ര?", "ടോട്ടൽ എത്ര"},
		{"empty", "", ""},
		{"only punctuation", "?!.,", ""},
		{"keeps malayalam intact", "വെളിച്ചെണ്ണ", "വെളിച്ചെണ്ണ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"2 Kg അരി, ഒരു സോപ്പ്!",
		"Hello, World!",
		"  mixed   Spacing  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
