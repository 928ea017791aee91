package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"അരി വേണം", "ml"},
		{"two kg rice", "en"},
		{"2 kg അരി", "mixed"},
		{"ari venam അരി", "mixed"},
		{"123 456", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectScript(tt.input))
		})
	}
}
