package text_test

import (
	"testing"

	"healthquiz/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "ASCII", input: "vaccine", expected: 7},
		{name: "accented", input: "café santé", expected: 10},
		{name: "kanji", input: "健康", expected: 2},
		{name: "emoji", input: "pill💊", expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.CountRunes(tt.input); got != tt.expected {
				t.Errorf("CountRunes(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := text.Truncate("santé publique", 5); got != "santé" {
		t.Errorf("Truncate = %q", got)
	}
	if got := text.Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := text.Truncate("unbounded", 0); got != "unbounded" {
		t.Errorf("Truncate = %q", got)
	}
}
