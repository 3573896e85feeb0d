package util

import "testing"

func TestSafeTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello"},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"empty input", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTruncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("SafeTruncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no whitespace", "FSL-1a2b3c4d", "FSL-1a2b3c4d"},
		{"leading and trailing spaces", "  FSL-1a2b3c4d  ", "FSL-1a2b3c4d"},
		{"newline", "FSL-1a2b3c4d\n", "FSL-1a2b3c4d"},
		{"case preserved", " FSL-1A2B3C4D ", "FSL-1A2B3C4D"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.input); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
