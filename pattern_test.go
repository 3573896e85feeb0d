package fcuid

import "testing"

func TestIsSuspiciousPattern(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{
			name:      "all zeros standard",
			candidate: "FSL-0000-0000-0000-0000",
			want:      true,
		},
		{
			name:      "all zeros short",
			candidate: "FSL-00000000",
			want:      true,
		},
		{
			name:      "single repeated character",
			candidate: "FSL-aaaa-aaaa-aaaa-aaaa",
			want:      true,
		},
		{
			name:      "repeated character across case",
			candidate: "FSL-AAAA-aaaa-AAAA-aaaa",
			want:      true,
		},
		{
			name:      "ascending sequence prefix",
			candidate: "FSL-0123-4567-89ab-cdef",
			want:      true,
		},
		{
			name:      "pseudo-random payload",
			candidate: "FSL-1a2b-3c4d-5e6f-7890",
			want:      false,
		},
		{
			name:      "pseudo-random short",
			candidate: "FSL-9f3e71c2",
			want:      false,
		},
		{
			name:      "ascending but offset",
			candidate: "FSL-1234-5678-9abc-def0",
			want:      false,
		},
		{
			name:      "repeated pairs not single char",
			candidate: "FSL-abab-abab-abab-abab",
			want:      false,
		},
		{
			name:      "empty payload",
			candidate: "FSL-",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuspiciousPattern(tt.candidate); got != tt.want {
				t.Errorf("IsSuspiciousPattern(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestIsRepeatedCharacter(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{s: "aaaa", want: true},
		{s: "a", want: true},
		{s: "ab", want: false},
		{s: "", want: true},
	}

	for _, tt := range tests {
		if got := isRepeatedCharacter(tt.s); got != tt.want {
			t.Errorf("isRepeatedCharacter(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
