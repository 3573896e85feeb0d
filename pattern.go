package fcuid

import "strings"

// ascendingHexSequence is the enumeration signature the pattern heuristic
// looks for at the start of a payload
const ascendingHexSequence = "0123456789abcdef"

// IsSuspiciousPattern reports whether a candidate identifier's hex payload
// looks synthetic or enumerable: a single character repeated across the full
// payload (all zeros included), or a payload beginning with the ascending hex
// sequence. The result is advisory; it is surfaced as a warning and never
// blocks validation.
func IsSuspiciousPattern(candidate string) bool {
	payload := hexPayload(candidate)
	if payload == "" {
		return false
	}

	if isRepeatedCharacter(payload) {
		return true
	}

	return strings.HasPrefix(payload, ascendingHexSequence)
}

// isRepeatedCharacter reports whether s is one character repeated
func isRepeatedCharacter(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
