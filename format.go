// Package fcuid implements the FCUID Identifier Security Gateway: identifier
// format validation, per-requester rate limiting, advisory pattern and timing
// heuristics, a coarse access gate for sensitive lookups, and operational
// security reporting.
package fcuid

import (
	"regexp"
	"strings"
)

// IdentifierPrefix is the literal prefix carried by every FCUID
const IdentifierPrefix = "FSL-"

var (
	// standardPattern matches the prefix plus four hyphen-separated groups
	// of four hex digits, e.g. "FSL-1a2b-3c4d-5e6f-7890"
	standardPattern = regexp.MustCompile(`^FSL-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}$`)

	// shortPattern matches the prefix plus eight hex digits, e.g. "FSL-1a2b3c4d"
	shortPattern = regexp.MustCompile(`^FSL-[0-9a-fA-F]{8}$`)
)

// ValidateFormat decides whether a candidate identifier is syntactically
// well-formed and reports which accepted shape it matched. It is a pure
// function with no side effects.
//
// An empty candidate is reported as a type mismatch: the hosting layers
// (CLI, HTTP) map a missing or non-string identifier argument to the empty
// string before calling in.
func ValidateFormat(candidate string) (Variant, *ValidationError) {
	if candidate == "" {
		return VariantNone, ErrTypeMismatch("Identifier must be a non-empty string.")
	}

	if standardPattern.MatchString(candidate) {
		return VariantStandard, nil
	}
	if shortPattern.MatchString(candidate) {
		return VariantShort, nil
	}

	return VariantNone, ErrInvalidFormat("Identifier does not match any accepted FCUID format.")
}

// hexPayload strips the prefix and all separators from a candidate and
// lowercases the remainder, yielding the raw hex payload the pattern
// heuristic inspects.
func hexPayload(candidate string) string {
	payload := strings.TrimPrefix(candidate, IdentifierPrefix)
	payload = strings.ReplaceAll(payload, "-", "")
	return strings.ToLower(payload)
}
