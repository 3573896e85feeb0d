// Package util provides common utility functions shared across the
// fcuid-gateway packages.
package util

import "strings"

// SafeTruncate safely truncates a string to maxLen characters without
// panicking. Returns the original string if it's shorter than maxLen,
// otherwise the first maxLen characters. Used when logging caller-supplied
// values whose length is not under our control.
//
// If maxLen is negative, it's treated as 0 and returns an empty string.
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// NormalizeIdentifier trims surrounding whitespace from a caller-supplied
// candidate identifier. Hex case is preserved; case-insensitivity is the
// format validator's concern.
func NormalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}
