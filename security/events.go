package security

// Event type constants for security audit logging.
// These constants ensure consistency across the codebase and prevent typos
// when logging security-relevant events.
const (
	// Validation events

	// EventValidationFailed is logged when an identifier fails validation
	EventValidationFailed = "validation_failed"

	// EventRateLimitExceeded is logged when a requester exhausts its window quota
	EventRateLimitExceeded = "rate_limit_exceeded"

	// Advisory detection events

	// EventSuspiciousPattern is logged when an identifier payload looks
	// synthetic or enumerable
	EventSuspiciousPattern = "suspicious_pattern"

	// EventTimingAnomaly is logged when a request burst looks automated
	EventTimingAnomaly = "timing_anomaly"

	// Access control events

	// EventAccessDenied is logged when a sensitive lookup is denied for
	// lack of authentication
	EventAccessDenied = "access_denied"

	// Transport events

	// EventFloodLimited is logged when the HTTP-layer flood limiter drops
	// a request before it reaches the gateway
	EventFloodLimited = "flood_limited"
)
