package fcuid

import "time"

// Variant identifies which accepted identifier shape a candidate matched
type Variant string

const (
	// VariantNone means the candidate matched neither accepted shape
	VariantNone Variant = ""

	// VariantStandard is the prefix plus four hyphen-separated groups of four hex digits
	VariantStandard Variant = "standard"

	// VariantShort is the prefix plus a single group of eight hex digits
	VariantShort Variant = "short"
)

// Capability names a discrete permission a requester may hold.
// The baseline access policy does not consult capabilities; they are the
// extension seam for future membership-based policies.
type Capability string

// CapabilitySet is the set of capabilities granted to a requester
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains the given capability
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// NewCapabilitySet builds a capability set from the given capabilities
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Requester identifies the caller of a validation or lookup.
// ID partitions rate limiting and timing analysis; an empty ID is treated
// as the anonymous requester.
type Requester struct {
	// ID is the caller-supplied identity (or IP-derived fallback)
	ID string `json:"id"`

	// Authenticated reports whether the caller presented valid credentials.
	// This flag is supplied by the hosting layer; the gateway does not
	// perform authentication itself.
	Authenticated bool `json:"authenticated"`

	// Capabilities held by the requester (unused by the baseline policy)
	Capabilities CapabilitySet `json:"-"`
}

// RateLimitDecision is the outcome of a single rate-limit check
type RateLimitDecision struct {
	// Allowed reports whether the request fits in the current window
	Allowed bool `json:"allowed"`

	// Limit is the configured quota per window
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current window
	Remaining int `json:"remaining"`

	// ResetAt is when the current window expires
	ResetAt time.Time `json:"reset_at"`

	// RetryAfterSeconds hints how long a denied caller should wait.
	// Zero when the request was allowed.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

// ValidationResult is the aggregate outcome of one Validate call
type ValidationResult struct {
	// Identifier is the candidate that was validated
	Identifier string `json:"identifier"`

	// Valid is true only when no fatal error occurred
	Valid bool `json:"valid"`

	// Variant is the matched identifier shape, if any
	Variant Variant `json:"variant,omitempty"`

	// Errors holds fatal errors in the order they were detected
	Errors []*ValidationError `json:"errors"`

	// Warnings holds advisory findings in the order they were detected
	Warnings []Warning `json:"warnings"`

	// RateLimit is the decision consulted during the call, if the
	// pipeline reached the rate limiter
	RateLimit *RateLimitDecision `json:"rate_limit,omitempty"`
}

// SecurityReport is a point-in-time summary of lookup activity
type SecurityReport struct {
	// Operation is the operation kind the report covers
	Operation string `json:"operation"`

	// TotalRequests sums the current-window counts of all matching
	// rate-limit entries
	TotalRequests int64 `json:"total_requests"`

	// TrackedRequesters is the number of rate-limit entries that
	// contributed to the sum
	TrackedRequesters int `json:"tracked_requesters"`

	// GeneratedAt is when the snapshot was taken
	GeneratedAt time.Time `json:"generated_at"`
}
