// Package security provides the stateful security primitives of the FCUID
// gateway: fixed-window rate limiting, request-burst timing analysis,
// transport-level flood limiting, audit logging, request IDs, client IP
// extraction, and secure response headers.
//
// # Rate Limiting
//
// The WindowLimiter enforces a per-key fixed-window quota. The window is
// anchored at the first request of each window and restarts on the first
// request after expiry; it is deliberately not a sliding window or token
// bucket, so callers observe the documented fixed-window quota semantics.
//
// # Memory Management
//
// Both the WindowLimiter and the TimingAnalyzer bound their tracked state:
// a background sweep removes entries idle past a configurable cutoff, and
// an LRU cap evicts the oldest entries when adversarial key cardinality
// would otherwise grow the maps without bound.
//
// # Example Usage
//
//	limiter := security.NewWindowLimiterWithConfig(security.WindowLimiterConfig{
//	    Quota:  10,
//	    Window: time.Minute,
//	    Logger: logger,
//	})
//	defer limiter.Stop()
//
//	decision := limiter.Check("user-1", "lookup")
//	if !decision.Allowed {
//	    // Quota exhausted; retry after decision.RetryAfter
//	}
//
// All components accept an optional Clock so tests can drive window
// arithmetic deterministically.
package security
