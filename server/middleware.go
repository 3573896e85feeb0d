package server

import (
	"net/http"
	"time"

	"github.com/fluxsignal/fcuid-gateway/security"
)

// floodMiddleware drops raw request floods per client IP before they reach
// the gateway. This is transport protection only; the application-level
// fixed-window quota and its retry semantics are untouched.
func (s *Server) floodMiddleware(next http.Handler) http.Handler {
	if s.flood == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := s.clientIP(r)
		if !s.flood.Allow(ip) {
			s.logger.Warn("request dropped by flood limiter",
				"ip", ip,
				"request_id", security.GetRequestID(r.Context()))
			s.countFlood(r)
			writeError(w, http.StatusTooManyRequests, "too_many_requests",
				"Request rate too high. Slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status code for request metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with per-endpoint request count and duration
// metrics. The endpoint label is the route pattern, not the raw path, to
// keep metric cardinality bounded.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.gateway.RecordHTTPRequest(r.Context(), r.Method, endpoint, rec.status, time.Since(start))
	})
}

// countFlood records a flood-limited request when instrumentation is wired
func (s *Server) countFlood(r *http.Request) {
	if s.gateway == nil {
		return
	}
	// The flood counter lives on the gateway's instrumentation so transport
	// drops show up next to the application-level rate-limit metrics.
	s.gateway.CountFloodLimited(r.Context())
}
