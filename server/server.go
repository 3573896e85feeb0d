// Package server exposes the FCUID gateway over HTTP: identifier
// validation, rate-limit checks, and security reports, behind request-ID,
// security-header, flood-limiting, and API-key middleware.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	fcuid "github.com/fluxsignal/fcuid-gateway"
	"github.com/fluxsignal/fcuid-gateway/security"
)

const (
	// DefaultAddr is the default listen address
	DefaultAddr = ":8420"

	// DefaultFloodRate is the default transport-level requests per second per IP
	DefaultFloodRate = 50

	// DefaultFloodBurst is the default transport-level burst per IP
	DefaultFloodBurst = 100

	// DefaultReadHeaderTimeout bounds header reads against slowloris clients
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds HTTP server configuration
type Config struct {
	// Addr is the listen address. Empty uses DefaultAddr.
	Addr string

	// TrustProxy enables trusting X-Forwarded-For and X-Real-IP headers.
	// Only enable behind a trusted reverse proxy.
	TrustProxy bool

	// TrustedProxyCount is how many proxies to trust from the right of the
	// X-Forwarded-For chain
	TrustedProxyCount int

	// APIKeyHash is the bcrypt hash of the pre-shared API key. Callers
	// presenting the matching key are treated as authenticated for
	// sensitive lookups. Empty disables API-key auth; all callers are
	// then unauthenticated.
	APIKeyHash string

	// FloodRate is the transport-level requests per second allowed per
	// client IP. Zero uses DefaultFloodRate; negative disables flood
	// limiting.
	FloodRate int

	// FloodBurst is the transport-level burst per client IP.
	// Zero uses DefaultFloodBurst.
	FloodBurst int

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger
}

// Server hosts the gateway's HTTP surface
type Server struct {
	gateway *fcuid.Gateway
	cfg     Config
	logger  *slog.Logger
	flood   *security.FloodLimiter
	httpSrv *http.Server
}

// New creates an HTTP server around the given gateway
func New(gateway *fcuid.Gateway, cfg Config) (*Server, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FloodRate == 0 {
		cfg.FloodRate = DefaultFloodRate
	}
	if cfg.FloodBurst == 0 {
		cfg.FloodBurst = DefaultFloodBurst
	}
	if cfg.APIKeyHash != "" {
		// Fail fast on an unusable hash rather than denying every caller
		if _, err := bcrypt.Cost([]byte(cfg.APIKeyHash)); err != nil {
			return nil, fmt.Errorf("invalid API key hash: %w", err)
		}
	}

	s := &Server{
		gateway: gateway,
		cfg:     cfg,
		logger:  cfg.Logger,
	}

	if cfg.FloodRate > 0 {
		s.flood = security.NewFloodLimiterWithConfig(cfg.FloodRate, cfg.FloodBurst, 10000, cfg.Logger)
	}

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}

	return s, nil
}

// Handler returns the complete HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/validate", s.instrument("/v1/validate", s.handleValidate))
	mux.Handle("GET /v1/resource/{identifier}", s.instrument("/v1/resource", s.handleResource))
	mux.Handle("GET /v1/rate-limit/{requester}", s.instrument("/v1/rate-limit", s.handleRateLimit))
	mux.Handle("GET /v1/report", s.instrument("/v1/report", s.handleReport))
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	var handler http.Handler = mux
	handler = s.floodMiddleware(handler)
	handler = security.SecurityHeadersMiddleware(handler)
	handler = security.RequestIDMiddleware(handler)
	return handler
}

// ListenAndServe starts serving and blocks until the listener fails or the
// server is shut down
func (s *Server) ListenAndServe() error {
	s.logger.Info("gateway server listening",
		"addr", s.cfg.Addr,
		"trust_proxy", s.cfg.TrustProxy,
		"flood_limiting", s.flood != nil,
		"api_key_auth", s.cfg.APIKeyHash != "")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its flood limiter
func (s *Server) Shutdown(ctx context.Context) error {
	if s.flood != nil {
		s.flood.Stop()
	}
	return s.httpSrv.Shutdown(ctx)
}

// clientIP resolves the requester's IP honoring the proxy configuration
func (s *Server) clientIP(r *http.Request) string {
	return security.GetClientIP(r, s.cfg.TrustProxy, s.cfg.TrustedProxyCount)
}

// authenticate reports whether the request carries the pre-shared API key.
// With no key configured, every caller is unauthenticated.
func (s *Server) authenticate(r *http.Request) bool {
	if s.cfg.APIKeyHash == "" {
		return false
	}

	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.cfg.APIKeyHash), []byte(auth[len(prefix):]))
	return err == nil
}
