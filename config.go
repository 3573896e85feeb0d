package fcuid

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fluxsignal/fcuid-gateway/instrumentation"
	"github.com/fluxsignal/fcuid-gateway/security"
)

// Default tuning constants. Every threshold the heuristics and the rate
// limiter consult is a named configuration field; these are only the
// fallbacks applied when a field is left zero.
const (
	// DefaultRateLimitQuota is the number of requests allowed per window per key
	DefaultRateLimitQuota = 10

	// DefaultRateLimitWindow is the fixed-window duration
	DefaultRateLimitWindow = 60 * time.Second

	// DefaultBurstThreshold is the minimum number of recent requests that
	// constitutes a burst worth analyzing
	DefaultBurstThreshold = 6

	// DefaultMeanInterval is the mean inter-arrival interval below which a
	// burst is flagged as automated
	DefaultMeanInterval = 100 * time.Millisecond

	// DefaultRecencyWindow is how far back the timing analyzer looks
	DefaultRecencyWindow = 10 * time.Second

	// DefaultSweepInterval is how often idle entries are swept
	DefaultSweepInterval = 5 * time.Minute

	// DefaultMaxIdle is how long an entry may sit untouched before a sweep
	// removes it
	DefaultMaxIdle = 30 * time.Minute

	// DefaultMaxTrackedKeys caps the number of rate-limit and timing
	// entries tracked simultaneously; oldest entries are evicted beyond it
	DefaultMaxTrackedKeys = 10000
)

// Config holds the gateway configuration
// Structured using composition for better organization and maintainability
type Config struct {
	// RateLimit configures the fixed-window lookup quota
	RateLimit RateLimitConfig

	// Heuristics configures the pattern and timing detectors
	Heuristics HeuristicsConfig

	// Sweep configures eviction of idle rate-limit and timing entries
	Sweep SweepConfig

	// Audit enables security event logging
	Audit AuditConfig

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// Clock is the time source (optional, defaults to the system clock).
	// Tests inject a mock clock for deterministic window behavior.
	Clock security.Clock

	// Instrumentation provides OpenTelemetry metrics and tracing
	// (optional, disabled when nil)
	Instrumentation *instrumentation.Instrumentation
}

// RateLimitConfig holds fixed-window rate limiting configuration
type RateLimitConfig struct {
	// Quota is the number of requests allowed per window per
	// requester/operation key. Zero uses DefaultRateLimitQuota.
	Quota int

	// Window is the fixed-window duration. Zero uses DefaultRateLimitWindow.
	Window time.Duration

	// MaxTrackedKeys caps the number of keys tracked simultaneously.
	// Zero uses DefaultMaxTrackedKeys; negative disables the cap.
	MaxTrackedKeys int
}

// HeuristicsConfig holds advisory detector thresholds
type HeuristicsConfig struct {
	// BurstThreshold is the minimum number of requests inside the recency
	// window before timing analysis applies. Zero uses DefaultBurstThreshold.
	BurstThreshold int

	// MeanInterval is the mean inter-arrival cutoff below which a burst is
	// flagged. Zero uses DefaultMeanInterval.
	MeanInterval time.Duration

	// RecencyWindow is how long request timestamps are retained for timing
	// analysis. Zero uses DefaultRecencyWindow.
	RecencyWindow time.Duration
}

// SweepConfig holds idle-entry eviction configuration
type SweepConfig struct {
	// Interval is how often the background sweep runs. Zero uses
	// DefaultSweepInterval.
	Interval time.Duration

	// MaxIdle is how long an entry may go unaccessed before it is swept.
	// Zero uses DefaultMaxIdle.
	MaxIdle time.Duration
}

// AuditConfig holds security audit logging configuration
type AuditConfig struct {
	// Enabled turns on structured security event logging
	Enabled bool
}

// DefaultConfig returns a Config with all defaults applied
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

// applyDefaults fills zero-valued fields with their defaults
func (c *Config) applyDefaults() {
	if c.RateLimit.Quota == 0 {
		c.RateLimit.Quota = DefaultRateLimitQuota
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
	if c.RateLimit.MaxTrackedKeys == 0 {
		c.RateLimit.MaxTrackedKeys = DefaultMaxTrackedKeys
	}
	if c.Heuristics.BurstThreshold == 0 {
		c.Heuristics.BurstThreshold = DefaultBurstThreshold
	}
	if c.Heuristics.MeanInterval == 0 {
		c.Heuristics.MeanInterval = DefaultMeanInterval
	}
	if c.Heuristics.RecencyWindow == 0 {
		c.Heuristics.RecencyWindow = DefaultRecencyWindow
	}
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = DefaultSweepInterval
	}
	if c.Sweep.MaxIdle == 0 {
		c.Sweep.MaxIdle = DefaultMaxIdle
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = security.SystemClock{}
	}
}

// Validate checks the configuration for values that cannot be defaulted away
func (c *Config) Validate() error {
	if c.RateLimit.Quota < 0 {
		return fmt.Errorf("rate limit quota must not be negative, got %d", c.RateLimit.Quota)
	}
	if c.RateLimit.Window < 0 {
		return fmt.Errorf("rate limit window must not be negative, got %s", c.RateLimit.Window)
	}
	if c.Heuristics.BurstThreshold < 2 && c.Heuristics.BurstThreshold != 0 {
		return fmt.Errorf("burst threshold must be at least 2, got %d", c.Heuristics.BurstThreshold)
	}
	if c.Heuristics.RecencyWindow < 0 {
		return fmt.Errorf("recency window must not be negative, got %s", c.Heuristics.RecencyWindow)
	}
	return nil
}
