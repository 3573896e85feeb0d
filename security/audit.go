package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/fluxsignal/fcuid-gateway/internal/util"
)

// maxLoggedIdentifierLength caps caller-supplied identifiers in audit
// records; malformed candidates can be arbitrarily long.
const maxLoggedIdentifierLength = 64

// Auditor handles security event logging with PII protection.
// Requester identities are hashed before logging so audit trails can be
// correlated without retaining raw caller identifiers.
type Auditor struct {
	logger  *slog.Logger
	clock   Clock
	enabled bool
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	return NewAuditorWithClock(logger, enabled, nil)
}

// NewAuditorWithClock creates a security auditor with an injected clock
func NewAuditorWithClock(logger *slog.Logger, enabled bool, clock Clock) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Auditor{
		logger:  logger,
		clock:   clock,
		enabled: enabled,
	}
}

// AuditEvent represents a security audit event
type AuditEvent struct {
	Type       string
	Requester  string
	Identifier string
	Details    map[string]any
	Timestamp  time.Time
}

// LogEvent logs a security event with hashed requester identity
func (a *Auditor) LogEvent(event AuditEvent) {
	if !a.enabled {
		return
	}

	event.Timestamp = a.clock.Now()

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"requester_hash", hashForLogging(event.Requester),
		"identifier", util.SafeTruncate(event.Identifier, maxLoggedIdentifierLength),
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
}

// LogValidationFailed logs a fatal validation failure
func (a *Auditor) LogValidationFailed(requester, identifier, code string) {
	a.LogEvent(AuditEvent{
		Type:       EventValidationFailed,
		Requester:  requester,
		Identifier: identifier,
		Details: map[string]any{
			"code": code,
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation
func (a *Auditor) LogRateLimitExceeded(requester, operation string, retryAfter time.Duration) {
	a.LogEvent(AuditEvent{
		Type:      EventRateLimitExceeded,
		Requester: requester,
		Details: map[string]any{
			"operation":   operation,
			"retry_after": retryAfter.String(),
		},
	})
}

// LogSuspiciousPattern logs a synthetic-looking identifier
func (a *Auditor) LogSuspiciousPattern(requester, identifier string) {
	a.LogEvent(AuditEvent{
		Type:       EventSuspiciousPattern,
		Requester:  requester,
		Identifier: identifier,
	})
}

// LogTimingAnomaly logs an automated-looking request burst
func (a *Auditor) LogTimingAnomaly(requester string) {
	a.LogEvent(AuditEvent{
		Type:      EventTimingAnomaly,
		Requester: requester,
	})
}

// LogAccessDenied logs a denied sensitive lookup
func (a *Auditor) LogAccessDenied(requester, identifier, reason string) {
	a.LogEvent(AuditEvent{
		Type:       EventAccessDenied,
		Requester:  requester,
		Identifier: identifier,
		Details: map[string]any{
			"reason": reason,
		},
	})
}

// hashForLogging returns a truncated SHA-256 hash of the value for
// privacy-preserving correlation in logs
func hashForLogging(value string) string {
	if value == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
