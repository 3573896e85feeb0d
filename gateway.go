package fcuid

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxsignal/fcuid-gateway/instrumentation"
	"github.com/fluxsignal/fcuid-gateway/security"
)

const (
	// OperationLookup is the operation kind charged by the Validate pipeline
	OperationLookup = "lookup"

	// AnonymousRequester is the partition key used when no requester
	// identity is supplied
	AnonymousRequester = "anonymous"
)

// Gateway is the Identifier Security Gateway. It owns all mutable state
// (rate-limit entries, recent-request logs) and is safe for concurrent use.
// Construct one per process or per test; instances do not interfere.
type Gateway struct {
	cfg     Config
	logger  *slog.Logger
	clock   security.Clock
	quota   *security.WindowLimiter
	timing  *security.TimingAnalyzer
	auditor *security.Auditor
	inst    *instrumentation.Instrumentation
}

// New creates a Gateway from the given configuration.
// Zero-valued configuration fields fall back to the package defaults.
func New(cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}
	cfg.applyDefaults()

	g := &Gateway{
		cfg:    cfg,
		logger: cfg.Logger,
		clock:  cfg.Clock,
		quota: security.NewWindowLimiterWithConfig(security.WindowLimiterConfig{
			Quota:         cfg.RateLimit.Quota,
			Window:        cfg.RateLimit.Window,
			MaxEntries:    cfg.RateLimit.MaxTrackedKeys,
			SweepInterval: cfg.Sweep.Interval,
			MaxIdle:       cfg.Sweep.MaxIdle,
			Clock:         cfg.Clock,
			Logger:        cfg.Logger,
		}),
		timing: security.NewTimingAnalyzerWithConfig(security.TimingAnalyzerConfig{
			BurstThreshold: cfg.Heuristics.BurstThreshold,
			MeanInterval:   cfg.Heuristics.MeanInterval,
			RecencyWindow:  cfg.Heuristics.RecencyWindow,
			MaxEntries:     cfg.RateLimit.MaxTrackedKeys,
			SweepInterval:  cfg.Sweep.Interval,
			Clock:          cfg.Clock,
			Logger:         cfg.Logger,
		}),
		auditor: security.NewAuditorWithClock(cfg.Logger, cfg.Audit.Enabled, cfg.Clock),
		inst:    cfg.Instrumentation,
	}

	if g.inst != nil {
		if err := g.inst.RegisterSizeCallbacks(
			func() int64 { return int64(g.quota.GetStats().CurrentEntries) },
			func() int64 { return int64(g.timing.TrackedRequesters()) },
		); err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to register size callbacks: %w", err)
		}
	}

	return g, nil
}

// Close stops the background sweep goroutines
func (g *Gateway) Close() {
	g.quota.Stop()
	g.timing.Stop()
}

// Validate runs the full validation pipeline against a candidate identifier:
// format check, rate limit, then the advisory pattern and timing heuristics.
// Fatal errors short-circuit the pipeline; advisory findings accumulate as
// warnings without affecting the outcome.
func (g *Gateway) Validate(ctx context.Context, candidate string, requester Requester) *ValidationResult {
	requesterID := requester.ID
	if requesterID == "" {
		requesterID = AnonymousRequester
	}

	result := &ValidationResult{
		Identifier: candidate,
		Errors:     []*ValidationError{},
		Warnings:   []Warning{},
	}

	if g.inst != nil {
		var span trace.Span
		ctx, span = instrumentation.StartSpan(ctx, g.inst.Tracer("gateway"), "gateway.validate",
			attribute.String(instrumentation.AttrOperation, OperationLookup))
		defer func() {
			if len(result.Errors) > 0 {
				instrumentation.RecordError(span, result.Errors[0])
			}
			instrumentation.RecordOutcome(span, result.Valid)
			span.End()
		}()
	}

	g.countValidation(ctx)

	// Stage 1: format. A malformed identifier never reaches the rate
	// limiter, so format-rejected calls leave the counters untouched.
	variant, ferr := ValidateFormat(candidate)
	if ferr != nil {
		result.Errors = append(result.Errors, ferr)
		g.recordFailure(ctx, requesterID, candidate, ferr.Code)
		return result
	}
	result.Variant = variant

	// Stage 2: rate limit for the lookup operation.
	decision := g.quota.Check(requesterID, OperationLookup)
	result.RateLimit = decisionToResult(decision)
	if !decision.Allowed {
		rerr := ErrRateLimitExceeded(fmt.Sprintf(
			"Rate limit exceeded. Retry after %d seconds.", decision.RetryAfterSeconds()))
		result.Errors = append(result.Errors, rerr)
		g.auditor.LogRateLimitExceeded(requesterID, OperationLookup, decision.RetryAfter)
		if g.inst != nil {
			g.inst.Metrics().RateLimitDenied.Add(ctx, 1)
			g.inst.Metrics().ValidationFailures.Add(ctx, 1,
				withCode(instrumentation.AttrErrorCode, rerr.Code))
		}
		return result
	}

	// Stage 3: pattern heuristic (advisory)
	if IsSuspiciousPattern(candidate) {
		result.Warnings = append(result.Warnings, NewWarning(
			WarningCodeSuspiciousPattern,
			"Identifier structure looks synthetic or enumerable."))
		g.auditor.LogSuspiciousPattern(requesterID, candidate)
		g.countWarning(ctx, WarningCodeSuspiciousPattern)
	}

	// Stage 4: timing heuristic (advisory)
	if g.timing.Observe(requesterID) {
		result.Warnings = append(result.Warnings, NewWarning(
			WarningCodePotentialTimingAttack,
			"Request burst timing looks automated."))
		g.auditor.LogTimingAnomaly(requesterID)
		g.countWarning(ctx, WarningCodePotentialTimingAttack)
	}

	result.Valid = true
	return result
}

// AuthorizeAccess applies the sensitive-lookup access gate and records the
// outcome. It does not consume rate-limit quota; callers run it after a
// successful Validate when resource data is about to be returned.
func (g *Gateway) AuthorizeAccess(ctx context.Context, identifier string, requester Requester, resource any) *ValidationError {
	aerr := ValidateAccess(identifier, requester, resource)
	if aerr == nil {
		return nil
	}

	requesterID := requester.ID
	if requesterID == "" {
		requesterID = AnonymousRequester
	}
	g.auditor.LogAccessDenied(requesterID, identifier, "authentication required")
	if g.inst != nil {
		g.inst.Metrics().AccessDenied.Add(ctx, 1)
	}
	return aerr
}

// CheckRateLimit runs only the rate limiter for the given requester and
// operation, consuming one request from its window.
func (g *Gateway) CheckRateLimit(ctx context.Context, requesterID, operation string) RateLimitDecision {
	if requesterID == "" {
		requesterID = AnonymousRequester
	}

	decision := g.quota.Check(requesterID, operation)
	if !decision.Allowed {
		g.auditor.LogRateLimitExceeded(requesterID, operation, decision.RetryAfter)
		if g.inst != nil {
			g.inst.Metrics().RateLimitDenied.Add(ctx, 1)
		}
	}
	return *decisionToResult(decision)
}

// GenerateReport summarizes current lookup activity. It is read-only and
// safe to call concurrently with validations; calling it twice without
// intervening activity yields identical totals.
func (g *Gateway) GenerateReport(ctx context.Context) SecurityReport {
	total, tracked := g.quota.SumCounts(OperationLookup)
	return SecurityReport{
		Operation:         OperationLookup,
		TotalRequests:     total,
		TrackedRequesters: tracked,
		GeneratedAt:       g.clock.Now(),
	}
}

// CountFloodLimited records a transport-level flood drop against the
// gateway's instrumentation
func (g *Gateway) CountFloodLimited(ctx context.Context) {
	if g.inst != nil {
		g.inst.Metrics().FloodLimited.Add(ctx, 1)
	}
}

// RecordHTTPRequest records an HTTP request against the gateway's
// instrumentation
func (g *Gateway) RecordHTTPRequest(ctx context.Context, method, endpoint string, status int, duration time.Duration) {
	if g.inst != nil {
		g.inst.Metrics().RecordHTTPRequest(ctx, method, endpoint, status, duration.Seconds()*1000)
	}
}

// RateLimitStats exposes the rate limiter's monitoring statistics
func (g *Gateway) RateLimitStats() security.WindowStats {
	return g.quota.GetStats()
}

// recordFailure audits and counts a fatal validation error
func (g *Gateway) recordFailure(ctx context.Context, requesterID, identifier, code string) {
	g.auditor.LogValidationFailed(requesterID, identifier, code)
	if g.inst != nil {
		g.inst.Metrics().ValidationFailures.Add(ctx, 1,
			withCode(instrumentation.AttrErrorCode, code))
	}
}

func (g *Gateway) countValidation(ctx context.Context) {
	if g.inst != nil {
		g.inst.Metrics().ValidationsTotal.Add(ctx, 1)
	}
}

func (g *Gateway) countWarning(ctx context.Context, code string) {
	if g.inst != nil {
		g.inst.Metrics().ValidationWarnings.Add(ctx, 1,
			withCode(instrumentation.AttrWarningCode, code))
	}
}

// decisionToResult converts an internal limiter decision to the public type
func decisionToResult(d security.Decision) *RateLimitDecision {
	return &RateLimitDecision{
		Allowed:           d.Allowed,
		Limit:             d.Limit,
		Remaining:         d.Remaining,
		ResetAt:           d.ResetAt,
		RetryAfterSeconds: d.RetryAfterSeconds(),
	}
}

// withCode builds a metric attribute option for an error or warning code
func withCode(key, code string) metric.AddOption {
	return metric.WithAttributes(attribute.String(key, code))
}
