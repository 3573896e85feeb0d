package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the gateway
type Metrics struct {
	// Validation pipeline metrics
	ValidationsTotal   metric.Int64Counter
	ValidationFailures metric.Int64Counter
	ValidationWarnings metric.Int64Counter

	// Security metrics
	RateLimitDenied         metric.Int64Counter
	AccessDenied            metric.Int64Counter
	FloodLimited            metric.Int64Counter
	RateLimitTrackedKeys    metric.Int64ObservableGauge
	TimingTrackedRequesters metric.Int64ObservableGauge

	// HTTP layer metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	gatewayMeter := inst.Meter("gateway")
	securityMeter := inst.Meter("security")
	httpMeter := inst.Meter("http")

	var err error
	m.ValidationsTotal, err = gatewayMeter.Int64Counter(
		"fcuid.validations.total",
		metric.WithDescription("Total number of identifier validations"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validations.total counter: %w", err)
	}

	m.ValidationFailures, err = gatewayMeter.Int64Counter(
		"fcuid.validations.failures",
		metric.WithDescription("Number of validations ending in a fatal error, by error code"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validations.failures counter: %w", err)
	}

	m.ValidationWarnings, err = gatewayMeter.Int64Counter(
		"fcuid.validations.warnings",
		metric.WithDescription("Number of advisory warnings attached to validations, by warning code"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validations.warnings counter: %w", err)
	}

	m.RateLimitDenied, err = securityMeter.Int64Counter(
		"fcuid.ratelimit.denied",
		metric.WithDescription("Number of requests denied by the fixed-window rate limiter"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.denied counter: %w", err)
	}

	m.AccessDenied, err = securityMeter.Int64Counter(
		"fcuid.access.denied",
		metric.WithDescription("Number of sensitive lookups denied for lack of authentication"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access.denied counter: %w", err)
	}

	m.FloodLimited, err = securityMeter.Int64Counter(
		"fcuid.flood.limited",
		metric.WithDescription("Number of requests dropped by the transport flood limiter"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flood.limited counter: %w", err)
	}

	m.RateLimitTrackedKeys, err = securityMeter.Int64ObservableGauge(
		"fcuid.ratelimit.tracked_keys",
		metric.WithDescription("Number of requester/operation keys currently tracked by the rate limiter"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.tracked_keys gauge: %w", err)
	}

	m.TimingTrackedRequesters, err = securityMeter.Int64ObservableGauge(
		"fcuid.timing.tracked_requesters",
		metric.WithDescription("Number of requester logs currently held by the timing analyzer"),
		metric.WithUnit("{requester}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create timing.tracked_requesters gauge: %w", err)
	}

	m.HTTPRequestsTotal, err = httpMeter.Int64Counter(
		"fcuid.http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.requests.total counter: %w", err)
	}

	m.HTTPRequestDuration, err = httpMeter.Float64Histogram(
		"fcuid.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.request.duration histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, endpoint string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("status", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, durationMs, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}
