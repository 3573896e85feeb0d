package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys.
//
// Attributes carry metadata only: requester identities are hashed by the
// audit layer before they reach logs, and identifiers themselves are
// resource handles, not credentials.
const (
	AttrIdentifier  = "fcuid.identifier"   // Candidate identifier under validation
	AttrVariant     = "fcuid.variant"      // Matched format variant
	AttrValid       = "fcuid.valid"        // Validation outcome (boolean)
	AttrErrorCode   = "fcuid.error_code"   // Fatal error code, when present
	AttrWarningCode = "fcuid.warning_code" // Advisory warning code
	AttrOperation   = "fcuid.operation"    // Operation kind (e.g. "lookup")
	AttrRequestID   = "fcuid.request_id"   // Correlation request ID
)

// StartSpan starts a span on the given tracer with common options applied
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and marks its status
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordOutcome marks a span's final status from a validation outcome
func RecordOutcome(span trace.Span, valid bool) {
	span.SetAttributes(attribute.Bool(AttrValid, valid))
	if valid {
		span.SetStatus(codes.Ok, "")
	}
}
