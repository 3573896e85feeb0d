// Package instrumentation provides OpenTelemetry metrics and tracing for
// the FCUID gateway. When disabled, no-op providers keep the overhead at
// zero; callers record against the same instruments either way.
package instrumentation
