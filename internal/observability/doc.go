// Package observability groups structured logging, Prometheus metrics and
// OpenTelemetry tracing for the quiz service.
//
// Subpackages:
//   - logging: slog JSON logger with request-id propagation
//   - metrics: promauto collectors and Record* helpers
//   - tracing: HTTP server spans
package observability
