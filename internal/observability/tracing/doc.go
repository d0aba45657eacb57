// Package tracing wires OpenTelemetry spans into the HTTP server and the
// lifecycle jobs.
//
//	shutdown := tracing.Init("healthquiz-api")
//	defer func() { _ = shutdown(context.Background()) }()
//
//	ctx, span := tracing.StartSpan(ctx, "lifecycle.sweep")
//	defer span.End()
package tracing
