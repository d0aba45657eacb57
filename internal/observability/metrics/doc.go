// Package metrics holds the Prometheus collectors for the service.
//
// Collectors register with the default registry through promauto and are
// exposed by the /metrics endpoint of both the API and the worker.
//
//	start := time.Now()
//	content, err := ex.Extract(ctx, url)
//	metrics.RecordExtraction(metrics.ExtractionSuccess, time.Since(start))
package metrics
