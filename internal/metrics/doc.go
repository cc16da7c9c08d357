// Package metrics records per-route request, upstream and response figures
// for the proxy.
//
// Request handling emits MetricEvent values through Collector.Emit, which
// never blocks; a single goroutine started by Collector.Start folds them into
// an in-memory Metrics store and a private Prometheus registry. Two read
// paths are exposed:
//
//	mux.Handle("/stats", collector.Handler())             // JSON snapshot
//	mux.Handle("/metrics", collector.PrometheusHandler()) // Prometheus
//
// The JSON snapshot carries request counts, upstream call and failure counts
// by reason, upstream latency average and percentiles (P50, P95, P99) and the
// status code distribution of responses. Pending events are drained when the
// collector's context is cancelled.
package metrics
