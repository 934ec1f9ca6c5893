// Package api implements the HTTP REST API and the Prometheus metrics
// endpoint for the efficiency analysis server.
//
// New(store, engine, sender, opts, metrics) returns a Handler that serves:
//
//	POST /api/v1/datasets?name=       — upload CSV, run the pipeline, store
//	GET  /api/v1/datasets             — all live analyses ([]AnalysisMeta)
//	GET  /api/v1/datasets/{id}        — full bundle; 404 if unknown or stale
//	GET  /api/v1/datasets/{id}/report — rendered HTML report
//	GET  /api/v1/datasets/{id}/csv    — processed CSV download
//	GET  /api/v1/alerts               — firing + recently resolved alerts
//	GET  /api/v1/health               — analysis counts and workforce totals
//
// Upload failures carry a typed JSON error body: decode failures are 400
// (kind "undecodable" or "empty"), normalization failures are 422 (kind
// "schema" or "data_range" with per-kind details).
//
// Metrics implements GET /metrics in Prometheus text exposition format.
// JSON types are defined in types.go. No external HTTP framework is used.
package api
