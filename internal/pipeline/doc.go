// Package pipeline implements the efficiency-metrics computation and
// anomaly-classification pipeline: it validates and normalizes a raw tabular
// production dataset, derives cycle-time metrics, aggregates per-station
// statistics, and partitions workers into efficiency buckets.
//
// The pipeline is a pure function from an input Table to a Result bundle.
// It holds no state between invocations and performs no I/O; decoding the
// uploaded file and rendering reports belong to the surrounding layers.
//
// Business thresholds (0.80 low, 1.05 high, 20% cycle-time deviation, 2.0
// plausibility ceiling) are fixed constants, not configuration.
package pipeline
