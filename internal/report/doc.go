// Package report renders an analysis bundle into the production-efficiency
// report document: overall figures, the per-station table, the anomaly
// lists, and data-quality notes. The output is self-contained HTML suitable
// for both the report download endpoint and the mailed report body.
//
// All business figures come from the pipeline; this package only formats.
package report
