// Package dataset turns uploaded bytes into the pipeline's Table and writes
// processed tables back out as CSV.
//
// Upload encoding is not fixed: files come from spreadsheets saved as UTF-8,
// Big5, or GBK. Decode tries that ordered list and hands the pipeline
// already-decoded text; the pipeline itself never sees raw bytes.
package dataset
