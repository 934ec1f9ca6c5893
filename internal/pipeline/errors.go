package pipeline

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from the input header.
// It is fatal: Normalize returns no table alongside it.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("pipeline: dataset is missing required columns: %s",
		strings.Join(e.Missing, ", "))
}

// DataRangeError reports a negative efficiency value. A negative efficiency
// is physically impossible and indicates corrupt input, so the whole
// normalize operation fails rather than returning a partial table.
type DataRangeError struct {
	Row    int // 1-based data row index (header excluded)
	Worker string
	Value  float64
}

func (e *DataRangeError) Error() string {
	return fmt.Sprintf("pipeline: row %d (worker %q): efficiency %v is negative",
		e.Row, e.Worker, e.Value)
}
