package pipeline

import (
	"bytes"
	"strconv"
)

// Required column headers. Matching is exact-string against the input
// header row (after whitespace trimming by the decoder).
const (
	ColStation    = "station"
	ColWorker     = "worker"
	ColEfficiency = "efficiency"
	ColStandardCT = "standard_ct"
	ColActualCT   = "actual_ct"
)

// RequiredColumns is the set of headers Normalize demands, in canonical order.
var RequiredColumns = []string{ColStation, ColWorker, ColEfficiency, ColStandardCT, ColActualCT}

// Table is a decoded, in-memory tabular dataset: one header row plus data
// rows of raw string cells. The decoder guarantees the text is already valid
// UTF-8; the pipeline never sees raw bytes.
type Table struct {
	Columns []string
	Rows    [][]string
}

// columnIndex returns the position of name in t.Columns, or -1.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// cell returns the raw cell at row r, column index i. Short rows yield "".
func (t *Table) cell(r, i int) string {
	if i < 0 || i >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][i]
}

// Cell is a numeric table cell that may be missing. A missing cell arises
// from an unparseable input value or an undefined derivation (division by
// zero); it is the zero value. Cell never holds NaN or Inf.
type Cell struct {
	Value float64
	Valid bool
}

// Num returns a present Cell holding v.
func Num(v float64) Cell { return Cell{Value: v, Valid: true} }

// Missing is the explicit missing-value marker.
var Missing = Cell{}

// MarshalJSON encodes a missing cell as null and a present cell as a number.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(c.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts null or a JSON number.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Missing
		return nil
	}
	v, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil {
		return err
	}
	*c = Num(v)
	return nil
}
