package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxPlausibleEfficiency is the ceiling above which an efficiency value is
// flagged as implausible. Values above it are kept (the standard time may
// genuinely be mis-set) but surfaced as RangeWarnings.
const MaxPlausibleEfficiency = 2.0

// ZeroFillMode controls whether cells left missing by failed numeric
// coercion are filled with zero, and at which stage. Zero-filling and
// omission produce materially different aggregate statistics, so this is an
// explicit opt-in rather than a silent default.
type ZeroFillMode int

const (
	// ZeroFillOff keeps missing cells missing. The default.
	ZeroFillOff ZeroFillMode = iota

	// ZeroFillBeforeDerive fills missing efficiency and cycle-time cells
	// with zero before ct_delta / ct_delta_ratio are derived. A zero
	// standard_ct still yields a missing delta ratio.
	ZeroFillBeforeDerive

	// ZeroFillAfterDerive derives ct_delta / ct_delta_ratio from the values
	// actually present, then fills every remaining missing cell (derived
	// ones included) with zero.
	ZeroFillAfterDerive
)

// String returns the configuration spelling of the mode.
func (m ZeroFillMode) String() string {
	switch m {
	case ZeroFillBeforeDerive:
		return "before_derive"
	case ZeroFillAfterDerive:
		return "after_derive"
	default:
		return "off"
	}
}

// ParseZeroFillMode parses the configuration spelling of a ZeroFillMode.
// The empty string means ZeroFillOff.
func ParseZeroFillMode(s string) (ZeroFillMode, error) {
	switch s {
	case "", "off":
		return ZeroFillOff, nil
	case "before_derive":
		return ZeroFillBeforeDerive, nil
	case "after_derive":
		return ZeroFillAfterDerive, nil
	default:
		return ZeroFillOff, fmt.Errorf("pipeline: unknown zero_fill mode %q: want off|before_derive|after_derive", s)
	}
}

// Options are the caller-visible normalization knobs.
type Options struct {
	ZeroFill ZeroFillMode
}

// NormalizedRecord is one input row with efficiency coerced to a fraction
// (0.95, not "95%"), cycle times coerced to numbers, and two derived fields.
// Records are immutable once built.
type NormalizedRecord struct {
	Station    string `json:"station"`
	Worker     string `json:"worker"`
	Efficiency Cell   `json:"efficiency"`
	StandardCT Cell   `json:"standard_ct"`
	ActualCT   Cell   `json:"actual_ct"`

	// CTDelta is actual_ct − standard_ct.
	CTDelta Cell `json:"ct_delta"`

	// CTDeltaRatio is CTDelta / standard_ct × 100, rounded to one decimal.
	// Missing when standard_ct is zero or either cycle time is missing.
	CTDeltaRatio Cell `json:"ct_delta_ratio"`
}

// RangeWarning flags an efficiency above MaxPlausibleEfficiency.
type RangeWarning struct {
	Row    int     `json:"row"` // 1-based data row index
	Worker string  `json:"worker"`
	Value  float64 `json:"value"`
}

// NormalizedTable is the output of Normalize: the normalized records plus
// the non-fatal conditions encountered while building them.
type NormalizedTable struct {
	Records []NormalizedRecord `json:"records"`

	// Coercions counts individual cells that failed to parse as numbers and
	// became missing (or zero, under a zero-fill mode).
	Coercions int `json:"coercions"`

	// RangeWarnings lists rows whose efficiency exceeded the plausibility
	// ceiling. Surfaced to the caller, never fatal.
	RangeWarnings []RangeWarning `json:"range_warnings,omitempty"`
}

// Normalize validates the table schema, coerces the numeric columns, and
// derives the cycle-time fields.
//
// A missing required column fails with *SchemaError. A negative efficiency
// anywhere fails the whole operation with *DataRangeError — no partial table
// is returned. Unparseable numeric cells are non-fatal: they become missing
// markers and are counted in the result's Coercions.
func Normalize(t *Table, opts Options) (*NormalizedTable, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if t.columnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var (
		iStation = t.columnIndex(ColStation)
		iWorker  = t.columnIndex(ColWorker)
		iEff     = t.columnIndex(ColEfficiency)
		iStd     = t.columnIndex(ColStandardCT)
		iAct     = t.columnIndex(ColActualCT)
	)

	out := &NormalizedTable{Records: make([]NormalizedRecord, 0, len(t.Rows))}

	for r := range t.Rows {
		row := r + 1 // 1-based for error reporting
		rec := NormalizedRecord{
			Station: strings.TrimSpace(t.cell(r, iStation)),
			Worker:  strings.TrimSpace(t.cell(r, iWorker)),
		}

		eff, ok := parseEfficiency(t.cell(r, iEff))
		if !ok {
			out.Coercions++
		} else if eff.Value < 0 {
			return nil, &DataRangeError{Row: row, Worker: rec.Worker, Value: eff.Value}
		} else if eff.Value > MaxPlausibleEfficiency {
			out.RangeWarnings = append(out.RangeWarnings, RangeWarning{
				Row: row, Worker: rec.Worker, Value: eff.Value,
			})
		}
		rec.Efficiency = eff

		rec.StandardCT = parseNumber(t.cell(r, iStd), &out.Coercions)
		rec.ActualCT = parseNumber(t.cell(r, iAct), &out.Coercions)

		if opts.ZeroFill == ZeroFillBeforeDerive {
			rec.Efficiency = zeroFill(rec.Efficiency)
			rec.StandardCT = zeroFill(rec.StandardCT)
			rec.ActualCT = zeroFill(rec.ActualCT)
		}

		rec.CTDelta, rec.CTDeltaRatio = deriveCT(rec.StandardCT, rec.ActualCT)

		if opts.ZeroFill == ZeroFillAfterDerive {
			rec.Efficiency = zeroFill(rec.Efficiency)
			rec.StandardCT = zeroFill(rec.StandardCT)
			rec.ActualCT = zeroFill(rec.ActualCT)
			rec.CTDelta = zeroFill(rec.CTDelta)
			rec.CTDeltaRatio = zeroFill(rec.CTDeltaRatio)
		}

		out.Records = append(out.Records, rec)
	}

	return out, nil
}

// parseEfficiency coerces a raw efficiency cell to a fraction. "95%" → 0.95;
// a bare "0.95" is also 0.95 — the two conventions coexist in real uploads
// and must not be auto-scaled differently. ok is false when the cell cannot
// be parsed.
func parseEfficiency(raw string) (c Cell, ok bool) {
	s := strings.TrimSpace(raw)
	pct := strings.HasSuffix(s, "%")
	if pct {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing, false
	}
	if pct {
		v /= 100
	}
	return Num(v), true
}

// parseNumber coerces a raw cycle-time cell, bumping *coercions on failure.
func parseNumber(raw string, coercions *int) Cell {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*coercions++
		return Missing
	}
	return Num(v)
}

// deriveCT computes ct_delta and ct_delta_ratio from the cycle-time cells.
// A zero standard_ct yields a missing ratio — never Inf and never a panic.
func deriveCT(std, act Cell) (delta, ratio Cell) {
	if !std.Valid || !act.Valid {
		return Missing, Missing
	}
	delta = Num(act.Value - std.Value)
	if std.Value == 0 {
		return delta, Missing
	}
	return delta, Num(round1(delta.Value / std.Value * 100))
}

// zeroFill converts a missing cell to a present zero.
func zeroFill(c Cell) Cell {
	if c.Valid {
		return c
	}
	return Num(0)
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
