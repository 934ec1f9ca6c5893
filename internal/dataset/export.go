package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// exportHeader is the column layout of the processed-CSV download: the five
// input columns plus the two derived cycle-time fields.
var exportHeader = []string{
	pipeline.ColStation,
	pipeline.ColWorker,
	pipeline.ColEfficiency,
	pipeline.ColStandardCT,
	pipeline.ColActualCT,
	"ct_delta",
	"ct_delta_ratio",
}

// WriteCSV writes the normalized table to w as UTF-8 CSV. Missing cells
// become empty fields; efficiency is written as a fraction, the way the
// pipeline holds it.
func WriteCSV(w io.Writer, nt *pipeline.NormalizedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("dataset: write csv header: %w", err)
	}
	for _, rec := range nt.Records {
		row := []string{
			rec.Station,
			rec.Worker,
			cellString(rec.Efficiency),
			cellString(rec.StandardCT),
			cellString(rec.ActualCT),
			cellString(rec.CTDelta),
			cellString(rec.CTDeltaRatio),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("dataset: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// cellString renders a cell for CSV output; missing cells are empty fields.
func cellString(c pipeline.Cell) string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}
