package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// maxListLen caps the anomaly and ranking lists at the ten most relevant
// entries, matching the report's "top 10" sections.
const maxListLen = 10

// Row is one line in an efficiency list.
type Row struct {
	Station    string
	Worker     string
	Efficiency string // formatted percent, e.g. "78.0%"
}

// CTRow is one line in the cycle-time anomaly table.
type CTRow struct {
	Station      string
	Worker       string
	StandardCT   string
	ActualCT     string
	CTDelta      string
	CTDeltaRatio string
}

// StationRow is one line in the per-station table.
type StationRow struct {
	Station    string
	Efficiency string
	Workers    int
}

// Data is the fully-formatted report model fed to the HTML template.
type Data struct {
	DatasetName string
	GeneratedAt string

	AvgEfficiency  string
	QualifiedRate  string
	BestStation    string
	BestEfficiency string
	TotalWorkers   int

	LowCount        int
	NormalCount     int
	HighCount       int
	CTAbnormalCount int

	Stations   []StationRow
	Low        []Row // ascending — the workers most in need of improvement first
	High       []Row // descending — the standards most in need of re-evaluation first
	Top        []Row
	CTAbnormal []CTRow // by |delta ratio|, most deviant first

	Coercions     int
	RangeWarnings []string
}

// Build formats the analysis bundle into the report model.
func Build(datasetName string, res *pipeline.Result, now time.Time) *Data {
	s := res.Summary

	d := &Data{
		DatasetName:     datasetName,
		GeneratedAt:     now.UTC().Format("2006-01-02 15:04:05"),
		AvgEfficiency:   fmtPct(s.AvgEfficiency),
		QualifiedRate:   fmt.Sprintf("%.1f%%", s.QualifiedRate),
		BestStation:     s.BestStation,
		BestEfficiency:  fmtPct(s.BestEfficiency),
		TotalWorkers:    s.TotalWorkers,
		LowCount:        s.LowCount,
		NormalCount:     s.NormalCount,
		HighCount:       s.HighCount,
		CTAbnormalCount: s.CTAbnormalCount,
		Coercions:       res.Table.Coercions,
	}

	for _, a := range res.Stations {
		d.Stations = append(d.Stations, StationRow{
			Station:    a.Station,
			Efficiency: fmtPctFraction(a.MeanEfficiency),
			Workers:    a.Workers,
		})
	}

	d.Low = effRows(sortByEfficiency(res.Classes.Low, true))
	d.High = effRows(sortByEfficiency(res.Classes.High, false))
	d.Top = effRows(pipeline.TopPerformers(res.Table, maxListLen))
	d.CTAbnormal = ctRows(sortByAbsRatio(res.Classes.CTAbnormal))

	for _, w := range res.Table.RangeWarnings {
		d.RangeWarnings = append(d.RangeWarnings,
			fmt.Sprintf("row %d (%s): efficiency %.1f%% exceeds the plausible range — re-check the standard time",
				w.Row, w.Worker, w.Value*100))
	}

	return d
}

// HTML renders the report model through the embedded template.
func (d *Data) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("report: render: %w", err)
	}
	return buf.Bytes(), nil
}

// sortByEfficiency returns up to maxListLen records ordered by efficiency.
// The sort is stable so ties keep input order.
func sortByEfficiency(recs []pipeline.NormalizedRecord, ascending bool) []pipeline.NormalizedRecord {
	out := append([]pipeline.NormalizedRecord(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Efficiency.Value < out[j].Efficiency.Value
		}
		return out[i].Efficiency.Value > out[j].Efficiency.Value
	})
	if len(out) > maxListLen {
		out = out[:maxListLen]
	}
	return out
}

// sortByAbsRatio returns up to maxListLen records, most deviant first.
func sortByAbsRatio(recs []pipeline.NormalizedRecord) []pipeline.NormalizedRecord {
	out := append([]pipeline.NormalizedRecord(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool {
		return absv(out[i].CTDeltaRatio.Value) > absv(out[j].CTDeltaRatio.Value)
	})
	if len(out) > maxListLen {
		out = out[:maxListLen]
	}
	return out
}

func effRows(recs []pipeline.NormalizedRecord) []Row {
	rows := make([]Row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, Row{
			Station:    r.Station,
			Worker:     r.Worker,
			Efficiency: fmtPctFraction(r.Efficiency),
		})
	}
	return rows
}

func ctRows(recs []pipeline.NormalizedRecord) []CTRow {
	rows := make([]CTRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, CTRow{
			Station:      r.Station,
			Worker:       r.Worker,
			StandardCT:   fmtNum(r.StandardCT),
			ActualCT:     fmtNum(r.ActualCT),
			CTDelta:      fmtNum(r.CTDelta),
			CTDeltaRatio: fmtPct(r.CTDeltaRatio),
		})
	}
	return rows
}

// fmtPct formats a cell already expressed in percent units.
func fmtPct(c pipeline.Cell) string {
	if !c.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", c.Value)
}

// fmtPctFraction formats a fraction-valued cell as a percent.
func fmtPctFraction(c pipeline.Cell) string {
	if !c.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", c.Value*100)
}

func fmtNum(c pipeline.Cell) string {
	if !c.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", c.Value)
}

func absv(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
