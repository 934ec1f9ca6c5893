package pipeline

import "sort"

// Summary holds the scalar figures the reporting and alerting layers consume.
// Percentages are expressed 0–100.
type Summary struct {
	TotalWorkers int `json:"total_workers"`

	// AvgEfficiency is the mean of present efficiency values, as a percent.
	// Missing when no row has a parseable efficiency.
	AvgEfficiency Cell `json:"avg_efficiency"`

	// QualifiedRate is the share of ALL rows (missing efficiencies count
	// against it) with efficiency ≥ 0.80, as a percent.
	QualifiedRate float64 `json:"qualified_rate"`

	// AboveStandard counts rows with efficiency ≥ 1.0.
	AboveStandard int `json:"above_standard"`

	// BestStation / BestEfficiency identify the station with the highest
	// mean efficiency (percent). BestStation is empty when no station has a
	// computable mean.
	BestStation    string `json:"best_station"`
	BestEfficiency Cell   `json:"best_efficiency"`

	LowCount        int `json:"low_count"`
	NormalCount     int `json:"normal_count"`
	HighCount       int `json:"high_count"`
	CTAbnormalCount int `json:"ct_abnormal_count"`
}

// Summarize derives the report scalars from the pipeline outputs.
func Summarize(nt *NormalizedTable, aggs []StationAggregate, cls *Classification) Summary {
	s := Summary{
		TotalWorkers:    len(nt.Records),
		LowCount:        len(cls.Low),
		NormalCount:     len(cls.Normal),
		HighCount:       len(cls.High),
		CTAbnormalCount: len(cls.CTAbnormal),
	}

	var sum float64
	var present, qualified, above int
	for _, rec := range nt.Records {
		if !rec.Efficiency.Valid {
			continue
		}
		present++
		sum += rec.Efficiency.Value
		if rec.Efficiency.Value >= LowEfficiencyThreshold {
			qualified++
		}
		if rec.Efficiency.Value >= 1.0 {
			above++
		}
	}
	if present > 0 {
		s.AvgEfficiency = Num(sum / float64(present) * 100)
	}
	if len(nt.Records) > 0 {
		s.QualifiedRate = float64(qualified) / float64(len(nt.Records)) * 100
	}
	s.AboveStandard = above

	if best, ok := BestStation(aggs); ok {
		s.BestStation = best.Station
		s.BestEfficiency = Num(best.MeanEfficiency.Value * 100)
	}

	return s
}

// TopPerformers returns up to n records ranked by efficiency, descending.
// Records with a missing efficiency are excluded. The sort is stable, so
// equal efficiencies keep their input order.
func TopPerformers(nt *NormalizedTable, n int) []NormalizedRecord {
	ranked := make([]NormalizedRecord, 0, len(nt.Records))
	for _, rec := range nt.Records {
		if rec.Efficiency.Valid {
			ranked = append(ranked, rec)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Efficiency.Value > ranked[j].Efficiency.Value
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Result is the full analysis bundle: the normalized table, the per-station
// aggregates, the anomaly partitions, and the summary scalars.
type Result struct {
	Table    *NormalizedTable   `json:"table"`
	Stations []StationAggregate `json:"stations"`
	Classes  *Classification    `json:"classes"`
	Summary  Summary            `json:"summary"`
}

// Run executes the whole pipeline — normalize, aggregate, classify,
// summarize — in one call. This is the single entry point the API, report,
// and mail layers share; none of them re-implements any business rule.
func Run(t *Table, opts Options) (*Result, error) {
	nt, err := Normalize(t, opts)
	if err != nil {
		return nil, err
	}
	aggs := Aggregate(nt)
	cls := Classify(nt)
	return &Result{
		Table:    nt,
		Stations: aggs,
		Classes:  cls,
		Summary:  Summarize(nt, aggs, cls),
	}, nil
}
