package pipeline

// StationAggregate is the per-station rollup: mean efficiency across the
// station's workers and the number of rows assigned to it. Recomputed on
// every pipeline run, never persisted.
type StationAggregate struct {
	Station string `json:"station"`

	// MeanEfficiency is averaged over the station's rows that carry a
	// present efficiency value. Missing when none do.
	MeanEfficiency Cell `json:"mean_efficiency"`

	// Workers is the total row count for the station, missing-efficiency
	// rows included.
	Workers int `json:"workers"`
}

// Aggregate groups the normalized records by station. Stations appear in
// first-seen input order, which makes the result independent of row order up
// to that ordering and keeps repeated runs byte-identical.
func Aggregate(nt *NormalizedTable) []StationAggregate {
	type acc struct {
		sum     float64
		present int
		total   int
	}
	byStation := make(map[string]*acc)
	var order []string

	for _, rec := range nt.Records {
		a, ok := byStation[rec.Station]
		if !ok {
			a = &acc{}
			byStation[rec.Station] = a
			order = append(order, rec.Station)
		}
		a.total++
		if rec.Efficiency.Valid {
			a.sum += rec.Efficiency.Value
			a.present++
		}
	}

	out := make([]StationAggregate, 0, len(order))
	for _, s := range order {
		a := byStation[s]
		agg := StationAggregate{Station: s, Workers: a.total}
		if a.present > 0 {
			agg.MeanEfficiency = Num(a.sum / float64(a.present))
		}
		out = append(out, agg)
	}
	return out
}

// BestStation returns the aggregate with the highest mean efficiency.
// On a true statistical tie the first station encountered wins — a
// deliberately simple tie-break, not a secondary key. ok is false when no
// station has a computable mean.
func BestStation(aggs []StationAggregate) (best StationAggregate, ok bool) {
	for _, a := range aggs {
		if !a.MeanEfficiency.Valid {
			continue
		}
		if !ok || a.MeanEfficiency.Value > best.MeanEfficiency.Value {
			best = a
			ok = true
		}
	}
	return best, ok
}
