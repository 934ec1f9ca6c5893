package pipeline

// Efficiency bucket boundaries and the cycle-time deviation threshold.
// Downstream reporting text asserts "≥80%" and ">20%", so the boundary
// policies here — inclusive for efficiency, strict for the delta ratio —
// must be preserved exactly.
const (
	LowEfficiencyThreshold  = 0.80
	HighEfficiencyThreshold = 1.05
	CTDeltaRatioThreshold   = 20.0
)

// Classification partitions the normalized records into efficiency buckets,
// plus the separate cycle-time anomaly set. A record with a missing
// efficiency belongs to no efficiency bucket; a record with a missing delta
// ratio is never cycle-time-abnormal. Slice order follows input order.
type Classification struct {
	// Low holds records with efficiency < 0.80.
	Low []NormalizedRecord `json:"low"`

	// Normal holds records with 0.80 ≤ efficiency ≤ 1.05, both inclusive.
	Normal []NormalizedRecord `json:"normal"`

	// High holds records with efficiency > 1.05.
	High []NormalizedRecord `json:"high"`

	// CTAbnormal holds records with |ct_delta_ratio| strictly above 20%.
	CTAbnormal []NormalizedRecord `json:"ct_abnormal"`
}

// Classify buckets every record per the fixed business thresholds.
func Classify(nt *NormalizedTable) *Classification {
	cls := &Classification{}
	for _, rec := range nt.Records {
		if rec.Efficiency.Valid {
			switch {
			case rec.Efficiency.Value < LowEfficiencyThreshold:
				cls.Low = append(cls.Low, rec)
			case rec.Efficiency.Value > HighEfficiencyThreshold:
				cls.High = append(cls.High, rec)
			default:
				cls.Normal = append(cls.Normal, rec)
			}
		}
		if rec.CTDeltaRatio.Valid && abs(rec.CTDeltaRatio.Value) > CTDeltaRatioThreshold {
			cls.CTAbnormal = append(cls.CTAbnormal, rec)
		}
	}
	return cls
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
