package alerts

import (
	"strconv"
	"strings"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// evalCondition evaluates a rule condition string against an analysis result.
//
// Supported expressions (field operator value):
//
//	avg_efficiency < 85
//	qualified_rate < 80
//	low_count > 5
//	high_count > 10
//	ct_abnormal_count > 0
//	best_efficiency < 90
//	above_standard < 3
//	coercions > 20
//	workers < 10
//
// Percentage fields use the 0–100 scale of the summary.
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed, the field is unknown,
// or the field's value is missing in this result.
func evalCondition(cond string, res *pipeline.Result) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}

	v, ok := numericField(field, res)
	if !ok {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the result summary.
// The second return is false for unknown fields and for missing values.
func numericField(field string, res *pipeline.Result) (float64, bool) {
	s := res.Summary
	switch field {
	case "avg_efficiency":
		return s.AvgEfficiency.Value, s.AvgEfficiency.Valid
	case "qualified_rate":
		return s.QualifiedRate, true
	case "low_count":
		return float64(s.LowCount), true
	case "high_count":
		return float64(s.HighCount), true
	case "ct_abnormal_count":
		return float64(s.CTAbnormalCount), true
	case "best_efficiency":
		return s.BestEfficiency.Value, s.BestEfficiency.Valid
	case "above_standard":
		return float64(s.AboveStandard), true
	case "coercions":
		return float64(res.Table.Coercions), true
	case "workers":
		return float64(s.TotalWorkers), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
