package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

func sampleResult(t *testing.T) *pipeline.Result {
	t.Helper()
	res, err := pipeline.Run(&pipeline.Table{
		Columns: pipeline.RequiredColumns,
		Rows: [][]string{
			{"A", "w1", "95%", "120", "125"},
			{"B", "w2", "85%", "180", "200"},
			{"C", "w3", "110%", "150", "142"},
			{"A", "w4", "78%", "120", "155"},
		},
	}, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestBuild_Figures(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Build("june-line-3", sampleResult(t), now)

	if d.GeneratedAt != "2025-06-01 12:00:00" {
		t.Errorf("GeneratedAt: got %q", d.GeneratedAt)
	}
	// (0.95+0.85+1.10+0.78)/4 = 0.92 → "92.0%".
	if d.AvgEfficiency != "92.0%" {
		t.Errorf("AvgEfficiency: got %q, want 92.0%%", d.AvgEfficiency)
	}
	if d.QualifiedRate != "75.0%" {
		t.Errorf("QualifiedRate: got %q, want 75.0%%", d.QualifiedRate)
	}
	if d.BestStation != "C" || d.BestEfficiency != "110.0%" {
		t.Errorf("best station: got %q (%q), want C (110.0%%)", d.BestStation, d.BestEfficiency)
	}
	if len(d.Low) != 1 || d.Low[0].Worker != "w4" || d.Low[0].Efficiency != "78.0%" {
		t.Errorf("Low: got %+v", d.Low)
	}
	if len(d.High) != 1 || d.High[0].Worker != "w3" {
		t.Errorf("High: got %+v", d.High)
	}
	if len(d.CTAbnormal) != 1 || d.CTAbnormal[0].Worker != "w4" {
		t.Errorf("CTAbnormal: got %+v", d.CTAbnormal)
	}
	if d.CTAbnormal[0].CTDeltaRatio != "29.2%" {
		t.Errorf("CTAbnormal ratio: got %q, want 29.2%%", d.CTAbnormal[0].CTDeltaRatio)
	}
}

func TestBuild_ListOrdering(t *testing.T) {
	res, err := pipeline.Run(&pipeline.Table{
		Columns: pipeline.RequiredColumns,
		Rows: [][]string{
			{"A", "a", "70%", "100", "100"},
			{"A", "b", "60%", "100", "100"},
			{"A", "c", "75%", "100", "100"},
		},
	}, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	d := Build("x", res, time.Now())
	// Low list ascends — the worst performer leads.
	if d.Low[0].Worker != "b" || d.Low[1].Worker != "a" || d.Low[2].Worker != "c" {
		t.Errorf("Low order: got %+v, want b, a, c", d.Low)
	}
}

func TestHTML_ContainsSections(t *testing.T) {
	d := Build("june-line-3", sampleResult(t), time.Now())
	out, err := d.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	html := string(out)
	for _, want := range []string{
		"june-line-3",
		"Average efficiency: 92.0%",
		"Station Efficiency",
		"Low efficiency",
		"High efficiency",
		"Cycle-Time Anomalies",
		"w4",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestHTML_EscapesWorkerNames(t *testing.T) {
	res, err := pipeline.Run(&pipeline.Table{
		Columns: pipeline.RequiredColumns,
		Rows:    [][]string{{"A", "<script>x</script>", "95%", "120", "125"}},
	}, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := Build("x", res, time.Now()).HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(string(out), "<script>x</script>") {
		t.Error("HTML did not escape worker name")
	}
}

func TestBuild_DataQualityNotes(t *testing.T) {
	res, err := pipeline.Run(&pipeline.Table{
		Columns: pipeline.RequiredColumns,
		Rows: [][]string{
			{"A", "w1", "garbage", "120", "125"},
			{"A", "w2", "250%", "120", "125"},
		},
	}, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	d := Build("x", res, time.Now())
	if d.Coercions != 1 {
		t.Errorf("Coercions: got %d, want 1", d.Coercions)
	}
	if len(d.RangeWarnings) != 1 || !strings.Contains(d.RangeWarnings[0], "250.0%") {
		t.Errorf("RangeWarnings: got %+v", d.RangeWarnings)
	}

	out, err := d.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(out), "Data Quality Notes") {
		t.Error("HTML missing data quality section")
	}
}
