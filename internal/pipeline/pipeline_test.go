package pipeline

import (
	"reflect"
	"testing"
)

// sampleTable is the reference four-row dataset used across the end-to-end
// assertions: two workers on station A, one each on B and C.
func sampleTable() *Table {
	return tbl(
		row("A", "w1", "95%", "120", "125"),
		row("B", "w2", "85%", "180", "200"),
		row("C", "w3", "105%", "150", "142"),
		row("A", "w4", "78%", "120", "155"),
	)
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := Run(sampleTable(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Average efficiency = (0.95+0.85+1.05+0.78)/4 = 0.9075 → 90.75%.
	if !res.Summary.AvgEfficiency.Valid || !almostEqual(res.Summary.AvgEfficiency.Value, 90.75, 1e-9) {
		t.Errorf("avg efficiency: got %+v, want 90.75", res.Summary.AvgEfficiency)
	}

	// Low-efficiency set = exactly the 78% row.
	if len(res.Classes.Low) != 1 || res.Classes.Low[0].Worker != "w4" {
		t.Errorf("low set: got %+v, want only w4", res.Classes.Low)
	}

	// The 105% row sits exactly on the inclusive high boundary, so it is
	// normal; the high bucket stays empty.
	if len(res.Classes.High) != 0 {
		t.Errorf("high set: got %+v, want empty (1.05 is inclusive-normal)", res.Classes.High)
	}
	if len(res.Classes.Normal) != 3 {
		t.Errorf("normal set: got %d records, want 3", len(res.Classes.Normal))
	}

	// Station A mean = (0.95+0.78)/2 = 0.865.
	var stationA StationAggregate
	for _, a := range res.Stations {
		if a.Station == "A" {
			stationA = a
		}
	}
	if !almostEqual(stationA.MeanEfficiency.Value, 0.865, 1e-9) {
		t.Errorf("station A mean: got %v, want 0.865", stationA.MeanEfficiency.Value)
	}
	if stationA.Workers != 2 {
		t.Errorf("station A workers: got %d, want 2", stationA.Workers)
	}

	// Qualified rate: 3 of 4 rows at or above 0.80.
	if !almostEqual(res.Summary.QualifiedRate, 75, 1e-9) {
		t.Errorf("qualified rate: got %v, want 75", res.Summary.QualifiedRate)
	}

	// Best station is C (1.05).
	if res.Summary.BestStation != "C" {
		t.Errorf("best station: got %q, want C", res.Summary.BestStation)
	}
	if !almostEqual(res.Summary.BestEfficiency.Value, 105, 1e-9) {
		t.Errorf("best efficiency: got %v, want 105", res.Summary.BestEfficiency.Value)
	}

	// CT abnormal: w4 has delta ratio (155-120)/120*100 = 29.2 > 20.
	if len(res.Classes.CTAbnormal) != 1 || res.Classes.CTAbnormal[0].Worker != "w4" {
		t.Errorf("ct abnormal: got %+v, want only w4", res.Classes.CTAbnormal)
	}

	if res.Summary.AboveStandard != 1 { // only the 1.05 row
		t.Errorf("above standard: got %d, want 1", res.Summary.AboveStandard)
	}
}

func TestRun_Idempotent(t *testing.T) {
	// The pipeline is a pure function: re-running on the same input must
	// yield identical output bundles.
	a, err := Run(sampleTable(), Options{})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	b, err := Run(sampleTable(), Options{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Run is not idempotent: two runs on the same input differ")
	}
}

func TestTopPerformers(t *testing.T) {
	nt, err := Normalize(sampleTable(), Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	top := TopPerformers(nt, 2)
	if len(top) != 2 {
		t.Fatalf("top: got %d records, want 2", len(top))
	}
	if top[0].Worker != "w3" || top[1].Worker != "w1" {
		t.Errorf("top order: got %s, %s — want w3, w1", top[0].Worker, top[1].Worker)
	}

	// n larger than the table returns everything ranked.
	all := TopPerformers(nt, 100)
	if len(all) != 4 {
		t.Errorf("top 100: got %d records, want 4", len(all))
	}
	if all[3].Worker != "w4" {
		t.Errorf("last ranked: got %s, want w4", all[3].Worker)
	}
}

func TestSummarize_EmptyTable(t *testing.T) {
	res, err := Run(tbl(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.AvgEfficiency.Valid {
		t.Error("avg efficiency of empty table: want missing")
	}
	if res.Summary.QualifiedRate != 0 || res.Summary.TotalWorkers != 0 {
		t.Errorf("empty summary: got %+v", res.Summary)
	}
	if res.Summary.BestStation != "" {
		t.Errorf("best station of empty table: got %q, want empty", res.Summary.BestStation)
	}
}
