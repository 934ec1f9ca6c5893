package pipeline

import (
	"math/rand"
	"testing"
)

func ntOf(recs ...NormalizedRecord) *NormalizedTable {
	return &NormalizedTable{Records: recs}
}

func TestAggregate_GroupsByStation(t *testing.T) {
	nt := ntOf(
		rec("A", "w1", Num(0.95), Missing),
		rec("B", "w2", Num(0.85), Missing),
		rec("A", "w3", Num(0.78), Missing),
	)
	aggs := Aggregate(nt)

	if len(aggs) != 2 {
		t.Fatalf("aggregates: got %d, want 2", len(aggs))
	}
	// First-seen order: A before B.
	if aggs[0].Station != "A" || aggs[1].Station != "B" {
		t.Fatalf("station order: got %s, %s — want A, B", aggs[0].Station, aggs[1].Station)
	}
	if !almostEqual(aggs[0].MeanEfficiency.Value, 0.865, 1e-9) {
		t.Errorf("A mean: got %v, want 0.865", aggs[0].MeanEfficiency.Value)
	}
	if aggs[0].Workers != 2 || aggs[1].Workers != 1 {
		t.Errorf("workers: got A=%d B=%d, want A=2 B=1", aggs[0].Workers, aggs[1].Workers)
	}
}

func TestAggregate_MissingEfficiencyCountsWorkerNotMean(t *testing.T) {
	nt := ntOf(
		rec("A", "w1", Num(0.9), Missing),
		rec("A", "w2", Missing, Missing),
	)
	aggs := Aggregate(nt)
	if aggs[0].Workers != 2 {
		t.Errorf("workers: got %d, want 2", aggs[0].Workers)
	}
	if !almostEqual(aggs[0].MeanEfficiency.Value, 0.9, 1e-9) {
		t.Errorf("mean: got %v, want 0.9 (missing rows excluded)", aggs[0].MeanEfficiency.Value)
	}
}

func TestAggregate_AllMissingMeansMissingMean(t *testing.T) {
	aggs := Aggregate(ntOf(rec("A", "w1", Missing, Missing)))
	if aggs[0].MeanEfficiency.Valid {
		t.Errorf("mean with no present efficiencies: got %v, want missing", aggs[0].MeanEfficiency.Value)
	}
}

func TestAggregate_InvariantUnderRowReordering(t *testing.T) {
	recs := []NormalizedRecord{
		rec("A", "w1", Num(0.95), Missing),
		rec("B", "w2", Num(0.85), Missing),
		rec("C", "w3", Num(1.05), Missing),
		rec("A", "w4", Num(0.78), Missing),
		rec("B", "w5", Num(0.91), Missing),
	}
	want := toMap(Aggregate(ntOf(recs...)))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]NormalizedRecord(nil), recs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := toMap(Aggregate(ntOf(shuffled...)))
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: station count %d, want %d", i, len(got), len(want))
		}
		for s, w := range want {
			g, ok := got[s]
			if !ok {
				t.Fatalf("shuffle %d: station %s absent", i, s)
			}
			if g.Workers != w.Workers || !almostEqual(g.MeanEfficiency.Value, w.MeanEfficiency.Value, 1e-12) {
				t.Errorf("shuffle %d: station %s: got %+v, want %+v", i, s, g, w)
			}
		}
	}
}

func toMap(aggs []StationAggregate) map[string]StationAggregate {
	m := make(map[string]StationAggregate, len(aggs))
	for _, a := range aggs {
		m[a.Station] = a
	}
	return m
}

func TestBestStation_FirstSeenTieBreak(t *testing.T) {
	// B and A tie exactly; B was encountered first, so B wins. This is the
	// documented first-seen tie-break, not a secondary sort key.
	nt := ntOf(
		rec("B", "w1", Num(0.9), Missing),
		rec("A", "w2", Num(0.9), Missing),
	)
	best, ok := BestStation(Aggregate(nt))
	if !ok {
		t.Fatal("BestStation: got ok=false")
	}
	if best.Station != "B" {
		t.Errorf("tie-break: got %s, want B (first seen)", best.Station)
	}
}

func TestBestStation_NoComputableMean(t *testing.T) {
	_, ok := BestStation(Aggregate(ntOf(rec("A", "w1", Missing, Missing))))
	if ok {
		t.Error("BestStation with no present efficiencies: got ok=true")
	}
}
