package stats

import (
	"math"
	"testing"
)

func TestAnomaliesFlagsSpike(t *testing.T) {
	res := Anomalies(monthlySeries(10, 10, 10, 10, 100))
	if res == nil {
		t.Fatal("expected anomaly result")
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1: %+v", len(res.Anomalies), res.Anomalies)
	}
	a := res.Anomalies[0]
	if a.Value != 100 {
		t.Errorf("flagged value = %v, want 100", a.Value)
	}
	if math.Abs(a.ZScore-2.0) > 1e-9 {
		t.Errorf("z-score = %v, want 2.0", a.ZScore)
	}
	if a.Period != "2023-05" {
		t.Errorf("period = %q, want 2023-05", a.Period)
	}
}

func TestAnomaliesConstantSeriesAbsent(t *testing.T) {
	if res := Anomalies(monthlySeries(5, 5, 5, 5)); res != nil {
		t.Errorf("expected nil for constant series, got %+v", res)
	}
}

func TestAnomaliesNoneFlagged(t *testing.T) {
	if res := Anomalies(monthlySeries(10, 12, 11, 13, 12, 11)); res != nil {
		t.Errorf("expected nil when nothing crosses the threshold, got %+v", res)
	}
}

func TestAnomaliesTooShort(t *testing.T) {
	if res := Anomalies(monthlySeries(1, 2, 100)); res != nil {
		t.Errorf("expected nil for 3-point series, got %+v", res)
	}
}

func TestAnomaliesTopThreeByMagnitude(t *testing.T) {
	// Many points near 10 with four large departures of varying size.
	base := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10}
	series := monthlySeries(append(base, 200, -180, 160, -150)...)
	res := Anomalies(series)
	if res == nil {
		t.Fatal("expected anomaly result")
	}
	if len(res.Top) != 3 {
		t.Fatalf("top list has %d entries, want 3", len(res.Top))
	}
	for i := 1; i < len(res.Top); i++ {
		if math.Abs(res.Top[i].ZScore) > math.Abs(res.Top[i-1].ZScore) {
			t.Errorf("top list not ordered by |z| descending: %+v", res.Top)
		}
	}
	if len(res.Anomalies) < len(res.Top) {
		t.Error("full list must include everything in the top list")
	}
}
