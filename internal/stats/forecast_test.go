package stats

import (
	"math"
	"testing"
)

func TestForecastLinearSeries(t *testing.T) {
	res := Forecast(monthlySeries(10, 20, 30, 40, 50, 60), HoltSmoother{})
	if res == nil {
		t.Fatal("expected forecast result")
	}
	if res.Unavailable || res.Error != "" {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
	if len(res.Points) != 3 {
		t.Fatalf("got %d forecast points, want 3", len(res.Points))
	}

	// A perfectly linear series is tracked exactly by Holt smoothing.
	want := []float64{70, 80, 90}
	for i, p := range res.Points {
		if math.Abs(p.Value-want[i]) > 1e-6 {
			t.Errorf("points[%d].Value = %v, want %v", i, p.Value, want[i])
		}
	}
	if res.ResidualStd > 1e-9 {
		t.Errorf("residual std = %v, want ~0", res.ResidualStd)
	}
	if res.Points[0].Period != "2023-07" {
		t.Errorf("first forecast period = %q, want 2023-07", res.Points[0].Period)
	}
}

func TestForecastIntervalWidensWithHorizon(t *testing.T) {
	res := Forecast(monthlySeries(12, 19, 33, 38, 52, 57, 71, 68), HoltSmoother{})
	if res == nil || len(res.Points) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	w1 := res.Points[0].Upper - res.Points[0].Lower
	w3 := res.Points[2].Upper - res.Points[2].Lower
	if w3 <= w1 {
		t.Errorf("interval should widen with horizon: w1=%v w3=%v", w1, w3)
	}
	// Half-width at step i is residual-std × √i × 1.96.
	wantW3 := w1 * math.Sqrt(3)
	if math.Abs(w3-wantW3) > 1e-9 {
		t.Errorf("w3 = %v, want %v (√3 scaling)", w3, wantW3)
	}
}

func TestForecastTooShort(t *testing.T) {
	if res := Forecast(monthlySeries(1, 2, 3, 4, 5), HoltSmoother{}); res != nil {
		t.Errorf("expected nil for 5-point series, got %+v", res)
	}
}

func TestForecastUnavailableWithoutSmoother(t *testing.T) {
	res := Forecast(monthlySeries(1, 2, 3, 4, 5, 6), nil)
	if res == nil || !res.Unavailable {
		t.Fatalf("expected unavailable result, got %+v", res)
	}
	if len(res.Points) != 0 {
		t.Errorf("unavailable result must carry no points: %+v", res.Points)
	}
}

func TestForecastFitFailureCaptured(t *testing.T) {
	res := Forecast(monthlySeries(1, 2, math.NaN(), 4, 5, 6), HoltSmoother{})
	if res == nil {
		t.Fatal("expected result")
	}
	if res.Error == "" {
		t.Fatalf("expected captured fit error, got %+v", res)
	}
	if len(res.Error) > 203 {
		t.Errorf("error summary not bounded: %d chars", len(res.Error))
	}
}

func TestHoltSmootherRejectsShortInput(t *testing.T) {
	if _, err := (HoltSmoother{}).Fit([]float64{1}); err == nil {
		t.Error("expected error for single-point fit")
	}
}
