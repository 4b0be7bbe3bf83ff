package stats

import (
	"math"
	"testing"
)

func TestTrendPerfectLine(t *testing.T) {
	// Six equally spaced months climbing by 10.
	res := Trend(monthlySeries(10, 20, 30, 40, 50, 60))
	if res == nil {
		t.Fatal("expected trend result")
	}
	if math.Abs(res.Slope-10) > 1e-9 {
		t.Errorf("slope = %v, want 10", res.Slope)
	}
	if res.Direction != "upward" {
		t.Errorf("direction = %q, want upward", res.Direction)
	}
	if math.Abs(res.RSquared-1.0) > 1e-9 {
		t.Errorf("r² = %v, want 1.0", res.RSquared)
	}
	if res.ChangePct == nil || math.Abs(*res.ChangePct-500) > 1e-9 {
		t.Errorf("change_pct = %v, want 500", res.ChangePct)
	}
	// A perfect fit has zero residual error, so the slope CI collapses.
	if math.Abs(res.SlopeCIHigh-res.SlopeCILow) > 1e-9 {
		t.Errorf("slope CI = [%v, %v], want zero width", res.SlopeCILow, res.SlopeCIHigh)
	}
}

func TestTrendDownward(t *testing.T) {
	res := Trend(monthlySeries(60, 50, 40, 30, 20, 10))
	if res == nil {
		t.Fatal("expected trend result")
	}
	if res.Direction != "downward" {
		t.Errorf("direction = %q, want downward", res.Direction)
	}
	if res.ChangePct == nil || math.Abs(*res.ChangePct+83.333333) > 1e-3 {
		t.Errorf("change_pct = %v, want about -83.3", res.ChangePct)
	}
}

func TestTrendFlat(t *testing.T) {
	res := Trend(monthlySeries(100, 101, 100, 99, 100))
	if res == nil {
		t.Fatal("expected trend result")
	}
	if res.Direction != "flat" {
		t.Errorf("direction = %q, want flat", res.Direction)
	}
}

func TestTrendTooShort(t *testing.T) {
	if res := Trend(monthlySeries(1, 2)); res != nil {
		t.Errorf("expected nil for 2-point series, got %+v", res)
	}
}

func TestTrendZeroStartOmitsChangePct(t *testing.T) {
	res := Trend(monthlySeries(0, 10, 20, 30))
	if res == nil {
		t.Fatal("expected trend result")
	}
	if res.ChangePct != nil {
		t.Errorf("change_pct = %v, want nil for zero start", *res.ChangePct)
	}
}

func TestTrendPredictionIntervalsWidenFromCenter(t *testing.T) {
	res := Trend(monthlySeries(10, 22, 29, 41, 52, 58))
	if res == nil {
		t.Fatal("expected trend result")
	}
	first := res.Points[0].Upper - res.Points[0].Lower
	mid := res.Points[3].Upper - res.Points[3].Lower
	last := res.Points[5].Upper - res.Points[5].Lower
	if first <= mid || last <= mid {
		t.Errorf("intervals should widen away from the mean index: first=%v mid=%v last=%v", first, mid, last)
	}
}
