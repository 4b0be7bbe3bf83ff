package stats

import (
	"strings"
	"testing"
)

func TestHypothesisTestsMeanShift(t *testing.T) {
	res := HypothesisTests(monthlySeries(10, 20, 30, 40, 50, 60))
	if res == nil {
		t.Fatal("expected tests result")
	}
	if res.MeanShift == nil {
		t.Fatal("expected mean-shift finding")
	}
	if !res.MeanShift.Significant {
		t.Errorf("mean shift should be significant: %+v", res.MeanShift)
	}
	if res.SignificantCount < 1 {
		t.Errorf("significant count = %d, want >= 1", res.SignificantCount)
	}
	if !strings.Contains(res.Summary, "significant finding") {
		t.Errorf("summary = %q, want significant findings echoed", res.Summary)
	}
}

func TestHypothesisTestsTooShort(t *testing.T) {
	if res := HypothesisTests(monthlySeries(1, 2, 3, 4, 5)); res != nil {
		t.Errorf("expected nil for 5-point series, got %+v", res)
	}
}

func TestHypothesisTestsConstantSeriesAbsent(t *testing.T) {
	// Zero variance everywhere: every individual test is undefined and
	// silently omitted, so the whole result is absent.
	if res := HypothesisTests(monthlySeries(5, 5, 5, 5, 5, 5)); res != nil {
		t.Errorf("expected nil for constant series, got %+v", res)
	}
}

func TestQuartileANOVAFewBins(t *testing.T) {
	// A single value produces one non-empty bin: the sub-result is
	// absent, no failure raised.
	if f := quartileANOVA([]float64{5}); f != nil {
		t.Errorf("expected nil for <2 non-empty bins, got %+v", f)
	}
}

func TestQuartileANOVADetectsLevelChange(t *testing.T) {
	// Two quiet quarters then two loud ones, with within-bin noise.
	values := []float64{10, 11, 9, 10, 10, 11, 50, 51, 49, 50, 50, 51}
	f := quartileANOVA(values)
	if f == nil {
		t.Fatal("expected ANOVA finding")
	}
	if !f.Significant {
		t.Errorf("expected significant quarter difference: %+v", f)
	}
}

func TestMeanShiftTestStableSeries(t *testing.T) {
	f := meanShiftTest([]float64{10, 11, 9, 10, 11, 10, 9, 11})
	if f == nil {
		t.Fatal("expected finding")
	}
	if f.Significant {
		t.Errorf("stable series should not show a mean shift: %+v", f)
	}
}

func TestStationarityTestMeanReverting(t *testing.T) {
	// Strongly mean-reverting oscillation around 10.
	values := []float64{10, 14, 7, 13, 8, 12, 9, 13, 7, 12, 8, 13, 9, 12, 8, 11, 9, 13, 7, 12}
	f := stationarityTest(values)
	if f == nil {
		t.Fatal("expected ADF finding")
	}
	if !f.Significant {
		t.Errorf("oscillating series should test stationary: tau=%v p=%v", f.Statistic, f.PValue)
	}
}

func TestStationarityTestDegenerateOmitted(t *testing.T) {
	// Perfectly linear series: zero residual variance makes the test
	// statistic undefined, so the finding is silently omitted.
	if f := stationarityTest([]float64{10, 20, 30, 40, 50, 60}); f != nil {
		t.Errorf("expected nil for degenerate regression, got %+v", f)
	}
}
