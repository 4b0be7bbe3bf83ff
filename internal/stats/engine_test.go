package stats

import (
	"testing"
	"time"

	"github.com/insightpilot/insightpilot/internal/table"
)

func TestEngineAnalyzeInsufficientData(t *testing.T) {
	e := NewEngine()
	a := e.Analyze(table.Rows{
		Columns: []string{"region", "name"},
		Records: []map[string]any{{"region": "North", "name": "Lamp"}},
	})
	if a.Trend != nil || a.Anomaly != nil || a.Forecast != nil || a.Tests != nil {
		t.Errorf("expected empty analysis without a usable series, got %+v", a)
	}
}

func TestEngineAnalyzeFullSeries(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	var recs []map[string]any
	for i, v := range []float64{10, 20, 30, 40, 50, 60} {
		recs = append(recs, map[string]any{
			"date":   start.AddDate(0, i, 0).Format("2006-01-02"),
			"amount": v,
		})
	}

	a := NewEngine().Analyze(table.Rows{Columns: []string{"date", "amount"}, Records: recs})
	if a.Trend == nil {
		t.Error("expected trend result")
	}
	if a.Forecast == nil || a.Forecast.Unavailable {
		t.Errorf("expected forecast result, got %+v", a.Forecast)
	}
	if a.Tests == nil {
		t.Error("expected hypothesis tests result")
	}
	// Nothing in a clean ramp crosses the anomaly threshold.
	if a.Anomaly != nil {
		t.Errorf("expected no anomalies, got %+v", a.Anomaly)
	}
}

func TestEngineWithoutSmoother(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	var recs []map[string]any
	for i, v := range []float64{5, 7, 6, 8, 7, 9} {
		recs = append(recs, map[string]any{
			"date":   start.AddDate(0, i, 0).Format("2006-01-02"),
			"amount": v,
		})
	}

	a := NewEngineWithSmoother(nil).Analyze(table.Rows{Columns: []string{"date", "amount"}, Records: recs})
	if a.Forecast == nil || !a.Forecast.Unavailable {
		t.Errorf("expected unavailable forecast, got %+v", a.Forecast)
	}
}
