package stats

import (
	"log/slog"

	"github.com/insightpilot/insightpilot/internal/table"
)

// Analysis bundles the four analyses. Absent fields mean the series
// was too short, undetectable, or degenerate. These are expected
// outcomes, not errors.
type Analysis struct {
	Trend    *TrendResult    `json:"trend,omitempty"`
	Anomaly  *AnomalyResult  `json:"anomaly,omitempty"`
	Forecast *ForecastResult `json:"forecast,omitempty"`
	Tests    *TestsResult    `json:"tests,omitempty"`
}

// Engine derives a time series from row sets and runs all analyses.
type Engine struct {
	smoother Smoother
}

// NewEngine creates an Engine with the default Holt smoothing backend.
func NewEngine() *Engine {
	return &Engine{smoother: HoltSmoother{}}
}

// NewEngineWithSmoother allows substituting (or removing) the
// forecasting backend; a nil smoother makes forecasts report
// unavailable.
func NewEngineWithSmoother(s Smoother) *Engine {
	return &Engine{smoother: s}
}

// Analyze derives the monthly series and computes trend, anomaly,
// forecast, and hypothesis-test results over it.
func (e *Engine) Analyze(rows table.Rows) Analysis {
	series := DeriveSeries(rows)
	if series == nil {
		slog.Debug("analytics: no usable time series in result set",
			"columns", rows.Columns, "rows", len(rows.Records))
		return Analysis{}
	}

	return Analysis{
		Trend:    Trend(series),
		Anomaly:  Anomalies(series),
		Forecast: Forecast(series, e.smoother),
		Tests:    HypothesisTests(series),
	}
}
