package stats

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

const (
	// minForecastPoints is the shortest series worth extrapolating.
	minForecastPoints = 6
	// defaultHorizon is how many future periods are forecast.
	defaultHorizon = 3
)

// ForecastPoint is one projected observation with its 95% prediction interval.
type ForecastPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Lower  float64 `json:"pi_lower"`
	Upper  float64 `json:"pi_upper"`
}

// ForecastResult is the exponential-smoothing projection of the series.
// Unavailable is set when no smoothing backend is wired; Error carries
// a bounded fit-failure summary. Both are expected outcomes, never
// pipeline errors.
type ForecastResult struct {
	Summary     string          `json:"summary"`
	Points      []ForecastPoint `json:"points,omitempty"`
	Alpha       float64         `json:"alpha,omitempty"`
	Beta        float64         `json:"beta,omitempty"`
	ResidualStd float64         `json:"residual_std,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// SmoothFit is a fitted additive-trend exponential smoothing model.
type SmoothFit struct {
	Level       float64
	Trend       float64
	Alpha       float64
	Beta        float64
	ResidualStd float64
}

// Smoother fits an additive-trend exponential smoothing model to a series.
type Smoother interface {
	Fit(values []float64) (SmoothFit, error)
}

// Forecast projects the series defaultHorizon periods ahead at its
// inferred cadence. A nil smoother yields an "unavailable" result; a
// fit failure yields a bounded error summary.
func Forecast(series Series, smoother Smoother) *ForecastResult {
	if len(series) < minForecastPoints {
		return nil
	}
	if smoother == nil {
		return &ForecastResult{
			Summary:     "Forecasting unavailable: no smoothing backend configured",
			Unavailable: true,
		}
	}

	fit, err := smoother.Fit(series.Values())
	if err != nil {
		msg := err.Error()
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return &ForecastResult{
			Summary: "Forecast fit failed",
			Error:   msg,
		}
	}

	step := inferCadence(series)
	last := series[len(series)-1].Period

	points := make([]ForecastPoint, defaultHorizon)
	for i := 1; i <= defaultHorizon; i++ {
		value := fit.Level + float64(i)*fit.Trend
		// Interval widens with the square root of the horizon step.
		half := fit.ResidualStd * math.Sqrt(float64(i)) * 1.96
		points[i-1] = ForecastPoint{
			Period: step(last, i).Format("2006-01"),
			Value:  value,
			Lower:  value - half,
			Upper:  value + half,
		}
	}

	return &ForecastResult{
		Summary: fmt.Sprintf("Forecast for next %d periods: %.1f to %.1f",
			defaultHorizon, points[0].Value, points[len(points)-1].Value),
		Points:      points,
		Alpha:       fit.Alpha,
		Beta:        fit.Beta,
		ResidualStd: fit.ResidualStd,
	}
}

// inferCadence returns a stepping function for future periods. Monthly
// bucketing makes month steps the norm; irregular spacing falls back
// to the median observed gap, and inference failure silently defaults
// to monthly.
func inferCadence(series Series) func(time.Time, int) time.Time {
	monthly := func(t time.Time, i int) time.Time { return t.AddDate(0, i, 0) }
	if len(series) < 2 {
		return monthly
	}

	gaps := make([]time.Duration, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		gaps = append(gaps, series[i].Period.Sub(series[i-1].Period))
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	median := gaps[len(gaps)/2]
	if median <= 0 {
		slog.Debug("cadence inference failed, defaulting to monthly")
		return monthly
	}

	days := median.Hours() / 24
	if days >= 27 && days <= 32 {
		return monthly
	}
	return func(t time.Time, i int) time.Time {
		return t.Add(time.Duration(i) * median)
	}
}

// HoltSmoother implements additive-trend (double) exponential
// smoothing with no seasonality, selecting smoothing parameters by
// grid search over one-step-ahead squared error.
type HoltSmoother struct{}

// Fit runs the Holt recursions for each (alpha, beta) pair in a 0.1
// grid and keeps the best by SSE.
func (HoltSmoother) Fit(values []float64) (SmoothFit, error) {
	if len(values) < 2 {
		return SmoothFit{}, fmt.Errorf("series too short to fit: %d points", len(values))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SmoothFit{}, fmt.Errorf("non-finite value in series")
		}
	}

	best := SmoothFit{}
	bestSSE := math.Inf(1)

	for alpha := 0.1; alpha <= 0.91; alpha += 0.1 {
		for beta := 0.1; beta <= 0.91; beta += 0.1 {
			fit, sse := holtRun(values, alpha, beta)
			if sse < bestSSE {
				bestSSE = sse
				best = fit
			}
		}
	}

	if math.IsInf(bestSSE, 1) {
		return SmoothFit{}, fmt.Errorf("smoothing grid search did not converge")
	}
	return best, nil
}

func holtRun(values []float64, alpha, beta float64) (SmoothFit, float64) {
	level := values[0]
	trend := values[1] - values[0]

	var sse float64
	for t := 1; t < len(values); t++ {
		forecast := level + trend
		resid := values[t] - forecast
		sse += resid * resid

		prevLevel := level
		level = alpha*values[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	m := float64(len(values) - 1)
	return SmoothFit{
		Level:       level,
		Trend:       trend,
		Alpha:       alpha,
		Beta:        beta,
		ResidualStd: math.Sqrt(sse / m),
	}, sse
}
