package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// minTrendPoints is the smallest series a regression is attempted on.
const minTrendPoints = 3

// TrendPoint carries one observation with its fitted value and 95%
// prediction interval.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Fitted float64 `json:"fitted"`
	Lower  float64 `json:"pi_lower"`
	Upper  float64 `json:"pi_upper"`
}

// TrendResult is the ordinary least-squares trend analysis of the series.
type TrendResult struct {
	Summary     string      `json:"summary"`
	Direction   string      `json:"direction"`
	Slope       float64     `json:"slope"`
	Intercept   float64     `json:"intercept"`
	SlopeCILow  float64     `json:"slope_ci_low"`
	SlopeCIHigh float64     `json:"slope_ci_high"`
	ResidualStd float64     `json:"residual_std"`
	RSquared    float64     `json:"r_squared"`
	Start       float64     `json:"start"`
	End         float64     `json:"end"`
	ChangePct   *float64    `json:"change_pct,omitempty"`
	Points      []TrendPoint `json:"points"`
}

// Trend regresses value on sequential index and reports slope with a
// 95% confidence interval, R², and per-point prediction intervals.
// Returns nil for series shorter than three points.
func Trend(series Series) *TrendResult {
	n := len(series)
	if n < minTrendPoints {
		return nil
	}

	y := series.Values()
	var sumX, sumY float64
	for i, v := range y {
		sumX += float64(i)
		sumY += v
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy, sst float64
	for i, v := range y {
		dx := float64(i) - meanX
		sxx += dx * dx
		sxy += dx * (v - meanY)
		sst += (v - meanY) * (v - meanY)
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var sse float64
	fitted := make([]float64, n)
	for i, v := range y {
		fitted[i] = intercept + slope*float64(i)
		r := v - fitted[i]
		sse += r * r
	}

	dof := float64(n - 2)
	residStd := math.Sqrt(sse / dof)

	r2 := 1.0
	if sst > 0 {
		r2 = 1.0 - sse/sst
	}

	// 95% two-sided Student-t critical value at n-2 degrees of freedom.
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	tCrit := tDist.Quantile(0.975)

	slopeSE := residStd / math.Sqrt(sxx)

	points := make([]TrendPoint, n)
	for i, p := range series {
		// Prediction interval widens with distance from the mean index.
		se := residStd * math.Sqrt(1+1/float64(n)+math.Pow(float64(i)-meanX, 2)/sxx)
		points[i] = TrendPoint{
			Period: p.Period.Format("2006-01"),
			Value:  p.Value,
			Fitted: fitted[i],
			Lower:  fitted[i] - tCrit*se,
			Upper:  fitted[i] + tCrit*se,
		}
	}

	direction := "flat"
	switch {
	case slope > 0.02*meanY:
		direction = "upward"
	case slope < -0.02*meanY:
		direction = "downward"
	}

	start, end := y[0], y[n-1]
	var changePct *float64
	if start != 0 {
		pct := (end - start) / math.Abs(start) * 100
		changePct = &pct
	}

	summary := "Minimal trend detected"
	if direction != "flat" {
		summary = fmt.Sprintf("%s%s trend detected", strings.ToUpper(direction[:1]), direction[1:])
	}
	if changePct != nil {
		summary += fmt.Sprintf(" (%+.1f%% over period)", *changePct)
	}

	return &TrendResult{
		Summary:     summary,
		Direction:   direction,
		Slope:       slope,
		Intercept:   intercept,
		SlopeCILow:  slope - tCrit*slopeSE,
		SlopeCIHigh: slope + tCrit*slopeSE,
		ResidualStd: residStd,
		RSquared:    r2,
		Start:       start,
		End:         end,
		ChangePct:   changePct,
		Points:      points,
	}
}
