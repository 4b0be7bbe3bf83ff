package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// minAnomalyPoints is the smallest series a z-score scan runs on.
const minAnomalyPoints = 4

// zThreshold flags observations at least two standard deviations out.
const zThreshold = 2.0

// Anomaly is one flagged observation.
type Anomaly struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
}

// AnomalyResult lists flagged observations, strongest first in Top.
type AnomalyResult struct {
	Summary   string    `json:"summary"`
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	Anomalies []Anomaly `json:"anomalies"`
	Top       []Anomaly `json:"top"`
}

// Anomalies standardizes the series and flags |z| >= 2 observations.
// A near-constant series (std ≈ 0) yields no anomalies rather than an
// error, as does a series with nothing flagged.
func Anomalies(series Series) *AnomalyResult {
	n := len(series)
	if n < minAnomalyPoints {
		return nil
	}

	values := series.Values()
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / float64(n))
	if std < 1e-12 {
		return nil
	}

	var anomalies []Anomaly
	for i, v := range values {
		z := (v - mean) / std
		if math.Abs(z) >= zThreshold {
			anomalies = append(anomalies, Anomaly{
				Period: series[i].Period.Format("2006-01"),
				Value:  v,
				ZScore: z,
			})
		}
	}
	if len(anomalies) == 0 {
		return nil
	}

	top := make([]Anomaly, len(anomalies))
	copy(top, anomalies)
	sort.Slice(top, func(i, j int) bool {
		return math.Abs(top[i].ZScore) > math.Abs(top[j].ZScore)
	})
	if len(top) > 3 {
		top = top[:3]
	}

	labels := make([]string, len(top))
	for i, a := range top {
		labels[i] = fmt.Sprintf("%s (z=%+.1f)", a.Period, a.ZScore)
	}

	return &AnomalyResult{
		Summary:   "Anomalies detected at " + strings.Join(labels, ", "),
		Mean:      mean,
		Std:       std,
		Anomalies: anomalies,
		Top:       top,
	}
}
