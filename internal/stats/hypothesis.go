package stats

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// minTestPoints is the shortest series hypothesis tests run on.
const minTestPoints = 6

// significanceLevel is the p-value threshold shared by all tests.
const significanceLevel = 0.05

// TestFinding is one hypothesis-test outcome.
type TestFinding struct {
	Name        string  `json:"name"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	Detail      string  `json:"detail"`
}

// TestsResult aggregates the independent best-effort hypothesis tests.
// Individual tests that fail are omitted; if none succeed the whole
// result is absent.
type TestsResult struct {
	Summary          string       `json:"summary"`
	SignificantCount int          `json:"significant_count"`
	MeanShift        *TestFinding `json:"mean_shift,omitempty"`
	Stationarity     *TestFinding `json:"stationarity,omitempty"`
	Variance         *TestFinding `json:"variance,omitempty"`
}

// HypothesisTests runs the midpoint t-test, the augmented unit-root
// test, and the quartile ANOVA over the series.
func HypothesisTests(series Series) *TestsResult {
	if len(series) < minTestPoints {
		return nil
	}
	values := series.Values()

	res := &TestsResult{
		MeanShift:    meanShiftTest(values),
		Stationarity: stationarityTest(values),
		Variance:     quartileANOVA(values),
	}
	if res.MeanShift == nil && res.Stationarity == nil && res.Variance == nil {
		return nil
	}

	var significant []string
	for _, f := range []*TestFinding{res.MeanShift, res.Stationarity, res.Variance} {
		if f != nil && f.Significant {
			res.SignificantCount++
			significant = append(significant, f.Detail)
		}
	}

	switch {
	case res.SignificantCount == 0:
		res.Summary = "No statistically significant findings"
	default:
		echoed := significant
		if len(echoed) > 2 {
			echoed = echoed[:2]
		}
		res.Summary = fmt.Sprintf("%d significant finding(s): %s",
			res.SignificantCount, strings.Join(echoed, "; "))
	}
	return res
}

// meanShiftTest splits the series at its midpoint and runs Welch's
// two-sample t-test on the halves. Returns nil when the test is
// undefined (e.g. zero variance in both halves).
func meanShiftTest(values []float64) *TestFinding {
	mid := len(values) / 2
	a, b := values[:mid], values[mid:]
	if len(a) < 2 || len(b) < 2 {
		return nil
	}

	ma, va := meanVar(a)
	mb, vb := meanVar(b)

	sa := va / float64(len(a))
	sb := vb / float64(len(b))
	if sa+sb == 0 {
		return nil
	}

	t := (mb - ma) / math.Sqrt(sa+sb)

	// Welch-Satterthwaite degrees of freedom.
	num := (sa + sb) * (sa + sb)
	den := sa*sa/float64(len(a)-1) + sb*sb/float64(len(b)-1)
	if den == 0 {
		return nil
	}
	df := num / den

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))

	f := &TestFinding{
		Name:        "mean_shift",
		Statistic:   t,
		PValue:      p,
		Significant: p < significanceLevel,
	}
	if f.Significant {
		f.Detail = fmt.Sprintf("Mean shifted between halves (t=%+.2f, p=%.3f)", t, p)
	} else {
		f.Detail = fmt.Sprintf("No mean shift between halves (p=%.3f)", p)
	}
	return f
}

// quartileANOVA splits the index range into four equal-frequency bins
// and runs one-way analysis of variance across non-empty bins. Fewer
// than two non-empty bins, or no within-bin variance, yields nil.
func quartileANOVA(values []float64) *TestFinding {
	n := len(values)
	var bins [][]float64
	for q := 0; q < 4; q++ {
		lo, hi := q*n/4, (q+1)*n/4
		if hi > lo {
			bins = append(bins, values[lo:hi])
		}
	}
	if len(bins) < 2 {
		return nil
	}

	grand, _ := meanVar(values)
	k := len(bins)

	var ssb, ssw float64
	used := 0
	for _, bin := range bins {
		m, _ := meanVar(bin)
		ssb += float64(len(bin)) * (m - grand) * (m - grand)
		for _, v := range bin {
			ssw += (v - m) * (v - m)
		}
		used += len(bin)
	}

	d1 := float64(k - 1)
	d2 := float64(used - k)
	if d2 <= 0 || ssw == 0 {
		return nil
	}

	fStat := (ssb / d1) / (ssw / d2)
	dist := distuv.F{D1: d1, D2: d2}
	p := 1 - dist.CDF(fStat)

	f := &TestFinding{
		Name:        "quartile_variance",
		Statistic:   fStat,
		PValue:      p,
		Significant: p < significanceLevel,
	}
	if f.Significant {
		f.Detail = fmt.Sprintf("Quarter means differ (F=%.2f, p=%.3f)", fStat, p)
	} else {
		f.Detail = fmt.Sprintf("Quarter means are consistent (p=%.3f)", p)
	}
	return f
}

func meanVar(values []float64) (mean, variance float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n
	if len(values) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return mean, ss / (n - 1)
}
