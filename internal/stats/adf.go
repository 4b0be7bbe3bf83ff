package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// stationarityTest runs an augmented Dickey-Fuller unit-root test
// (constant, no trend) on the full series. The series is "stationary"
// when the unit-root null is rejected at the 5% level. Returns nil
// when the regression is degenerate.
func stationarityTest(values []float64) *TestFinding {
	tau, ok := adfStatistic(values)
	if !ok {
		return nil
	}
	p := mackinnonP(tau)

	f := &TestFinding{
		Name:        "stationarity",
		Statistic:   tau,
		PValue:      p,
		Significant: p < significanceLevel,
	}
	if f.Significant {
		f.Detail = fmt.Sprintf("Series is stationary (ADF tau=%.2f, p=%.3f)", tau, p)
	} else {
		f.Detail = fmt.Sprintf("No evidence of stationarity (ADF p=%.3f)", p)
	}
	return f
}

// adfStatistic fits Δy_t = c + γ·y_{t-1} + Σ φ_i·Δy_{t-i} + ε and
// returns the t-statistic of γ. Lag order follows the cube-root rule,
// capped so the regression keeps residual degrees of freedom.
func adfStatistic(values []float64) (float64, bool) {
	n := len(values)
	if n < minTestPoints {
		return 0, false
	}

	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = values[i] - values[i-1]
	}

	lag := int(math.Cbrt(float64(n - 1)))
	if maxLag := (n - 5) / 2; lag > maxLag {
		lag = maxLag
	}
	if lag < 0 {
		lag = 0
	}

	// One row per usable observation: depvar Δy_t, regressors
	// [1, y_{t-1}, Δy_{t-1}, ..., Δy_{t-lag}].
	m := len(diffs) - lag
	k := lag + 2
	if m <= k {
		return 0, false
	}

	X := mat.NewDense(m, k, nil)
	y := mat.NewVecDense(m, nil)
	for row := 0; row < m; row++ {
		t := row + lag // index into diffs
		y.SetVec(row, diffs[t])
		X.Set(row, 0, 1)
		X.Set(row, 1, values[t]) // level lag: y_{t-1} for Δy_t = y_{t+1}-y_t offset
		for j := 1; j <= lag; j++ {
			X.Set(row, 1+j, diffs[t-j])
		}
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return 0, false
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), y)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)

	var sse float64
	for i := 0; i < m; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		sse += r * r
	}
	s2 := sse / float64(m-k)

	seGamma := math.Sqrt(s2 * xtxInv.At(1, 1))
	if seGamma == 0 || math.IsNaN(seGamma) {
		return 0, false
	}
	return beta.AtVec(1) / seGamma, true
}

// MacKinnon (1994) approximate asymptotic p-value for the ADF tau
// statistic, constant-only regression, one I(1) variable.
var (
	tauMaxC    = 2.74
	tauMinC    = -18.83
	tauStarC   = -1.61
	tauSmallPC = []float64{2.1659, 1.4412, 0.038269}
	tauLargePC = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

func mackinnonP(tau float64) float64 {
	switch {
	case tau > tauMaxC:
		return 1.0
	case tau < tauMinC:
		return 0.0
	}
	coeffs := tauLargePC
	if tau <= tauStarC {
		coeffs = tauSmallPC
	}
	var z, pow float64
	pow = 1
	for _, c := range coeffs {
		z += c * pow
		pow *= tau
	}
	return distuv.UnitNormal.CDF(z)
}
