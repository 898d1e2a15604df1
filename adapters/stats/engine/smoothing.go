package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"tabkit/domain/analysis"
)

// Smooth denoises y over the sliced series. Savitzky-Golay auto-corrects an
// even or too-small window (incrementing and clamping, never failing); rolling
// mean is a centered window average with back/forward filled edges; lowess is
// a tricube-weighted local linear regression that silently falls back to
// rolling mean when its window degenerates.
func (e *Engine) Smooth(x, y []float64, method analysis.SmoothingMethod, params analysis.Parameters) (*analysis.Result, error) {
	xs, ys, err := sliceSeries(x, y, params, 1)
	if err != nil {
		return nil, err
	}

	var smoothed []float64
	effective := string(method)

	switch method {
	case analysis.SmoothingSavGol:
		window, order := correctSavGolWindow(params.WindowLength, params.PolynomialOrder, len(ys))
		smoothed = savgolSmooth(ys, window, order)
	case analysis.SmoothingRollingMean:
		smoothed = rollingMeanSmooth(ys, defaultWindow(params.WindowLength, len(ys)))
	case analysis.SmoothingLowess:
		frac := params.LowessFraction
		if frac <= 0 || frac > 1 {
			frac = 0.3
		}
		r := int(math.Ceil(frac * float64(len(ys))))
		if r < 2 || len(ys) < 3 {
			// Local regression is not meaningful here; quietly degrade.
			smoothed = rollingMeanSmooth(ys, defaultWindow(params.WindowLength, len(ys)))
			effective = string(analysis.SmoothingRollingMean)
		} else {
			smoothed = lowessSmooth(xs, ys, r)
		}
	}

	origStd, _ := stats.StandardDeviation(ys)
	smoothStd, _ := stats.StandardDeviation(smoothed)

	noiseReduction := 0.0
	if origStd != 0 {
		noiseReduction = (origStd - smoothStd) / origStd * 100
	}

	correlation := 1.0
	if len(ys) > 1 {
		correlation = stat.Correlation(ys, smoothed, nil)
	}

	statistics := map[string]float64{
		"original_std":            origStd,
		"smoothed_std":            smoothStd,
		"noise_reduction_percent": noiseReduction,
		"correlation":             correlation,
	}
	metadata := map[string]any{"method": effective}

	return newResult(analysis.TypeSmoothing, xs, ys, smoothed, params, statistics, metadata), nil
}

// correctSavGolWindow enforces: window odd, window >= order+1, window <= n.
// Violations are repaired rather than reported.
func correctSavGolWindow(window, order, n int) (int, int) {
	if order < 1 {
		order = 2
	}
	if window < order+1 {
		window = order + 1
	}
	if window%2 == 0 {
		window++
	}
	if window > n {
		window = n
		if window%2 == 0 {
			window--
		}
		if window < 1 {
			window = 1
		}
		if order >= window {
			order = window - 1
		}
	}
	return window, order
}

// savgolSmooth fits a degree-order polynomial over a sliding window and
// evaluates it at each point. Near the boundaries the window shifts inward
// so every point is smoothed over a full-width window.
func savgolSmooth(y []float64, window, order int) []float64 {
	n := len(y)
	out := make([]float64, n)
	if window <= 1 || order < 1 {
		copy(out, y)
		return out
	}

	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	b := mat.NewVecDense(window, nil)

	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		if lo+window > n {
			lo = n - window
		}

		for r := 0; r < window; r++ {
			t := float64(lo + r - i)
			pw := 1.0
			for c := 0; c <= order; c++ {
				a.Set(r, c, pw)
				pw *= t
			}
			b.SetVec(r, y[lo+r])
		}

		var qr mat.QR
		qr.Factorize(a)
		var coef mat.VecDense
		if err := qr.SolveVecTo(&coef, false, b); err != nil {
			out[i] = y[i]
			continue
		}
		// The constant term is the fitted value at the evaluation point.
		out[i] = coef.AtVec(0)
	}
	return out
}

// rollingMeanSmooth averages over a centered window; positions where the
// window would run past either end are back/forward filled from the nearest
// fully covered position, so the output carries no NaN.
func rollingMeanSmooth(y []float64, window int) []float64 {
	n := len(y)
	out := make([]float64, n)
	if window <= 1 || window > n {
		copy(out, y)
		return out
	}

	half := window / 2
	tail := window - 1 - half
	firstValid, lastValid := -1, -1

	for i := 0; i < n; i++ {
		if i-half < 0 || i+tail >= n {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - half; j <= i+tail; j++ {
			sum += y[j]
		}
		out[i] = sum / float64(window)
		if firstValid == -1 {
			firstValid = i
		}
		lastValid = i
	}

	if firstValid == -1 {
		copy(out, y)
		return out
	}
	for i := 0; i < firstValid; i++ {
		out[i] = out[firstValid]
	}
	for i := lastValid + 1; i < n; i++ {
		out[i] = out[lastValid]
	}
	return out
}

// lowessSmooth runs a tricube-weighted linear regression over the r nearest
// neighbours of each point. The r-th neighbour sits on the tricube cutoff
// with weight zero, so tied distances can leave fewer than two points in the
// fit; the neighbourhood widens past the tie until the regression has at
// least two points, falling back to the local mean when it never does.
func lowessSmooth(x, y []float64, r int) []float64 {
	n := len(x)
	if r > n {
		r = n
	}
	out := make([]float64, n)
	dist := make([]float64, n)
	weights := make([]float64, n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dist[j] = math.Abs(x[j] - x[i])
		}
		sorted := append([]float64(nil), dist...)
		sort.Float64s(sorted)
		dmax := sorted[r-1]

		if dmax == 0 {
			// All neighbours coincide on x; the local fit collapses to a mean.
			sum, count := 0.0, 0
			for j := 0; j < n; j++ {
				if dist[j] == 0 {
					sum += y[j]
					count++
				}
			}
			out[i] = sum / float64(count)
			continue
		}

		count := tricubeWeights(dist, dmax, weights)
		for count < 2 {
			next := math.Inf(1)
			for j := 0; j < n; j++ {
				if dist[j] > dmax && dist[j] < next {
					next = dist[j]
				}
			}
			if math.IsInf(next, 1) {
				break
			}
			dmax = next
			count = tricubeWeights(dist, dmax, weights)
		}
		if count < 2 {
			sum, m := 0.0, 0
			for j := 0; j < n; j++ {
				if dist[j] <= dmax {
					sum += y[j]
					m++
				}
			}
			out[i] = sum / float64(m)
			continue
		}

		alpha, beta := stat.LinearRegression(x, y, weights, false)
		out[i] = alpha + beta*x[i]
	}
	return out
}

// tricubeWeights fills w with tricube weights for dist against the cutoff
// dmax and reports how many came out nonzero.
func tricubeWeights(dist []float64, dmax float64, w []float64) int {
	count := 0
	for j, d := range dist {
		d /= dmax
		if d >= 1 {
			w[j] = 0
			continue
		}
		t := 1 - d*d*d
		w[j] = t * t * t
		count++
	}
	return count
}

// defaultWindow derives a usable rolling window from the requested length
func defaultWindow(window, n int) int {
	if window < 2 {
		window = 5
	}
	if window > n {
		window = n
	}
	return window
}
