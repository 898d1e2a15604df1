package engine

import (
	"tabkit/domain/analysis"
)

// Derivative computes dy/dx over the sliced series. Central uses a three-point
// estimator valid for unevenly spaced x (one-sided first-order at the two
// boundary points). Forward and backward compute pairwise differences over the
// n-1 intervals and pad back to length n by duplicating the last (forward) or
// first (backward) computed value; the padding is the documented boundary
// policy, not an error.
func (e *Engine) Derivative(x, y []float64, method analysis.DerivativeMethod, params analysis.Parameters) (*analysis.Result, error) {
	xs, ys, err := sliceSeries(x, y, params, 2)
	if err != nil {
		return nil, err
	}

	n := len(xs)
	deriv := make([]float64, n)

	switch method {
	case analysis.DerivativeCentral:
		deriv[0] = (ys[1] - ys[0]) / (xs[1] - xs[0])
		deriv[n-1] = (ys[n-1] - ys[n-2]) / (xs[n-1] - xs[n-2])
		for i := 1; i < n-1; i++ {
			hd := xs[i] - xs[i-1]
			hs := xs[i+1] - xs[i]
			// Weighted three-point formula, exact for quadratics on uneven grids.
			deriv[i] = (hd*hd*ys[i+1] + (hs*hs-hd*hd)*ys[i] - hs*hs*ys[i-1]) /
				(hs * hd * (hd + hs))
		}
	case analysis.DerivativeForward:
		for i := 0; i < n-1; i++ {
			deriv[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
		}
		deriv[n-1] = deriv[n-2]
	case analysis.DerivativeBackward:
		for i := 1; i < n; i++ {
			deriv[i] = (ys[i] - ys[i-1]) / (xs[i] - xs[i-1])
		}
		deriv[0] = deriv[1]
	}

	statistics := summaryStats(deriv)
	metadata := map[string]any{"method": string(method)}

	return newResult(analysis.TypeDerivative, xs, ys, deriv, params, statistics, metadata), nil
}
