package engine

import (
	"math"

	"tabkit/domain/analysis"
)

// Integral computes the cumulative trapezoidal integral of y over x, seeded
// at 0. Statistics report the scalar whole-slice trapezoid, the final
// cumulative value and the mean rate total/(xEnd-xStart).
func (e *Engine) Integral(x, y []float64, params analysis.Parameters) (*analysis.Result, error) {
	xs, ys, err := sliceSeries(x, y, params, 1)
	if err != nil {
		return nil, err
	}

	n := len(xs)
	cumulative := make([]float64, n)
	for i := 1; i < n; i++ {
		cumulative[i] = cumulative[i-1] + (ys[i]+ys[i-1])/2*(xs[i]-xs[i-1])
	}

	total := cumulative[n-1]
	meanRate := 0.0
	if n >= 2 && xs[n-1] != xs[0] {
		meanRate = total / (xs[n-1] - xs[0])
	}

	statistics := map[string]float64{
		"total_integral":   total,
		"final_cumulative": cumulative[n-1],
		"mean_rate":        meanRate,
	}

	return newResult(analysis.TypeIntegral, xs, ys, cumulative, params, statistics, nil), nil
}

// ArcLength computes the cumulative Euclidean curve length sqrt(dx^2+dy^2),
// seeded at 0 for the first point. All statistics are 0 for a single-point
// slice.
func (e *Engine) ArcLength(x, y []float64, params analysis.Parameters) (*analysis.Result, error) {
	xs, ys, err := sliceSeries(x, y, params, 1)
	if err != nil {
		return nil, err
	}

	n := len(xs)
	cumulative := make([]float64, n)
	maxSegment := 0.0
	for i := 1; i < n; i++ {
		dx := xs[i] - xs[i-1]
		dy := ys[i] - ys[i-1]
		segment := math.Hypot(dx, dy)
		cumulative[i] = cumulative[i-1] + segment
		if segment > maxSegment {
			maxSegment = segment
		}
	}

	total := cumulative[n-1]
	meanSegment := 0.0
	if n >= 2 {
		meanSegment = total / float64(n-1)
	}

	statistics := map[string]float64{
		"total_length": total,
		"mean_segment": meanSegment,
		"max_segment":  maxSegment,
	}

	return newResult(analysis.TypeArcLength, xs, ys, cumulative, params, statistics, nil), nil
}
