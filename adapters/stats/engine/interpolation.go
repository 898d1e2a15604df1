package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"tabkit/domain/analysis"
	"tabkit/domain/core"
)

// Interpolate resamples y onto NumPoints uniformly spaced x values spanning
// [min(x), max(x)] (default 2x the slice length). Cubic silently downgrades
// to linear on slices shorter than 4 points, where a cubic spline is
// ill-posed; a spline fit that still fails at runtime also falls back to
// linear.
func (e *Engine) Interpolate(x, y []float64, method analysis.InterpolationMethod, params analysis.Parameters) (*analysis.Result, error) {
	xs, ys, err := sliceSeries(x, y, params, 2)
	if err != nil {
		return nil, err
	}

	// Interpolants require strictly increasing x; sort and drop duplicates.
	gx, gy := sortedUnique(xs, ys)
	if len(gx) < 2 {
		return nil, core.NewInvalidInputError("interpolation needs at least 2 distinct x values")
	}

	numPoints := params.NumPoints
	if numPoints < 2 {
		numPoints = 2 * len(xs)
	}
	newX := floats.Span(make([]float64, numPoints), gx[0], gx[len(gx)-1])

	effective := method
	if method == analysis.InterpolationCubic && len(gx) < 4 {
		effective = analysis.InterpolationLinear
	}

	var newY []float64
	switch effective {
	case analysis.InterpolationLinear:
		newY, err = fitAndPredict(&interp.PiecewiseLinear{}, gx, gy, newX)
	case analysis.InterpolationCubic:
		newY, err = fitAndPredict(&interp.NaturalCubic{}, gx, gy, newX)
		if err != nil {
			newY, err = fitAndPredict(&interp.PiecewiseLinear{}, gx, gy, newX)
			effective = analysis.InterpolationLinear
		}
	case analysis.InterpolationQuadratic:
		newY = quadraticResample(gx, gy, newX)
	case analysis.InterpolationNearest:
		newY = nearestResample(gx, gy, newX)
	}
	if err != nil {
		return nil, core.NewInvalidInputError("interpolation fit failed: " + err.Error())
	}

	xRange := gx[len(gx)-1] - gx[0]
	statistics := map[string]float64{
		"original_points":     float64(len(xs)),
		"interpolated_points": float64(len(newY)),
		"x_range":             xRange,
		"density_ratio":       float64(len(newY)) / float64(len(xs)),
	}
	metadata := map[string]any{
		"method": string(effective),
		"new_x":  newX,
	}

	return newResult(analysis.TypeInterpolation, xs, ys, newY, params, statistics, metadata), nil
}

func fitAndPredict(p interp.FittablePredictor, xs, ys, targets []float64) ([]float64, error) {
	if err := p.Fit(xs, ys); err != nil {
		return nil, err
	}
	out := make([]float64, len(targets))
	for i, t := range targets {
		out[i] = p.Predict(t)
	}
	return out, nil
}

// quadraticResample evaluates a local three-point Lagrange polynomial around
// each target.
func quadraticResample(xs, ys, targets []float64) []float64 {
	n := len(xs)
	out := make([]float64, len(targets))
	for i, t := range targets {
		if n == 2 {
			out[i] = lerp(xs[0], ys[0], xs[1], ys[1], t)
			continue
		}
		k := sort.SearchFloat64s(xs, t)
		if k < 1 {
			k = 1
		}
		if k > n-2 {
			k = n - 2
		}
		x0, x1, x2 := xs[k-1], xs[k], xs[k+1]
		y0, y1, y2 := ys[k-1], ys[k], ys[k+1]
		l0 := (t - x1) * (t - x2) / ((x0 - x1) * (x0 - x2))
		l1 := (t - x0) * (t - x2) / ((x1 - x0) * (x1 - x2))
		l2 := (t - x0) * (t - x1) / ((x2 - x0) * (x2 - x1))
		out[i] = y0*l0 + y1*l1 + y2*l2
	}
	return out
}

// nearestResample picks the sample whose x is closest to each target,
// preferring the lower index on ties.
func nearestResample(xs, ys, targets []float64) []float64 {
	n := len(xs)
	out := make([]float64, len(targets))
	for i, t := range targets {
		k := sort.SearchFloat64s(xs, t)
		switch {
		case k == 0:
			out[i] = ys[0]
		case k >= n:
			out[i] = ys[n-1]
		default:
			if t-xs[k-1] <= xs[k]-t {
				out[i] = ys[k-1]
			} else {
				out[i] = ys[k]
			}
		}
	}
	return out
}

func lerp(x0, y0, x1, y1, t float64) float64 {
	return y0 + (y1-y0)*(t-x0)/(x1-x0)
}

// sortedUnique sorts the pairs by x and keeps the first y of any duplicate x
func sortedUnique(xs, ys []float64) ([]float64, []float64) {
	type pair struct{ x, y float64 }
	pairs := make([]pair, len(xs))
	for i := range xs {
		pairs[i] = pair{xs[i], ys[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })

	outX := make([]float64, 0, len(pairs))
	outY := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if len(outX) > 0 && p.x == outX[len(outX)-1] {
			continue
		}
		outX = append(outX, p.x)
		outY = append(outY, p.y)
	}
	return outX, outY
}
