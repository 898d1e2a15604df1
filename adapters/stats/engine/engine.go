package engine

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"tabkit/domain/analysis"
	"tabkit/domain/core"
)

// Engine provides the numeric analysis operations over aligned (x, y) series.
// It is stateless: every operation slices its inputs, computes a result series
// plus summary statistics and returns an analysis.Result. Inputs are assumed
// numeric; alignment and slice bounds are validated up front.
type Engine struct{}

// New creates a new analysis engine
func New() *Engine {
	return &Engine{}
}

// Run dispatches an analysis by type and method string. An empty method
// selects the default for the type. Used by commands that carry the
// operation selection as data.
func (e *Engine) Run(typ analysis.Type, method string, x, y []float64, params analysis.Parameters) (*analysis.Result, error) {
	switch typ {
	case analysis.TypeDerivative:
		if method == "" {
			method = string(analysis.DerivativeCentral)
		}
		m, err := analysis.ParseDerivativeMethod(method)
		if err != nil {
			return nil, err
		}
		return e.Derivative(x, y, m, params)
	case analysis.TypeIntegral:
		return e.Integral(x, y, params)
	case analysis.TypeArcLength:
		return e.ArcLength(x, y, params)
	case analysis.TypeSmoothing:
		if method == "" {
			method = string(analysis.SmoothingSavGol)
		}
		m, err := analysis.ParseSmoothingMethod(method)
		if err != nil {
			return nil, err
		}
		return e.Smooth(x, y, m, params)
	case analysis.TypeInterpolation:
		if method == "" {
			method = string(analysis.InterpolationLinear)
		}
		m, err := analysis.ParseInterpolationMethod(method)
		if err != nil {
			return nil, err
		}
		return e.Interpolate(x, y, m, params)
	default:
		return nil, core.NewInvalidInputError(fmt.Sprintf("unknown analysis type %q", typ))
	}
}

// sliceSeries validates alignment and resolves [StartIndex, EndIndex) against
// both series. EndIndex of -1 means the series length. minLen is the smallest
// slice the calling operation can work on.
func sliceSeries(x, y []float64, params analysis.Parameters, minLen int) ([]float64, []float64, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: x has %d points, y has %d",
			core.ErrLengthMismatch, len(x), len(y))
	}

	start := params.StartIndex
	end := params.EndIndex
	if end == -1 {
		end = len(x)
	}
	if start < 0 || end > len(x) || start >= end {
		return nil, nil, core.NewInvalidInputError(
			fmt.Sprintf("slice [%d, %d) invalid for series of length %d", start, end, len(x)))
	}
	if end-start == 0 {
		return nil, nil, core.ErrEmptySlice
	}
	if end-start < minLen {
		return nil, nil, core.NewInvalidInputError(
			fmt.Sprintf("slice of %d points is too short, need at least %d", end-start, minLen))
	}

	xs := make([]float64, end-start)
	ys := make([]float64, end-start)
	copy(xs, x[start:end])
	copy(ys, y[start:end])
	return xs, ys, nil
}

// summaryStats computes min/max/mean/std of a series
func summaryStats(series []float64) map[string]float64 {
	min, _ := stats.Min(series)
	max, _ := stats.Max(series)
	mean, _ := stats.Mean(series)
	std, _ := stats.StandardDeviation(series)
	return map[string]float64{
		"min":  min,
		"max":  max,
		"mean": mean,
		"std":  std,
	}
}

// newResult assembles the immutable result bundle shared by all operations
func newResult(typ analysis.Type, xs, ys, series []float64, params analysis.Parameters,
	statistics map[string]float64, metadata map[string]any) *analysis.Result {
	return &analysis.Result{
		Type:       typ,
		XSlice:     xs,
		YSlice:     ys,
		Series:     series,
		Parameters: params,
		Statistics: statistics,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}
