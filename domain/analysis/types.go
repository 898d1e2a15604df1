package analysis

import (
	"fmt"
	"time"

	"tabkit/domain/core"
)

// Type enumerates the analysis operations
type Type string

const (
	TypeDerivative    Type = "derivative"
	TypeIntegral      Type = "integral"
	TypeArcLength     Type = "arc_length"
	TypeSmoothing     Type = "smoothing"
	TypeInterpolation Type = "interpolation"
)

// DerivativeMethod enumerates derivative estimators
type DerivativeMethod string

const (
	DerivativeCentral  DerivativeMethod = "central"
	DerivativeForward  DerivativeMethod = "forward"
	DerivativeBackward DerivativeMethod = "backward"
)

// SmoothingMethod enumerates smoothing algorithms
type SmoothingMethod string

const (
	SmoothingSavGol      SmoothingMethod = "savgol"
	SmoothingRollingMean SmoothingMethod = "rolling_mean"
	SmoothingLowess      SmoothingMethod = "lowess"
)

// InterpolationMethod enumerates resampling interpolants
type InterpolationMethod string

const (
	InterpolationLinear    InterpolationMethod = "linear"
	InterpolationCubic     InterpolationMethod = "cubic"
	InterpolationQuadratic InterpolationMethod = "quadratic"
	InterpolationNearest   InterpolationMethod = "nearest"
)

// ParseType validates an analysis type string
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeDerivative, TypeIntegral, TypeArcLength, TypeSmoothing, TypeInterpolation:
		return Type(s), nil
	}
	return "", core.NewInvalidInputError(fmt.Sprintf("unknown analysis type %q", s))
}

// ParseDerivativeMethod validates a derivative method string
func ParseDerivativeMethod(s string) (DerivativeMethod, error) {
	switch DerivativeMethod(s) {
	case DerivativeCentral, DerivativeForward, DerivativeBackward:
		return DerivativeMethod(s), nil
	}
	return "", core.NewInvalidInputError(fmt.Sprintf("unknown derivative method %q", s))
}

// ParseSmoothingMethod validates a smoothing method string
func ParseSmoothingMethod(s string) (SmoothingMethod, error) {
	switch SmoothingMethod(s) {
	case SmoothingSavGol, SmoothingRollingMean, SmoothingLowess:
		return SmoothingMethod(s), nil
	}
	return "", core.NewInvalidInputError(fmt.Sprintf("unknown smoothing method %q", s))
}

// ParseInterpolationMethod validates an interpolation method string
func ParseInterpolationMethod(s string) (InterpolationMethod, error) {
	switch InterpolationMethod(s) {
	case InterpolationLinear, InterpolationCubic, InterpolationQuadratic, InterpolationNearest:
		return InterpolationMethod(s), nil
	}
	return "", core.NewInvalidInputError(fmt.Sprintf("unknown interpolation method %q", s))
}

// Parameters selects the slice and algorithm settings of an analysis run.
// EndIndex of -1 resolves to the series length.
type Parameters struct {
	StartIndex      int            `json:"start_index"`
	EndIndex        int            `json:"end_index"`
	WindowLength    int            `json:"window_length,omitempty"`
	PolynomialOrder int            `json:"polynomial_order,omitempty"`
	NumPoints       int            `json:"num_points,omitempty"`
	LowessFraction  float64        `json:"lowess_fraction,omitempty"`
	Additional      map[string]any `json:"additional,omitempty"`
}

// DefaultParameters covers the whole series with the usual algorithm settings
func DefaultParameters() Parameters {
	return Parameters{
		StartIndex:      0,
		EndIndex:        -1,
		WindowLength:    11,
		PolynomialOrder: 3,
		LowessFraction:  0.3,
	}
}

// Result is the immutable output bundle of one analysis operation:
// the sliced inputs, the computed series, the parameters that produced it
// and summary statistics. Created once, read many times, then discarded
// after being merged into a dataset or displayed.
type Result struct {
	Type          Type               `json:"analysis_type"`
	SourceColumns []string           `json:"source_columns"`
	XSlice        []float64          `json:"x_slice"`
	YSlice        []float64          `json:"y_slice"`
	Series        []float64          `json:"result_series"`
	Parameters    Parameters         `json:"parameters"`
	Statistics    map[string]float64 `json:"statistics"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Len returns the length of the result series
func (r *Result) Len() int {
	return len(r.Series)
}
