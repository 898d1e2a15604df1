package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/core"
)

func TestEvaluateArithmetic(t *testing.T) {
	e := New()
	bindings := map[string][]float64{
		"x": {1, 2, 3},
		"y": {10, 20, 30},
	}

	tests := []struct {
		expr string
		want []float64
	}{
		{"x + y", []float64{11, 22, 33}},
		{"y - x", []float64{9, 18, 27}},
		{"x * 2", []float64{2, 4, 6}},
		{"y / x", []float64{10, 10, 10}},
		{"x ^ 2", []float64{1, 4, 9}},
		{"(x + y) * 2", []float64{22, 44, 66}},
		{"-x", []float64{-1, -2, -3}},
		{"x + -1", []float64{0, 1, 2}},
		{"2 + x * y", []float64{22, 42, 92}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr, bindings, 3)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateFunctions(t *testing.T) {
	e := New()
	bindings := map[string][]float64{"x": {4, 9, 16}}

	got, err := e.Evaluate("sqrt(x)", bindings, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3, 4}, got, 1e-12)

	got, err = e.Evaluate("abs(-x) + exp(0)", bindings, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, 10, 17}, got, 1e-12)

	// Function names are case-insensitive.
	got, err = e.Evaluate("SQRT(x)", bindings, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3, 4}, got, 1e-12)
}

func TestEvaluateConstantBroadcasts(t *testing.T) {
	e := New()
	got, err := e.Evaluate("1.5 * 2", map[string][]float64{}, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, got)
}

func TestEvaluateScientificNotation(t *testing.T) {
	e := New()
	got, err := e.Evaluate("1e3 + 5e-1", map[string][]float64{}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1000.5, got[0], 1e-12)
}

func TestEvaluateUnknownColumn(t *testing.T) {
	e := New()
	_, err := e.Evaluate("ghost * 2", map[string][]float64{"x": {1}}, 1)
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestEvaluateLengthMismatch(t *testing.T) {
	e := New()
	_, err := e.Evaluate("x", map[string][]float64{"x": {1, 2}}, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	e := New()
	got, err := e.Evaluate("x / 0", map[string][]float64{"x": {1, 0}}, 2)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got[0], 1))
	assert.True(t, math.IsNaN(got[1]))
}

func TestValidate(t *testing.T) {
	e := New()

	valid := []string{
		"x + y",
		"sqrt(x) * 2",
		"-(x + 1) ^ 2",
		"log(x / y)",
	}
	for _, expr := range valid {
		assert.NoError(t, e.Validate(expr), expr)
	}

	invalid := []string{
		"",
		"x +",
		"* x",
		"(x + y",
		"x + y)",
		"nuke(x)",
		"x ? y",
		"sqrt()",
		"1..5",
	}
	for _, expr := range invalid {
		err := e.Validate(expr)
		require.Error(t, err, expr)
		assert.True(t, core.IsInvalidInputError(err), expr)
	}
}

func TestValidateDoesNotNeedBindings(t *testing.T) {
	// Identifiers resolve at evaluation time, so validation passes on
	// columns that do not exist yet.
	assert.NoError(t, New().Validate("whatever + 1"))
}
