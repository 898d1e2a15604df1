package profile

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/dataset"
)

func TestProfileColumn(t *testing.T) {
	profile, err := ProfileColumn("v", []float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, 8, profile.Count)
	assert.Equal(t, 0, profile.MissingCount)
	assert.InDelta(t, 5.0, profile.Mean, 1e-9)
	assert.InDelta(t, 2.0, profile.StdDev, 1e-9)
	assert.Equal(t, 2.0, profile.Min)
	assert.Equal(t, 9.0, profile.Max)
	assert.InDelta(t, 4.5, profile.Median, 1e-9)
}

func TestProfileColumnExcludesNonFinite(t *testing.T) {
	profile, err := ProfileColumn("v", []float64{1, math.NaN(), 3, math.Inf(1)})
	require.NoError(t, err)

	assert.Equal(t, 2, profile.Count)
	assert.Equal(t, 2, profile.MissingCount)
	assert.InDelta(t, 2.0, profile.Mean, 1e-9)
}

func TestProfileColumnAllMissing(t *testing.T) {
	profile, err := ProfileColumn("v", []float64{math.NaN(), math.NaN()})
	require.NoError(t, err)

	assert.Equal(t, 0, profile.Count)
	assert.Equal(t, 2, profile.MissingCount)
	assert.Equal(t, 0.0, profile.Mean)
}

func TestProfileColumnConstantSeries(t *testing.T) {
	profile, err := ProfileColumn("v", []float64{5, 5, 5, 5, 5})
	require.NoError(t, err)

	assert.Equal(t, 0.0, profile.StdDev)
	assert.Equal(t, 0.0, profile.Skewness)
	assert.Equal(t, 0.0, profile.Kurtosis)
}

func TestProfileTableSkipsNonNumeric(t *testing.T) {
	table, err := dataset.NewTableFromColumns(
		[]string{"t", "v", "label"},
		map[string][]any{
			"t":     {0.0, 1.0, 2.0},
			"v":     {1.0, 2.0, 3.0},
			"label": {"a", "b", "c"},
		},
	)
	require.NoError(t, err)

	profiles, err := New().ProfileTable(context.Background(), table)
	require.NoError(t, err)

	assert.Len(t, profiles, 2)
	assert.Contains(t, profiles, "t")
	assert.Contains(t, profiles, "v")
	assert.NotContains(t, profiles, "label")
	assert.InDelta(t, 2.0, profiles["v"].Mean, 1e-9)
}

func TestProfileTableRespectsCanceledContext(t *testing.T) {
	table, err := dataset.NewTableFromColumns(
		[]string{"v"},
		map[string][]any{"v": {1.0, 2.0}},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = New().ProfileTable(ctx, table)
	require.Error(t, err)
}
