// Package profile computes read-only summaries of dataset columns. Columns
// are profiled concurrently; nothing here mutates the table, so the profiler
// can run outside the command/undo pipeline.
package profile

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"tabkit/domain/dataset"
)

// ColumnProfile summarizes a single numeric column
type ColumnProfile struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	MissingCount int     `json:"missing_count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
}

// Profiler analyzes dataset tables
type Profiler struct{}

// New creates a profiler
func New() *Profiler {
	return &Profiler{}
}

// ProfileTable profiles every numeric column of the table concurrently.
// Results come back keyed by column name; non-numeric columns are skipped.
func (p *Profiler) ProfileTable(ctx context.Context, table dataset.Table) (map[string]ColumnProfile, error) {
	names := table.ColumnNames()

	profiles := make([]*ColumnProfile, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		if !table.IsNumericColumn(name) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, err := table.NumericColumn(name)
			if err != nil {
				return err
			}
			profile, err := ProfileColumn(name, values)
			if err != nil {
				return err
			}
			profiles[i] = &profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]ColumnProfile)
	for _, profile := range profiles {
		if profile != nil {
			out[profile.Name] = *profile
		}
	}
	return out, nil
}

// ProfileColumn summarizes one series. Non-finite values count as missing and
// are excluded from every statistic, so every field of the result is finite.
func ProfileColumn(name string, values []float64) (ColumnProfile, error) {
	profile := ColumnProfile{Name: name}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			profile.MissingCount++
			continue
		}
		clean = append(clean, v)
	}
	profile.Count = len(clean)
	if len(clean) == 0 {
		return profile, nil
	}

	var err error
	if profile.Mean, err = stats.Mean(clean); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviation(clean); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(clean); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(clean); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(clean); err != nil {
		return profile, err
	}
	if profile.Q25, err = stats.Percentile(clean, 25); err != nil {
		return profile, err
	}
	if profile.Q75, err = stats.Percentile(clean, 75); err != nil {
		return profile, err
	}

	profile.Skewness = calculateSkewness(clean, profile.Mean, profile.StdDev)
	profile.Kurtosis = calculateKurtosis(clean, profile.Mean, profile.StdDev)
	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	// Bias correction for sample skewness
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes excess kurtosis (normal distribution = 0)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumQuartedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumQuartedDeviations += deviation * deviation * deviation * deviation
	}

	return sumQuartedDeviations/n - 3
}
