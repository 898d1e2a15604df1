// Package testkit provides synthetic data generators shared by tests.
package testkit

import (
	"math"
	"math/rand"

	"tabkit/domain/dataset"
	"tabkit/domain/project"
)

// LinearSeries produces n evenly spaced x values from start with the given
// step, plus y = slope*x + intercept.
func LinearSeries(n int, start, step, slope, intercept float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = start + float64(i)*step
		y[i] = slope*x[i] + intercept
	}
	return x, y
}

// SineSeries produces n samples of amplitude*sin(frequency*x) over [0, 2π]
func SineSeries(n int, amplitude, frequency float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = 2 * math.Pi * float64(i) / float64(n-1)
		y[i] = amplitude * math.Sin(frequency*x[i])
	}
	return x, y
}

// NoisySeries adds seeded gaussian noise to a series, leaving the input
// untouched. A fixed seed keeps the tests deterministic.
func NoisySeries(y []float64, stdDev float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v + rng.NormFloat64()*stdDev
	}
	return out
}

// Table builds a two-column numeric table from x and y
func Table(x, y []float64) dataset.Table {
	xCol := make([]any, len(x))
	yCol := make([]any, len(y))
	for i := range x {
		xCol[i] = x[i]
		yCol[i] = y[i]
	}
	t := dataset.NewTable()
	_ = t.AddColumn("x", xCol)
	_ = t.AddColumn("y", yCol)
	return t
}

// Project builds a project containing one dataset item over the given table
// and returns both
func Project(name string, table dataset.Table) (*project.Project, *project.Item) {
	p := project.New(name)
	item := project.NewDatasetItem(dataset.NewWithTable(name, table))
	_ = p.AddItem(item, "")
	return p, item
}
