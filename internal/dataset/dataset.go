package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Dataset is an in-memory tabular dataset.
// Each row of X is one sample, Y holds the corresponding target value.
// For classification targets Y carries the class index as a float.
type Dataset struct {
	X [][]float64 `json:"x"`
	Y []float64   `json:"y"`
}

// New creates a new dataset from the given features and targets.
func New(x [][]float64, y []float64) (Dataset, error) {
	if len(x) != len(y) {
		return Dataset{}, fmt.Errorf("features and targets dont match : %d vs %d", len(x), len(y))
	}
	return Dataset{X: x, Y: y}, nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.X)
}

// Features returns the number of feature columns.
func (d Dataset) Features() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Classes returns the targets as integer class labels.
func (d Dataset) Classes() []int {
	cc := make([]int, len(d.Y))
	for i, y := range d.Y {
		cc[i] = int(math.Round(y))
	}
	return cc
}

// Select returns a new dataset with the rows at the given indices.
func (d Dataset) Select(idx []int) Dataset {
	x := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = d.X[j]
		y[i] = d.Y[j]
	}
	return Dataset{X: x, Y: y}
}

// Vectors returns the samples as feature vectors with the target appended as last element.
func (d Dataset) Vectors() [][]float64 {
	vv := make([][]float64, len(d.X))
	for i, row := range d.X {
		v := make([]float64, len(row)+1)
		copy(v, row)
		v[len(row)] = d.Y[i]
		vv[i] = v
	}
	return vv
}

// Summary describes the distribution of a single feature column.
type Summary struct {
	Mean  float64 `json:"mean"`
	StDev float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Describe computes per-feature summaries.
func (d Dataset) Describe() []Summary {
	ss := make([]Summary, d.Features())
	col := make([]float64, d.Len())
	for j := 0; j < d.Features(); j++ {
		min := math.MaxFloat64
		max := -math.MaxFloat64
		for i, row := range d.X {
			col[i] = row[j]
			if row[j] < min {
				min = row[j]
			}
			if row[j] > max {
				max = row[j]
			}
		}
		mean, std := stat.MeanStdDev(col, nil)
		ss[j] = Summary{Mean: mean, StDev: std, Min: min, Max: max}
	}
	return ss
}
