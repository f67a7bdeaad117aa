package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Accuracy returns the fraction of matching class labels.
func Accuracy(want, got []float64) float64 {
	if len(want) == 0 || len(want) != len(got) {
		return 0
	}
	hits := 0
	for i := range want {
		if int(math.Round(want[i])) == int(math.Round(got[i])) {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

// RMSE returns the root mean squared error of the predictions.
func RMSE(want, got []float64) float64 {
	if len(want) == 0 || len(want) != len(got) {
		return math.MaxFloat64
	}
	return floats.Distance(want, got, 2) / math.Sqrt(float64(len(want)))
}

// Assign returns the index of the nearest centroid and the squared distance to it.
func Assign(x []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		d := floats.Distance(x, centroid, 2)
		if d*d < bestDist {
			bestDist = d * d
			best = c
		}
	}
	return best, bestDist
}

// Inertia is the sum of squared distances of the samples to their nearest centroid.
func Inertia(x [][]float64, centroids [][]float64) float64 {
	var sum float64
	for _, row := range x {
		_, d := Assign(row, centroids)
		sum += d
	}
	return sum
}
