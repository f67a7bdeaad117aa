package dataset

import (
	"fmt"
	"math/rand"
)

// Blobs generates n points grouped around k gaussian clusters in the given dimension.
// The target of each point is the index of the cluster it was drawn from.
// It returns the dataset together with the true cluster centers.
func Blobs(n, dim, k int, spread float64, seed int64) (Dataset, [][]float64, error) {
	if n <= 0 || dim <= 0 || k <= 0 {
		return Dataset{}, nil, fmt.Errorf("invalid blob parameters [ %d | %d | %d ]", n, dim, k)
	}
	rnd := rand.New(rand.NewSource(seed))

	centers := make([][]float64, k)
	for c := 0; c < k; c++ {
		center := make([]float64, dim)
		for j := 0; j < dim; j++ {
			center[j] = rnd.Float64() * 10
		}
		centers[c] = center
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		c := i % k
		row := make([]float64, dim)
		for j := 0; j < dim; j++ {
			row[j] = centers[c][j] + rnd.NormFloat64()*spread
		}
		x[i] = row
		y[i] = float64(c)
	}
	return Dataset{X: x, Y: y}, centers, nil
}

// Classification generates a binary classification set with a linear decision rule
// and a noise fraction of flipped labels.
func Classification(n, features int, noise float64, seed int64) (Dataset, error) {
	if n <= 0 || features <= 0 {
		return Dataset{}, fmt.Errorf("invalid classification parameters [ %d | %d ]", n, features)
	}
	rnd := rand.New(rand.NewSource(seed))

	w := make([]float64, features)
	for j := range w {
		w[j] = rnd.Float64()*2 - 1
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, features)
		var s float64
		for j := 0; j < features; j++ {
			row[j] = rnd.Float64()*2 - 1
			s += w[j] * row[j]
		}
		label := 0.0
		if s > 0 {
			label = 1.0
		}
		if rnd.Float64() < noise {
			label = 1 - label
		}
		x[i] = row
		y[i] = label
	}
	return Dataset{X: x, Y: y}, nil
}

// Regression generates a noisy linear regression set.
func Regression(n, features int, noise float64, seed int64) (Dataset, error) {
	if n <= 0 || features <= 0 {
		return Dataset{}, fmt.Errorf("invalid regression parameters [ %d | %d ]", n, features)
	}
	rnd := rand.New(rand.NewSource(seed))

	w := make([]float64, features)
	for j := range w {
		w[j] = rnd.Float64()*2 - 1
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, features)
		var s float64
		for j := 0; j < features; j++ {
			row[j] = rnd.Float64()*2 - 1
			s += w[j] * row[j]
		}
		x[i] = row
		y[i] = s + rnd.NormFloat64()*noise
	}
	return Dataset{X: x, Y: y}, nil
}
