package ml

import (
	"fmt"

	"github.com/cdipaolo/goml/cluster"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/rs/zerolog/log"
)

// KMeans is a clustering model backed by goml.
type KMeans struct {
	k          int
	iterations int
	model      *cluster.KMeans
	centroids  [][]float64
}

func NewKMeans(p Params) *KMeans {
	return &KMeans{
		k:          p.GetInt("k", 3),
		iterations: p.GetInt("iterations", 30),
	}
}

func (k *KMeans) Fit(train dataset.Dataset) error {
	if train.Len() < k.k {
		return fmt.Errorf("not enough samples for %d clusters : %d", k.k, train.Len())
	}
	k.model = cluster.NewKMeans(k.k, k.iterations, train.X)
	if err := k.model.Learn(); err != nil {
		log.Error().Err(err).Int("k", k.k).Msg("error during training on k-means")
		return fmt.Errorf("could not train: %w", err)
	}

	guesses := k.model.Guesses()
	if len(guesses) != train.Len() {
		return fmt.Errorf("could not align guesses with data [ %d | %d ]", len(guesses), train.Len())
	}

	// recover the centroids from the assignments
	sums := make([][]float64, k.k)
	counts := make([]int, k.k)
	for c := range sums {
		sums[c] = make([]float64, train.Features())
	}
	for i, g := range guesses {
		for j, v := range train.X[i] {
			sums[g][j] += v
		}
		counts[g]++
	}
	centroids := make([][]float64, k.k)
	for c := range sums {
		centroid := make([]float64, train.Features())
		if counts[c] > 0 {
			for j := range centroid {
				centroid[j] = sums[c][j] / float64(counts[c])
			}
		}
		centroids[c] = centroid
	}
	k.centroids = centroids
	return nil
}

// Centroids returns the learned cluster centers.
func (k *KMeans) Centroids() [][]float64 {
	return k.centroids
}

// Predict returns the cluster of the given sample.
func (k *KMeans) Predict(x []float64) (int, error) {
	if k.centroids == nil {
		return 0, fmt.Errorf("no model present")
	}
	c, _ := Assign(x, k.centroids)
	return c, nil
}

// Score returns the negative inertia on the given set,
// so that better clusterings score higher.
func (k *KMeans) Score(test dataset.Dataset) (float64, error) {
	if k.centroids == nil {
		return 0, fmt.Errorf("no model present")
	}
	return -Inertia(test.X, k.centroids), nil
}
