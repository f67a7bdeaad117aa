package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/ml"
	"github.com/grailbio/bigslice"
	"github.com/grailbio/bigslice/exec"
	"github.com/grailbio/bigslice/sliceio"
	"github.com/rs/zerolog/log"
)

// Acc accumulates the per-centroid sums of one Lloyd update.
type Acc struct {
	Sum    []float64
	Count  int
	SqDist float64
}

// kmeansIter performs one Lloyd iteration over the dataset shards :
// each sample is assigned to its nearest centroid and the per-centroid
// sums are folded across the cluster. The shards are streamed through
// bigslice readers, so no worker ever holds the full dataset.
var kmeansIter = bigslice.Func(func(shards []string, centroidsEnc string) bigslice.Slice {
	var centroids [][]float64
	if err := json.Unmarshal([]byte(centroidsEnc), &centroids); err != nil {
		log.Panic().Err(err).Msg("could not decode centroids")
	}

	type state struct {
		rows [][]float64
		next int
	}
	slice := bigslice.ReaderFunc(len(shards), func(shard int, state *state, xs [][]float64) (int, error) {
		if state.rows == nil {
			d, err := dataset.Load(shards[shard])
			if err != nil {
				return 0, err
			}
			state.rows = d.X
		}
		for i := range xs {
			if state.next >= len(state.rows) {
				return i, sliceio.EOF
			}
			xs[i] = state.rows[state.next]
			state.next++
		}
		return len(xs), nil
	})
	slice = bigslice.Map(slice, func(x []float64) (int, Acc) {
		c, d := ml.Assign(x, centroids)
		return c, Acc{Sum: x, Count: 1, SqDist: d}
	})
	return bigslice.Fold(slice, func(a, e Acc) Acc {
		if a.Sum == nil {
			a.Sum = make([]float64, len(e.Sum))
		}
		for j, v := range e.Sum {
			a.Sum[j] += v
		}
		a.Count += e.Count
		a.SqDist += e.SqDist
		return a
	})
})

// KMeans trains k-means over a sharded dataset,
// one bigslice job per Lloyd iteration.
type KMeans struct {
	K          int
	Iterations int
	Seed       int64
}

// Model is the outcome of a distributed k-means run.
type Model struct {
	Centroids [][]float64 `json:"centroids"`
	Inertia   float64     `json:"inertia"`
	Samples   int         `json:"samples"`
}

// Train runs the configured number of Lloyd iterations over the given shards.
func (k KMeans) Train(ctx context.Context, sess *exec.Session, shards []string) (Model, error) {
	if len(shards) == 0 {
		return Model{}, fmt.Errorf("no shards to train on")
	}
	if k.K <= 0 || k.Iterations <= 0 {
		return Model{}, fmt.Errorf("invalid k-means parameters [ %d | %d ]", k.K, k.Iterations)
	}

	centroids, err := k.seedCentroids(shards[0])
	if err != nil {
		return Model{}, err
	}

	model := Model{}
	for iter := 0; iter < k.Iterations; iter++ {
		enc, err := json.Marshal(centroids)
		if err != nil {
			return Model{}, fmt.Errorf("could not encode centroids: %w", err)
		}

		res, err := sess.Run(ctx, kmeansIter, shards, string(enc))
		if err != nil {
			return Model{}, fmt.Errorf("could not run iteration %d: %w", iter, err)
		}

		next := make([][]float64, len(centroids))
		copy(next, centroids)
		inertia := 0.0
		samples := 0

		scan := res.Scanner()
		var (
			c   int
			acc Acc
		)
		for scan.Scan(ctx, &c, &acc) {
			if acc.Count == 0 {
				continue
			}
			centroid := make([]float64, len(acc.Sum))
			for j, v := range acc.Sum {
				centroid[j] = v / float64(acc.Count)
			}
			next[c] = centroid
			inertia += acc.SqDist
			samples += acc.Count
		}
		err = scan.Err()
		scan.Close()
		if err != nil {
			return Model{}, fmt.Errorf("could not scan iteration %d: %w", iter, err)
		}

		centroids = next
		model = Model{Centroids: centroids, Inertia: inertia, Samples: samples}

		log.Info().
			Int("iteration", iter).
			Float64("inertia", inertia).
			Int("samples", samples).
			Msg("k-means iteration done")
	}

	return model, nil
}

// seedCentroids picks the initial centroids from the first shard.
func (k KMeans) seedCentroids(shard string) ([][]float64, error) {
	d, err := dataset.Load(shard)
	if err != nil {
		return nil, fmt.Errorf("could not load seed shard: %w", err)
	}
	if d.Len() < k.K {
		return nil, fmt.Errorf("not enough samples in seed shard for %d clusters : %d", k.K, d.Len())
	}
	perm := rand.New(rand.NewSource(k.Seed)).Perm(d.Len())
	centroids := make([][]float64, k.K)
	for c := 0; c < k.K; c++ {
		row := d.X[perm[c]]
		centroid := make([]float64, len(row))
		copy(centroid, row)
		centroids[c] = centroid
	}
	return centroids, nil
}
