// Kmeans trains k-means on a dataset that never fits in one machine's
// memory. This is the last stage of the scaling walk-through : the data
// lives as csv shards on disk and every Lloyd iteration streams them
// through the cluster, folding the per-centroid sums.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/distributed"
	"github.com/drakos74/scalearn/internal/storage"
	jsonstore "github.com/drakos74/scalearn/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	var (
		dir         = flag.String("dir", "file-storage/datasets/kmeans", "shard directory")
		rows        = flag.Int("rows", 10000, "rows per shard")
		n           = flag.Int("n", 100000, "samples to generate when the shard dir is empty")
		features    = flag.Int("features", 8, "features of the generated dataset")
		clusters    = flag.Int("clusters", 5, "clusters of the generated dataset")
		noise       = flag.Float64("noise", 0.5, "spread of the generated clusters")
		k           = flag.Int("k", 5, "clusters to fit")
		iterations  = flag.Int("iterations", 10, "lloyd iterations")
		system      = flag.String("system", distributed.SystemLocal, "cluster system (local|ec2)")
		parallelism = flag.Int("parallelism", 4, "cluster parallelism")
		instance    = flag.String("instance", "", "ec2 instance type")
		seed        = flag.Int64("seed", 42, "seed for generation and centroid seeding")
	)
	flag.Parse()

	store, err := dataset.NewShardStore(*dir, 2)
	if err != nil {
		panic(fmt.Sprintf("could not open shard store : %+v", err))
	}

	shards, err := store.Shards()
	if err != nil {
		// no shards yet : generate a dataset and write it out as shards
		log.Info().Int("n", *n).Int("clusters", *clusters).Msg("generating dataset shards")
		d, _, err := dataset.Blobs(*n, *features, *clusters, *noise, *seed)
		if err != nil {
			panic(fmt.Sprintf("could not generate dataset : %+v", err))
		}
		if _, err := store.Write(d, *rows); err != nil {
			panic(fmt.Sprintf("could not write shards : %+v", err))
		}
		shards, err = store.Shards()
		if err != nil {
			panic(fmt.Sprintf("could not list shards : %+v", err))
		}
	}

	sess, err := distributed.NewSession(distributed.ClusterConfig{
		System:       *system,
		Parallelism:  *parallelism,
		InstanceType: *instance,
	})
	if err != nil {
		panic(fmt.Sprintf("could not start session : %+v", err))
	}
	defer sess.Shutdown()

	km := distributed.KMeans{K: *k, Iterations: *iterations, Seed: *seed}
	model, err := km.Train(context.Background(), sess, shards)
	if err != nil {
		panic(fmt.Sprintf("could not train : %+v", err))
	}

	log.Info().
		Int("shards", len(shards)).
		Int("samples", model.Samples).
		Float64("inertia", model.Inertia).
		Msg("k-means done")
	for c, centroid := range model.Centroids {
		log.Info().Int("cluster", c).Floats64("centroid", centroid).Msg("centroid")
	}

	results := jsonstore.NewJsonBlob(storage.ModelsDir, "kmeans", false)
	key := storage.Key{Hash: int64(*k), Model: "kmeans", Label: "centroids"}
	if err := results.Store(key, model); err != nil {
		log.Error().Err(err).Msg("could not store model")
	}
}
