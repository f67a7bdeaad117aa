// Cluster runs the same cross validated grid search as a bigslice job
// across a cluster of machines. This covers the third and fourth stage
// of the scaling walk-through : -system local distributes over worker
// processes on this machine, -system ec2 provisions a cloud cluster.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/drakos74/scalearn/infra/config"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/distributed"
	"github.com/drakos74/scalearn/internal/search"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SearchConfig is the json config of a grid search run.
type SearchConfig struct {
	Model  string         `json:"model"`
	Grid   search.Grid    `json:"grid"`
	CV     search.CV      `json:"cv"`
	Source dataset.Source `json:"source"`
}

func main() {

	var (
		system      = flag.String("system", distributed.SystemLocal, "cluster system (local|ec2)")
		parallelism = flag.Int("parallelism", 4, "cluster parallelism")
		instance    = flag.String("instance", "", "ec2 instance type")
		key         = flag.String("config", "search", "config key to load")
	)
	flag.Parse()

	var cfg SearchConfig
	config.MustLoad(*key, &cfg)

	sess, err := distributed.NewSession(distributed.ClusterConfig{
		System:       *system,
		Parallelism:  *parallelism,
		InstanceType: *instance,
	})
	if err != nil {
		panic(fmt.Sprintf("could not start session : %+v", err))
	}
	defer sess.Shutdown()

	s := distributed.Search{
		Model:  cfg.Model,
		Grid:   cfg.Grid,
		CV:     cfg.CV,
		Source: cfg.Source,
	}

	result, err := s.Run(context.Background(), sess)
	if err != nil {
		panic(fmt.Sprintf("could not run search : %+v", err))
	}

	for i, trial := range result.Trials {
		log.Info().
			Int("rank", i+1).
			Str("params", trial.ID).
			Float64("mean", trial.Mean).
			Float64("std", trial.StDev).
			Msg("trial")
	}
}
