// Search runs a cross validated hyperparameter grid search on a single
// machine. This is the second stage of the scaling walk-through : the
// candidates are independent, so they are dispatched to a bounded pool
// of workers instead of a sequential loop.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/drakos74/scalearn/infra/config"
	"github.com/drakos74/scalearn/internal/backend"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/metrics"
	"github.com/drakos74/scalearn/internal/search"
	"github.com/drakos74/scalearn/internal/storage"
	jsonstore "github.com/drakos74/scalearn/internal/storage/file/json"
	"github.com/guptarohit/asciigraph"
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
		exec     = flag.String("backend", "pool", "execution backend (sequential|pool)")
		workers  = flag.Int("workers", 0, "pool workers, 0 for one per core")
		key      = flag.String("config", "search", "config key to load")
		progress = flag.Bool("progress", true, "show a progress bar")
	)
	flag.Parse()

	metrics.Serve()

	var cfg SearchConfig
	config.MustLoad(*key, &cfg)

	d, err := cfg.Source.Load()
	if err != nil {
		panic(fmt.Sprintf("could not load dataset : %+v", err))
	}

	var exc backend.Backend
	switch *exec {
	case "sequential":
		exc = backend.NewSequential()
	case "pool":
		exc = backend.NewPool(*workers)
	default:
		panic(fmt.Sprintf("unknown backend : %s", *exec))
	}

	// one result shard per model under the results table
	store, err := jsonstore.BlobShard(storage.ResultsDir)(cfg.Model)
	if err != nil {
		panic(fmt.Sprintf("could not open result storage : %+v", err))
	}

	s := &search.GridSearch{
		Model:    cfg.Model,
		Grid:     cfg.Grid,
		CV:       cfg.CV,
		Backend:  exc,
		Store:    store,
		Progress: *progress,
	}

	result, err := s.Run(context.Background(), d)
	if err != nil {
		panic(fmt.Sprintf("could not run search : %+v", err))
	}

	scores := make([]float64, len(result.Trials))
	for i, trial := range result.Trials {
		scores[i] = trial.Mean
		log.Info().
			Int("rank", i+1).
			Str("params", trial.ID).
			Float64("mean", trial.Mean).
			Float64("std", trial.StDev).
			Dur("duration", trial.Duration).
			Msg("trial")
	}

	fmt.Println(asciigraph.Plot(scores,
		asciigraph.Height(10),
		asciigraph.Caption("mean cv score by rank")))
}
