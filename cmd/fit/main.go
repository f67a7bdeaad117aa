// Fit trains a single estimator on a single machine and reports its
// holdout score. This is the first stage of the scaling walk-through :
// everything happens in one process, on one dataset that fits in memory.
package main

import (
	"flag"
	"fmt"

	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/ml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	var (
		model    = flag.String("model", ml.ForestKey, "model to fit (knn|forest|logistic|linear|net)")
		data     = flag.String("data", "", "csv dataset with the target as last column")
		n        = flag.Int("n", 500, "samples to generate when no dataset is given")
		features = flag.Int("features", 4, "features to generate when no dataset is given")
		noise    = flag.Float64("noise", 0.05, "label noise of the generated dataset")
		split    = flag.Float64("split", 0.7, "train fraction of the holdout split")
		seed     = flag.Int64("seed", 42, "seed for generation and splitting")
		params   = flag.String("params", "{}", "hyperparameters as json")
	)
	flag.Parse()

	src := dataset.Source{
		Kind:     dataset.SourceClassification,
		N:        *n,
		Features: *features,
		Noise:    *noise,
		Seed:     *seed,
	}
	if *data != "" {
		src = dataset.Source{Kind: dataset.SourceCSV, Path: *data}
	}

	d, err := src.Load()
	if err != nil {
		panic(fmt.Sprintf("could not load dataset : %+v", err))
	}

	for j, s := range d.Describe() {
		log.Info().
			Int("feature", j).
			Float64("mean", s.Mean).
			Float64("std", s.StDev).
			Msg("feature summary")
	}

	train, holdout, err := dataset.Split(d, *split, *seed)
	if err != nil {
		panic(fmt.Sprintf("could not split dataset : %+v", err))
	}

	p, err := ml.DecodeParams(*params)
	if err != nil {
		panic(fmt.Sprintf("could not parse params : %+v", err))
	}

	factory, err := ml.ForName(*model)
	if err != nil {
		panic(fmt.Sprintf("unknown model : %+v", err))
	}
	est, err := factory(p)
	if err != nil {
		panic(fmt.Sprintf("could not build estimator : %+v", err))
	}

	if err := est.Fit(train); err != nil {
		panic(fmt.Sprintf("could not fit : %+v", err))
	}

	score, err := est.Score(holdout)
	if err != nil {
		panic(fmt.Sprintf("could not score : %+v", err))
	}

	log.Info().
		Str("model", *model).
		Str("params", p.ID()).
		Int("train", train.Len()).
		Int("holdout", holdout.Len()).
		Float64("score", score).
		Msg("fit done")
}
