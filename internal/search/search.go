package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/drakos74/scalearn/internal/backend"
	"github.com/drakos74/scalearn/internal/buffer"
	"github.com/drakos74/scalearn/internal/concurrent"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/metrics"
	"github.com/drakos74/scalearn/internal/ml"
	"github.com/drakos74/scalearn/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Trial is the outcome of evaluating one candidate.
type Trial struct {
	ID       string        `json:"id"`
	Params   ml.Params     `json:"params"`
	Mean     float64       `json:"mean"`
	StDev    float64       `json:"std"`
	Duration time.Duration `json:"duration"`
}

// Result is a ranked set of trials.
type Result struct {
	ID     string  `json:"id"`
	Model  string  `json:"model"`
	Trials []Trial `json:"trials"`
}

// Best returns the top ranked trial.
func (r Result) Best() (Trial, error) {
	if len(r.Trials) == 0 {
		return Trial{}, fmt.Errorf("no trials in result")
	}
	return r.Trials[0], nil
}

// GridSearch evaluates a hyperparameter grid with cross validation,
// delegating execution to the configured backend.
type GridSearch struct {
	Model string
	Grid  Grid
	CV    CV
	// Factory overrides the registry lookup for the model, mainly for tests.
	Factory  ml.Factory
	Backend  backend.Backend
	Store    storage.Persistence
	Progress bool
}

// Run evaluates all candidates on the given dataset and returns the ranked result.
// Trial i always lands in slot i, regardless of the execution order of the backend.
func (s *GridSearch) Run(ctx context.Context, d dataset.Dataset) (Result, error) {
	factory := s.Factory
	if factory == nil {
		var err error
		factory, err = ml.ForName(s.Model)
		if err != nil {
			return Result{}, err
		}
	}

	candidates, err := s.Grid.Candidates()
	if err != nil {
		return Result{}, fmt.Errorf("could not enumerate grid: %w", err)
	}

	exec := s.Backend
	if exec == nil {
		exec = backend.NewSequential()
	}

	log.Info().
		Str("model", s.Model).
		Str("backend", exec.Name()).
		Int("candidates", len(candidates)).
		Int("folds", s.CV.Folds).
		Msg("starting grid search")

	var bar *pb.ProgressBar
	if s.Progress {
		bar = pb.StartNew(len(candidates))
	}

	counter := concurrent.NewCounter(nil)
	trials := make([]Trial, len(candidates))
	tasks := make([]backend.Task, len(candidates))
	for i, p := range candidates {
		i, p := i, p
		tasks[i] = func(ctx context.Context) error {
			start := time.Now()
			mean, std, err := s.CV.Score(factory, p, d)
			if err != nil {
				metrics.Observer.Trial(s.Model, exec.Name(), "error")
				return fmt.Errorf("candidate '%s' failed: %w", p.ID(), err)
			}
			trials[i] = Trial{
				ID:       p.ID(),
				Params:   p,
				Mean:     mean,
				StDev:    std,
				Duration: time.Since(start),
			}
			metrics.Observer.Fit(s.Model, exec.Name())
			metrics.Observer.Trial(s.Model, exec.Name(), "ok")
			counter.Track()
			if bar != nil {
				bar.Increment()
			}
			return nil
		}
	}

	if err := exec.Run(ctx, tasks); err != nil {
		return Result{}, err
	}
	if bar != nil {
		bar.Finish()
	}

	result := Result{
		ID:     uuid.New().String(),
		Model:  s.Model,
		Trials: Rank(trials),
	}

	agg := buffer.NewStatsCollector(2)
	for _, trial := range result.Trials {
		agg.Push(trial.Mean, trial.Duration.Seconds())
	}

	log.Info().
		Str("model", s.Model).
		Int("completed", counter.Get()).
		Str("best", result.Trials[0].ID).
		Float64("score", result.Trials[0].Mean).
		Float64("mean-score", agg.Stats(0).Avg()).
		Float64("mean-duration", agg.Stats(1).Avg()).
		Msg("grid search done")

	store := s.Store
	if store == nil {
		store = storage.NewVoidStorage()
	}
	key := resultKey(s.Model, len(candidates))
	if err := store.Store(key, result); err != nil {
		log.Error().Err(err).Str("key", fmt.Sprintf("%+v", key)).Msg("could not store search result")
	}

	return result, nil
}

func resultKey(model string, candidates int) storage.Key {
	return storage.Key{
		Hash:  int64(candidates),
		Model: model,
		Label: "grid-search",
	}
}

// Rank sorts trials by mean score, best first.
// Ties keep the candidate enumeration order.
func Rank(trials []Trial) []Trial {
	ranked := make([]Trial, len(trials))
	copy(ranked, trials)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Mean > ranked[j].Mean
	})
	return ranked
}
