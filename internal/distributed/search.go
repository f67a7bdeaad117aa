package distributed

import (
	"context"
	"fmt"

	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/ml"
	"github.com/drakos74/scalearn/internal/search"
	"github.com/google/uuid"
	"github.com/grailbio/bigslice"
	"github.com/grailbio/bigslice/exec"
	"github.com/rs/zerolog/log"
)

const maxSearchShards = 8

// gridSearch evaluates encoded grid candidates across the cluster.
// Workers rebuild the dataset from its source and the estimator from the
// registry, so only plain strings travel over the wire.
var gridSearch = bigslice.Func(func(model string, src string, encoded []string, folds int, seed int64) bigslice.Slice {
	nshard := len(encoded)
	if nshard > maxSearchShards {
		nshard = maxSearchShards
	}
	if nshard == 0 {
		nshard = 1
	}
	indices := make([]int, len(encoded))
	for i := range indices {
		indices[i] = i
	}
	slice := bigslice.Const(nshard, indices, encoded)
	return bigslice.Map(slice, func(i int, enc string) (int, float64, float64, string) {
		p, err := ml.DecodeParams(enc)
		if err != nil {
			return i, 0, 0, err.Error()
		}
		source, err := dataset.DecodeSource(src)
		if err != nil {
			return i, 0, 0, err.Error()
		}
		d, err := source.Load()
		if err != nil {
			return i, 0, 0, err.Error()
		}
		factory, err := ml.ForName(model)
		if err != nil {
			return i, 0, 0, err.Error()
		}
		mean, std, err := search.CV{Folds: folds, Seed: seed}.Score(factory, p, d)
		if err != nil {
			return i, 0, 0, err.Error()
		}
		return i, mean, std, ""
	})
})

// Search runs a cross validated grid search as a bigslice job.
type Search struct {
	Model  string
	Grid   search.Grid
	CV     search.CV
	Source dataset.Source
}

// Run evaluates all candidates on the cluster behind the given session
// and returns the ranked result.
func (s Search) Run(ctx context.Context, sess *exec.Session) (search.Result, error) {
	candidates, err := s.Grid.Candidates()
	if err != nil {
		return search.Result{}, fmt.Errorf("could not enumerate grid: %w", err)
	}

	encoded := make([]string, len(candidates))
	for i, p := range candidates {
		enc, err := p.Encode()
		if err != nil {
			return search.Result{}, err
		}
		encoded[i] = enc
	}

	src, err := s.Source.Encode()
	if err != nil {
		return search.Result{}, err
	}

	log.Info().
		Str("model", s.Model).
		Int("candidates", len(candidates)).
		Int("folds", s.CV.Folds).
		Msg("starting distributed grid search")

	res, err := sess.Run(ctx, gridSearch, s.Model, src, encoded, s.CV.Folds, s.CV.Seed)
	if err != nil {
		return search.Result{}, fmt.Errorf("could not run search job: %w", err)
	}

	trials := make([]search.Trial, len(candidates))
	scan := res.Scanner()
	defer scan.Close()

	var (
		i         int
		mean, std float64
		failure   string
	)
	for scan.Scan(ctx, &i, &mean, &std, &failure) {
		if failure != "" {
			return search.Result{}, fmt.Errorf("candidate '%s' failed: %s", candidates[i].ID(), failure)
		}
		trials[i] = search.Trial{
			ID:     candidates[i].ID(),
			Params: candidates[i],
			Mean:   mean,
			StDev:  std,
		}
	}
	if err := scan.Err(); err != nil {
		return search.Result{}, fmt.Errorf("could not scan search results: %w", err)
	}

	result := search.Result{
		ID:     uuid.New().String(),
		Model:  s.Model,
		Trials: search.Rank(trials),
	}

	best, err := result.Best()
	if err != nil {
		return search.Result{}, err
	}
	log.Info().
		Str("model", s.Model).
		Str("best", best.ID).
		Float64("score", best.Mean).
		Msg("distributed grid search done")

	return result, nil
}
