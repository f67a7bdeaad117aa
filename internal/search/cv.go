package search

import (
	"fmt"

	"github.com/drakos74/scalearn/internal/buffer"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/ml"
)

// CV configures k-fold cross validation.
type CV struct {
	Folds int   `json:"folds"`
	Seed  int64 `json:"seed"`
}

// Score evaluates one candidate over all folds and
// returns the mean and standard deviation of the fold scores.
// A fresh estimator is built per fold, so folds never share fitted state.
func (cv CV) Score(factory ml.Factory, p ml.Params, d dataset.Dataset) (float64, float64, error) {
	folds, err := dataset.Folds(d.Len(), cv.Folds, cv.Seed)
	if err != nil {
		return 0, 0, err
	}

	stats := buffer.NewStats()
	for f, fold := range folds {
		est, err := factory(p)
		if err != nil {
			return 0, 0, fmt.Errorf("could not build estimator for fold %d: %w", f, err)
		}
		if err := est.Fit(d.Select(dataset.TrainFold(folds, f))); err != nil {
			return 0, 0, fmt.Errorf("could not fit fold %d: %w", f, err)
		}
		score, err := est.Score(d.Select(fold))
		if err != nil {
			return 0, 0, fmt.Errorf("could not score fold %d: %w", f, err)
		}
		stats.Push(score)
	}
	return stats.Avg(), stats.StDev(), nil
}
