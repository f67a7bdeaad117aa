package ml

import (
	"fmt"

	"github.com/drakos74/scalearn/internal/dataset"
)

// Model keys for the estimator registry.
const (
	KNNKey      = "knn"
	ForestKey   = "forest"
	LogisticKey = "logistic"
	LinearKey   = "linear"
	NetKey      = "net"
)

// Estimator fits on a training set and scores a validation set.
// Scores follow a higher-is-better convention :
// accuracy for classifiers and negative rmse for regressors.
type Estimator interface {
	Fit(train dataset.Dataset) error
	Score(test dataset.Dataset) (float64, error)
}

// Factory creates an estimator for the given hyperparameters.
type Factory func(p Params) (Estimator, error)

// ForName returns the estimator factory registered under the given model key.
// The registry is what lets cluster workers rebuild estimators from plain strings.
func ForName(model string) (Factory, error) {
	switch model {
	case KNNKey:
		return func(p Params) (Estimator, error) {
			return NewKNN(p), nil
		}, nil
	case ForestKey:
		return func(p Params) (Estimator, error) {
			return NewForest(p), nil
		}, nil
	case LogisticKey:
		return func(p Params) (Estimator, error) {
			return NewLogistic(p), nil
		}, nil
	case LinearKey:
		return func(p Params) (Estimator, error) {
			return NewLinear(p), nil
		}, nil
	case NetKey:
		return func(p Params) (Estimator, error) {
			return NewNet(p), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown model '%s'", model)
	}
}
