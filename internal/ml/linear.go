package ml

import (
	"fmt"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
	"github.com/drakos74/scalearn/internal/dataset"
)

// Logistic is a logistic regression classifier backed by goml.
type Logistic struct {
	rate       float64
	reg        float64
	iterations int
	model      *linear.Logistic
}

func NewLogistic(p Params) *Logistic {
	return &Logistic{
		rate:       p.GetFloat64("rate", 0.01),
		reg:        p.GetFloat64("reg", 0),
		iterations: p.GetInt("iterations", 500),
	}
}

func (l *Logistic) Fit(train dataset.Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training set")
	}
	model := linear.NewLogistic(base.BatchGA, l.rate, l.reg, l.iterations, train.X, train.Y)
	if err := model.Learn(); err != nil {
		return fmt.Errorf("could not learn logistic model: %w", err)
	}
	l.model = model
	return nil
}

func (l *Logistic) Score(test dataset.Dataset) (float64, error) {
	if l.model == nil {
		return 0, fmt.Errorf("no logistic model trained")
	}
	got := make([]float64, test.Len())
	for i, row := range test.X {
		p, err := l.model.Predict(row)
		if err != nil {
			return 0, fmt.Errorf("could not predict: %w", err)
		}
		if p[0] > 0.5 {
			got[i] = 1
		}
	}
	return Accuracy(test.Y, got), nil
}

// Linear is a least squares regressor backed by goml.
// Its score is the negative rmse on the validation set.
type Linear struct {
	rate       float64
	reg        float64
	iterations int
	model      *linear.LeastSquares
}

func NewLinear(p Params) *Linear {
	return &Linear{
		rate:       p.GetFloat64("rate", 0.01),
		reg:        p.GetFloat64("reg", 0),
		iterations: p.GetInt("iterations", 500),
	}
}

func (l *Linear) Fit(train dataset.Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training set")
	}
	model := linear.NewLeastSquares(base.BatchGA, l.rate, l.reg, l.iterations, train.X, train.Y)
	if err := model.Learn(); err != nil {
		return fmt.Errorf("could not learn linear model: %w", err)
	}
	l.model = model
	return nil
}

func (l *Linear) Score(test dataset.Dataset) (float64, error) {
	if l.model == nil {
		return 0, fmt.Errorf("no linear model trained")
	}
	got := make([]float64, test.Len())
	for i, row := range test.X {
		p, err := l.model.Predict(row)
		if err != nil {
			return 0, fmt.Errorf("could not predict: %w", err)
		}
		got[i] = p[0]
	}
	return -RMSE(test.Y, got), nil
}
