package ml

import (
	"fmt"

	"github.com/drakos74/scalearn/internal/dataset"

	randomforest "github.com/malaschitz/randomForest"
)

// Forest is a random forest classifier backed by malaschitz/randomForest.
type Forest struct {
	trees  int
	forest *randomforest.Forest
}

func NewForest(p Params) *Forest {
	return &Forest{
		trees: p.GetInt("trees", 100),
	}
}

func (f *Forest) Fit(train dataset.Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training set")
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: train.X, Class: train.Classes()}
	forest.Train(f.trees)
	f.forest = forest
	return nil
}

func (f *Forest) Score(test dataset.Dataset) (float64, error) {
	if f.forest == nil {
		return 0, fmt.Errorf("no forest trained")
	}
	got := make([]float64, test.Len())
	for i, row := range test.X {
		votes := f.forest.Vote(row)
		got[i] = float64(argmax(votes))
	}
	return Accuracy(test.Y, got), nil
}

// Importance returns the learned feature importances.
func (f *Forest) Importance() []float64 {
	if f.forest == nil {
		return nil
	}
	return f.forest.FeatureImportance
}

func argmax(vv []float64) int {
	best := 0
	for i, v := range vv {
		if v > vv[best] {
			best = i
		}
	}
	return best
}
