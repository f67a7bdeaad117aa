package search

import (
	"context"
	"testing"

	"github.com/drakos74/scalearn/internal/backend"
	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/ml"
	jsonstore "github.com/drakos74/scalearn/internal/storage/file/json"
	"github.com/stretchr/testify/assert"
)

// stub scores a candidate from its params only, so searches are fully deterministic.
type stub struct {
	p ml.Params
}

func (s stub) Fit(train dataset.Dataset) error {
	return nil
}

func (s stub) Score(test dataset.Dataset) (float64, error) {
	// higher k scores higher
	return float64(s.p.GetInt("k", 0)), nil
}

func stubFactory(p ml.Params) (ml.Estimator, error) {
	return stub{p: p}, nil
}

func testData(t *testing.T) dataset.Dataset {
	d, err := dataset.Classification(30, 2, 0, 1)
	assert.NoError(t, err)
	return d
}

func TestGridSearch_Run(t *testing.T) {

	type test struct {
		backend backend.Backend
	}

	tests := map[string]test{
		"sequential": {backend: backend.NewSequential()},
		"pool":       {backend: backend.NewPool(4)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := jsonstore.NewLocalStorage()
			s := &GridSearch{
				Model:   "stub",
				Grid:    Grid{"k": {1, 5, 3}},
				CV:      CV{Folds: 3, Seed: 11},
				Factory: stubFactory,
				Backend: tt.backend,
				Store:   store,
			}

			result, err := s.Run(context.Background(), testData(t))
			assert.NoError(t, err)
			assert.Equal(t, 3, len(result.Trials))

			// ranked by mean score, best first
			best, err := result.Best()
			assert.NoError(t, err)
			assert.Equal(t, 5, best.Params.GetInt("k", 0))
			assert.InDelta(t, 5.0, best.Mean, 1e-9)
			assert.InDelta(t, 0.0, best.StDev, 1e-9)
			for i := 1; i < len(result.Trials); i++ {
				assert.GreaterOrEqual(t, result.Trials[i-1].Mean, result.Trials[i].Mean)
			}

			// the result round trips through storage
			var loaded Result
			err = store.Load(resultKey("stub", 3), &loaded)
			assert.NoError(t, err)
			assert.Equal(t, result.ID, loaded.ID)
			assert.Equal(t, len(result.Trials), len(loaded.Trials))
		})
	}
}

func TestGridSearch_UnknownModel(t *testing.T) {

	s := &GridSearch{
		Model: "no-such-model",
		Grid:  Grid{},
	}

	_, err := s.Run(context.Background(), testData(t))
	assert.Error(t, err)
}

func TestGridSearch_BadGrid(t *testing.T) {

	s := &GridSearch{
		Model:   "stub",
		Factory: stubFactory,
		Grid:    Grid{"k": {}},
	}

	_, err := s.Run(context.Background(), testData(t))
	assert.Error(t, err)
}

func TestGridSearch_Cancel(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &GridSearch{
		Model:   "stub",
		Factory: stubFactory,
		Grid:    Grid{"k": {1, 2, 3}},
		CV:      CV{Folds: 2, Seed: 1},
	}

	_, err := s.Run(ctx, testData(t))
	assert.Error(t, err)
}

func TestCV_Score(t *testing.T) {

	mean, std, err := CV{Folds: 5, Seed: 3}.Score(stubFactory, ml.Params{"k": 4}, testData(t))
	assert.NoError(t, err)
	assert.InDelta(t, 4.0, mean, 1e-9)
	assert.InDelta(t, 0.0, std, 1e-9)

	// more folds than samples
	_, _, err = CV{Folds: 50, Seed: 3}.Score(stubFactory, ml.Params{}, testData(t))
	assert.Error(t, err)
}

func TestRank_Ties(t *testing.T) {

	trials := []Trial{
		{ID: "a", Mean: 0.5},
		{ID: "b", Mean: 0.9},
		{ID: "c", Mean: 0.5},
	}

	ranked := Rank(trials)
	assert.Equal(t, "b", ranked[0].ID)
	// ties keep enumeration order
	assert.Equal(t, "a", ranked[1].ID)
	assert.Equal(t, "c", ranked[2].ID)
}
