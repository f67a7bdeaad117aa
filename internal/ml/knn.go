package ml

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/scalearn/internal/dataset"
	"github.com/drakos74/scalearn/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
)

// KNN is a k-nearest-neighbour classifier backed by golearn.
// The training samples pass through a feature file,
// the format golearn parses into instances.
type KNN struct {
	k        int
	distance string
	search   string
	dir      string
	cls      *knn.KNNClassifier
}

func NewKNN(p Params) *KNN {
	return &KNN{
		k:        p.GetInt("k", 5),
		distance: p.GetString("distance", "euclidean"),
		search:   p.GetString("search", "linear"),
		dir:      filepath.Join(storage.DefaultDir, storage.DatasetsDir),
	}
}

func (c *KNN) Fit(train dataset.Dataset) error {
	// concurrent fits share the dataset dir, so every fit gets its own file
	fn, err := dataset.ToFeatureFile(c.dir, fmt.Sprintf("knn_train_%s", uuid.New().String()), train.Vectors(), false)
	if err != nil {
		log.Error().Err(err).Msg("could not create dataset file")
		return err
	}
	defer os.Remove(fn)
	instances, err := base.ParseCSVToInstances(fn, false)
	if err != nil {
		return fmt.Errorf("could not parse training instances: %w", err)
	}
	cls := knn.NewKnnClassifier(c.distance, c.search, c.k)
	if err := cls.Fit(instances); err != nil {
		return fmt.Errorf("could not fit knn: %w", err)
	}
	c.cls = cls
	return nil
}

func (c *KNN) Score(test dataset.Dataset) (float64, error) {
	if c.cls == nil {
		return 0, fmt.Errorf("no knn trained")
	}
	fn, err := dataset.ToFeatureFile(c.dir, fmt.Sprintf("knn_test_%s", uuid.New().String()), test.Vectors(), false)
	if err != nil {
		log.Error().Err(err).Msg("could not create dataset file")
		return 0, err
	}
	defer os.Remove(fn)
	instances, err := base.ParseCSVToInstances(fn, false)
	if err != nil {
		return 0, fmt.Errorf("could not parse test instances: %w", err)
	}
	predictions, err := c.cls.Predict(instances)
	if err != nil {
		return 0, fmt.Errorf("could not predict with knn: %w", err)
	}
	cf, err := evaluation.GetConfusionMatrix(instances, predictions)
	if err != nil {
		return 0, fmt.Errorf("could not get confusion matrix: %w", err)
	}
	return evaluation.GetAccuracy(cf), nil
}
