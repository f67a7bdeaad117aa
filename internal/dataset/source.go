package dataset

import (
	"encoding/json"
	"fmt"
)

const (
	SourceCSV            = "csv"
	SourceClassification = "classification"
	SourceBlobs          = "blobs"
	SourceRegression     = "regression"
)

// Source describes how a dataset can be materialized.
// A source travels to cluster workers as plain data, so that every worker
// can rebuild the same dataset locally instead of shipping the samples around.
type Source struct {
	Kind     string  `json:"kind"`
	Path     string  `json:"path,omitempty"`
	N        int     `json:"n,omitempty"`
	Features int     `json:"features,omitempty"`
	Clusters int     `json:"clusters,omitempty"`
	Noise    float64 `json:"noise,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
}

// Load materializes the dataset the source describes.
func (s Source) Load() (Dataset, error) {
	switch s.Kind {
	case SourceCSV:
		return Load(s.Path)
	case SourceClassification:
		return Classification(s.N, s.Features, s.Noise, s.Seed)
	case SourceRegression:
		return Regression(s.N, s.Features, s.Noise, s.Seed)
	case SourceBlobs:
		d, _, err := Blobs(s.N, s.Features, s.Clusters, s.Noise, s.Seed)
		return d, err
	default:
		return Dataset{}, fmt.Errorf("unknown source kind '%s'", s.Kind)
	}
}

// Encode serializes the source for transport.
func (s Source) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("could not encode source: %w", err)
	}
	return string(b), nil
}

// DecodeSource parses an encoded source.
func DecodeSource(enc string) (Source, error) {
	var s Source
	if err := json.Unmarshal([]byte(enc), &s); err != nil {
		return Source{}, fmt.Errorf("could not decode source: %w", err)
	}
	return s, nil
}
