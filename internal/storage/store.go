package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ResultsDir  = "results"
	DatasetsDir = "datasets"
	ModelsDir   = "models"
)

var (
	// TODO : leaving this for now to be able to adjust for the tests
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr      = errors.New("not found")
	CouldNotLoadErr  = errors.New("could not load")
	UnrecoverableErr = errors.New("unrecoverable error")
)

// Key is the storage key for a general implementation
type Key struct {
	Hash  int64  `json:"hash"`
	Model string `json:"model"`
	Label string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Model, k.Hash, k.Label)
}

type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// MakePath creates the parent directory and returns the full path for the given file.
func MakePath(parentDir string, fileName string) (string, error) {
	if err := os.MkdirAll(parentDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("could not make dir %s: %w", parentDir, err)
	}
	return filepath.Join(parentDir, fileName), nil
}

type VoidStorage struct {
}

func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}

func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}
