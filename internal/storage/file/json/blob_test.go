package json

import (
	"testing"

	"github.com/drakos74/scalearn/internal/storage"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name   string    `json:"name"`
	Scores []float64 `json:"scores"`
}

func TestBlobStorage_StoreLoad(t *testing.T) {

	storage.DefaultDir = t.TempDir()

	store := NewJsonBlob("results", "test", false)

	key := storage.Key{
		Hash:  42,
		Model: "knn",
		Label: "grid-search",
	}

	in := payload{
		Name:   "search",
		Scores: []float64{0.9, 0.8, 0.7},
	}

	err := store.Store(key, in)
	assert.NoError(t, err)

	var out payload
	err = store.Load(key, &out)
	assert.NoError(t, err)
	assert.Equal(t, in, out)

	// unknown keys surface the not-found sentinel
	err = store.Load(storage.Key{Model: "other"}, &out)
	assert.Error(t, err)
	assert.ErrorIs(t, err, storage.NotFoundErr)
}

func TestLocalStorage_StoreLoad(t *testing.T) {

	store, err := LocalShard()("any")
	assert.NoError(t, err)

	key := storage.Key{Model: "forest", Label: "trials"}

	in := payload{Name: "trials", Scores: []float64{0.5}}
	assert.NoError(t, store.Store(key, in))

	var out payload
	assert.NoError(t, store.Load(key, &out))
	assert.Equal(t, in, out)

	assert.Error(t, store.Load(storage.Key{Model: "missing"}, &out))
}
