package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobs(t *testing.T) {

	d, centers, err := Blobs(300, 4, 3, 0.1, 99)
	assert.NoError(t, err)

	assert.Equal(t, 300, d.Len())
	assert.Equal(t, 4, d.Features())
	assert.Equal(t, 3, len(centers))

	// labels cover exactly the cluster indices
	for _, c := range d.Classes() {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 3)
	}

	// deterministic under the same seed
	d2, centers2, err := Blobs(300, 4, 3, 0.1, 99)
	assert.NoError(t, err)
	assert.Equal(t, d.X, d2.X)
	assert.Equal(t, centers, centers2)

	_, _, err = Blobs(0, 4, 3, 0.1, 99)
	assert.Error(t, err)
}

func TestClassification(t *testing.T) {

	d, err := Classification(500, 5, 0, 21)
	assert.NoError(t, err)

	assert.Equal(t, 500, d.Len())
	assert.Equal(t, 5, d.Features())

	ones := 0
	for _, c := range d.Classes() {
		assert.Contains(t, []int{0, 1}, c)
		if c == 1 {
			ones++
		}
	}
	// a linear rule over symmetric features should not be degenerate
	assert.Greater(t, ones, 50)
	assert.Less(t, ones, 450)
}

func TestRegression(t *testing.T) {

	d, err := Regression(100, 3, 0, 5)
	assert.NoError(t, err)
	assert.Equal(t, 100, d.Len())

	// with zero noise the target is an exact linear function,
	// so duplicates of the generator agree
	d2, err := Regression(100, 3, 0, 5)
	assert.NoError(t, err)
	assert.Equal(t, d.Y, d2.Y)
}

func TestDataset_Describe(t *testing.T) {

	d := Dataset{
		X: [][]float64{{1, 10}, {3, 30}},
		Y: []float64{0, 1},
	}

	ss := d.Describe()
	assert.Equal(t, 2, len(ss))
	assert.InDelta(t, 2.0, ss[0].Mean, 1e-9)
	assert.InDelta(t, 20.0, ss[1].Mean, 1e-9)
	assert.InDelta(t, 1.0, ss[0].Min, 1e-9)
	assert.InDelta(t, 30.0, ss[1].Max, 1e-9)
}
