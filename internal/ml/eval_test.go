package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {

	type test struct {
		want []float64
		got  []float64
		acc  float64
	}

	tests := map[string]test{
		"perfect": {
			want: []float64{0, 1, 1, 0},
			got:  []float64{0, 1, 1, 0},
			acc:  1,
		},
		"half": {
			want: []float64{0, 1, 1, 0},
			got:  []float64{0, 1, 0, 1},
			acc:  0.5,
		},
		"rounding": {
			want: []float64{1, 0},
			got:  []float64{0.9, 0.1},
			acc:  1,
		},
		"mismatched": {
			want: []float64{1},
			got:  []float64{1, 0},
			acc:  0,
		},
		"empty": {
			acc: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.acc, Accuracy(tt.want, tt.got), 1e-9)
		})
	}
}

func TestRMSE(t *testing.T) {

	assert.InDelta(t, 0.0, RMSE([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 1.0, RMSE([]float64{1, 2, 3}, []float64{2, 3, 4}), 1e-9)
	assert.InDelta(t, 2.0, RMSE([]float64{0, 0}, []float64{2, -2}), 1e-9)
}

func TestAssign(t *testing.T) {

	centroids := [][]float64{{0, 0}, {10, 10}}

	c, d := Assign([]float64{1, 1}, centroids)
	assert.Equal(t, 0, c)
	assert.InDelta(t, 2.0, d, 1e-9)

	c, d = Assign([]float64{9, 9}, centroids)
	assert.Equal(t, 1, c)
	assert.InDelta(t, 2.0, d, 1e-9)
}

func TestInertia(t *testing.T) {

	centroids := [][]float64{{0, 0}, {10, 10}}
	x := [][]float64{{0, 0}, {10, 10}, {1, 0}}

	assert.InDelta(t, 1.0, Inertia(x, centroids), 1e-9)
	assert.InDelta(t, 0.0, Inertia(nil, centroids), 1e-9)
}
