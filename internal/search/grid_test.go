package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrid_Candidates(t *testing.T) {

	type test struct {
		grid Grid
		size int
		err  bool
	}

	tests := map[string]test{
		"empty": {
			grid: Grid{},
			size: 1,
		},
		"single": {
			grid: Grid{"k": {1, 3, 5}},
			size: 3,
		},
		"product": {
			grid: Grid{
				"k":        {1, 3, 5},
				"distance": {"euclidean", "cosine"},
			},
			size: 6,
		},
		"mixed-types": {
			grid: Grid{
				"trees": {10, 50},
				"rate":  {0.1, 0.5},
			},
			size: 4,
		},
		"no-values": {
			grid: Grid{"k": {}},
			err:  true,
		},
		"bad-type": {
			grid: Grid{"k": {[]int{1}}},
			err:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			candidates, err := tt.grid.Candidates()
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.size, len(candidates))
			assert.Equal(t, tt.size, tt.grid.Size())

			// all candidates carry all parameters and are unique
			seen := make(map[string]struct{})
			for _, c := range candidates {
				assert.Equal(t, len(tt.grid), len(c))
				seen[c.ID()] = struct{}{}
			}
			assert.Equal(t, tt.size, len(seen))
		})
	}
}

func TestGrid_Deterministic(t *testing.T) {

	grid := Grid{
		"b": {1, 2},
		"a": {"x", "y"},
	}

	first, err := grid.Candidates()
	assert.NoError(t, err)
	second, err := grid.Candidates()
	assert.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].ID(), second[i].ID())
	}
}
