package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_Push(t *testing.T) {

	type test struct {
		values   []float64
		avg      float64
		count    int
		min      float64
		max      float64
		diff     float64
		variance float64
	}

	tests := map[string]test{
		"single": {
			values: []float64{0.5},
			avg:    0.5,
			count:  1,
			min:    0.5,
			max:    0.5,
		},
		"uniform": {
			values: []float64{0.8, 0.8, 0.8},
			avg:    0.8,
			count:  3,
			min:    0.8,
			max:    0.8,
		},
		"fold-scores": {
			values:   []float64{0.9, 0.7, 0.8},
			avg:      0.8,
			count:    3,
			min:      0.7,
			max:      0.9,
			diff:     -0.1,
			variance: 0.00666666,
		},
		"negative": {
			values:   []float64{-1, 1},
			avg:      0,
			count:    2,
			min:      -1,
			max:      1,
			diff:     2,
			variance: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			stats := NewStats()
			for _, v := range tt.values {
				stats.Push(v)
			}
			assert.InDelta(t, tt.avg, stats.Avg(), 1e-9)
			assert.Equal(t, tt.count, stats.Count())
			assert.InDelta(t, tt.min, stats.Min(), 1e-9)
			assert.InDelta(t, tt.max, stats.Max(), 1e-9)
			assert.InDelta(t, tt.diff, stats.Diff(), 1e-9)
			assert.InDelta(t, tt.variance, stats.Variance(), 1e-6)
		})
	}
}

func TestStatsCollector_Push(t *testing.T) {

	collector := NewStatsCollector(2)

	collector.Push(1, 10)
	collector.Push(3, 30)

	assert.Equal(t, 2, collector.Dim())
	assert.InDelta(t, 2.0, collector.Stats(0).Avg(), 1e-9)
	assert.InDelta(t, 20.0, collector.Stats(1).Avg(), 1e-9)
}
