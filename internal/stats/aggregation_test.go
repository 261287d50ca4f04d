package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	tests := []struct {
		name string
		want float64
	}{
		{AggSum, 10},
		{AggMean, 2.5},
		{AggMedian, 2.5},
		{AggMin, 1},
		{AggMax, 4},
		{AggCount, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Reduce(tt.name, values)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "input is not reordered")
}

func TestReduce_Empty(t *testing.T) {
	for _, name := range []string{AggSum, AggCount} {
		got, ok, err := Reduce(name, nil)
		require.NoError(t, err)
		assert.True(t, ok, name)
		assert.Zero(t, got, name)
	}
	for _, name := range []string{AggMean, AggMedian, AggMin, AggMax} {
		_, ok, err := Reduce(name, nil)
		require.NoError(t, err)
		assert.False(t, ok, name)
	}
}

func TestReduce_Unknown(t *testing.T) {
	assert.False(t, Known("mode"))
	_, _, err := Reduce("mode", []float64{1})
	assert.Error(t, err)
}

func TestMedianOdd(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 3, 1}))
}
