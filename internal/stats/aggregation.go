package stats

import (
	"fmt"
	"sort"
)

// Aggregation tags accepted by Reduce.
const (
	AggSum    = "sum"
	AggMean   = "mean"
	AggMedian = "median"
	AggMin    = "min"
	AggMax    = "max"
	AggCount  = "count"
)

// Known reports whether name is a supported aggregation tag.
func Known(name string) bool {
	switch name {
	case AggSum, AggMean, AggMedian, AggMin, AggMax, AggCount:
		return true
	}
	return false
}

// Reduce collapses values with the named aggregation.
// ok is false when the aggregation has no result for an empty input;
// sum and count of nothing are 0.
func Reduce(name string, values []float64) (result float64, ok bool, err error) {
	switch name {
	case AggSum:
		return Sum(values), true, nil
	case AggCount:
		return float64(len(values)), true, nil
	}
	if !Known(name) {
		return 0, false, fmt.Errorf("unknown aggregation %q", name)
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	switch name {
	case AggMean:
		return Mean(values), true, nil
	case AggMedian:
		return Median(values), true, nil
	case AggMin:
		return Min(values), true, nil
	default:
		return Max(values), true, nil
	}
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median calculates the median value
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Sum returns the sum of all values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
