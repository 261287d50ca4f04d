package spatial

import (
	"math"
)

// HoursPerDay is the period of time-of-day data
const HoursPerDay = 24.0

// CircularMean calculates the mean of circular data (angles in radians)
// Returns mean angle in radians
func CircularMean(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	for _, angle := range angles {
		sumSin += math.Sin(angle)
		sumCos += math.Cos(angle)
	}

	return math.Atan2(sumSin, sumCos)
}

// MeanResultantLength calculates the mean resultant length (R)
// R ranges from 0 (uniform distribution) to 1 (all angles identical)
func MeanResultantLength(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}

	var sumSin, sumCos float64
	for _, angle := range angles {
		sumSin += math.Sin(angle)
		sumCos += math.Cos(angle)
	}

	return math.Sqrt(sumSin*sumSin+sumCos*sumCos) / float64(len(angles))
}

// MeanHourOfDay returns the circular mean of hours in [0, 24) and the mean
// resultant length of the distribution, so 23:00 and 01:00 average to midnight.
func MeanHourOfDay(hours []float64) (mean float64, concentration float64) {
	if len(hours) == 0 {
		return 0, 0
	}

	angles := make([]float64, len(hours))
	for i, h := range hours {
		angles[i] = h / HoursPerDay * 2 * math.Pi
	}

	mean = CircularMean(angles) / (2 * math.Pi) * HoursPerDay
	if mean < 0 {
		mean += HoursPerDay
	}
	if mean >= HoursPerDay {
		mean -= HoursPerDay
	}
	return mean, MeanResultantLength(angles)
}
