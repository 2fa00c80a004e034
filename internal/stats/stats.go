package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of samples, or NaN for an empty slice.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	return stat.Mean(samples, nil)
}

// BoolSamples converts booleans to 0/1 samples for the mean/CI machinery.
func BoolSamples(values []bool) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v {
			out[i] = 1
		}
	}
	return out
}
