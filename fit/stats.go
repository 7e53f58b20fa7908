package fit

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// median returns the middle value of x, averaging the two central values for
// even lengths.
func median(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	s := slices.Clone(x)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}

	return (s[mid-1] + s[mid]) / 2
}

// trailingMean returns the moving average over a trailing window. The first
// window-1 entries are NaN.
func trailingMean(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Sum(x[i+1-window:i+1]) / float64(window)
	}

	return out
}

// popStd returns the population standard deviation of x.
func popStd(x []float64) float64 {
	return math.Sqrt(stat.PopVariance(x, nil))
}

// nanMax returns the largest non-NaN value of x, or NaN if there is none.
func nanMax(x []float64) float64 {
	m := math.NaN()
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}

	return m
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
