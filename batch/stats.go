package batch

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// finite returns the non-NaN values of xs.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}

func nanMax(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}

	return floats.Max(v)
}

func nanMean(xs []float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}

	return stat.Mean(v, nil)
}

// nanSEM is the sample standard deviation over sqrt(n), NaN below two values.
func nanSEM(xs []float64) float64 {
	v := finite(xs)
	if len(v) < 2 {
		return math.NaN()
	}

	return stat.StdDev(v, nil) / math.Sqrt(float64(len(v)))
}

// nanQuantile interpolates linearly between the order statistics at
// q·(n-1), ignoring NaN.
func nanQuantile(xs []float64, q float64) float64 {
	v := finite(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	slices.Sort(v)

	pos := q * float64(len(v)-1)
	lo := int(math.Floor(pos))
	if lo >= len(v)-1 {
		return v[len(v)-1]
	}
	frac := pos - float64(lo)

	return v[lo] + frac*(v[lo+1]-v[lo])
}
