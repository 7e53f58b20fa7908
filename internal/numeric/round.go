// Package numeric holds small float helpers shared across xepto packages.
package numeric

import "math"

// Round rounds v to the given number of decimals using round-half-to-even on
// the scaled value.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	scale := math.Pow(10, float64(decimals))
	r := math.RoundToEven(v*scale) / scale
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return v
	}

	return r
}

// RoundPtr rounds *v and returns a new pointer, or nil when v is nil.
func RoundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, decimals)

	return &r
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
