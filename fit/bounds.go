package fit

import (
	"fmt"
	"math"

	"github.com/arloliu/xepto/curve"
)

// Bounds is a box constraint on the 4PL parameter vector.
type Bounds struct {
	Lower [curve.NumParams]float64
	Upper [curve.NumParams]float64
}

// NewBounds builds Bounds from per-parameter lower and upper Params.
func NewBounds(lower, upper curve.Params) Bounds {
	return Bounds{Lower: lower.Vector(), Upper: upper.Vector()}
}

// Clip projects v into the box.
func (b Bounds) Clip(v [curve.NumParams]float64) [curve.NumParams]float64 {
	for i := range v {
		v[i] = math.Min(math.Max(v[i], b.Lower[i]), b.Upper[i])
	}

	return v
}

// validate reports a box with NaN edges or lower > upper.
func (b Bounds) validate() error {
	for i := range b.Lower {
		lo, hi := b.Lower[i], b.Upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
			return fmt.Errorf("invalid bounds for %s: [%v, %v]", curve.ParamName(i), lo, hi)
		}
	}

	return nil
}

// String returns the box as "name∈[lo,hi]" pairs.
func (b Bounds) String() string {
	s := ""
	for i := range b.Lower {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s∈[%.4g,%.4g]", curve.ParamName(i), b.Lower[i], b.Upper[i])
	}

	return s
}
