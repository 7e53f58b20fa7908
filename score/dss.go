package score

import (
	"math"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/internal/numeric"
)

// Variant selects one of the three drug sensitivity score normalisations.
type Variant uint8

const (
	// DSS1 is the raw excess area as a percentage of the total area.
	DSS1 Variant = iota + 1
	// DSS2 divides DSS1 by log10 of the curve maximum and zeroes values above 50.
	DSS2
	// DSS3 scales DSS1 by log10(100)/log10(max) and by the fraction of the
	// tested range above the baseline crossing.
	DSS3
)

// Variants lists every DSS variant in order.
var Variants = []Variant{DSS1, DSS2, DSS3}

// String returns "DSS1", "DSS2" or "DSS3".
func (v Variant) String() string {
	switch v {
	case DSS1:
		return "DSS1"
	case DSS2:
		return "DSS2"
	case DSS3:
		return "DSS3"
	default:
		return "DSS?"
	}
}

// DSSInput holds the curve summary a drug sensitivity score is computed from.
type DSSInput struct {
	// IC50 in the caller's unit.
	IC50  float64
	Slope float64
	// MaxResponse is the refined curve maximum.
	MaxResponse float64
	// MinConcentration and MaxConcentration are in the caller's unit.
	MinConcentration float64
	MaxConcentration float64
	// Baseline is the response threshold y.
	Baseline float64
	// Scale converts the caller's unit to molar.
	Scale float64
}

// DSS computes one drug sensitivity score variant.
//
// It returns nil when IC50, slope, maximum or the concentration range is not
// finite. It returns 0 when IC50 >= the maximum tested concentration, the
// slope is zero, the maximum does not exceed the baseline, or the normalised
// score falls outside [0, 100]. Otherwise the score is rounded to 2 decimals.
func DSS(in DSSInput, variant Variant) *float64 {
	minLog := math.Log10(in.MinConcentration * in.Scale)
	if !numeric.Finite(in.IC50, in.Slope, in.MaxResponse, minLog, in.MaxConcentration) {
		return nil
	}

	zero := 0.0
	a := math.Min(in.MaxResponse, 100)
	b := math.Abs(in.Slope)
	y := in.Baseline
	switch {
	case in.IC50 >= in.MaxConcentration, in.Slope == 0, a <= y:
		return &zero
	}

	c := math.Log10(in.IC50 * in.Scale)
	x2 := math.Log10(in.MaxConcentration * in.Scale)

	x1 := minLog
	if y != 0 {
		x1 = c - (math.Log(a-y)-math.Log(y))/(b*math.Ln10)
		if x1 < minLog {
			x1 = minLog
		} else if x1 > x2 {
			x1 = x2
		}
	}

	fitted := curve.Params{Slope: in.Slope, Min: 0, Max: a, Log10IC50: c}
	area := Integrate(fitted.Eval, x1, x2)
	excess := area - y*(x2-x1)
	total := (x2 - minLog) * (100 - y)
	pct := excess / total * 100

	var norm float64
	switch variant {
	case DSS1:
		norm = pct
	case DSS2:
		norm = pct / math.Log10(a)
		if norm > 50 {
			norm = 0
		}
	case DSS3:
		norm = pct * (math.Log10(100) / math.Log10(a)) * ((x2 - x1) / (x2 - minLog))
	}

	if !numeric.Finite(norm) || norm < 0 || norm > 100 {
		return &zero
	}

	v := numeric.Round(norm, 2)

	return &v
}
