// Package potency resolves the dose at a response level and the final IC50
// from a fitted curve.
package potency

import (
	"math"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/numeric"
	"github.com/arloliu/xepto/internal/policy"
)

// DefaultLevel is the response level whose dose is reported.
const DefaultLevel = 50.0

// Regime names the branch used to pick the interpolated grid point.
type Regime string

const (
	// RegimeStraddle: the adjusted range contains the level.
	RegimeStraddle Regime = "straddle"
	// RegimeAboveLevel: the whole range lies above the level.
	RegimeAboveLevel Regime = "above-level"
	// RegimeBelowLevel: the whole range lies below the level.
	RegimeBelowLevel Regime = "below-level"
	// RegimeMidpoint: none of the above; the range midpoint is the target.
	RegimeMidpoint Regime = "midpoint"
)

// Range is the adjusted inhibition range of a curve.
type Range struct {
	Min float64
	Max float64
}

// AdjustRange combines the initial and refined extremes into the
// [0, 100]-clamped inhibition range used for interpolation and scoring.
func AdjustRange(initMin, initMax, refinedMin, refinedMax float64) Range {
	return Range{
		Min: math.Max(0, math.Min(initMin, refinedMin)),
		Max: math.Min(100, math.Max(initMax, refinedMax)),
	}
}

// Interpolation is the dose reported for a response level.
type Interpolation struct {
	// Dose is in the caller's unit, rounded to 2 decimals.
	Dose float64
	// Response is the fitted response at Dose, rounded to 1 decimal.
	Response float64
	// Log10Dose is the log10 molar dose of the reported point.
	Log10Dose float64
	Regime    Regime
	// Index is the grid index of the reported point.
	Index int
}

type interpInput struct {
	grid  *curve.Grid
	rng   Range
	level float64
}

// pick is the grid point and response chosen by a regime.
type pick struct {
	regime   Regime
	index    int
	response float64
}

func nearest(regime Regime, target func(interpInput) float64) func(interpInput) pick {
	return func(in interpInput) pick {
		idx := in.grid.Nearest(target(in))
		_, y := in.grid.At(idx)

		return pick{regime: regime, index: idx, response: y}
	}
}

func level(in interpInput) float64    { return in.level }
func midpoint(in interpInput) float64 { return (in.rng.Min + in.rng.Max) * 0.5 }

// interpolationRegimes is a single first-match group.
var interpolationRegimes = policy.Group[interpInput, pick]{
	{
		Name: string(RegimeStraddle),
		When: func(in interpInput) bool { return in.rng.Min <= in.level && in.level <= in.rng.Max },
		Then: nearest(RegimeStraddle, level),
	},
	{
		Name: string(RegimeAboveLevel),
		When: func(in interpInput) bool { return in.rng.Min > in.level },
		Then: func(in interpInput) pick {
			if lowest := in.grid.MinResponse(); lowest >= in.level {
				return pick{regime: RegimeAboveLevel, index: 0, response: lowest}
			}

			return nearest(RegimeAboveLevel, level)(in)
		},
	},
	{
		Name: string(RegimeBelowLevel),
		When: func(in interpInput) bool { return in.rng.Max < in.level },
		Then: func(in interpInput) pick {
			if highest := in.grid.MaxResponse(); highest < in.level {
				return pick{regime: RegimeBelowLevel, index: in.grid.Len() - 1, response: highest}
			}

			return nearest(RegimeBelowLevel, level)(in)
		},
	},
	{
		Name: string(RegimeMidpoint),
		When: func(interpInput) bool { return true },
		Then: nearest(RegimeMidpoint, midpoint),
	},
}

// Interpolate resolves the dose at the given response level on a dense grid.
//
// When the adjusted range straddles the level, the grid point nearest the
// level is used. A range entirely above the level reports the low end of the
// grid if the curve never drops to the level; a range entirely below reports
// the high end if the curve never reaches it. Otherwise the nearest point to
// the range midpoint is used.
//
// Log10Dose is recomputed from the rounded dose. When that dose rounds to
// zero the grid abscissa is used instead.
func Interpolate(grid *curve.Grid, rng Range, lvl float64, unit frame.Unit) Interpolation {
	in := interpInput{grid: grid, rng: rng, level: lvl}
	r, _ := interpolationRegimes.Match(in)
	p := r.Then(in)

	x, _ := grid.At(p.index)
	dose := numeric.Round(unit.FromMolar(math.Pow(10, x)), 2)

	log10Dose := x
	if dose > 0 {
		log10Dose = math.Log10(unit.ToMolar(dose))
	}

	return Interpolation{
		Dose:      dose,
		Response:  numeric.Round(p.response, 1),
		Log10Dose: log10Dose,
		Regime:    p.regime,
		Index:     p.index,
	}
}
