package curve

import (
	"fmt"
	"math"
)

// NumParams is the number of free parameters of the four-parameter logistic.
const NumParams = 4

// Parameter vector indices. Solvers and gradients use this order.
const (
	IdxSlope = iota
	IdxMin
	IdxMax
	IdxLog10IC50
)

// paramNames maps parameter indices to their display names.
var paramNames = [NumParams]string{
	IdxSlope:     "slope",
	IdxMin:       "min",
	IdxMax:       "max",
	IdxLog10IC50: "log10IC50",
}

// ParamName returns the display name of the parameter at index i.
func ParamName(i int) string {
	if i < 0 || i >= NumParams {
		return "unknown"
	}

	return paramNames[i]
}

// Params holds the four parameters of a 4PL dose-response curve.
//
// The model is:
//
//	y = Min + (Max - Min) / (1 + 10^(Slope * (Log10IC50 - x)))
//
// where x is the log10 molar dose and y the percent inhibition.
type Params struct {
	Slope     float64
	Min       float64
	Max       float64
	Log10IC50 float64
}

// Response evaluates the 4PL model at log10 dose x.
func Response(x, slope, minResp, maxResp, log10IC50 float64) float64 {
	return minResp + (maxResp-minResp)*weight(slope*(log10IC50-x))
}

// weight returns 1 / (1 + 10^z) without overflowing for large |z|.
func weight(z float64) float64 {
	if z > 0 {
		e := math.Pow(10, -z)
		return e / (1 + e)
	}

	return 1 / (1 + math.Pow(10, z))
}

// Eval evaluates the curve at log10 dose x.
func (p Params) Eval(x float64) float64 {
	return Response(x, p.Slope, p.Min, p.Max, p.Log10IC50)
}

// Gradient returns the partial derivatives of the response at x with respect
// to each parameter, in vector order (slope, min, max, log10IC50).
func (p Params) Gradient(x float64) [NumParams]float64 {
	d := p.Log10IC50 - x
	w := weight(p.Slope * d)
	dz := -math.Ln10 * w * (1 - w) * (p.Max - p.Min)

	return [NumParams]float64{
		IdxSlope:     dz * d,
		IdxMin:       1 - w,
		IdxMax:       w,
		IdxLog10IC50: dz * p.Slope,
	}
}

// Vector returns the parameters in vector order.
func (p Params) Vector() [NumParams]float64 {
	return [NumParams]float64{
		IdxSlope:     p.Slope,
		IdxMin:       p.Min,
		IdxMax:       p.Max,
		IdxLog10IC50: p.Log10IC50,
	}
}

// FromVector builds Params from a vector in (slope, min, max, log10IC50) order.
func FromVector(v [NumParams]float64) Params {
	return Params{
		Slope:     v[IdxSlope],
		Min:       v[IdxMin],
		Max:       v[IdxMax],
		Log10IC50: v[IdxLog10IC50],
	}
}

// IsFinite reports whether every parameter is a finite number.
func (p Params) IsFinite() bool {
	for _, v := range p.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// String returns a human-readable representation of the parameters.
func (p Params) String() string {
	return fmt.Sprintf("slope=%.4g min=%.4g max=%.4g log10IC50=%.4g",
		p.Slope, p.Min, p.Max, p.Log10IC50)
}
