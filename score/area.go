package score

import (
	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/internal/numeric"
)

// DefaultBaseline is the response subtracted from the curve when computing AUC.
const DefaultBaseline = 10

// XeptoLevel is the response subtracted from the curve inside the xepto window.
const XeptoLevel = 50.0

// DefaultIntegrationLimit is the width, in log10 units, of the xepto window.
const DefaultIntegrationLimit = 1.0

// AUC returns the area between the curve and the baseline over [lo, hi],
// rounded to 2 decimals.
func AUC(ev curve.Evaluator, lo, hi, baseline float64) float64 {
	area := Integrate(curve.Offset(ev, baseline).Eval, lo, hi)

	return numeric.Round(area, 2)
}

// AAC returns the area between maxInhibition and the curve over [lo, hi],
// rounded to 2 decimals.
func AAC(ev curve.Evaluator, lo, hi, maxInhibition float64) float64 {
	area := Integrate(func(x float64) float64 {
		return maxInhibition - ev.Eval(x)
	}, lo, hi)

	return numeric.Round(area, 2)
}

// Xepto returns the windowed efficacy score:
//
//	∫[start, start+limit] (f(x) - XeptoLevel) dx / ((maxInhibition - baseline) * limit) * 100
//
// rounded to 2 decimals. It returns 0 when the normalising area is zero or the
// result is not finite.
func Xepto(ev curve.Evaluator, start, limit, maxInhibition, baseline float64) float64 {
	norm := (maxInhibition - baseline) * limit
	if norm == 0 {
		return 0
	}

	area := Integrate(curve.Offset(ev, XeptoLevel).Eval, start, start+limit)

	v := area / norm * 100
	if !numeric.Finite(v) {
		return 0
	}

	return numeric.Round(v, 2)
}
