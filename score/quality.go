package score

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/xepto/errs"
)

// QualityScores compares observed responses with fitted responses.
type QualityScores struct {
	// R2 is the coefficient of determination with the fitted values as reference.
	R2 float64
	// AdjustedR2 corrects R2 for one predictor.
	AdjustedR2 float64
	// SyX is the standard error of the estimate, sqrt(SSres / (n - 2)).
	SyX  float64
	RMSE float64
	// NormalityP is the Shapiro-Wilk p-value of the residuals, NaN for n < 3.
	NormalityP        float64
	ExplainedVariance float64
	// MaxError is the largest absolute residual.
	MaxError float64
	// RootMAE is the square root of the mean absolute error.
	RootMAE float64
	// MAPE is the mean absolute percentage error as a fraction.
	MAPE float64
}

// Quality computes the fit-quality battery for paired observed and fitted
// responses.
//
// Zero-variance denominators follow the force-finite convention: the ratio
// term becomes 1 when the numerator is also zero and 0 otherwise.
func Quality(observed, fitted []float64) (QualityScores, error) {
	n := len(observed)
	if n != len(fitted) {
		return QualityScores{}, fmt.Errorf("%w: %d observed vs %d fitted values", errs.ErrInvalidInput, n, len(fitted))
	}
	if n == 0 {
		return QualityScores{}, fmt.Errorf("%w: no values", errs.ErrInvalidInput)
	}

	residuals := make([]float64, n)
	var ssRes, sumAbs, sumPct, maxErr float64
	for i := range observed {
		d := observed[i] - fitted[i]
		residuals[i] = d
		ssRes += d * d

		ad := math.Abs(d)
		sumAbs += ad
		sumPct += ad / math.Max(math.Abs(observed[i]), epsilon)
		maxErr = math.Max(maxErr, ad)
	}

	nf := float64(n)
	q := QualityScores{
		R2:       rSquared(fitted, observed),
		SyX:      math.Sqrt(ssRes / (nf - 2)),
		RMSE:     math.Sqrt(ssRes / nf),
		MaxError: maxErr,
		RootMAE:  math.Sqrt(sumAbs / nf),
		MAPE:     sumPct / nf,
	}
	q.AdjustedR2 = 1 - (1-q.R2)*(nf-1)/(nf-2)
	q.ExplainedVariance = forceFinite(stat.PopVariance(residuals, nil), stat.PopVariance(observed, nil))

	if _, p, err := ShapiroWilk(residuals); err == nil {
		q.NormalityP = p
	} else {
		q.NormalityP = math.NaN()
	}

	return q, nil
}

// epsilon is the float64 machine epsilon used to floor MAPE denominators.
const epsilon = 2.220446049250313e-16

// rSquared returns 1 - SSres/SStot around the mean of reference.
func rSquared(reference, predicted []float64) float64 {
	if len(reference) < 2 {
		return math.NaN()
	}

	mean := stat.Mean(reference, nil)
	var num, den float64
	for i := range reference {
		d := reference[i] - predicted[i]
		num += d * d
		den += (reference[i] - mean) * (reference[i] - mean)
	}

	return forceFinite(num, den)
}

// forceFinite returns 1 - num/den, or 1 when both are zero and 0 when only den is.
func forceFinite(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return 1
		}

		return 0
	}

	return 1 - num/den
}
