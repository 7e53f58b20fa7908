package score

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/xepto/errs"
)

// Royston (1995) polynomial coefficients.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ErrTooFewSamples is returned by ShapiroWilk for fewer than 3 values.
var ErrTooFewSamples = errors.New("shapiro-wilk needs at least 3 samples")

// ShapiroWilk tests the null hypothesis that x was drawn from a normal
// distribution and returns the W statistic and its p-value, using Royston's
// approximation for the coefficients and the null distribution.
//
// Samples with zero range return W = 1 and p = 1.
func ShapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < 3 {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %w, got %d", errs.ErrInvalidInput, ErrTooFewSamples, n)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.NaN(), math.NaN(), fmt.Errorf("%w: sample[%d] = %v is not finite", errs.ErrInvalidInput, i, v)
		}
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if sorted[n-1]-sorted[0] == 0 {
		return 1, 1, nil
	}

	coef := swilkCoefficients(n)
	mean := floats.Sum(sorted) / float64(n)

	var num, ssx float64
	for i, v := range sorted {
		num += coef[i] * v
		ssx += (v - mean) * (v - mean)
	}
	w = num * num / (floats.Dot(coef, coef) * ssx)
	w = math.Min(w, 1)

	return w, swilkPValue(w, n), nil
}

// swilkCoefficients returns the antisymmetric weights applied to the sorted sample.
func swilkCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)

	if n == 3 {
		a[0] = math.Sqrt(0.5)
	} else {
		m := make([]float64, half)
		var summ2 float64
		for i := range half {
			m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
			summ2 += m[i] * m[i]
		}
		summ2 *= 2
		ssumm2 := math.Sqrt(summ2)
		rsn := 1 / math.Sqrt(float64(n))

		a1 := polyval(swC1, rsn) - m[0]/ssumm2
		first := 1
		var fac float64
		if n > 5 {
			a2 := -m[1]/ssumm2 + polyval(swC2, rsn)
			fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
			a[1] = a2
			first = 2
		} else {
			fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
		}
		a[0] = a1
		for i := first; i < half; i++ {
			a[i] = -m[i] / fac
		}
	}

	coef := make([]float64, n)
	for i, v := range a {
		coef[i] = -v
		coef[n-1-i] = v
	}

	return coef
}

func swilkPValue(w float64, n int) float64 {
	if n == 3 {
		return math.Max(0, 6/math.Pi*(math.Asin(math.Sqrt(w))-math.Pi/3))
	}

	nf := float64(n)
	y := math.Log(1 - w)

	var m, s float64
	if n <= 11 {
		gamma := polyval(swG, nf)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = polyval(swC3, nf)
		s = math.Exp(polyval(swC4, nf))
	} else {
		ln := math.Log(nf)
		m = polyval(swC5, ln)
		s = math.Exp(polyval(swC6, ln))
	}

	return distuv.Normal{Mu: m, Sigma: s}.Survival(y)
}

// polyval evaluates c[0] + c[1]x + c[2]x² + ...
func polyval(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}

	return r
}
