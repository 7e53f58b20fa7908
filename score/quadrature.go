package score

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// Tolerance is the absolute and relative error target of Integrate.
	Tolerance = 1.49e-8
	// maxDepth bounds the bisection depth of Integrate.
	maxDepth = 50
	// panelNodes is the Gauss-Legendre order of each panel.
	panelNodes = 21
)

// Integrate returns the definite integral of f over [a, b].
//
// The interval is bisected recursively until the two half-panel estimates
// agree with the whole-panel estimate within Tolerance (absolute or
// relative), each panel integrated with a fixed-order Gauss-Legendre rule.
func Integrate(f func(float64) float64, a, b float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return math.NaN()
	case a == b:
		return 0
	case a > b:
		return -Integrate(f, b, a)
	}

	return adapt(f, a, b, panel(f, a, b), 0)
}

func panel(f func(float64) float64, a, b float64) float64 {
	return quad.Fixed(f, a, b, panelNodes, quad.Legendre{}, 0)
}

func adapt(f func(float64) float64, a, b, whole float64, depth int) float64 {
	mid := a + (b-a)/2
	left, right := panel(f, a, mid), panel(f, mid, b)
	sum := left + right

	if depth >= maxDepth || math.IsNaN(sum) || math.Abs(sum-whole) <= math.Max(Tolerance, Tolerance*math.Abs(sum)) {
		return sum
	}

	return adapt(f, a, mid, left, depth+1) + adapt(f, mid, b, right, depth+1)
}
