package curve

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/xepto/errs"
)

// DefaultGridSize is the number of points used for dense curve evaluation.
const DefaultGridSize = 10000

// Grid is a dense, uniformly spaced evaluation of an Evaluator over [lo, hi].
type Grid struct {
	x []float64
	y []float64
}

// NewGrid evaluates ev at n uniformly spaced points between lo and hi inclusive.
//
// Parameters:
//   - ev: Curve to evaluate
//   - lo: First abscissa (log10 dose)
//   - hi: Last abscissa (log10 dose)
//   - n: Number of points (at least 2)
//
// Returns:
//   - *Grid: The evaluated grid
//   - error: errs.ErrInvalidInput when n < 2 or the range is not finite
func NewGrid(ev Evaluator, lo, hi float64, n int) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2 points, got %d", errs.ErrInvalidInput, n)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return nil, fmt.Errorf("%w: invalid grid range [%v, %v]", errs.ErrInvalidInput, lo, hi)
	}

	g := &Grid{
		x: floats.Span(make([]float64, n), lo, hi),
		y: make([]float64, n),
	}
	for i, x := range g.x {
		g.y[i] = ev.Eval(x)
	}

	return g, nil
}

// Len returns the number of grid points.
func (g *Grid) Len() int { return len(g.x) }

// Lo returns the first abscissa.
func (g *Grid) Lo() float64 { return g.x[0] }

// Hi returns the last abscissa.
func (g *Grid) Hi() float64 { return g.x[len(g.x)-1] }

// X returns a copy of the abscissae.
func (g *Grid) X() []float64 { return slices.Clone(g.x) }

// Y returns a copy of the evaluated responses.
func (g *Grid) Y() []float64 { return slices.Clone(g.y) }

// At returns the i-th grid point.
func (g *Grid) At(i int) (x, y float64) { return g.x[i], g.y[i] }

// MinResponse returns the lowest evaluated response.
func (g *Grid) MinResponse() float64 { return floats.Min(g.y) }

// MaxResponse returns the highest evaluated response.
func (g *Grid) MaxResponse() float64 { return floats.Max(g.y) }

// Nearest returns the index of the grid point whose response is closest to
// level. Ties resolve to the lowest index.
func (g *Grid) Nearest(level float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, y := range g.y {
		if d := math.Abs(y - level); d < bestDist {
			best, bestDist = i, d
		}
	}

	return best
}
