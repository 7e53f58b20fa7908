package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/internal/pool"
)

const (
	lambdaInit = 1e-3
	lambdaUp   = 10.0
	lambdaDown = 10.0
	lambdaMin  = 1e-12
	lambdaMax  = 1e16
	diagFloor  = 1e-12
)

// solution is the outcome of one bounded least-squares solve.
type solution struct {
	params      curve.Params
	residuals   []float64 // model - data
	cost        float64   // sum of squared residuals
	evaluations int
	stderr      [curve.NumParams]float64
	hasStderr   bool
}

// solver minimises the squared 4PL residuals of (x, y) inside a box using a
// projected Levenberg-Marquardt iteration with an analytic Jacobian.
type solver struct {
	x, y   []float64
	bounds Bounds
	cfg    *Config
	nfev   int
}

func newSolver(x, y []float64, bounds Bounds, cfg *Config) (*solver, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d doses vs %d responses", errs.ErrInvalidInput, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no data points", errs.ErrInvalidInput)
	}
	if err := bounds.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidInput, err)
	}

	return &solver{x: x, y: y, bounds: bounds, cfg: cfg}, nil
}

// residuals fills r with model - data at p and returns the cost.
// Non-finite costs are reported as +Inf.
func (s *solver) residuals(p [curve.NumParams]float64, r []float64) float64 {
	s.nfev++
	params := curve.FromVector(p)
	for i, x := range s.x {
		r[i] = params.Eval(x) - s.y[i]
	}

	cost := floats.Dot(r, r)
	if math.IsNaN(cost) {
		return math.Inf(1)
	}

	return cost
}

// jacobian fills J (n x 4) with d(residual)/d(param) at p.
func (s *solver) jacobian(p [curve.NumParams]float64, J *mat.Dense) {
	params := curve.FromVector(p)
	for i, x := range s.x {
		g := params.Gradient(x)
		J.SetRow(i, g[:])
	}
}

// solve runs the iteration from seed.
func (s *solver) solve(seed curve.Params) (*solution, error) {
	n := len(s.x)
	p := s.bounds.Clip(seed.Vector())

	r := make([]float64, n)
	cost := s.residuals(p, r)

	trial, release := pool.GetFloat64Slice(n)
	defer release()

	J := mat.NewDense(n, curve.NumParams, nil)
	lambda := lambdaInit

	for {
		s.jacobian(p, J)

		var grad [curve.NumParams]float64
		for j := range curve.NumParams {
			grad[j] = floats.Dot(mat.Col(nil, j, J), r)
		}

		free := s.freeSet(p, grad)
		if len(free) == 0 || maxAbs(grad, free) <= s.cfg.GTol {
			break
		}

		jtj := normalMatrix(J, free)
		accepted := false
		converged := false

		for !accepted {
			if s.nfev >= s.cfg.MaxEvaluations {
				return nil, fmt.Errorf("%w: evaluation budget of %d exhausted (cost %g)",
					errs.ErrFitDivergence, s.cfg.MaxEvaluations, cost)
			}

			step, ok := dampedStep(jtj, grad, free, lambda)
			if !ok {
				lambda *= lambdaUp
				if lambda > lambdaMax {
					converged = true
					break
				}

				continue
			}

			next := p
			for k, j := range free {
				next[j] += step[k]
			}
			next = s.bounds.Clip(next)

			trialCost := s.residuals(next, trial)
			if trialCost < cost {
				accepted = true
				reduction := cost - trialCost
				moved := stepNorm(p, next)

				p = next
				copy(r, trial)
				cost = trialCost
				lambda = math.Max(lambda/lambdaDown, lambdaMin)

				if reduction <= s.cfg.FTol*cost || moved <= s.cfg.XTol*(vecNorm(p)+s.cfg.XTol) {
					converged = true
				}

				break
			}

			lambda *= lambdaUp
			if lambda > lambdaMax {
				converged = true
				break
			}
		}

		if converged || cost == 0 {
			break
		}
	}

	if math.IsInf(cost, 0) {
		return nil, fmt.Errorf("%w: non-finite residuals at %s", errs.ErrFitDivergence, curve.FromVector(p))
	}

	sol := &solution{
		params:      curve.FromVector(p),
		residuals:   r,
		cost:        cost,
		evaluations: s.nfev,
	}
	s.jacobian(p, J)
	sol.stderr, sol.hasStderr = standardErrors(J, cost, n)

	return sol, nil
}

// freeSet returns the parameter indices that may move: parameters pinned at a
// bound with the descent direction pointing outside are frozen.
func (s *solver) freeSet(p, grad [curve.NumParams]float64) []int {
	free := make([]int, 0, curve.NumParams)
	for j := range curve.NumParams {
		lo, hi := s.bounds.Lower[j], s.bounds.Upper[j]
		switch {
		case lo == hi:
			continue
		case p[j] <= lo && grad[j] > 0:
			continue
		case p[j] >= hi && grad[j] < 0:
			continue
		}
		free = append(free, j)
	}

	return free
}

// normalMatrix returns JᵀJ restricted to the free columns.
func normalMatrix(J *mat.Dense, free []int) *mat.SymDense {
	m := len(free)
	jtj := mat.NewSymDense(m, nil)
	rows, _ := J.Dims()
	for a := range m {
		for b := a; b < m; b++ {
			var sum float64
			for i := range rows {
				sum += J.At(i, free[a]) * J.At(i, free[b])
			}
			jtj.SetSym(a, b, sum)
		}
	}

	return jtj
}

// dampedStep solves (JᵀJ + λ·D) δ = -g for the free parameters, where D is
// the floored diagonal of JᵀJ.
func dampedStep(jtj *mat.SymDense, grad [curve.NumParams]float64, free []int, lambda float64) ([]float64, bool) {
	m := len(free)
	a := mat.NewSymDense(m, nil)
	a.CopySym(jtj)
	for k := range m {
		d := math.Max(jtj.At(k, k), diagFloor)
		a.SetSym(k, k, a.At(k, k)+lambda*d)
	}

	rhs := mat.NewVecDense(m, nil)
	for k, j := range free {
		rhs.SetVec(k, -grad[j])
	}

	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, false
	}

	var delta mat.VecDense
	if err := chol.SolveVecTo(&delta, rhs); err != nil {
		return nil, false
	}

	step := make([]float64, m)
	for k := range m {
		step[k] = delta.AtVec(k)
		if math.IsNaN(step[k]) || math.IsInf(step[k], 0) {
			return nil, false
		}
	}

	return step, true
}

// standardErrors estimates parameter standard errors from the covariance
// (JᵀJ)⁻¹ · SSR / (n - p). It reports false when n <= p or JᵀJ is singular.
func standardErrors(J *mat.Dense, cost float64, n int) ([curve.NumParams]float64, bool) {
	var out [curve.NumParams]float64
	dof := n - curve.NumParams
	if dof <= 0 {
		return out, false
	}

	all := []int{curve.IdxSlope, curve.IdxMin, curve.IdxMax, curve.IdxLog10IC50}
	var chol mat.Cholesky
	if !chol.Factorize(normalMatrix(J, all)) {
		return out, false
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return out, false
	}

	scale := cost / float64(dof)
	for j := range curve.NumParams {
		v := inv.At(j, j) * scale
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return out, false
		}
		out[j] = math.Sqrt(v)
	}

	return out, true
}

func maxAbs(v [curve.NumParams]float64, idx []int) float64 {
	m := 0.0
	for _, j := range idx {
		m = math.Max(m, math.Abs(v[j]))
	}

	return m
}

func vecNorm(v [curve.NumParams]float64) float64 {
	return floats.Norm(v[:], 2)
}

func stepNorm(a, b [curve.NumParams]float64) float64 {
	return floats.Distance(a[:], b[:], 2)
}
