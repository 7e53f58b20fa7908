package curve

// Evaluator is implemented by anything that maps a log10 molar dose to a response.
type Evaluator interface {
	// Eval returns the response at log10 dose x.
	Eval(x float64) float64
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc func(x float64) float64

// Eval calls f(x).
func (f EvaluatorFunc) Eval(x float64) float64 { return f(x) }

// Curve is an immutable fitted 4PL curve.
//
// Every later stage (interpolation, scoring, plotting) evaluates the same Curve
// value, so what was fit is exactly what is integrated and displayed.
type Curve struct {
	params Params
}

var _ Evaluator = Curve{}

// New returns a Curve for the given parameters.
func New(p Params) Curve {
	return Curve{params: p}
}

// Params returns the curve parameters.
func (c Curve) Params() Params {
	return c.params
}

// Eval returns the fitted response at log10 dose x.
func (c Curve) Eval(x float64) float64 {
	return c.params.Eval(x)
}

// EvalAll evaluates the curve at each x and returns a new slice.
func (c Curve) EvalAll(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = c.params.Eval(x)
	}

	return ys
}

// Offset returns an Evaluator for ev minus a constant.
func Offset(ev Evaluator, offset float64) Evaluator {
	return EvaluatorFunc(func(x float64) float64 {
		return ev.Eval(x) - offset
	})
}
