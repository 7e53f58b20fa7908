package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/internal/policy"
)

// FlatCurveNudge is added to Max when the corrected Min and Max coincide.
const FlatCurveNudge = 0.001

// InitialEstimate is the corrected outcome of the coarse bounded fit.
type InitialEstimate struct {
	Min       float64
	Max       float64
	Slope     float64
	Log10IC50 float64

	// Raw holds the unmodified solver parameters.
	Raw curve.Params
	// Overrides names the log10IC50 override rules that fired.
	Overrides []string
	// Nudged is true when Max was raised by FlatCurveNudge.
	Nudged      bool
	Evaluations int
}

// initialInput is what the log10IC50 override rules look at.
type initialInput struct {
	x, y     []float64
	min, max float64
	fitted   float64
}

// initialOverrides are the log10IC50 corrections applied after the coarse fit.
var initialOverrides = []policy.Group[initialInput, float64]{
	{
		{Name: "min>=max", When: func(in initialInput) bool { return in.min >= in.max }, Then: highDose},
		{Name: "above-range", When: func(in initialInput) bool { return in.fitted > floats.Max(in.x) }, Then: highDose},
		{Name: "below-range", When: func(in initialInput) bool { return in.fitted < floats.Min(in.x) }, Then: lowDose},
	},
	{
		{Name: "all-negative", When: func(in initialInput) bool { return floats.Max(in.y) < 0 }, Then: highDose},
		{Name: "all-saturated", When: func(in initialInput) bool { return floats.Min(in.y) > 100 }, Then: lowDose},
	},
	{
		{Name: "weak-response", When: weakResponse, Then: highDose},
	},
}

func highDose(in initialInput) float64 { return floats.Max(in.x) }
func lowDose(in initialInput) float64  { return floats.Min(in.x) }

// weakResponse reports whether the mean response of all but the last two
// points is below 5%.
func weakResponse(in initialInput) bool {
	if len(in.y) <= 2 {
		return false
	}

	return stat.Mean(in.y[:len(in.y)-2], nil) < 5
}

// Initial runs the coarse bounded 4PL fit and its heuristic corrections.
//
// The solve starts from slope=1, min=0, max=100, log10IC50=median(x) within
// slope∈[0,4], min∈[0,max(obsMin,5)], max∈[min(obsMax,95),100] and
// log10IC50∈[min(x),max(x)].
//
// Parameters:
//   - x: Log10 molar doses in ascending order
//   - y: Observed responses (percent inhibition)
//   - opts: Solver options
//
// Returns:
//   - *InitialEstimate: Corrected min, max, slope and log10IC50
//   - error: errs.ErrInvalidInput for unusable data, errs.ErrFitDivergence
//     when the solver exhausts its budget
func Initial(x, y []float64, opts ...Option) (*InitialEstimate, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) || len(x) == 0 {
		return nil, fmt.Errorf("%w: %d doses vs %d responses", errs.ErrInvalidInput, len(x), len(y))
	}

	obsMin, obsMax := floats.Min(y), floats.Max(y)
	bounds := NewBounds(
		curve.Params{Slope: 0, Min: 0, Max: math.Min(obsMax, 95), Log10IC50: floats.Min(x)},
		curve.Params{Slope: 4, Min: math.Max(obsMin, 5), Max: 100, Log10IC50: floats.Max(x)},
	)
	seed := curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: median(x)}

	s, err := newSolver(x, y, bounds, cfg)
	if err != nil {
		return nil, err
	}
	sol, err := s.solve(seed)
	if err != nil {
		cfg.Logger.Debug().Err(err).Str("stage", StageInitial.String()).Msg("initial fit failed")
		return nil, fmt.Errorf("initial fit: %w", err)
	}

	est := &InitialEstimate{
		Slope:       sol.params.Slope,
		Raw:         sol.params,
		Evaluations: sol.evaluations,
	}
	est.Min = math.Min(clamp(obsMin, 0, 99), clamp(sol.params.Min, 0, 99))
	est.Max = correctedMax(y, obsMax, sol.params.Max)

	est.Log10IC50, est.Overrides = policy.Apply(initialInput{
		x:      x,
		y:      y,
		min:    est.Min,
		max:    est.Max,
		fitted: sol.params.Log10IC50,
	}, sol.params.Log10IC50, initialOverrides...)

	est.Max, est.Nudged = separate(est.Min, est.Max)

	cfg.Logger.Debug().
		Str("stage", StageInitial.String()).
		Stringer("params", sol.params).
		Float64("min", est.Min).
		Float64("max", est.Max).
		Strs("overrides", est.Overrides).
		Int("evaluations", sol.evaluations).
		Msg("initial fit done")

	return est, nil
}

// separate raises max by FlatCurveNudge when it equals min.
func separate(lower, upper float64) (float64, bool) {
	if lower == upper {
		return upper + FlatCurveNudge, true
	}

	return upper, false
}

// correctedMax combines the observed and fitted maxima with the trailing
// moving-average plateau rule.
func correctedMax(y []float64, obsMax, fittedMax float64) float64 {
	pre := math.Max(clamp(obsMax, 1, 100), clamp(fittedMax, 1, 100))

	run := pre
	n := len(y)
	avg := trailingMean(y, 3)
	if last := avg[n-1]; nanMax(avg[:n-1]) > last {
		plateau := math.NaN()
		for i, a := range avg {
			if a > last && (math.IsNaN(plateau) || y[i] > plateau) {
				plateau = y[i]
			}
		}
		run = plateau
	}

	if obsMax > run {
		var sum float64
		var count int
		for _, v := range y {
			if v > run {
				sum += v
				count++
			}
		}
		run = sum/float64(count) + 1
	}

	return math.Max(pre, clamp(run, 1, 100))
}
