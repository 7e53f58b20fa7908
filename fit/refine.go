package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/errs"
)

// LowSlopeThreshold is the refined slope at or below which the low-slope retry runs.
const LowSlopeThreshold = 0.2

// Low-slope retry bounds on the slope.
const (
	RetrySlopeMin = 0.1
	RetrySlopeMax = 2.5
)

// Stage identifies a state of the two-tier fitting state machine.
type Stage uint8

const (
	// StageInitial is the coarse bounded fit.
	StageInitial Stage = iota + 1
	// StageRefined is the pair of refined attempts.
	StageRefined
	// StageLowSlopeRetry is the third attempt with tightened slope bounds.
	StageLowSlopeRetry
	// StageFinal marks a completed fit.
	StageFinal
)

var stageNames = map[Stage]string{
	StageInitial:       "initial",
	StageRefined:       "refined",
	StageLowSlopeRetry: "low-slope-retry",
	StageFinal:         "final",
}

// String returns the stage name.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}

	return "unknown"
}

// Seed identifies which starting point produced the kept refined fit.
type Seed uint8

const (
	// SeedInitial starts log10IC50 at the initial estimate.
	SeedInitial Seed = iota + 1
	// SeedMedian starts log10IC50 at the median log10 dose.
	SeedMedian
	// SeedLowSlope is the low-slope retry, seeded at the initial estimate.
	SeedLowSlope
)

var seedNames = map[Seed]string{
	SeedInitial:  "initial-estimate",
	SeedMedian:   "median-dose",
	SeedLowSlope: "low-slope",
}

// String returns the seed name.
func (s Seed) String() string {
	if name, ok := seedNames[s]; ok {
		return name
	}

	return "unknown"
}

// Refined is the final outcome of the refined fit.
type Refined struct {
	Params curve.Params
	// Log10IC50StdErr is nil when the curvature could not be estimated.
	Log10IC50StdErr *float64
	// Residuals holds model - data at each point.
	Residuals []float64
	// ResidualStd is the population standard deviation of Residuals.
	ResidualStd float64
	Bounds      Bounds
	// Stage is the last state that produced Params: StageRefined or StageLowSlopeRetry.
	Stage       Stage
	Seed        Seed
	Evaluations int
}

// Curve returns the fitted curve.
func (r *Refined) Curve() curve.Curve {
	return curve.New(r.Params)
}

// RefineBounds returns the refined-fit box for an initial estimate.
func RefineBounds(x []float64, init InitialEstimate) Bounds {
	return NewBounds(
		curve.Params{Slope: 0, Min: 0, Max: math.Min(90, 0.9*init.Max), Log10IC50: floats.Min(x)},
		curve.Params{Slope: 4, Min: math.Max(10, 1.1*init.Min), Max: 100, Log10IC50: floats.Max(x)},
	)
}

// attempt is one refined solve and how it was seeded.
type attempt struct {
	seed Seed
	sol  *solution
	std  float64
}

// Refine runs the refined fit seeded from an initial estimate.
//
// Two attempts run inside RefineBounds: one with log10IC50 seeded at the
// initial estimate and one at median(x). The attempt with the lower residual
// standard deviation is kept; when only one converges it is kept. A kept slope
// at or below LowSlopeThreshold triggers a third solve with slope∈[0.1,2.5]
// seeded at the initial log10IC50, whose result is final.
//
// Returns errs.ErrFitDivergence when both refined attempts or the low-slope
// retry fail to converge.
func Refine(x, y []float64, init InitialEstimate, opts ...Option) (*Refined, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	bounds := RefineBounds(x, init)
	seed := curve.Params{Slope: init.Slope, Min: init.Min, Max: init.Max, Log10IC50: init.Log10IC50}

	stage := StageRefined
	var kept attempt
	for stage != StageFinal {
		switch stage {
		case StageRefined:
			kept, err = bestRefinedAttempt(x, y, bounds, seed, cfg)
			if err != nil {
				return nil, err
			}
			stage = StageFinal
			if kept.sol.params.Slope <= LowSlopeThreshold {
				stage = StageLowSlopeRetry
			}

		case StageLowSlopeRetry:
			bounds.Lower[curve.IdxSlope] = RetrySlopeMin
			bounds.Upper[curve.IdxSlope] = RetrySlopeMax
			cfg.Logger.Debug().
				Float64("slope", kept.sol.params.Slope).
				Str("stage", stage.String()).
				Msg("slope below threshold, retrying")

			kept, err = runAttempt(x, y, bounds, seed, SeedLowSlope, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s fit: %w", stage, err)
			}
			stage = StageFinal
		}
	}

	out := &Refined{
		Params:      kept.sol.params,
		Residuals:   kept.sol.residuals,
		ResidualStd: kept.std,
		Bounds:      bounds,
		Stage:       StageRefined,
		Seed:        kept.seed,
		Evaluations: kept.sol.evaluations,
	}
	if kept.seed == SeedLowSlope {
		out.Stage = StageLowSlopeRetry
	}
	if kept.sol.hasStderr {
		se := kept.sol.stderr[curve.IdxLog10IC50]
		out.Log10IC50StdErr = &se
	}

	cfg.Logger.Debug().
		Str("stage", out.Stage.String()).
		Str("seed", out.Seed.String()).
		Stringer("params", out.Params).
		Float64("residual_std", out.ResidualStd).
		Msg("refined fit done")

	return out, nil
}

// bestRefinedAttempt runs the initial-estimate and median-dose attempts and
// keeps the one with the lower residual standard deviation.
func bestRefinedAttempt(x, y []float64, bounds Bounds, seed curve.Params, cfg *Config) (attempt, error) {
	first, errFirst := runAttempt(x, y, bounds, seed, SeedInitial, cfg)

	medianSeed := seed
	medianSeed.Log10IC50 = median(x)
	second, errSecond := runAttempt(x, y, bounds, medianSeed, SeedMedian, cfg)

	switch {
	case errFirst != nil && errSecond != nil:
		return attempt{}, fmt.Errorf("%s fit: %w", StageRefined, errors.Join(errFirst, errSecond))
	case errFirst != nil:
		cfg.Logger.Debug().Err(errFirst).Str("seed", SeedInitial.String()).Msg("refined attempt failed")
		return second, nil
	case errSecond != nil:
		cfg.Logger.Debug().Err(errSecond).Str("seed", SeedMedian.String()).Msg("refined attempt failed")
		return first, nil
	}

	if first.std < second.std {
		return first, nil
	}

	return second, nil
}

func runAttempt(x, y []float64, bounds Bounds, seed curve.Params, tag Seed, cfg *Config) (attempt, error) {
	s, err := newSolver(x, y, bounds, cfg)
	if err != nil {
		return attempt{}, err
	}

	sol, err := s.solve(seed)
	if err != nil {
		if !errors.Is(err, errs.ErrFitDivergence) {
			return attempt{}, err
		}

		return attempt{}, fmt.Errorf("seed %s: %w", tag, err)
	}

	return attempt{seed: tag, sol: sol, std: popStd(sol.residuals)}, nil
}
