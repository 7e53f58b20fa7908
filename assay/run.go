package assay

import (
	"fmt"
	"math"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/fit"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/numeric"
	"github.com/arloliu/xepto/potency"
	"github.com/arloliu/xepto/score"
)

// Run analyses one curve and returns its Result record and Plot description.
//
// Invalid data fails with errs.ErrInvalidInput and a solver that exhausts its
// budget fails with errs.ErrFitDivergence. Invalid options fail with
// errs.ErrInvalidConfig. Identical inputs always produce identical results.
func Run(c Curve, opts ...Option) (*Result, *Plot, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, nil, err
	}

	fr, err := frame.New(c.Concentrations, c.Responses, c.SEM, c.Unit)
	if err != nil {
		return nil, nil, err
	}

	x, y := fr.Log10Doses(), fr.Responses()

	est, err := fit.Initial(x, y, cfg.fitOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("initial fit of %s/%s/%s: %w", c.Experiment, c.CellLine, c.Drug, err)
	}
	refined, err := fit.Refine(x, y, *est, cfg.fitOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("refined fit of %s/%s/%s: %w", c.Experiment, c.CellLine, c.Drug, err)
	}

	fitted := refined.Curve()
	p := fitted.Params()
	lo, hi := fr.MinLog10Dose(), fr.MaxLog10Dose()

	grid, err := curve.NewGrid(fitted, lo, hi, cfg.GridSize)
	if err != nil {
		return nil, nil, err
	}

	unit := fr.Unit()
	rng := potency.AdjustRange(est.Min, est.Max, p.Min, p.Max)
	interp := potency.Interpolate(grid, rng, cfg.ResponseLevel, unit)

	obsMin, obsMax := fr.MinResponse(), fr.MaxResponse()
	ic50 := potency.ResolveIC50(potency.IC50Input{
		Log10IC50:        p.Log10IC50,
		Slope:            p.Slope,
		FittedMin:        p.Min,
		ObservedMin:      obsMin,
		ObservedMax:      obsMax,
		MinConcentration: fr.MinConcentration(),
		MaxConcentration: fr.MaxConcentration(),
		Unit:             unit,
	})

	baseline := float64(cfg.Baseline)
	dssIn := score.DSSInput{
		IC50:             ic50.Value,
		Slope:            p.Slope,
		MaxResponse:      p.Max,
		MinConcentration: fr.MinConcentration(),
		MaxConcentration: fr.MaxConcentration(),
		Baseline:         baseline,
		Scale:            unit.Factor(),
	}

	res := &Result{
		ID:             c.ID(),
		Experiment:     c.Experiment,
		CellLine:       c.CellLine,
		Drug:           c.Drug,
		IC50:           numeric.Round(ic50.Value, 3),
		Interpolated:   interp.Dose,
		InterpolatedAt: interp.Response,
		AUC:            score.AUC(fitted, lo, hi, baseline),
		DSS1:           score.DSS(dssIn, score.DSS1),
		DSS2:           score.DSS(dssIn, score.DSS2),
		DSS3:           score.DSS(dssIn, score.DSS3),
		Xepto:          score.Xepto(fitted, interp.Log10Dose, cfg.IntegrationLimit, rng.Max, baseline),
		Params:         p,
	}

	if cfg.QualityScores {
		quality, err := score.Quality(y, fitted.EvalAll(x))
		if err != nil {
			return nil, nil, err
		}

		res.Diagnostics = &Diagnostics{
			MinConcentration: fr.MinConcentration(),
			MaxConcentration: fr.MaxConcentration(),
			Count:            fr.Len(),
			Unit:             unit,
			ObservedMin:      numeric.Round(obsMin, 2),
			FittedMin:        numeric.Round(p.Min, 2),
			ObservedMax:      numeric.Round(obsMax, 2),
			FittedMax:        numeric.Round(p.Max, 2),
			Slope:            numeric.Round(p.Slope, 2),
			IC50StdErr:       numeric.RoundPtr(refined.Log10IC50StdErr, 3),
			IC50StdResidual:  numeric.Round(refined.ResidualStd, 3),
			Quality:          quality,
			AAC:              score.AAC(fitted, lo, hi, rng.Max),
			FitStage:         refined.Stage.String(),
			Regime:           string(interp.Regime),
			IC50Rules:        ic50.Rules,
		}
	}

	plot := newPlot(plotInput{
		c:          c,
		gridX:      grid.X(),
		gridY:      grid.Y(),
		x:          x,
		y:          y,
		sem:        fr.SEM(),
		dataMin:    math.Min(obsMin, p.Min),
		dataMax:    math.Max(obsMax, p.Max),
		interpX:    interp.Log10Dose,
		ic50X:      math.Log10(unit.ToMolar(ic50.Value)),
		interpDose: interp.Dose,
		interp:     interp.Response,
		ic50:       ic50.Value,
	})

	cfg.Logger.Debug().
		Uint64("curve_id", res.ID).
		Str("drug", c.Drug).
		Str("stage", refined.Stage.String()).
		Float64("ic50", res.IC50).
		Strs("ic50_rules", ic50.Rules).
		Msg("curve analysed")

	return res, plot, nil
}
