// Package xepto computes dose-response metrics from concentration series.
//
// A curve is fitted with a bounded four-parameter logistic model in two
// stages, and the fitted curve is then summarised by IC50, the dose at a
// chosen response level, AUC, three drug sensitivity scores and the windowed
// xepto score.
//
// # Core Features
//
//   - Two-stage bounded 4PL fit with low-slope retry and IC50 standard error
//   - Ordered, auditable override rules for flat and non-crossing curves
//   - Adaptive Gauss-Legendre integration of every area score
//   - Optional fit-quality battery (R², RMSE, Shapiro-Wilk normality, ...)
//   - Renderer-independent plot description
//   - Deterministic: identical input always yields identical results
//
// # Basic Usage
//
//	res, _, err := xepto.Analyze(
//	    []float64{1, 10, 100, 1000, 10000},
//	    []float64{1, 9, 50, 91, 99},
//	    "Nanomolar",
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range res.Fields() {
//	    fmt.Println(f.Name, f.Value)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the assay
// package. Replicate aggregation and concurrent batch runs live in the batch
// package, table encoding in report and chart rendering in chart.
package xepto

import (
	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/hash"
)

// DefaultUnit is the concentration unit assumed when none is given.
const DefaultUnit = frame.Nanomolar

// Analyze fits and scores one unlabeled curve.
//
// Parameters:
//   - concentrations: tested concentrations in unit, any order
//   - responses: percent inhibition at each concentration
//   - unit: unit name such as "Nanomolar"; empty selects DefaultUnit
//   - opts: pipeline options (see assay.Option)
//
// Returns:
//   - *assay.Result: the result record
//   - *assay.Plot: the plot description
//   - error: errs.ErrInvalidInput for bad data or an unknown unit,
//     errs.ErrFitDivergence when the solver fails
//
// Example:
//
//	res, plot, err := xepto.Analyze(conc, resp, "Micromolar",
//	    assay.WithQualityScores(true),
//	    assay.WithBaseline(5),
//	)
func Analyze(concentrations, responses []float64, unit string, opts ...assay.Option) (*assay.Result, *assay.Plot, error) {
	u := DefaultUnit
	if unit != "" {
		var err error
		if u, err = frame.ParseUnit(unit); err != nil {
			return nil, nil, err
		}
	}

	return assay.Run(assay.Curve{
		Concentrations: concentrations,
		Responses:      responses,
		Unit:           u,
	}, opts...)
}

// AnalyzeCurve fits and scores a labeled curve. A zero Unit selects DefaultUnit.
func AnalyzeCurve(c assay.Curve, opts ...assay.Option) (*assay.Result, *assay.Plot, error) {
	if c.Unit == 0 {
		c.Unit = DefaultUnit
	}

	return assay.Run(c, opts...)
}

// CurveID returns the 64-bit identity of a curve's labels, typically
// experiment, cell line and drug name.
//
// Example:
//
//	id := xepto.CurveID("exp-1", "HeLa", "drug-a")
func CurveID(labels ...string) uint64 {
	return hash.CurveID(labels)
}
