// Package curve implements the four-parameter logistic (4PL) dose-response model.
//
// The package provides three things shared by fitting, scoring and plotting:
//
//   - Params: the parameter set {Slope, Min, Max, Log10IC50} with evaluation and
//     an analytic gradient used by the least-squares solver
//   - Curve: an immutable fitted curve implementing Evaluator
//   - Grid: a dense uniform evaluation of a curve used for interpolation and plots
//
// # Model
//
// Responses are percent inhibition and doses are log10 molar concentrations:
//
//	y = Min + (Max - Min) / (1 + 10^(Slope * (Log10IC50 - x)))
//
// For Slope >= 0 the response is monotonically non-decreasing in x and always
// lies between Min and Max.
//
// # Usage
//
//	c := curve.New(curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -7})
//	grid, err := curve.NewGrid(c, -9, -5, curve.DefaultGridSize)
//	if err != nil {
//	    return err
//	}
//	idx := grid.Nearest(50)
package curve
