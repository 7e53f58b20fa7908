// Package assay runs the full dose-response pipeline for one curve.
//
// Run prepares the frame, fits the curve in two stages, interpolates the dose
// at the configured response level, resolves the IC50 and computes the area
// scores. The outcome is a Result record, whose Fields method yields the
// table columns in order, and a Plot description for an external renderer.
//
//	res, plot, err := assay.Run(assay.Curve{
//		Drug:           "drug-a",
//		Concentrations: []float64{1, 10, 100, 1000, 10000},
//		Responses:      []float64{1, 9, 50, 91, 99},
//		Unit:           frame.Nanomolar,
//	}, assay.WithQualityScores(true))
package assay
