// Package fit estimates 4PL curve parameters from dose-response data.
//
// Fitting runs as a small state machine:
//
//	StageInitial -> StageRefined -> [StageLowSlopeRetry] -> StageFinal
//
// Initial performs a coarse bounded least-squares fit from fixed seeds and
// applies heuristic corrections tuned for percent inhibition data: clamped
// minimum and maximum, a trailing moving-average plateau rule for the maximum,
// and an ordered table of log10IC50 overrides for flat, saturated or
// out-of-range curves.
//
// Refine re-fits inside tighter bounds derived from the initial estimate,
// from two starting points, and keeps the attempt with the smaller residual
// standard deviation. Near-flat results (slope <= 0.2) get a third attempt
// with the slope confined to [0.1, 2.5].
//
// Both stages share a projected Levenberg-Marquardt solver with an analytic
// Jacobian. A solve that exhausts its evaluation budget returns an error
// wrapping errs.ErrFitDivergence.
package fit
