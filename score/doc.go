// Package score computes the summary metrics of a fitted dose-response curve.
//
// All areas are integrals over log10 molar dose computed with Integrate, an
// adaptive Gauss-Legendre quadrature:
//
//   - AUC: area between the curve and a baseline over the tested range
//   - AAC: area between the curve maximum and the curve
//   - Xepto: windowed efficacy score starting at the interpolated dose
//   - DSS: three variants of the normalised drug sensitivity score
//
// Quality compares observed and fitted responses (R², adjusted R², Sy.x,
// RMSE, Shapiro-Wilk normality of residuals, explained variance, max error,
// root mean absolute error, mean absolute percentage error).
//
// The DSS guards are reproduced as tuned: DSS2 values above 50 become 0 and
// any variant outside [0, 100] becomes 0. Non-finite inputs yield nil.
package score
