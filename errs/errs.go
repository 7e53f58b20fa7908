// Package errs defines the sentinel errors shared by all xepto packages.
//
// Callers should test for these with errors.Is; every package wraps them with
// context using fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrInvalidInput is returned when curve data cannot start the pipeline:
	// mismatched array lengths, too few points, non-finite values or a
	// degenerate concentration series.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownUnit is returned for a concentration unit outside the supported set.
	// It always wraps ErrInvalidInput as well.
	ErrUnknownUnit = errors.New("unknown concentration unit")

	// ErrFitDivergence is returned when the nonlinear solver cannot converge
	// within its evaluation budget on every attempted seeding.
	ErrFitDivergence = errors.New("fit divergence")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPayload is returned when an encoded report cannot be decoded.
	ErrInvalidPayload = errors.New("invalid report payload")
)
