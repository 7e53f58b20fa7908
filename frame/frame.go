// Package frame prepares caller-supplied dose-response arrays for curve fitting.
//
// A Frame is the validated working copy of one curve: points sorted by
// concentration, the log10 molar dose of each point, the response (percent
// inhibition) and an optional per-point standard error. Frames are immutable;
// every accessor returns a copy.
//
// # Tie Breaking
//
// When two responses are exactly equal, the whole response column receives a
// deterministic increasing offset of 0.01 × index (after sorting). This keeps
// nearest-value lookups on the fitted curve unambiguous. The offset is a
// reproducibility contract: the same input always receives the same offsets.
package frame

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/xepto/errs"
)

// TieBreakStep is the per-index offset added to responses when duplicates exist.
const TieBreakStep = 0.01

// MinPoints is the minimum number of concentration points accepted.
const MinPoints = 2

// Frame is an immutable, sorted dose-response series for a single curve.
type Frame struct {
	unit          Unit
	concentration []float64
	log10Dose     []float64
	response      []float64
	sem           []float64 // nil when no SEM was supplied
	tieBroken     bool
}

// New validates the input arrays and builds a Frame.
//
// Parameters:
//   - concentrations: Concentrations in the caller's unit (positive, finite)
//   - responses: Percent inhibition for each concentration (finite)
//   - sem: Optional per-point standard error (nil to omit, NaN where unknown)
//   - unit: Concentration unit of the caller
//
// Returns:
//   - *Frame: The sorted, validated frame
//   - error: An error wrapping errs.ErrInvalidInput when validation fails
func New(concentrations, responses, sem []float64, unit Unit) (*Frame, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %w: %d", errs.ErrInvalidInput, errs.ErrUnknownUnit, unit)
	}
	if len(concentrations) != len(responses) {
		return nil, fmt.Errorf("%w: %d concentrations vs %d responses",
			errs.ErrInvalidInput, len(concentrations), len(responses))
	}
	if sem != nil && len(sem) != len(concentrations) {
		return nil, fmt.Errorf("%w: %d concentrations vs %d SEM values",
			errs.ErrInvalidInput, len(concentrations), len(sem))
	}
	if len(concentrations) < MinPoints {
		return nil, fmt.Errorf("%w: need at least %d points, got %d",
			errs.ErrInvalidInput, MinPoints, len(concentrations))
	}

	for i := range concentrations {
		c := concentrations[i]
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return nil, fmt.Errorf("%w: concentration[%d] = %v must be positive and finite",
				errs.ErrInvalidInput, i, c)
		}
		if r := responses[i]; math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: response[%d] = %v must be finite", errs.ErrInvalidInput, i, r)
		}
		if sem != nil {
			if s := sem[i]; math.IsInf(s, 0) || s < 0 {
				return nil, fmt.Errorf("%w: sem[%d] = %v must be non-negative and finite or NaN",
					errs.ErrInvalidInput, i, s)
			}
		}
	}

	if floats.Min(concentrations) == floats.Max(concentrations) {
		return nil, fmt.Errorf("%w: all concentrations are equal", errs.ErrInvalidInput)
	}

	n := len(concentrations)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case concentrations[a] < concentrations[b]:
			return -1
		case concentrations[a] > concentrations[b]:
			return 1
		default:
			return 0
		}
	})

	f := &Frame{
		unit:          unit,
		concentration: make([]float64, n),
		log10Dose:     make([]float64, n),
		response:      make([]float64, n),
	}
	if sem != nil {
		f.sem = make([]float64, n)
	}

	factor := unit.Factor()
	for i, idx := range order {
		f.concentration[i] = concentrations[idx]
		f.log10Dose[i] = math.Log10(concentrations[idx] * factor)
		f.response[i] = responses[idx]
		if sem != nil {
			f.sem[i] = sem[idx]
		}
	}

	if hasDuplicates(f.response) {
		for i := range f.response {
			f.response[i] += TieBreakStep * float64(i)
		}
		f.tieBroken = true
	}

	return f, nil
}

// hasDuplicates reports whether any two values are exactly equal.
func hasDuplicates(values []float64) bool {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}

	return false
}

// Len returns the number of points.
func (f *Frame) Len() int { return len(f.concentration) }

// Unit returns the caller's concentration unit.
func (f *Frame) Unit() Unit { return f.unit }

// HasSEM reports whether per-point standard errors were supplied.
func (f *Frame) HasSEM() bool { return f.sem != nil }

// TieBroken reports whether the duplicate-response offset was applied.
func (f *Frame) TieBroken() bool { return f.tieBroken }

// Concentrations returns the sorted concentrations in the caller's unit.
func (f *Frame) Concentrations() []float64 { return slices.Clone(f.concentration) }

// Log10Doses returns log10 of the molar concentration of each point.
func (f *Frame) Log10Doses() []float64 { return slices.Clone(f.log10Dose) }

// Responses returns the (tie-broken) responses in concentration order.
func (f *Frame) Responses() []float64 { return slices.Clone(f.response) }

// SEM returns the per-point standard errors, or nil when absent.
func (f *Frame) SEM() []float64 {
	if f.sem == nil {
		return nil
	}

	return slices.Clone(f.sem)
}

// MinConcentration returns the lowest tested concentration in the caller's unit.
func (f *Frame) MinConcentration() float64 { return f.concentration[0] }

// MaxConcentration returns the highest tested concentration in the caller's unit.
func (f *Frame) MaxConcentration() float64 { return f.concentration[len(f.concentration)-1] }

// MinLog10Dose returns the lowest log10 molar dose.
func (f *Frame) MinLog10Dose() float64 { return f.log10Dose[0] }

// MaxLog10Dose returns the highest log10 molar dose.
func (f *Frame) MaxLog10Dose() float64 { return f.log10Dose[len(f.log10Dose)-1] }

// MinResponse returns the lowest observed response.
func (f *Frame) MinResponse() float64 { return floats.Min(f.response) }

// MaxResponse returns the highest observed response.
func (f *Frame) MaxResponse() float64 { return floats.Max(f.response) }
