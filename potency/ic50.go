package potency

import (
	"math"

	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/policy"
)

// IC50 override rule names.
const (
	RuleNegativeSlope = "negative-slope"
	RuleSaturatedFit  = "saturated-fit"
	RuleNoResponse    = "no-response"
	RuleFullResponse  = "full-response"
)

// IC50Input is everything the IC50 resolution looks at.
type IC50Input struct {
	Log10IC50 float64
	Slope     float64
	// FittedMin is the refined curve minimum.
	FittedMin float64
	// ObservedMin and ObservedMax are the extreme observed responses.
	ObservedMin float64
	ObservedMax float64
	// MinConcentration and MaxConcentration are in the caller's unit.
	MinConcentration float64
	MaxConcentration float64
	Unit             frame.Unit
}

// IC50 is the resolved potency.
type IC50 struct {
	// Value is in the caller's unit.
	Value float64
	// Fitted is the unmodified 10^log10IC50 in the caller's unit.
	Fitted float64
	// Rules names the overrides that fired, in order.
	Rules []string
}

func maxConc(in IC50Input) float64 { return in.MaxConcentration }
func minConc(in IC50Input) float64 { return in.MinConcentration }

// ic50Overrides are single-rule groups: each that matches overwrites the
// previous value.
var ic50Overrides = []policy.Group[IC50Input, float64]{
	{{Name: RuleNegativeSlope, When: func(in IC50Input) bool { return in.Slope < 0 }, Then: maxConc}},
	{{Name: RuleSaturatedFit, When: func(in IC50Input) bool { return in.FittedMin > 90 }, Then: minConc}},
	{{Name: RuleNoResponse, When: func(in IC50Input) bool { return math.Max(in.ObservedMin, in.ObservedMax) < 10 }, Then: maxConc}},
	{{Name: RuleFullResponse, When: func(in IC50Input) bool { return in.ObservedMin > 50 }, Then: minConc}},
}

// ResolveIC50 converts the fitted log10IC50 to the caller's unit and applies
// the override rules in order:
//
//   - negative slope: maximum tested concentration
//   - refined minimum above 90: minimum tested concentration
//   - observed responses all below 10: maximum tested concentration
//   - observed minimum above 50: minimum tested concentration
//
// Later rules overwrite earlier ones.
func ResolveIC50(in IC50Input) IC50 {
	fitted := in.Unit.FromMolar(math.Pow(10, in.Log10IC50))
	value, rules := policy.Apply(in, fitted, ic50Overrides...)

	return IC50{Value: value, Fitted: fitted, Rules: rules}
}
