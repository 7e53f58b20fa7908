package frame

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/xepto/errs"
)

// Unit represents the concentration unit used by the caller.
type Unit uint8

const (
	// Molar represents concentrations given in mol/L.
	Molar Unit = iota + 1
	// Millimolar represents concentrations given in mmol/L.
	Millimolar
	// Micromolar represents concentrations given in µmol/L.
	Micromolar
	// Nanomolar represents concentrations given in nmol/L.
	Nanomolar
	// Picomolar represents concentrations given in pmol/L.
	Picomolar
)

// unitNames maps Unit to the names used in input tables.
var unitNames = map[Unit]string{
	Molar:      "Molar",
	Millimolar: "Millimolar",
	Micromolar: "Micromolar",
	Nanomolar:  "Nanomolar",
	Picomolar:  "Picomolar",
}

// unitFactors maps Unit to the multiplicative factor converting it to molar.
var unitFactors = map[Unit]float64{
	Molar:      1,
	Millimolar: 1e-3,
	Micromolar: 1e-6,
	Nanomolar:  1e-9,
	Picomolar:  1e-12,
}

// String returns the table name of the unit.
func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}

	return "Unknown"
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	_, ok := unitFactors[u]
	return ok
}

// Factor returns the factor converting a concentration in u to molar.
// It returns 0 for unsupported units.
func (u Unit) Factor() float64 {
	return unitFactors[u]
}

// ToMolar converts a concentration expressed in u to molar.
func (u Unit) ToMolar(concentration float64) float64 {
	return concentration * u.Factor()
}

// FromMolar converts a molar concentration back to u.
func (u Unit) FromMolar(molar float64) float64 {
	return molar / u.Factor()
}

// ParseUnit returns the Unit for a table name such as "Nanomolar".
// Matching is case-insensitive. Unknown names return an error wrapping
// errs.ErrInvalidInput and errs.ErrUnknownUnit.
func ParseUnit(name string) (Unit, error) {
	for u, n := range unitNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return u, nil
		}
	}

	supported := make([]string, 0, len(unitNames))
	for _, n := range unitNames {
		supported = append(supported, n)
	}
	slices.Sort(supported)

	return 0, fmt.Errorf("%w: %w: %q (supported: %s)",
		errs.ErrInvalidInput, errs.ErrUnknownUnit, name, strings.Join(supported, ", "))
}
