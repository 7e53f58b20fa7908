package potency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/frame"
)

func grid(t *testing.T, p curve.Params, lo, hi float64) *curve.Grid {
	t.Helper()
	g, err := curve.NewGrid(curve.New(p), lo, hi, curve.DefaultGridSize)
	require.NoError(t, err)

	return g
}

func TestAdjustRange(t *testing.T) {
	assert.Equal(t, Range{Min: 0, Max: 100}, AdjustRange(-3, 120, 2, 90))
	assert.Equal(t, Range{Min: 4, Max: 95}, AdjustRange(5, 95, 4, 80))
}

func TestInterpolate(t *testing.T) {
	t.Run("straddle", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: 0, Max: 100}, DefaultLevel, frame.Nanomolar)

		assert.Equal(t, RegimeStraddle, got.Regime)
		assert.InDelta(t, 100.0, got.Dose, 0.1)
		assert.Equal(t, 50.0, got.Response)
		assert.InDelta(t, math.Log10(got.Dose*1e-9), got.Log10Dose, 1e-12)
	})

	t.Run("above level and never drops", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 60, Max: 100, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: 60, Max: 100}, DefaultLevel, frame.Nanomolar)

		assert.Equal(t, RegimeAboveLevel, got.Regime)
		assert.Equal(t, 0, got.Index)
		assert.Equal(t, 1.0, got.Dose)
		assert.InDelta(t, 60.4, got.Response, 0.05)
	})

	t.Run("above level but curve crosses", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: 55, Max: 100}, DefaultLevel, frame.Nanomolar)

		assert.Equal(t, RegimeAboveLevel, got.Regime)
		assert.Equal(t, 50.0, got.Response)
	})

	t.Run("below level and never reaches", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 30, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: 0, Max: 30}, DefaultLevel, frame.Micromolar)

		assert.Equal(t, RegimeBelowLevel, got.Regime)
		assert.Equal(t, g.Len()-1, got.Index)
		assert.Equal(t, 10.0, got.Dose)
		assert.InDelta(t, 29.7, got.Response, 0.05)
	})

	t.Run("midpoint fallback", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: math.NaN(), Max: math.NaN()}, DefaultLevel, frame.Nanomolar)
		assert.Equal(t, RegimeMidpoint, got.Regime)
	})

	t.Run("dose rounding to zero keeps grid abscissa", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -12}, -13, -11)
		got := Interpolate(g, Range{Min: 0, Max: 100}, DefaultLevel, frame.Nanomolar)

		assert.Equal(t, 0.0, got.Dose)
		x, _ := g.At(got.Index)
		assert.Equal(t, x, got.Log10Dose)
	})

	t.Run("custom level", func(t *testing.T) {
		g := grid(t, curve.Params{Slope: 1, Min: 0, Max: 100, Log10IC50: -7}, -9, -5)
		got := Interpolate(g, Range{Min: 0, Max: 100}, 90, frame.Nanomolar)
		assert.Equal(t, 90.0, got.Response)
		assert.InDelta(t, 900.0, got.Dose, 2)
	})
}

func TestResolveIC50(t *testing.T) {
	base := IC50Input{
		Log10IC50:        -7,
		Slope:            1,
		FittedMin:        5,
		ObservedMin:      3,
		ObservedMax:      95,
		MinConcentration: 1,
		MaxConcentration: 10000,
		Unit:             frame.Nanomolar,
	}

	t.Run("fitted value", func(t *testing.T) {
		got := ResolveIC50(base)
		assert.InDelta(t, 100.0, got.Value, 1e-9)
		assert.Equal(t, got.Fitted, got.Value)
		assert.Empty(t, got.Rules)
	})

	tests := []struct {
		name  string
		edit  func(*IC50Input)
		want  float64
		rules []string
	}{
		{"negative slope", func(in *IC50Input) { in.Slope = -1 }, 10000, []string{RuleNegativeSlope}},
		{"saturated fit", func(in *IC50Input) { in.FittedMin = 95 }, 1, []string{RuleSaturatedFit}},
		{"no response", func(in *IC50Input) { in.ObservedMin, in.ObservedMax = 1, 8 }, 10000, []string{RuleNoResponse}},
		{"full response", func(in *IC50Input) { in.ObservedMin, in.ObservedMax = 60, 99 }, 1, []string{RuleFullResponse}},
		{
			"last write wins",
			func(in *IC50Input) { in.FittedMin, in.ObservedMin, in.ObservedMax = 95, 2, 9 },
			10000,
			[]string{RuleSaturatedFit, RuleNoResponse},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.edit(&in)
			got := ResolveIC50(in)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.rules, got.Rules)
		})
	}
}
