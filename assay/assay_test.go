package assay

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/fit"
	"github.com/arloliu/xepto/frame"
)

// hyperbola returns 100·c/(c+ic50), the slope-1 4PL from 0 to 100 in linear dose.
func hyperbola(conc []float64, ic50 float64) []float64 {
	y := make([]float64, len(conc))
	for i, c := range conc {
		y[i] = 100 * c / (c + ic50)
	}

	return y
}

func cleanCurve() Curve {
	conc := []float64{1, 10, 100, 1000, 10000}

	return Curve{
		Experiment:     "exp-1",
		CellLine:       "HeLa",
		Drug:           "drug-a",
		Concentrations: conc,
		Responses:      hyperbola(conc, 100),
		Unit:           frame.Nanomolar,
	}
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	return names
}

func TestRun_CleanSigmoid(t *testing.T) {
	res, _, err := Run(cleanCurve())
	require.NoError(t, err)

	assert.InEpsilon(t, 100.0, res.IC50, 0.05)
	assert.InEpsilon(t, 100.0, res.Interpolated, 0.05)
	assert.InDelta(t, 50.0, res.InterpolatedAt, 0.5)
	assert.InDelta(t, 1.0, res.Params.Slope, 0.05)
	assert.Greater(t, res.AUC, 0.0)
	assert.Greater(t, res.Xepto, 0.0)

	for _, d := range []*float64{res.DSS1, res.DSS2, res.DSS3} {
		require.NotNil(t, d)
		assert.GreaterOrEqual(t, *d, 0.0)
		assert.LessOrEqual(t, *d, 100.0)
	}
}

func TestRun_XeptoLevelIsFixed(t *testing.T) {
	res, _, err := Run(cleanCurve(), WithResponseLevel(10))
	require.NoError(t, err)

	// the window opens at the 10% dose but still measures against 50%
	assert.InDelta(t, 10.0, res.InterpolatedAt, 0.5)
	assert.InEpsilon(t, 100.0/9, res.Interpolated, 0.05)
	assert.Negative(t, res.Xepto)
}

func TestRun_FieldSets(t *testing.T) {
	t.Run("core only", func(t *testing.T) {
		res, _, err := Run(cleanCurve())
		require.NoError(t, err)

		assert.Nil(t, res.Diagnostics)
		assert.Equal(t, CoreFields, fieldNames(res.Fields()))
	})

	t.Run("with quality scores", func(t *testing.T) {
		res, _, err := Run(cleanCurve(), WithQualityScores(true))
		require.NoError(t, err)
		require.NotNil(t, res.Diagnostics)

		want := slices.Concat(CoreFields, DiagnosticFields)
		assert.Equal(t, want, fieldNames(res.Fields()))

		m := res.Map()
		for _, name := range []string{
			FieldR2, FieldAdjustedR2, FieldRMSE, FieldSyX, FieldExplainedVariance,
			FieldMaxError, FieldRootMAE, FieldMAPE,
		} {
			v, ok := m[name].(float64)
			require.True(t, ok, name)
			assert.False(t, math.IsNaN(v), name)
		}

		p, ok := m[FieldNormalityP].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)

		d := res.Diagnostics
		assert.Equal(t, 5, d.Count)
		assert.Equal(t, "Nanomolar", m[FieldUnit])
		assert.Equal(t, 1.0, d.MinConcentration)
		assert.Equal(t, 10000.0, d.MaxConcentration)
		assert.Greater(t, d.AAC, 0.0)
		assert.Greater(t, d.Quality.R2, 0.99)
	})
}

func TestRun_Idempotent(t *testing.T) {
	first, plot1, err := Run(cleanCurve())
	require.NoError(t, err)
	second, plot2, err := Run(cleanCurve())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Fields(), second.Fields())
	assert.Equal(t, plot1, plot2)
	assert.Equal(t, cleanCurve().ID(), first.ID)
}

func TestRun_Plot(t *testing.T) {
	c := cleanCurve()
	c.SEM = []float64{1, 2, 3, 2, 1}

	res, plot, err := Run(c, WithGridSize(500))
	require.NoError(t, err)

	assert.Equal(t, "Curve for Exp: exp-1 Cell line: HeLa Drug: drug-a", plot.Title)
	assert.Equal(t, XLabel, plot.XLabel)
	assert.Equal(t, YLabel, plot.YLabel)
	assert.Len(t, plot.Curve.X, 500)
	assert.Len(t, plot.Points.Err, 5)
	assert.InDeltaSlice(t, []float64{-9, -8, -7, -6, -5}, plot.Points.X, 1e-12)

	assert.LessOrEqual(t, plot.YMin, 0.0)
	assert.GreaterOrEqual(t, plot.YMax, 100.0)

	require.Len(t, plot.Markers, 2)
	assert.Equal(t, MarkerInterpolated, plot.Markers[0].Kind)
	assert.Equal(t, MarkerIC50, plot.Markers[1].Kind)
	assert.InDelta(t, math.Log10(res.IC50*1e-9), plot.Markers[1].X, 1e-3)

	require.Len(t, plot.Annotations, 2)
	assert.True(t, strings.HasPrefix(plot.Annotations[0].Text, "Interp@ "))
	assert.True(t, strings.HasPrefix(plot.Annotations[1].Text, "IC50 = "))
	assert.Equal(t, plot.YMin+45, plot.Annotations[0].Y)
	assert.Equal(t, plot.YMin+1, plot.Annotations[1].Y)

	_, plot, err = Run(cleanCurve())
	require.NoError(t, err)
	assert.Nil(t, plot.Points.Err)
}

func TestPlotLimits(t *testing.T) {
	lo, hi := plotLimits(5, 90)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 100.0, hi)

	lo, hi = plotLimits(-10, 120)
	assert.Equal(t, -12.0, lo)
	assert.Equal(t, 122.0, hi)
}

func TestRun_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Curve)
	}{
		{name: "length mismatch", mutate: func(c *Curve) {
			c.Concentrations = []float64{0.1, 1, 10, 100, 1000}
			c.Responses = []float64{2, 5, 30, 70, 95, 98}
		}},
		{name: "unknown unit", mutate: func(c *Curve) { c.Unit = 0 }},
		{name: "single point", mutate: func(c *Curve) {
			c.Concentrations = []float64{1}
			c.Responses = []float64{50}
		}},
		{name: "negative concentration", mutate: func(c *Curve) { c.Concentrations = []float64{-1, 10, 100, 1000, 10000} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cleanCurve()
			tt.mutate(&c)

			res, plot, err := Run(c)
			require.ErrorIs(t, err, errs.ErrInvalidInput)
			assert.Nil(t, res)
			assert.Nil(t, plot)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	for name, opt := range map[string]Option{
		"grid size":         WithGridSize(1),
		"baseline":          WithBaseline(100),
		"integration limit": WithIntegrationLimit(0),
		"response level":    WithResponseLevel(0),
		"max evaluations":   WithMaxEvaluations(0),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Run(cleanCurve(), opt)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func TestRun_Divergence(t *testing.T) {
	c := cleanCurve()
	c.Responses = hyperbola(c.Concentrations, 300)

	_, _, err := Run(c, WithMaxEvaluations(1))
	require.ErrorIs(t, err, errs.ErrFitDivergence)
	assert.Contains(t, err.Error(), "exp-1/HeLa/drug-a")
}

func TestRun_FlatCurve(t *testing.T) {
	c := cleanCurve()
	c.Responses = []float64{10, 10, 10, 10, 10}

	res, _, err := Run(c, WithQualityScores(true))
	require.NoError(t, err)

	assert.Equal(t, c.Concentrations[len(c.Concentrations)-1], res.IC50)
	assert.False(t, math.IsNaN(res.AUC))
	assert.False(t, math.IsNaN(res.Xepto))
	require.NotNil(t, res.Diagnostics)
	assert.Equal(t, fit.StageLowSlopeRetry.String(), res.Diagnostics.FitStage)
}

func TestRun_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, _, err := Run(cleanCurve(), WithLogger(&logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "curve analysed")
	assert.Contains(t, buf.String(), "refined fit done")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.Baseline)
	assert.Equal(t, 1.0, cfg.IntegrationLimit)
	assert.Equal(t, 50.0, cfg.ResponseLevel)
	assert.Equal(t, 10000, cfg.GridSize)
	assert.Equal(t, 100000, cfg.MaxEvaluations)
	assert.False(t, cfg.QualityScores)
	require.NotNil(t, cfg.Logger)
}

func TestCurveID(t *testing.T) {
	a := cleanCurve()
	b := cleanCurve()
	assert.Equal(t, a.ID(), b.ID())

	b.Drug = "drug-b"
	assert.NotEqual(t, a.ID(), b.ID())

	b = cleanCurve()
	b.Responses[2] += 1e-9
	assert.NotEqual(t, a.ID(), b.ID())
}
