package chart

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/frame"
)

func samplePlot(t *testing.T, withSEM bool) *assay.Plot {
	t.Helper()

	conc := []float64{1, 10, 100, 1000, 10000}
	resp := make([]float64, len(conc))
	for i, c := range conc {
		resp[i] = 100 * c / (c + 100)
	}

	c := assay.Curve{
		Experiment:     "exp-1",
		CellLine:       "HeLa",
		Drug:           "drug-a",
		Concentrations: conc,
		Responses:      resp,
		Unit:           frame.Nanomolar,
	}
	if withSEM {
		c.SEM = []float64{1, 2, math.NaN(), 2, 1}
	}

	_, p, err := assay.Run(c, assay.WithGridSize(200))
	require.NoError(t, err)

	return p
}

func TestNew(t *testing.T) {
	p := samplePlot(t, true)

	pl, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, p.Title, pl.Title.Text)
	assert.Equal(t, assay.XLabel, pl.X.Label.Text)
	assert.Equal(t, assay.YLabel, pl.Y.Label.Text)
	assert.InDelta(t, p.YMin, pl.Y.Min, 1e-12)
	assert.InDelta(t, p.YMax, pl.Y.Max, 1e-12)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	p := samplePlot(t, false)
	p.Points.Y = p.Points.Y[:2]
	_, err = New(p)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	p = samplePlot(t, false)
	p.Points.Err = []float64{1}
	_, err = New(p)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestWrite(t *testing.T) {
	p := samplePlot(t, true)

	var png bytes.Buffer
	require.NoError(t, Write(&png, p, "PNG"))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, Write(&svg, p, "svg"))
	assert.Contains(t, svg.String(), "<svg")

	err := Write(&svg, p, "bmp")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
