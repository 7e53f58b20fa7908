package xepto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/frame"
)

var (
	testConc = []float64{1, 10, 100, 1000, 10000}
	testResp = []float64{100.0 / 101, 1000.0 / 110, 50, 100000.0 / 1100, 1000000.0 / 10100}
)

func TestAnalyze(t *testing.T) {
	res, plot, err := Analyze(testConc, testResp, "")
	require.NoError(t, err)
	require.NotNil(t, plot)
	assert.InEpsilon(t, 100.0, res.IC50, 0.05)

	micro, _, err := Analyze(testConc, testResp, "micromolar")
	require.NoError(t, err)
	assert.InEpsilon(t, 100.0, micro.IC50, 0.05)
}

func TestAnalyze_UnknownUnit(t *testing.T) {
	_, _, err := Analyze(testConc, testResp, "furlong")
	require.ErrorIs(t, err, errs.ErrUnknownUnit)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestAnalyzeCurve_DefaultUnit(t *testing.T) {
	res, _, err := AnalyzeCurve(assay.Curve{
		Drug:           "drug-a",
		Concentrations: testConc,
		Responses:      testResp,
	}, assay.WithQualityScores(true))
	require.NoError(t, err)
	require.NotNil(t, res.Diagnostics)
	assert.Equal(t, frame.Nanomolar, res.Diagnostics.Unit)
	assert.Equal(t, "drug-a", res.Drug)
}

func TestCurveID(t *testing.T) {
	assert.Equal(t, CurveID("exp-1", "HeLa", "drug-a"), CurveID("exp-1", "HeLa", "drug-a"))
	assert.NotEqual(t, CurveID("exp-1", "HeLa", "drug-a"), CurveID("exp-1", "HeLa", "drug-b"))
	assert.NotEqual(t, CurveID("ab", "c"), CurveID("a", "bc"))
}
