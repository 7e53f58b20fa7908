package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/errs"
)

func TestNew_SortsByConcentration(t *testing.T) {
	f, err := New(
		[]float64{100, 1, 10, 1000},
		[]float64{70, 5, 30, 95},
		[]float64{3, 1, 2, 4},
		Nanomolar,
	)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 10, 100, 1000}, f.Concentrations())
	assert.Equal(t, []float64{5, 30, 70, 95}, f.Responses())
	assert.Equal(t, []float64{1, 2, 3, 4}, f.SEM())
	assert.True(t, f.HasSEM())
	assert.False(t, f.TieBroken())
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, Nanomolar, f.Unit())
}

func TestNew_UnknownSEM(t *testing.T) {
	f, err := New([]float64{1, 10, 100}, []float64{5, 30, 70}, []float64{1, math.NaN(), 2}, Nanomolar)
	require.NoError(t, err)

	sem := f.SEM()
	assert.True(t, math.IsNaN(sem[1]))
	assert.Equal(t, 2.0, sem[2])
}

func TestNew_Log10DoseIsExact(t *testing.T) {
	conc := []float64{0.3, 3, 30, 300}
	f, err := New(conc, []float64{1, 2, 3, 4}, nil, Micromolar)
	require.NoError(t, err)

	doses := f.Log10Doses()
	for i, c := range f.Concentrations() {
		assert.Equal(t, math.Log10(c*1e-6), doses[i])
	}
	assert.Equal(t, doses[0], f.MinLog10Dose())
	assert.Equal(t, doses[len(doses)-1], f.MaxLog10Dose())
	assert.Nil(t, f.SEM())
	assert.False(t, f.HasSEM())
}

func TestNew_TieBreaking(t *testing.T) {
	t.Run("duplicates offset the whole column", func(t *testing.T) {
		f, err := New([]float64{1, 10, 100, 1000}, []float64{10, 10, 50, 90}, nil, Nanomolar)
		require.NoError(t, err)

		resp := f.Responses()
		assert.True(t, f.TieBroken())
		assert.InDelta(t, 10.00, resp[0], 1e-12)
		assert.InDelta(t, 10.01, resp[1], 1e-12)
		assert.InDelta(t, 50.02, resp[2], 1e-12)
		assert.InDelta(t, 90.03, resp[3], 1e-12)
	})

	t.Run("unique responses are left alone", func(t *testing.T) {
		f, err := New([]float64{1, 10}, []float64{10, 20}, nil, Nanomolar)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 20}, f.Responses())
	})

	t.Run("same input yields same offsets", func(t *testing.T) {
		a, err := New([]float64{1, 10, 100}, []float64{10, 10, 10}, nil, Molar)
		require.NoError(t, err)
		b, err := New([]float64{1, 10, 100}, []float64{10, 10, 10}, nil, Molar)
		require.NoError(t, err)
		assert.Equal(t, a.Responses(), b.Responses())
	})
}

func TestNew_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		conc []float64
		resp []float64
		sem  []float64
		unit Unit
	}{
		{
			name: "length mismatch",
			conc: []float64{0.1, 1, 10, 100, 1000},
			resp: []float64{2, 5, 30, 70, 95, 98},
			unit: Nanomolar,
		},
		{name: "sem mismatch", conc: []float64{1, 10}, resp: []float64{1, 2}, sem: []float64{1}, unit: Nanomolar},
		{name: "unknown unit", conc: []float64{1, 10}, resp: []float64{1, 2}, unit: Unit(42)},
		{name: "zero unit", conc: []float64{1, 10}, resp: []float64{1, 2}},
		{name: "single point", conc: []float64{1}, resp: []float64{1}, unit: Nanomolar},
		{name: "empty", conc: nil, resp: nil, unit: Nanomolar},
		{name: "non-positive concentration", conc: []float64{0, 10}, resp: []float64{1, 2}, unit: Nanomolar},
		{name: "NaN concentration", conc: []float64{math.NaN(), 10}, resp: []float64{1, 2}, unit: Nanomolar},
		{name: "infinite response", conc: []float64{1, 10}, resp: []float64{math.Inf(1), 2}, unit: Nanomolar},
		{name: "infinite sem", conc: []float64{1, 10}, resp: []float64{1, 2}, sem: []float64{math.Inf(1), 0}, unit: Nanomolar},
		{name: "negative sem", conc: []float64{1, 10}, resp: []float64{1, 2}, sem: []float64{-1, 0}, unit: Nanomolar},
		{name: "identical concentrations", conc: []float64{5, 5, 5}, resp: []float64{1, 2, 3}, unit: Nanomolar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.conc, tt.resp, tt.sem, tt.unit)
			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrInvalidInput)
			require.Nil(t, f)
		})
	}
}

func TestFrame_AccessorsReturnCopies(t *testing.T) {
	f, err := New([]float64{1, 10, 100}, []float64{5, 50, 95}, []float64{1, 1, 1}, Nanomolar)
	require.NoError(t, err)

	f.Concentrations()[0] = -1
	f.Responses()[0] = -1
	f.Log10Doses()[0] = -1
	f.SEM()[0] = -1

	assert.Equal(t, 1.0, f.MinConcentration())
	assert.Equal(t, 100.0, f.MaxConcentration())
	assert.Equal(t, 5.0, f.MinResponse())
	assert.Equal(t, 95.0, f.MaxResponse())
	assert.Equal(t, 1.0, f.SEM()[0])
}

func TestParseUnit(t *testing.T) {
	for _, name := range []string{"Molar", "Millimolar", "Micromolar", "Nanomolar", "Picomolar"} {
		u, err := ParseUnit(name)
		require.NoError(t, err)
		assert.Equal(t, name, u.String())
	}

	u, err := ParseUnit("  nanomolar ")
	require.NoError(t, err)
	assert.Equal(t, Nanomolar, u)

	_, err = ParseUnit("Femtomolar")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	require.ErrorIs(t, err, errs.ErrUnknownUnit)
	assert.Contains(t, err.Error(), "Micromolar")
}

func TestUnit_RoundTrip(t *testing.T) {
	values := []float64{1e-3, 0.37, 1, 42.5, 1e4, 3.3e7}
	for _, u := range []Unit{Molar, Millimolar, Micromolar, Nanomolar, Picomolar} {
		for _, v := range values {
			got := u.FromMolar(u.ToMolar(v))
			assert.InEpsilon(t, v, got, 1e-9, "unit %s value %v", u, v)
		}
	}

	assert.Equal(t, "Unknown", Unit(0).String())
	assert.False(t, Unit(0).Valid())
	assert.Equal(t, 1e-9, Nanomolar.Factor())
}
