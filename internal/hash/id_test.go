package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurveID(t *testing.T) {
	conc := []float64{1, 10, 100}
	resp := []float64{5, 50, 95}

	base := CurveID([]string{"exp1", "HeLa", "drugA"}, conc, resp)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base, CurveID([]string{"exp1", "HeLa", "drugA"}, conc, resp))
	})

	t.Run("labels matter", func(t *testing.T) {
		assert.NotEqual(t, base, CurveID([]string{"exp1", "HeLa", "drugB"}, conc, resp))
	})

	t.Run("label boundaries matter", func(t *testing.T) {
		a := CurveID([]string{"ab", "c"})
		b := CurveID([]string{"a", "bc"})
		assert.NotEqual(t, a, b)
	})

	t.Run("data matters", func(t *testing.T) {
		assert.NotEqual(t, base, CurveID([]string{"exp1", "HeLa", "drugA"}, conc, []float64{5, 50, 96}))
	})
}

func BenchmarkCurveID(b *testing.B) {
	conc := []float64{1, 10, 100, 1000, 10000}
	resp := []float64{2, 10, 48, 90, 99}
	labels := []string{"exp", "cell", "drug"}
	for b.Loop() {
		CurveID(labels, conc, resp)
	}
}
