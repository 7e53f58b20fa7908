package assay

import (
	"fmt"
	"math"
	"strconv"
)

// Plot axis labels.
const (
	XLabel = "Log10 Concentration (Molar)"
	YLabel = "Inhibition %"
)

// MarkerKind identifies a vertical marker.
type MarkerKind uint8

const (
	// MarkerInterpolated marks the interpolated dose.
	MarkerInterpolated MarkerKind = iota + 1
	// MarkerIC50 marks the resolved IC50.
	MarkerIC50
)

// Series is a sampled line.
type Series struct {
	X []float64
	Y []float64
}

// Points are the observed responses. Err is nil when no SEM was given.
type Points struct {
	X   []float64
	Y   []float64
	Err []float64
}

// Marker is a vertical line at log10 dose X.
type Marker struct {
	Kind  MarkerKind
	X     float64
	Label string
}

// Annotation is vertical text anchored at (X, Y).
type Annotation struct {
	Kind MarkerKind
	X    float64
	Y    float64
	Text string
}

// Plot is a renderer-independent description of a fitted curve figure.
// All abscissae are log10 molar doses.
type Plot struct {
	Title       string
	XLabel      string
	YLabel      string
	YMin        float64
	YMax        float64
	Curve       Series
	Points      Points
	Markers     []Marker
	Annotations []Annotation
}

type plotInput struct {
	c                  Curve
	gridX, gridY       []float64
	x, y, sem          []float64
	dataMin, dataMax   float64
	interpX, ic50X     float64
	interpDose, interp float64
	ic50               float64
}

// plotLimits returns the y-axis range for the given data extremes.
func plotLimits(dataMin, dataMax float64) (lo, hi float64) {
	return math.Min(0, dataMin-2), math.Max(100, dataMax+2)
}

func newPlot(in plotInput) *Plot {
	lo, hi := plotLimits(in.dataMin, in.dataMax)
	at := strconv.FormatFloat(in.interp, 'f', -1, 64)

	return &Plot{
		Title:  fmt.Sprintf("Curve for Exp: %s Cell line: %s Drug: %s", in.c.Experiment, in.c.CellLine, in.c.Drug),
		XLabel: XLabel,
		YLabel: YLabel,
		YMin:   lo,
		YMax:   hi,
		Curve:  Series{X: in.gridX, Y: in.gridY},
		Points: Points{X: in.x, Y: in.y, Err: in.sem},
		Markers: []Marker{
			{Kind: MarkerInterpolated, X: in.interpX, Label: "Interpolated at " + at + "%"},
			{Kind: MarkerIC50, X: in.ic50X, Label: "IC50"},
		},
		Annotations: []Annotation{
			{Kind: MarkerInterpolated, X: in.interpX, Y: lo + 45, Text: fmt.Sprintf("Interp@ %s%% = %.3f", at, in.interpDose)},
			{Kind: MarkerIC50, X: in.ic50X, Y: lo + 1, Text: fmt.Sprintf("IC50 = %.3f", in.ic50)},
		},
	}
}
