// Package chart renders assay plots with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
)

// Default figure size.
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
)

// Formats lists the image formats Write accepts.
var Formats = []string{"png", "svg", "pdf", "eps", "jpg", "tif"}

var (
	dataColor   = color.RGBA{R: 0xff, A: 0xff}
	curveColor  = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff}
	interpColor = color.RGBA{G: 0x80, A: 0xff}
	ic50Color   = color.RGBA{B: 0xff, A: 0xff}
)

func markerColor(k assay.MarkerKind) color.Color {
	if k == assay.MarkerIC50 {
		return ic50Color
	}

	return interpColor
}

// errPoints adapts assay.Points to plotter.YErrorBars.
type errPoints struct {
	x, y, err []float64
}

func (p errPoints) Len() int { return len(p.x) }

func (p errPoints) XY(i int) (float64, float64) { return p.x[i], p.y[i] }

// YError treats a missing SEM as no bar.
func (p errPoints) YError(i int) (float64, float64) {
	e := p.err[i]
	if math.IsNaN(e) || math.IsInf(e, 0) {
		e = 0
	}

	return e, e
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X, pts[i].Y = x[i], y[i]
	}

	return pts
}

// New builds a gonum plot from p.
func New(p *assay.Plot) (*plot.Plot, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil plot", errs.ErrInvalidInput)
	}
	if len(p.Points.X) != len(p.Points.Y) || len(p.Curve.X) != len(p.Curve.Y) {
		return nil, fmt.Errorf("%w: plot series lengths differ", errs.ErrInvalidInput)
	}

	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = p.XLabel
	pl.Y.Label.Text = p.YLabel
	pl.Y.Min, pl.Y.Max = p.YMin, p.YMax
	pl.Legend.Top = false
	pl.Legend.Left = false
	pl.Add(plotter.NewGrid())

	obs := xys(p.Points.X, p.Points.Y)
	scatter, err := plotter.NewScatter(obs)
	if err != nil {
		return nil, fmt.Errorf("observed points: %w", err)
	}
	scatter.GlyphStyle.Color = dataColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)
	pl.Add(scatter)
	pl.Legend.Add("Actual Data", scatter)

	if p.Points.Err != nil {
		if len(p.Points.Err) != len(p.Points.X) {
			return nil, fmt.Errorf("%w: %d error bars for %d points", errs.ErrInvalidInput, len(p.Points.Err), len(p.Points.X))
		}
		bars, err := plotter.NewYErrorBars(errPoints{x: p.Points.X, y: p.Points.Y, err: p.Points.Err})
		if err != nil {
			return nil, fmt.Errorf("error bars: %w", err)
		}
		bars.LineStyle.Color = dataColor
		pl.Add(bars)
	}

	line, err := plotter.NewLine(xys(p.Curve.X, p.Curve.Y))
	if err != nil {
		return nil, fmt.Errorf("fitted curve: %w", err)
	}
	line.LineStyle.Color = curveColor
	line.LineStyle.Width = vg.Points(1.5)
	pl.Add(line)
	pl.Legend.Add("Fitted Logistic Curve", line)

	for _, m := range p.Markers {
		v, err := plotter.NewLine(plotter.XYs{{X: m.X, Y: p.YMin}, {X: m.X, Y: p.YMax}})
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", m.Label, err)
		}
		v.LineStyle.Color = markerColor(m.Kind)
		v.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		pl.Add(v)
		pl.Legend.Add(m.Label, v)
	}

	if len(p.Annotations) > 0 {
		lbl := plotter.XYLabels{
			XYs:    make(plotter.XYs, len(p.Annotations)),
			Labels: make([]string, len(p.Annotations)),
		}
		for i, a := range p.Annotations {
			lbl.XYs[i] = plotter.XY{X: a.X, Y: a.Y}
			lbl.Labels[i] = a.Text
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return nil, fmt.Errorf("annotations: %w", err)
		}
		for i, a := range p.Annotations {
			labels.TextStyle[i].Color = markerColor(a.Kind)
			labels.TextStyle[i].Rotation = math.Pi / 2
		}
		pl.Add(labels)
	}

	return pl, nil
}

// Write renders p to w in the given image format at the default size.
func Write(w io.Writer, p *assay.Plot, format string) error {
	format = strings.ToLower(format)
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("%w: unsupported image format %q", errs.ErrInvalidConfig, format)
	}

	pl, err := New(p)
	if err != nil {
		return err
	}

	wt, err := pl.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	return nil
}
