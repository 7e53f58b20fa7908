package batch

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/frame"
)

// Response is what the measured replicates represent.
type Response uint8

const (
	// Viability replicates are converted to inhibition with 100 - x.
	Viability Response = iota + 1
	// Inhibition replicates are used as is.
	Inhibition
)

// String returns "Viability" or "Inhibition".
func (r Response) String() string {
	switch r {
	case Viability:
		return "Viability"
	case Inhibition:
		return "Inhibition"
	default:
		return "Unknown"
	}
}

// ParseResponse parses "Viability" or "Inhibition", case-insensitively.
func ParseResponse(s string) (Response, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viability":
		return Viability, nil
	case "inhibition":
		return Inhibition, nil
	default:
		return 0, fmt.Errorf("%w: unknown response %q", errs.ErrInvalidInput, s)
	}
}

// Scale is how the replicates were expressed.
type Scale uint8

const (
	// Percentage replicates are on a 0-100 scale.
	Percentage Scale = iota + 1
	// Ratio replicates are on a 0-1 scale.
	Ratio
)

// String returns "Percentage" or "Ratio".
func (s Scale) String() string {
	switch s {
	case Percentage:
		return "Percentage"
	case Ratio:
		return "Ratio"
	default:
		return "Unknown"
	}
}

// ParseScale parses "Percentage" or "Ratio", case-insensitively.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage":
		return Percentage, nil
	case "ratio":
		return Ratio, nil
	default:
		return 0, fmt.Errorf("%w: unknown response scale %q", errs.ErrInvalidInput, s)
	}
}

const (
	// OutlierThreshold is the IQR multiple beyond which replicates are trimmed.
	OutlierThreshold = 1.0
	// MaxOutlierIterations bounds the trimming loop.
	MaxOutlierIterations = 3
	// ratioCeiling is the largest value of a ratio table scaled by 100.
	ratioCeiling = 5.0
	// fractionCeiling is the largest value of any table scaled by 100.
	fractionCeiling = 2.0
)

// Row is one concentration of one curve with its replicate measurements.
// NaN marks a missing replicate.
type Row struct {
	Experiment    string
	CellLine      string
	Drug          string
	Concentration float64
	Replicates    []float64
}

// AggregateConfig controls how replicates become curve responses.
type AggregateConfig struct {
	Response       Response `validate:"oneof=1 2"`
	Scale          Scale    `validate:"oneof=1 2"`
	RemoveOutliers bool
	Unit           frame.Unit `validate:"gte=1,lte=5"`
}

// Aggregate reduces replicate rows to one response, and an SEM when three or
// more replicates exist, per row, then groups the rows into curves by
// experiment, cell line and drug in order of first appearance.
//
// Every row must carry the same number of replicates.
func Aggregate(rows []Row, cfg AggregateConfig) ([]assay.Curve, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", errs.ErrInvalidInput)
	}

	width := len(rows[0].Replicates)
	if width == 0 {
		return nil, fmt.Errorf("%w: response data is missing", errs.ErrInvalidInput)
	}

	table := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r.Replicates) != width {
			return nil, fmt.Errorf("%w: row %d has %d replicates, expected %d", errs.ErrInvalidInput, i, len(r.Replicates), width)
		}
		table[i] = slices.Clone(r.Replicates)
	}

	normalise(table, cfg.Response, cfg.Scale)
	mean, sem := reduce(table, cfg.RemoveOutliers)

	return group(rows, mean, sem, cfg.Unit), nil
}

// normalise converts ratios to percent and viability to inhibition in place.
func normalise(table [][]float64, response Response, scale Scale) {
	peak := math.Inf(-1)
	for _, row := range table {
		peak = math.Max(peak, nanMax(row))
	}

	toPercent := (scale == Ratio && peak <= ratioCeiling) || peak <= fractionCeiling
	for _, row := range table {
		for j, v := range row {
			if toPercent {
				v *= 100
			}
			if response == Viability {
				v = 100 - v
			}
			row[j] = v
		}
	}
}

// reduce returns the per-row mean and, for three or more replicates, SEM.
func reduce(table [][]float64, removeOutliers bool) (mean, sem []float64) {
	width := len(table[0])
	mean = make([]float64, len(table))

	if width < 3 {
		for i, row := range table {
			mean[i] = nanMean(row)
		}

		return mean, nil
	}

	if removeOutliers {
		table = trimOutliers(table)
	}

	sem = make([]float64, len(table))
	for i, row := range table {
		mean[i] = nanMean(row)
		sem[i] = nanSEM(row)
	}

	return mean, sem
}

// trimOutliers replaces replicates outside [Q1 - t·IQR, Q3 + t·IQR] with the
// row mean of the remaining values, repeating while the summed SEM decreases.
// It returns the last imputed table.
func trimOutliers(table [][]float64) [][]float64 {
	current := table
	var imputed [][]float64
	best := math.Inf(1)

	for range MaxOutlierIterations {
		imputed = make([][]float64, len(current))
		var total float64
		for i, row := range current {
			imputed[i] = imputeRow(row)
			if s := nanSEM(imputed[i]); !math.IsNaN(s) {
				total += s
			}
		}

		if total >= best {
			break
		}
		best = total
		current = imputed
	}

	return imputed
}

func imputeRow(row []float64) []float64 {
	out := slices.Clone(row)
	q1, q3 := nanQuantile(row, 0.25), nanQuantile(row, 0.75)
	iqr := q3 - q1
	lo, hi := q1-OutlierThreshold*iqr, q3+OutlierThreshold*iqr

	for j, v := range out {
		if v < lo || v > hi {
			out[j] = math.NaN()
		}
	}

	fill := nanMean(out)
	for j, v := range out {
		if math.IsNaN(v) {
			out[j] = fill
		}
	}

	return out
}

type groupKey struct {
	experiment, cellLine, drug string
}

// group collects rows into curves ordered by first appearance of the
// experiment, then of the cell line within it, then of the drug within that.
func group(rows []Row, mean, sem []float64, unit frame.Unit) []assay.Curve {
	var experiments []string
	cellLines := make(map[string][]string)
	drugs := make(map[[2]string][]string)
	members := make(map[groupKey][]int)

	for i, r := range rows {
		k := groupKey{r.Experiment, r.CellLine, r.Drug}
		if _, ok := members[k]; !ok {
			if _, seen := cellLines[r.Experiment]; !seen {
				experiments = append(experiments, r.Experiment)
			}
			line := [2]string{r.Experiment, r.CellLine}
			if _, seen := drugs[line]; !seen {
				cellLines[r.Experiment] = append(cellLines[r.Experiment], r.CellLine)
			}
			drugs[line] = append(drugs[line], r.Drug)
		}
		members[k] = append(members[k], i)
	}

	curves := make([]assay.Curve, 0, len(members))
	for _, exp := range experiments {
		for _, line := range cellLines[exp] {
			for _, drug := range drugs[[2]string{exp, line}] {
				idx := members[groupKey{exp, line, drug}]
				c := assay.Curve{
					Experiment:     exp,
					CellLine:       line,
					Drug:           drug,
					Concentrations: make([]float64, len(idx)),
					Responses:      make([]float64, len(idx)),
					Unit:           unit,
				}
				if sem != nil {
					c.SEM = make([]float64, len(idx))
				}
				for j, i := range idx {
					c.Concentrations[j] = rows[i].Concentration
					c.Responses[j] = mean[i]
					if sem != nil {
						c.SEM[j] = sem[i]
					}
				}
				curves = append(curves, c)
			}
		}
	}

	return curves
}
