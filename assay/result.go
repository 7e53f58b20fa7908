package assay

import (
	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/hash"
	"github.com/arloliu/xepto/score"
)

// Curve is one dose-response series with its identifying labels.
//
// Responses are percent inhibition, already aggregated across replicates.
// SEM is optional; when set it must have one entry per concentration.
type Curve struct {
	Experiment     string
	CellLine       string
	Drug           string
	Concentrations []float64
	Responses      []float64
	SEM            []float64
	Unit           frame.Unit
}

// ID returns the 64-bit identity of the curve.
func (c Curve) ID() uint64 {
	return hash.CurveID(
		[]string{c.Experiment, c.CellLine, c.Drug, c.Unit.String()},
		c.Concentrations, c.Responses, c.SEM,
	)
}

// Field names of the Result record.
const (
	FieldExperiment     = "Experiment"
	FieldCellLine       = "Cell line"
	FieldDrug           = "Drug name"
	FieldIC50           = "IC50"
	FieldInterpolated   = "IC interpolated"
	FieldInterpolatedAt = "IC interpolated at"
	FieldAUC            = "AUC"
	FieldDSS1           = "DSS1"
	FieldDSS2           = "DSS2"
	FieldDSS3           = "DSS3"
	FieldXepto          = "Xepto50"
)

// Field names of the Diagnostics block.
const (
	FieldMinConcentration  = "Minimum drug concentration"
	FieldMaxConcentration  = "Maximum drug concentration"
	FieldCount             = "Number of concentration"
	FieldUnit              = "Concentration unit"
	FieldObservedMin       = "Minimum experimental inhibition"
	FieldFittedMin         = "Minimum fitted inhibition"
	FieldObservedMax       = "Maximum experimental inhibition"
	FieldFittedMax         = "Maximum fitted inhibition"
	FieldSlope             = "Slope"
	FieldIC50StdErr        = "IC50 std error"
	FieldIC50StdResidual   = "IC50 std residual"
	FieldR2                = "R2"
	FieldAdjustedR2        = "Adjusted R2"
	FieldRMSE              = "RMSE"
	FieldNormalityP        = "Normality Test (p)"
	FieldSyX               = "Sy.x"
	FieldExplainedVariance = "Explained variance"
	FieldMaxError          = "Maximum residual error"
	FieldRootMAE           = "Mean absolute error"
	FieldMAPE              = "Mean abs percentage error"
	FieldAAC               = "AAC"
	FieldFitStage          = "Fit stage"
	FieldRegime            = "Interpolation regime"
)

// CoreFields lists the names Fields always returns, in order.
var CoreFields = []string{
	FieldExperiment, FieldCellLine, FieldDrug,
	FieldIC50, FieldInterpolated, FieldInterpolatedAt,
	FieldAUC, FieldDSS1, FieldDSS2, FieldDSS3, FieldXepto,
}

// DiagnosticFields lists the names Fields appends when Diagnostics is set.
var DiagnosticFields = []string{
	FieldMinConcentration, FieldMaxConcentration, FieldCount, FieldUnit,
	FieldObservedMin, FieldFittedMin, FieldObservedMax, FieldFittedMax,
	FieldSlope, FieldIC50StdErr, FieldIC50StdResidual,
	FieldR2, FieldAdjustedR2, FieldRMSE, FieldNormalityP, FieldSyX,
	FieldExplainedVariance, FieldMaxError, FieldRootMAE, FieldMAPE,
	FieldAAC, FieldFitStage, FieldRegime,
}

// Field is one named value of a Result record. Value is nil for missing
// scores.
type Field struct {
	Name  string
	Value any
}

// Result is the record produced for one curve.
type Result struct {
	ID         uint64
	Experiment string
	CellLine   string
	Drug       string

	// IC50 is in the caller's unit, rounded to 3 decimals.
	IC50 float64
	// Interpolated is the dose at InterpolatedAt, in the caller's unit.
	Interpolated   float64
	InterpolatedAt float64
	AUC            float64
	// DSS1, DSS2 and DSS3 are nil when the inputs were not finite.
	DSS1  *float64
	DSS2  *float64
	DSS3  *float64
	Xepto float64

	// Params are the refined curve parameters.
	Params curve.Params
	// Diagnostics is set when quality scores are enabled.
	Diagnostics *Diagnostics
}

// Diagnostics is the extended block of a Result.
type Diagnostics struct {
	MinConcentration float64
	MaxConcentration float64
	Count            int
	Unit             frame.Unit

	ObservedMin float64
	FittedMin   float64
	ObservedMax float64
	FittedMax   float64
	Slope       float64

	// IC50StdErr is nil when the curvature could not be estimated.
	IC50StdErr      *float64
	IC50StdResidual float64

	Quality score.QualityScores
	AAC     float64

	FitStage string
	Regime   string
	// IC50Rules names the IC50 overrides that fired.
	IC50Rules []string
}

// Fields flattens the record into named values in table order.
func (r *Result) Fields() []Field {
	fields := []Field{
		{FieldExperiment, r.Experiment},
		{FieldCellLine, r.CellLine},
		{FieldDrug, r.Drug},
		{FieldIC50, r.IC50},
		{FieldInterpolated, r.Interpolated},
		{FieldInterpolatedAt, r.InterpolatedAt},
		{FieldAUC, r.AUC},
		{FieldDSS1, optional(r.DSS1)},
		{FieldDSS2, optional(r.DSS2)},
		{FieldDSS3, optional(r.DSS3)},
		{FieldXepto, r.Xepto},
	}

	d := r.Diagnostics
	if d == nil {
		return fields
	}

	q := d.Quality

	return append(fields,
		Field{FieldMinConcentration, d.MinConcentration},
		Field{FieldMaxConcentration, d.MaxConcentration},
		Field{FieldCount, d.Count},
		Field{FieldUnit, d.Unit.String()},
		Field{FieldObservedMin, d.ObservedMin},
		Field{FieldFittedMin, d.FittedMin},
		Field{FieldObservedMax, d.ObservedMax},
		Field{FieldFittedMax, d.FittedMax},
		Field{FieldSlope, d.Slope},
		Field{FieldIC50StdErr, optional(d.IC50StdErr)},
		Field{FieldIC50StdResidual, d.IC50StdResidual},
		Field{FieldR2, q.R2},
		Field{FieldAdjustedR2, q.AdjustedR2},
		Field{FieldRMSE, q.RMSE},
		Field{FieldNormalityP, q.NormalityP},
		Field{FieldSyX, q.SyX},
		Field{FieldExplainedVariance, q.ExplainedVariance},
		Field{FieldMaxError, q.MaxError},
		Field{FieldRootMAE, q.RootMAE},
		Field{FieldMAPE, q.MAPE},
		Field{FieldAAC, d.AAC},
		Field{FieldFitStage, d.FitStage},
		Field{FieldRegime, d.Regime},
	)
}

// Map returns Fields keyed by name.
func (r *Result) Map() map[string]any {
	fields := r.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}

	return m
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}
