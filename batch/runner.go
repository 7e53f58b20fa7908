package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/rs/zerolog"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/logging"
	"github.com/arloliu/xepto/internal/options"
	"github.com/arloliu/xepto/internal/validation"
)

// DefaultMaxConcurrency is the default number of curves analysed at once.
const DefaultMaxConcurrency = 8

// Config holds the settings of a Runner.
type Config struct {
	MaxConcurrency int `validate:"gte=1,lte=1024"`
	Aggregate      AggregateConfig
	Assay          []assay.Option
	Logger         *zerolog.Logger
}

// Option configures a Runner.
type Option = options.Option[*Config]

// WithMaxConcurrency sets the number of curves analysed concurrently.
func WithMaxConcurrency(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxConcurrency = n
	})
}

// WithUnit sets the concentration unit of the input rows. Default Micromolar.
func WithUnit(u frame.Unit) Option {
	return options.NoError(func(c *Config) {
		c.Aggregate.Unit = u
	})
}

// WithResponse sets what the replicates measure. Default Viability.
func WithResponse(r Response) Option {
	return options.NoError(func(c *Config) {
		c.Aggregate.Response = r
	})
}

// WithScale sets how the replicates are expressed. Default Percentage.
func WithScale(s Scale) Option {
	return options.NoError(func(c *Config) {
		c.Aggregate.Scale = s
	})
}

// WithOutlierRemoval enables or disables IQR trimming of replicates. Default true.
func WithOutlierRemoval(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Aggregate.RemoveOutliers = enabled
	})
}

// WithAssayOptions appends options passed to every assay.Run call.
func WithAssayOptions(opts ...assay.Option) Option {
	return options.NoError(func(c *Config) {
		c.Assay = append(c.Assay, opts...)
	})
}

// WithLogger sets the logger for per-curve failures and run summaries.
// It is also passed to every assay.Run call.
func WithLogger(l *zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

// Failure records a curve that was skipped.
type Failure struct {
	ID         uint64
	Experiment string
	CellLine   string
	Drug       string
	Err        error
}

// Summary is the outcome of a batch run. Results and Plots are in curve
// order and hold only the curves that succeeded.
type Summary struct {
	Results  []*assay.Result
	Plots    []*assay.Plot
	Failures []Failure
}

// Runner analyses many curves on a bounded worker pool.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) (*Runner, error) {
	cfg := Config{
		MaxConcurrency: DefaultMaxConcurrency,
		Aggregate: AggregateConfig{
			Response:       Viability,
			Scale:          Percentage,
			RemoveOutliers: true,
			Unit:           frame.Micromolar,
		},
		Logger: logging.Nop(),
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := validation.Struct(&cfg); err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg}, nil
}

// Run aggregates rows into curves and analyses them. See RunCurves.
func (r *Runner) Run(ctx context.Context, rows []Row) (*Summary, error) {
	curves, err := Aggregate(rows, r.cfg.Aggregate)
	if err != nil {
		return nil, fmt.Errorf("aggregate rows: %w", err)
	}

	return r.RunCurves(ctx, curves)
}

type outcome struct {
	result  *assay.Result
	plot    *assay.Plot
	failure *Failure
}

// RunCurves analyses curves concurrently.
//
// Curves failing with errs.ErrInvalidInput or errs.ErrFitDivergence are
// logged and reported in Summary.Failures. Any other error, or cancellation
// of ctx, aborts the run.
func (r *Runner) RunCurves(ctx context.Context, curves []assay.Curve) (*Summary, error) {
	pool := pond.NewResultPool[outcome](r.cfg.MaxConcurrency)
	defer pool.StopAndWait()

	opts := append([]assay.Option{assay.WithLogger(r.cfg.Logger)}, r.cfg.Assay...)
	group := pool.NewGroupContext(ctx)
	for _, c := range curves {
		group.SubmitErr(func() (outcome, error) {
			return r.analyse(ctx, c, opts)
		})
	}

	outcomes, err := group.Wait()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, o := range outcomes {
		if o.failure != nil {
			summary.Failures = append(summary.Failures, *o.failure)
			continue
		}
		summary.Results = append(summary.Results, o.result)
		summary.Plots = append(summary.Plots, o.plot)
	}

	r.cfg.Logger.Info().
		Int("curves", len(curves)).
		Int("succeeded", len(summary.Results)).
		Int("failed", len(summary.Failures)).
		Msg("batch completed")

	return summary, nil
}

func (r *Runner) analyse(ctx context.Context, c assay.Curve, opts []assay.Option) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	res, plot, err := assay.Run(c, opts...)
	if err == nil {
		return outcome{result: res, plot: plot}, nil
	}

	if !errors.Is(err, errs.ErrInvalidInput) && !errors.Is(err, errs.ErrFitDivergence) {
		return outcome{}, fmt.Errorf("curve %s/%s/%s: %w", c.Experiment, c.CellLine, c.Drug, err)
	}

	id := c.ID()
	r.cfg.Logger.Error().
		Err(err).
		Uint64("curve_id", id).
		Str("experiment", c.Experiment).
		Str("cell_line", c.CellLine).
		Str("drug", c.Drug).
		Msg("curve skipped")

	return outcome{failure: &Failure{
		ID:         id,
		Experiment: c.Experiment,
		CellLine:   c.CellLine,
		Drug:       c.Drug,
		Err:        err,
	}}, nil
}
