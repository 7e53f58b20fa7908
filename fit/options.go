package fit

import (
	"github.com/rs/zerolog"

	"github.com/arloliu/xepto/internal/logging"
	"github.com/arloliu/xepto/internal/options"
	"github.com/arloliu/xepto/internal/validation"
)

const (
	// DefaultMaxEvaluations is the residual evaluation budget of one solve.
	DefaultMaxEvaluations = 100000
	// DefaultFTol is the relative cost-reduction tolerance.
	DefaultFTol = 1e-8
	// DefaultXTol is the relative step-size tolerance.
	DefaultXTol = 1e-8
	// DefaultGTol is the projected-gradient tolerance.
	DefaultGTol = 1e-10
)

// Config holds solver settings shared by Initial and Refine.
type Config struct {
	MaxEvaluations int     `validate:"gte=1"`
	FTol           float64 `validate:"gt=0,lt=1"`
	XTol           float64 `validate:"gt=0,lt=1"`
	GTol           float64 `validate:"gte=0"`
	Logger         *zerolog.Logger
}

// Option configures a fitting stage.
type Option = options.Option[*Config]

// WithMaxEvaluations sets the residual evaluation budget per solve.
// A solve that exhausts it fails with errs.ErrFitDivergence.
func WithMaxEvaluations(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxEvaluations = n
	})
}

// WithTolerances sets the cost, step and gradient convergence tolerances.
func WithTolerances(ftol, xtol, gtol float64) Option {
	return options.NoError(func(c *Config) {
		c.FTol = ftol
		c.XTol = xtol
		c.GTol = gtol
	})
}

// WithLogger sets the logger receiving per-attempt debug events.
func WithLogger(l *zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		MaxEvaluations: DefaultMaxEvaluations,
		FTol:           DefaultFTol,
		XTol:           DefaultXTol,
		GTol:           DefaultGTol,
		Logger:         logging.Nop(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
