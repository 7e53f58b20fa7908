package assay

import (
	"github.com/rs/zerolog"

	"github.com/arloliu/xepto/curve"
	"github.com/arloliu/xepto/fit"
	"github.com/arloliu/xepto/internal/logging"
	"github.com/arloliu/xepto/internal/options"
	"github.com/arloliu/xepto/internal/validation"
	"github.com/arloliu/xepto/potency"
	"github.com/arloliu/xepto/score"
)

// Config holds the settings of one pipeline run.
type Config struct {
	// Baseline is the response subtracted in AUC and the DSS threshold.
	Baseline int `validate:"gte=0,lt=100"`
	// IntegrationLimit is the width of the xepto window in log10 units.
	IntegrationLimit float64 `validate:"gt=0"`
	// QualityScores enables the Diagnostics block.
	QualityScores bool
	// ResponseLevel is the response the dose is interpolated at.
	ResponseLevel float64 `validate:"gt=0,lt=100"`
	// GridSize is the number of points of the dense evaluation grid.
	GridSize       int `validate:"gte=2"`
	MaxEvaluations int `validate:"gte=1"`
	Logger         *zerolog.Logger
}

// Option configures Run.
type Option = options.Option[*Config]

// WithBaseline sets the AUC baseline and DSS threshold. Default 10.
func WithBaseline(baseline int) Option {
	return options.NoError(func(c *Config) {
		c.Baseline = baseline
	})
}

// WithIntegrationLimit sets the xepto window width in log10 units. Default 1.
func WithIntegrationLimit(limit float64) Option {
	return options.NoError(func(c *Config) {
		c.IntegrationLimit = limit
	})
}

// WithQualityScores enables or disables the Diagnostics block.
func WithQualityScores(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.QualityScores = enabled
	})
}

// WithResponseLevel sets the response level of the interpolated dose. Default 50.
func WithResponseLevel(level float64) Option {
	return options.NoError(func(c *Config) {
		c.ResponseLevel = level
	})
}

// WithGridSize sets the number of dense grid points. Default 10000.
func WithGridSize(n int) Option {
	return options.NoError(func(c *Config) {
		c.GridSize = n
	})
}

// WithMaxEvaluations sets the residual evaluation budget of each solve.
func WithMaxEvaluations(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxEvaluations = n
	})
}

// WithLogger sets the logger used by the pipeline and the fitting stages.
func WithLogger(l *zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	})
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {

	return Config{
		Baseline:         score.DefaultBaseline,
		IntegrationLimit: score.DefaultIntegrationLimit,
		ResponseLevel:    potency.DefaultLevel,
		GridSize:         curve.DefaultGridSize,
		MaxEvaluations:   fit.DefaultMaxEvaluations,
		Logger:           logging.Nop(),
	}
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := validation.Struct(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) fitOptions() []fit.Option {
	return []fit.Option{
		fit.WithMaxEvaluations(c.MaxEvaluations),
		fit.WithLogger(c.Logger),
	}
}
