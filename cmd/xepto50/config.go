package main

import (
	"fmt"

	"github.com/joeshaw/envdecode"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/batch"
	"github.com/arloliu/xepto/format"
	"github.com/arloliu/xepto/frame"
	"github.com/arloliu/xepto/internal/logging"
	"github.com/arloliu/xepto/internal/validation"
)

// Config is the environment configuration of the command.
type Config struct {
	Log logging.Config `env:""`

	Response       string  `env:"XEPTO_RESPONSE,default=viability" validate:"required"`
	Scale          string  `env:"XEPTO_SCALE,default=percentage" validate:"required"`
	Unit           string  `env:"XEPTO_UNIT,default=Micromolar" validate:"required"`
	RemoveOutliers bool    `env:"XEPTO_REMOVE_OUTLIERS,default=true"`
	Baseline       int     `env:"XEPTO_BASELINE,default=10" validate:"gte=0,lt=100"`
	Limit          float64 `env:"XEPTO_INTEGRATION_LIMIT,default=1" validate:"gt=0"`
	Level          float64 `env:"XEPTO_RESPONSE_LEVEL,default=50" validate:"gt=0,lt=100"`
	QualityScores  bool    `env:"XEPTO_QUALITY_SCORES,default=false"`
	Compression    string  `env:"XEPTO_COMPRESSION,default=zstd" validate:"required"`
	MaxConcurrency int     `env:"XEPTO_MAX_CONCURRENCY,default=8" validate:"gte=1,lte=1024"`
	PlotFormat     string  `env:"XEPTO_PLOT_FORMAT,default=png" validate:"required,oneof=png svg pdf eps jpg tif"`
}

// LoadConfig decodes Config from the environment and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validation.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// compression resolves the report codec.
func (c *Config) compression() (format.CompressionType, error) {
	return format.ParseCompression(c.Compression)
}

// runnerOptions translates the configuration into batch options.
func (c *Config) runnerOptions() ([]batch.Option, error) {
	resp, err := batch.ParseResponse(c.Response)
	if err != nil {
		return nil, err
	}
	scale, err := batch.ParseScale(c.Scale)
	if err != nil {
		return nil, err
	}
	unit, err := frame.ParseUnit(c.Unit)
	if err != nil {
		return nil, err
	}

	return []batch.Option{
		batch.WithResponse(resp),
		batch.WithScale(scale),
		batch.WithUnit(unit),
		batch.WithOutlierRemoval(c.RemoveOutliers),
		batch.WithMaxConcurrency(c.MaxConcurrency),
		batch.WithAssayOptions(
			assay.WithBaseline(c.Baseline),
			assay.WithIntegrationLimit(c.Limit),
			assay.WithResponseLevel(c.Level),
			assay.WithQualityScores(c.QualityScores),
		),
	}, nil
}
