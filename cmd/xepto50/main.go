// Command xepto50 analyses a table of dose-response replicates and writes a
// compressed report of the per-curve metrics.
//
// Usage:
//
//	xepto50 [-in table.csv] [-out report.xptr] [-plots dir] [-env-file .env]
//
// Analysis settings come from XEPTO_* environment variables, optionally
// loaded from an .env file. See Config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arloliu/xepto/batch"
	"github.com/arloliu/xepto/chart"
	"github.com/arloliu/xepto/internal/logging"
	"github.com/arloliu/xepto/report"
)

// Flags holds the command line arguments.
type Flags struct {
	In          string
	Out         string
	PlotDir     string
	EnvFilePath string
}

func main() {
	var flags Flags

	flag.StringVar(&flags.In, "in", "-", "Input CSV table (- for stdin)")
	flag.StringVar(&flags.Out, "out", "-", "Output report (- for stdout)")
	flag.StringVar(&flags.PlotDir, "plots", "", "Directory to write curve plots to (empty to skip)")
	flag.StringVar(&flags.EnvFilePath, "env-file", ".env", "Path to .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flags, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, flags Flags, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := godotenv.Load(flags.EnvFilePath); err != nil && flags.EnvFilePath != ".env" {
		return fmt.Errorf("load %s: %w", flags.EnvFilePath, err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	runLogger := logger.With().Str("run_id", uuid.NewString()).Logger()

	ct, err := cfg.compression()
	if err != nil {
		return err
	}
	opts, err := cfg.runnerOptions()
	if err != nil {
		return err
	}
	runner, err := batch.NewRunner(append(opts, batch.WithLogger(&runLogger))...)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	in := stdin
	if flags.In != "-" {
		f, err := os.Open(flags.In)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	rows, err := batch.ReadRows(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", flags.In, err)
	}

	summary, err := runner.Run(ctx, rows)
	if err != nil {
		return err
	}

	data, err := report.Encode(summary.Results, ct)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := writeOutput(flags.Out, stdout, data); err != nil {
		return err
	}

	if flags.PlotDir != "" {
		if err := writePlots(flags.PlotDir, cfg.PlotFormat, summary, &runLogger); err != nil {
			return err
		}
	}

	runLogger.Info().
		Int("rows", len(rows)).
		Int("results", len(summary.Results)).
		Int("failures", len(summary.Failures)).
		Int("report_bytes", len(data)).
		Str("compression", ct.String()).
		Msg("report written")

	return nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func writePlots(dir, imageFormat string, summary *batch.Summary, logger *zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}

	for i, p := range summary.Plots {
		name := strconv.FormatUint(summary.Results[i].ID, 16) + "." + imageFormat
		path := filepath.Join(dir, name)

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create plot: %w", err)
		}
		err = chart.Write(f, p, imageFormat)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("plot %s: %w", path, err)
		}

		logger.Debug().Str("path", path).Msg("plot written")
	}

	return nil
}
