package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/xepto/errs"
)

// identityColumns is the number of leading columns naming a row: experiment,
// cell line, drug and concentration. Every later column is a replicate.
const identityColumns = 4

// ReadRows reads a comma separated table with a header line.
//
// Columns are positional: experiment, cell line, drug name, concentration,
// then one or more replicate columns. Header names are not interpreted.
// Empty replicate cells and "NaN" read as missing values.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty table", errs.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", errs.ErrInvalidInput, err)
	}
	if len(header) <= identityColumns {
		return nil, fmt.Errorf("%w: table has %d columns, need at least %d", errs.ErrInvalidInput, len(header), identityColumns+1)
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", errs.ErrInvalidInput, line, err)
		}

		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", errs.ErrInvalidInput, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(rec []string) (Row, error) {
	conc, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("concentration %q: %w", rec[3], err)
	}

	reps := make([]float64, len(rec)-identityColumns)
	for i, cell := range rec[identityColumns:] {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			reps[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Row{}, fmt.Errorf("replicate %d %q: %w", i+1, cell, err)
		}
		reps[i] = v
	}

	return Row{
		Experiment:    strings.TrimSpace(rec[0]),
		CellLine:      strings.TrimSpace(rec[1]),
		Drug:          strings.TrimSpace(rec[2]),
		Concentration: conc,
		Replicates:    reps,
	}, nil
}
