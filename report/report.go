// Package report encodes Result records into a compact, self-describing table.
//
// An encoded report is laid out as:
//
//	magic "XPTR" | version (1 byte) | compression (1 byte) | uvarint payload length | payload
//
// The payload, compressed with the selected codec, is JSON lines: a header
// object naming the columns and the row count, then one JSON array per
// result with values in column order. Missing and non-finite values are null.
package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/compress"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/format"
	"github.com/arloliu/xepto/internal/pool"
)

// Magic opens every encoded report.
const Magic = "XPTR"

// Version is the layout version written by Encode.
const Version uint8 = 1

const preambleSize = len(Magic) + 2

// Header describes an encoded report.
type Header struct {
	Version     uint8
	Compression format.CompressionType
	Columns     []string
	Rows        int
	// Stats compares the payload size before and after compression.
	Stats compress.Stats
}

type payloadHeader struct {
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Columns returns the column names an encoding of results uses: the core
// fields, followed by the diagnostic fields when any result carries them.
func Columns(results []*assay.Result) []string {
	cols := append([]string(nil), assay.CoreFields...)
	for _, r := range results {
		if r != nil && r.Diagnostics != nil {
			return append(cols, assay.DiagnosticFields...)
		}
	}

	return cols
}

// Encode writes results as a report compressed with compression.
func Encode(results []*assay.Result, compression format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	cols := Columns(results)

	buf := pool.GetReportBuffer()
	defer pool.PutReportBuffer(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(payloadHeader{Columns: cols, Rows: len(results)}); err != nil {
		return nil, err
	}

	row := make([]any, len(cols))
	for i, r := range results {
		if r == nil {
			return nil, fmt.Errorf("%w: result %d is nil", errs.ErrInvalidInput, i)
		}
		values := r.Map()
		for j, c := range cols {
			row[j] = jsonValue(values[c])
		}
		if err := enc.Encode(row); err != nil {
			return nil, fmt.Errorf("encode result %d: %w", i, err)
		}
	}

	packed, err := codec.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}

	out := make([]byte, 0, preambleSize+binary.MaxVarintLen64+len(packed))
	out = append(out, Magic...)
	out = append(out, Version, byte(compression))
	out = binary.AppendUvarint(out, uint64(buf.Len()))
	out = append(out, packed...)

	return out, nil
}

// Decode reads a report written by Encode. Each row maps column names to
// values; numbers decode as float64 and missing values as nil.
func Decode(data []byte) ([]map[string]any, error) {
	_, rows, err := decode(data)
	return rows, err
}

// Inspect returns the header of an encoded report.
func Inspect(data []byte) (Header, error) {
	h, _, err := decode(data)
	return h, err
}

func decode(data []byte) (Header, []map[string]any, error) {
	var h Header

	if len(data) < preambleSize || string(data[:len(Magic)]) != Magic {
		return h, nil, fmt.Errorf("%w: missing %q header", errs.ErrInvalidPayload, Magic)
	}
	h.Version = data[len(Magic)]
	h.Compression = format.CompressionType(data[len(Magic)+1])
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidPayload, h.Version)
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return h, nil, err
	}

	size, n := binary.Uvarint(data[preambleSize:])
	if n <= 0 || size > compress.MaxPayloadSize {
		return h, nil, fmt.Errorf("%w: bad payload length", errs.ErrInvalidPayload)
	}
	packed := data[preambleSize+n:]

	payload, err := codec.Decompress(packed)
	if err != nil {
		return h, nil, err
	}
	if uint64(len(payload)) != size {
		return h, nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidPayload, len(payload), size)
	}

	h.Stats = compress.Stats{
		Algorithm:      h.Compression,
		OriginalSize:   int64(size),
		CompressedSize: int64(len(packed)),
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	var ph payloadHeader
	if err := dec.Decode(&ph); err != nil {
		return h, nil, fmt.Errorf("%w: header: %w", errs.ErrInvalidPayload, err)
	}
	if ph.Rows < 0 {
		return h, nil, fmt.Errorf("%w: negative row count %d", errs.ErrInvalidPayload, ph.Rows)
	}
	h.Columns, h.Rows = ph.Columns, ph.Rows

	// each row line is at least "[]\n", so the payload bounds the count
	rows := make([]map[string]any, 0, min(ph.Rows, len(payload)/3))
	for i := range ph.Rows {
		var values []any
		if err := dec.Decode(&values); err != nil {
			return h, nil, fmt.Errorf("%w: row %d: %w", errs.ErrInvalidPayload, i, err)
		}
		if len(values) != len(ph.Columns) {
			return h, nil, fmt.Errorf("%w: row %d has %d values for %d columns", errs.ErrInvalidPayload, i, len(values), len(ph.Columns))
		}

		m := make(map[string]any, len(values))
		for j, c := range ph.Columns {
			m[c] = values[j]
		}
		rows = append(rows, m)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return h, nil, fmt.Errorf("%w: trailing data after %d rows", errs.ErrInvalidPayload, ph.Rows)
	}

	return h, rows, nil
}

// jsonValue maps non-finite floats to nil.
func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}

	return v
}
