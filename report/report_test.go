package report

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xepto/assay"
	"github.com/arloliu/xepto/errs"
	"github.com/arloliu/xepto/format"
	"github.com/arloliu/xepto/frame"
)

func ptr(v float64) *float64 { return &v }

func sampleResults() []*assay.Result {
	return []*assay.Result{
		{
			Experiment:     "exp-1",
			CellLine:       "HeLa",
			Drug:           "drug-a",
			IC50:           100,
			Interpolated:   99.5,
			InterpolatedAt: 50,
			AUC:            160.25,
			DSS1:           ptr(43.48),
			DSS2:           ptr(21.98),
			DSS3:           ptr(32.2),
			Xepto:          26.71,
		},
		{
			Experiment:     "exp-1",
			CellLine:       "HeLa",
			Drug:           "drug-b",
			IC50:           10000,
			Interpolated:   math.NaN(),
			InterpolatedAt: 50,
			AUC:            3.5,
			Xepto:          0,
		},
	}
}

func TestEncodeDecode_AllCodecs(t *testing.T) {
	results := sampleResults()

	for _, ct := range format.CompressionTypes {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := Encode(results, ct)
			require.NoError(t, err)
			require.Equal(t, Magic, string(data[:len(Magic)]))

			rows, err := Decode(data)
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, "drug-a", rows[0][assay.FieldDrug])
			assert.InDelta(t, 100.0, rows[0][assay.FieldIC50], 1e-12)
			assert.InDelta(t, 43.48, rows[0][assay.FieldDSS1], 1e-12)
			assert.InDelta(t, 26.71, rows[0][assay.FieldXepto], 1e-12)

			assert.Equal(t, "drug-b", rows[1][assay.FieldDrug])
			assert.Nil(t, rows[1][assay.FieldDSS1])
			assert.Nil(t, rows[1][assay.FieldInterpolated])
		})
	}
}

func TestEncode_Columns(t *testing.T) {
	results := sampleResults()
	require.Equal(t, assay.CoreFields, Columns(results))

	results[1].Diagnostics = &assay.Diagnostics{
		MinConcentration: 1,
		MaxConcentration: 10000,
		Count:            5,
		Unit:             frame.Nanomolar,
	}
	cols := Columns(results)
	require.Len(t, cols, len(assay.CoreFields)+len(assay.DiagnosticFields))

	data, err := Encode(results, format.CompressionZstd)
	require.NoError(t, err)

	rows, err := Decode(data)
	require.NoError(t, err)
	assert.Nil(t, rows[0][assay.FieldMinConcentration])
	assert.InDelta(t, 5.0, rows[1][assay.FieldCount], 1e-12)
	assert.Equal(t, frame.Nanomolar.String(), rows[1][assay.FieldUnit])
}

func TestInspect(t *testing.T) {
	data, err := Encode(sampleResults(), format.CompressionS2)
	require.NoError(t, err)

	h, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, format.CompressionS2, h.Compression)
	assert.Equal(t, 2, h.Rows)
	assert.Equal(t, assay.CoreFields, h.Columns)
	assert.Equal(t, format.CompressionS2, h.Stats.Algorithm)
	assert.Positive(t, h.Stats.OriginalSize)
	assert.Positive(t, h.Stats.CompressedSize)
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil, format.CompressionNone)
	require.NoError(t, err)

	rows, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode(sampleResults(), format.CompressionType(0x7f))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = Encode([]*assay.Result{nil}, format.CompressionNone)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDecode_Corrupt(t *testing.T) {
	data, err := Encode(sampleResults(), format.CompressionNone)
	require.NoError(t, err)

	badVersion := append([]byte(nil), data...)
	badVersion[len(Magic)] = 9

	badCodec := append([]byte(nil), data...)
	badCodec[len(Magic)+1] = 0x7f

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "bad_magic", data: append([]byte("NOPE"), data[len(Magic):]...)},
		{name: "bad_version", data: badVersion},
		{name: "bad_codec", data: badCodec},
		{name: "truncated", data: data[:len(data)-10]},
		{name: "trailing", data: append(append([]byte(nil), data...), []byte("[1]\n")...)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			require.ErrorIs(t, err, errs.ErrInvalidPayload)
		})
	}
}

// rawReport frames payload as an uncompressed report.
func rawReport(payload string) []byte {
	out := append([]byte(Magic), Version, byte(format.CompressionNone))
	out = binary.AppendUvarint(out, uint64(len(payload)))

	return append(out, payload...)
}

func TestDecode_RowCount(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "negative", payload: `{"columns":["IC50"],"rows":-1}` + "\n"},
		{name: "huge", payload: `{"columns":["IC50"],"rows":4000000000000}` + "\n[1]\n"},
		{name: "short", payload: `{"columns":["IC50"],"rows":2}` + "\n[1]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(rawReport(tc.payload))
			require.ErrorIs(t, err, errs.ErrInvalidPayload)
		})
	}

	rows, err := Decode(rawReport(`{"columns":["IC50"],"rows":1}` + "\n[12.5]\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 12.5, rows[0]["IC50"], 1e-12)
}
