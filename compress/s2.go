package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/xepto/errs"
)

// S2Compressor uses S2 block encoding at the "better" level.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor returns the S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as a single S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress decodes an S2 block of at most MaxPayloadSize bytes.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrInvalidPayload, err)
	}
	if n > MaxPayloadSize {
		return nil, fmt.Errorf("%w: s2 block decodes to %d bytes", errs.ErrInvalidPayload, n)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("%w: s2: %w", errs.ErrInvalidPayload, err)
	}

	return out, nil
}
