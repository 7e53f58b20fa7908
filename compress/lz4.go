package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/xepto/errs"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor writes LZ4 blocks prefixed with the uvarint decoded length.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data into a length-prefixed LZ4 block.
//
// Returns nil for empty input.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
	off := binary.PutUvarint(dst, uint64(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[off:])
	if err != nil {
		return nil, err
	}

	return dst[:off+n], nil
}

// Decompress decodes a block written by Compress.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, off := binary.Uvarint(data)
	if off <= 0 || size > MaxPayloadSize {
		return nil, fmt.Errorf("%w: bad lz4 length prefix", errs.ErrInvalidPayload)
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data[off:], buf)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %w", errs.ErrInvalidPayload, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: lz4 decoded %d bytes, expected %d", errs.ErrInvalidPayload, n, size)
	}

	return buf, nil
}
