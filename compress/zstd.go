package compress

// zstdLevel is the Zstandard level used for report payloads.
const zstdLevel = 3

// ZstdCompressor provides Zstandard compression for report payloads.
//
// Builds with cgo use github.com/valyala/gozstd; pure Go builds use
// github.com/klauspost/compress/zstd. Both produce standard Zstandard frames,
// so either build decodes the other's output.
//
// Example:
//
//	compressed, err := NewZstdCompressor().Compress(payload)
//	if err != nil {
//		return err
//	}
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
