// Package compress provides the payload codecs used by report encoding.
//
// # Supported Algorithms
//
//   - None: payload stored as is
//   - Zstd: best ratio, suited to archived report tables
//   - S2: fast, moderate ratio
//   - LZ4: fastest decoding; blocks carry their decoded length
//
// Zstd is backed by github.com/valyala/gozstd in cgo builds and by
// github.com/klauspost/compress/zstd otherwise.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(packed)
//
// Corrupted input fails with errs.ErrInvalidPayload. All codecs are safe for
// concurrent use; the LZ4 and pure Go Zstd codecs pool their internal state.
package compress
