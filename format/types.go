// Package format defines the wire constants shared by the report codecs.
package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/xepto/errs"
)

// CompressionType identifies the codec applied to a report payload.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// CompressionTypes lists every supported compression type.
var CompressionTypes = []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression returns the CompressionType named s, case-insensitively.
func ParseCompression(s string) (CompressionType, error) {
	for _, c := range CompressionTypes {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown compression %q", errs.ErrInvalidConfig, s)
}
