// Package hash computes stable 64-bit identities for curves.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// CurveID hashes the identifying labels of a curve together with its data.
//
// Labels are length-prefixed and floats hashed by their IEEE-754 bits, so two
// curves share an ID only when every label and value matches exactly.
func CurveID(labels []string, series ...[]float64) uint64 {
	d := xxhash.New()
	var buf [8]byte

	for _, l := range labels {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(l)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(l)
	}
	for _, s := range series {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = d.Write(buf[:])
		for _, v := range s {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
	}

	return d.Sum64()
}
