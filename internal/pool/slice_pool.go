// Package pool provides sync.Pool backed scratch buffers used on hot paths:
// float64 slices for the least-squares solver and byte buffers for report
// encoding.
package pool

import "sync"

var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a float64 slice of length size from the pool.
//
// The contents of the returned slice are unspecified. The caller must call the
// returned cleanup function once the slice is no longer referenced.
//
// Example:
//
//	trial, release := pool.GetFloat64Slice(n)
//	defer release()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)

	s := *ptr
	if cap(s) < size {
		s = make([]float64, size)
	}
	s = s[:size]
	*ptr = s

	return s, func() { float64SlicePool.Put(ptr) }
}
