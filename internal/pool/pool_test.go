package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns requested length", func(t *testing.T) {
		s, release := GetFloat64Slice(64)
		defer release()

		require.Len(t, s, 64)
	})

	t.Run("grows when capacity is insufficient", func(t *testing.T) {
		_, release := GetFloat64Slice(4)
		release()

		s, release := GetFloat64Slice(4096)
		defer release()
		require.Len(t, s, 4096)
	})
}

func TestByteBufferPool(t *testing.T) {
	t.Run("get returns empty buffer", func(t *testing.T) {
		bb := GetReportBuffer()
		defer PutReportBuffer(bb)

		require.Zero(t, bb.Len())
		_, err := bb.Write([]byte("abc"))
		require.NoError(t, err)
		require.NoError(t, bb.WriteByte('d'))
		require.Equal(t, []byte("abcd"), bb.Bytes())
	})

	t.Run("put resets buffer", func(t *testing.T) {
		p := NewByteBufferPool(16, 0)
		bb := p.Get()
		_, _ = bb.Write([]byte("payload"))
		p.Put(bb)

		again := p.Get()
		require.Zero(t, again.Len())
	})

	t.Run("oversized buffers are dropped", func(t *testing.T) {
		p := NewByteBufferPool(8, 16)
		bb := p.Get()
		_, _ = bb.Write(make([]byte, 64))
		p.Put(bb)
		p.Put(nil)

		require.LessOrEqual(t, cap(p.Get().B), 16)
	})

	t.Run("write to", func(t *testing.T) {
		bb := NewByteBuffer(4)
		_, _ = bb.Write([]byte("xyz"))

		var out bytes.Buffer
		n, err := bb.WriteTo(&out)
		require.NoError(t, err)
		require.Equal(t, int64(3), n)
		require.Equal(t, "xyz", out.String())
	})
}
