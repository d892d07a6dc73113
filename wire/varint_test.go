package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 64, -65, 1000, -1000,
		1 << 20, -(1 << 20), 1<<62 - 1, -(1 << 62),
		math.MaxInt64, math.MinInt64}
	for _, n := range cases {
		buf := NewBuffer(16)
		written, err := PutVarint(buf, n)
		require.NoError(t, err)
		require.Equal(t, SizeVarint(n), written)
		require.LessOrEqual(t, written, 9, "varint must saturate at 9 bytes")

		buf.Flip()
		got, err := GetVarint(buf)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestPeekVarintLenDoesNotAdvance(t *testing.T) {
	buf := NewBuffer(16)
	_, err := PutVarint(buf, 300)
	require.NoError(t, err)
	buf.Flip()

	before := buf.Position()
	n, err := PeekVarintLen(buf)
	require.NoError(t, err)
	require.Equal(t, before, buf.Position())
	require.Equal(t, SizeVarint(300), n)
}

func TestVarintNineByteExtremes(t *testing.T) {
	for _, n := range []int64{math.MaxInt64, math.MinInt64} {
		require.Equal(t, 9, SizeVarint(n))

		buf := NewBuffer(16)
		written, err := PutVarint(buf, n)
		require.NoError(t, err)
		require.Equal(t, 9, written, "full-magnitude i64 must saturate at exactly 9 bytes")

		buf.Flip()
		got, err := GetVarint(buf)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestGetVarintUnderflow(t *testing.T) {
	// Every byte sets the continuation flag, so a truncated stream runs
	// out of bytes before the varint can complete.
	raw := []byte{0x80, 0x80, 0x80}
	buf := Wrap(raw)
	_, err := GetVarint(buf)
	require.ErrorIs(t, err, ErrBufferUnderflow)
}
