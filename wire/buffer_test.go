package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferPutGetRoundTrip(t *testing.T) {
	buf := NewBuffer(64)
	require.NoError(t, buf.PutByte(0x7f))
	require.NoError(t, buf.PutInt32(-12345))
	require.NoError(t, buf.PutFloat64(3.25))
	require.NoError(t, buf.PutBytes([]byte("hi")))

	buf.Flip()
	b, err := buf.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), b)

	i, err := buf.GetInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-12345), i)

	f, err := buf.GetFloat64()
	require.NoError(t, err)
	require.Equal(t, 3.25, f)

	raw, err := buf.GetBytes(2)
	require.NoError(t, err)
	require.Equal(t, "hi", string(raw))
}

func TestBufferOverflowIsFixedCapacity(t *testing.T) {
	buf := NewBuffer(2)
	require.NoError(t, buf.PutByte(1))
	require.NoError(t, buf.PutByte(2))
	require.ErrorIs(t, buf.PutByte(3), ErrBufferOverflow)
}

func TestBufferUnderflow(t *testing.T) {
	buf := NewBuffer(1)
	require.NoError(t, buf.PutByte(9))
	buf.Flip()
	_, err := buf.GetByte()
	require.NoError(t, err)
	_, err = buf.GetByte()
	require.ErrorIs(t, err, ErrBufferUnderflow)
}

func TestBufferResetReusesCapacity(t *testing.T) {
	buf := NewBuffer(4)
	require.NoError(t, buf.PutInt32(1))
	require.Equal(t, 4, buf.Cap())
	buf.Reset()
	require.Equal(t, 0, buf.Position())
	require.Equal(t, 0, buf.Limit())
	require.NoError(t, buf.PutInt32(2))
}
