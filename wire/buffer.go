package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBufferOverflow is wrapped into sumcodec's BufferOverflow error kind
// when a write cannot fit in the remaining capacity.
var ErrBufferOverflow = errors.New("wire: buffer overflow")

// ErrBufferUnderflow is wrapped into sumcodec's BufferUnderflow error kind
// when a read runs past the buffer's limit.
var ErrBufferUnderflow = errors.New("wire: buffer underflow")

// Buffer is the positioned, sized, mutable byte region spec.md §3.5
// describes: one abstraction that serves both write mode (relative puts
// advance position, up to the fixed capacity) and,
// after Flip, read mode (relative gets advance position, bounded by
// limit). It is modeled on vom's encbuf/decbuf pair merged into a single
// java.nio.ByteBuffer-shaped type, since sumcodec's facade accepts one
// value for both directions rather than two distinct buffer types.
//
// Buffer is not allocated or owned by the codec core; callers construct
// one (NewBuffer or Wrap) and pass it to the facade. It is not safe for
// concurrent use.
type Buffer struct {
	buf   []byte
	pos   int
	limit int
}

// NewBuffer returns an empty, fixed-capacity Buffer in write mode.
// Capacity does not grow: a Put that would exceed it fails with
// ErrBufferOverflow, matching spec.md §7's BufferOverflow error kind and
// the "caller retries with a larger buffer" recovery policy.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{buf: make([]byte, capacity), limit: 0}
}

// Wrap returns a Buffer in read mode over b's existing contents (position
// 0, limit len(b)). Its capacity is fixed at len(b); Puts past len(b)
// fail with ErrBufferOverflow.
func Wrap(b []byte) *Buffer {
	return &Buffer{buf: b, pos: 0, limit: len(b)}
}

// Position returns the current read/write cursor.
func (b *Buffer) Position() int { return b.pos }

// Limit returns the current limit: in write mode, the high-water mark of
// bytes written so far; in read mode, the end of valid data.
func (b *Buffer) Limit() int { return b.limit }

// SetPosition repositions the cursor without touching contents.
func (b *Buffer) SetPosition(p int) { b.pos = p }

// Flip switches a Buffer from write mode to read mode: limit becomes the
// current position (everything written so far), and position resets to
// zero, mirroring java.nio.ByteBuffer.flip().
func (b *Buffer) Flip() {
	b.limit = b.pos
	b.pos = 0
}

// Reset clears the buffer back to an empty write-mode state at the same
// capacity, without reallocating, so a caller may reuse it across
// multiple serialize calls. Per spec.md §4.5's back-reference-by-
// absolute-offset caveat, reusing a Buffer across values is safe for the
// wire format itself only because every public Serialize/Deserialize
// call resets its own dedup session (see codec.Dedup) — Reset here only
// concerns buffer contents, not any session state, which callers never
// see.
func (b *Buffer) Reset() {
	b.pos = 0
	b.limit = 0
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Bytes returns the buffer's valid contents, i.e. everything written so
// far (tracked as the high-water mark of Position, whether or not Flip
// has been called).
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.limit]
}

func (b *Buffer) grow(n int) ([]byte, error) {
	need := b.pos + n
	if need > len(b.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d remaining of %d capacity",
			ErrBufferOverflow, n, len(b.buf)-b.pos, len(b.buf))
	}
	start := b.pos
	b.pos = need
	if b.pos > b.limit {
		b.limit = b.pos
	}
	return b.buf[start:need], nil
}

// PutByte writes one byte at the current position, advancing it.
func (b *Buffer) PutByte(v byte) error {
	dst, err := b.grow(1)
	if err != nil {
		return err
	}
	dst[0] = v
	return nil
}

// PutBytes performs a relative bulk byte transfer, copying p into the
// buffer at the current position and advancing past it.
func (b *Buffer) PutBytes(p []byte) error {
	dst, err := b.grow(len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// PutInt8/16/32/64 and PutFloat32/64 write fixed-width big-endian values
// (spec.md §3.5's get/put family), used by PrimitiveValue and the
// fixed-width branches of RefValue (§4.4).
func (b *Buffer) PutInt8(v int8) error { return b.PutByte(byte(v)) }

func (b *Buffer) PutUint16(v uint16) error {
	dst, err := b.grow(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(dst, v)
	return nil
}

func (b *Buffer) PutInt16(v int16) error { return b.PutUint16(uint16(v)) }

func (b *Buffer) PutInt32(v int32) error {
	dst, err := b.grow(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(dst, uint32(v))
	return nil
}

func (b *Buffer) PutInt64(v int64) error {
	dst, err := b.grow(8)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(dst, uint64(v))
	return nil
}

func (b *Buffer) PutFloat32(v float32) error {
	return b.PutInt32(int32(math.Float32bits(v)))
}

func (b *Buffer) PutFloat64(v float64) error {
	return b.PutInt64(int64(math.Float64bits(v)))
}

// remaining returns the number of bytes still readable before limit.
func (b *Buffer) remaining() int { return b.limit - b.pos }

func (b *Buffer) take(n int) ([]byte, error) {
	if b.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferUnderflow, n, b.remaining())
	}
	start := b.pos
	b.pos += n
	return b.buf[start : start+n], nil
}

// GetByte reads one byte and advances the position.
func (b *Buffer) GetByte() (byte, error) {
	p, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// PeekByte reads one byte without advancing the position.
func (b *Buffer) PeekByte() (byte, error) {
	if b.remaining() < 1 {
		return 0, fmt.Errorf("%w: need 1 byte, have %d", ErrBufferUnderflow, b.remaining())
	}
	return b.buf[b.pos], nil
}

func (b *Buffer) GetBytes(n int) ([]byte, error) {
	p, err := b.take(n)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, n)
	copy(cp, p)
	return cp, nil
}

func (b *Buffer) GetInt8() (int8, error) {
	v, err := b.GetByte()
	return int8(v), err
}

func (b *Buffer) GetUint16() (uint16, error) {
	p, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func (b *Buffer) GetInt16() (int16, error) {
	v, err := b.GetUint16()
	return int16(v), err
}

func (b *Buffer) GetInt32() (int32, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p)), nil
}

func (b *Buffer) GetInt64() (int64, error) {
	p, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p)), nil
}

func (b *Buffer) GetFloat32() (float32, error) {
	v, err := b.GetInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (b *Buffer) GetFloat64() (float64, error) {
	v, err := b.GetInt64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}
