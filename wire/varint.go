package wire

// zigzagEncode maps a signed 64-bit integer to an unsigned one so that
// small-magnitude negative numbers also produce small encodings,
// spec.md §4.1's "zigzag interleaves negative values into small positive
// magnitudes" rationale: n -> (n<<1) ^ (n>>63).
func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// zigzagDecode reverses zigzagEncode.
func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// SizeVarint returns the exact number of bytes PutVarint will write for
// n: 1 byte for values in [-64, 63], growing by one byte per additional
// 7 significant bits of the zigzag-encoded magnitude, saturating at 9
// bytes for the full i64 range (spec.md §4.1): the first 8 bytes each
// carry 7 bits behind a continuation flag, and the 9th (reached only
// once those 56 bits are exhausted) carries the remaining 8 bits
// unconditionally, with no continuation flag of its own.
func SizeVarint(n int64) int {
	u := zigzagEncode(n)
	for i := 0; i < 8; i++ {
		if u < 0x80 {
			return i + 1
		}
		u >>= 7
	}
	return 9
}

// PutVarint writes n to buf as a zigzag-LEB128 varint and returns the
// number of bytes written: up to 8 bytes of 7 bits plus a continuation
// flag, then, if still unfinished, a 9th byte spending all 8 of its bits
// on the final remainder (spec.md §4.1's saturating-at-9 rule, so a full
// i64 magnitude never needs a 10th byte). Fails with ErrBufferOverflow
// (via Buffer) if buf cannot hold the encoding.
func PutVarint(buf *Buffer, n int64) (int, error) {
	u := zigzagEncode(n)
	for i := 0; i < 8; i++ {
		if u < 0x80 {
			if err := buf.PutByte(byte(u)); err != nil {
				return i, err
			}
			return i + 1, nil
		}
		if err := buf.PutByte(byte(u&0x7f) | 0x80); err != nil {
			return i, err
		}
		u >>= 7
	}
	if err := buf.PutByte(byte(u)); err != nil {
		return 8, err
	}
	return 9, nil
}

// GetVarint reads a zigzag-LEB128 varint from buf, advancing past it,
// and returns the decoded signed value. Mirrors PutVarint's byte shape:
// the 9th byte, if reached, is taken as-is with no continuation check.
// Fails with ErrBufferUnderflow if buf runs out before the encoding
// completes.
func GetVarint(buf *Buffer) (int64, error) {
	var u uint64
	var shift uint
	for i := 0; i < 8; i++ {
		b, err := buf.GetByte()
		if err != nil {
			return 0, err
		}
		if b&0x80 == 0 {
			u |= uint64(b) << shift
			return zigzagDecode(u), nil
		}
		u |= uint64(b&0x7f) << shift
		shift += 7
	}
	b, err := buf.GetByte()
	if err != nil {
		return 0, err
	}
	u |= uint64(b) << shift
	return zigzagDecode(u), nil
}

// PeekVarintLen reports how many bytes the next varint in buf occupies,
// without advancing the position.
func PeekVarintLen(buf *Buffer) (int, error) {
	save := buf.Position()
	defer buf.SetPosition(save)
	for i := 0; i < 8; i++ {
		b, err := buf.GetByte()
		if err != nil {
			return 0, err
		}
		if b&0x80 == 0 {
			return i + 1, nil
		}
	}
	if _, err := buf.GetByte(); err != nil {
		return 0, err
	}
	return 9, nil
}
