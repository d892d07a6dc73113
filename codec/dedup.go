package codec

import (
	"fmt"

	"github.com/sumcodec/sumcodec/wire"
)

// Dedup is the Name Dedup table (spec.md §4.5): within one Serialize or
// Deserialize call, a class's fully-qualified name is spelled out in full
// only the first time it is written; every later occurrence is replaced
// by a signed varint delta back to the buffer offset where it was first
// written, saving bytes on graphs with many polymorphic fields of the
// same shape.
//
// A Dedup is single-use: construct one per top-level Serialize/
// Deserialize call (see Engine), never shared across calls, since offsets
// are only meaningful within one buffer.
type Dedup struct {
	writeSeen map[string]int
	readSeen  map[int]string
}

// NewDedup returns an empty Dedup session.
func NewDedup() *Dedup {
	return &Dedup{writeSeen: make(map[string]int), readSeen: make(map[int]string)}
}

// WriteName writes name's class-name-ref at buf's current position: a
// non-negative varint length plus the raw name bytes the first time name
// is seen, or a negative varint offset delta on every later occurrence.
func (d *Dedup) WriteName(buf *wire.Buffer, name string) error {
	here := buf.Position()
	if prev, ok := d.writeSeen[name]; ok {
		delta := int64(prev) - int64(here) // always < 0: prev precedes here
		_, err := wire.PutVarint(buf, delta)
		return err
	}
	if _, err := wire.PutVarint(buf, int64(len(name))); err != nil {
		return err
	}
	if err := buf.PutBytes([]byte(name)); err != nil {
		return err
	}
	d.writeSeen[name] = here
	return nil
}

// ReadName reads a class-name-ref at buf's current position, resolving a
// back-reference against names previously read in this same session.
func (d *Dedup) ReadName(buf *wire.Buffer) (string, error) {
	here := buf.Position()
	n, err := wire.GetVarint(buf)
	if err != nil {
		return "", err
	}
	if n < 0 {
		absolute := here + int(n)
		name, ok := d.readSeen[absolute]
		if !ok {
			return "", fmt.Errorf("%w: back-reference to offset %d has no prior name", ErrMalformedStream, absolute)
		}
		d.readSeen[here] = name
		return name, nil
	}
	raw, err := buf.GetBytes(int(n))
	if err != nil {
		return "", err
	}
	name := string(raw)
	d.readSeen[here] = name
	return name, nil
}
