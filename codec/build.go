package codec

import (
	"fmt"
	"reflect"

	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

// Engine is the Codec Builder (spec.md §4.4) for one analyzed root type:
// it writes, reads, and sizes values against a schema.Type Tree and
// schema.Table, built once per distinct root type and reused across many
// Serialize/Deserialize calls (see sumcodec.Codec's cache).
type Engine struct {
	Root  *schema.Type
	Table *schema.Table
}

// NewEngine wraps an already-analyzed root type and table.
func NewEngine(root *schema.Type, table *schema.Table) *Engine {
	return &Engine{Root: root, Table: table}
}

// writeCtx threads the per-call Dedup session and cycle-detection set
// through one recursive Write call, analogous to vom's single-use
// typeEncoder built per Encoder.Encode.
type writeCtx struct {
	dedup     *Dedup
	visiting  map[uintptr]bool
}

// Write serializes v (of the Engine's root type) to buf.
func (e *Engine) Write(buf *wire.Buffer, v reflect.Value) error {
	ctx := &writeCtx{dedup: NewDedup(), visiting: make(map[uintptr]bool)}
	return ctx.writeNode(buf, e.Root, v)
}

func (c *writeCtx) writeNode(buf *wire.Buffer, t *schema.Type, v reflect.Value) error {
	switch t.Kind {
	case schema.KindPrimitive:
		return c.writePrimitive(buf, t.RefKind, v)

	case schema.KindRef:
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return writeTag(buf, wire.TagNull)
			}
			v = v.Elem()
		}
		return c.writeRef(buf, t, v)

	case schema.KindArray, schema.KindList:
		tag := wire.TagList
		if t.Kind == schema.KindArray {
			tag = wire.TagArray
		}
		if err := writeTag(buf, tag); err != nil {
			return err
		}
		n := v.Len()
		if _, err := wire.PutVarint(buf, int64(n)); err != nil {
			return err
		}
		if t.IsFastPathArray() {
			for i := 0; i < n; i++ {
				if err := c.writePrimitive(buf, t.Elem.RefKind, v.Index(i)); err != nil {
					return err
				}
			}
			return nil
		}
		for i := 0; i < n; i++ {
			if err := c.writeNode(buf, t.Elem, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case schema.KindMap:
		if err := writeTag(buf, wire.TagMap); err != nil {
			return err
		}
		entries := v.FieldByName("Entries")
		n := entries.Len()
		if _, err := wire.PutVarint(buf, int64(n)); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			entry := entries.Index(i)
			if err := c.writeNode(buf, t.Key, entry.FieldByName("Key")); err != nil {
				return err
			}
			if err := c.writeNode(buf, t.Elem, entry.FieldByName("Value")); err != nil {
				return err
			}
		}
		return nil

	case schema.KindOptional:
		if !v.FieldByName("Present").Bool() {
			return writeTag(buf, wire.TagNull)
		}
		if err := writeTag(buf, wire.TagOptional); err != nil {
			return err
		}
		return c.writeNode(buf, t.Elem, v.FieldByName("Value"))

	default:
		return fmt.Errorf("codec: write: unhandled Kind %v", t.Kind)
	}
}

// writeRef writes a non-nil Ref node's tag and payload. v has already
// been dereferenced past any Go pointer.
func (c *writeCtx) writeRef(buf *wire.Buffer, t *schema.Type, v reflect.Value) error {
	switch t.RefKind {
	case schema.RefBool, schema.RefI8, schema.RefU16Char, schema.RefI16,
		schema.RefI32, schema.RefI64, schema.RefF32, schema.RefF64:
		if err := writeTag(buf, tagForRefKind(t.RefKind)); err != nil {
			return err
		}
		return c.writePrimitive(buf, t.RefKind, v)

	case schema.RefString:
		if err := writeTag(buf, wire.TagString); err != nil {
			return err
		}
		s := v.String()
		if _, err := wire.PutVarint(buf, int64(len(s))); err != nil {
			return err
		}
		return buf.PutBytes([]byte(s))

	case schema.RefUuid:
		if err := writeTag(buf, wire.TagUuid); err != nil {
			return err
		}
		raw := make([]byte, 16)
		reflect.Copy(reflect.ValueOf(raw), v)
		return buf.PutBytes(raw)

	case schema.RefEnum:
		if len(t.Class.Permits) > 0 {
			return c.writeDispatch(buf, t, v)
		}
		if err := writeTag(buf, wire.TagEnum); err != nil {
			return err
		}
		if err := c.dedup.WriteName(buf, t.Class.Name); err != nil {
			return err
		}
		idx := v.MethodByName("EnumIndex").Call(nil)[0].Int()
		_, err := wire.PutVarint(buf, idx)
		return err

	case schema.RefRecord:
		if len(t.Class.Permits) > 0 {
			return c.writeDispatch(buf, t, v)
		}
		return c.writeRecord(buf, t.Class, v)

	case schema.RefInterface:
		return c.writeDispatch(buf, t, v)

	default:
		return fmt.Errorf("codec: write: unhandled RefKind %v", t.RefKind)
	}
}

func (c *writeCtx) writeRecord(buf *wire.Buffer, class *schema.Class, v reflect.Value) error {
	if v.CanAddr() {
		ptr := v.Addr().Pointer()
		if c.visiting[ptr] {
			return ErrCycleDetected
		}
		c.visiting[ptr] = true
		defer delete(c.visiting, ptr)
	}
	if err := writeTag(buf, wire.TagRecord); err != nil {
		return err
	}
	if err := c.dedup.WriteName(buf, class.Name); err != nil {
		return err
	}
	// The fingerprint and field count make every record value
	// self-delimited on the wire (spec.md §4.8/§4.9): a reader that
	// doesn't recognize this shape, or is only skipping past it to reach
	// a later field, never needs this class's Go type to know how many
	// bytes it occupies.
	if err := buf.PutInt64(int64(class.Fingerprint)); err != nil {
		return err
	}
	if _, err := wire.PutVarint(buf, int64(len(class.Fields))); err != nil {
		return err
	}
	for _, f := range class.Fields {
		if err := c.writeNode(buf, f.Type, v.Field(f.RTIndex)); err != nil {
			return fmt.Errorf("%s.%s: %w", class.Name, f.Name, err)
		}
	}
	return nil
}

// writeDispatch resolves v's dynamic concrete type against t.Class's
// permitted leaf set (spec.md §4.6) and writes it. A genuinely mixed
// union (Record and Enum leaves both permitted) gets the Polymorphic
// Dispatcher's envelope: TagInterface, the concrete class's name, then
// that class's own Record/Enum payload. A union that tie-broke to an
// all-Record or all-Enum permit set skips the envelope entirely — the
// leaf's own dedup name plus fingerprint/field-count (or ordinal)
// framing already self-delimits it, so the extra tag and name would be
// redundant.
func (c *writeCtx) writeDispatch(buf *wire.Buffer, t *schema.Type, v reflect.Value) error {
	concrete := v
	if concrete.Kind() == reflect.Interface {
		concrete = concrete.Elem()
	}
	if concrete.Kind() == reflect.Ptr {
		if concrete.IsNil() {
			return writeTag(buf, wire.TagNull)
		}
		concrete = concrete.Elem()
	}
	leafClass, ok := t.Class.LookupPermitted(concrete.Type())
	if !ok {
		return fmt.Errorf("%w: %s does not permit %s", ErrDisallowedType, t.Class.Name, concrete.Type())
	}
	if t.Class.Tag == schema.ClassInterface {
		if err := writeTag(buf, wire.TagInterface); err != nil {
			return err
		}
		if err := c.dedup.WriteName(buf, leafClass.Name); err != nil {
			return err
		}
	}
	leafRefKind := schema.RefRecord
	if leafClass.Tag == schema.ClassEnum {
		leafRefKind = schema.RefEnum
	}
	// Delegate to the ordinary Ref path for the concrete leaf's own
	// tag+name+payload, built against a Ref node with no Permits so the
	// delegated call writes directly instead of re-dispatching.
	return c.writeRef(buf, schema.Ref(leafRefKind, leafClass), concrete)
}

func (c *writeCtx) writePrimitive(buf *wire.Buffer, rk schema.RefKind, v reflect.Value) error {
	switch rk {
	case schema.RefBool:
		var b byte
		if v.Bool() {
			b = 1
		}
		return buf.PutByte(b)
	case schema.RefI8:
		return buf.PutInt8(int8(v.Int()))
	case schema.RefU16Char:
		return buf.PutUint16(uint16(v.Uint()))
	case schema.RefI16:
		return buf.PutInt16(int16(v.Int()))
	case schema.RefI32:
		return buf.PutInt32(int32(v.Int()))
	case schema.RefI64:
		return buf.PutInt64(v.Int())
	case schema.RefF32:
		return buf.PutFloat32(float32(v.Float()))
	case schema.RefF64:
		return buf.PutFloat64(v.Float())
	default:
		return fmt.Errorf("codec: write: %v is not a fixed-width primitive", rk)
	}
}

func writeTag(buf *wire.Buffer, t wire.Tag) error { return buf.PutByte(byte(t)) }

func tagForRefKind(rk schema.RefKind) wire.Tag {
	switch rk {
	case schema.RefBool:
		return wire.TagBool
	case schema.RefI8:
		return wire.TagI8
	case schema.RefU16Char:
		return wire.TagU16Char
	case schema.RefI16:
		return wire.TagI16
	case schema.RefI32:
		return wire.TagI32
	case schema.RefI64:
		return wire.TagI64
	case schema.RefF32:
		return wire.TagF32
	case schema.RefF64:
		return wire.TagF64
	default:
		return wire.TagNull
	}
}
