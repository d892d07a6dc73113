package codec

import (
	"fmt"
	"reflect"

	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

// EvolutionMode selects how a record's wire fingerprint is reconciled
// against the reader's locally-known shape for the same class name
// (spec.md §4.9).
type EvolutionMode int

const (
	// Strict requires every record's wire fingerprint to exactly match
	// the reader's local fingerprint for that class name; any mismatch
	// fails with ErrSchemaMismatch.
	Strict EvolutionMode = iota
	// Defaulted accepts a fingerprint mismatch: fields common to both
	// shapes (by position, up to the shorter field count) are read
	// normally, fields the sender wrote beyond the reader's local field
	// count are skipped, and fields the reader's local shape declares
	// beyond what the sender wrote are left at their Go zero value.
	Defaulted
)

// Read deserializes a value of the Engine's root type from buf.
func (e *Engine) Read(buf *wire.Buffer, mode EvolutionMode) (reflect.Value, error) {
	ctx := &readCtx{dedup: NewDedup(), table: e.Table, mode: mode}
	v, _, err := ctx.readNode(buf, e.Root)
	return v, err
}

type readCtx struct {
	dedup *Dedup
	table *schema.Table
	mode  EvolutionMode
}

// readNode reads one Type Tree node, returning its Go value (of
// t.GoType) and whether it was present (only meaningful for KindRef and
// KindPrimitive nodes read as part of a nullable field; containers
// always report true since their own tag already encodes absence where
// applicable).
func (c *readCtx) readNode(buf *wire.Buffer, t *schema.Type) (reflect.Value, bool, error) {
	switch t.Kind {
	case schema.KindPrimitive:
		v, err := c.readPrimitive(buf, t.RefKind, t.GoType)
		return v, true, err

	case schema.KindRef:
		tag, err := buf.GetByte()
		if err != nil {
			return reflect.Value{}, false, err
		}
		if wire.Tag(tag) == wire.TagNull {
			return reflect.Zero(t.GoType), false, nil
		}
		v, err := c.readRef(buf, t, wire.Tag(tag))
		return v, true, err

	case schema.KindArray, schema.KindList:
		wantTag := wire.TagList
		if t.Kind == schema.KindArray {
			wantTag = wire.TagArray
		}
		if err := expectTag(buf, wantTag); err != nil {
			return reflect.Value{}, false, err
		}
		n, err := wire.GetVarint(buf)
		if err != nil {
			return reflect.Value{}, false, err
		}
		out := reflect.MakeSlice(t.GoType, int(n), int(n))
		if t.IsFastPathArray() {
			for i := 0; i < int(n); i++ {
				ev, err := c.readPrimitive(buf, t.Elem.RefKind, t.Elem.GoType)
				if err != nil {
					return reflect.Value{}, false, err
				}
				out.Index(i).Set(ev)
			}
			return out, true, nil
		}
		for i := 0; i < int(n); i++ {
			ev, _, err := c.readNode(buf, t.Elem)
			if err != nil {
				return reflect.Value{}, false, err
			}
			out.Index(i).Set(ev)
		}
		return out, true, nil

	case schema.KindMap:
		if err := expectTag(buf, wire.TagMap); err != nil {
			return reflect.Value{}, false, err
		}
		n, err := wire.GetVarint(buf)
		if err != nil {
			return reflect.Value{}, false, err
		}
		out := reflect.New(t.GoType).Elem()
		entryType := out.FieldByName("Entries").Type().Elem()
		entries := reflect.MakeSlice(reflect.SliceOf(entryType), 0, int(n))
		for i := 0; i < int(n); i++ {
			kv, _, err := c.readNode(buf, t.Key)
			if err != nil {
				return reflect.Value{}, false, err
			}
			vv, _, err := c.readNode(buf, t.Elem)
			if err != nil {
				return reflect.Value{}, false, err
			}
			entry := reflect.New(entryType).Elem()
			entry.FieldByName("Key").Set(kv)
			entry.FieldByName("Value").Set(vv)
			entries = reflect.Append(entries, entry)
		}
		out.FieldByName("Entries").Set(entries)
		return out, true, nil

	case schema.KindOptional:
		tag, err := buf.GetByte()
		if err != nil {
			return reflect.Value{}, false, err
		}
		out := reflect.New(t.GoType).Elem()
		if wire.Tag(tag) == wire.TagNull {
			return out, true, nil
		}
		if wire.Tag(tag) != wire.TagOptional {
			return reflect.Value{}, false, fmt.Errorf("%w: expected Optional or Null tag, got %s", ErrMalformedStream, wire.Tag(tag))
		}
		ev, _, err := c.readNode(buf, t.Elem)
		if err != nil {
			return reflect.Value{}, false, err
		}
		out.FieldByName("Present").SetBool(true)
		out.FieldByName("Value").Set(ev)
		return out, true, nil

	default:
		return reflect.Value{}, false, fmt.Errorf("codec: read: unhandled Kind %v", t.Kind)
	}
}

// readRef reads a non-null Ref node's payload; tag is the already-
// consumed leading tag byte.
func (c *readCtx) readRef(buf *wire.Buffer, t *schema.Type, tag wire.Tag) (reflect.Value, error) {
	switch t.RefKind {
	case schema.RefBool, schema.RefI8, schema.RefU16Char, schema.RefI16,
		schema.RefI32, schema.RefI64, schema.RefF32, schema.RefF64:
		if tag != tagForRefKind(t.RefKind) {
			return reflect.Value{}, fmt.Errorf("%w: expected %s, got %s", ErrMalformedStream, tagForRefKind(t.RefKind), tag)
		}
		return c.readPrimitive(buf, t.RefKind, t.GoType)

	case schema.RefString:
		if tag != wire.TagString {
			return reflect.Value{}, fmt.Errorf("%w: expected String tag, got %s", ErrMalformedStream, tag)
		}
		n, err := wire.GetVarint(buf)
		if err != nil {
			return reflect.Value{}, err
		}
		raw, err := buf.GetBytes(int(n))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(string(raw)), nil

	case schema.RefUuid:
		if tag != wire.TagUuid {
			return reflect.Value{}, fmt.Errorf("%w: expected Uuid tag, got %s", ErrMalformedStream, tag)
		}
		raw, err := buf.GetBytes(16)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t.GoType).Elem()
		reflect.Copy(out, reflect.ValueOf(raw))
		return out, nil

	case schema.RefEnum:
		if tag != wire.TagEnum {
			return reflect.Value{}, fmt.Errorf("%w: expected Enum tag, got %s", ErrMalformedStream, tag)
		}
		if len(t.Class.Permits) > 0 {
			return c.readDispatchBody(buf, t, false)
		}
		return c.readEnumBody(buf, t.Class)

	case schema.RefRecord:
		if tag != wire.TagRecord {
			return reflect.Value{}, fmt.Errorf("%w: expected Record tag, got %s", ErrMalformedStream, tag)
		}
		if len(t.Class.Permits) > 0 {
			return c.readDispatchBody(buf, t, false)
		}
		return c.readRecordBody(buf, t.Class)

	case schema.RefInterface:
		if tag != wire.TagInterface {
			return reflect.Value{}, fmt.Errorf("%w: expected Interface tag, got %s", ErrMalformedStream, tag)
		}
		return c.readDispatchBody(buf, t, true)

	default:
		return reflect.Value{}, fmt.Errorf("codec: read: unhandled RefKind %v", t.RefKind)
	}
}

func (c *readCtx) readEnumBody(buf *wire.Buffer, class *schema.Class) (reflect.Value, error) {
	if _, err := c.dedup.ReadName(buf); err != nil {
		return reflect.Value{}, err
	}
	return c.readEnumPayload(buf, class)
}

// readEnumPayload reads an enum's ordinal, assuming its dedup name has
// already been consumed by the caller (the Polymorphic Dispatcher reads
// a leaf's name once to resolve it before reading its payload).
func (c *readCtx) readEnumPayload(buf *wire.Buffer, class *schema.Class) (reflect.Value, error) {
	idx, err := wire.GetVarint(buf)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(class.ReflectType).Elem()
	out.SetInt(idx)
	return out, nil
}

// readRecordBody reads a record's name, fingerprint, declared field
// count, and that many field values, applying the reconciliation rule
// EvolutionMode selects when the wire fingerprint disagrees with the
// reader's local fingerprint for this class name (spec.md §4.9).
func (c *readCtx) readRecordBody(buf *wire.Buffer, class *schema.Class) (reflect.Value, error) {
	if _, err := c.dedup.ReadName(buf); err != nil {
		return reflect.Value{}, err
	}
	return c.readRecordPayload(buf, class)
}

// readRecordPayload reads a record's fingerprint, declared field count,
// and that many field values, assuming its dedup name has already been
// consumed by the caller.
func (c *readCtx) readRecordPayload(buf *wire.Buffer, class *schema.Class) (reflect.Value, error) {
	wireFP, err := buf.GetInt64()
	if err != nil {
		return reflect.Value{}, err
	}
	n, err := wire.GetVarint(buf)
	if err != nil {
		return reflect.Value{}, err
	}

	out := class.New()
	if uint64(wireFP) != class.Fingerprint {
		if c.mode == Strict {
			return reflect.Value{}, fmt.Errorf("%w: %s: wire fingerprint %x != local %x",
				ErrSchemaMismatch, class.Name, uint64(wireFP), class.Fingerprint)
		}
		return out, c.readDefaulted(buf, class, out, int(n))
	}

	for i := 0; i < int(n) && i < len(class.Fields); i++ {
		f := class.Fields[i]
		fv, present, err := c.readNode(buf, f.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s.%s: %w", class.Name, f.Name, err)
		}
		setField(out, f, fv, present)
	}
	return out, nil
}

// readDefaulted implements Defaulted mode's prefix match: the first
// min(wireFieldCount, len(class.Fields)) fields are read positionally
// into out; any wire fields beyond that are skipped structurally; any
// local fields beyond what the wire sent keep their Go zero value.
func (c *readCtx) readDefaulted(buf *wire.Buffer, class *schema.Class, out reflect.Value, wireFieldCount int) error {
	common := wireFieldCount
	if len(class.Fields) < common {
		common = len(class.Fields)
	}
	for i := 0; i < common; i++ {
		f := class.Fields[i]
		fv, present, err := c.readNode(buf, f.Type)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", class.Name, f.Name, err)
		}
		setField(out, f, fv, present)
	}
	for i := common; i < wireFieldCount; i++ {
		if err := c.skipValue(buf); err != nil {
			return fmt.Errorf("%s: skipping extra wire field %d: %w", class.Name, i, err)
		}
	}
	return nil
}

// readDispatchBody resolves a union's dynamic leaf by dedup name and
// reads it, mirroring writeCtx.writeDispatch. envelope reports whether a
// TagInterface tag already preceded this call: a genuinely mixed union
// wraps the leaf's name and an inner tag byte around its payload, while
// a union that tie-broke to an all-Record or all-Enum permit set has no
// envelope, since the outer tag (already checked by readRef) and the
// leaf's own framing are enough to self-delimit it.
func (c *readCtx) readDispatchBody(buf *wire.Buffer, t *schema.Type, envelope bool) (reflect.Value, error) {
	name, err := c.dedup.ReadName(buf)
	if err != nil {
		return reflect.Value{}, err
	}
	var leafClass *schema.Class
	for _, p := range t.Class.Permits {
		if p.Name == name {
			leafClass = p
			break
		}
	}
	if leafClass == nil {
		return reflect.Value{}, fmt.Errorf("%w: %s does not permit %s", ErrDisallowedType, t.Class.Name, name)
	}

	var concrete reflect.Value
	if envelope {
		var innerTag byte
		innerTag, err = buf.GetByte()
		if err != nil {
			return reflect.Value{}, err
		}
		if leafClass.Tag == schema.ClassEnum {
			if wire.Tag(innerTag) != wire.TagEnum {
				return reflect.Value{}, fmt.Errorf("%w: expected Enum tag for %s, got %s", ErrMalformedStream, name, wire.Tag(innerTag))
			}
			concrete, err = c.readEnumBody(buf, leafClass)
		} else {
			if wire.Tag(innerTag) != wire.TagRecord {
				return reflect.Value{}, fmt.Errorf("%w: expected Record tag for %s, got %s", ErrMalformedStream, name, wire.Tag(innerTag))
			}
			concrete, err = c.readRecordBody(buf, leafClass)
		}
	} else if leafClass.Tag == schema.ClassEnum {
		concrete, err = c.readEnumPayload(buf, leafClass)
	} else {
		concrete, err = c.readRecordPayload(buf, leafClass)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return c.boxConcrete(t.GoType, leafClass, concrete), nil
}

// boxConcrete wraps a leaf's decoded value into goType, the union
// field's declared Go interface type. Record leaves are stored behind a
// pointer, matching RegisterUnion's (*Circle)(nil) pointer-receiver
// convention; Enum leaves implement the interface by value and are set
// directly.
func (c *readCtx) boxConcrete(goType reflect.Type, leafClass *schema.Class, concrete reflect.Value) reflect.Value {
	iface := reflect.New(goType).Elem()
	if leafClass.Tag == schema.ClassRecord {
		ptr := reflect.New(leafClass.ReflectType)
		ptr.Elem().Set(concrete)
		iface.Set(ptr)
	} else {
		iface.Set(concrete)
	}
	return iface
}

// skipValue consumes one self-delimited wire node at the current
// position without needing its corresponding Type Tree node, used by
// Defaulted mode to pass over fields a sender wrote that the reader's
// local record no longer declares.
func (c *readCtx) skipValue(buf *wire.Buffer) error {
	tag, err := buf.GetByte()
	if err != nil {
		return err
	}
	switch wire.Tag(tag) {
	case wire.TagNull:
		return nil
	case wire.TagBool, wire.TagI8:
		_, err := buf.GetByte()
		return err
	case wire.TagU16Char, wire.TagI16:
		_, err := buf.GetBytes(2)
		return err
	case wire.TagI32, wire.TagF32:
		_, err := buf.GetBytes(4)
		return err
	case wire.TagI64, wire.TagF64:
		_, err := buf.GetBytes(8)
		return err
	case wire.TagString:
		n, err := wire.GetVarint(buf)
		if err != nil {
			return err
		}
		_, err = buf.GetBytes(int(n))
		return err
	case wire.TagUuid:
		_, err := buf.GetBytes(16)
		return err
	case wire.TagEnum:
		if _, err := c.dedup.ReadName(buf); err != nil {
			return err
		}
		_, err := wire.GetVarint(buf)
		return err
	case wire.TagRecord:
		if _, err := c.dedup.ReadName(buf); err != nil {
			return err
		}
		if _, err := buf.GetInt64(); err != nil {
			return err
		}
		n, err := wire.GetVarint(buf)
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := c.skipValue(buf); err != nil {
				return err
			}
		}
		return nil
	case wire.TagInterface:
		if _, err := c.dedup.ReadName(buf); err != nil {
			return err
		}
		return c.skipValue(buf)
	case wire.TagArray, wire.TagList:
		n, err := wire.GetVarint(buf)
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := c.skipValue(buf); err != nil {
				return err
			}
		}
		return nil
	case wire.TagMap:
		n, err := wire.GetVarint(buf)
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := c.skipValue(buf); err != nil {
				return err
			}
			if err := c.skipValue(buf); err != nil {
				return err
			}
		}
		return nil
	case wire.TagOptional:
		return c.skipValue(buf)
	default:
		return fmt.Errorf("%w: unrecognized tag 0x%02x", ErrMalformedStream, tag)
	}
}

func (c *readCtx) readPrimitive(buf *wire.Buffer, rk schema.RefKind, goType reflect.Type) (reflect.Value, error) {
	switch rk {
	case schema.RefBool:
		b, err := buf.GetByte()
		return reflect.ValueOf(b != 0), err
	case schema.RefI8:
		v, err := buf.GetInt8()
		return reflect.ValueOf(v), err
	case schema.RefU16Char:
		v, err := buf.GetUint16()
		return reflect.ValueOf(v), err
	case schema.RefI16:
		v, err := buf.GetInt16()
		return reflect.ValueOf(v), err
	case schema.RefI32:
		v, err := buf.GetInt32()
		return reflect.ValueOf(v), err
	case schema.RefI64:
		v, err := buf.GetInt64()
		return reflect.ValueOf(v), err
	case schema.RefF32:
		v, err := buf.GetFloat32()
		return reflect.ValueOf(v), err
	case schema.RefF64:
		v, err := buf.GetFloat64()
		return reflect.ValueOf(v), err
	default:
		return reflect.Value{}, fmt.Errorf("codec: read: %v is not a fixed-width primitive", rk)
	}
}

func expectTag(buf *wire.Buffer, want wire.Tag) error {
	got, err := buf.GetByte()
	if err != nil {
		return err
	}
	if wire.Tag(got) != want {
		return fmt.Errorf("%w: expected %s tag, got %s", ErrMalformedStream, want, wire.Tag(got))
	}
	return nil
}

// setField writes fv into out's f-th field, wrapping it in a newly
// allocated pointer when the record's Go struct declares that field as a
// pointer (the nullable representation), matching how writeNode
// dereferences pointer fields before encoding them. A field read as
// absent (present == false) is left at its Go zero value: nil for a
// pointer field, "" / 0 / etc. for anything else.
func setField(out reflect.Value, f schema.Field, fv reflect.Value, present bool) {
	target := out.Field(f.RTIndex)
	if target.Kind() == reflect.Ptr {
		if !present {
			return
		}
		ptr := reflect.New(target.Type().Elem())
		ptr.Elem().Set(fv)
		target.Set(ptr)
		return
	}
	target.Set(fv)
}
