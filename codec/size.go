package codec

import (
	"fmt"
	"reflect"

	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

// Size computes the exact encoded length of v without writing any bytes,
// so callers can allocate a precisely sized wire.Buffer up front instead
// of over-allocating or growing (spec.md §4.4's third member of the
// Writer/Reader/Sizer triad). It shares the write path's Dedup and cycle
// bookkeeping since the name table and cycle guard affect size the same
// way they affect the bytes actually written.
func (e *Engine) Size(v reflect.Value) (int, error) {
	ctx := &sizeCtx{dedup: NewDedup(), visiting: make(map[uintptr]bool)}
	return ctx.sizeNode(e.Root, v)
}

type sizeCtx struct {
	dedup    *Dedup
	visiting map[uintptr]bool
}

func (c *sizeCtx) sizeNode(t *schema.Type, v reflect.Value) (int, error) {
	switch t.Kind {
	case schema.KindPrimitive:
		return fixedWidth(t.RefKind), nil

	case schema.KindRef:
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return 1, nil // TagNull
			}
			v = v.Elem()
		}
		return c.sizeRef(t, v)

	case schema.KindArray, schema.KindList:
		n := v.Len()
		total := 1 + wire.SizeVarint(int64(n)) // tag + count
		if t.IsFastPathArray() {
			return total + n*fixedWidth(t.Elem.RefKind), nil
		}
		for i := 0; i < n; i++ {
			s, err := c.sizeNode(t.Elem, v.Index(i))
			if err != nil {
				return 0, err
			}
			total += s
		}
		return total, nil

	case schema.KindMap:
		entries := v.FieldByName("Entries")
		n := entries.Len()
		total := 1 + wire.SizeVarint(int64(n))
		for i := 0; i < n; i++ {
			entry := entries.Index(i)
			ks, err := c.sizeNode(t.Key, entry.FieldByName("Key"))
			if err != nil {
				return 0, err
			}
			vs, err := c.sizeNode(t.Elem, entry.FieldByName("Value"))
			if err != nil {
				return 0, err
			}
			total += ks + vs
		}
		return total, nil

	case schema.KindOptional:
		if !v.FieldByName("Present").Bool() {
			return 1, nil
		}
		s, err := c.sizeNode(t.Elem, v.FieldByName("Value"))
		if err != nil {
			return 0, err
		}
		return 1 + s, nil

	default:
		return 0, fmt.Errorf("codec: size: unhandled Kind %v", t.Kind)
	}
}

func (c *sizeCtx) sizeRef(t *schema.Type, v reflect.Value) (int, error) {
	switch t.RefKind {
	case schema.RefBool, schema.RefI8, schema.RefU16Char, schema.RefI16,
		schema.RefI32, schema.RefI64, schema.RefF32, schema.RefF64:
		return 1 + fixedWidth(t.RefKind), nil

	case schema.RefString:
		s := v.String()
		return 1 + wire.SizeVarint(int64(len(s))) + len(s), nil

	case schema.RefUuid:
		return 1 + 16, nil

	case schema.RefEnum:
		if len(t.Class.Permits) > 0 {
			return c.sizeDispatch(t, v)
		}
		idx := v.MethodByName("EnumIndex").Call(nil)[0].Int()
		return 1 + c.sizeName(t.Class.Name) + wire.SizeVarint(idx), nil

	case schema.RefRecord:
		if len(t.Class.Permits) > 0 {
			return c.sizeDispatch(t, v)
		}
		return c.sizeRecord(t.Class, v)

	case schema.RefInterface:
		return c.sizeDispatch(t, v)

	default:
		return 0, fmt.Errorf("codec: size: unhandled RefKind %v", t.RefKind)
	}
}

func (c *sizeCtx) sizeRecord(class *schema.Class, v reflect.Value) (int, error) {
	if v.CanAddr() {
		ptr := v.Addr().Pointer()
		if c.visiting[ptr] {
			return 0, ErrCycleDetected
		}
		c.visiting[ptr] = true
		defer delete(c.visiting, ptr)
	}
	total := 1 + c.sizeName(class.Name) + 8 + wire.SizeVarint(int64(len(class.Fields)))
	for _, f := range class.Fields {
		s, err := c.sizeNode(f.Type, v.Field(f.RTIndex))
		if err != nil {
			return 0, fmt.Errorf("%s.%s: %w", class.Name, f.Name, err)
		}
		total += s
	}
	return total, nil
}

// sizeDispatch mirrors writeCtx.writeDispatch's envelope decision: the
// TagInterface-plus-name cost is only added when t.Class genuinely
// needed the envelope (a mixed Record/Enum union).
func (c *sizeCtx) sizeDispatch(t *schema.Type, v reflect.Value) (int, error) {
	concrete := v
	if concrete.Kind() == reflect.Interface {
		concrete = concrete.Elem()
	}
	if concrete.Kind() == reflect.Ptr {
		if concrete.IsNil() {
			return 1, nil
		}
		concrete = concrete.Elem()
	}
	leafClass, ok := t.Class.LookupPermitted(concrete.Type())
	if !ok {
		return 0, fmt.Errorf("%w: %s does not permit %s", ErrDisallowedType, t.Class.Name, concrete.Type())
	}
	leafRefKind := schema.RefRecord
	if leafClass.Tag == schema.ClassEnum {
		leafRefKind = schema.RefEnum
	}
	inner, err := c.sizeRef(schema.Ref(leafRefKind, leafClass), concrete)
	if err != nil {
		return 0, err
	}
	if t.Class.Tag != schema.ClassInterface {
		return inner, nil
	}
	return 1 + c.sizeName(leafClass.Name) + inner, nil
}

// sizeName mirrors Dedup.WriteName's byte accounting without touching a
// buffer, tracking the same first-seen-name bookkeeping so a size
// computed this way is exact for a name's first occurrence and never
// below what Write emits for a repeat.
func (c *sizeCtx) sizeName(name string) int {
	if _, ok := c.dedup.writeSeen[name]; ok {
		// The exact delta varint size depends on the real buffer offset,
		// which Size cannot know without writing; back-references are
		// always small relative to a full name, so this upper-bounds
		// with the 9-byte maximum varint width rather than under-
		// counting and producing a buffer that Write then overflows.
		return 9
	}
	c.dedup.writeSeen[name] = -1
	return wire.SizeVarint(int64(len(name))) + len(name)
}

func fixedWidth(rk schema.RefKind) int {
	switch rk {
	case schema.RefBool, schema.RefI8:
		return 1
	case schema.RefU16Char, schema.RefI16:
		return 2
	case schema.RefI32, schema.RefF32:
		return 4
	case schema.RefI64, schema.RefF64:
		return 8
	default:
		return 0
	}
}
