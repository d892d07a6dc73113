// Package schema implements the sumcodec Type Analyzer: a recursive Type
// Tree describing every supported type (spec.md §3.1), built by
// reflecting on a root declaration, plus the Discovery Table of every
// reachable user type (§3.2) that the registry and codec packages
// compile against.
//
// The representation follows v.io/v23/vdl's *Type: one struct carrying a
// Kind tag and only the fields relevant to that kind, rather than one Go
// type per variant, because that is how the teacher library shapes its
// own recursive type representation (see vdl.Type's zeroRep switch).
package schema

import (
	"fmt"
	"reflect"
)

// Kind discriminates the Type Tree's variant set (spec.md §3.1's table).
type Kind int

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindRef
	KindArray
	KindList
	KindMap
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindRef:
		return "Ref"
	case KindArray:
		return "Array"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindOptional:
		return "Optional"
	default:
		return "Invalid"
	}
}

// RefKind enumerates the scalar/user kinds a PrimitiveValue or RefValue
// node may carry (spec.md §3.1).
type RefKind int

const (
	RefInvalid RefKind = iota
	RefBool
	RefI8
	RefU16Char
	RefI16
	RefI32
	RefI64
	RefF32
	RefF64
	RefString
	RefUuid
	RefEnum
	RefRecord
	RefInterface
)

func (k RefKind) String() string {
	switch k {
	case RefBool:
		return "Bool"
	case RefI8:
		return "I8"
	case RefU16Char:
		return "U16Char"
	case RefI16:
		return "I16"
	case RefI32:
		return "I32"
	case RefI64:
		return "I64"
	case RefF32:
		return "F32"
	case RefF64:
		return "F64"
	case RefString:
		return "String"
	case RefUuid:
		return "Uuid"
	case RefEnum:
		return "Enum"
	case RefRecord:
		return "Record"
	case RefInterface:
		return "Interface"
	default:
		return "Invalid"
	}
}

// isScalar reports whether k is a non-user scalar (bool/int/float/
// string/uuid), as opposed to a discovered user type (enum/record/
// interface) that needs a Discovery Table lookup.
func (k RefKind) isScalar() bool {
	switch k {
	case RefEnum, RefRecord, RefInterface:
		return false
	default:
		return true
	}
}

// Type is one node of the Type Tree. Only the fields relevant to Kind
// (and, for KindRef/KindPrimitive, to RefKind) are meaningful; this
// mirrors vdl.Type's single-struct-many-kinds representation.
type Type struct {
	Kind Kind

	// KindPrimitive / KindRef
	RefKind RefKind
	Class   *Class // set when RefKind is Enum, Record, or Interface

	// KindArray / KindList / KindMap / KindOptional
	Elem *Type
	Key  *Type // KindMap only

	// GoType is the concrete Go reflect.Type this node decodes into: the
	// adt.Array/slice/adt.OrderedMap/adt.Optional instantiation for a
	// container node, the scalar Go type for a primitive/scalar Ref, or
	// Class.ReflectType for a user-type Ref (kept here too so the Codec
	// Engine's read path never needs a second reflect walk of its own to
	// rediscover it).
	GoType reflect.Type
}

// Primitive returns a non-nullable scalar Type Tree leaf.
func Primitive(rk RefKind) *Type {
	if !rk.isScalar() {
		panic(fmt.Sprintf("schema: %v is not a primitive-eligible kind", rk))
	}
	return &Type{Kind: KindPrimitive, RefKind: rk}
}

// Ref returns a nullable scalar or user-type Type Tree leaf.
func Ref(rk RefKind, class *Class) *Type {
	t := &Type{Kind: KindRef, RefKind: rk}
	if !rk.isScalar() {
		if class == nil {
			panic(fmt.Sprintf("schema: Ref(%v, nil) needs a Class", rk))
		}
		t.Class = class
	}
	return t
}

// ArrayOf, ListOf, OptionalOf and MapOf build the container variants.
func ArrayOf(elem *Type) *Type    { return &Type{Kind: KindArray, Elem: elem} }
func ListOf(elem *Type) *Type     { return &Type{Kind: KindList, Elem: elem} }
func OptionalOf(elem *Type) *Type { return &Type{Kind: KindOptional, Elem: elem} }
func MapOf(key, val *Type) *Type  { return &Type{Kind: KindMap, Key: key, Elem: val} }

// IsFastPathArray reports whether t is an Array of a kind the Codec
// Builder can encode with a single length prefix and a packed payload
// instead of per-element dispatch (spec.md §4.4: bool[], i8[], i16[],
// i32[], i64[], f32[], f64[] — and u8[] for raw byte arrays).
func (t *Type) IsFastPathArray() bool {
	if t.Kind != KindArray {
		return false
	}
	e := t.Elem
	if e.Kind != KindPrimitive {
		return false
	}
	switch e.RefKind {
	case RefBool, RefI8, RefI16, RefI32, RefI64, RefF32, RefF64:
		return true
	}
	return false
}

// TagPreorder returns the pre-order sequence of wire tag names this node
// contributes to a Schema Evolution fingerprint (spec.md §4.8, step 1):
// e.g. Array<Optional<f64>> contributes "ARRAY!OPTIONAL!F64".
func (t *Type) TagPreorder() []string {
	switch t.Kind {
	case KindPrimitive, KindRef:
		return []string{t.RefKind.String()}
	case KindArray:
		return append([]string{"ARRAY"}, t.Elem.TagPreorder()...)
	case KindList:
		return append([]string{"LIST"}, t.Elem.TagPreorder()...)
	case KindOptional:
		return append([]string{"OPTIONAL"}, t.Elem.TagPreorder()...)
	case KindMap:
		out := append([]string{"MAP"}, t.Key.TagPreorder()...)
		return append(out, t.Elem.TagPreorder()...)
	default:
		panic("schema: TagPreorder on invalid Type")
	}
}

// String renders a compact, human-readable type description for
// diagnostics (cmd/sumdump, log lines).
func (t *Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.RefKind.String()
	case KindRef:
		if t.Class != nil {
			return t.Class.Name
		}
		return t.RefKind.String() + "?"
	case KindArray:
		return "[]" + t.Elem.String()
	case KindList:
		return "list<" + t.Elem.String() + ">"
	case KindMap:
		return "map<" + t.Key.String() + "," + t.Elem.String() + ">"
	case KindOptional:
		return "optional<" + t.Elem.String() + ">"
	default:
		return "<invalid>"
	}
}
