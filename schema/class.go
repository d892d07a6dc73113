package schema

import "reflect"

// ClassTag distinguishes the three user-type shapes the Type Analyzer
// discovers (spec.md §3.2): Record, Enum, Interface.
type ClassTag int

const (
	ClassRecord ClassTag = iota
	ClassEnum
	ClassInterface
)

func (t ClassTag) String() string {
	switch t {
	case ClassRecord:
		return "Record"
	case ClassEnum:
		return "Enum"
	case ClassInterface:
		return "Interface"
	default:
		return "Invalid"
	}
}

// Field is one component of a discovered Record, in declaration order.
type Field struct {
	Name     string
	Type     *Type
	RTIndex  int // reflect.StructField index within ReflectType
	Nullable bool
}

// Class is one entry of the Discovery Table (spec.md §3.2): a
// user-declared record, enum, or sealed interface, together with
// everything the Codec Builder needs to read and write it.
type Class struct {
	// Name is the fully-qualified name (reflect.Type's PkgPath + "." +
	// Name) used both as the Discovery Table's sort key and as the
	// interned name written to the wire by the Name Dedup table (§4.5).
	Name string

	Tag         ClassTag
	ReflectType reflect.Type

	// Record
	Fields []Field

	// Enum
	EnumLabels []string

	// Interface: the flattened permitted-subtype closure (every concrete
	// Record or Enum leaf reachable through the sealed graph, per
	// spec.md §4.3's tie-breaking rule).
	Permits []*Class

	// Ordinal is this class's index into the sorted Discovery Table,
	// assigned by Analyze after the lexicographic sort.
	Ordinal int

	// Fingerprint is the record's structural fingerprint (spec.md §4.8).
	// Zero (and meaningless) for Enum and Interface classes.
	Fingerprint uint64
}

// permitsClass reports whether leaf is in c's permitted-subtype set.
func (c *Class) permitsClass(leaf *Class) bool {
	for _, p := range c.Permits {
		if p == leaf {
			return true
		}
	}
	return false
}

// LookupPermitted returns the permitted leaf Class whose ReflectType is
// rt, used by the Polymorphic Dispatcher to resolve a field's dynamic
// concrete type to a Discovery Table entry before writing it (§4.6).
func (c *Class) LookupPermitted(rt reflect.Type) (*Class, bool) {
	for _, p := range c.Permits {
		if p.ReflectType == rt {
			return p, true
		}
	}
	return nil, false
}

// New constructs a zero-valued instance of a Record class, ready for its
// fields to be set positionally. It stands in for spec.md's "canonical
// constructor" (§3.4): Go structs need no separate constructor function,
// only an addressable zero value to set fields on.
func (c *Class) New() reflect.Value {
	if c.Tag != ClassRecord {
		panic("schema: New called on a non-record Class")
	}
	return reflect.New(c.ReflectType).Elem()
}
