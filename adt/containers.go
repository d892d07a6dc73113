// Package adt holds the small set of generic container and interface
// types a user's algebraic data type declarations are built from:
// Array/List's Go-side distinction, an order-preserving Map, Optional,
// and the Enum contract the Type Analyzer looks for via reflection. It
// has no dependency on schema or codec so both can import it without a
// cycle, and so a user's own record/union declarations only need to
// import this lightweight package rather than the full codec.
//
// OrderedMap and Optional keep their state in exported fields rather
// than behind accessor-only unexported ones: the codec engine populates
// them by reflection on a decode path that cannot call a generic
// constructor function for a type parameter only known at runtime, so
// Set/reflect.Value.Set must be able to reach the fields directly.
package adt

// Enum is implemented by a host enum type so the Type Analyzer can
// discover its ordered label set and recover a particular value's wire
// ordinal without a separate registration step (spec.md §4.3's "capture
// the enum constants in declaration order"). sumcodec additionally
// requires the underlying Go type to have an integer kind whose value
// equals EnumIndex(), the common `type T int; const (A T = iota; B; …)`
// idiom, so a decoded ordinal can be turned back into a value of type T
// by a plain reflect.SetInt — see schema.Analyze's enum handling for the
// rest of that contract.
type Enum interface {
	// EnumLabels returns every label in declaration order. It must
	// return the same slice contents for every value of the enum type.
	EnumLabels() []string
	// EnumIndex returns this value's index into EnumLabels().
	EnumIndex() int
}

// Array opts a field into the wire format's Array tag (spec.md §6.1's
// 0x0E) and, for primitive element kinds, the packed fast path (§4.4),
// as opposed to a plain Go slice which defaults to the List tag (0x0F).
// The two wire shapes are otherwise identical (length-prefixed, ordered,
// homogeneous); Array vs. List is purely a decode-target distinction
// spec.md's host language expresses as native-array-vs-List<T>, and Go
// expresses here as a named type vs. a plain slice.
type Array[T any] []T

// MapEntry is one key/value pair of an OrderedMap, in insertion order.
type MapEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// OrderedMap is the decode target for a Map(key, val) Type Tree node
// (spec.md §3.1): a plain Go map cannot satisfy "insertion-order
// preserved on read", so Map fields must use this type instead. Lookups
// are a linear scan of Entries rather than a backing index map, which
// keeps every piece of the type's state in one reflect-settable field
// and is cheap at the sizes this format is meant for (wire messages, not
// in-memory working sets).
type OrderedMap[K comparable, V any] struct {
	Entries []MapEntry[K, V]
}

// NewOrderedMap returns an empty OrderedMap ready for Set calls.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{}
}

// Set inserts k/v, or updates v in place if k was already present
// (preserving k's original position).
func (m *OrderedMap[K, V]) Set(k K, v V) {
	for i := range m.Entries {
		if m.Entries[i].Key == k {
			m.Entries[i].Value = v
			return
		}
	}
	m.Entries = append(m.Entries, MapEntry[K, V]{Key: k, Value: v})
}

// Get returns k's value and true, or the zero value and false.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	for _, e := range m.Entries {
		if e.Key == k {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int { return len(m.Entries) }

// Optional is the zero-or-one-element container spec.md §3.1 models as
// its own Type Tree node, distinct from a Go pointer field: it exists so
// "a value that may be explicitly absent" is expressible for types
// (primitives, collections) that have no other way to represent absence
// on the Go side.
type Optional[T any] struct {
	Present bool
	Value   T
}

// Some returns a present Optional wrapping v.
func Some[T any](v T) Optional[T] { return Optional[T]{Present: true, Value: v} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// IsPresent reports whether the Optional holds a value.
func (o Optional[T]) IsPresent() bool { return o.Present }

// Get returns the held value and true, or the zero value and false.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Present }

// MustGet returns the held value, panicking if the Optional is absent.
func (o Optional[T]) MustGet() T {
	if !o.Present {
		panic("adt: MustGet called on an absent Optional")
	}
	return o.Value
}
