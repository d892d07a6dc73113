package schema

import (
	"fmt"
	"reflect"
)

// unionDef records one RegisterUnion call: the sealed interface's
// reflect.Type and the concrete variant types declared to implement it.
// Mirrors v.io/v23/vdl.Register's global type-to-implementation table,
// needed because Go interfaces are structurally open and the Discovery
// Table must close the set itself (spec.md §4.3's "sealed union").
type unionDef struct {
	iface    reflect.Type
	variants []reflect.Type
}

var unionRegistry = make(map[reflect.Type]*unionDef)

// RegisterUnion declares that ifaceZero's interface type is a sealed
// union whose only permitted members are the concrete types of variants.
// ifaceZero must be a nil pointer of interface type, e.g.
// (*Shape)(nil); each entry of variants must be a zero value (or nil
// pointer) of a concrete type implementing that interface. A variant may
// itself be another registered union's interface type, in which case its
// own permitted set is flattened in when Analyze resolves the union (see
// classOfInterface; spec.md §4.3's
// "closure over nested sealed unions").
func RegisterUnion(ifaceZero interface{}, variants ...interface{}) {
	ifaceType := reflect.TypeOf(ifaceZero)
	if ifaceType == nil || ifaceType.Kind() != reflect.Ptr || ifaceType.Elem().Kind() != reflect.Interface {
		panic("schema: RegisterUnion's first argument must be a nil pointer of interface type, e.g. (*Shape)(nil)")
	}
	ifaceType = ifaceType.Elem()

	def := &unionDef{iface: ifaceType}
	for _, v := range variants {
		vt := reflect.TypeOf(v)
		if vt == nil {
			panic("schema: RegisterUnion variant must not be untyped nil")
		}
		if vt.Kind() == reflect.Ptr {
			vt = vt.Elem()
		}
		def.variants = append(def.variants, vt)
	}
	unionRegistry[ifaceType] = def
}

// lookupUnion returns the unionDef registered for ifaceType, if any.
func lookupUnion(ifaceType reflect.Type) (*unionDef, bool) {
	d, ok := unionRegistry[ifaceType]
	return d, ok
}

// isEnumType reports whether rt implements adt.Enum without importing adt
// (which would reintroduce the cycle adt is meant to avoid): it checks
// for EnumLabels() []string and EnumIndex() int by method signature.
func isEnumType(rt reflect.Type) bool {
	labelsM, ok := rt.MethodByName("EnumLabels")
	if !ok || labelsM.Type.NumIn() != 1 || labelsM.Type.NumOut() != 1 {
		return false
	}
	if labelsM.Type.Out(0) != reflect.TypeOf([]string(nil)) {
		return false
	}
	indexM, ok := rt.MethodByName("EnumIndex")
	if !ok || indexM.Type.NumIn() != 1 || indexM.Type.NumOut() != 1 {
		return false
	}
	if indexM.Type.Out(0).Kind() != reflect.Int {
		return false
	}
	return true
}

// enumLabels invokes rt's zero value's EnumLabels method via reflection,
// used once per discovered enum class to populate Class.EnumLabels.
func enumLabels(rt reflect.Type) ([]string, error) {
	zero := reflect.New(rt).Elem()
	m := zero.MethodByName("EnumLabels")
	if !m.IsValid() {
		// Enum methods are commonly declared on the value receiver but
		// EnumLabels doesn't depend on which constant is held, so a
		// pointer receiver is also accepted here.
		m = zero.Addr().MethodByName("EnumLabels")
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("schema: %s: EnumLabels not callable by reflection", rt)
	}
	out := m.Call(nil)
	return out[0].Interface().([]string), nil
}

// enumKindIsInt reports whether rt's underlying Go kind is an integer
// kind, the convention sumcodec requires of every adt.Enum type so a
// decoded ordinal can be written back with reflect.Value.SetInt (see
// adt.Enum's doc comment).
func enumKindIsInt(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}
