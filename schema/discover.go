package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ErrInvalidType is returned when a Go type cannot be mapped onto any
// Type Tree node, e.g. a native map[K]V field (which cannot guarantee
// the insertion-order-preserved semantics spec.md's Map node requires;
// use adt.OrderedMap instead).
var ErrInvalidType = fmt.Errorf("schema: invalid type")

// ErrUnknownType is returned when a polymorphic field's concrete value
// (at Analyze time, its declared interface) isn't a registered union and
// isn't itself a recognizable record or enum.
var ErrUnknownType = fmt.Errorf("schema: unknown type")

const adtPkgPath = "github.com/sumcodec/sumcodec/adt"

// isUUIDType recognizes satori/go.uuid's UUID type by PkgPath+Name
// rather than importing it into schema, keeping this package's only
// external dependency optional at the type level.
func isUUIDType(rt reflect.Type) bool {
	return rt.PkgPath() == "github.com/satori/go.uuid" && rt.Name() == "UUID"
}

// Table is the Discovery Table (spec.md §3.2): every user Record, Enum,
// and Interface class reachable from a root type, sorted lexicographi-
// cally by fully-qualified name and assigned a stable ordinal.
type Table struct {
	Classes []*Class
	byName  map[string]*Class
	byType  map[reflect.Type]*Class
}

// OrdinalOf returns c's position in the sorted table.
func (t *Table) OrdinalOf(c *Class) int { return c.Ordinal }

// ByName looks up a class by its fully-qualified name, failing with
// ErrUnknownType if the Name Dedup table's sender referenced a class this
// reader's Discovery Table never registered (spec.md §4.5/§7).
func (t *Table) ByName(name string) (*Class, error) {
	c, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return c, nil
}

// ByType looks up a class by its reflect.Type.
func (t *Table) ByType(rt reflect.Type) (*Class, bool) {
	c, ok := t.byType[rt]
	return c, ok
}

// analyzer accumulates discovered classes during a single Analyze call.
// Discovery is depth-first (each record's fields are classified as the
// record itself is classified) rather than a separate BFS pass; the
// Discovery Table's eventual order is the lexicographic sort below, so
// traversal order here has no observable effect.
type analyzer struct {
	classes []*Class
	byType  map[reflect.Type]*Class
}

// Analyze builds the Type Tree for root and the Discovery Table of every
// user type reachable from it (spec.md §4.3). root is typically the
// reflect.Type of a top-level record, but may be any supported type.
func Analyze(root reflect.Type) (*Type, *Table, error) {
	a := &analyzer{byType: make(map[reflect.Type]*Class)}

	rootType, _, err := a.buildType(root)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(a.classes, func(i, j int) bool {
		return a.classes[i].Name < a.classes[j].Name
	})
	for i, c := range a.classes {
		c.Ordinal = i
	}

	table := &Table{
		Classes: a.classes,
		byName:  make(map[string]*Class, len(a.classes)),
		byType:  a.byType,
	}
	for _, c := range a.classes {
		table.byName[c.Name] = c
	}
	for _, c := range a.classes {
		if c.Fingerprint == 0 && c.Tag == ClassRecord {
			c.Fingerprint = Fingerprint(c)
		}
	}
	return rootType, table, nil
}

// qualifiedName returns rt's fully-qualified name (spec.md §4.5's
// interned class-name-ref string).
func qualifiedName(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.Name()
	}
	return rt.PkgPath() + "." + rt.Name()
}

// classOf resolves rt (a struct, enum, or registered interface type) to
// its Class, discovering and enqueueing it on first sight.
func (a *analyzer) classOf(rt reflect.Type) (*Class, error) {
	if c, ok := a.byType[rt]; ok {
		return c, nil
	}

	switch {
	case rt.Kind() == reflect.Interface:
		return a.classOfInterface(rt)
	case isEnumType(rt):
		return a.classOfEnum(rt)
	case rt.Kind() == reflect.Struct:
		return a.classOfRecord(rt)
	default:
		return nil, fmt.Errorf("%w: %s cannot be classified as record, enum, or interface", ErrUnknownType, rt)
	}
}

func (a *analyzer) classOfInterface(rt reflect.Type) (*Class, error) {
	def, ok := lookupUnion(rt)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered via RegisterUnion", ErrUnknownType, rt)
	}
	c := &Class{Name: qualifiedName(rt), Tag: ClassInterface, ReflectType: rt}
	a.byType[rt] = c
	a.classes = append(a.classes, c)

	seen := make(map[reflect.Type]bool)
	var leaves []*Class
	var flatten func(reflect.Type) error
	flatten = func(t reflect.Type) error {
		if t.Kind() == reflect.Interface {
			nested, ok := lookupUnion(t)
			if !ok {
				return fmt.Errorf("%w: %s is not registered via RegisterUnion", ErrUnknownType, t)
			}
			for _, v := range nested.variants {
				if err := flatten(v); err != nil {
					return err
				}
			}
			return nil
		}
		if seen[t] {
			return nil
		}
		seen[t] = true
		leaf, err := a.classOf(t)
		if err != nil {
			return err
		}
		leaves = append(leaves, leaf)
		return nil
	}
	for _, v := range def.variants {
		if err := flatten(v); err != nil {
			return nil, err
		}
	}
	c.Permits = leaves
	c.Tag = tieBreakTag(leaves)
	return c, nil
}

// tieBreakTag resolves a sealed union's wire class per spec.md's
// tie-breaking rule: a union whose permitted variants are all records
// collapses onto Record, all-enum collapses onto Enum, and only a
// genuinely mixed permit set keeps the Interface envelope.
func tieBreakTag(leaves []*Class) ClassTag {
	allRecord, allEnum := true, true
	for _, leaf := range leaves {
		if leaf.Tag != ClassRecord {
			allRecord = false
		}
		if leaf.Tag != ClassEnum {
			allEnum = false
		}
	}
	switch {
	case allRecord:
		return ClassRecord
	case allEnum:
		return ClassEnum
	default:
		return ClassInterface
	}
}

func (a *analyzer) classOfEnum(rt reflect.Type) (*Class, error) {
	if !enumKindIsInt(rt) {
		return nil, fmt.Errorf("%w: enum %s must have an integer underlying kind", ErrInvalidType, rt)
	}
	labels, err := enumLabels(rt)
	if err != nil {
		return nil, err
	}
	c := &Class{Name: qualifiedName(rt), Tag: ClassEnum, ReflectType: rt, EnumLabels: labels}
	a.byType[rt] = c
	a.classes = append(a.classes, c)
	return c, nil
}

func (a *analyzer) classOfRecord(rt reflect.Type) (*Class, error) {
	c := &Class{Name: qualifiedName(rt), Tag: ClassRecord, ReflectType: rt}
	a.byType[rt] = c
	a.classes = append(a.classes, c)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" {
			continue // unexported, not part of the record's wire shape
		}
		ft, nullable, err := a.buildType(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rt, sf.Name, err)
		}
		c.Fields = append(c.Fields, Field{
			Name:     sf.Name,
			Type:     ft,
			RTIndex:  i,
			Nullable: nullable,
		})
	}
	return c, nil
}

// buildType maps a single Go reflect.Type onto a Type Tree node,
// resolving any newly discovered user type through classOf as it goes.
// A pointer to a scalar becomes a RefValue node rather than a
// PrimitiveValue. It reports whether the Go representation allows
// an absent/nil value (RefValue) as opposed to always-present
// (PrimitiveValue).
func (a *analyzer) buildType(rt reflect.Type) (*Type, bool, error) {
	if rt.Kind() == reflect.Ptr {
		elem, _, err := a.buildTypeNonPtr(rt.Elem())
		if err != nil {
			return nil, false, err
		}
		if elem.Kind == KindPrimitive {
			elem = Ref(elem.RefKind, nil)
		}
		elem.GoType = rt.Elem()
		return elem, true, nil
	}
	t, nullable, err := a.buildTypeNonPtr(rt)
	if err != nil {
		return nil, false, err
	}
	t.GoType = rt
	return t, nullable, nil
}

// buildTypeNonPtr does the Kind-by-Kind mapping for a non-pointer
// reflect.Type (spec.md §3.1's table plus the adt container mappings).
func (a *analyzer) buildTypeNonPtr(rt reflect.Type) (*Type, bool, error) {
	kind := rt.Kind()
	if isEnumType(rt) {
		// An enum's integer kind would otherwise match a scalar case
		// below; it is resolved as a user type further down instead.
		kind = reflect.Invalid
	}
	switch kind {
	case reflect.Bool:
		return Primitive(RefBool), false, nil
	case reflect.Int8:
		return Primitive(RefI8), false, nil
	case reflect.Uint16:
		return Primitive(RefU16Char), false, nil
	case reflect.Int16:
		return Primitive(RefI16), false, nil
	case reflect.Int32:
		return Primitive(RefI32), false, nil
	case reflect.Int64:
		return Primitive(RefI64), false, nil
	case reflect.Float32:
		return Primitive(RefF32), false, nil
	case reflect.Float64:
		return Primitive(RefF64), false, nil
	case reflect.String:
		return Ref(RefString, nil), true, nil
	}

	if isUUIDType(rt) {
		return Ref(RefUuid, nil), true, nil
	}

	if rt.Kind() == reflect.Struct && rt.PkgPath() == adtPkgPath {
		switch {
		case strings.HasPrefix(rt.Name(), "Optional["):
			vf, ok := rt.FieldByName("Value")
			if !ok {
				return nil, false, fmt.Errorf("%w: %s: cannot introspect adt.Optional", ErrInvalidType, rt)
			}
			elem, _, err := a.buildType(vf.Type)
			if err != nil {
				return nil, false, err
			}
			// Optional carries its own presence bit independent of Go
			// pointer-ness, so the codec engine checks adt.Optional's
			// internal state rather than this nullable flag.
			return OptionalOf(elem), false, nil
		case strings.HasPrefix(rt.Name(), "OrderedMap["):
			entriesF, ok := rt.FieldByName("Entries")
			if !ok || entriesF.Type.Kind() != reflect.Slice {
				return nil, false, fmt.Errorf("%w: %s: cannot introspect adt.OrderedMap", ErrInvalidType, rt)
			}
			entryStruct := entriesF.Type.Elem()
			keyF, ok := entryStruct.FieldByName("Key")
			if !ok {
				return nil, false, fmt.Errorf("%w: %s: cannot introspect adt.MapEntry", ErrInvalidType, rt)
			}
			keyType, _, err := a.buildType(keyF.Type)
			if err != nil {
				return nil, false, err
			}
			valF, ok := entryStruct.FieldByName("Value")
			if !ok {
				return nil, false, fmt.Errorf("%w: %s: cannot introspect adt.MapEntry", ErrInvalidType, rt)
			}
			valType, _, err := a.buildType(valF.Type)
			if err != nil {
				return nil, false, err
			}
			// A non-pointer adt.OrderedMap field is always present
			// (empty when it has no entries); only *adt.OrderedMap
			// fields are individually nullable, via the Ptr branch of
			// buildType.
			return MapOf(keyType, valType), false, nil
		}
	}

	if rt.Kind() == reflect.Slice {
		if rt.Elem().Kind() == reflect.Uint8 && rt.PkgPath() == "" {
			// []byte: the fast-path byte array (spec.md §4.4), an
			// approximation since RefKind has no unsigned-8 variant.
			return ArrayOf(Primitive(RefI8)), false, nil
		}
		elem, _, err := a.buildType(rt.Elem())
		if err != nil {
			return nil, false, err
		}
		if rt.PkgPath() == adtPkgPath && strings.HasPrefix(rt.Name(), "Array[") {
			return ArrayOf(elem), false, nil
		}
		return ListOf(elem), false, nil
	}

	if rt.Kind() == reflect.Map {
		return nil, false, fmt.Errorf("%w: %s: native Go maps cannot preserve insertion order, use adt.OrderedMap", ErrInvalidType, rt)
	}

	if rt.Kind() == reflect.Interface || isEnumType(rt) || rt.Kind() == reflect.Struct {
		c, err := a.classOf(rt)
		if err != nil {
			return nil, false, err
		}
		// A registered union's Tag may have tie-broken away from
		// Interface (all-Record or all-Enum permits), so the RefKind
		// follows the resolved Class, not rt.Kind() directly.
		var rk RefKind
		switch c.Tag {
		case ClassEnum:
			rk = RefEnum
		case ClassInterface:
			rk = RefInterface
		default:
			rk = RefRecord
		}
		return Ref(rk, c), rt.Kind() != reflect.Struct, nil
	}

	return nil, false, fmt.Errorf("%w: %s", ErrInvalidType, rt)
}
