package schema_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec/adt"
	"github.com/sumcodec/sumcodec/schema"
)

type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
)

func (c Color) EnumLabels() []string { return []string{"Red", "Green", "Blue"} }
func (c Color) EnumIndex() int       { return int(c) }

type Point struct {
	X int32
	Y int32
}

type Shape interface{ isShape() }

type Circle struct{ Radius float64 }

func (*Circle) isShape() {}

type Square struct{ Side float64 }

func (*Square) isShape() {}

type Scene struct {
	Origin      Point
	BorderColor Color
	Shapes      []Shape
	Tags        adt.Array[int32]
	Meta        adt.OrderedMap[string, int32]
	Nickname    adt.Optional[string]
}

func TestAnalyzeSimpleRecord(t *testing.T) {
	typ, table, err := schema.Analyze(reflect.TypeOf(Point{}))
	require.NoError(t, err)
	require.Equal(t, schema.KindRef, typ.Kind)
	require.Equal(t, schema.RefRecord, typ.RefKind)
	require.Len(t, table.Classes, 1)
	require.Equal(t, 2, len(typ.Class.Fields))
	require.Equal(t, schema.KindPrimitive, typ.Class.Fields[0].Type.Kind)
}

func TestAnalyzeEnum(t *testing.T) {
	typ, table, err := schema.Analyze(reflect.TypeOf(Color(0)))
	require.NoError(t, err)
	require.Equal(t, schema.RefEnum, typ.RefKind)
	require.ElementsMatch(t, []string{"Red", "Green", "Blue"}, typ.Class.EnumLabels)
	require.Len(t, table.Classes, 1)
}

func TestAnalyzeScene(t *testing.T) {
	schema.RegisterUnion((*Shape)(nil), (*Circle)(nil), (*Square)(nil))

	typ, table, err := schema.Analyze(reflect.TypeOf(Scene{}))
	require.NoError(t, err)
	require.Equal(t, schema.RefRecord, typ.RefKind)

	sceneClass := typ.Class
	byName := map[string]schema.Field{}
	for _, f := range sceneClass.Fields {
		byName[f.Name] = f
	}

	require.Equal(t, schema.KindRef, byName["Origin"].Type.Kind)
	require.Equal(t, schema.RefRecord, byName["Origin"].Type.RefKind)

	require.Equal(t, schema.RefEnum, byName["BorderColor"].Type.RefKind)

	require.Equal(t, schema.KindList, byName["Shapes"].Type.Kind)
	// Shape's permitted variants (Circle, Square) are both records, so
	// the tie-breaking rule collapses the union onto Record/RefRecord
	// rather than the Interface envelope.
	require.Equal(t, schema.RefRecord, byName["Shapes"].Type.Elem.RefKind)

	require.Equal(t, schema.KindArray, byName["Tags"].Type.Kind)
	require.True(t, byName["Tags"].Type.IsFastPathArray())

	require.Equal(t, schema.KindMap, byName["Meta"].Type.Kind)
	require.Equal(t, schema.RefString, byName["Meta"].Type.Key.RefKind)

	require.Equal(t, schema.KindOptional, byName["Nickname"].Type.Kind)

	// Discovery Table must contain Scene, Point, Color, Shape, Circle,
	// Square: six classes, sorted by fully-qualified name.
	require.Len(t, table.Classes, 6)
	for i := 1; i < len(table.Classes); i++ {
		require.Less(t, table.Classes[i-1].Name, table.Classes[i].Name)
	}

	shapeClass, err := table.ByName(qualifiedName(reflect.TypeOf((*Shape)(nil)).Elem()))
	require.NoError(t, err)
	require.Equal(t, schema.ClassRecord, shapeClass.Tag)
	require.Len(t, shapeClass.Permits, 2)
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

func (p Priority) EnumLabels() []string { return []string{"Low", "High"} }
func (p Priority) EnumIndex() int       { return int(p) }

type Alert interface{ isAlert() }

type PageAlert struct{ Message string }

func (*PageAlert) isAlert() {}

func (Priority) isAlert() {}

func TestAnalyzeMixedUnionKeepsInterfaceTag(t *testing.T) {
	schema.RegisterUnion((*Alert)(nil), (*PageAlert)(nil), Priority(0))

	typ, _, err := schema.Analyze(reflect.TypeOf(struct{ A Alert }{}))
	require.NoError(t, err)
	require.Equal(t, schema.RefInterface, typ.Class.Fields[0].Type.RefKind)
	require.Equal(t, schema.ClassInterface, typ.Class.Fields[0].Type.Class.Tag)
	require.Len(t, typ.Class.Fields[0].Type.Class.Permits, 2)
}

// qualifiedName mirrors schema's own (unexported) qualifiedName just
// closely enough for this test to look the interface class up by name;
// duplicated rather than exported purely for a test helper.
func qualifiedName(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.Name()
	}
	return rt.PkgPath() + "." + rt.Name()
}

func TestNativeMapRejected(t *testing.T) {
	type BadRecord struct {
		M map[string]int32
	}
	_, _, err := schema.Analyze(reflect.TypeOf(BadRecord{}))
	require.ErrorIs(t, err, schema.ErrInvalidType)
}
