package schema_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec/schema"
)

type Vec2 struct {
	X float64
	Y float64
}

type Vec2Renamed struct {
	X float64
	Y float64
}

func TestFingerprintStableAcrossAnalyzeCalls(t *testing.T) {
	_, t1, err := schema.Analyze(reflect.TypeOf(Vec2{}))
	require.NoError(t, err)
	_, t2, err := schema.Analyze(reflect.TypeOf(Vec2{}))
	require.NoError(t, err)
	require.Equal(t, t1.Classes[0].Fingerprint, t2.Classes[0].Fingerprint)
}

func TestFingerprintDependsOnSimpleName(t *testing.T) {
	// Same field shape, different simple name: the fingerprint mixes in
	// the record's simple name (spec.md §4.8), so a rename changes it
	// even though every field stayed identical.
	_, table1, err := schema.Analyze(reflect.TypeOf(Vec2{}))
	require.NoError(t, err)
	_, table2, err := schema.Analyze(reflect.TypeOf(Vec2Renamed{}))
	require.NoError(t, err)
	require.NotEqual(t, table1.Classes[0].Fingerprint, table2.Classes[0].Fingerprint)
}
