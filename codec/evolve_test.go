package codec_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

type Widget struct {
	A int32
	B int32
	C int32
}

// encodeMismatchedWidget hand-writes a Record value claiming Widget's
// class name but a wrong fingerprint and only two fields, simulating a
// sender built from an older three-field-turned-two-field declaration
// without needing a second Go type of the same name (spec.md §4.9).
func encodeMismatchedWidget(t *testing.T, class *schema.Class, a, b int32) *wire.Buffer {
	t.Helper()
	buf := wire.NewBuffer(128)
	require.NoError(t, buf.PutByte(byte(wire.TagRecord)))
	dedup := codec.NewDedup()
	require.NoError(t, dedup.WriteName(buf, class.Name))
	require.NoError(t, buf.PutInt64(int64(class.Fingerprint+1)))
	_, err := wire.PutVarint(buf, 2)
	require.NoError(t, err)
	require.NoError(t, buf.PutInt32(a))
	require.NoError(t, buf.PutInt32(b))
	return buf
}

func TestSchemaEvolutionStrictRejectsMismatch(t *testing.T) {
	typ, table, err := schema.Analyze(reflect.TypeOf(Widget{}))
	require.NoError(t, err)
	eng := codec.NewEngine(typ, table)

	buf := encodeMismatchedWidget(t, typ.Class, 10, 20)
	buf.Flip()

	_, err = eng.Read(buf, codec.Strict)
	require.ErrorIs(t, err, codec.ErrSchemaMismatch)
}

func TestSchemaEvolutionDefaultedFillsMissingFields(t *testing.T) {
	typ, table, err := schema.Analyze(reflect.TypeOf(Widget{}))
	require.NoError(t, err)
	eng := codec.NewEngine(typ, table)

	buf := encodeMismatchedWidget(t, typ.Class, 10, 20)
	buf.Flip()

	out, err := eng.Read(buf, codec.Defaulted)
	require.NoError(t, err)
	got := out.Interface().(Widget)
	require.Equal(t, int32(10), got.A)
	require.Equal(t, int32(20), got.B)
	require.Equal(t, int32(0), got.C)
}
