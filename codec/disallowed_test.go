package codec_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

// TestDisallowedTypeRejected hand-crafts a Status field naming a class
// outside Status's registered permit set {*Outage, Severity}, exercising
// the Polymorphic Dispatcher's permission check (spec.md §4.6) rather
// than relying on a legitimate sender to never produce such a stream.
func TestDisallowedTypeRejected(t *testing.T) {
	schema.RegisterUnion((*Status)(nil), (*Outage)(nil), Severity(0))
	typ, table, err := schema.Analyze(reflect.TypeOf(Report{}))
	require.NoError(t, err)
	eng := codec.NewEngine(typ, table)

	buf := wire.NewBuffer(256)
	dedup := codec.NewDedup()
	require.NoError(t, buf.PutByte(byte(wire.TagRecord)))
	require.NoError(t, dedup.WriteName(buf, typ.Class.Name))
	require.NoError(t, buf.PutInt64(int64(typ.Class.Fingerprint)))
	_, err = wire.PutVarint(buf, 1)
	require.NoError(t, err)
	require.NoError(t, buf.PutByte(byte(wire.TagInterface)))
	require.NoError(t, dedup.WriteName(buf, "codec_test.Intruder"))
	buf.Flip()

	_, err = eng.Read(buf, codec.Strict)
	require.ErrorIs(t, err, codec.ErrDisallowedType)
}
