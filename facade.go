// Package sumcodec serializes algebraic data types — records and sealed
// unions declared as ordinary Go structs, enums, and interfaces — to and
// from a compact binary wire format, with optional tolerance for schema
// drift between the writer and reader's declared shapes.
//
// A typical user reflects no type analysis machinery directly: they
// declare their records and unions, call RegisterUnion for each sealed
// interface, obtain a Codec with ForRoot, and call Serialize/
// Deserialize against a wire.Buffer they own.
package sumcodec

import (
	"fmt"
	"reflect"

	"github.com/blang/semver"

	"github.com/sumcodec/sumcodec/adt"
	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

// Enum is re-exported so record declarations only need to import this
// one package for the common case; adt.Array, adt.OrderedMap, and
// adt.Optional stay in their own package since a generic type cannot be
// aliased with its own type parameters at this Go version, so declaring
// a field of one of those types still needs the adt import.
type Enum = adt.Enum

// RegisterUnion declares ifaceZero's interface type as a sealed union
// whose only members are the concrete types in variants. See
// schema.RegisterUnion for the exact contract.
func RegisterUnion(ifaceZero interface{}, variants ...interface{}) {
	schema.RegisterUnion(ifaceZero, variants...)
}

// codecEngineHandle bundles everything ForRoot needs to serve repeated
// calls for one root Go type without redoing reflection work.
type codecEngineHandle struct {
	rootGoType reflect.Type
	engine     *codec.Engine
}

// Codec serializes and deserializes values of one specific root Go type,
// built once by ForRoot and safe for concurrent read-only use across
// goroutines (the Type Tree and Discovery Table it wraps are immutable
// after construction; only the per-call Dedup session carries state, and
// that is allocated fresh inside every Serialize/Deserialize call).
type Codec struct {
	handle *codecEngineHandle
	cfg    *config
}

// ForRoot analyzes root's type (via reflection, spec.md §4.3) and
// returns a Codec for serializing/deserializing values of that type.
// Repeated calls for the same root type reuse a cached analysis.
func ForRoot(root interface{}, opts ...Option) (*Codec, error) {
	rt := reflect.TypeOf(root)
	if rt == nil {
		return nil, &Error{Kind: InvalidType, Op: "ForRoot", Err: fmt.Errorf("root must not be untyped nil")}
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logLevel != nil {
		SetLogLevel(*cfg.logLevel)
	}

	if h, ok := cacheGet(rt); ok {
		log.Debugf("ForRoot: cache hit for %s", rt)
		return &Codec{handle: h, cfg: cfg}, nil
	}

	schemaType, table, err := schema.Analyze(rt)
	if err != nil {
		return nil, classify("ForRoot", err)
	}
	h := &codecEngineHandle{rootGoType: rt, engine: codec.NewEngine(schemaType, table)}
	cachePut(rt, h)
	log.Debugf("ForRoot: analyzed %s into %d classes, format version %s", rt, len(table.Classes), FormatVersion)
	return &Codec{handle: h, cfg: cfg}, nil
}

// SizeOf returns an upper bound on the number of bytes Serialize(v) will
// write, without writing anything, so a caller can size a wire.Buffer
// that is large enough. The bound is exact when no class name repeats
// within v (see codec.Engine.Size).
func (c *Codec) SizeOf(v interface{}) (int, error) {
	rv, err := c.rootValue(v)
	if err != nil {
		return 0, classify("SizeOf", err)
	}
	n, err := c.handle.engine.Size(rv)
	if err != nil {
		return 0, classify("SizeOf", err)
	}
	return 1 + n, nil // 1 byte for the leading format version
}

// Serialize writes v's encoding to buf at its current position, preceded
// by a single format version byte (FormatVersion) so Deserialize can
// refuse a stream written by a newer, incompatible build.
func (c *Codec) Serialize(buf *wire.Buffer, v interface{}) error {
	rv, err := c.rootValue(v)
	if err != nil {
		return classify("Serialize", err)
	}
	if err := buf.PutByte(byte(wire.FormatVersion)); err != nil {
		return classify("Serialize", err)
	}
	if err := c.handle.engine.Write(buf, rv); err != nil {
		return classify("Serialize", err)
	}
	return nil
}

// Deserialize reads one value from buf into out, which must be a
// non-nil pointer to the Codec's root type. It first reads the leading
// format version byte Serialize wrote and refuses to continue if it
// names a format newer than this build of sumcodec is willing to read.
func (c *Codec) Deserialize(buf *wire.Buffer, out interface{}) error {
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Ptr || ov.IsNil() {
		return &Error{Kind: InvalidType, Op: "Deserialize", Err: fmt.Errorf("out must be a non-nil pointer, got %T", out)}
	}
	verByte, err := buf.GetByte()
	if err != nil {
		return classify("Deserialize", err)
	}
	streamVersion := semver.Version{Major: uint64(verByte)}
	if !FormatVersion.GTE(streamVersion) {
		return classify("Deserialize", fmt.Errorf("%w: stream is format %s, this build reads up to %s",
			ErrFormatVersionTooNew, streamVersion, FormatVersion))
	}
	rv, err := c.handle.engine.Read(buf, c.cfg.evolution)
	if err != nil {
		return classify("Deserialize", err)
	}
	ov.Elem().Set(rv)
	return nil
}

// SerializeMany writes a leading varint count followed by each element
// of vs in order (spec.md §4.9's length-prefixed sequence), so a reader
// recovers the element count from the stream itself rather than needing
// it supplied out of band.
func (c *Codec) SerializeMany(buf *wire.Buffer, vs []interface{}) error {
	if _, err := wire.PutVarint(buf, int64(len(vs))); err != nil {
		return classify("SerializeMany", err)
	}
	for i, v := range vs {
		if err := c.Serialize(buf, v); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// DeserializeMany reads the leading varint count SerializeMany wrote,
// then that many values from buf, constructing each as a new pointer to
// the Codec's root type.
func (c *Codec) DeserializeMany(buf *wire.Buffer) ([]interface{}, error) {
	n, err := wire.GetVarint(buf)
	if err != nil {
		return nil, classify("DeserializeMany", err)
	}
	out := make([]interface{}, n)
	for i := 0; i < int(n); i++ {
		ptr := reflect.New(c.handle.rootGoType)
		if err := c.Deserialize(buf, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = ptr.Interface()
	}
	return out, nil
}

// rootValue normalizes v (a value or pointer of the Codec's root type)
// to the non-pointer reflect.Value the engine's Write/Size path expects,
// failing NullRootNotAllowed if v is a nil pointer (spec.md §4.9's root
// nullability rule: unlike fields, the top-level value has nowhere to
// encode a Null tag against, so absence at the root is a caller error,
// not a wire concept).
func (c *Codec) rootValue(v interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w", codec.ErrNullNotAllowed)
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w", codec.ErrNullNotAllowed)
		}
		rv = rv.Elem()
	}
	if rv.Type() != c.handle.rootGoType {
		return reflect.Value{}, fmt.Errorf("value has type %s, codec is for %s", rv.Type(), c.handle.rootGoType)
	}
	return rv, nil
}
