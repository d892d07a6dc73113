// Package codec implements the sumcodec Codec Engine: the reflection-
// driven Writer/Reader/Sizer construction for a Type Tree (spec.md §4.4),
// the Name Dedup table (§4.5), the Polymorphic Dispatcher (§4.6), and the
// Schema Evolution read-path (§4.8/§4.9). It is grounded on vom's
// encoder/decoder pair, generalized from VOM's own wire layout to
// spec.md's tag alphabet and varint scheme.
package codec

import "errors"

// Sentinel errors the root sumcodec package wraps into its ErrorKind
// values (spec.md §7); codec itself stays free of any facade-level
// concept so it can be tested in isolation.
var (
	ErrMalformedStream = errors.New("codec: malformed stream")
	ErrCycleDetected   = errors.New("codec: cycle detected")
	ErrDisallowedType  = errors.New("codec: disallowed type")
	ErrSchemaMismatch  = errors.New("codec: schema mismatch")
	ErrNullNotAllowed  = errors.New("codec: null not allowed for non-nullable root")
)
