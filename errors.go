package sumcodec

import (
	"errors"
	"fmt"

	"github.com/sumcodec/sumcodec/codec"
	"github.com/sumcodec/sumcodec/schema"
	"github.com/sumcodec/sumcodec/wire"
)

func errorsIsBufferOverflow(err error) bool  { return errors.Is(err, wire.ErrBufferOverflow) }
func errorsIsBufferUnderflow(err error) bool { return errors.Is(err, wire.ErrBufferUnderflow) }

// ErrorKind classifies a sumcodec.Error the way spec.md §7 enumerates
// the library's failure modes, so callers can branch on cause without
// string-matching messages.
type ErrorKind int

const (
	InvalidType ErrorKind = iota
	BufferOverflow
	BufferUnderflow
	MalformedStream
	UnknownType
	DisallowedType
	SchemaMismatch
	CycleDetected
	NullRootNotAllowed
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidType:
		return "InvalidType"
	case BufferOverflow:
		return "BufferOverflow"
	case BufferUnderflow:
		return "BufferUnderflow"
	case MalformedStream:
		return "MalformedStream"
	case UnknownType:
		return "UnknownType"
	case DisallowedType:
		return "DisallowedType"
	case SchemaMismatch:
		return "SchemaMismatch"
	case CycleDetected:
		return "CycleDetected"
	case NullRootNotAllowed:
		return "NullRootNotAllowed"
	default:
		return "Unknown"
	}
}

// Error makes an ErrorKind usable as an errors.Is target (see Error.Is).
func (k ErrorKind) Error() string { return k.String() }

// Error is the error type every exported sumcodec operation returns on
// failure: a classified Kind, the operation that failed, and the
// underlying wrapped cause from wire/schema/codec.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sumcodec: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("sumcodec: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, SomeKind) work against a bare ErrorKind value in
// addition to the usual wrapped-sentinel comparisons, since most callers
// want to branch on Kind rather than on a specific internal sentinel.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && e.Kind == k
}

// classify maps an internal wire/schema/codec error into sumcodec's
// public ErrorKind taxonomy (spec.md §7's single flat error surface).
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, schema.ErrInvalidType):
		return &Error{Kind: InvalidType, Op: op, Err: err}
	case errors.Is(err, schema.ErrUnknownType):
		return &Error{Kind: UnknownType, Op: op, Err: err}
	case errors.Is(err, codec.ErrCycleDetected):
		return &Error{Kind: CycleDetected, Op: op, Err: err}
	case errors.Is(err, codec.ErrDisallowedType):
		return &Error{Kind: DisallowedType, Op: op, Err: err}
	case errors.Is(err, codec.ErrSchemaMismatch):
		return &Error{Kind: SchemaMismatch, Op: op, Err: err}
	case errors.Is(err, codec.ErrMalformedStream):
		return &Error{Kind: MalformedStream, Op: op, Err: err}
	case errors.Is(err, codec.ErrNullNotAllowed):
		return &Error{Kind: NullRootNotAllowed, Op: op, Err: err}
	case errorsIsBufferOverflow(err):
		return &Error{Kind: BufferOverflow, Op: op, Err: err}
	case errorsIsBufferUnderflow(err):
		return &Error{Kind: BufferUnderflow, Op: op, Err: err}
	default:
		return &Error{Kind: MalformedStream, Op: op, Err: err}
	}
}
