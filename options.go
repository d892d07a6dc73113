package sumcodec

import (
	logging "github.com/op/go-logging"

	"github.com/sumcodec/sumcodec/codec"
)

// Option configures a Codec at ForRoot time, following the functional-
// options idiom the teacher library uses throughout its own setup code
// rather than a config struct with exported zero-value-sensitive fields.
type Option func(*config)

type config struct {
	evolution codec.EvolutionMode
	logLevel  *logging.Level
}

func defaultConfig() *config {
	return &config{evolution: codec.Strict}
}

// WithStrictEvolution requires every record's wire fingerprint to match
// the reader's local fingerprint exactly (spec.md §4.9); this is the
// default.
func WithStrictEvolution() Option {
	return func(c *config) { c.evolution = codec.Strict }
}

// WithDefaultedEvolution tolerates a fingerprint mismatch by reading the
// common field prefix and defaulting the rest, spec.md §4.9's DEFAULTED
// compatibility mode. Use when readers and writers may be built from
// different versions of the same record declarations.
func WithDefaultedEvolution() Option {
	return func(c *config) { c.evolution = codec.Defaulted }
}

// WithLogLevel sets sumcodec's log verbosity (spec.md §6.2's
// logging-level option) as of this ForRoot call, the Option-based
// counterpart to calling SetLogLevel directly. Since the underlying
// logger is package-global, this affects every Codec, not just the one
// being constructed.
func WithLogLevel(level logging.Level) Option {
	return func(c *config) { c.logLevel = &level }
}
