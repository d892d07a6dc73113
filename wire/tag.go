// Package wire implements the low-level pieces of the sumcodec wire
// format: the tag alphabet, the varint codec, and the positioned byte
// buffer every encode/decode operation reads from or writes to.
package wire

// Tag is a single byte drawn from the closed Tag Alphabet (spec §4.2).
// Every nullable or polymorphic value in the stream begins with one.
type Tag byte

// The Tag Alphabet, bit-exact with spec.md §6.1. TagNull is reserved for
// "no value" in every nullable position.
const (
	TagNull      Tag = 0x00
	TagBool      Tag = 0x01
	TagI8        Tag = 0x02
	TagU16Char   Tag = 0x03
	TagI16       Tag = 0x04
	TagI32       Tag = 0x05
	TagI64       Tag = 0x06
	TagF32       Tag = 0x07
	TagF64       Tag = 0x08
	TagString    Tag = 0x09
	TagUuid      Tag = 0x0A
	TagEnum      Tag = 0x0B
	TagRecord    Tag = 0x0C
	TagInterface Tag = 0x0D
	TagArray     Tag = 0x0E
	TagList      Tag = 0x0F
	TagMap       Tag = 0x10
	TagOptional  Tag = 0x11
)

var tagNames = map[Tag]string{
	TagNull:      "Null",
	TagBool:      "Bool",
	TagI8:        "I8",
	TagU16Char:   "U16Char",
	TagI16:       "I16",
	TagI32:       "I32",
	TagI64:       "I64",
	TagF32:       "F32",
	TagF64:       "F64",
	TagString:    "String",
	TagUuid:      "Uuid",
	TagEnum:      "Enum",
	TagRecord:    "Record",
	TagInterface: "Interface",
	TagArray:     "Array",
	TagList:      "List",
	TagMap:       "Map",
	TagOptional:  "Optional",
}

// String renders the tag name for diagnostics (cmd/sumdump, logging).
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t is a byte drawn from the Tag Alphabet.
func (t Tag) Valid() bool {
	_, ok := tagNames[t]
	return ok
}

// FormatVersion is the single version byte sumcodec.Codec.Serialize
// writes ahead of every stream and Deserialize checks before decoding
// (spec.md §9, the open question about facade naming/versioning).
// sumcodec currently emits exactly one format version; a future
// incompatible wire revision would use a higher value.
const FormatVersion = 1
