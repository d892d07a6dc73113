package schema

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// Fingerprint computes a record class's structural fingerprint (spec.md
// §4.8): a delimited string of the record's simple name followed by each
// field's pre-order tag sequence and then its name, hashed with SHA-256,
// truncated to the first 8 bytes read as a big-endian uint64.
//
// crypto/sha256 is stdlib rather than a pack dependency because none of
// the examined example repos vendor a third-party SHA-256 implementation
// (vom/vdl use the stdlib hash packages directly for checksums of this
// kind); see DESIGN.md's grounding ledger for the stdlib justification.
func Fingerprint(c *Class) uint64 {
	var b strings.Builder
	b.WriteString(simpleName(c.Name))
	for _, f := range c.Fields {
		for _, tag := range f.Type.TagPreorder() {
			b.WriteByte('!')
			b.WriteString(tag)
		}
		b.WriteByte('!')
		b.WriteString(f.Name)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return binary.BigEndian.Uint64(sum[:8])
}

// simpleName strips any package qualifier from a fully-qualified class
// name, since the fingerprint is defined over the record's simple name
// (spec.md §4.8) rather than its Discovery Table name.
func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
