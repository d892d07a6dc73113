package sumcodec

import (
	"errors"

	"github.com/blang/semver"

	"github.com/sumcodec/sumcodec/wire"
)

// Version is sumcodec's own release version, independent of
// FormatVersion (the wire format's own, much more slowly moving,
// version). Surfaced by cmd/sumdump's --version flag.
var Version = semver.MustParse("0.1.0")

// FormatVersion is the wire format version this build of sumcodec
// writes and is willing to read, expressed as a semver.Version (spec.md
// §9's open question about facade versioning) rather than a bare
// integer, so a future incompatible revision can bump major/minor/patch
// independently. Serialize embeds wire.FormatVersion's single byte ahead
// of every stream; Deserialize parses it back into a semver.Version and
// uses FormatVersion.GTE to refuse a stream written by a newer,
// potentially incompatible build, rather than misinterpreting its bytes.
var FormatVersion = semver.Version{Major: uint64(wire.FormatVersion)}

// ErrFormatVersionTooNew is returned by Deserialize/DeserializeMany when
// a stream's leading format version exceeds what this build of sumcodec
// is willing to read.
var ErrFormatVersionTooNew = errors.New("sumcodec: stream format version too new")
