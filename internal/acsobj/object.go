// Package acsobj implements the Object Reader (spec §4.1): it turns a
// contiguous byte blob into a structured Object — format, chunk directory
// bounds, and the byte-addressable code region the interpreter steps
// through. It does not interpret chunk payloads; that is internal/acsmod's
// job.
package acsobj

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/bytecursor"
)

// ErrUnsupportedFormat is returned when the header's magic is not one of
// "ACSE", "ACSe", or "ACS\x00".
var ErrUnsupportedFormat = errors.New("acsobj: unsupported object format")

const headerSize = 8

// Object is a parsed ACS object module: the raw bytes, the decoded format,
// and the bounds of the chunk directory within those bytes.
type Object struct {
	Data   []byte
	Format api.Format

	// DirectoryStart and DirectoryEnd bound the chunk stream: chunks are
	// read by repeatedly parsing [tag:4][size:4][payload:size] starting at
	// DirectoryStart until DirectoryEnd is reached.
	DirectoryStart int
	DirectoryEnd   int
}

// Size is the number of addressable code bytes — every instruction pointer
// for this object must satisfy 0 <= ip < Size (§3 invariants).
func (o *Object) Size() int { return len(o.Data) }

// Read parses the header of data and classifies the object's format,
// per §4.1's magic decision table.
func Read(data []byte) (*Object, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: object too small for header (%d bytes)", ErrUnsupportedFormat, len(data))
	}
	magic := string(data[:4])
	dirOffsetField := int32(binary.LittleEndian.Uint32(data[4:8]))

	switch magic {
	case "ACSE":
		return &Object{Data: data, Format: api.FormatBigE, DirectoryStart: int(dirOffsetField), DirectoryEnd: len(data)}, nil
	case "ACSe":
		return &Object{Data: data, Format: api.FormatLittleE, DirectoryStart: int(dirOffsetField), DirectoryEnd: len(data)}, nil
	case "ACS\x00":
		return readIndirect(data, dirOffsetField)
	default:
		return nil, fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, magic)
	}
}

// readIndirect handles the "ACS\x00" header, which may either point at an
// indirect ACSE/ACSe directory (libraries compiled for the extended format)
// or have no chunks at all ("zero" format, the original unextended layout).
func readIndirect(data []byte, headerDirOffset int32) (*Object, error) {
	precedingStart := int(headerDirOffset) - 4
	if precedingStart < 0 || precedingStart+4 > len(data) {
		// Can't even read the four preceding bytes: treat as zero-format,
		// there is nowhere for an indirect magic to live.
		return &Object{Data: data, Format: api.FormatZero, DirectoryStart: len(data), DirectoryEnd: len(data)}, nil
	}
	preceding := string(data[precedingStart : precedingStart+4])

	var format api.Format
	switch preceding {
	case "ACSE":
		format = api.FormatBigE
	case "ACSe":
		format = api.FormatLittleE
	default:
		return &Object{Data: data, Format: api.FormatZero, DirectoryStart: len(data), DirectoryEnd: len(data)}, nil
	}

	// The real directory offset is the 32-bit word immediately before the
	// magic, i.e. 8 bytes before the header's directory offset.
	realOffsetPos := precedingStart - 4
	if realOffsetPos < 0 || realOffsetPos+4 > len(data) {
		return nil, fmt.Errorf("%w: indirect directory offset out of range", ErrUnsupportedFormat)
	}
	realOffset := int32(binary.LittleEndian.Uint32(data[realOffsetPos : realOffsetPos+4]))

	// The chunk region ends 8 bytes before the original header offset,
	// where the real-directory-offset word begins.
	end := int(headerDirOffset) - 8
	if end < 0 || int(realOffset) < 0 || int(realOffset) > end || end > len(data) {
		return nil, fmt.Errorf("%w: indirect chunk region [%d,%d) invalid", ErrUnsupportedFormat, realOffset, end)
	}

	return &Object{Data: data, Format: format, DirectoryStart: int(realOffset), DirectoryEnd: end}, nil
}

// Chunk is one record of the chunk directory: a four-byte tag (matched
// case-insensitively, canonicalized to uppercase), its payload length, and
// the payload bytes themselves.
type Chunk struct {
	Tag     string
	Payload []byte
	// Offset is the absolute byte offset of Payload within the Object's
	// Data (reported by DumpModule). The string-offset records of
	// STRL/STRE/SNAM/MEXP/FNAM chunks are relative to Payload, not to Data.
	Offset int
}

// Chunks walks the object's chunk directory in order, calling fn for each
// chunk. It stops and returns an error the moment a chunk's declared size
// would run past DirectoryEnd.
func (o *Object) Chunks(fn func(Chunk) error) error {
	if o.Format == api.FormatZero {
		return nil
	}
	region := o.Data[:o.DirectoryEnd]
	c := bytecursor.At(region, o.DirectoryStart)
	for c.Pos() < o.DirectoryEnd {
		if o.DirectoryEnd-c.Pos() < 8 {
			return fmt.Errorf("acsobj: truncated chunk header at %d", c.Pos())
		}
		tagBytes, err := c.Bytes(4)
		if err != nil {
			return err
		}
		size, err := c.U32()
		if err != nil {
			return err
		}
		payloadStart := c.Pos()
		payload, err := c.Bytes(int(size))
		if err != nil {
			return fmt.Errorf("acsobj: chunk %q payload overruns directory: %w", tagBytes, err)
		}
		if err := fn(Chunk{Tag: canonicalTag(tagBytes), Payload: payload, Offset: payloadStart}); err != nil {
			return err
		}
	}
	return nil
}

func canonicalTag(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// KnownTags enumerates the chunk types of the object format (§3 Chunk).
// The loader does not consult it: it handles a subset of these tags and
// ignores every other chunk, listed here or not.
var KnownTags = map[string]bool{
	"ARAY": true, "AINI": true, "AIMP": true, "ASTR": true, "MSTR": true,
	"LOAD": true, "FUNC": true, "FNAM": true, "MINI": true, "MIMP": true,
	"MEXP": true, "SPTR": true, "SFLG": true, "SVCT": true, "STRL": true,
	"STRE": true, "JUMP": true, "ALIB": true, "SARY": true, "FARY": true,
	"ATAG": true, "SNAM": true,
}
