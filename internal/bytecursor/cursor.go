// Package bytecursor implements a bounds-checked cursor over a byte slice,
// shared by the object reader and module loader so that every inline read
// of a chunk or code region is validated against the slice length before it
// happens.
package bytecursor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned (wrapped with position detail) whenever a read
// would consume bytes past the end of the cursor's region.
var ErrOutOfBounds = errors.New("bytecursor: read out of bounds")

// Cursor reads little-endian integers and NUL-terminated strings from a
// fixed byte region, failing closed the moment a read would overrun it.
type Cursor struct {
	data []byte
	pos  int
}

// New returns a Cursor over data starting at offset 0.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// At returns a Cursor over data starting at the given offset.
func At(data []byte, offset int) *Cursor {
	return &Cursor{data: data, pos: offset}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.pos }

// Seek repositions the cursor. It does not itself validate pos against len(data);
// the next read will.
func (c *Cursor) Seek(pos int) { c.pos = pos }

// Len returns the length of the underlying region.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes, or 0 if the cursor has
// already overrun (which cannot happen through this API, but Remaining is
// defensive for callers computing their own bounds).
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

func (c *Cursor) require(n int) error {
	if c.pos < 0 || n < 0 || c.pos+n > len(c.data) {
		return fmt.Errorf("%w: at %d, need %d, have %d", ErrOutOfBounds, c.pos, n, len(c.data)-c.pos)
	}
	return nil
}

// Byte reads one unsigned byte.
func (c *Cursor) Byte() (byte, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// I8 reads one signed byte.
func (c *Cursor) I8() (int8, error) {
	b, err := c.Byte()
	return int8(b), err
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// I16 reads a little-endian int16.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// Bytes reads n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// CString reads a NUL-terminated string starting at the cursor's current
// position and advances past the terminator. It fails if no NUL is found
// before the end of the region — the loader treats this as a fatal,
// non-tolerable malformed chunk per spec §4.2.
func (c *Cursor) CString() (string, error) {
	start := c.pos
	for i := c.pos; i < len(c.data); i++ {
		if c.data[i] == 0 {
			s := string(c.data[start:i])
			c.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string starting at %d", ErrOutOfBounds, start)
}

// CStringAt reads a NUL-terminated string at an absolute offset within data,
// without disturbing the cursor's own position. Used for chunks (STRL/STRE,
// SNAM, MEXP, FNAM) whose payload is a table of offsets into a shared blob.
func CStringAt(data []byte, offset int) (string, error) {
	if offset < 0 || offset > len(data) {
		return "", fmt.Errorf("%w: string offset %d out of range (len %d)", ErrOutOfBounds, offset, len(data))
	}
	for i := offset; i < len(data); i++ {
		if data[i] == 0 {
			return string(data[offset:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, offset)
}
