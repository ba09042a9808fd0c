package bytecursor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_Primitives(t *testing.T) {
	data := []byte{0x05, 0xff, 0x01, 0x02, 0x03, 0x04, 'h', 'i', 0}
	c := New(data)

	b, err := c.Byte()
	require.NoError(t, err)
	require.Equal(t, byte(0x05), b)

	i8, err := c.I8()
	require.NoError(t, err)
	require.Equal(t, int8(-1), i8)

	u32, err := c.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x04030201), u32)

	s, err := c.CString()
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	require.Equal(t, 0, c.Remaining())
}

func TestCursor_OutOfBounds(t *testing.T) {
	c := New([]byte{1, 2})
	_, err := c.U32()
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCursor_UnterminatedString(t *testing.T) {
	c := New([]byte{'a', 'b', 'c'})
	_, err := c.CString()
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCStringAt(t *testing.T) {
	data := []byte{'x', 0, 'f', 'o', 'o', 0}
	s, err := CStringAt(data, 2)
	require.NoError(t, err)
	require.Equal(t, "foo", s)

	_, err = CStringAt(data, 100)
	require.ErrorIs(t, err, ErrOutOfBounds)
}
