package acsobj

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func chunk(tag string, payload []byte) []byte {
	out := append([]byte(tag), u32le(uint32(len(payload)))...)
	return append(out, payload...)
}

func TestRead_BigE(t *testing.T) {
	dir := chunk("SPTR", []byte{1, 2, 3, 4})
	data := append([]byte("ACSE"), u32le(8)...)
	data = append(data, dir...)

	obj, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, api.FormatBigE, obj.Format)
	require.False(t, obj.Format.SmallCode())
	require.Equal(t, 8, obj.DirectoryStart)
	require.Equal(t, len(data), obj.DirectoryEnd)

	var tags []string
	require.NoError(t, obj.Chunks(func(c Chunk) error {
		tags = append(tags, c.Tag)
		return nil
	}))
	require.Equal(t, []string{"SPTR"}, tags)
}

func TestRead_LittleE_SmallCode(t *testing.T) {
	data := append([]byte("ACSe"), u32le(8)...)
	obj, err := Read(data)
	require.NoError(t, err)
	require.True(t, obj.Format.SmallCode())
}

func TestRead_CaseInsensitiveTag(t *testing.T) {
	dir := chunk("sptr", []byte{9})
	data := append([]byte("ACSE"), u32le(8)...)
	data = append(data, dir...)

	obj, err := Read(data)
	require.NoError(t, err)

	var tags []string
	require.NoError(t, obj.Chunks(func(c Chunk) error {
		tags = append(tags, c.Tag)
		return nil
	}))
	require.Equal(t, []string{"SPTR"}, tags)
}

func TestRead_UnknownMagic(t *testing.T) {
	data := append([]byte("JUNK"), u32le(8)...)
	_, err := Read(data)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_Indirect(t *testing.T) {
	// Build: [real chunk region][real-dir-offset word]["ACSe"], with the
	// outer header's declared offset pointing just past the "ACSe" marker.
	// All offsets are absolute within full, whose 8-byte outer header
	// precedes buf.
	region := chunk("SPTR", []byte{1})
	realDirOffsetPos := len(region) // position in buf: 8 bytes before the header's offset, right before "ACSe"
	_ = realDirOffsetPos

	// Layout: region | realDirOffsetWord(4) | "ACSe"(4) | (header's declared dirOffset points here)
	buf := append([]byte{}, region...)
	buf = append(buf, u32le(8)...) // real directory offset = 8 (start of region within full)
	buf = append(buf, []byte("ACSe")...)
	headerDirOffset := uint32(8 + len(buf))

	full := append([]byte("ACS\x00"), u32le(headerDirOffset)...)
	full = append(full, buf...)

	obj, err := Read(full)
	require.NoError(t, err)
	require.Equal(t, api.FormatLittleE, obj.Format)
	// directory start is absolute: the region begins right after the 8-byte outer header
	require.Equal(t, 8, obj.DirectoryStart)
	require.Equal(t, 8+len(region), obj.DirectoryEnd)

	var tags []string
	require.NoError(t, obj.Chunks(func(c Chunk) error {
		tags = append(tags, c.Tag)
		return nil
	}))
	require.Equal(t, []string{"SPTR"}, tags)
}

func TestRead_TruncatedChunkIsError(t *testing.T) {
	data := append([]byte("ACSE"), u32le(8)...)
	data = append(data, []byte("SPTR")...)
	data = append(data, u32le(100)...) // declares 100 bytes payload, but none follow

	obj, err := Read(data)
	require.NoError(t, err)
	err = obj.Chunks(func(Chunk) error { return nil })
	require.Error(t, err)
}
