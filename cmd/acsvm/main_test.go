package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/pcode"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func i32le(v int32) []byte { return u32le(uint32(v)) }

func chunk(tag string, payload []byte) []byte {
	out := append([]byte(tag), u32le(uint32(len(payload)))...)
	return append(out, payload...)
}

func writeObject(t *testing.T, code []byte, chunks ...[]byte) string {
	t.Helper()
	const headerSize = 8
	dirOffset := headerSize + len(code)

	var buf bytes.Buffer
	buf.WriteString("ACSe")
	buf.Write(u32le(uint32(dirOffset)))
	buf.Write(code)
	for _, c := range chunks {
		buf.Write(c)
	}

	path := filepath.Join(t.TempDir(), "test.o")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func openScript(codeStart int32) []byte {
	return chunk("SPTR", append(append([]byte{1, 0}, byte(api.ScriptTypeOpen), 0), i32le(codeStart)...))
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"acsvm"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestDoMain_NoArgsIsUsageError(t *testing.T) {
	withArgs(t)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 1, doMain(&stdout, &stderr))
	require.Contains(t, stderr.String(), "no object file given")
}

func TestDoMain_RunsCleanly(t *testing.T) {
	var code bytes.Buffer
	code.Write([]byte{byte(pcode.PUSHNUMBER)})
	code.Write(i32le(1))
	code.Write([]byte{byte(pcode.TERMINATE)})
	path := writeObject(t, code.Bytes(), openScript(8))

	withArgs(t, path)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, doMain(&stdout, &stderr))
	require.Empty(t, stderr.String())
}

func TestDoMain_DumpFlagPrintsLoaderTablesOnly(t *testing.T) {
	path := writeObject(t, nil, openScript(8))

	withArgs(t, "-dump", "-v", path)
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, doMain(&stdout, &stderr))
	require.Contains(t, stdout.String(), "scripts (1):")
}

func TestDoMain_MissingFileIsFatal(t *testing.T) {
	withArgs(t, filepath.Join(t.TempDir(), "nonexistent.o"))
	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, doMain(&stdout, &stderr))
	require.Contains(t, stderr.String(), "fatal error")
}
