package acsvm

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

// smallOp encodes op's small-code form. Every opcode exercised by these
// tests stays under pcode.MaxSingleByte, so a single byte always suffices.
func smallOp(op pcode.Op) []byte { return []byte{byte(op)} }

// writeObject assembles a minimal ACSe (small-code) object file: an
// 8-byte header, then code bytes starting at offset 8, then the chunk
// directory. It returns the path of the file written under t.TempDir().
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

// openScript builds an SPTR chunk describing a single open-type script
// numbered 1 starting at codeStart.
func openScript(codeStart int32) []byte {
	return chunk("SPTR", append(append([]byte{1, 0}, byte(api.ScriptTypeOpen), 0), i32le(codeStart)...))
}

func TestVM_RunsOpenScriptToCompletion(t *testing.T) {
	var code bytes.Buffer
	code.Write(smallOp(pcode.PUSHNUMBER))
	code.Write(i32le(5))
	code.Write(smallOp(pcode.PUSHNUMBER))
	code.Write(i32le(3))
	code.Write(smallOp(pcode.ADD))
	code.Write(smallOp(pcode.TERMINATE))

	path := writeObject(t, code.Bytes(), openScript(8))

	var out bytes.Buffer
	cfg := NewVMConfig().WithModule("", path).WithDiagWriter(&out).WithVerbose(true)
	vm, err := NewVM(cfg)
	require.NoError(t, err)
	require.NoError(t, vm.Run())
	require.Equal(t, 0, vm.ActiveScripts())
}

func TestVM_DivideByZeroIsFatal(t *testing.T) {
	var code bytes.Buffer
	code.Write(smallOp(pcode.PUSHNUMBER))
	code.Write(i32le(5))
	code.Write(smallOp(pcode.PUSHNUMBER))
	code.Write(i32le(0))
	code.Write(smallOp(pcode.DIVIDE))
	code.Write(smallOp(pcode.TERMINATE))

	path := writeObject(t, code.Bytes(), openScript(8))

	cfg := NewVMConfig().WithModule("", path)
	vm, err := NewVM(cfg)
	require.NoError(t, err)
	require.Error(t, vm.Run())
}

func TestNewVM_NoModulesIsError(t *testing.T) {
	_, err := NewVM(NewVMConfig())
	require.Error(t, err)
}
