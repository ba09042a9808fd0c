package engine

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/acsobj"
	"github.com/acsvm/acsvm/internal/diag"
	"github.com/acsvm/acsvm/internal/pcode"
)

// encodeOp appends op's small-code encoding (§4.5 "Opcode decode"): a
// single byte below MaxSingleByte, or 240 followed by a continuation byte.
func encodeOp(op pcode.Op) []byte {
	if int(op) < pcode.MaxSingleByte {
		return []byte{byte(op)}
	}
	return []byte{byte(pcode.MaxSingleByte), byte(int(op) - pcode.MaxSingleByte)}
}

func i32le(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

// program assembles a small-code bytecode buffer from a sequence of
// opcodes and raw operand bytes, e.g. program(encodeOp(pcode.PUSHNUMBER),
// i32le(5), encodeOp(pcode.TERMINATE)).
func program(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	return buf.Bytes()
}

// newTestModule builds a Module directly (bypassing the Object Reader and
// Module Loader, which have their own dedicated tests) whose code bytes
// are a hand-assembled small-code program, with a single open script
// numbered 1 at code offset 0.
func newTestModule(t *testing.T, code []byte) (*acsmod.Module, *acsmod.Script) {
	t.Helper()
	obj := &acsobj.Object{Data: code, Format: api.FormatLittleE}
	m := acsmod.NewModule("MAIN", obj)
	s := &acsmod.Script{
		Module:    m,
		Number:    1,
		Type:      api.ScriptTypeOpen,
		CodeStart: 0,
		NumVars:   acsmod.DefaultScalarVars,
	}
	m.Scripts = append(m.Scripts, s)
	return m, s
}

// newTestVM builds a single-module VM around code, ready for Boot/Run, with
// diagnostics captured in the returned buffer.
func newTestVM(t *testing.T, code []byte) (*VM, *acsmod.Script, *bytes.Buffer) {
	t.Helper()
	m, s := newTestModule(t, code)
	var buf bytes.Buffer
	vm := New(Config{TicDuration: time.Microsecond, Diag: diag.New(&buf, true)}, []*acsmod.Module{m})
	return vm, s, &buf
}

// runOnce boots and runs vm, failing the test if Run returns an error.
func runOnce(t *testing.T, vm *VM) {
	t.Helper()
	Boot(vm)
	require.NoError(t, Run(vm))
}
