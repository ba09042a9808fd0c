package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/pcode"
)

func TestTerminate_LeavesFinalStackValue(t *testing.T) {
	code := program(
		encodeOp(pcode.PUSHNUMBER), i32le(5),
		encodeOp(pcode.PUSHNUMBER), i32le(3),
		encodeOp(pcode.ADD),
		encodeOp(pcode.TERMINATE),
	)
	m, s := newTestModule(t, code)
	vm := New(Config{}, []*acsmod.Module{m})
	inst := NewInstance(s)
	turn := newTurn(vm, inst)

	require.NoError(t, turn.run())
	require.Equal(t, api.StateTerminated, inst.State)
	require.Equal(t, []int32{8}, turn.stack)
}

func TestDivideByZero_IsFatal(t *testing.T) {
	code := program(
		encodeOp(pcode.PUSHNUMBER), i32le(5),
		encodeOp(pcode.PUSHNUMBER), i32le(0),
		encodeOp(pcode.DIVIDE),
		encodeOp(pcode.TERMINATE),
	)
	vm, _, _ := newTestVM(t, code)
	Boot(vm)
	err := Run(vm)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestStackUnderflow_IsFatal(t *testing.T) {
	code := program(
		encodeOp(pcode.ADD),
		encodeOp(pcode.TERMINATE),
	)
	vm, _, _ := newTestVM(t, code)
	Boot(vm)
	err := Run(vm)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestCall_ReturnsValueThroughParamsAndLocals(t *testing.T) {
	// Double(n): local 1 (beyond the one param) holds n*2, returned.
	funcCode := program(
		encodeOp(pcode.PUSHSCRIPTVAR), []byte{0},
		encodeOp(pcode.PUSHSCRIPTVAR), []byte{0},
		encodeOp(pcode.ADD),
		encodeOp(pcode.ASSIGNSCRIPTVAR), []byte{1},
		encodeOp(pcode.PUSHSCRIPTVAR), []byte{1},
		encodeOp(pcode.RETURNVAL),
	)
	mainCode := program(
		encodeOp(pcode.PUSHNUMBER), i32le(21),
		encodeOp(pcode.CALL), []byte{0},
		encodeOp(pcode.TERMINATE),
	)
	code := append(append([]byte{}, mainCode...), funcCode...)
	funcStart := int32(len(mainCode))

	m, s := newTestModule(t, code)
	fn := &acsmod.Function{Module: m, Name: "Double", NumParams: 1, LocalCount: 1, HasReturn: true, CodeStart: funcStart}
	m.Functions.Owned = append(m.Functions.Owned, fn)
	m.Functions.Linked = append(m.Functions.Linked, fn)

	vm := New(Config{}, []*acsmod.Module{m})
	inst := NewInstance(s)
	turn := newTurn(vm, inst)

	require.NoError(t, turn.run())
	require.Equal(t, api.StateTerminated, inst.State)
	require.Equal(t, []int32{42}, turn.stack)
}

func TestReturn_FromEmptyCallStackIsFatal(t *testing.T) {
	code := program(
		encodeOp(pcode.RETURNVOID),
	)
	vm, _, _ := newTestVM(t, code)
	Boot(vm)
	err := Run(vm)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestWorldArray_AutogrowsAndRoundTrips(t *testing.T) {
	m, s := newTestModule(t, nil)
	vm := New(Config{}, []*acsmod.Module{m})
	inst := NewInstance(s)
	turn := newTurn(vm, inst)

	// ASSIGNWORLDARRAY pops value then index (§4.5 array families).
	code := program(
		encodeOp(pcode.PUSHNUMBER), i32le(3), // index
		encodeOp(pcode.PUSHNUMBER), i32le(77), // value
		encodeOp(pcode.ASSIGNWORLDARRAY), []byte{0}, // slot 0
		encodeOp(pcode.TERMINATE),
	)
	m.Object.Data = code
	require.NoError(t, turn.run())
	require.Equal(t, api.StateTerminated, inst.State)
	require.Equal(t, int32(77), vm.WorldArrays[0].Get(3))
	require.Equal(t, int32(0), vm.WorldArrays[0].Get(4))
}

func TestGlobalArray_OutOfRangeSlotTerminatesInstanceOnly(t *testing.T) {
	m, s := newTestModule(t, nil)
	vm := New(Config{}, []*acsmod.Module{m})
	inst := NewInstance(s)
	turn := newTurn(vm, inst)

	// MaxGlobalVars is 64, so slot 255 (the highest a single byte operand
	// can encode) is out of range, unlike world-array's 256 slots.
	code := program(
		encodeOp(pcode.PUSHNUMBER), i32le(0),
		encodeOp(pcode.PUSHGLOBALARRAY), []byte{255},
		encodeOp(pcode.TERMINATE),
	)
	m.Object.Data = code
	require.NoError(t, turn.run())
	require.Equal(t, api.StateTerminated, inst.State)
}

func TestScriptWait_SuspendsUntilTargetTerminates(t *testing.T) {
	// Script 1 waits on script 2; script 2 terminates immediately.
	waiterCode := program(
		encodeOp(pcode.SCRIPTWAITDIRECT), i32le(2),
		encodeOp(pcode.TERMINATE),
	)
	targetCode := program(
		encodeOp(pcode.TERMINATE),
	)
	code := append(append([]byte{}, waiterCode...), targetCode...)
	targetStart := int32(len(waiterCode))

	m, s1 := newTestModule(t, code)
	s1.Number = 1
	s2 := &acsmod.Script{Module: m, Number: 2, Type: api.ScriptTypeOpen, CodeStart: targetStart, NumVars: acsmod.DefaultScalarVars}
	m.Scripts = append(m.Scripts, s2)

	vm := New(Config{TicDuration: 0}, []*acsmod.Module{m})
	Boot(vm)
	require.NoError(t, Run(vm))
	require.Equal(t, 0, vm.ActiveScripts)
}

func TestDelay_ResumesAtTargetTic(t *testing.T) {
	code := program(
		encodeOp(pcode.PUSHNUMBER), i32le(2),
		encodeOp(pcode.DELAY),
		encodeOp(pcode.TERMINATE),
	)
	vm, _, _ := newTestVM(t, code)
	Boot(vm)
	require.NoError(t, Run(vm))
	require.Equal(t, 0, vm.ActiveScripts)
	require.GreaterOrEqual(t, vm.Tics, uint64(2))
}
