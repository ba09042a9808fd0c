package engine

import (
	"fmt"

	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/bytecursor"
	"github.com/acsvm/acsvm/internal/diag"
	"github.com/acsvm/acsvm/internal/pcode"
)

// minStackCapacity is the Turn's evaluation stack's minimum capacity (§4.5
// "a caller-provided evaluation stack buffer (minimum capacity 1000
// entries of 32 bits)"). Go slices grow past this on demand; we only need
// to preallocate it.
const minStackCapacity = 1000

// Turn is one instance's run-to-suspension context (§4.5 "Turn"). It is
// not shared across instances (§5).
type Turn struct {
	vm   *VM
	inst *Instance

	// curModule is whichever module's code bytes ip currently indexes
	// into: the instance's own module at the top level, or a called
	// function's module while a frame is active. Map-var and script-var
	// opcodes resolve against curModule/frame, not inst.Module, so that a
	// CALL into an imported library function reads that library's own map
	// vars (§4.5 "Map-var ... through the owning module's indirection
	// table").
	curModule *acsmod.Module
	ip        int32
	frame     *CallFrame

	stack []int32
}

func newTurn(vm *VM, inst *Instance) *Turn {
	return &Turn{
		vm:        vm,
		inst:      inst,
		curModule: inst.Module,
		ip:        inst.IP,
		stack:     make([]int32, 0, minStackCapacity),
	}
}

// run executes instructions until the instance suspends, terminates,
// delays, waits, or a fatal condition occurs (§4.5 "Suspension points").
func (t *Turn) run() error {
	for i := 0; i < maxInstructionsPerTurn; i++ {
		done, err := t.step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	// Exceeded the turn budget without suspending: leave State as Running,
	// which the scheduler's post-turn switch treats as the §9(b) TODO path.
	return nil
}

func (t *Turn) fatalf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	t.vm.Diag().Printf(diag.LevelFatal, "%s", msg)
	return &FatalError{Msg: msg}
}

// stack primitives

func (t *Turn) push(v int32) { t.stack = append(t.stack, v) }

func (t *Turn) pop() (int32, error) {
	if len(t.stack) == 0 {
		return 0, t.fatalf("stack underflow in script %d", t.inst.Script.Number)
	}
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v, nil
}

// popArgs pops n values and returns them in their original left-to-right
// push order (§4.5 "non-DIRECT pops in right-to-left order").
func (t *Turn) popArgs(n int) ([]int32, error) {
	args := make([]int32, n)
	for i := n - 1; i >= 0; i-- {
		v, err := t.pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// script-var access: aliases the active call frame's locals when one is
// present (§4.5 "When a call frame is active, these refer to the frame's
// local file instead"; §9 open question (d): applied consistently to
// every script-var opcode, compound forms included).

func (t *Turn) scriptVarGet(idx int32) int32 {
	if t.frame != nil {
		return t.stack[t.frame.Base+int(idx)]
	}
	return t.inst.Vars[idx]
}

func (t *Turn) scriptVarSet(idx int32, v int32) {
	if t.frame != nil {
		t.stack[t.frame.Base+int(idx)] = v
		return
	}
	t.inst.Vars[idx] = v
}

// map-var access, through curModule's indirection table (§4.3, §4.5).

func (t *Turn) mapVar(idx int32) (*acsmod.MapVar, error) {
	if idx < 0 || int(idx) >= acsmod.MaxMapVars {
		return nil, t.fatalf("invalid map-var index %d in script %d", idx, t.inst.Script.Number)
	}
	return t.curModule.MapVarEffective(int(idx)), nil
}

// world/global scalar-var access (§3 VM, §4.5).

func (t *Turn) worldVar(idx int32) *int32 {
	if idx < 0 || int(idx) >= MaxWorldVars {
		return nil
	}
	return &t.vm.World[idx]
}

func (t *Turn) globalVar(idx int32) *int32 {
	if idx < 0 || int(idx) >= MaxGlobalVars {
		return nil
	}
	return &t.vm.Global[idx]
}

// local-array table/buffer in effect: the active call frame's function, or
// the instance's script (§4.5 "Script-array (local)").

func (t *Turn) localArrayTable() []acsmod.LocalArrayEntry {
	if t.frame != nil {
		return t.frame.Function.ArrayTable
	}
	return t.inst.Script.ArrayTable
}

func (t *Turn) localArrayData() []int32 {
	if t.frame != nil {
		return t.frame.ArrayData
	}
	return t.inst.ArrayData
}

func (t *Turn) localArrayElem(tableIdx, elemIdx int32) (*int32, bool) {
	entry, ok := localArrayEntry(t.localArrayTable(), tableIdx)
	if !ok || elemIdx < 0 || elemIdx >= entry.Size {
		return nil, false
	}
	data := t.localArrayData()
	pos := entry.Start + elemIdx
	if pos < 0 || int(pos) >= len(data) {
		return nil, false
	}
	return &data[pos], true
}

// fetch reads the opcode at the current ip without changing t.ip; the
// returned cursor is positioned just past the opcode for the caller's
// inline operand reads within the same instruction (§4.5 "Opcode decode").
func (t *Turn) fetch() (pcode.Op, *bytecursor.Cursor, error) {
	cur := bytecursor.At(t.curModule.Object.Data, int(t.ip))
	smallCode := t.curModule.Object.Format.SmallCode()
	op, err := pcode.Decode(cur, smallCode)
	if err != nil {
		return 0, nil, t.fatalf("truncated opcode at %d in script %d: %v", t.ip, t.inst.Script.Number, err)
	}
	if !op.Valid() {
		return 0, nil, t.fatalf("unknown opcode %d at %d in script %d", uint16(op), t.ip, t.inst.Script.Number)
	}
	return op, cur, nil
}

// readU8OrI32 reads a 1-byte unsigned operand in small-code mode, widening
// to a 4-byte operand otherwise (line-special ids, CALLFUNC's arg count:
// §4.5 "operand 0 ... is 1 byte in small-code mode, 4 bytes otherwise").
func (t *Turn) readU8OrI32(cur *bytecursor.Cursor) (int32, error) {
	if t.curModule.Object.Format.SmallCode() {
		v, err := cur.Byte()
		return int32(v), err
	}
	return cur.I32()
}

// readI16OrI32 reads a 2-byte signed operand in small-code mode, widening
// to 4 bytes otherwise (CALLFUNC's function id).
func (t *Turn) readI16OrI32(cur *bytecursor.Cursor) (int32, error) {
	if t.curModule.Object.Format.SmallCode() {
		v, err := cur.I16()
		return int32(v), err
	}
	return cur.I32()
}
