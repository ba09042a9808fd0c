package engine

import (
	"strconv"
	"strings"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/bytecursor"
	"github.com/acsvm/acsvm/internal/diag"
	"github.com/acsvm/acsvm/internal/pcode"
)

// step decodes and executes one instruction, leaving t.ip positioned at the
// next instruction (or at whatever GOTO/CALL/RETURN/RESTART set it to). It
// reports done=true once the instance's state has left "running" — every
// suspension point (§5 "Exactly: TERMINATE, SUSPEND, any DELAY variant with
// positive argument, SCRIPTWAIT on an active target") sets State itself and
// relies on this one check, rather than each case reporting done separately.
func (t *Turn) step() (bool, error) {
	op, cur, err := t.fetch()
	if err != nil {
		return false, err
	}

	switch {
	case op >= pcode.PUSHSCRIPTVAR && op <= pcode.DECGLOBALVAR:
		if err := t.stepScalarFamily(op, cur); err != nil {
			return false, err
		}
		t.ip = int32(cur.Pos())

	case op >= pcode.PUSHMAPARRAY && op <= pcode.DECSCRIPTARRAY:
		err := t.stepArrayFamily(op, cur)
		switch err {
		case nil:
			t.ip = int32(cur.Pos())
		case errScriptTerminated:
			t.inst.State = api.StateTerminated
		default:
			return false, err
		}

	case op >= pcode.LSPEC1 && op <= pcode.LSPECEXRESULT:
		if err := t.stepLspec(op, cur); err != nil {
			return false, err
		}
		t.ip = int32(cur.Pos())

	case op >= pcode.SPAWN && op <= pcode.ENDTRANSLATION:
		if err := t.stepBuiltin(op, cur); err != nil {
			return false, err
		}
		t.ip = int32(cur.Pos())

	default:
		if err := t.stepCore(op, cur); err != nil {
			return false, err
		}
	}

	if t.inst.State != api.StateRunning {
		return true, nil
	}
	return false, nil
}

// stepScalarFamily handles the script/map/world/global scalar-var families,
// which share one relative opcode layout (§4.5).
func (t *Turn) stepScalarFamily(op pcode.Op, cur *bytecursor.Cursor) error {
	idxByte, err := cur.Byte()
	if err != nil {
		return err
	}
	idx := int32(idxByte)

	var rel pcode.Op
	var get func() int32
	var set func(int32)

	switch {
	case op >= pcode.PUSHSCRIPTVAR && op <= pcode.DECSCRIPTVAR:
		rel = op - pcode.PUSHSCRIPTVAR
		get = func() int32 { return t.scriptVarGet(idx) }
		set = func(v int32) { t.scriptVarSet(idx, v) }

	case op >= pcode.PUSHMAPVAR && op <= pcode.DECMAPVAR:
		rel = op - pcode.PUSHMAPVAR
		mv, err := t.mapVar(idx)
		if err != nil {
			return err
		}
		get = func() int32 { return mv.Value }
		set = func(v int32) { mv.Value = v }

	case op >= pcode.PUSHWORLDVAR && op <= pcode.DECWORLDVAR:
		rel = op - pcode.PUSHWORLDVAR
		ptr := t.worldVar(idx)
		if ptr == nil {
			return t.fatalf("invalid world-var index %d in script %d", idx, t.inst.Script.Number)
		}
		get = func() int32 { return *ptr }
		set = func(v int32) { *ptr = v }

	default: // PUSHGLOBALVAR..DECGLOBALVAR
		rel = op - pcode.PUSHGLOBALVAR
		ptr := t.globalVar(idx)
		if ptr == nil {
			return t.fatalf("invalid global-var index %d in script %d", idx, t.inst.Script.Number)
		}
		get = func() int32 { return *ptr }
		set = func(v int32) { *ptr = v }
	}

	return t.execScalarFamily(rel, get, set)
}

// stepArrayFamily handles the map/world/global/script array-var families
// (§4.5). It returns errScriptTerminated for the one case that ends the
// instance rather than the whole run: an out-of-range world/global slot.
func (t *Turn) stepArrayFamily(op pcode.Op, cur *bytecursor.Cursor) error {
	slotByte, err := cur.Byte()
	if err != nil {
		return err
	}
	slot := int32(slotByte)

	var rel pcode.Op
	var get func(int32) int32
	var set func(int32, int32)
	disableCompound := false

	switch {
	case op >= pcode.PUSHMAPARRAY && op <= pcode.DECMAPARRAY:
		rel = op - pcode.PUSHMAPARRAY
		disableCompound = true
		if slot < 0 || int(slot) >= acsmod.MaxMapVars {
			return t.fatalf("invalid map-var index %d in script %d", slot, t.inst.Script.Number)
		}
		mv := t.curModule.MapVarEffective(int(slot))
		get = func(i int32) int32 {
			if i < 0 || int(i) >= len(mv.Array) {
				return 0
			}
			return mv.Array[i]
		}
		set = func(i, v int32) {
			if i >= 0 && int(i) < len(mv.Array) {
				mv.Array[i] = v
			}
		}

	case op >= pcode.PUSHWORLDARRAY && op <= pcode.DECWORLDARRAY:
		rel = op - pcode.PUSHWORLDARRAY
		if slot < 0 || int(slot) >= MaxWorldVars {
			t.vm.Diag().Printf(diag.LevelError, "script %d: world-array slot %d out of range, terminating", t.inst.Script.Number, slot)
			return errScriptTerminated
		}
		vec := &t.vm.WorldArrays[slot]
		get = vec.Get
		set = vec.Set

	case op >= pcode.PUSHGLOBALARRAY && op <= pcode.DECGLOBALARRAY:
		rel = op - pcode.PUSHGLOBALARRAY
		if slot < 0 || int(slot) >= MaxGlobalVars {
			t.vm.Diag().Printf(diag.LevelError, "script %d: global-array slot %d out of range, terminating", t.inst.Script.Number, slot)
			return errScriptTerminated
		}
		vec := &t.vm.GlobalArrays[slot]
		get = vec.Get
		set = vec.Set

	default: // PUSHSCRIPTARRAY..DECSCRIPTARRAY
		rel = op - pcode.PUSHSCRIPTARRAY
		get = func(i int32) int32 {
			ptr, ok := t.localArrayElem(slot, i)
			if !ok {
				return 0
			}
			return *ptr
		}
		set = func(i, v int32) {
			if ptr, ok := t.localArrayElem(slot, i); ok {
				*ptr = v
			}
		}
	}

	err = t.execArrayFamily(rel, get, set, disableCompound)
	if err == ErrNotImplemented {
		return t.fatalf("compound map-array opcode %d not implemented in script %d", op, t.inst.Script.Number)
	}
	return err
}

// stepLspec handles LSPEC1..LSPECEXRESULT (§4.5 "Line specials").
func (t *Turn) stepLspec(op pcode.Op, cur *bytecursor.Cursor) error {
	direct, byteArgs := false, false
	switch op {
	case pcode.LSPEC1DIRECT, pcode.LSPEC2DIRECT, pcode.LSPEC3DIRECT, pcode.LSPEC4DIRECT, pcode.LSPEC5DIRECT:
		direct = true
	case pcode.LSPEC1DIRECTB, pcode.LSPEC2DIRECTB, pcode.LSPEC3DIRECTB, pcode.LSPEC4DIRECTB, pcode.LSPEC5DIRECTB:
		direct, byteArgs = true, true
	}

	totalArgs := 1
	switch op {
	case pcode.LSPEC2, pcode.LSPEC2DIRECT, pcode.LSPEC2DIRECTB:
		totalArgs = 2
	case pcode.LSPEC3, pcode.LSPEC3DIRECT, pcode.LSPEC3DIRECTB:
		totalArgs = 3
	case pcode.LSPEC4, pcode.LSPEC4DIRECT, pcode.LSPEC4DIRECTB:
		totalArgs = 4
	case pcode.LSPEC5, pcode.LSPEC5DIRECT, pcode.LSPEC5DIRECTB, pcode.LSPECEX, pcode.LSPECEXRESULT:
		totalArgs = 5
	}
	pushResult := op == pcode.LSPECEXRESULT

	var id int32
	var err error
	if op == pcode.LSPECEX || op == pcode.LSPECEXRESULT {
		id, err = cur.I32()
	} else {
		id, err = t.readU8OrI32(cur)
	}
	if err != nil {
		return err
	}

	args := make([]int32, totalArgs)
	if direct {
		for i := 0; i < totalArgs; i++ {
			if byteArgs {
				b, err := cur.Byte()
				if err != nil {
					return err
				}
				args[i] = int32(b)
			} else {
				v, err := cur.I32()
				if err != nil {
					return err
				}
				args[i] = v
			}
		}
	} else {
		popped, err := t.popArgs(totalArgs)
		if err != nil {
			return err
		}
		copy(args, popped)
	}

	if id == pcode.ACSExecute {
		t.vm.ResumeSuspended(args[0])
		return nil
	}

	parts := make([]string, totalArgs)
	for i, a := range args {
		parts[i] = strconv.Itoa(int(a))
	}
	t.vm.Diag().Printf(diag.LevelDebug, "%d:%s(%s)", id, pcode.LineSpecialName(id), strings.Join(parts, ", "))
	if pushResult {
		t.push(0)
	}
	return nil
}

// stepBuiltin handles the built-in host-interaction family (§4.5 "Built-in
// game interactions"): trace and, if the descriptor says so, push 0.
func (t *Turn) stepBuiltin(op pcode.Op, cur *bytecursor.Cursor) error {
	desc, direct, ok := pcode.BuiltinLookup(op)
	if !ok {
		return t.fatalf("unhandled built-in opcode %d in script %d", op, t.inst.Script.Number)
	}

	args := make([]int32, desc.ArgCount)
	if direct {
		for i := 0; i < desc.ArgCount; i++ {
			v, err := cur.I32()
			if err != nil {
				return err
			}
			args[i] = v
		}
	} else {
		popped, err := t.popArgs(desc.ArgCount)
		if err != nil {
			return err
		}
		copy(args, popped)
	}

	parts := make([]string, desc.ArgCount)
	for i, a := range args {
		parts[i] = strconv.Itoa(int(a))
	}
	t.vm.Diag().Printf(diag.LevelDebug, "ignoring %s(%s)", desc.Name, strings.Join(parts, ", "))
	if desc.ReturnsValue {
		t.push(0)
	}
	return nil
}

// stepCore handles every opcode outside the four generic families above:
// stack & control, arithmetic, function calls, CALLFUNC, print machinery,
// and script-wait.
func (t *Turn) stepCore(op pcode.Op, cur *bytecursor.Cursor) error {
	switch op {
	case pcode.NOP:
		t.ip = int32(cur.Pos())

	case pcode.PUSHNUMBER:
		v, err := cur.I32()
		if err != nil {
			return err
		}
		t.push(v)
		t.ip = int32(cur.Pos())

	case pcode.PUSHBYTE:
		b, err := cur.Byte()
		if err != nil {
			return err
		}
		t.push(int32(b))
		t.ip = int32(cur.Pos())

	case pcode.PUSH2BYTES, pcode.PUSH3BYTES, pcode.PUSH4BYTES, pcode.PUSH5BYTES:
		n := map[pcode.Op]int{pcode.PUSH2BYTES: 2, pcode.PUSH3BYTES: 3, pcode.PUSH4BYTES: 4, pcode.PUSH5BYTES: 5}[op]
		for i := 0; i < n; i++ {
			b, err := cur.Byte()
			if err != nil {
				return err
			}
			t.push(int32(b))
		}
		t.ip = int32(cur.Pos())

	case pcode.PUSHBYTES:
		count, err := cur.Byte()
		if err != nil {
			return err
		}
		for i := 0; i < int(count); i++ {
			b, err := cur.Byte()
			if err != nil {
				return err
			}
			t.push(int32(b))
		}
		t.ip = int32(cur.Pos())

	case pcode.DUP:
		v, err := t.pop()
		if err != nil {
			return err
		}
		t.push(v)
		t.push(v)
		t.ip = int32(cur.Pos())

	case pcode.SWAP:
		a, err := t.pop()
		if err != nil {
			return err
		}
		b, err := t.pop()
		if err != nil {
			return err
		}
		t.push(a)
		t.push(b)
		t.ip = int32(cur.Pos())

	case pcode.DROP:
		if _, err := t.pop(); err != nil {
			return err
		}
		t.ip = int32(cur.Pos())

	case pcode.GOTO:
		offset, err := cur.I32()
		if err != nil {
			return err
		}
		t.ip = offset

	case pcode.IFGOTO, pcode.IFNOTGOTO:
		offset, err := cur.I32()
		if err != nil {
			return err
		}
		v, err := t.pop()
		if err != nil {
			return err
		}
		taken := v != 0
		if op == pcode.IFNOTGOTO {
			taken = v == 0
		}
		if taken {
			t.ip = offset
		} else {
			t.ip = int32(cur.Pos())
		}

	case pcode.CASEGOTO:
		value, err := cur.I32()
		if err != nil {
			return err
		}
		offset, err := cur.I32()
		if err != nil {
			return err
		}
		v, err := t.pop()
		if err != nil {
			return err
		}
		if v == value {
			t.ip = offset
		} else {
			t.push(v)
			t.ip = int32(cur.Pos())
		}

	case pcode.TERMINATE:
		t.inst.State = api.StateTerminated
		t.ip = int32(cur.Pos())

	case pcode.SUSPEND:
		t.inst.State = api.StateSuspended
		t.ip = int32(cur.Pos())

	case pcode.RESTART:
		t.ip = t.inst.Script.CodeStart
		t.curModule = t.inst.Module
		t.frame = nil

	case pcode.DELAY, pcode.DELAYDIRECT, pcode.DELAYDIRECTB:
		var amount int32
		var err error
		switch op {
		case pcode.DELAY:
			amount, err = t.pop()
		case pcode.DELAYDIRECT:
			amount, err = cur.I32()
		case pcode.DELAYDIRECTB:
			var b byte
			b, err = cur.Byte()
			amount = int32(b)
		}
		if err != nil {
			return err
		}
		t.ip = int32(cur.Pos())
		if amount > 0 {
			t.inst.DelayAmount = amount
			t.inst.ResumeTime = t.vm.Tics + uint64(amount)
			t.inst.State = api.StateDelayed
		}

	case pcode.ADD:
		return t.binOp(cur, func(l, r int32) int32 { return l + r })
	case pcode.SUB:
		return t.binOp(cur, func(l, r int32) int32 { return l - r })
	case pcode.MUL:
		return t.binOp(cur, func(l, r int32) int32 { return l * r })
	case pcode.DIVIDE:
		return t.divOp(cur, false)
	case pcode.MODULUS:
		return t.divOp(cur, true)
	case pcode.LSHIFT:
		return t.binOp(cur, func(l, r int32) int32 { return l << uint32(r) })
	case pcode.RSHIFT:
		return t.binOp(cur, func(l, r int32) int32 { return l >> uint32(r) })
	case pcode.ANDBITWISE:
		return t.binOp(cur, func(l, r int32) int32 { return l & r })
	case pcode.ORBITWISE:
		return t.binOp(cur, func(l, r int32) int32 { return l | r })
	case pcode.EORBITWISE:
		return t.binOp(cur, func(l, r int32) int32 { return l ^ r })
	case pcode.ANDLOGICAL:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l != 0 && r != 0) })
	case pcode.ORLOGICAL:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l != 0 || r != 0) })
	case pcode.EQ:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l == r) })
	case pcode.NE:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l != r) })
	case pcode.LT:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l < r) })
	case pcode.GT:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l > r) })
	case pcode.LE:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l <= r) })
	case pcode.GE:
		return t.binOp(cur, func(l, r int32) int32 { return boolInt(l >= r) })

	case pcode.UNARYMINUS:
		return t.unaryOp(cur, func(v int32) int32 { return -v })
	case pcode.NEGATEBINARY:
		return t.unaryOp(cur, func(v int32) int32 { return ^v })
	case pcode.NEGATELOGICAL:
		return t.unaryOp(cur, func(v int32) int32 { return boolInt(v == 0) })

	case pcode.CALL, pcode.CALLDISCARD:
		return t.stepCall(op, cur)
	case pcode.RETURNVOID, pcode.RETURNVAL:
		return t.stepReturn(op)
	case pcode.CALLFUNC:
		if err := t.stepCallFunc(cur); err != nil {
			return err
		}
		t.ip = int32(cur.Pos())

	case pcode.BEGINPRINT:
		t.vm.printBuf.Reset()
		t.ip = int32(cur.Pos())
	case pcode.PRINTSTRING:
		idx, err := t.pop()
		if err != nil {
			return err
		}
		if idx >= 0 && int(idx) < len(t.curModule.Strings) {
			t.vm.printBuf.WriteString(t.curModule.Strings[idx])
		}
		t.ip = int32(cur.Pos())
	case pcode.PRINTNUMBER:
		v, err := t.pop()
		if err != nil {
			return err
		}
		t.vm.printBuf.WriteString(strconv.Itoa(int(v)))
		t.ip = int32(cur.Pos())
	case pcode.PRINTCHARACTER:
		v, err := t.pop()
		if err != nil {
			return err
		}
		t.vm.printBuf.WriteByte(byte(v))
		t.ip = int32(cur.Pos())
	case pcode.ENDPRINT, pcode.ENDPRINTBOLD:
		t.vm.Diag().Print(t.vm.printBuf.String())
		t.ip = int32(cur.Pos())
	case pcode.ENDLOG:
		t.vm.Diag().Printf(diag.LevelDebug, "%s", t.vm.printBuf.String())
		t.ip = int32(cur.Pos())
	case pcode.TAGSTRING:
		t.ip = int32(cur.Pos())
	case pcode.PRINTUNIMPLEMENTED:
		return t.fatalf("print variant not implemented in script %d", t.inst.Script.Number)

	case pcode.SCRIPTWAIT, pcode.SCRIPTWAITDIRECT:
		return t.stepScriptWait(op, cur)

	default:
		return t.fatalf("unknown opcode %d in script %d", op, t.inst.Script.Number)
	}
	return nil
}

func (t *Turn) binOp(cur *bytecursor.Cursor, fn func(l, r int32) int32) error {
	r, err := t.pop()
	if err != nil {
		return err
	}
	l, err := t.pop()
	if err != nil {
		return err
	}
	t.push(fn(l, r))
	t.ip = int32(cur.Pos())
	return nil
}

func (t *Turn) unaryOp(cur *bytecursor.Cursor, fn func(v int32) int32) error {
	v, err := t.pop()
	if err != nil {
		return err
	}
	t.push(fn(v))
	t.ip = int32(cur.Pos())
	return nil
}

func (t *Turn) divOp(cur *bytecursor.Cursor, modulus bool) error {
	r, err := t.pop()
	if err != nil {
		return err
	}
	l, err := t.pop()
	if err != nil {
		return err
	}
	if r == 0 {
		if modulus {
			return t.fatalf("modulo by zero in script %d", t.inst.Script.Number)
		}
		return t.fatalf("division by zero in script %d", t.inst.Script.Number)
	}
	if modulus {
		t.push(l % r)
	} else {
		t.push(l / r)
	}
	t.ip = int32(cur.Pos())
	return nil
}

// stepCall implements CALL/CALLDISCARD (§4.5 "Function calls"). Parameters
// are already on the stack by the time CALL runs; locals is stack - params,
// and the frame reserves LocalCount more cells on top of them, matching the
// original's "call->locals = stack - params; stack += local_size" (the FUNC
// chunk's size field counts locals beyond the parameters, not including
// them).
func (t *Turn) stepCall(op pcode.Op, cur *bytecursor.Cursor) error {
	idxByte, err := cur.Byte()
	if err != nil {
		return err
	}
	fn := t.curModule.FunctionEffective(int(idxByte))
	if fn == nil {
		return t.fatalf("invalid function index %d in script %d", idxByte, t.inst.Script.Number)
	}

	base := len(t.stack) - int(fn.NumParams)
	if base < 0 {
		return t.fatalf("stack underflow calling function %q in script %d", fn.Name, t.inst.Script.Number)
	}
	for i := int32(0); i < fn.LocalCount; i++ {
		t.push(0)
	}

	t.frame = &CallFrame{
		Prev:          t.frame,
		Function:      fn,
		ReturnModule:  t.curModule,
		ReturnIP:      int32(cur.Pos()),
		Base:          base,
		ArrayData:     make([]int32, fn.TotalArraySize),
		DiscardReturn: op == pcode.CALLDISCARD,
	}
	t.curModule = fn.Module
	t.ip = fn.CodeStart
	return nil
}

// stepReturn implements RETURNVOID/RETURNVAL (§4.5). An empty call stack is
// fatal, matching the original's unconditional pop_call dereference.
func (t *Turn) stepReturn(op pcode.Op) error {
	if t.frame == nil {
		return t.fatalf("return from empty call stack in script %d", t.inst.Script.Number)
	}
	var retval int32
	if op == pcode.RETURNVAL {
		v, err := t.pop()
		if err != nil {
			return err
		}
		retval = v
	}

	frame := t.frame
	t.stack = t.stack[:frame.Base]
	if !frame.DiscardReturn {
		t.push(retval)
	}
	t.curModule = frame.ReturnModule
	t.ip = frame.ReturnIP
	t.frame = frame.Prev
	return nil
}

// stepCallFunc implements CALLFUNC (§4.5 "Extension").
func (t *Turn) stepCallFunc(cur *bytecursor.Cursor) error {
	numArgs, err := t.readU8OrI32(cur)
	if err != nil {
		return err
	}
	funcID, err := t.readI16OrI32(cur)
	if err != nil {
		return err
	}

	switch funcID {
	case pcode.DumpScriptFuncID:
		num, err := t.pop()
		if err != nil {
			return err
		}
		if s := t.vm.ScriptByNumber(num); s != nil {
			t.vm.Diag().Printf(diag.LevelDebug, "script %d: type=%s", s.Number, api.ScriptTypeName(s.Type))
			t.push(1)
		} else {
			t.push(0)
		}
	case pcode.DumpLocalVarsFuncID:
		t.traceLocalVars()
		t.push(1)
	default:
		if _, err := t.popArgs(int(numArgs)); err != nil {
			return err
		}
		t.vm.Diag().Printf(diag.LevelDebug, "callfunc %d:%s discarding %d args", funcID, pcode.ExtFuncName(funcID), numArgs)
		t.push(0)
	}
	return nil
}

func (t *Turn) traceLocalVars() {
	vars := t.inst.Vars
	if t.frame != nil {
		fn := t.frame.Function
		end := t.frame.Base + int(fn.NumParams+fn.LocalCount)
		if end > len(t.stack) {
			end = len(t.stack)
		}
		vars = t.stack[t.frame.Base:end]
	}
	t.vm.Diag().Printf(diag.LevelDebug, "script %d local vars: %v", t.inst.Script.Number, vars)
}

// stepScriptWait implements SCRIPTWAIT/SCRIPTWAITDIRECT (§4.5
// "Script-wait"). The original locates the target through
// vm_get_active_script, whose definition is not present in the retrieved
// source; "active" is taken to mean any instance of that number not yet
// terminated, tracked VM-wide in Live.
func (t *Turn) stepScriptWait(op pcode.Op, cur *bytecursor.Cursor) error {
	var number int32
	if op == pcode.SCRIPTWAITDIRECT {
		v, err := cur.I32()
		if err != nil {
			return err
		}
		number = v
	} else {
		v, err := t.pop()
		if err != nil {
			return err
		}
		number = v
	}
	t.ip = int32(cur.Pos())

	target := t.vm.ActiveInstanceByNumber(number, t.inst)
	if target != nil {
		target.Waiters = append(target.Waiters, t.inst)
		t.inst.State = api.StateWaiting
	}
	return nil
}
