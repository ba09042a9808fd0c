package engine

import (
	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
)

// Instance is a live invocation of a script (§3 "Instance (live script)").
type Instance struct {
	Script *acsmod.Script
	Module *acsmod.Module

	Vars      []int32 // fresh, zero-initialized, sized by Script.NumVars
	ArrayData []int32 // contiguous local-array storage, size = Script.TotalArraySize

	DelayAmount int32
	ResumeTime  uint64
	IP          int32

	// Waiters holds instances blocked on this one by SCRIPTWAIT (§4.4,
	// §4.5): instances that named this script's number while it was
	// still running or suspended.
	Waiters []*Instance

	State api.InstanceState
}

// NewInstance creates a fresh instance of script, with zeroed scalars and
// local-array storage (§3 Lifecycles: "Instances are created when a
// script is started").
func NewInstance(script *acsmod.Script) *Instance {
	return &Instance{
		Script:    script,
		Module:    script.Module,
		Vars:      make([]int32, script.NumVars),
		ArrayData: make([]int32, script.TotalArraySize),
		IP:        script.CodeStart,
		State:     api.StateRunning,
	}
}

// CallFrame is a per-function-invocation record (§3 "Call frame").
type CallFrame struct {
	Prev *CallFrame

	Function     *acsmod.Function
	ReturnModule *acsmod.Module
	ReturnIP     int32

	// Base is the index into the Turn's evaluation stack where this
	// frame's locals begin; parameters are already in place there by the
	// time CALL pushes the frame.
	Base int

	ArrayData      []int32 // owned local-array buffer, zeroed, sized by Function.TotalArraySize
	DiscardReturn bool
}

// localArrayEntry returns entry index of table, or false when index is out
// of range. The caller picks the table (Turn.localArrayTable: the current
// call frame's function if any, otherwise the instance's script).
func localArrayEntry(table []acsmod.LocalArrayEntry, index int32) (acsmod.LocalArrayEntry, bool) {
	if index < 0 || int(index) >= len(table) {
		return acsmod.LocalArrayEntry{}, false
	}
	return table[index], true
}
