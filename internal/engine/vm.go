// Package engine ties the Module Loader, Linker, Scheduler, and
// Interpreter together into a running VM (spec §3 "VM", §4.4, §4.5). It is
// the heaviest package in the module, the way internal/engine/interpreter
// is the heaviest package in the teacher: opcode dispatch dominates.
package engine

import (
	"strings"
	"time"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/diag"
)

// MaxWorldVars is the number of VM-global world-variable scalar slots (§3).
const MaxWorldVars = 256

// MaxGlobalVars is the number of VM-global global-variable scalar slots (§3).
const MaxGlobalVars = 64

// arrayGrowSlack is how far past the written index a world/global array
// grows (§4.5 "the vector grows to index + 1 + 1000").
const arrayGrowSlack = 1000

// Int32Vector is the growable vector of 32-bit elements backing one
// world-variable or global-variable array slot (§3 VM). It is modeled on
// the original implementation's common/vector.c grow-on-demand policy,
// specialized to int32 elements and to this VM's specific grow amount.
type Int32Vector struct {
	data []int32
}

// Get returns element i, or 0 if i is outside the vector's current
// capacity (§4.5: "Reads of OOB return 0").
func (v *Int32Vector) Get(i int32) int32 {
	if i < 0 || int(i) >= len(v.data) {
		return 0
	}
	return v.data[i]
}

// Set writes element i, growing the vector first if needed (§4.5: "Writes
// auto-grow: if index >= capacity, the vector grows to index + 1 + 1000
// and newly-allocated cells are zero-initialized").
func (v *Int32Vector) Set(i int32, val int32) {
	if int(i) >= len(v.data) {
		grown := make([]int32, int(i)+1+arrayGrowSlack)
		copy(grown, v.data)
		v.data = grown
	}
	v.data[i] = val
}

// Cap returns the vector's current capacity, for diagnostics/tests only.
func (v *Int32Vector) Cap() int { return len(v.data) }

// Config configures a VM's scheduling and diagnostic behavior.
type Config struct {
	// TicDuration is the wall-clock sleep between tics (§9 open question (a):
	// "expose it as configuration" rather than hardcoding 1s).
	TicDuration time.Duration
	Diag        *diag.Stream
}

// VM is the root runtime object (§3 "VM").
type VM struct {
	cfg Config

	Modules []*acsmod.Module
	// Scripts is the flat cross-module list of every script descriptor, for
	// lookup by number regardless of owning module.
	Scripts []*acsmod.Script

	// Suspended holds every instance the scheduler has parked in the
	// VM-wide suspended list (§4.4 post-turn transitions).
	Suspended []*Instance

	// Live holds every instance that has not yet terminated, regardless of
	// which queue or waiter chain it currently sits in. SCRIPTWAIT uses it
	// to find "the currently active instance of script N" (§4.5
	// "Script-wait").
	Live []*Instance

	World        [MaxWorldVars]int32
	Global       [MaxGlobalVars]int32
	WorldArrays  [MaxWorldVars]Int32Vector
	GlobalArrays [MaxGlobalVars]Int32Vector

	Tics          uint64
	ActiveScripts int

	// queues holds one ready queue per module, indexed the same as Modules.
	queues    []*readyQueue
	moduleIdx map[*acsmod.Module]int

	// callStackDepth is never updated or read; call frames are tracked
	// per-Turn.
	callStackDepth int

	// printBuf is the VM's single scratch print buffer (§3 "a scratch
	// print buffer"), cleared by BEGINPRINT and flushed by ENDPRINT/
	// ENDPRINTBOLD/ENDLOG. Scheduling is single-threaded cooperative so one
	// shared buffer is safe (§5).
	printBuf strings.Builder
}

// New builds a VM from already-linked modules. Modules must have been
// loaded (acsmod.Load) and linked (acslink.Link) by the caller.
func New(cfg Config, modules []*acsmod.Module) *VM {
	if cfg.TicDuration <= 0 {
		cfg.TicDuration = time.Second
	}
	if cfg.Diag == nil {
		cfg.Diag = diag.New(nil, false)
	}
	vm := &VM{cfg: cfg, Modules: modules}
	vm.queues = make([]*readyQueue, len(modules))
	vm.moduleIdx = make(map[*acsmod.Module]int, len(modules))
	for i := range modules {
		vm.queues[i] = newReadyQueue()
		vm.moduleIdx[modules[i]] = i
		vm.Scripts = append(vm.Scripts, modules[i].Scripts...)
	}
	return vm
}

// Enqueue places inst onto its owning module's ready queue (§4.4). It is
// used by Boot, by post-turn transitions, and by ACS_Execute re-enqueuing
// a suspended instance (§4.5 "Line specials").
func (vm *VM) Enqueue(inst *Instance) {
	idx, ok := vm.moduleIdx[inst.Module]
	if !ok {
		return
	}
	vm.queues[idx].Enqueue(inst)
}

// RegisterInstance adds inst to the VM's live-instance list. Boot is the
// only caller that creates and registers instances; ACS_Execute only
// resumes suspended ones (ResumeSuspended).
func (vm *VM) RegisterInstance(inst *Instance) {
	vm.Live = append(vm.Live, inst)
}

// UnregisterInstance removes inst from the live-instance list; terminate
// calls this once an instance's waiters have been re-enqueued.
func (vm *VM) UnregisterInstance(inst *Instance) {
	for i, live := range vm.Live {
		if live == inst {
			vm.Live = append(vm.Live[:i], vm.Live[i+1:]...)
			return
		}
	}
}

// ActiveInstanceByNumber returns the live, non-terminated instance of
// script number, other than exclude, or nil if none exists (§4.5
// "Script-wait": "SCRIPTWAIT on an active target" is the only form of this
// opcode that suspends the caller).
func (vm *VM) ActiveInstanceByNumber(number int32, exclude *Instance) *Instance {
	for _, inst := range vm.Live {
		if inst == exclude || inst.State == api.StateTerminated {
			continue
		}
		if inst.Script.Number == number {
			return inst
		}
	}
	return nil
}

// ResumeSuspended finds a suspended instance of script number, removes it
// from the VM-wide suspended list, and re-enqueues it (§4.5 "ACS_Execute
// ... looks up a suspended instance by number and, if found, re-enqueues
// it"). It reports whether such an instance was found.
func (vm *VM) ResumeSuspended(number int32) bool {
	for i, inst := range vm.Suspended {
		if inst.Script.Number == number {
			vm.Suspended = append(vm.Suspended[:i], vm.Suspended[i+1:]...)
			inst.State = api.StateRunning
			inst.ResumeTime = vm.Tics
			vm.Enqueue(inst)
			return true
		}
	}
	return false
}

// Diag returns the VM's diagnostics stream.
func (vm *VM) Diag() *diag.Stream { return vm.cfg.Diag }

// ScriptByNumber searches every loaded module, in load order, for a script
// descriptor with the given number.
func (vm *VM) ScriptByNumber(number int32) *acsmod.Script {
	for _, s := range vm.Scripts {
		if s.Number == number {
			return s
		}
	}
	return nil
}
