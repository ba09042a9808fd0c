package engine

import (
	"time"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/diag"
)

// maxInstructionsPerTurn bounds a single turn so that bytecode with no
// suspension point cannot hang the scheduler forever. Exceeding it lands
// on the §9 open question (b) "SCRIPTSTATE_RUNNING" TODO path below.
const maxInstructionsPerTurn = 1_000_000

// Boot starts every open-type script in every module, in module load
// order and script list order (§4.4 "Boot", §5 "OPEN scripts from all
// modules are enqueued before any execution begins").
func Boot(vm *VM) {
	for _, m := range vm.Modules {
		for _, s := range m.Scripts {
			if s.Type != api.ScriptTypeOpen {
				continue
			}
			inst := NewInstance(s)
			vm.ActiveScripts++
			vm.RegisterInstance(inst)
			vm.Diag().Printf(diag.LevelDebug, "starting script %d", s.Number)
			vm.Enqueue(inst)
		}
	}
}

// Run drives the scheduler's run loop (§4.4 "Run loop") until every
// module's ready queue is empty.
func Run(vm *VM) error {
	for {
		anyReady := false
		for _, q := range vm.queues {
			if !q.Empty() {
				anyReady = true
				break
			}
		}
		if !anyReady {
			return nil
		}

		for i := range vm.Modules {
			q := vm.queues[i]
			for q.HeadDue(vm.Tics) {
				inst := q.Dequeue()
				if err := runTurn(vm, inst); err != nil {
					return err
				}
			}
		}

		nextTic(vm)
	}
}

// nextTic sleeps one tic's worth of wall time and advances the tic
// counter iff active scripts remain (§4.4 "next_tic()").
func nextTic(vm *VM) {
	if vm.ActiveScripts <= 0 {
		return
	}
	time.Sleep(vm.cfg.TicDuration)
	vm.Tics++
}

// runTurn executes one instance to completion-of-turn and applies the
// post-turn transition matching its resulting state (§4.4 "Post-turn
// transitions").
func runTurn(vm *VM, inst *Instance) error {
	t := newTurn(vm, inst)
	if err := t.run(); err != nil {
		return err
	}
	inst.IP = t.ip

	switch inst.State {
	case api.StateWaiting:
		// Already linked onto the target's waiter chain; nothing to do.

	case api.StateTerminated:
		terminate(vm, inst)

	case api.StateSuspended:
		vm.Suspended = append(vm.Suspended, inst)

	case api.StateDelayed:
		vm.Enqueue(inst)

	case api.StateRunning:
		// §9 open question (b): the source calls this "tic limit exceeded"
		// but never implements it. Policy here: terminate.
		vm.Diag().Printf(diag.LevelWarn, "script %d exceeded its turn budget, terminating", inst.Script.Number)
		inst.State = api.StateTerminated
		terminate(vm, inst)
	}
	return nil
}

// terminate releases a finished instance and re-enqueues anything that was
// waiting on it, in the order they were added (§4.4 "terminated").
func terminate(vm *VM, inst *Instance) {
	vm.Diag().Printf(diag.LevelDebug, "script %d finished running", inst.Script.Number)
	for _, waiter := range inst.Waiters {
		waiter.State = api.StateRunning
		waiter.ResumeTime = vm.Tics
		vm.Enqueue(waiter)
	}
	inst.Waiters = nil
	vm.ActiveScripts--
	vm.UnregisterInstance(inst)
}
