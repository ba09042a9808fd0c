// Package acsvm is the public entry point: load one or more object files,
// link them, boot every open-type script, and run the scheduler to
// completion (§3 VM, §4.4 Boot/Run loop).
package acsvm

import (
	"fmt"
	"os"

	"github.com/acsvm/acsvm/internal/acslink"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/acsobj"
	"github.com/acsvm/acsvm/internal/engine"
)

// VM is the public handle to a loaded, linked, scheduler-ready runtime.
type VM struct {
	eng *engine.VM
}

// NewVM reads every module named in cfg (§6 "-n <name> <path>", a
// positional path for the unnamed main module), loads and links them, and
// boots every open-type script (§4.4 "Boot"). The returned VM is ready for
// Run.
func NewVM(cfg *VMConfig) (*VM, error) {
	if len(cfg.modules) == 0 {
		return nil, fmt.Errorf("acsvm: no module configured")
	}
	stream := cfg.diagStream()

	modules := make([]*acsmod.Module, 0, len(cfg.modules))
	for _, nm := range cfg.modules {
		data, err := os.ReadFile(nm.path)
		if err != nil {
			return nil, fmt.Errorf("acsvm: reading %q: %w", nm.path, err)
		}
		obj, err := acsobj.Read(data)
		if err != nil {
			return nil, fmt.Errorf("acsvm: parsing %q: %w", nm.path, err)
		}
		m, err := acsmod.Load(obj, nm.name, stream)
		if err != nil {
			return nil, fmt.Errorf("acsvm: loading %q: %w", nm.path, err)
		}
		modules = append(modules, m)
	}

	if err := acslink.Link(modules); err != nil {
		return nil, fmt.Errorf("acsvm: %w", err)
	}

	eng := engine.New(engine.Config{TicDuration: cfg.ticDuration, Diag: stream}, modules)
	engine.Boot(eng)
	return &VM{eng: eng}, nil
}

// Run drives the scheduler until every module's ready queue is empty, or a
// fatal VM error occurs (§4.4 "Run loop", §7 "Fatal VM errors").
func (vm *VM) Run() error {
	return engine.Run(vm.eng)
}

// ActiveScripts reports how many script instances have not yet terminated.
func (vm *VM) ActiveScripts() int {
	return vm.eng.ActiveScripts
}
