// Package acslink implements the cross-module Linker (spec §4.3): it
// resolves each module's LOAD-chunk imports to the modules that carry
// those names, then resolves imported map-var slots and imported function
// entries against those modules' exports, aliasing storage in place.
package acslink

import (
	"fmt"

	"github.com/acsvm/acsvm/internal/acsmod"
)

// Link resolves imports across modules, which must already be fully loaded
// (acsmod.Load for each). Modules are linked in the order given; a module
// may import from any other module in the set regardless of order.
func Link(modules []*acsmod.Module) error {
	byName := make(map[string]*acsmod.Module, len(modules))
	for _, m := range modules {
		if m.Name != "" {
			byName[m.Name] = m
		}
	}

	for _, m := range modules {
		if err := linkImports(m, byName); err != nil {
			return err
		}
	}
	for _, m := range modules {
		if err := linkVariables(m); err != nil {
			return err
		}
	}
	for _, m := range modules {
		if err := linkFunctions(m); err != nil {
			return err
		}
	}
	return nil
}

func linkImports(m *acsmod.Module, byName map[string]*acsmod.Module) error {
	for _, imp := range m.Imports {
		target, ok := byName[imp.Name]
		if !ok {
			return fmt.Errorf("acslink: module %q imports unknown module %q", m.Name, imp.Name)
		}
		imp.Module = target
	}
	return nil
}

// findExportedVariable searches m's imported modules, in import order, for
// a map-var slot exported (via MEXP) under the given name. First match
// wins (§4.3 step 2).
func findExportedVariable(m *acsmod.Module, name string) (*acsmod.Module, int32, bool) {
	for _, imp := range m.Imports {
		exporter := imp.Module
		for idx, exportedName := range exporter.ExportNames {
			if exportedName == name {
				return exporter, idx, true
			}
		}
	}
	return nil, 0, false
}

func linkVariables(m *acsmod.Module) error {
	for i := range m.MapVars {
		mv := &m.MapVars[i]
		if !mv.Imported {
			continue
		}
		exporter, idx, ok := findExportedVariable(m, mv.ImportName)
		if !ok {
			return fmt.Errorf("acslink: module %q: imported variable %q not exported by any imported module", m.Name, mv.ImportName)
		}
		m.MapVarRef[i] = exporter.MapVarEffective(int(idx))
	}
	return nil
}

// findExportedFunction searches m's imported modules for a non-imported
// function entry with the given name.
func findExportedFunction(m *acsmod.Module, name string) (*acsmod.Function, bool) {
	for _, imp := range m.Imports {
		exporter := imp.Module
		for _, fn := range exporter.Functions.Owned {
			if !fn.Imported && fn.Name == name && fn.Name != "" {
				return fn, true
			}
		}
	}
	return nil, false
}

func linkFunctions(m *acsmod.Module) error {
	owned := m.Functions.Owned
	linked := make([]*acsmod.Function, len(owned))
	for i, fn := range owned {
		if !fn.Imported {
			linked[i] = fn
			continue
		}
		exported, ok := findExportedFunction(m, fn.Name)
		if !ok {
			return fmt.Errorf("acslink: module %q: imported function %q not exported by any imported module", m.Name, fn.Name)
		}
		linked[i] = exported
	}
	m.Functions.Linked = linked
	return nil
}
