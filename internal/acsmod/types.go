// Package acsmod implements the Module Loader (spec §4.2) and the shared,
// object-independent data model of §3: Module, Script, Function, and their
// supporting tables. internal/acslink resolves imports across the Modules
// this package produces; internal/engine executes them.
package acsmod

import (
	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsobj"
)

// MaxMapVars is the fixed number of map-variable slots per module (§3).
const MaxMapVars = 128

// DefaultScalarVars is the default scalar-var count a script descriptor
// gets absent an SVCT override (§3 Script).
const DefaultScalarVars = 20

// LocalArrayEntry is one row of a script's or function's local-array table:
// the running start offset within the owner's array-element buffer, and the
// element count, as built from SARY/FARY records (§4.2).
type LocalArrayEntry struct {
	Start int32
	Size  int32
}

// MapVarKind distinguishes how a map-var slot is used, fixed at load time
// by whether an ARAY record claimed it (§3 invariants: "Each map-var slot
// is either scalar-used or array-used, determined at load by ARAY").
type MapVarKind byte

const (
	MapVarScalar MapVarKind = iota
	MapVarArray
)

// MapVar is one of a module's MaxMapVars slots.
type MapVar struct {
	Kind  MapVarKind
	Value int32   // valid when Kind == MapVarScalar
	Array []int32 // valid when Kind == MapVarArray; fixed length set by ARAY

	// Imported is set by MIMP/AIMP: this slot aliases a same-named slot
	// exported (via MEXP) by one of the module's imported modules. The
	// linker resolves ImportName to a concrete slot and records it in the
	// owning Module's MapVarRef table; MapVar itself never holds a pointer
	// to avoid a loader/linker ordering dependency.
	Imported      bool
	ImportName    string
	ImportIsArray bool
}

// Function is one entry of a module's function table (§3 Function).
type Function struct {
	Module     *Module
	Name       string
	NumParams  int32
	LocalCount int32 // scalar locals beyond the leading NumParams (the FUNC chunk's "size" field)
	HasReturn  bool
	CodeStart  int32 // 0 means Imported
	Imported   bool

	ArrayTable     []LocalArrayEntry
	TotalArraySize int32
}

// FunctionTable holds a module's function entries plus the parallel
// "linked entries" array the linker populates: Linked[i] points at Owned[i]
// itself for local functions, or at the resolved exporter's *Function for
// imported ones (§4.3).
type FunctionTable struct {
	Owned  []*Function
	Linked []*Function
}

// Script is a static script descriptor (§3 "Script (static descriptor)").
type Script struct {
	Module *Module

	Name   string // optional, from SNAM
	Number int32
	Type   api.ScriptType
	Flags  api.ScriptFlag

	CodeStart int32
	NumVars   int32 // defaults to DefaultScalarVars, overridable by SVCT

	ArrayTable     []LocalArrayEntry
	TotalArraySize int32
}

// Import is one entry of a module's LOAD chunk, resolved by the linker.
type Import struct {
	Name   string
	Module *Module // nil until resolved by acslink
}

// Module is a loaded object plus its derived tables (§3 Module).
type Module struct {
	Name   string
	Object *acsobj.Object

	Imports []*Import
	Scripts []*Script
	Strings []string

	MapVars [MaxMapVars]MapVar
	// MapVarRef is the indirection table (§3 Module: "a parallel
	// indirection table remapping imported slots to the exporter's slot").
	// It is populated during load to self-reference (&MapVars[i]) and
	// overwritten by the linker for imported slots.
	MapVarRef [MaxMapVars]*MapVar

	// ExportNames maps a map-var slot index to the name other modules may
	// import it by (populated from MEXP).
	ExportNames map[int32]string

	Functions *FunctionTable

	// usedMapVars is never updated or read.
	usedMapVars int
}

// NewModule returns a Module with its indirection table self-referencing
// and its function table initialized, ready for the loader's two passes.
func NewModule(name string, obj *acsobj.Object) *Module {
	m := &Module{
		Name:        name,
		Object:      obj,
		ExportNames: map[int32]string{},
		Functions:   &FunctionTable{},
	}
	for i := range m.MapVars {
		m.MapVarRef[i] = &m.MapVars[i]
	}
	return m
}

// ScriptByNumber returns the script descriptor with the given number, or
// nil if none matches.
func (m *Module) ScriptByNumber(number int32) *Script {
	for _, s := range m.Scripts {
		if s.Number == number {
			return s
		}
	}
	return nil
}

// MapVarEffective returns the effective storage for map-var slot i, going
// through the indirection table (§4.3: "After linking, reads of
// map_vars[i] go through the indirection table to the effective slot").
func (m *Module) MapVarEffective(i int) *MapVar {
	return m.MapVarRef[i]
}

// FunctionEffective returns the effective function for local index i,
// going through the linked-entries table (§4.3).
func (m *Module) FunctionEffective(i int) *Function {
	if i < 0 || i >= len(m.Functions.Linked) {
		return nil
	}
	return m.Functions.Linked[i]
}
