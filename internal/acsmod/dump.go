package acsmod

import (
	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsobj"
	"github.com/acsvm/acsvm/internal/diag"
)

// DumpModule prints m's chunk directory, script table, and function table
// to stream, loader-only: no instance is created and no bytecode runs
// (§12 "view.c → acsmod.DumpModule / -dump CLI flag").
func DumpModule(m *Module, stream *diag.Stream) {
	stream.Printf(diag.LevelDebug, "module %q: format=%v size=%d", m.Name, m.Object.Format, m.Object.Size())

	stream.Printf(diag.LevelDebug, "chunks:")
	_ = m.Object.Chunks(func(c acsobj.Chunk) error {
		stream.Printf(diag.LevelDebug, "  %s at %d (%d bytes)", c.Tag, c.Offset, len(c.Payload))
		return nil
	})

	stream.Printf(diag.LevelDebug, "scripts (%d):", len(m.Scripts))
	for _, s := range m.Scripts {
		stream.Printf(diag.LevelDebug, "  #%d %q type=%s flags=%#x code=%d vars=%d arraysize=%d",
			s.Number, s.Name, api.ScriptTypeName(s.Type), uint16(s.Flags), s.CodeStart, s.NumVars, s.TotalArraySize)
	}

	stream.Printf(diag.LevelDebug, "functions (%d):", len(m.Functions.Owned))
	for i, fn := range m.Functions.Owned {
		stream.Printf(diag.LevelDebug, "  [%d] %q params=%d locals=%d return=%v code=%d imported=%v",
			i, fn.Name, fn.NumParams, fn.LocalCount, fn.HasReturn, fn.CodeStart, fn.Imported)
	}

	stream.Printf(diag.LevelDebug, "imports (%d):", len(m.Imports))
	for _, imp := range m.Imports {
		stream.Printf(diag.LevelDebug, "  %q", imp.Name)
	}

	if len(m.ExportNames) > 0 {
		stream.Printf(diag.LevelDebug, "exports (%d):", len(m.ExportNames))
		for idx, name := range m.ExportNames {
			stream.Printf(diag.LevelDebug, "  map-var[%d] = %q", idx, name)
		}
	}

	stream.Printf(diag.LevelDebug, "strings (%d):", len(m.Strings))
	for i, s := range m.Strings {
		stream.Printf(diag.LevelDebug, "  [%d] %q", i, s)
	}
}
