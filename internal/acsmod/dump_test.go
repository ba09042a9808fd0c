package acsmod

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/diag"
)

func TestDumpModule_PrintsChunksScriptsAndFunctions(t *testing.T) {
	obj := buildObject(t, func(cb *chunkBuilder) {
		cb.addChunk("SPTR", append(append(i16(7), byte(api.ScriptTypeOpen), 0), i32(0)...))
		rec := append([]byte{1, 0, 1, 0}, i32(10)...)
		cb.addChunk("FUNC", rec)
	})
	m, err := Load(obj, "MAIN", diag.New(nil, false))
	require.NoError(t, err)

	var buf bytes.Buffer
	DumpModule(m, diag.New(&buf, true))

	out := buf.String()
	require.Contains(t, out, "chunks:")
	require.Contains(t, out, "SPTR at")
	require.Contains(t, out, "scripts (1):")
	require.Contains(t, out, "#7")
	require.Contains(t, out, "functions (1):")
}
