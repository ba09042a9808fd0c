package acslink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/internal/acsmod"
)

func TestLink_VariableAliasing(t *testing.T) {
	lib := acsmod.NewModule("LIB", nil)
	lib.MapVars[2].Value = 13
	lib.ExportNames[2] = "X"

	main := acsmod.NewModule("MAIN", nil)
	main.Imports = []*acsmod.Import{{Name: "LIB"}}
	main.MapVars[0].Imported = true
	main.MapVars[0].ImportName = "X"

	require.NoError(t, Link([]*acsmod.Module{lib, main}))

	require.Equal(t, int32(13), main.MapVarEffective(0).Value)

	// Writing through the importer is visible through the exporter: same storage.
	main.MapVarEffective(0).Value = 99
	require.Equal(t, int32(99), lib.MapVarEffective(2).Value)
}

func TestLink_MissingModule(t *testing.T) {
	main := acsmod.NewModule("MAIN", nil)
	main.Imports = []*acsmod.Import{{Name: "NOPE"}}
	err := Link([]*acsmod.Module{main})
	require.Error(t, err)
}

func TestLink_MissingVariable(t *testing.T) {
	lib := acsmod.NewModule("LIB", nil)
	main := acsmod.NewModule("MAIN", nil)
	main.Imports = []*acsmod.Import{{Name: "LIB"}}
	main.MapVars[0].Imported = true
	main.MapVars[0].ImportName = "X"

	err := Link([]*acsmod.Module{lib, main})
	require.Error(t, err)
}

func TestLink_Functions(t *testing.T) {
	lib := acsmod.NewModule("LIB", nil)
	exported := &acsmod.Function{Module: lib, Name: "DoThing", CodeStart: 10}
	lib.Functions.Owned = []*acsmod.Function{exported}

	main := acsmod.NewModule("MAIN", nil)
	main.Imports = []*acsmod.Import{{Name: "LIB"}}
	imported := &acsmod.Function{Module: main, Name: "DoThing", Imported: true}
	main.Functions.Owned = []*acsmod.Function{imported}

	require.NoError(t, Link([]*acsmod.Module{lib, main}))
	require.Same(t, exported, main.FunctionEffective(0))
}
