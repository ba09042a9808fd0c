package pcode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/internal/bytecursor"
)

func TestDecode_SmallCode_SingleByte(t *testing.T) {
	cur := bytecursor.New([]byte{239})
	op, err := Decode(cur, true)
	require.NoError(t, err)
	require.Equal(t, Op(239), op)
	require.Equal(t, 1, cur.Pos())
}

func TestDecode_SmallCode_TwoByte(t *testing.T) {
	cur := bytecursor.New([]byte{240, 0})
	op, err := Decode(cur, true)
	require.NoError(t, err)
	require.Equal(t, Op(240), op)
	require.Equal(t, 2, cur.Pos())
}

func TestDecode_FixedCode(t *testing.T) {
	cur := bytecursor.New([]byte{5, 0, 0, 0})
	op, err := Decode(cur, false)
	require.NoError(t, err)
	require.Equal(t, Op(5), op)
	require.Equal(t, 4, cur.Pos())
}

func TestLineSpecialName(t *testing.T) {
	require.Equal(t, "Acs_Execute", LineSpecialName(80))
	require.Equal(t, "?", LineSpecialName(999999))
}

func TestExtFuncName(t *testing.T) {
	require.Equal(t, "GetLineUDMFInt", ExtFuncName(1))
	require.Equal(t, "GetTeamScore", ExtFuncName(19620))
	require.Equal(t, "?", ExtFuncName(-1))
}

func TestOp_Valid(t *testing.T) {
	require.True(t, NOP.Valid())
	require.True(t, SCRIPTWAITDIRECT.Valid())
	require.False(t, Op(99999).Valid())
}
