package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStream_Levels(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, false)

	s.Printf(LevelDebug, "hidden")
	require.Empty(t, buf.String())

	s.Printf(LevelWarn, "bad flag %d", 3)
	require.Equal(t, "warning: bad flag 3\n", buf.String())
}

func TestStream_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, true)
	s.Printf(LevelDebug, "starting script %d", 1)
	require.Equal(t, "[dbg] starting script 1\n", buf.String())
}

func TestStream_MultiPart(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, false)

	more := s.MultiPart(LevelError, "partial")
	more(" continued")
	s.Done()

	require.Equal(t, "error: partial continued\n", buf.String())
}

func TestStream_FatalPrefix(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, false)
	s.Printf(LevelFatal, "division by zero in script %d", 7)
	require.Contains(t, buf.String(), "fatal error: division by zero in script 7")
}
