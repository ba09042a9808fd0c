// Package diag is the diagnostics stream the VM writes to standard output.
// It is kept independent of the execution packages (acsmod, acslink,
// engine) so that none of them need to import each other just to log.
package diag

import (
	"fmt"
	"io"
)

// Level controls the prefix a line is written with, and whether it is
// suppressed when the stream is not verbose.
type Level int

const (
	// LevelDebug lines are prefixed "[dbg] " and only emitted when the
	// stream is verbose.
	LevelDebug Level = iota
	// LevelWarn lines are prefixed "warning: ".
	LevelWarn
	// LevelError lines are prefixed "error: "; the current instance is
	// terminated but the run loop continues.
	LevelError
	// LevelFatal lines are prefixed "fatal error: "; the run unwinds.
	LevelFatal
	// LevelInternal lines are prefixed "internal "; reserved for conditions
	// that indicate a bug in the VM itself rather than the loaded bytecode.
	LevelInternal
)

func (l Level) prefix() string {
	switch l {
	case LevelDebug:
		return "[dbg] "
	case LevelWarn:
		return "warning: "
	case LevelError:
		return "error: "
	case LevelFatal:
		return "fatal error: "
	case LevelInternal:
		return "internal "
	default:
		return ""
	}
}

// Stream is the sink every component writes diagnostics to.
type Stream struct {
	w       io.Writer
	verbose bool
	// open tracks whether the previous write on this stream was a MultiPart
	// call awaiting its continuation, so a later Printf can insert the
	// newline that call deferred.
	open bool
}

// New returns a Stream writing to w; a nil w discards every line. verbose
// gates LevelDebug output.
func New(w io.Writer, verbose bool) *Stream {
	if w == nil {
		w = io.Discard
	}
	return &Stream{w: w, verbose: verbose}
}

// Verbose reports whether debug-level lines are emitted.
func (s *Stream) Verbose() bool { return s.verbose }

func (s *Stream) closeOpenLine() {
	if s.open {
		fmt.Fprintln(s.w)
		s.open = false
	}
}

// Printf writes one complete, newline-terminated diagnostic line at the
// given level. LevelDebug lines are dropped unless the stream is verbose.
func (s *Stream) Printf(level Level, format string, args ...interface{}) {
	if level == LevelDebug && !s.verbose {
		return
	}
	s.closeOpenLine()
	fmt.Fprintf(s.w, level.prefix()+format+"\n", args...)
}

// More is returned by MultiPart to continue a line it left open.
type More func(format string, args ...interface{})

// MultiPart writes a diagnostic line without the trailing newline (§6:
// "MULTI_PART messages omit the trailing newline so a followup more call
// can continue the line") and returns a closure that appends to it. The
// line is terminated by Done, or by the next Printf/MultiPart/Print call
// on the stream.
func (s *Stream) MultiPart(level Level, format string, args ...interface{}) More {
	if level == LevelDebug && !s.verbose {
		return func(string, ...interface{}) {}
	}
	s.closeOpenLine()
	fmt.Fprintf(s.w, level.prefix()+format, args...)
	s.open = true
	return func(format string, args ...interface{}) {
		fmt.Fprintf(s.w, format, args...)
	}
}

// Done closes a line left open by MultiPart. Safe to call even if nothing
// is open.
func (s *Stream) Done() {
	s.closeOpenLine()
}

// Print writes text with no level prefix, followed by a newline — used by
// the print machinery (§4.5 "Print machinery") to flush the script's
// accumulated print buffer verbatim.
func (s *Stream) Print(text string) {
	s.closeOpenLine()
	fmt.Fprintln(s.w, text)
}
