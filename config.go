package acsvm

import (
	"io"
	"time"

	"github.com/acsvm/acsvm/internal/diag"
)

// namedModule is one -n <name> <path> pairing, or a positional path with an
// empty name for the unnamed "main" module (§6 CLI contract).
type namedModule struct {
	name string
	path string
}

// VMConfig configures a VM before it loads any object file (§10.3). Like
// the teacher's RuntimeConfig, it is immutable: every With* method clones
// before mutating, so a VMConfig can be shared and reused across VMs.
type VMConfig struct {
	ticDuration time.Duration
	verbose     bool
	out         io.Writer
	modules     []namedModule
}

// vmConfigDefaults is cloned by NewVMConfig to avoid copy/pasting the wrong
// defaults (modeled on config.go's engineLessConfig).
var vmConfigDefaults = &VMConfig{
	ticDuration: time.Second, // §9 open question (a): configurable, not hardcoded
	out:         io.Discard,
}

// NewVMConfig returns a VMConfig with default tic duration (1s) and
// diagnostics disabled.
func NewVMConfig() *VMConfig {
	return vmConfigDefaults.clone()
}

func (c *VMConfig) clone() *VMConfig {
	ret := *c
	ret.modules = append([]namedModule(nil), c.modules...)
	return &ret
}

// WithTicDuration overrides the wall-clock sleep between scheduler tics
// (§4.4 "next_tic()"). Answers Open Question (a).
func (c *VMConfig) WithTicDuration(d time.Duration) *VMConfig {
	ret := c.clone()
	ret.ticDuration = d
	return ret
}

// WithVerbose enables LevelDebug diagnostic lines, otherwise suppressed
// (§6).
func (c *VMConfig) WithVerbose(verbose bool) *VMConfig {
	ret := c.clone()
	ret.verbose = verbose
	return ret
}

// WithDiagWriter sets where diagnostic lines are written. Defaults to
// io.Discard so library users opt in explicitly.
func (c *VMConfig) WithDiagWriter(w io.Writer) *VMConfig {
	ret := c.clone()
	ret.out = w
	return ret
}

// WithModule registers an object file to load, under the given import
// name, or as the unnamed main module when name == "" (§6 "a positional
// object file as unnamed main module", "-n <name> <path> repeatable").
func (c *VMConfig) WithModule(name, path string) *VMConfig {
	ret := c.clone()
	ret.modules = append(ret.modules, namedModule{name: name, path: path})
	return ret
}

func (c *VMConfig) diagStream() *diag.Stream {
	return diag.New(c.out, c.verbose)
}
