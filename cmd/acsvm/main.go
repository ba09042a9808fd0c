// Command acsvm loads one or more ACS object files, links them, and runs
// the scheduler to completion (§6 CLI contract).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/acsvm/acsvm"
	"github.com/acsvm/acsvm/internal/acsmod"
	"github.com/acsvm/acsvm/internal/acsobj"
	"github.com/acsvm/acsvm/internal/diag"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// namedModuleFlag collects repeated "-n <name> <path>" pairs. Each -n
// consumes its own value plus the following positional path, so it is
// parsed by hand in doMain rather than through the flag package's
// single-value Var interface.
type namedModuleFlag struct {
	name string
	path string
}

const usage = `usage: acsvm [-v] [-dump] [-tic duration] [-n name path]... <object-file>

  -n name path   load an additional module under the given import name,
                 repeatable
  -v             enable verbose (debug-level) diagnostics
  -dump          load and print the module's chunk/script/function tables,
                 then exit without running the scheduler
  -tic duration  wall-clock time between scheduler tics (default 1s)
  <object-file>  the unnamed main module
`

func doMain(stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("acsvm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	verbose := fs.Bool("v", false, "enable verbose diagnostics")
	dump := fs.Bool("dump", false, "print loader tables and exit")
	tic := fs.Duration("tic", time.Second, "scheduler tic duration")

	var named []namedModuleFlag
	var args []string

	// flag.FlagSet does not support a repeatable two-value flag, so -n is
	// pulled out of the argument list before the rest is handed to fs.Parse.
	rest := os.Args[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] != "-n" && rest[i] != "--n" {
			args = append(args, rest[i])
			continue
		}
		if i+2 >= len(rest) {
			fmt.Fprintf(stderr, "acsvm: -n requires a name and a path\n")
			fs.Usage()
			return 1
		}
		named = append(named, namedModuleFlag{name: rest[i+1], path: rest[i+2]})
		i += 2
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	path := fs.Arg(0)
	if path == "" && len(named) == 0 {
		fmt.Fprintf(stderr, "acsvm: no object file given\n")
		fs.Usage()
		return 1
	}

	stream := diag.New(stdout, *verbose)

	if *dump {
		return doDump(stdout, stream, path, named)
	}

	cfg := acsvm.NewVMConfig().WithVerbose(*verbose).WithTicDuration(*tic).WithDiagWriter(stdout)
	if path != "" {
		cfg = cfg.WithModule("", path)
	}
	for _, nm := range named {
		cfg = cfg.WithModule(nm.name, nm.path)
	}

	vm, err := acsvm.NewVM(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "fatal error: %v\n", err)
		return 2
	}
	if err := vm.Run(); err != nil {
		fmt.Fprintf(stderr, "fatal error: %v\n", err)
		return 2
	}
	return 0
}

// doDump implements -dump: the Object Reader and Module Loader run, the
// Linker and scheduler never do (§12 "view.c → acsmod.DumpModule").
func doDump(stdout io.Writer, stream *diag.Stream, path string, named []namedModuleFlag) int {
	dumpOne := func(name, p string) error {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %q: %w", p, err)
		}
		obj, err := acsobj.Read(data)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", p, err)
		}
		m, err := acsmod.Load(obj, name, stream)
		if err != nil {
			return fmt.Errorf("loading %q: %w", p, err)
		}
		acsmod.DumpModule(m, stream)
		return nil
	}

	if path != "" {
		if err := dumpOne("", path); err != nil {
			fmt.Fprintf(stdout, "fatal error: %v\n", err)
			return 2
		}
	}
	for _, nm := range named {
		if err := dumpOne(nm.name, nm.path); err != nil {
			fmt.Fprintf(stdout, "fatal error: %v\n", err)
			return 2
		}
	}
	return 0
}
