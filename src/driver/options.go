// Package driver implements franz's command-line entry point: flag parsing, diagnostic
// logging, target-triple selection and the assemble/link/exec pipeline (SPEC_FULL.md §2's
// "Driver" row). It generalizes the teacher compiler's util package, which bundled the same
// concerns (Options, ParseArgs, target fields, a channel-buffered Writer) into one file for a
// single-target static-arithmetic-language compiler; franz splits them into one file per
// concern because the flag set and pipeline have both grown (LLVM-only target selection,
// type-checking, scoping mode, parallel lowering, final cc/clang link).
package driver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Scoping selects how src/scope's activation frames pick their parent (spec.md §9 Design
// Note: dynamic scoping is kept but deprecated).
type Scoping int

const (
	Lexical Scoping = iota
	Dynamic
)

func (s Scoping) String() string {
	if s == Dynamic {
		return "dynamic"
	}
	return "lexical"
}

// Options holds every flag franz's CLI accepts (SPEC_FULL.md §6.1), generalizing the
// teacher's util.Options.
type Options struct {
	Src         string  // Path to source file; empty reads stdin.
	Out         string  // Path to output binary.
	Threads     int     // -t: parsed and range-checked; Run does not pass it to src/lower.
	Debug       bool    // -d: dump the debug IR shadow tree (src/lower/debugir).
	AssertTypes bool    // --assert-types: run src/typecheck before lowering.
	NoTCO       bool    // --no-tco: disable tail-call optimization in src/lower.
	Scoping     Scoping // --scoping=lexical|dynamic, or FRANZ_SCOPING.
}

const maxThreads = 64
const appVersion = "franz compiler 1.0"

// ParseArgs parses os.Args, generalizing the teacher's hand-rolled switch-based util.ParseArgs
// into franz's flag set. No third-party CLI framework is wired in; the pack's teacher parses
// os.Args with a bare switch statement and no other example repo carries a flag library, so
// this stays on the same hand-rolled style rather than reaching for one with nothing grounding
// it in the corpus (see DESIGN.md).
func ParseArgs(args []string) (Options, error) {
	opt := Options{Threads: 1}
	if s := os.Getenv("FRANZ_SCOPING"); s != "" {
		sc, err := parseScoping(s)
		if err != nil {
			return opt, err
		}
		opt.Scoping = sc
	}
	if len(args) == 0 {
		return opt, nil
	}
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-d", "--debug":
			opt.Debug = true
		case "--assert-types":
			opt.AssertTypes = true
		case "--no-tco":
			opt.NoTCO = true
		case "-o":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Out = args[i1+1]
			i1++
		case "-t", "--threads":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			t, err := strconv.Atoi(args[i1+1])
			if err != nil {
				return opt, fmt.Errorf("expected integer thread count, got: %s", args[i1+1])
			}
			if t < 1 || t > maxThreads {
				return opt, fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
			}
			opt.Threads = t
			i1++
		case "--scoping":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			sc, err := parseScoping(args[i1+1])
			if err != nil {
				return opt, err
			}
			opt.Scoping = sc
			i1++
		default:
			if strings.HasPrefix(args[i1], "--scoping=") {
				sc, err := parseScoping(strings.TrimPrefix(args[i1], "--scoping="))
				if err != nil {
					return opt, err
				}
				opt.Scoping = sc
				continue
			}
			if strings.HasPrefix(args[i1], "-") {
				// spec.md §6.1: unknown flags are accepted and ignored.
				continue
			}
			opt.Src = args[i1]
		}
	}
	return opt, nil
}

func parseScoping(s string) (Scoping, error) {
	switch s {
	case "lexical":
		return Lexical, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return Lexical, fmt.Errorf("unexpected scoping identifier: %s", s)
	}
}

func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath and name of the output binary.")
	_, _ = fmt.Fprintf(w, "-t\tThread count, range [1, %d]. Accepted but not used: lowering runs one goroutine per function.\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-d\tDump the debug IR shadow tree for every lowered function.")
	_, _ = fmt.Fprintln(w, "--assert-types\tRun the pre-flight arity/tag checker before lowering.")
	_, _ = fmt.Fprintln(w, "--no-tco\tDisable tail-call optimization.")
	_, _ = fmt.Fprintln(w, "--scoping\tlexical (default) or dynamic. Also read from FRANZ_SCOPING.")
	_ = w.Flush()
}
