// Package capability implements franz's capability scope (GLOSSARY: "Capability scope"):
// the pre-populated set of NATIVE_FUNCTION bindings a program's top-level scope is seeded
// with, gating which host-level operations (I/O, process control) a given invocation of the
// interpreter/compiled binary is allowed to use. This is franz's security sandbox
// (SPEC_FULL.md §4.13): a program compiled or interpreted with a narrower capability set
// simply never has the corresponding name bound, so any attempt to call it fails the same
// way calling an undefined identifier does (src/scope's NotFoundError), with no separate
// permission-check code path to bypass.
package capability

import (
	"fmt"

	"franz/src/scope"
	"franz/src/value"
)

// Name identifies one grantable capability.
type Name string

const (
	IO      Name = "io"      // println, read_line
	FS      Name = "fs"      // file read/write primitives
	Process Name = "process" // exit
)

// Set is a collection of granted capability names; callers may add names to a Set they own
// (src/interp's use_with builds its grant that way, starting from None).
type Set map[Name]bool

// All grants every known capability; src/interp seeds a program's top level with it.
func All() Set {
	return Set{IO: true, FS: true, Process: true}
}

// None grants nothing — the strictest sandbox.
func None() Set {
	return Set{}
}

// registrar builds the NATIVE_FUNCTION bindings gated by a single capability.
type registrar func(s *scope.Scope)

var registrars = map[Name]registrar{
	IO: func(s *scope.Scope) {
		s.Define("println", nativeFn(nativePrintln), false)
		s.Define("read_line", nativeFn(nativeReadLine), false)
	},
	FS: func(s *scope.Scope) {
		s.Define("read_file", nativeFn(nativeReadFile), false)
		s.Define("write_file", nativeFn(nativeWriteFile), false)
	},
	Process: func(s *scope.Scope) {
		s.Define("exit", nativeFn(nativeExit), false)
	},
}

// Populate seeds root with NATIVE_FUNCTION bindings for every capability granted in set,
// leaving every other capability's names entirely unbound.
func Populate(root *scope.Scope, set Set) {
	for name, grant := range set {
		if !grant {
			continue
		}
		if reg, ok := registrars[name]; ok {
			reg(root)
		}
	}
}

func nativeFn(fn value.NativeFunc) *value.Value {
	return value.New(value.NATIVE_FUNCTION, fn, 1)
}

func nativePrintln(args []*value.Value) (*value.Value, error) {
	parts := make([]interface{}, len(args))
	for i1, a := range args {
		parts[i1] = a.String()
	}
	fmt.Println(parts...)
	return value.Void(), nil
}

func nativeReadLine(args []*value.Value) (*value.Value, error) {
	var line string
	if _, err := fmt.Scanln(&line); err != nil {
		return nil, err
	}
	return value.Str(line), nil
}

func nativeReadFile(args []*value.Value) (*value.Value, error) {
	if len(args) != 1 || args[0].Tag != value.STRING {
		return nil, fmt.Errorf("read_file expects a single string path argument")
	}
	return nil, fmt.Errorf("read_file: not implemented in this build")
}

func nativeWriteFile(args []*value.Value) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("write_file expects (path, contents)")
	}
	return nil, fmt.Errorf("write_file: not implemented in this build")
}

func nativeExit(args []*value.Value) (*value.Value, error) {
	code := int64(0)
	if len(args) == 1 && args[0].Tag == value.INT {
		code = args[0].Payload.(int64)
	}
	return nil, &ExitRequest{Code: int(code)}
}

// ExitRequest is returned (as an error) by the exit native function; the driver's top-level
// evaluation loop recognizes it specially and exits the process with Code rather than
// treating it as a program error.
type ExitRequest struct{ Code int }

func (e *ExitRequest) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }
