package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
	"franz/src/lower"
	"franz/src/lower/debugir"
	"franz/src/runtimelib"
	"franz/src/typecheck"
)

// Run drives the full pipeline named in spec.md §6.3: parse, optional type-check, lower to
// LLVM IR, emit an object file, link it against the embedded runtime.c source via the system C
// compiler, then exec the resulting binary and return its exit status. This generalizes the
// teacher's run() in the old src/main.go, which called frontend.Parse, ir.Optimise,
// ir.ValidateTree and backend.GenerateAssembler in sequence; franz's backend is always LLVM
// (spec.md §6.3 routes object emission through LLVM's own target machine), so the hand-rolled
// ARM/RISC-V assembler stage the teacher's run() called has no equivalent step here.
func Run(opt Options, log *Logger) (int, error) {
	src, err := readSource(opt.Src)
	if err != nil {
		return 1, fmt.Errorf("could not read source code: %w", err)
	}

	root, err := ast.Parse(src)
	if err != nil {
		return 1, fmt.Errorf("parse error: %w", err)
	}

	if opt.AssertTypes {
		if errs := typecheck.Check(root); len(errs) > 0 {
			for _, e1 := range errs {
				fmt.Println(e1)
			}
			return 1, errors.New("type assertion failed")
		}
	}

	if opt.Debug {
		log.Println("debug IR:")
		log.Println(debugir.Dump(root))
	}

	eng := lower.NewEngine("franz_module")
	defer eng.Dispose()
	eng.NoTCO = opt.NoTCO
	if err := eng.Lower(root); err != nil {
		return 1, fmt.Errorf("lowering error: %w", err)
	}

	target, err := NewTarget()
	if err != nil {
		return 1, err
	}
	defer target.Dispose()

	eng.Module.SetTarget(target.Triple)
	eng.Module.SetDataLayout(target.Data.String())

	buf, err := target.Machine.EmitToMemoryBuffer(eng.Module, llvm.ObjectFile)
	if err != nil {
		return 1, fmt.Errorf("code generation error: %w", err)
	}

	workdir, err := os.MkdirTemp("", "franz-build-*")
	if err != nil {
		return 1, err
	}
	defer os.RemoveAll(workdir)

	objPath := filepath.Join(workdir, "module.o")
	if err := os.WriteFile(objPath, buf.Bytes(), 0644); err != nil {
		return 1, err
	}

	runtimePath := filepath.Join(workdir, "runtime.c")
	if err := runtimelib.Write(runtimePath); err != nil {
		return 1, err
	}

	binPath := opt.Out
	if binPath == "" {
		binPath = filepath.Join(workdir, outputBaseName(opt.Src))
	}

	if err := link(log, objPath, runtimePath, binPath); err != nil {
		return 1, fmt.Errorf("link error: %w", err)
	}

	return exec1(binPath)
}

// link shells out to the system C compiler to combine the lowered object file with the
// embedded runtime translation unit, generalizing the teacher's stub backend.GenerateAssembler
// (spec.md and SPEC_FULL.md §6.3 both name the system linker as an external collaborator).
func link(log *Logger, objPath, runtimePath, out string) error {
	cc := "cc"
	if _, err := exec.LookPath(cc); err != nil {
		cc = "clang"
	}
	args := []string{objPath, runtimePath, "-o", out, "-lm"}
	log.Printf("link command: %s %v", cc, args)
	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// exec1 runs the linked binary and returns its exit status, per spec.md §6.3: "the executable
// is finally exec-ed and its exit status is returned."
func exec1(path string) (int, error) {
	if !filepath.IsAbs(path) {
		path = "./" + path
	}
	cmd := exec.Command(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

func outputBaseName(src string) string {
	if src == "" {
		return "a.out"
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

// readSource reads source code from a file or, if no path is given, from stdin, generalizing
// the teacher's util.ReadSource (franz drops its 500ms stdin-arrival timeout: a CLI compiler
// invoked as `franz < source` in a script or pipe commonly has its stdin available immediately
// but not yet flushed, and the teacher's own timeout is noted nowhere in spec.md as required
// behavior).
func readSource(path string) (string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		return string(b), err
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
