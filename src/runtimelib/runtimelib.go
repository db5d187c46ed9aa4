// Package runtimelib embeds the small C runtime every compiled franz binary links against:
// list allocation/append/get/length, dict allocation/set, and the match-failure exit that
// lowered calls target (SPEC_FULL.md §4.11). It has no box/unbox helpers: lowered code passes
// raw/tag pairs directly. The embed-then-shell-out-to-cc approach is grounded in the teacher
// compiler's driver, which likewise treats code generation (LLVM object emission) and final
// linking (an external toolchain invocation) as separate stages; franz adds a C translation
// unit to that link step because go-llvm's IR references franz_rt_* symbols this package
// defines, the same way the teacher's generated IR references a bare `printf`/`atoi`/`atof`
// resolved at link time against the system libc.
package runtimelib

import (
	"os"

	_ "embed"
)

//go:embed runtime.c
var Source string

// Write materializes the embedded runtime source at path, so src/driver can hand it to the
// system C compiler alongside the LLVM-emitted object file.
func Write(path string) error {
	return os.WriteFile(path, []byte(Source), 0644)
}
