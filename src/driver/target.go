package driver

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Target bundles the LLVM target machine and data layout a module is compiled against.
// franz always targets the host, unlike the teacher's cross-compiling -arch/-os/-vendor
// flags (ir/llvm/transform.go's genTargetTriple): spec.md §6.1's flag set has no
// cross-compilation surface, so target.go keeps transform.go's initialize-then-
// CreateTargetMachine shape but collapses its triple-construction switch down to
// llvm.DefaultTargetTriple().
type Target struct {
	Machine llvm.TargetMachine
	Data    llvm.TargetData
	Triple  string
}

// NewTarget initializes LLVM's target infrastructure and builds a Target for the host
// machine, mirroring transform.go's InitializeAllTargets*/CreateTargetMachine sequence.
func NewTarget() (*Target, error) {
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
	llvm.InitializeAllTargets()

	triple := llvm.DefaultTargetTriple()
	t, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("driver: could not resolve target for triple %s: %w", triple, err)
	}

	tm := t.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault,
		llvm.RelocDefault,
		llvm.CodeModelDefault)
	td := tm.CreateTargetData()

	return &Target{Machine: tm, Data: td, Triple: triple}, nil
}

// Dispose releases the underlying LLVM target data and machine.
func (t *Target) Dispose() {
	t.Data.Dispose()
	t.Machine.Dispose()
}
