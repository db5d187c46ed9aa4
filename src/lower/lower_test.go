package lower

import (
	"strings"
	"testing"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// TestLowerIdentity lowers the spec.md §8 identity-closure scenario and checks that a
// franz_closure function and the franz_main entry point both appear in the emitted module.
func TestLowerIdentity(t *testing.T) {
	root, err := ast.Parse(`({x -> <- x} 42)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("identity_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	ir := eng.Module.String()
	if !strings.Contains(ir, "franz_main") {
		t.Error("expected emitted IR to contain franz_main")
	}
	if !strings.Contains(ir, "franz_closure_0") {
		t.Error("expected emitted IR to contain the lowered closure function")
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerArithmeticAndIf covers arithmetic primitives and the if special form together.
func TestLowerArithmeticAndIf(t *testing.T) {
	root, err := ast.Parse(`
f = {n -> <- (if (gt n 0) (add n 1) (sub n 1))}
(f 5)
`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("if_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerNestedClosureCapture covers free-variable capture across two nesting levels
// (spec.md §8's curried adder scenario).
func TestLowerNestedClosureCapture(t *testing.T) {
	root, err := ast.Parse(`((({n -> <- {x -> <- (add n x)}}) 5) 7)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("capture_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerWhileWithBreak covers the condition loop's loop_return early-exit path (spec.md
// §4.7): cond and body are each zero-argument thunks re-evaluated at the head of every
// iteration.
func TestLowerWhileWithBreak(t *testing.T) {
	root, err := ast.Parse(`
mut i = 0
(while {-> <- (lt i 10)} {-> i = (add i 1)
(if (eq i 5) (break i) 0)})
`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("while_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerCountedLoopBreakOnTruthy covers the counted loop `(loop n body)` (spec.md §4.7,
// §8): body is a one-parameter closure called once per index, and a truthy result stops the
// loop immediately and becomes its value.
func TestLowerCountedLoopBreakOnTruthy(t *testing.T) {
	root, err := ast.Parse(`(loop 10 {i -> (if (is i 5) {<- i} {<- 0})})`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("counted_loop_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerReduceWithIndex covers genReduce's 3-tagged-argument call against the reducer
// closure's 3-parameter (acc, element, index) header (spec.md §8).
func TestLowerReduceWithIndex(t *testing.T) {
	root, err := ast.Parse(`(reduce [1,2,3,4] {acc x i -> <- (add acc x)} 0)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("reduce_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}

// TestLowerMatchVariant covers genVariant/genMatch lowering (spec.md §4.9, §8): a variant
// constructed with a literal tag, matched by a cascade of tag comparisons that dispatch to
// the matching arm's closure.
func TestLowerMatchVariant(t *testing.T) {
	root, err := ast.Parse(`(match (variant "Some" 42) "Some" {v -> <- v} "None" {-> <- 0})`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	eng := NewEngine("match_test")
	defer eng.Dispose()
	if err := eng.Lower(root); err != nil {
		t.Fatalf("Lower failed: %s", err)
	}
	if err := llvm.VerifyModule(eng.Module, llvm.ReturnStatusAction); err != nil {
		t.Errorf("module failed verification: %s", err)
	}
}
