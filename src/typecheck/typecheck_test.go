package typecheck

import (
	"testing"

	"franz/src/ast"
)

func TestCheckArityMismatch(t *testing.T) {
	root, err := ast.Parse(`({a b -> <- (add a b)} 1)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	errs := Check(root)
	if len(errs) != 1 {
		t.Fatalf("expected 1 arity error, got %d: %v", len(errs), errs)
	}
}

func TestCheckArityMatch(t *testing.T) {
	root, err := ast.Parse(`({a b -> <- (add a b)} 1 2)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	if errs := Check(root); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCheckSigAnnotationMismatch(t *testing.T) {
	root, err := ast.Parse(`(println "hi" as int)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	errs := Check(root)
	if len(errs) != 1 {
		t.Fatalf("expected 1 sig mismatch error, got %d: %v", len(errs), errs)
	}
}

func TestCheckSigAnnotationMatch(t *testing.T) {
	root, err := ast.Parse(`(println 1 as int)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	if errs := Check(root); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
