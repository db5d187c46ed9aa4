package debugir

import (
	"strings"
	"testing"

	"franz/src/ast"
)

func TestDumpClosureCall(t *testing.T) {
	root, err := ast.Parse(`({x -> <- x} 42)`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	out := Dump(root)
	if !strings.Contains(out, "closure(x)") {
		t.Errorf("expected dump to show closure(x), got:\n%s", out)
	}
	if !strings.Contains(out, "call t1(42)") {
		t.Errorf("expected dump to show a call of the closure register, got:\n%s", out)
	}
}

func TestDumpCapturesFreeVars(t *testing.T) {
	root, err := ast.Parse(`f = {n -> {x -> (add n x)}}`)
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	out := Dump(root)
	if !strings.Contains(out, "captures[n]") {
		t.Errorf("expected inner closure to show captures[n], got:\n%s", out)
	}
}
