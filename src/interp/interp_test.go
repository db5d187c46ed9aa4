package interp

import (
	"os"
	"path/filepath"
	"testing"

	"franz/src/capability"
)

func mustEval(t *testing.T, src string) string {
	t.Helper()
	in := New(capability.All())
	v, err := in.Eval(src)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %s (errstate: %v)", src, err, in.Errs.Current())
	}
	return v.String()
}

func TestEvalArithmetic(t *testing.T) {
	if got := mustEval(t, `({a b -> <- (add a b)} 2 3)`); got != "5" {
		t.Errorf("got %q, want 5", got)
	}
}

func TestEvalIdentityClosure(t *testing.T) {
	if got := mustEval(t, `({x -> <- x} 42)`); got != "42" {
		t.Errorf("got %q, want 42", got)
	}
}

func TestEvalNestedClosureCapture(t *testing.T) {
	if got := mustEval(t, `((({n -> <- {x -> <- (add n x)}}) 5) 7)`); got != "12" {
		t.Errorf("got %q, want 12", got)
	}
}

func TestEvalDictGet(t *testing.T) {
	if got := mustEval(t, `(dict_get (dict "name" "Ada" "age" 36) "name")`); got != "Ada" {
		t.Errorf("got %q, want Ada", got)
	}
}

func TestEvalCatchFallback(t *testing.T) {
	in := New(capability.All())
	v, err := in.Eval(`(catch {-> (error "boom")} "fallback")`)
	if err != nil {
		t.Fatalf("Eval failed: %s", err)
	}
	if v.String() != "fallback" {
		t.Errorf("got %q, want fallback", v.String())
	}
	if in.Errs.Current() != nil {
		t.Errorf("expected no pending error after catch, got %v", in.Errs.Current())
	}
}

func TestEvalLoopCountedBreakOnTruthy(t *testing.T) {
	if got := mustEval(t, `(loop 10 {i -> (if (is i 5) {<- i} {<- 0})})`); got != "5" {
		t.Errorf("got %q, want 5", got)
	}
}

func TestEvalReduce(t *testing.T) {
	if got := mustEval(t, `(reduce [1,2,3,4] {acc x i -> <- (add acc x)} 0)`); got != "10" {
		t.Errorf("got %q, want 10", got)
	}
}

func TestEvalWhile(t *testing.T) {
	src := `c = (ref 0)
(while {-> (lt (deref c) 3)} {-> (set_ref c (add (deref c) 1))})
(deref c)`
	if got := mustEval(t, src); got != "3" {
		t.Errorf("got %q, want 3", got)
	}
}

func TestEvalMatchVariant(t *testing.T) {
	src := `(match (variant "Some" 42) "Some" {v -> <- v} "None" {-> <- 0})`
	if got := mustEval(t, src); got != "42" {
		t.Errorf("got %q, want 42", got)
	}
}

func TestEvalRefSetGet(t *testing.T) {
	if got := mustEval(t, `(deref (ref 9))`); got != "9" {
		t.Errorf("got %q, want 9", got)
	}
}

func TestEvalUseFlattensBindings(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "mod.fz")
	if err := os.WriteFile(modPath, []byte(`greeting = "hi"`), 0644); err != nil {
		t.Fatalf("failed to write module: %s", err)
	}
	in := New(capability.All())
	src := `(use "` + modPath + `")
greeting`
	v, err := in.Eval(src)
	if err != nil {
		t.Fatalf("Eval failed: %s (errstate: %v)", err, in.Errs.Current())
	}
	if v.String() != "hi" {
		t.Errorf("got %q, want hi", v.String())
	}
}

func TestEvalUseAsNamespace(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "mod.fz")
	if err := os.WriteFile(modPath, []byte(`answer = 42`), 0644); err != nil {
		t.Fatalf("failed to write module: %s", err)
	}
	in := New(capability.All())
	src := `(use_as "` + modPath + `" as m)
m.answer`
	v, err := in.Eval(src)
	if err != nil {
		t.Fatalf("Eval failed: %s (errstate: %v)", err, in.Errs.Current())
	}
	if v.String() != "42" {
		t.Errorf("got %q, want 42", v.String())
	}
}

func TestEvalTailCallDoesNotOverflow(t *testing.T) {
	src := `count = {i -> <- (if (is i 1000) {<- i} {<- (count (add i 1))})}
(count 0)`
	if got := mustEval(t, src); got != "1000" {
		t.Errorf("got %q, want 1000", got)
	}
}
