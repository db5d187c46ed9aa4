package capability

import (
	"testing"

	"franz/src/scope"
)

func TestPopulateGrantedOnly(t *testing.T) {
	root := scope.New(nil)
	Populate(root, Set{IO: true})
	if !root.Has("println") {
		t.Error("expected println bound when IO is granted")
	}
	if root.Has("exit") {
		t.Error("expected exit unbound when Process is not granted")
	}
}

func TestNoneGrantsNothing(t *testing.T) {
	root := scope.New(nil)
	Populate(root, None())
	if root.Has("println") || root.Has("exit") || root.Has("read_file") {
		t.Error("expected no native bindings with an empty capability set")
	}
}

func TestAllGrantsEverything(t *testing.T) {
	root := scope.New(nil)
	Populate(root, All())
	for _, name := range []string{"println", "read_line", "read_file", "write_file", "exit"} {
		if !root.Has(name) {
			t.Errorf("expected %q bound with All()", name)
		}
	}
}

func TestExitRequestCarriesCode(t *testing.T) {
	_, err := nativeExit(nil)
	er, ok := err.(*ExitRequest)
	if !ok {
		t.Fatalf("expected *ExitRequest, got %T", err)
	}
	if er.Code != 0 {
		t.Errorf("expected default exit code 0, got %d", er.Code)
	}
}
