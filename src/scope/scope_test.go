package scope

import "franz/src/value"

import "testing"

func TestDefineLookup(t *testing.T) {
	s := New(nil)
	s.Define("x", value.Int(1), false)
	v, err := s.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup failed: %s", err)
	}
	if !value.Is(v, value.Int(1)) {
		t.Errorf("expected 1, got %v", v)
	}
	v.Release()
}

func TestLookupParentChain(t *testing.T) {
	parent := New(nil)
	parent.Define("x", value.Int(5), false)
	child := New(parent)
	v, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("expected to find x via parent chain: %s", err)
	}
	if !value.Is(v, value.Int(5)) {
		t.Errorf("expected 5, got %v", v)
	}
	v.Release()
}

func TestLookupUndefined(t *testing.T) {
	s := New(nil)
	if _, err := s.Lookup("missing"); err == nil {
		t.Error("expected NotFoundError for undefined identifier")
	}
}

func TestShadowing(t *testing.T) {
	parent := New(nil)
	parent.Define("x", value.Int(1), false)
	child := New(parent)
	child.Define("x", value.Int(2), false)
	v, _ := child.Lookup("x")
	if !value.Is(v, value.Int(2)) {
		t.Errorf("expected inner binding 2 to shadow outer, got %v", v)
	}
	v.Release()
	pv, _ := parent.Lookup("x")
	if !value.Is(pv, value.Int(1)) {
		t.Errorf("expected outer binding to remain 1, got %v", pv)
	}
	pv.Release()
}

func TestUpdateImmutableRejected(t *testing.T) {
	s := New(nil)
	s.Define("x", value.Int(1), false)
	if err := s.Update("x", value.Int(2)); err == nil {
		t.Error("expected ImmutableError updating a non-mut binding")
	}
}

func TestUpdateMutableSucceeds(t *testing.T) {
	s := New(nil)
	s.Define("x", value.Int(1), true)
	if err := s.Update("x", value.Int(2)); err != nil {
		t.Fatalf("expected mut binding to update cleanly: %s", err)
	}
	v, _ := s.Lookup("x")
	if !value.Is(v, value.Int(2)) {
		t.Errorf("expected 2 after update, got %v", v)
	}
	v.Release()
}

func TestUpdateThroughParentChain(t *testing.T) {
	parent := New(nil)
	parent.Define("counter", value.Int(0), true)
	child := New(parent)
	if err := child.Update("counter", value.Int(1)); err != nil {
		t.Fatalf("expected update to reach through to parent frame: %s", err)
	}
	v, _ := parent.Lookup("counter")
	if !value.Is(v, value.Int(1)) {
		t.Errorf("expected parent's counter updated to 1, got %v", v)
	}
	v.Release()
}

func TestUpdateUndefined(t *testing.T) {
	s := New(nil)
	if err := s.Update("ghost", value.Int(1)); err == nil {
		t.Error("expected NotFoundError updating an undefined identifier")
	}
}

func TestExportsOwnFrameOnly(t *testing.T) {
	parent := New(nil)
	parent.Define("outer", value.Int(1), false)
	child := New(parent)
	child.Define("inner", value.Int(2), false)

	exports := child.Exports()
	if len(exports) != 1 {
		t.Fatalf("expected 1 export, got %d", len(exports))
	}
	v, ok := exports["inner"]
	if !ok {
		t.Fatal("expected \"inner\" among exports")
	}
	if !value.Is(v, value.Int(2)) {
		t.Errorf("expected 2, got %v", v)
	}
	if _, ok := exports["outer"]; ok {
		t.Error("Exports must not reach into the parent frame")
	}
	v.Release()
}

func TestHasOwn(t *testing.T) {
	parent := New(nil)
	parent.Define("outer", value.Int(1), false)
	child := New(parent)
	child.Define("inner", value.Int(2), false)

	if !child.HasOwn("inner") {
		t.Error("expected HasOwn(\"inner\") true")
	}
	if child.HasOwn("outer") {
		t.Error("expected HasOwn(\"outer\") false: binding lives in the parent frame")
	}
	if !child.Has("outer") {
		t.Error("expected Has(\"outer\") true via parent chain")
	}
}
