package value

import "testing"

// TestIsNumericPromotion covers spec.md §8 invariant 4: INT and FLOAT compare equal by value.
func TestIsNumericPromotion(t *testing.T) {
	a := Int(2)
	b := Float(2.0)
	if !Is(a, b) {
		t.Errorf("expected INT 2 and FLOAT 2.0 to compare equal")
	}
	c := Int(3)
	if Is(a, c) {
		t.Errorf("expected INT 2 and INT 3 to compare unequal")
	}
}

// TestIsReflexiveSymmetricTransitive covers the equivalence-relation invariant over a small
// set of values spanning every comparable tag.
func TestIsReflexiveSymmetricTransitive(t *testing.T) {
	vals := []*Value{Int(1), Float(1.0), Str("x"), Void(), NewList([]*Value{Int(1)})}
	for _, v := range vals {
		if !Is(v, v) {
			t.Errorf("Is not reflexive for %v", v)
		}
	}
	for i1 := range vals {
		for j := range vals {
			if Is(vals[i1], vals[j]) != Is(vals[j], vals[i1]) {
				t.Errorf("Is not symmetric for %v, %v", vals[i1], vals[j])
			}
		}
	}
}

func TestRefcountRetainRelease(t *testing.T) {
	v := Int(5)
	if v.RefCount() != 1 {
		t.Fatalf("expected initial refcount 1, got %d", v.RefCount())
	}
	v.Retain()
	if v.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after Retain, got %d", v.RefCount())
	}
	v.Release()
	if v.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after Release, got %d", v.RefCount())
	}
}

func TestListLengthGetInsertDelete(t *testing.T) {
	lst := NewList([]*Value{Int(1), Int(2), Int(3)})
	l := lst.Payload.(*List)
	if l.Length() != 3 {
		t.Fatalf("expected length 3, got %d", l.Length())
	}
	got, err := l.Get(1)
	if err != nil || got.Payload.(int64) != 2 {
		t.Fatalf("expected element 2 at index 1, got %v err %v", got, err)
	}
	got.Release()

	if err := l.Insert(1, Int(99)); err != nil {
		t.Fatalf("Insert failed: %s", err)
	}
	if l.Length() != 4 {
		t.Fatalf("expected length 4 after insert, got %d", l.Length())
	}
	got, _ = l.Get(1)
	if got.Payload.(int64) != 99 {
		t.Errorf("expected 99 at index 1 after insert, got %v", got)
	}
	got.Release()

	if err := l.Delete(1); err != nil {
		t.Fatalf("Delete failed: %s", err)
	}
	if l.Length() != 3 {
		t.Fatalf("expected length 3 after delete, got %d", l.Length())
	}

	if _, err := l.Get(10); err == nil {
		t.Error("expected RANGE error for out-of-bounds Get")
	}
}

func TestDictGetSetHasRemove(t *testing.T) {
	d := NewDict()
	dd := d.Payload.(*Dict)
	key := Str("name")
	val := Str("franz")
	dd.Set(key, val)

	if !dd.Has(key) {
		t.Fatal("expected Has to find just-set key")
	}
	got, ok := dd.Get(key)
	if !ok || got.Payload.(string) != "franz" {
		t.Fatalf("expected franz, got %v ok=%v", got, ok)
	}
	got.Release()

	if !dd.Remove(key) {
		t.Fatal("expected Remove to report true for present key")
	}
	if dd.Has(key) {
		t.Error("expected key gone after Remove")
	}
}

// TestDictRehashPreservesEntries exercises the load-factor-triggered rehash path with enough
// insertions to cross 0.75 load factor on the initial 8-bucket table.
func TestDictRehashPreservesEntries(t *testing.T) {
	d := NewDict()
	dd := d.Payload.(*Dict)
	for i1 := int64(0); i1 < 50; i1++ {
		dd.Set(Int(i1), Int(i1*2))
	}
	for i1 := int64(0); i1 < 50; i1++ {
		got, ok := dd.Get(Int(i1))
		if !ok || got.Payload.(int64) != i1*2 {
			t.Fatalf("lost entry %d after rehash: got %v ok=%v", i1, got, ok)
		}
		got.Release()
	}
}

func TestDictNumericKeyPromotion(t *testing.T) {
	d := NewDict()
	dd := d.Payload.(*Dict)
	dd.Set(Int(1), Str("one"))
	got, ok := dd.Get(Float(1.0))
	if !ok || got.Payload.(string) != "one" {
		t.Fatalf("expected FLOAT 1.0 to find INT-keyed entry, got %v ok=%v", got, ok)
	}
	got.Release()
}

func TestRefGetSet(t *testing.T) {
	r := NewRef(Int(1))
	cell := r.Payload.(*Ref)
	got := cell.Get()
	if got.Payload.(int64) != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	got.Release()
	cell.Set(Int(2))
	got = cell.Get()
	if got.Payload.(int64) != 2 {
		t.Fatalf("expected 2 after Set, got %v", got)
	}
	got.Release()
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		v    *Value
		want string
	}{
		{Int(42), "42"},
		{Str("hi"), "hi"},
		{Void(), "[Void]"},
		{NewList([]*Value{Int(1), Int(2)}), "[1, 2]"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
