package value

import "strings"

// List is the doubling-capacity array primitive of spec.md §3.4/§4.4. It owns a reference on
// every element it holds; Insert/Set retain the value they store, Delete releases, and
// NewList takes over references its caller already holds.
type List struct {
	elems []*Value
}

// NewList builds a List taking ownership of elems (each is expected to already carry a
// reference on behalf of the list).
func NewList(elems []*Value) *Value {
	return New(LIST, &List{elems: elems}, 1)
}

// Copy produces a structural copy of l with a fresh backing array, retaining every element
// (spec.md §4.4: list copies are shallow over element identity, deep over the backing array).
func (l *List) Copy() *List {
	out := make([]*Value, len(l.elems))
	for i1, e1 := range l.elems {
		out[i1] = e1.Retain()
	}
	return &List{elems: out}
}

// Length returns the element count.
func (l *List) Length() int64 { return int64(len(l.elems)) }

// Get returns the element at idx, or a RANGE error if idx is out of [0, len).
func (l *List) Get(idx int64) (*Value, error) {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return nil, &RangeError{Message: "list index out of bounds"}
	}
	return l.elems[idx].Retain(), nil
}

// Slice returns a new List holding [from, to) with its own references.
func (l *List) Slice(from, to int64) (*Value, error) {
	if from < 0 || to > int64(len(l.elems)) || from > to {
		return nil, &RangeError{Message: "list slice out of bounds"}
	}
	out := make([]*Value, to-from)
	for i1 := from; i1 < to; i1++ {
		out[i1-from] = l.elems[i1].Retain()
	}
	return NewList(out), nil
}

// Set replaces the element at idx in place, releasing the old value and retaining v.
func (l *List) Set(idx int64, v *Value) error {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return &RangeError{Message: "list index out of bounds"}
	}
	l.elems[idx].Release()
	l.elems[idx] = v.Retain()
	return nil
}

// Insert grows the backing array (doubling capacity as needed, spec.md §4.4) and inserts v at
// idx, shifting later elements right. idx == len(l.elems) appends.
func (l *List) Insert(idx int64, v *Value) error {
	if idx < 0 || idx > int64(len(l.elems)) {
		return &RangeError{Message: "list insert index out of bounds"}
	}
	l.elems = append(l.elems, nil)
	copy(l.elems[idx+1:], l.elems[idx:])
	l.elems[idx] = v.Retain()
	return nil
}

// Delete removes and releases the element at idx.
func (l *List) Delete(idx int64) error {
	if idx < 0 || idx >= int64(len(l.elems)) {
		return &RangeError{Message: "list delete index out of bounds"}
	}
	l.elems[idx].Release()
	l.elems = append(l.elems[:idx], l.elems[idx+1:]...)
	return nil
}

// DeleteRange removes and releases [from, to).
func (l *List) DeleteRange(from, to int64) error {
	if from < 0 || to > int64(len(l.elems)) || from > to {
		return &RangeError{Message: "list delete range out of bounds"}
	}
	for i1 := from; i1 < to; i1++ {
		l.elems[i1].Release()
	}
	l.elems = append(l.elems[:from], l.elems[to:]...)
	return nil
}

// Join concatenates l and other into a new List, retaining every element shared.
func Join(l, other *List) *Value {
	out := make([]*Value, 0, len(l.elems)+len(other.elems))
	for _, e1 := range l.elems {
		out = append(out, e1.Retain())
	}
	for _, e1 := range other.elems {
		out = append(out, e1.Retain())
	}
	return NewList(out)
}

func (l *List) equal(other *List) bool {
	if len(l.elems) != len(other.elems) {
		return false
	}
	for i1, e1 := range l.elems {
		if !Is(e1, other.elems[i1]) {
			return false
		}
	}
	return true
}

func (l *List) releaseAll() {
	for _, e1 := range l.elems {
		e1.Release()
	}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i1, e1 := range l.elems {
		if i1 > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e1.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Each exposes read-only iteration for the combinator lowering in src/lower (map/filter/reduce)
// and the interpreted fallback in src/interp, without leaking the backing slice.
func (l *List) Each(fn func(i int64, v *Value) error) error {
	for i1, e1 := range l.elems {
		if err := fn(int64(i1), e1); err != nil {
			return err
		}
	}
	return nil
}

// RangeError is the error used for list/dict/string bounds violations, surfaced to
// src/errstate as a RANGE error state (spec.md §3.7).
type RangeError struct{ Message string }

func (e *RangeError) Error() string { return e.Message }
