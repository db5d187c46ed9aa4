// Package scope implements the runtime binding-scope chain of spec.md §3.6: a parent-linked
// chain of binding frames, one frame per function activation or top-level program, searched
// innermost-first for reads and writes.
//
// The locking discipline is grounded in the teacher compiler's util/stack.go Stack type,
// which guards a linked structure with a single sync.Mutex for safe access from concurrent
// worker goroutines; franz's module cache (src/modcache) resolves imports concurrently via
// errgroup, so scopes built for a module's top level may be read from more than one goroutine
// during that resolution window, and Scope keeps the same per-node mutex discipline.
package scope

import (
	"fmt"
	"sync"

	"franz/src/value"
)

// binding pairs a name with its current value and whether it may be reassigned in place.
type binding struct {
	val     *value.Value
	mutable bool
}

// Scope is one frame in the binding chain (spec.md §3.6). Frames are refcounted because a
// closure's captured environment keeps its defining scope alive after the activation that
// created it returns.
type Scope struct {
	mx       sync.Mutex
	bindings map[string]*binding
	parent   *Scope
	refcount int
}

// New allocates a root or child scope. A nil parent marks the program's top-level scope.
func New(parent *Scope) *Scope {
	if parent != nil {
		parent.Retain()
	}
	return &Scope{bindings: make(map[string]*binding), parent: parent, refcount: 1}
}

// Retain increments s's refcount; closures do this when capturing the defining scope.
func (s *Scope) Retain() *Scope {
	if s == nil {
		return nil
	}
	s.mx.Lock()
	s.refcount++
	s.mx.Unlock()
	return s
}

// Release decrements s's refcount, releasing bound values and the parent chain once it
// reaches zero.
func (s *Scope) Release() {
	if s == nil {
		return
	}
	s.mx.Lock()
	s.refcount--
	dead := s.refcount <= 0
	s.mx.Unlock()
	if !dead {
		return
	}
	for _, b := range s.bindings {
		b.val.Release()
	}
	s.parent.Release()
}

// NotFoundError reports a lookup for a name with no binding anywhere in the chain.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("undefined identifier %q", e.Name) }

// ImmutableError reports an attempted mutation of a binding that was not declared `mut`.
type ImmutableError struct{ Name string }

func (e *ImmutableError) Error() string {
	return fmt.Sprintf("cannot reassign immutable binding %q", e.Name)
}

// Define introduces name in s's own frame, shadowing any outer binding of the same name
// (spec.md §3.6: assignment always binds in the current, innermost scope). Define retains v.
func (s *Scope) Define(name string, v *value.Value, mutable bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if old, ok := s.bindings[name]; ok {
		old.val.Release()
	}
	s.bindings[name] = &binding{val: v.Retain(), mutable: mutable}
}

// Lookup searches s and its ancestors innermost-first, returning a retained value on a hit.
func (s *Scope) Lookup(name string) (*value.Value, error) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mx.Lock()
		b, ok := cur.bindings[name]
		var v *value.Value
		if ok {
			v = b.val.Retain()
		}
		cur.mx.Unlock()
		if ok {
			return v, nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Update rebinds an existing name in whichever frame of the chain introduced it. It fails
// with ImmutableError unless that binding was declared with mut (spec.md §4.5), and with
// NotFoundError if no frame in the chain holds name at all.
func (s *Scope) Update(name string, v *value.Value) error {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mx.Lock()
		b, ok := cur.bindings[name]
		if ok {
			if !b.mutable {
				cur.mx.Unlock()
				return &ImmutableError{Name: name}
			}
			old := b.val
			b.val = v.Retain()
			cur.mx.Unlock()
			old.Release()
			return nil
		}
		cur.mx.Unlock()
	}
	return &NotFoundError{Name: name}
}

// Exports returns every binding introduced directly in s's own frame (not its ancestors),
// each retained once for the caller — used by `use` (src/interp) to flatten a module's top
// level into the importing scope without reaching into its parent chain.
func (s *Scope) Exports() map[string]*value.Value {
	s.mx.Lock()
	defer s.mx.Unlock()
	out := make(map[string]*value.Value, len(s.bindings))
	for name, b := range s.bindings {
		out[name] = b.val.Retain()
	}
	return out
}

// HasOwn reports whether name is bound directly in s's own frame, without searching ancestors
// — used to decide whether an ASSIGNMENT rebinds the current frame's own slot (always
// allowed, mirroring src/lower's storeLocal reusing one alloca per name within a function) or
// must go through Update against an outer frame (gated by that binding's mutable flag).
func (s *Scope) HasOwn(name string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	_, ok := s.bindings[name]
	return ok
}

// Has reports whether name is bound anywhere in the chain, without retaining its value.
func (s *Scope) Has(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mx.Lock()
		_, ok := cur.bindings[name]
		cur.mx.Unlock()
		if ok {
			return true
		}
	}
	return false
}
