// Package value implements the universal refcounted tagged value (spec.md §3.3): the single
// runtime representation every language value is boxed into once it crosses a polymorphic
// boundary (a list/dict element, a dict value, a closure result of unknown static type).
//
// The tag vocabulary generalizes the teacher compiler's LIR DataType enum
// (ir/lir/types/types.go: Int/Float/String/VaList/Unknown), which only needed to describe a
// handful of statically typed primitives for a simple arithmetic language. franz's tag set
// instead spans every kind spec.md §3.3 names, because values here travel through closures,
// collections and combinators without static types to pin them down.
package value

import (
	"fmt"
	"strings"
)

// Tag identifies which variant of the universal value a Value holds.
type Tag int

const (
	INT Tag = iota
	FLOAT
	STRING
	VOID
	FUNCTION        // AST pointer: interpreted-eval path closure.
	NATIVE_FUNCTION // Host Go function exposed as a callable.
	LIST
	DICT
	NAMESPACE
	LLVM_CLOSURE // Closure record produced by the LLVM lowering engine (value/closure.go).
	REF
)

var tagNames = [...]string{
	INT: "INT", FLOAT: "FLOAT", STRING: "STRING", VOID: "VOID",
	FUNCTION: "FUNCTION", NATIVE_FUNCTION: "NATIVE_FUNCTION",
	LIST: "LIST", DICT: "DICT", NAMESPACE: "NAMESPACE",
	LLVM_CLOSURE: "LLVM_CLOSURE", REF: "REF",
}

func (t Tag) String() string {
	if int(t) < 0 || int(t) >= len(tagNames) {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return tagNames[t]
}

// Value is the universal tagged value (spec.md §3.3). Payload holds the tag-specific data:
// an int64/float64/string (held by value) for INT/FLOAT/STRING, *List/*Dict/*Ref for
// collections, src/interp's *Closure for FUNCTION, a NativeFunc for NATIVE_FUNCTION, a *scope.Scope for NAMESPACE, a
// *Closure for LLVM_CLOSURE. refcount starts at the caller-declared value (usually 1) exactly
// as spec.md §4.3 describes constructors doing.
type Value struct {
	Tag      Tag
	Payload  interface{}
	refcount int
	Mutable  bool
}

// NativeFunc is a host-implemented callable bound into a capability scope or the standard
// library (GLOSSARY: "Capability scope").
type NativeFunc func(args []*Value) (*Value, error)

// New allocates a Value with the given tag/payload and an initial refcount of n.
func New(tag Tag, payload interface{}, n int) *Value {
	if n < 1 {
		n = 1
	}
	return &Value{Tag: tag, Payload: payload, refcount: n}
}

// Int, Float, Str and Void are convenience constructors for the primitive tags.
func Int(i int64) *Value    { return New(INT, i, 1) }
func Float(f float64) *Value { return New(FLOAT, f, 1) }
func Str(s string) *Value   { return New(STRING, s, 1) }
func Void() *Value          { return New(VOID, nil, 1) }

// Retain increments v's refcount (spec.md §4.3). A nil Value is a no-op, which lets callers
// retain optional operands without a separate nil check.
func (v *Value) Retain() *Value {
	if v == nil {
		return nil
	}
	v.refcount++
	return v
}

// Release decrements v's refcount and, when it reaches zero, recursively releases owned
// children and frees the payload via the tag-specific destructor (spec.md §3.3/§4.3).
func (v *Value) Release() {
	if v == nil {
		return
	}
	v.refcount--
	if v.refcount > 0 {
		return
	}
	if v.refcount < 0 {
		// A double-release indicates a bookkeeping bug upstream; the teacher's refcounted
		// scopes never observed this either, so franz fails loud instead of re-destroying.
		panic(fmt.Sprintf("value: refcount underflow on %s value", v.Tag))
	}
	switch v.Tag {
	case LIST:
		for _, e1 := range v.Payload.(*List).elems {
			e1.Release()
		}
	case DICT:
		v.Payload.(*Dict).releaseAll()
	case REF:
		v.Payload.(*Ref).held.Release()
	case LLVM_CLOSURE:
		if c := v.Payload.(*Closure); c.Env != nil {
			for _, e1 := range c.Env {
				e1.Release()
			}
		}
	case NATIVE_FUNCTION:
		// Native function payloads are never freed: static host function addresses
		// (spec.md §3.3).
	case FUNCTION:
		// src/interp's Closure payload owns a retained *scope.Scope (the defining
		// environment). value can't import scope without a cycle (scope already imports
		// value for bindings), so the destructor reaches it through this narrow interface
		// instead of a concrete type, the same way Go's sort package decouples on Less.
		if r, ok := v.Payload.(interface{ Release() }); ok {
			r.Release()
		}
	}
}

// RefCount exposes the current count for leak-checking tests (spec.md §8 invariant 3).
func (v *Value) RefCount() int {
	if v == nil {
		return 0
	}
	return v.refcount
}

// Is implements structural equality (spec.md §4.3): numeric promotion between INT/FLOAT,
// byte equality for STRING, recursive structural equality for LIST/DICT, and reference
// identity for FUNCTION/NATIVE_FUNCTION/LLVM_CLOSURE/NAMESPACE.
func Is(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if isNumeric(a.Tag) && isNumeric(b.Tag) {
		return numericOf(a) == numericOf(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case STRING:
		return a.Payload.(string) == b.Payload.(string)
	case VOID:
		return true
	case LIST:
		return a.Payload.(*List).equal(b.Payload.(*List))
	case DICT:
		return a.Payload.(*Dict).equal(b.Payload.(*Dict))
	case REF:
		return a.Payload == b.Payload
	default:
		// FUNCTION, NATIVE_FUNCTION, LLVM_CLOSURE, NAMESPACE: reference identity.
		return a == b
	}
}

func isNumeric(t Tag) bool { return t == INT || t == FLOAT }

func numericOf(v *Value) float64 {
	if v.Tag == INT {
		return float64(v.Payload.(int64))
	}
	return v.Payload.(float64)
}

// String renders v the way the language's print primitives do: tag-dispatched, with
// closures/refs/namespaces rendered as opaque handles rather than their contents
// (spec.md §4.3).
func (v *Value) String() string {
	if v == nil {
		return "[Void]"
	}
	switch v.Tag {
	case INT:
		return formatInt(v.Payload.(int64))
	case FLOAT:
		return formatFloat(v.Payload.(float64))
	case STRING:
		return v.Payload.(string)
	case VOID:
		return "[Void]"
	case FUNCTION, LLVM_CLOSURE:
		return "[Closure]"
	case NATIVE_FUNCTION:
		return "[Native Function]"
	case LIST:
		return v.Payload.(*List).String()
	case DICT:
		return v.Payload.(*Dict).String()
	case NAMESPACE:
		return "[Namespace]"
	case REF:
		return fmt.Sprintf("[Ref: %s]", v.Payload.(*Ref).held.String())
	default:
		return "[Unknown]"
	}
}

// formatInt/formatFloat print numbers with fmt's %d and %g verbs. runtimelib's embedded C
// code does no number formatting of its own.
func formatInt(i int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", i)
	return b.String()
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
