package value

import "unsafe"

// Closure is the Go-side mirror of the three-field closure record spec.md §3.5/§4.6 lowers
// every `{params -> body}` literal to: a code pointer, an environment pointer, and the static
// return tag the LLVM lowering engine committed to for this closure's body. FuncPtr is
// unsafe.Pointer rather than a typed function value because the lowered signature is the
// tagged-argument ABI of spec.md §4.6 ((raw_value, type_tag) pairs per parameter plus the
// env pointer), which Go cannot express as a static func type; src/lower emits the actual
// call sequence via go-llvm and never calls through FuncPtr directly from Go.
type Closure struct {
	FuncPtr   unsafe.Pointer
	Env       []*Value // Captured free variables, by-value snapshot per spec.md §4.6.
	ReturnTag Tag
}

// NewClosure builds an LLVM_CLOSURE value wrapping c. env is retained on behalf of the
// closure record, matching the by-value snapshot semantics of environment capture.
func NewClosure(funcPtr unsafe.Pointer, env []*Value, returnTag Tag) *Value {
	for _, e1 := range env {
		e1.Retain()
	}
	return New(LLVM_CLOSURE, &Closure{FuncPtr: funcPtr, Env: env, ReturnTag: returnTag}, 1)
}

// EnvSnapshot copies c's captured environment slice for passing into a fresh activation
// record, retaining each element (spec.md §4.6: invoking a closure does not consume its
// captured environment, so it may be called repeatedly).
func (c *Closure) EnvSnapshot() []*Value {
	out := make([]*Value, len(c.Env))
	for i1, e1 := range c.Env {
		out[i1] = e1.Retain()
	}
	return out
}
