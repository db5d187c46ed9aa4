package value

// Ref is the mutable reference cell primitive of spec.md §3.4: a single boxed slot that
// closures can share and mutate through, independent of the immutable-by-default binding
// rule that governs ordinary `name = expr` assignments.
type Ref struct {
	held *Value
}

// NewRef allocates a Ref holding v (taking ownership of the caller's reference).
func NewRef(v *Value) *Value {
	return New(REF, &Ref{held: v}, 1)
}

// Get returns the held value, retained.
func (r *Ref) Get() *Value {
	return r.held.Retain()
}

// Set replaces the held value, releasing the old one and retaining v.
func (r *Ref) Set(v *Value) {
	r.held.Release()
	r.held = v.Retain()
}
