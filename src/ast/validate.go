package ast

import "fmt"

// TypeError reports a statically detectable violation of spec.md §4.5's mutability rule:
// reassigning a name that was not introduced with `mut` is a TYPE error.
type TypeError struct {
	Line    int
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type Error @ Line %d: %s", e.Line, e.Message)
}

// Validate walks the tree adapted from the teacher compiler's ir/validate.go semantic pass,
// narrowed to the one static check spec.md §4.5 calls out explicitly: assignment to a name
// already bound without `mut` in the same function scope. Reassignment of a name that *was*
// introduced with `mut` is permitted and does not appear here; anything this pass cannot
// prove statically (e.g. conditional rebinding through two different closures) is left for
// the runtime scope (src/scope) to reject at the point of mutation.
func Validate(root *Node) []error {
	var errs []error
	validateScope(root, map[string]bool{}, &errs)
	return errs
}

func validateScope(n *Node, mutable map[string]bool, errs *[]error) {
	if n == nil {
		return
	}
	switch n.Op {
	case ASSIGNMENT:
		name, _ := n.Children[0].Data.(string)
		validateScope(n.Children[1], mutable, errs)
		if declaredMutable, seen := mutable[name]; seen {
			if !declaredMutable {
				*errs = append(*errs, &TypeError{
					Line:    n.Line,
					Message: fmt.Sprintf("reassignment of immutable binding %q; declare it with mut to allow rebinding", name),
				})
			}
			return
		}
		mutable[name] = n.IsMutable

	case FUNCTION:
		inner := make(map[string]bool, len(n.Children))
		for _, p := range n.Children[:len(n.Children)-1] {
			name, _ := p.Data.(string)
			inner[name] = false
		}
		validateScope(n.Children[len(n.Children)-1], inner, errs)

	default:
		for _, c := range n.Children {
			validateScope(c, mutable, errs)
		}
	}
}
