package ast

// Fold applies constant folding to arithmetic applications of literal operands, adapted from
// the teacher compiler's ir/optimise.go constantFolding pass (there applied to a statically
// typed EXPRESSION node; here applied to APPLICATION nodes whose callee names an arithmetic
// primitive and whose two arguments are already INT/FLOAT literals after recursing).
// Division by a literal zero is deliberately left unfolded so the runtime raises
// DIVISION_BY_ZERO at the call site rather than the compiler silently producing a NaN/trap.
func Fold(n *Node) *Node {
	if n == nil {
		return nil
	}
	for i1, c := range n.Children {
		n.Children[i1] = Fold(c)
	}
	if n.Op != APPLICATION || len(n.Children) != 3 {
		return n
	}
	callee := n.Children[0]
	if callee.Op != IDENTIFIER {
		return n
	}
	name, _ := callee.Data.(string)
	folded, ok := foldArith(name, n.Children[1], n.Children[2])
	if !ok {
		return n
	}
	return folded
}

// foldableOps are the primitive binary arithmetic names the runtime/lowering engine exposes
// (spec.md §8 scenario "adder(2,3)" uses `add`; the others mirror it).
var foldableOps = map[string]func(a, b float64) float64{
	"add": func(a, b float64) float64 { return a + b },
	"sub": func(a, b float64) float64 { return a - b },
	"mul": func(a, b float64) float64 { return a * b },
	"div": func(a, b float64) float64 { return a / b },
}

func foldArith(op string, a, b *Node) (*Node, bool) {
	fn, ok := foldableOps[op]
	if !ok {
		return nil, false
	}
	if (a.Op != INT && a.Op != FLOAT) || (b.Op != INT && b.Op != FLOAT) {
		return nil, false
	}
	av, aFloat := numericValue(a)
	bv, bFloat := numericValue(b)
	if op == "div" && bv == 0 {
		return nil, false
	}
	result := fn(av, bv)
	n := newNode(FLOAT, a.Line)
	if !aFloat && !bFloat {
		n.Op = INT
		n.Data = int64(result)
		return n, true
	}
	n.Data = result
	return n, true
}

func numericValue(n *Node) (float64, bool) {
	if n.Op == FLOAT {
		return n.Data.(float64), true
	}
	return float64(n.Data.(int64)), false
}
