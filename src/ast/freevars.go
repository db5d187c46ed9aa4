package ast

// Analyze performs the free-variable analysis of spec.md §4.2: for every FUNCTION node, the
// set of identifiers referenced in its body but not bound by its own parameters or any inner
// assignment, and bound in an enclosing scope where the function literal appears, is recorded
// on FreeVars. Names bound nowhere (primitive callees such as add) are not recorded. This set
// drives closure environment capture in src/lower.
func Analyze(root *Node) {
	walkFree(root, map[string]bool{}, map[string]bool{})
}

// walkFree returns the set of identifiers referenced in n's subtree that are not bound in the
// current function or top level (the map bound, which callers may mutate in place as sequential
// ASSIGNMENTs are seen). outer holds the names bound by enclosing functions.
func walkFree(n *Node, bound, outer map[string]bool) map[string]bool {
	free := map[string]bool{}
	if n == nil {
		return free
	}

	switch n.Op {
	case IDENTIFIER:
		name, _ := n.Data.(string)
		if name != "" && !bound[name] {
			free[name] = true
		}

	case ASSIGNMENT:
		for v := range walkFree(n.Children[1], bound, outer) {
			free[v] = true
		}
		name, _ := n.Children[0].Data.(string)
		bound[name] = true

	case FUNCTION:
		visible := make(map[string]bool, len(outer)+len(bound))
		for _, m := range []map[string]bool{outer, bound} {
			for k := range m {
				visible[k] = true
			}
		}
		inner := map[string]bool{}
		params := n.Children[:len(n.Children)-1]
		for _, p := range params {
			name, _ := p.Data.(string)
			inner[name] = true
		}
		body := n.Children[len(n.Children)-1]
		bodyFree := walkFree(body, inner, visible)
		n.FreeVars = map[string]bool{}
		for v := range bodyFree {
			if visible[v] {
				n.FreeVars[v] = true
			}
			if !bound[v] {
				free[v] = true
			}
		}

	case INT, FLOAT, STRING, QUALIFIED, SIGNATURE:
		// Literals and namespace/signature references bind nothing and capture nothing.

	default:
		// STATEMENT, APPLICATION, LIST, RETURN: recurse over children left to right, so
		// an ASSIGNMENT earlier in a STATEMENT is visible (bound) to later siblings.
		for _, c := range n.Children {
			for v := range walkFree(c, bound, outer) {
				free[v] = true
			}
		}
	}
	return free
}
