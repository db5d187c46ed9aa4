// Package typecheck implements the optional pre-flight pass enabled by the driver's
// `--assert-types` flag (SPEC_FULL.md §4.14). Full Hindley-Milner inference is out of scope
// (spec.md's Non-goals exclude static typing as a language feature); what this pass checks
// instead is the narrow, purely syntactic subset spec.md's `sig` annotations make checkable
// without inference: declared arities of directly-called closures, and `sig`-annotated
// argument tags against the literal passed at the call site (an identifier or other
// expression argument is not checked).
package typecheck

import (
	"fmt"

	"franz/src/ast"
)

// Error reports a statically detected arity or tag mismatch.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("Type Error @ Line %d: %s", e.Line, e.Message) }

// Check walks root, validating every directly-applied closure literal's call sites against
// its own declared parameter count, and every `sig`-annotated argument against the static
// kind of the literal passed for it.
func Check(root *ast.Node) []error {
	var errs []error
	walk(root, &errs)
	return errs
}

func walk(n *ast.Node, errs *[]error) {
	if n == nil {
		return
	}
	if n.Op == ast.APPLICATION {
		checkApplication(n, errs)
	}
	for _, c := range n.Children {
		walk(c, errs)
	}
}

// checkApplication validates two things the call site and the syntax tree make checkable
// without inference: an immediately-applied closure literal's arity (counting only the
// non-SIGNATURE argument children, since a `sig`/`as` entry in the argument list is an
// annotation, not itself a value being passed), and any `sig <name>` annotation immediately
// following a literal argument (parser.go's parseApplication appends the SIGNATURE node
// right after the value it annotates: `val as int` parses to children [..., val, sig(int)])
// against that literal's static kind.
func checkApplication(n *ast.Node, errs *[]error) {
	callee := n.Children[0]
	rest := n.Children[1:]

	values := make([]*ast.Node, 0, len(rest))
	for i1, c := range rest {
		if c.Op == ast.SIGNATURE {
			continue
		}
		values = append(values, c)
		if i1+1 < len(rest) && rest[i1+1].Op == ast.SIGNATURE {
			checkSignature(rest[i1+1], c, errs)
		}
	}

	if callee.Op != ast.FUNCTION {
		return
	}
	params := callee.Children[:len(callee.Children)-1]
	if len(params) != len(values) {
		*errs = append(*errs, &Error{
			Line: n.Line,
			Message: fmt.Sprintf("closure expects %d argument(s), call site provides %d",
				len(params), len(values)),
		})
	}
}

// checkSignature validates that the literal value following a `sig <name>` annotation
// matches the kind sig names, when the value is a literal whose kind is known without
// evaluation.
func checkSignature(sig, val *ast.Node, errs *[]error) {
	name, _ := sig.Data.(string)
	if kind := literalKind(val); kind != "" && kind != name {
		*errs = append(*errs, &Error{
			Line:    val.Line,
			Message: fmt.Sprintf("expected %s per sig annotation, got %s", name, kind),
		})
	}
}

// literalKind returns the checkable static kind name of n if n is a literal the sig
// vocabulary names ("int", "float", "string"), or "" if n's kind cannot be determined
// without evaluation (an identifier, application result, etc. — left to the runtime).
func literalKind(n *ast.Node) string {
	switch n.Op {
	case ast.INT:
		return "int"
	case ast.FLOAT:
		return "float"
	case ast.STRING:
		return "string"
	default:
		return ""
	}
}
