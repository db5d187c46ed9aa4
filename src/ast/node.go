// Package ast defines the typed, array-child abstract syntax tree (spec.md §3.2) and the
// recursive-descent parser that builds it from a token.Stream.
package ast

import (
	"fmt"
	"strings"
)

// Opcode differentiates the kinds of Node, mirroring the teacher compiler's NodeType
// (ir/nodetype.go) but cut down to the opcodes spec.md §3.2 actually names.
type Opcode int

const (
	INT Opcode = iota
	FLOAT
	STRING
	IDENTIFIER
	ASSIGNMENT
	RETURN
	STATEMENT
	APPLICATION
	FUNCTION
	SIGNATURE
	QUALIFIED
	LIST
)

var opcodeNames = [...]string{
	INT: "INT", FLOAT: "FLOAT", STRING: "STRING", IDENTIFIER: "IDENTIFIER",
	ASSIGNMENT: "ASSIGNMENT", RETURN: "RETURN", STATEMENT: "STATEMENT",
	APPLICATION: "APPLICATION", FUNCTION: "FUNCTION", SIGNATURE: "SIGNATURE",
	QUALIFIED: "QUALIFIED", LIST: "LIST",
}

// String returns a print-friendly opcode name, used by Node.Print and diagnostics.
func (o Opcode) String() string {
	if int(o) < 0 || int(o) >= len(opcodeNames) {
		return fmt.Sprintf("Opcode(%d)", int(o))
	}
	return opcodeNames[o]
}

// Node is a single AST node (spec.md §3.2). Data holds the opcode's literal payload: an int64
// for INT, a float64 for FLOAT, and a string for STRING/IDENTIFIER/QUALIFIED.
type Node struct {
	Op       Opcode
	Data     interface{}
	Line     int
	Children []*Node

	// FreeVars is populated by Analyze for every FUNCTION node: identifiers referenced in
	// the body but not bound by its own parameters or any inner assignment, and bound in an
	// enclosing scope where the literal appears (spec.md §4.2).
	FreeVars map[string]bool

	// VarOffset/VarDepth are lookup-speed hints set by later analysis passes; -1 when unset.
	// They never change an identifier's identity, only how fast src/lower resolves it.
	VarOffset int
	VarDepth  int

	// IsMutable records whether an ASSIGNMENT introduced its binding with `mut`.
	IsMutable bool
}

// newNode allocates a Node with lookup hints defaulted to "unset" per spec.md §3.2.
func newNode(op Opcode, line int, children ...*Node) *Node {
	return &Node{Op: op, Line: line, Children: children, VarOffset: -1, VarDepth: -1}
}

// String renders a single Node (not its subtree) for diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case STRING, IDENTIFIER, QUALIFIED:
		return fmt.Sprintf("%s %q", n.Op, n.Data)
	case INT:
		return fmt.Sprintf("%s %d", n.Op, n.Data)
	case FLOAT:
		return fmt.Sprintf("%s %g", n.Op, n.Data)
	default:
		return n.Op.String()
	}
}

// Print recursively prints the subtree rooted at n, indenting one level per depth — the same
// shape as the teacher compiler's ir.Node.Print, used behind the -d diagnostic flag.
func (n *Node) Print(depth int, w *strings.Builder) {
	if n == nil {
		fmt.Fprintf(w, "%*s---> NIL\n", depth*2, "")
		return
	}
	fmt.Fprintf(w, "%*s%s\n", depth*2, "", n.String())
	for _, c := range n.Children {
		c.Print(depth+1, w)
	}
}
