// Package debugir renders a textual pseudo-IR of a franz syntax tree for the `-d` diagnostic
// flag (SPEC_FULL.md §4.10). It is adapted from the teacher compiler's ir/lir package — a
// from-scratch register-allocated IR with its own backend (ARM/RISC-V) that franz's LLVM
// path makes redundant as a real code generator. What survives here is ir/lir's naming and
// rendering idiom: every instruction gets a sequential pseudo-register name
// (labelPrefix + ordinal, e.g. "t7"), and each construct knows how to render its own line.
// Unlike ir/lir, debugir never feeds a backend or register allocator — go-llvm owns real
// code generation (src/lower) — so there is no hw/en/regalloc machinery to port: this package
// exists purely so `-d` can show a human a plausible intermediate form of their program.
package debugir

import (
	"fmt"
	"strings"

	"franz/src/ast"
)

// seq assigns sequential pseudo-register ids within one dump, mirroring ir/lir's
// Function.seq/vseq counters (there one counter per function; here one per top-level dump
// since franz's closures are values rather than named top-level functions).
type seq struct {
	n int
}

func (s *seq) next() int {
	s.n++
	return s.n
}

// labelTemp is the pseudo-register prefix, playing the role of ir/lir's per-instruction-kind
// label constants (labelFunction, labelPrint, ...) collapsed into one generic temp label
// since debugir does not distinguish instruction *kinds* at the register-naming level.
const labelTemp = "t"

// Dump renders root as a textual pseudo-IR listing.
func Dump(root *ast.Node) string {
	var b strings.Builder
	s := &seq{}
	for _, c := range root.Children {
		dumpStatement(&b, s, 0, c)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i1 := 0; i1 < depth; i1++ {
		b.WriteString("  ")
	}
}

func dumpStatement(b *strings.Builder, s *seq, depth int, n *ast.Node) {
	indent(b, depth)
	switch n.Op {
	case ast.STATEMENT:
		fmt.Fprintf(b, "block:\n")
		for _, c := range n.Children {
			dumpStatement(b, s, depth+1, c)
		}
	case ast.ASSIGNMENT:
		name, _ := n.Children[0].Data.(string)
		val := dumpExpr(b, s, depth, n.Children[1])
		mut := ""
		if n.IsMutable {
			mut = "mut "
		}
		fmt.Fprintf(b, "%sstore %s%s = %s\n", indentStr(depth), mut, name, val)
	case ast.RETURN:
		val := dumpExpr(b, s, depth, n.Children[0])
		fmt.Fprintf(b, "%sret %s\n", indentStr(depth), val)
	default:
		val := dumpExpr(b, s, depth, n)
		fmt.Fprintf(b, "%seval %s\n", indentStr(depth), val)
	}
}

func indentStr(depth int) string { return strings.Repeat("  ", depth) }

// dumpExpr renders n as a pseudo-register reference, emitting the defining line(s) to b as a
// side effect (an SSA-style "t3 = add t1 t2" listing) and returning that register's name.
func dumpExpr(b *strings.Builder, s *seq, depth int, n *ast.Node) string {
	switch n.Op {
	case ast.INT:
		return fmt.Sprintf("%v", n.Data)
	case ast.FLOAT:
		return fmt.Sprintf("%v", n.Data)
	case ast.STRING:
		return fmt.Sprintf("%q", n.Data)
	case ast.IDENTIFIER:
		return fmt.Sprintf("%v", n.Data)
	case ast.QUALIFIED:
		return fmt.Sprintf("%v", n.Data)

	case ast.FUNCTION:
		reg := fmt.Sprintf("%s%d", labelTemp, s.next())
		params := n.Children[:len(n.Children)-1]
		names := make([]string, len(params))
		for i1, p := range params {
			names[i1] = fmt.Sprintf("%v", p.Data)
		}
		free := make([]string, 0, len(n.FreeVars))
		for v := range n.FreeVars {
			free = append(free, v)
		}
		fmt.Fprintf(b, "%s%s = closure(%s) captures[%s]\n", indentStr(depth), reg,
			strings.Join(names, ", "), strings.Join(free, ", "))
		dumpStatement(b, s, depth+1, n.Children[len(n.Children)-1])
		return reg

	case ast.LIST:
		elems := make([]string, len(n.Children))
		for i1, c := range n.Children {
			elems[i1] = dumpExpr(b, s, depth, c)
		}
		reg := fmt.Sprintf("%s%d", labelTemp, s.next())
		fmt.Fprintf(b, "%s%s = list[%s]\n", indentStr(depth), reg, strings.Join(elems, ", "))
		return reg

	case ast.APPLICATION:
		callee := dumpExpr(b, s, depth, n.Children[0])
		args := make([]string, 0, len(n.Children)-1)
		for _, c := range n.Children[1:] {
			args = append(args, dumpExpr(b, s, depth, c))
		}
		reg := fmt.Sprintf("%s%d", labelTemp, s.next())
		fmt.Fprintf(b, "%s%s = call %s(%s)\n", indentStr(depth), reg, callee, strings.Join(args, ", "))
		return reg

	default:
		return fmt.Sprintf("<%s>", n.Op)
	}
}
