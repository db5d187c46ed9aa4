package lower

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// arithOps maps a primitive callee name to the LLVM instruction builder that implements it,
// mirroring transform.go's genExpression operator switch (there keyed on an operator token
// string already baked into the AST; here keyed on the callee IDENTIFIER of an APPLICATION,
// since franz has no infix operator syntax — every arithmetic op is a named application).
var arithOps = map[string]func(b llvm.Builder, a, c llvm.Value) llvm.Value{
	"add": func(b llvm.Builder, a, c llvm.Value) llvm.Value { return b.CreateAdd(a, c, "") },
	"sub": func(b llvm.Builder, a, c llvm.Value) llvm.Value { return b.CreateSub(a, c, "") },
	"mul": func(b llvm.Builder, a, c llvm.Value) llvm.Value { return b.CreateMul(a, c, "") },
	"div": func(b llvm.Builder, a, c llvm.Value) llvm.Value { return b.CreateSDiv(a, c, "") },
	"mod": func(b llvm.Builder, a, c llvm.Value) llvm.Value { return b.CreateSRem(a, c, "") },
}

// cmpOps maps a comparison callee name to its signed integer predicate. "is" compares the raw
// bits of its two operands, which is value equality for INT operands.
var cmpOps = map[string]llvm.IntPredicate{
	"lt": llvm.IntSLT, "le": llvm.IntSLE, "gt": llvm.IntSGT, "ge": llvm.IntSGE,
	"eq": llvm.IntEQ, "ne": llvm.IntNE, "is": llvm.IntEQ,
}

// genApplication lowers an APPLICATION node: a special form (if/loop/break), a primitive
// arithmetic/comparison op, a combinator (map/filter/reduce), or a general closure call.
func (fr *frame) genApplication(n *ast.Node) (llvm.Value, Tag, error) {
	callee := n.Children[0]
	args := n.Children[1:]

	if callee.Op == ast.IDENTIFIER {
		name, _ := callee.Data.(string)
		switch name {
		case "if", "loop", "while", "break", "match", "variant":
			// These dispatch to their own genClosureCall sites for internal block thunks
			// (control.go), never the user's own direct call; a tail marking set by the
			// enclosing RETURN must not leak into those synthetic invocations.
			fr.tailCall = false
			switch name {
			case "if":
				return fr.genIf(args)
			case "loop":
				return fr.genLoop(args)
			case "while":
				return fr.genWhile(args)
			case "match":
				return fr.genMatch(n.Line, args)
			case "variant":
				return fr.genVariant(args)
			default:
				return fr.genBreak(args)
			}
		}
		if fn, ok := arithOps[name]; ok && len(args) == 2 {
			fr.tailCall = false // operands are never in tail position.
			return fr.genBinaryPrimitive(fn, args)
		}
		if pred, ok := cmpOps[name]; ok && len(args) == 2 {
			fr.tailCall = false
			return fr.genComparison(pred, args)
		}
		if fn, ok := combinators[name]; ok {
			fr.tailCall = false
			return fn(fr, args)
		}
		// A plain identifier callee not recognized as a special form or primitive: it names
		// a closure-valued binding, called through the tagged ABI (spec.md §4.6). This is
		// the one case reached directly from a RETURN's child, so fr.tailCall (if set) is
		// left intact for genClosureCall to consume.
		raw, tag, err := fr.loadIdentifier(name)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		if tag != TagClosure && tag != TagVoid {
			return llvm.Value{}, 0, fmt.Errorf("line %d: %q is not callable", n.Line, name)
		}
		return fr.genClosureCall(raw, args)
	}

	// The callee is itself an expression (e.g. an immediately-applied FUNCTION literal, or
	// the result of another application) — evaluate it to a closure value and call through.
	// Evaluating callee is never itself in tail position even when the overall call is.
	isTail := fr.tailCall
	fr.tailCall = false
	raw, _, err := fr.genExpr(callee)
	if err != nil {
		return llvm.Value{}, 0, err
	}
	fr.tailCall = isTail
	return fr.genClosureCall(raw, args)
}

func (fr *frame) genBinaryPrimitive(op func(llvm.Builder, llvm.Value, llvm.Value) llvm.Value, args []*ast.Node) (llvm.Value, Tag, error) {
	a, _, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	c, _, err := fr.genExpr(args[1])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	return op(fr.b, a, c), TagInt, nil
}

func (fr *frame) genComparison(pred llvm.IntPredicate, args []*ast.Node) (llvm.Value, Tag, error) {
	a, _, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	c, _, err := fr.genExpr(args[1])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	cmp := fr.b.CreateICmp(pred, a, c, "")
	return fr.b.CreateZExt(cmp, rawType, ""), TagInt, nil
}

// genListLiteral lowers a LIST node by calling into the embedded runtime's list constructor
// once per element (src/runtimelib owns the actual List allocation/growth logic described in
// spec.md §4.4; lowering only needs to marshal tagged elements across the call boundary).
func (fr *frame) genListLiteral(n *ast.Node) (llvm.Value, Tag, error) {
	newList := fr.eng.externList(fr.b)
	listPtr := fr.b.CreateCall(newList, nil, "")
	appendFn := fr.eng.externListAppend(fr.b)
	for _, c := range n.Children {
		raw, tag, err := fr.genExpr(c)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		fr.b.CreateCall(appendFn, []llvm.Value{listPtr, raw, llvm.ConstInt(tagType, uint64(tag), false)}, "")
	}
	return fr.b.CreatePtrToInt(listPtr, rawType, ""), TagList, nil
}

// internString creates (or reuses) a module-level constant for s, mirroring transform.go's
// stringPrefix-prefixed global string constants.
func (e *Engine) internString(b llvm.Builder, s string) llvm.Value {
	g := e.Module.NamedGlobal(stringSymbol(s))
	if g.IsNil() {
		cnst := e.Ctx.ConstString(s, true)
		g = llvm.AddGlobal(e.Module, cnst.Type(), stringSymbol(s))
		g.SetInitializer(cnst)
		g.SetGlobalConstant(true)
		g.SetLinkage(llvm.PrivateLinkage)
	}
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	return b.CreateBitCast(b.CreateGEP(g, []llvm.Value{zero, zero}, ""), i8ptr, "")
}

var stringPrefix = "L_str" // Grounded in transform.go's stringPrefix = "L_STR" global-string naming convention.

func stringSymbol(s string) string {
	return fmt.Sprintf("%s_%x", stringPrefix, hashString(s))
}

func hashString(s string) uint64 {
	// FNV-1a, reused from the same hash family src/value's Dict uses, so the two subsystems
	// never diverge on what a "stable name" looks like for the same input bytes.
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i1 := 0; i1 < len(s); i1++ {
		h ^= uint64(s[i1])
		h *= prime64
	}
	return h
}
