package lower

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// frame carries the state needed to lower one function body (or the franz_main entry point),
// mirroring the (b, m, fun, st) parameter group threaded through every genX function in
// transform.go. Bundling them into a receiver instead of four positional parameters is the
// one deliberate departure from the teacher's free-function style, made because franz's
// genExpr additionally threads a runtime Tag alongside every llvm.Value (transform.go's
// single-typed expressions never needed a second return channel here).
type frame struct {
	b   llvm.Builder
	fn  llvm.Value
	st  *scopeStack
	eng *Engine

	// closureNode is the ast.Node of the FUNCTION literal this frame is generating the body
	// of, or nil for the franz_main frame. envPtr/envFields let genExpr resolve a captured
	// free variable through the closure's environment struct (closure.go).
	closureNode *ast.Node
	envPtr      llvm.Value
	envFields   map[string]int

	// loopReturn is the alloca'd raw i64 slot (no tag is stored) spec.md §4.7 calls the
	// loop_return slot:
	// a (break ...) special form inside the innermost enclosing loop stores its value here
	// and branches directly to the loop's convergence block, bypassing the loop's normal
	// per-iteration control flow the way transform.go's genContinue jumps to the loop head.
	loopReturn   llvm.Value
	loopBreakBlk llvm.BasicBlock
	hasLoop      bool

	// thunkReturn/thunkDoneBlk/inThunk mirror loopReturn/loopBreakBlk/hasLoop for genThunk
	// (control.go): a `{...}` block used directly as an if/while branch is inlined into the
	// current function rather than compiled as its own closure, so its `<-` must branch to a
	// local convergence block instead of emitting a real ret instruction — a real ret would
	// terminate the enclosing function, not just the thunk, and a separate closure function
	// would put any `break` inside it out of reach of the enclosing loop's loopReturn/
	// loopBreakBlk, which live in a different LLVM function.
	thunkReturn  llvm.Value
	thunkDoneBlk llvm.BasicBlock
	inThunk      bool

	// tailCall is set true for the single genExpr call lowering a RETURN's direct expression
	// (spec.md §4.7): if that expression turns out to be a closure call, genClosureCall marks
	// the emitted call instruction `tail`, leaving the actual sibling-call rewrite to LLVM's
	// own tail-call optimization passes rather than hand-rolling the loop-back-to-entry-block
	// rewrite transform.go never needed (its language had no closures to self-recurse over).
	tailCall bool
}

// genStatement lowers one STATEMENT child: an ASSIGNMENT, RETURN, or a bare expression,
// mirroring transform.go's gen dispatch switch but generalized to also report the statement's
// value the way src/interp's evalStatement/evalTop do: franz has no separate "statement used
// only for effect" form, so a STATEMENT sequence's value is always its last child's value,
// explicit RETURN or not (spec.md §8's `(loop 10 {i -> (if (is i 5) {<- i} {<- 0})})` relies on
// exactly this — the if's value becomes the closure's result with no `<-` in sight). The bool
// return is true if the statement terminated the current basic block with a real ret or a
// branch to a thunk/closure's convergence block (transform.go's `ret` return value); the caller
// only needs the returned raw/tag when it is false, to use as its own implicit fall-through
// value.
func (fr *frame) genStatement(n *ast.Node) (llvm.Value, Tag, bool, error) {
	switch n.Op {
	case ast.STATEMENT:
		fr.st.push()
		defer fr.st.pop()
		raw := llvm.ConstInt(rawType, 0, false)
		tag := TagVoid
		for _, c := range n.Children {
			var ret bool
			var err error
			raw, tag, ret, err = fr.genStatement(c)
			if err != nil {
				return raw, tag, ret, err
			}
			if ret {
				return raw, tag, true, nil
			}
		}
		return raw, tag, false, nil

	case ast.ASSIGNMENT:
		name, _ := n.Children[0].Data.(string)
		raw, tag, err := fr.genExpr(n.Children[1])
		if err != nil {
			return llvm.Value{}, 0, false, err
		}
		fr.storeLocal(name, raw, tag)
		return raw, tag, false, nil

	case ast.RETURN:
		fr.tailCall = !fr.eng.NoTCO && !fr.inThunk
		raw, tag, err := fr.genExpr(n.Children[0])
		fr.tailCall = false
		if err != nil {
			return llvm.Value{}, 0, false, err
		}
		if fr.inThunk {
			fr.b.CreateStore(raw, fr.thunkReturn)
			fr.b.CreateBr(fr.thunkDoneBlk)
			return raw, tag, true, nil
		}
		fr.createTaggedRet(raw, tag)
		return raw, tag, true, nil

	default:
		// A bare expression statement: evaluated for its value, which becomes this
		// statement's fall-through result if it turns out to be last in its sequence.
		raw, tag, err := fr.genExpr(n)
		return raw, tag, false, err
	}
}

// storeLocal allocates (on first assignment) or reuses the alloca backing name in the
// innermost frame and stores raw/tag into it, mirroring transform.go's genStore/genDeclaration
// pairing (here franz has no separate declaration statement: first assignment declares).
func (fr *frame) storeLocal(name string, raw llvm.Value, tag Tag) {
	if alloca, _, ok := fr.st.lookup(name); ok {
		fr.b.CreateStore(raw, alloca)
		fr.st.top().tags[name] = tag
		return
	}
	alloca := fr.b.CreateAlloca(rawType, name)
	fr.b.CreateStore(raw, alloca)
	fr.st.define(name, alloca, tag)
}

// createTaggedRet packs raw/tag into the function's {raw, tag} struct return type and emits
// the terminating ret instruction (transform.go's genReturn, generalized past a single static
// return type).
func (fr *frame) createTaggedRet(raw llvm.Value, tag Tag) {
	packed := llvm.Undef(fr.eng.retTy)
	packed = fr.b.CreateInsertValue(packed, raw, 0, "")
	packed = fr.b.CreateInsertValue(packed, llvm.ConstInt(tagType, uint64(tag), false), 1, "")
	fr.b.CreateRet(packed)
}

// genExpr lowers an expression node to its raw i64 ABI slot and its static Tag, the core
// recursive entry point analogous to transform.go's genExpression but generalized from a
// binary/unary-operator-only expression grammar to franz's INT/FLOAT/STRING literals,
// IDENTIFIER loads, APPLICATION (primitive op, special form, or closure call), FUNCTION
// literals (closure construction) and LIST literals.
func (fr *frame) genExpr(n *ast.Node) (llvm.Value, Tag, error) {
	switch n.Op {
	case ast.INT:
		return llvm.ConstInt(rawType, uint64(n.Data.(int64)), true), TagInt, nil

	case ast.FLOAT:
		c := llvm.ConstFloat(llvm.DoubleType(), n.Data.(float64))
		return fr.b.CreateBitCast(c, rawType, ""), TagFloat, nil

	case ast.STRING:
		g := fr.eng.internString(fr.b, n.Data.(string))
		return fr.b.CreatePtrToInt(g, rawType, ""), TagString, nil

	case ast.IDENTIFIER:
		return fr.loadIdentifier(n.Data.(string))

	case ast.FUNCTION:
		return fr.genClosureLiteral(n)

	case ast.LIST:
		return fr.genListLiteral(n)

	case ast.APPLICATION:
		return fr.genApplication(n)

	case ast.QUALIFIED:
		// ns.member: resolved through the namespace value's dict at runtime (src/interp and
		// src/modcache own namespace construction; lowering treats it as an identifier load
		// of the dotted name already flattened by the parser).
		return fr.loadIdentifier(n.Data.(string))

	default:
		return llvm.Value{}, 0, fmt.Errorf("line %d: cannot lower node of kind %s to a value", n.Line, n.Op)
	}
}

// loadIdentifier resolves name against the local scope chain, then the closure's captured
// environment, mirroring transform.go's genLoad local-then-global fallback.
func (fr *frame) loadIdentifier(name string) (llvm.Value, Tag, error) {
	if alloca, tag, ok := fr.st.lookup(name); ok {
		return fr.b.CreateLoad(alloca, ""), tag, nil
	}
	if fr.envFields != nil {
		if idx, ok := fr.envFields[name]; ok {
			rawField := fr.b.CreateStructGEP(fr.envPtr, idx*2, "")
			tagField := fr.b.CreateStructGEP(fr.envPtr, idx*2+1, "")
			rawVal := fr.b.CreateLoad(rawField, "")
			tagVal := fr.b.CreateLoad(tagField, "")
			_ = tagVal // Static Tag tracking stops at env capture; runtime tag travels in tagVal for dynamic checks.
			return rawVal, TagVoid, nil
		}
	}
	return llvm.Value{}, 0, fmt.Errorf("undefined identifier %q", name)
}
