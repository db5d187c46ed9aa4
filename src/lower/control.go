package lower

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// genIf lowers the `(if cond then else)` special form with real conditional branches and a
// PHI node merging the two arms' results, mirroring transform.go's genIf structure
// (thn/els/conv basic blocks) generalized from a statement-sequence-only THEN/ELSE to an
// expression that yields a value both arms must agree on reaching, and extended to the
// mandatory else arm: spec.md's if is always an expression, so (unlike transform.go's
// IF-THEN-only shape) a two-argument call is a syntax error here rather than an omitted else.
func (fr *frame) genIf(args []*ast.Node) (llvm.Value, Tag, error) {
	if len(args) != 3 {
		return llvm.Value{}, 0, fmt.Errorf("if expects (cond then else), got %d arguments", len(args))
	}
	condRaw, _, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	cond := fr.b.CreateICmp(llvm.IntNE, condRaw, llvm.ConstInt(rawType, 0, false), "")

	thenBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	elseBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	convBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")

	fr.b.CreateCondBr(cond, thenBlk, elseBlk)

	fr.b.SetInsertPointAtEnd(thenBlk)
	thenRaw, thenTag, err := fr.genThunk(args[1])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	thenEnd := fr.b.GetInsertBlock()
	fr.b.CreateBr(convBlk)

	fr.b.SetInsertPointAtEnd(elseBlk)
	elseRaw, _, err := fr.genThunk(args[2])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	elseEnd := fr.b.GetInsertBlock()
	fr.b.CreateBr(convBlk)

	fr.b.SetInsertPointAtEnd(convBlk)
	phi := fr.b.CreatePHI(rawType, "")
	phi.AddIncoming([]llvm.Value{thenRaw, elseRaw}, []llvm.BasicBlock{thenEnd, elseEnd})
	return phi, thenTag, nil
}

// genThunk evaluates n as an if/while block argument: spec.md's `{...}` braces always parse to
// a nullary FUNCTION node (ast/parser.go's parseFunction), but a bare expression (no braces) is
// also accepted at these call sites (genApplication's own test suite exercises the bare form).
// A FUNCTION node's statements are inlined directly into the current function rather than
// compiled as a separate closure: a real closure call would put its body in a different LLVM
// function, where a `<-` would need to emit a real ret (fine) but a `break` nested inside it
// could no longer reach the enclosing loop's loopReturn/loopBreakBlk, which live in the calling
// function. Inlining keeps then/else/cond/body sharing the same function, scope, and loop
// state as their enclosing if/while, the way a C preprocessor macro's body stays in its
// caller's stack frame. engine.go's collectFunctions knows to skip these same nodes so they
// are never also compiled as unreachable standalone closures.
func (fr *frame) genThunk(n *ast.Node) (llvm.Value, Tag, error) {
	if n.Op != ast.FUNCTION {
		return fr.genExpr(n)
	}
	body := n.Children[len(n.Children)-1]

	outerReturn, outerDone, outerInThunk := fr.thunkReturn, fr.thunkDoneBlk, fr.inThunk
	fr.thunkReturn = fr.b.CreateAlloca(rawType, "thunk_return")
	fr.b.CreateStore(llvm.ConstInt(rawType, 0, false), fr.thunkReturn)
	fr.thunkDoneBlk = fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	fr.inThunk = true

	raw, _, ret, err := fr.genStatement(body)
	if err != nil {
		return llvm.Value{}, 0, err
	}
	if !ret {
		fr.b.CreateStore(raw, fr.thunkReturn)
		fr.b.CreateBr(fr.thunkDoneBlk)
	}

	doneBlk := fr.thunkDoneBlk
	fr.b.SetInsertPointAtEnd(doneBlk)
	result := fr.b.CreateLoad(fr.thunkReturn, "")

	fr.thunkReturn, fr.thunkDoneBlk, fr.inThunk = outerReturn, outerDone, outerInThunk
	return result, TagVoid, nil
}

// genLoop lowers the counted loop `(loop n body)` of spec.md §4.7: an i64 counter alloca and
// cond/body/incr/exit basic blocks, with the current counter value bound as the body closure's
// one declared parameter each iteration (declareClosureFunc gives it exactly that one
// (raw, tag) pair plus env, so it is called through genClosureCallRaw with a single tagged
// argument rather than the zero-argument thunk convention genWhile uses). A truthy body result
// stops the loop immediately and becomes its value (spec.md §8's `(loop 10 {i -> ...}) == 5`);
// a falsy result continues to the next iteration. Running the full n iterations without a
// truthy result yields loop_return's untouched initial value, 0.
func (fr *frame) genLoop(args []*ast.Node) (llvm.Value, Tag, error) {
	if len(args) != 2 {
		return llvm.Value{}, 0, fmt.Errorf("loop expects (count body), got %d arguments", len(args))
	}
	countRaw, _, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	bodyRaw, bodyTag, err := fr.genExpr(args[1])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	if bodyTag != TagClosure {
		return llvm.Value{}, 0, fmt.Errorf("line %d: loop body must be a one-parameter closure", args[1].Line)
	}

	cond := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	body := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	stop := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	incr := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	exit := fr.eng.Ctx.AddBasicBlock(fr.fn, "")

	outerLoopReturn, outerBreakBlk, outerHasLoop := fr.loopReturn, fr.loopBreakBlk, fr.hasLoop
	fr.loopReturn = fr.b.CreateAlloca(rawType, "loop_return")
	fr.b.CreateStore(llvm.ConstInt(rawType, 0, false), fr.loopReturn)
	fr.loopBreakBlk = exit
	fr.hasLoop = true

	counter := fr.b.CreateAlloca(rawType, "i")
	fr.b.CreateStore(llvm.ConstInt(rawType, 0, false), counter)
	fr.b.CreateBr(cond)

	fr.b.SetInsertPointAtEnd(cond)
	idx := fr.b.CreateLoad(counter, "")
	keepGoing := fr.b.CreateICmp(llvm.IntSLT, idx, countRaw, "")
	fr.b.CreateCondBr(keepGoing, body, exit)

	fr.b.SetInsertPointAtEnd(body)
	idxTag := llvm.ConstInt(tagType, uint64(TagInt), false)
	result := fr.genClosureCallRaw(bodyRaw, []llvm.Value{idx, idxTag})
	resultRaw := fr.b.CreateExtractValue(result, 0, "")
	truthy := fr.b.CreateICmp(llvm.IntNE, resultRaw, llvm.ConstInt(rawType, 0, false), "")
	fr.b.CreateCondBr(truthy, stop, incr)

	fr.b.SetInsertPointAtEnd(stop)
	fr.b.CreateStore(resultRaw, fr.loopReturn)
	fr.b.CreateBr(exit)

	fr.b.SetInsertPointAtEnd(incr)
	next := fr.b.CreateAdd(idx, llvm.ConstInt(rawType, 1, false), "")
	fr.b.CreateStore(next, counter)
	fr.b.CreateBr(cond)

	fr.b.SetInsertPointAtEnd(exit)
	loopResult := fr.b.CreateLoad(fr.loopReturn, "")

	fr.loopReturn, fr.loopBreakBlk, fr.hasLoop = outerLoopReturn, outerBreakBlk, outerHasLoop
	return loopResult, TagVoid, nil
}

// genWhile lowers the condition loop `(while cond body)` of spec.md §4.7: cond and body are
// each zero-argument thunk blocks (spec.md §4.2's `{...}` syntax, or a bare expression; see
// genThunk). Both are inlined once by genThunk, cond into the loop's head block and body into
// its body block, and the branch back to head re-runs that inlined code every iteration.
func (fr *frame) genWhile(args []*ast.Node) (llvm.Value, Tag, error) {
	if len(args) != 2 {
		return llvm.Value{}, 0, fmt.Errorf("while expects (cond body), got %d arguments", len(args))
	}

	head := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	body := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	conv := fr.eng.Ctx.AddBasicBlock(fr.fn, "")

	outerLoopReturn, outerBreakBlk, outerHasLoop := fr.loopReturn, fr.loopBreakBlk, fr.hasLoop
	fr.loopReturn = fr.b.CreateAlloca(rawType, "loop_return")
	fr.b.CreateStore(llvm.ConstInt(rawType, 0, false), fr.loopReturn)
	fr.loopBreakBlk = conv
	fr.hasLoop = true

	fr.b.CreateBr(head)
	fr.b.SetInsertPointAtEnd(head)

	condRaw, _, err := fr.genThunk(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	cond := fr.b.CreateICmp(llvm.IntNE, condRaw, llvm.ConstInt(rawType, 0, false), "")
	fr.b.CreateCondBr(cond, body, conv)

	fr.b.SetInsertPointAtEnd(body)
	if _, _, err := fr.genThunk(args[1]); err != nil {
		return llvm.Value{}, 0, err
	}
	fr.b.CreateBr(head)

	fr.b.SetInsertPointAtEnd(conv)
	result := fr.b.CreateLoad(fr.loopReturn, "")

	fr.loopReturn, fr.loopBreakBlk, fr.hasLoop = outerLoopReturn, outerBreakBlk, outerHasLoop
	return result, TagVoid, nil
}

// genBreak lowers `(break value)` inside a loop body: stores value into the innermost loop's
// loop_return slot and branches directly to that loop's convergence block.
func (fr *frame) genBreak(args []*ast.Node) (llvm.Value, Tag, error) {
	if !fr.hasLoop {
		return llvm.Value{}, 0, fmt.Errorf("break used outside of a loop")
	}
	if len(args) != 1 {
		return llvm.Value{}, 0, fmt.Errorf("break expects exactly one value")
	}
	raw, tag, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}
	fr.b.CreateStore(raw, fr.loopReturn)
	fr.b.CreateBr(fr.loopBreakBlk)

	// break does not fall through; subsequent codegen in the same basic block (there should
	// be none in well-formed source) would be unreachable. A fresh unreachable block keeps
	// the builder's insert point valid for any caller that doesn't check the returned bool.
	unreachable := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	fr.b.SetInsertPointAtEnd(unreachable)
	return raw, tag, nil
}
