package lower

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// genVariant lowers `(variant tag v1 v2 ...)` into the two-element list [tag, [v1, v2, ...]]
// spec.md §4.9 defines as a variant's runtime representation, built from the same
// franz_rt_list_* runtime entry points genListLiteral uses for ordinary list literals.
func (fr *frame) genVariant(args []*ast.Node) (llvm.Value, Tag, error) {
	if len(args) < 1 {
		return llvm.Value{}, 0, fmt.Errorf("variant expects at least a tag argument")
	}
	tagRaw, tagTag, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}

	newList := fr.eng.externList(fr.b)
	appendFn := fr.eng.externListAppend(fr.b)

	valuesPtr := fr.b.CreateCall(newList, nil, "")
	for _, a := range args[1:] {
		raw, vt, err := fr.genExpr(a)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		fr.b.CreateCall(appendFn, []llvm.Value{valuesPtr, raw, llvm.ConstInt(tagType, uint64(vt), false)}, "")
	}

	outerPtr := fr.b.CreateCall(newList, nil, "")
	fr.b.CreateCall(appendFn, []llvm.Value{outerPtr, tagRaw, llvm.ConstInt(tagType, uint64(tagTag), false)}, "")
	valuesRaw := fr.b.CreatePtrToInt(valuesPtr, rawType, "")
	fr.b.CreateCall(appendFn, []llvm.Value{outerPtr, valuesRaw, llvm.ConstInt(tagType, uint64(TagList), false)}, "")

	return fr.b.CreatePtrToInt(outerPtr, rawType, ""), TagList, nil
}

// genMatch lowers `(match variantExpr tag1 branch1 tag2 branch2 ...)` (spec.md §4.9): a
// cascade of equality tests against the variant's tag element, branching to the matching arm's
// closure — called with the values list's elements destructured as positional arguments — and
// merging every arm's result with a PHI the way genIf merges its then/else. An unmatched tag
// is a runtime TYPE error (spec.md §7), raised through the embedded runtime since lowered IR
// has no way to format and print one itself. Tag comparison is a raw integer compare: string
// literals intern to one deduplicated global per distinct content (expr.go's internString), so
// two equal-content tag strings are already pointer-equal without a runtime strcmp.
func (fr *frame) genMatch(line int, args []*ast.Node) (llvm.Value, Tag, error) {
	if len(args) < 3 || len(args)%2 != 1 {
		return llvm.Value{}, 0, fmt.Errorf("match expects (variant, tag, branch, ...), got %d arguments", len(args))
	}
	variantRaw, _, err := fr.genExpr(args[0])
	if err != nil {
		return llvm.Value{}, 0, err
	}

	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(fr.eng.Ctx), 0)
	variantPtr := fr.b.CreateIntToPtr(variantRaw, i8ptr, "")
	getFn := fr.eng.externListGet(fr.b)

	tagPair := fr.b.CreateCall(getFn, []llvm.Value{variantPtr, llvm.ConstInt(rawType, 0, false)}, "")
	variantTagRaw := fr.b.CreateExtractValue(tagPair, 0, "")
	valuesPair := fr.b.CreateCall(getFn, []llvm.Value{variantPtr, llvm.ConstInt(rawType, 1, false)}, "")
	valuesPtr := fr.b.CreateIntToPtr(fr.b.CreateExtractValue(valuesPair, 0, ""), i8ptr, "")

	nbranches := (len(args) - 1) / 2
	convBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
	failBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")

	var incomingRaw []llvm.Value
	var incomingBlk []llvm.BasicBlock

	for i1 := 0; i1 < nbranches; i1++ {
		tagNode := args[1+i1*2]
		branchNode := args[2+i1*2]

		branchTagRaw, _, err := fr.genExpr(tagNode)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		hit := fr.b.CreateICmp(llvm.IntEQ, variantTagRaw, branchTagRaw, "")

		armBlk := fr.eng.Ctx.AddBasicBlock(fr.fn, "")
		nextTest := failBlk
		if i1 < nbranches-1 {
			nextTest = fr.eng.Ctx.AddBasicBlock(fr.fn, "")
		}
		fr.b.CreateCondBr(hit, armBlk, nextTest)

		fr.b.SetInsertPointAtEnd(armBlk)
		closureRaw, closureTag, err := fr.genExpr(branchNode)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		if closureTag != TagClosure {
			return llvm.Value{}, 0, fmt.Errorf("line %d: match branch must be a closure", branchNode.Line)
		}
		nparams := 0
		if branchNode.Op == ast.FUNCTION {
			nparams = len(branchNode.Children) - 1
		}
		taggedArgs := make([]llvm.Value, 0, nparams*2)
		for i2 := 0; i2 < nparams; i2++ {
			elemPair := fr.b.CreateCall(getFn, []llvm.Value{valuesPtr, llvm.ConstInt(rawType, uint64(i2), false)}, "")
			taggedArgs = append(taggedArgs,
				fr.b.CreateExtractValue(elemPair, 0, ""), fr.b.CreateExtractValue(elemPair, 1, ""))
		}
		result := fr.genClosureCallRaw(closureRaw, taggedArgs)
		resultRaw := fr.b.CreateExtractValue(result, 0, "")
		armEnd := fr.b.GetInsertBlock()
		fr.b.CreateBr(convBlk)
		incomingRaw = append(incomingRaw, resultRaw)
		incomingBlk = append(incomingBlk, armEnd)

		fr.b.SetInsertPointAtEnd(nextTest)
	}

	matchFail := fr.eng.externMatchFail(fr.b)
	fr.b.CreateCall(matchFail, []llvm.Value{llvm.ConstInt(rawType, uint64(line), true)}, "")
	fr.b.CreateUnreachable()

	fr.b.SetInsertPointAtEnd(convBlk)
	phi := fr.b.CreatePHI(rawType, "")
	phi.AddIncoming(incomingRaw, incomingBlk)
	return phi, TagVoid, nil
}
