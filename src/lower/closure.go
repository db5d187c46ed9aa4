package lower

import (
	"fmt"
	"sort"

	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// envStructType builds the environment struct type for a closure capturing the free
// variables in names, in sorted order for a deterministic field layout: one {raw, tag} pair
// per captured variable, the by-value snapshot spec.md §4.6 requires.
func envStructType(ctx llvm.Context, names []string) llvm.Type {
	fields := make([]llvm.Type, 0, len(names)*2)
	for range names {
		fields = append(fields, rawType, tagType)
	}
	return llvm.StructTypeInContext(ctx, fields, false)
}

// sortedFreeVars returns fn's free variables (from ast.Analyze) in a stable order.
func sortedFreeVars(fn *ast.Node) []string {
	names := make([]string, 0, len(fn.FreeVars))
	for name := range fn.FreeVars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// declareClosureFunc declares the LLVM function backing a FUNCTION literal: one tagged
// {raw, tag} parameter pair per formal parameter, plus a trailing env_ptr parameter, and the
// {raw, tag} struct return type retType, mirroring transform.go's genFuncHeader generalized
// from fixed static parameter types to the tagged ABI of spec.md §4.6.
func (e *Engine) declareClosureFunc(fn *ast.Node) (llvm.Value, error) {
	params := fn.Children[:len(fn.Children)-1]
	paramTypes := make([]llvm.Type, 0, len(params)*2+1)
	for range params {
		paramTypes = append(paramTypes, rawType, tagType)
	}
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	paramTypes = append(paramTypes, i8ptr) // env_ptr

	ftyp := llvm.FunctionType(e.retTy, paramTypes, false)
	name := fmt.Sprintf("franz_closure_%d", e.ordinals[fn])
	header := llvm.AddFunction(e.Module, name, ftyp)
	return header, nil
}

// genClosureBody generates header's body from fn's AST (transform.go's genFuncBody,
// generalized to unpack the tagged parameter ABI into the new frame's scope and to install
// the env_ptr parameter for free-variable lookups).
func (e *Engine) genClosureBody(b llvm.Builder, header llvm.Value, fn *ast.Node) error {
	bb := e.Ctx.AddBasicBlock(header, "")
	b.SetInsertPointAtEnd(bb)

	st := newScopeStack()
	st.push()

	params := fn.Children[:len(fn.Children)-1]
	llvmParams := header.Params()
	for i1, p := range params {
		name, _ := p.Data.(string)
		raw := llvmParams[i1*2]
		tagParam := llvmParams[i1*2+1]
		_ = tagParam // Static tag checking is the optional type checker's job (src/typecheck).
		alloca := b.CreateAlloca(rawType, name)
		b.CreateStore(raw, alloca)
		st.define(name, alloca, TagInt)
	}
	envPtr := llvmParams[len(llvmParams)-1]

	names := sortedFreeVars(fn)
	envFields := make(map[string]int, len(names))
	for i1, name := range names {
		envFields[name] = i1
	}
	envTy := envStructType(e.Ctx, names)
	typedEnvPtr := b.CreateBitCast(envPtr, llvm.PointerType(envTy, 0), "")

	fr := &frame{b: b, fn: header, st: st, eng: e, closureNode: fn, envPtr: typedEnvPtr, envFields: envFields}

	body := fn.Children[len(fn.Children)-1]
	raw, tag, ret, err := fr.genStatement(body)
	if err != nil {
		return err
	}
	if !ret {
		// franz has no implicit-vs-explicit-return distinction (src/interp's evalStatement
		// always yields its last child's value): a body with no top-level `<-` still returns
		// its last expression's value, not VOID.
		fr.createTaggedRet(raw, tag)
	}
	return nil
}

// genClosureLiteral builds a closure record for the FUNCTION node fn at the current insert
// point: it allocates the environment struct, snapshots each free variable's current
// value/tag into it, and packs {func_ptr, env_ptr, return_tag} into the closure record
// (spec.md §4.6).
func (fr *frame) genClosureLiteral(fn *ast.Node) (llvm.Value, Tag, error) {
	header, ok := fr.eng.globals.get(fn)
	if !ok {
		return llvm.Value{}, 0, fmt.Errorf("line %d: closure literal was not pre-declared", fn.Line)
	}

	names := sortedFreeVars(fn)
	envTy := envStructType(fr.eng.Ctx, names)
	envAlloca := fr.b.CreateAlloca(envTy, "env")
	for i1, name := range names {
		raw, tag, err := fr.loadIdentifier(name)
		if err != nil {
			return llvm.Value{}, 0, fmt.Errorf("line %d: capturing free variable %q: %s", fn.Line, name, err)
		}
		rawSlot := fr.b.CreateStructGEP(envAlloca, i1*2, "")
		fr.b.CreateStore(raw, rawSlot)
		tagSlot := fr.b.CreateStructGEP(envAlloca, i1*2+1, "")
		fr.b.CreateStore(llvm.ConstInt(tagType, uint64(tag), false), tagSlot)
	}

	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(fr.eng.Ctx), 0)
	envPtr := fr.b.CreateBitCast(envAlloca, i8ptr, "")
	funcPtr := fr.b.CreateBitCast(header, i8ptr, "")

	rec := llvm.Undef(fr.eng.closRec)
	rec = fr.b.CreateInsertValue(rec, funcPtr, 0, "")
	rec = fr.b.CreateInsertValue(rec, envPtr, 1, "")
	rec = fr.b.CreateInsertValue(rec, llvm.ConstInt(rawType, uint64(TagVoid), false), 2, "")

	recAlloca := fr.b.CreateAlloca(fr.eng.closRec, "closure")
	fr.b.CreateStore(rec, recAlloca)
	raw := fr.b.CreatePtrToInt(recAlloca, rawType, "")
	return raw, TagClosure, nil
}

// genClosureCall emits the call sequence for invoking a closure value (raw/tag TagClosure)
// with args, unpacking the closure record, calling through its func_ptr with the tagged
// argument convention, and returning the unpacked {raw, tag} result (spec.md §4.6).
func (fr *frame) genClosureCall(raw llvm.Value, args []*ast.Node) (llvm.Value, Tag, error) {
	isTail := fr.tailCall
	fr.tailCall = false // argument evaluation below is never itself in tail position.
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(fr.eng.Ctx), 0)
	recPtr := fr.b.CreateIntToPtr(raw, llvm.PointerType(fr.eng.closRec, 0), "")

	funcPtrField := fr.b.CreateStructGEP(recPtr, 0, "")
	funcPtr := fr.b.CreateLoad(funcPtrField, "")
	envPtrField := fr.b.CreateStructGEP(recPtr, 1, "")
	envPtr := fr.b.CreateLoad(envPtrField, "")

	callArgs := make([]llvm.Value, 0, len(args)*2+1)
	for _, a := range args {
		argRaw, argTag, err := fr.genExpr(a)
		if err != nil {
			return llvm.Value{}, 0, err
		}
		callArgs = append(callArgs, argRaw, llvm.ConstInt(tagType, uint64(argTag), false))
	}
	callArgs = append(callArgs, envPtr)

	paramTypes := make([]llvm.Type, 0, len(callArgs))
	for range args {
		paramTypes = append(paramTypes, rawType, tagType)
	}
	paramTypes = append(paramTypes, i8ptr)
	ftyp := llvm.FunctionType(fr.eng.retTy, paramTypes, false)
	typedFuncPtr := fr.b.CreateBitCast(funcPtr, llvm.PointerType(ftyp, 0), "")

	result := fr.b.CreateCall(typedFuncPtr, callArgs, "")
	if isTail {
		result.SetTailCall(true)
	}
	resultRaw := fr.b.CreateExtractValue(result, 0, "")
	resultTagVal := fr.b.CreateExtractValue(result, 1, "")
	_ = resultTagVal // Dynamic tag is carried at runtime; static Tag here is the closure's declared return tag.
	return resultRaw, TagVoid, nil
}
