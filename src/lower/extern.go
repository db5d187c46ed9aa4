package lower

import "tinygo.org/x/go-llvm"

// externList/externListAppend/externListGet/externListLength declare (once per module) the
// C-ABI entry points the embedded runtime (src/runtimelib) exposes for list construction and
// mutation. Lowered IR never allocates a List's backing array itself — spec.md §4.4's
// doubling-capacity growth logic lives once, in the runtime, the same way transform.go leaves
// printf/atoi/atof as declared-not-defined externs for genPrintf/genAtoi/genAtof to return.

func (e *Engine) externFn(name string, ret llvm.Type, params []llvm.Type) llvm.Value {
	if fn := e.Module.NamedFunction(name); !fn.IsNil() {
		return fn
	}
	ftyp := llvm.FunctionType(ret, params, false)
	return llvm.AddFunction(e.Module, name, ftyp)
}

func (e *Engine) externList(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_list_new", i8ptr, nil)
}

func (e *Engine) externListAppend(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_list_append", llvm.VoidType(), []llvm.Type{i8ptr, rawType, tagType})
}

func (e *Engine) externListGet(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_list_get", e.retTy, []llvm.Type{i8ptr, rawType})
}

func (e *Engine) externListLength(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_list_length", rawType, []llvm.Type{i8ptr})
}

func (e *Engine) externDictNew(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_dict_new", i8ptr, nil)
}

func (e *Engine) externDictSet(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("franz_rt_dict_set", llvm.VoidType(),
		[]llvm.Type{i8ptr, rawType, tagType, rawType, tagType})
}

func (e *Engine) externPrintf(b llvm.Builder) llvm.Value {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(e.Ctx), 0)
	return e.externFn("printf", llvm.Int32Type(), []llvm.Type{i8ptr})
}

// externMatchFail declares the runtime's unmatched-variant-tag fatal error, the genMatch
// (variant.go) counterpart to franz_rt_list_get's own out-of-bounds note: lowered IR cannot
// format and raise a TYPE error (spec.md §7) itself, so it calls into the runtime to do it and
// never returns.
func (e *Engine) externMatchFail(b llvm.Builder) llvm.Value {
	return e.externFn("franz_rt_match_fail", llvm.VoidType(), []llvm.Type{rawType})
}
