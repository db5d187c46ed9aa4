// Package lower transforms a franz syntax tree (src/ast) into LLVM IR via tinygo.org/x/go-llvm,
// grounded in the teacher compiler's ir/llvm/transform.go: the same Builder/Module-threading
// style, the same global symbol table pattern, and the same genX naming convention, adapted
// from a statically typed little arithmetic language onto spec.md's universal tagged value.
//
// abi.go defines the calling convention spec.md §4.6 requires: because every franz value is
// dynamically typed, a lowered call cannot pass a single typed LLVM value per argument the
// way the teacher's genExpression call lowering does (transform.go genExpression's CreateCall
// path assumes a fixed static parameter type per callee). Instead every argument crosses a
// call boundary as a (raw_value, type_tag) pair: raw_value is an i64 holding either a integer,
// a double bit-cast into an i64, or a pointer bit-cast into an i64, and type_tag is an i8
// naming which. The callee's prologue unpacks each pair before using the value.
package lower

import "tinygo.org/x/go-llvm"

// Tag mirrors value.Tag's ordinals so a lowered program's runtime tag checks agree with the
// interpreted/host side without either package importing the other (lower only needs the
// ordinal values, not the Go-side Value representation itself).
type Tag int64

const (
	TagInt Tag = iota
	TagFloat
	TagString
	TagVoid
	TagFunction
	TagNativeFunction
	TagList
	TagDict
	TagNamespace
	TagClosure
	TagRef
)

// rawType is the universal raw-value slot type: a 64-bit integer wide enough to hold an
// int64, a float64 bit pattern, or a pointer (on every target architecture franz supports).
var rawType = llvm.Int64Type()

// tagType is the type_tag slot type.
var tagType = llvm.Int8Type()

// closureRecordType builds the three-field closure record of spec.md §3.5/§4.6:
// {func_ptr, env_ptr, return_tag}. func_ptr and env_ptr are opaque i8* so one LLVM struct
// type serves every closure regardless of its arity or captured environment layout; the
// environment's actual field layout lives in a parallel i8*-cast struct type built per
// closure (see closure.go's envStructType).
func closureRecordType(ctx llvm.Context) llvm.Type {
	i8ptr := llvm.PointerType(llvm.Int8TypeInContext(ctx), 0)
	return llvm.StructTypeInContext(ctx, []llvm.Type{i8ptr, i8ptr, rawType}, false)
}

// packTagged bitcasts/extends v of LLVM type t into the raw i64 ABI slot alongside its tag
// constant, mirroring the SIToFP/BitCast coercions transform.go's genStore performs when
// storing a value of one static type into a slot declared with another.
func packTagged(b llvm.Builder, v llvm.Value, tag Tag) (raw llvm.Value, tagVal llvm.Value) {
	switch tag {
	case TagInt:
		raw = v
	case TagFloat:
		raw = b.CreateBitCast(v, rawType, "")
	default:
		// Pointer-shaped payloads (STRING/LIST/DICT/NAMESPACE/CLOSURE/REF/NATIVE_FUNCTION/
		// FUNCTION): ptrtoint into the raw slot.
		raw = b.CreatePtrToInt(v, rawType, "")
	}
	tagVal = llvm.ConstInt(tagType, uint64(tag), false)
	return raw, tagVal
}

// unpackTagged reverses packTagged, reconstructing an LLVM value of the type appropriate to
// tag from a raw i64 slot. ptrType is the LLVM pointer type to reconstruct for pointer-shaped
// tags (callers know statically which struct type backs their own payloads).
func unpackTagged(b llvm.Builder, raw llvm.Value, tag Tag, ptrType llvm.Type) llvm.Value {
	switch tag {
	case TagInt:
		return raw
	case TagFloat:
		return b.CreateBitCast(raw, llvm.DoubleType(), "")
	default:
		return b.CreateIntToPtr(raw, ptrType, "")
	}
}
