package interp

import (
	"fmt"

	"franz/src/ast"
	"franz/src/scope"
	"franz/src/value"
)

// combinators implements spec.md §4.8's higher-order collection operations for the
// interpreted path, mirroring src/lower/combinator.go's genMap/genFilter/genReduce but
// walking src/value's List directly instead of synthesizing a runtime-call loop, since the
// interpreter already holds live *value.List pointers rather than raw/tag pairs crossing an
// ABI boundary.
var combinators map[string]func(in *Interpreter, line int, args []*ast.Node, s *scope.Scope) (*value.Value, error)

// init fills combinators; a composite literal in the declaration would form an initialization
// cycle, since evalApplication reads the table and is reached from the functions it lists.
func init() {
	combinators = map[string]func(in *Interpreter, line int, args []*ast.Node, s *scope.Scope) (*value.Value, error){
		"map":    (*Interpreter).evalMap,
		"filter": (*Interpreter).evalFilter,
		"reduce": (*Interpreter).evalReduce,
	}
}

func (in *Interpreter) callArity(line int, fn *value.Value, full []*value.Value) (*value.Value, error) {
	if fn.Tag == value.FUNCTION {
		cl := fn.Payload.(*Closure)
		n := len(cl.Node.Children) - 1
		if n < len(full) {
			full = full[:n]
		}
	}
	return in.call(line, fn, full)
}

func (in *Interpreter) evalMap(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("map expects (list closure), got %d arguments", len(args))
	}
	listVal, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	fn, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	list := listVal.Payload.(*value.List)
	out := make([]*value.Value, 0, list.Length())
	for i1 := int64(0); i1 < list.Length(); i1++ {
		elem, _ := list.Get(i1)
		mapped, err := in.callArity(line, fn, []*value.Value{elem, value.Int(i1)})
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return value.NewList(out), nil
}

func (in *Interpreter) evalFilter(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("filter expects (list closure), got %d arguments", len(args))
	}
	listVal, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	fn, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	list := listVal.Payload.(*value.List)
	out := make([]*value.Value, 0, list.Length())
	for i1 := int64(0); i1 < list.Length(); i1++ {
		elem, _ := list.Get(i1)
		keep, err := in.callArity(line, fn, []*value.Value{elem, value.Int(i1)})
		if err != nil {
			return nil, err
		}
		if truthy(keep) {
			out = append(out, elem.Retain())
		}
	}
	return value.NewList(out), nil
}

// evalReduce implements `(reduce list closure init)`, invoking closure with (acc, element,
// index) — trimmed to however many parameters the closure literal actually declares, so both
// spec.md's 3-argument `{acc x i -> ...}` scenario and a plain 2-argument fold work.
func (in *Interpreter) evalReduce(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("reduce expects (list closure init), got %d arguments", len(args))
	}
	listVal, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	fn, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	acc, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	list := listVal.Payload.(*value.List)
	for i1 := int64(0); i1 < list.Length(); i1++ {
		elem, _ := list.Get(i1)
		acc, err = in.callArity(line, fn, []*value.Value{acc, elem, value.Int(i1)})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
