package interp

import (
	"fmt"

	"franz/src/ast"
	"franz/src/scope"
	"franz/src/value"
)

// loopBreak is the panic payload `break` sends to unwind to its innermost enclosing loop;
// evalLoop recovers exactly this type, generalizing src/lower/control.go's loop_return alloca
// slot (a compile-time construct) into a dynamic non-local exit, since an AST-walking
// evaluator has no basic blocks to branch to.
type loopBreak struct{ value *value.Value }

// evalLoop implements the counted loop `(loop n body)` (spec.md §4.7): n is evaluated once as
// an integer bound, and body — a one-argument closure — is called once per index 0..n-1 with
// the current index bound as its sole argument, mirroring src/lower/control.go's genLoop
// counter-alloca/cond/body/incr/exit structure without the basic blocks an AST-walking
// evaluator has no use for. A truthy result stops the loop immediately and becomes its value
// (spec.md §8's `(loop 10 {i -> ...}) == 5` scenario); running all n iterations without one
// yields void.
func (in *Interpreter) evalLoop(line int, args []*ast.Node, s *scope.Scope) (result *value.Value, err error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("loop expects (count body), got %d arguments", len(args))
	}
	defer func() {
		if r := recover(); r != nil {
			if lb, ok := r.(loopBreak); ok {
				result, err = lb.value, nil
				return
			}
			panic(r)
		}
	}()

	count, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if count.Tag != value.INT {
		return nil, fmt.Errorf("loop expects an integer count, got %s", count.Tag)
	}
	body, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	bound := count.Payload.(int64)
	for i1 := int64(0); i1 < bound; i1++ {
		r, err := in.call(line, body, []*value.Value{value.Int(i1)})
		if err != nil {
			return nil, err
		}
		if truthy(r) {
			return r, nil
		}
	}
	return value.Void(), nil
}

// evalWhile implements the condition loop `(while cond body)` (spec.md §4.7): cond and body
// are each zero-argument thunks, re-evaluated by calling through at the head of every
// iteration, mirroring src/lower/control.go's genWhile.
func (in *Interpreter) evalWhile(line int, args []*ast.Node, s *scope.Scope) (result *value.Value, err error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("while expects (cond body), got %d arguments", len(args))
	}
	defer func() {
		if r := recover(); r != nil {
			if lb, ok := r.(loopBreak); ok {
				result, err = lb.value, nil
				return
			}
			panic(r)
		}
	}()

	cond, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	body, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	for {
		condResult, err := in.call(line, cond, nil)
		if err != nil {
			return nil, err
		}
		if !truthy(condResult) {
			return value.Void(), nil
		}
		if _, err := in.call(line, body, nil); err != nil {
			return nil, err
		}
	}
}

func (in *Interpreter) evalBreak(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("break expects exactly one value")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	panic(loopBreak{value: v})
}
