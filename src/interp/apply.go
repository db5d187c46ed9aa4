package interp

import (
	"fmt"

	"franz/src/ast"
	"franz/src/errstate"
	"franz/src/scope"
	"franz/src/value"
)

// arithOps mirrors src/lower/expr.go's arithOps table so both evaluation paths agree on what
// "add"/"sub"/"mul"/"mod" mean for INT/FLOAT operands; "div" is handled by evalDiv instead, so
// that a zero divisor raises DIVISION_BY_ZERO.
var arithOps = map[string]func(a, c float64) float64{
	"add": func(a, c float64) float64 { return a + c },
	"sub": func(a, c float64) float64 { return a - c },
	"mul": func(a, c float64) float64 { return a * c },
	"mod": func(a, c float64) float64 { return float64(int64(a) % int64(c)) },
}

// cmpOps mirrors src/lower/expr.go's cmpOps table.
var cmpOps = map[string]func(a, c float64) bool{
	"lt": func(a, c float64) bool { return a < c },
	"le": func(a, c float64) bool { return a <= c },
	"gt": func(a, c float64) bool { return a > c },
	"ge": func(a, c float64) bool { return a >= c },
	"eq": func(a, c float64) bool { return a == c },
	"ne": func(a, c float64) bool { return a != c },
}

// evalApplication evaluates an APPLICATION node: a special form (if/loop/break/try/catch/
// error/match/variant/use family), a primitive arithmetic/comparison op, a combinator
// (map/filter/reduce), or a general closure/native-function call.
func (in *Interpreter) evalApplication(n *ast.Node, s *scope.Scope) (*value.Value, error) {
	callee := n.Children[0]
	args := n.Children[1:]

	if callee.Op == ast.IDENTIFIER {
		name, _ := callee.Data.(string)
		switch name {
		case "if":
			return in.evalIf(args, s)
		case "loop":
			return in.evalLoop(n.Line, args, s)
		case "while":
			return in.evalWhile(n.Line, args, s)
		case "break":
			return in.evalBreak(n.Line, args, s)
		case "try":
			return in.evalTry(args, s)
		case "catch":
			return in.evalCatch(args, s)
		case "error":
			return in.evalError(n.Line, args, s)
		case "is":
			return in.evalIs(n.Line, args, s)
		case "match":
			return in.evalMatch(n.Line, args, s)
		case "variant":
			return in.evalVariant(args, s)
		case "ref":
			return in.evalRefNew(args, s)
		case "deref":
			return in.evalDeref(n.Line, args, s)
		case "set_ref":
			return in.evalSetRef(n.Line, args, s)
		case "use":
			return in.evalUse(n.Line, args, s)
		case "use_as":
			return in.evalUseAs(n.Line, args, s)
		case "use_with":
			return in.evalUseWith(n.Line, args, s)
		case "eval":
			return in.evalEvalBuiltin(n.Line, args, s)
		}
		if fn, ok := arithOps[name]; ok && len(args) == 2 {
			return in.evalArith(n.Line, fn, args, s)
		}
		if name == "div" && len(args) == 2 {
			return in.evalDiv(n.Line, args, s)
		}
		if fn, ok := cmpOps[name]; ok && len(args) == 2 {
			return in.evalCmp(n.Line, fn, args, s)
		}
		if fn, ok := combinators[name]; ok {
			return fn(in, n.Line, args, s)
		}
		if fn, ok := listDictBuiltins[name]; ok {
			return fn(in, n.Line, args, s)
		}
	}

	calleeVal, err := in.eval(callee, s)
	if err != nil {
		return nil, err
	}
	argVals, err := in.evalArgs(args, s)
	if err != nil {
		return nil, err
	}
	return in.call(n.Line, calleeVal, argVals)
}

func (in *Interpreter) evalArgs(args []*ast.Node, s *scope.Scope) ([]*value.Value, error) {
	vals := make([]*value.Value, 0, len(args))
	for _, a := range args {
		v, err := in.eval(a, s)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// call invokes callee (a FUNCTION closure or a NATIVE_FUNCTION) with already-evaluated args.
func (in *Interpreter) call(line int, callee *value.Value, args []*value.Value) (*value.Value, error) {
	switch callee.Tag {
	case value.NATIVE_FUNCTION:
		fn := callee.Payload.(value.NativeFunc)
		v, err := fn(args)
		if err != nil {
			return nil, err
		}
		return v, nil
	case value.FUNCTION:
		cl := callee.Payload.(*Closure)
		params := cl.Node.Children[:len(cl.Node.Children)-1]
		body := cl.Node.Children[len(cl.Node.Children)-1]
		if len(params) != len(args) {
			in.raise(errstate.ARITY, line, fmt.Sprintf("closure expects %d argument(s), got %d", len(params), len(args)))
			return nil, fmt.Errorf("arity mismatch")
		}
		callScope := scope.New(cl.Env)
		defer callScope.Release()
		for i1, p := range params {
			name, _ := p.Data.(string)
			callScope.Define(name, args[i1], false)
		}
		return in.evalStatement(body, callScope)
	default:
		in.raise(errstate.TYPE, line, fmt.Sprintf("%s value is not callable", callee.Tag))
		return nil, fmt.Errorf("not callable")
	}
}

func (in *Interpreter) evalIf(args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("if expects (cond then else), got %d arguments", len(args))
	}
	cond, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	branch := args[2]
	if truthy(cond) {
		branch = args[1]
	}
	v, err := in.eval(branch, s)
	if err != nil || branch.Op != ast.FUNCTION {
		return v, err
	}
	// A `{...}` branch is a block: run it and yield its result, as src/lower's genThunk does.
	return in.call(branch.Line, v, nil)
}

// truthy treats VOID and numeric zero as false, everything else (including empty strings) as
// true, matching the lowered path's "nonzero raw bits" test in genIf.
func truthy(v *value.Value) bool {
	switch v.Tag {
	case value.VOID:
		return false
	case value.INT:
		return v.Payload.(int64) != 0
	case value.FLOAT:
		return v.Payload.(float64) != 0
	default:
		return true
	}
}

func (in *Interpreter) evalArith(line int, fn func(a, c float64) float64, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	af, aFloat, err := numeric(in, line, a)
	if err != nil {
		return nil, err
	}
	cf, cFloat, err := numeric(in, line, c)
	if err != nil {
		return nil, err
	}
	r := fn(af, cf)
	if aFloat || cFloat {
		return value.Float(r), nil
	}
	return value.Int(int64(r)), nil
}

func (in *Interpreter) evalDiv(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	af, aFloat, err := numeric(in, line, a)
	if err != nil {
		return nil, err
	}
	cf, cFloat, err := numeric(in, line, c)
	if err != nil {
		return nil, err
	}
	if cf == 0 {
		in.raise(errstate.DIVISION_BY_ZERO, line, "division by zero")
		return nil, fmt.Errorf("division by zero")
	}
	if aFloat || cFloat {
		return value.Float(af / cf), nil
	}
	return value.Int(int64(af) / int64(cf)), nil
}

func numeric(in *Interpreter, line int, v *value.Value) (float64, bool, error) {
	switch v.Tag {
	case value.INT:
		return float64(v.Payload.(int64)), false, nil
	case value.FLOAT:
		return v.Payload.(float64), true, nil
	default:
		in.raise(errstate.TYPE, line, fmt.Sprintf("expected a numeric value, got %s", v.Tag))
		return 0, false, fmt.Errorf("not numeric")
	}
}

func (in *Interpreter) evalCmp(line int, fn func(a, c float64) bool, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	af, _, err := numeric(in, line, a)
	if err != nil {
		return nil, err
	}
	cf, _, err := numeric(in, line, c)
	if err != nil {
		return nil, err
	}
	if fn(af, cf) {
		return value.Int(1), nil
	}
	return value.Int(0), nil
}

// evalIs implements the structural-equality builtin `(is a b)` via value.Is, distinct from
// the numeric "eq" comparison above (spec.md §4.3's Is covers STRING/LIST/DICT/REF too).
func (in *Interpreter) evalIs(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("is expects exactly two arguments")
	}
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if value.Is(a, c) {
		return value.Int(1), nil
	}
	return value.Int(0), nil
}
