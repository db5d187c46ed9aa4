package interp

import (
	"fmt"

	"franz/src/ast"
	"franz/src/capability"
	"franz/src/errstate"
	"franz/src/scope"
	"franz/src/value"
)

// evalTry implements `(try bodyFn handlerFn)`: bodyFn is a zero-argument closure; if
// evaluating it raises into the process-wide error state, the raise is cleared and
// handlerFn is invoked with the error message as its sole argument (spec.md §4.x/§7).
func (in *Interpreter) evalTry(args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("try expects (body, handler), got %d arguments", len(args))
	}
	body, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	handler, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}

	in.Errs.EnterTry()
	result, callErr := in.call(args[0].Line, body, nil)
	in.Errs.LeaveTry()
	if callErr == nil {
		return result, nil
	}
	raised := in.Errs.Current()
	if raised == nil {
		return nil, callErr
	}
	in.Errs.Clear()
	return in.call(args[1].Line, handler, []*value.Value{value.Str(raised.Message)})
}

// evalCatch implements `(catch bodyFn fallback)`: like try, but fallback is an
// already-evaluated value substituted directly for a raised error rather than a handler
// invoked with the error message.
func (in *Interpreter) evalCatch(args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("catch expects (body, fallback), got %d arguments", len(args))
	}
	body, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}

	in.Errs.EnterTry()
	result, callErr := in.call(args[0].Line, body, nil)
	in.Errs.LeaveTry()
	if callErr == nil {
		return result, nil
	}
	if in.Errs.Current() == nil {
		return nil, callErr
	}
	in.Errs.Clear()
	return in.eval(args[1], s)
}

// evalError implements the `error` builtin: raises a CUSTOM error carrying the given message,
// to be caught by an enclosing try/catch or reported fatal at the top level.
func (in *Interpreter) evalError(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("error expects exactly one message argument")
	}
	msg, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	in.raise(errstate.CUSTOM, line, msg.String())
	return nil, fmt.Errorf("%s", msg.String())
}

// evalVariant implements `(variant tag v1 v2 ...)`: a tagged value encoded as the two-element
// list `[tag_string, values_list]` (spec.md §4.9).
func (in *Interpreter) evalVariant(args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("variant expects at least a tag argument")
	}
	tag, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	elems, err := in.evalArgs(args[1:], s)
	if err != nil {
		return nil, err
	}
	values := value.NewList(elems)
	return value.NewList([]*value.Value{tag, values}), nil
}

// evalMatch implements `(match variantVal tag1 fn1 tag2 fn2 ...)`: a cascade of
// string-equality tests against the variant's tag; on a hit, its values list elements are
// destructured and passed as the matching branch closure's arguments (spec.md §4.9).
func (in *Interpreter) evalMatch(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) < 1 || len(args)%2 != 1 {
		return nil, fmt.Errorf("match expects (variant, tag, fn, tag, fn, ...)")
	}
	variant, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if variant.Tag != value.LIST {
		in.raise(errstate.TYPE, line, "match expects a variant (two-element list)")
		return nil, fmt.Errorf("not a variant")
	}
	outer := variant.Payload.(*value.List)
	if outer.Length() != 2 {
		in.raise(errstate.TYPE, line, "match expects a two-element variant list")
		return nil, fmt.Errorf("malformed variant")
	}
	tagVal, _ := outer.Get(0)
	valuesVal, _ := outer.Get(1)
	values := valuesVal.Payload.(*value.List)

	for i1 := 1; i1+1 < len(args); i1 += 2 {
		branchTag, err := in.eval(args[i1], s)
		if err != nil {
			return nil, err
		}
		if !value.Is(tagVal, branchTag) {
			continue
		}
		fn, err := in.eval(args[i1+1], s)
		if err != nil {
			return nil, err
		}
		callArgs := make([]*value.Value, values.Length())
		for i2 := int64(0); i2 < values.Length(); i2++ {
			callArgs[i2], _ = values.Get(i2)
		}
		return in.call(args[i1+1].Line, fn, callArgs)
	}
	in.raise(errstate.TYPE, line, fmt.Sprintf("match: no branch for tag %q", tagVal.String()))
	return nil, fmt.Errorf("unmatched variant tag")
}

// evalRefNew implements `(ref initial)`: allocates a mutable reference cell.
func (in *Interpreter) evalRefNew(args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("ref expects exactly one initial value")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	return value.NewRef(v), nil
}

func (in *Interpreter) evalDeref(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("deref expects exactly one reference argument")
	}
	r, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if r.Tag != value.REF {
		in.raise(errstate.TYPE, line, "deref expects a REF value")
		return nil, fmt.Errorf("not a ref")
	}
	return r.Payload.(*value.Ref).Get(), nil
}

func (in *Interpreter) evalSetRef(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("set_ref expects (ref, value)")
	}
	r, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if r.Tag != value.REF {
		in.raise(errstate.TYPE, line, "set_ref expects a REF value")
		return nil, fmt.Errorf("not a ref")
	}
	v, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	r.Payload.(*value.Ref).Set(v)
	return v, nil
}

// evalUse implements `(use "path")`: resolves and evaluates the module, flattening every
// top-level binding from its scope directly into the caller's scope (SPEC_FULL.md §4.12).
func (in *Interpreter) evalUse(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	path, err := in.evalPathArg(args, line)
	if err != nil {
		return nil, err
	}
	ns, err := in.EvalFile(path)
	if err != nil {
		return nil, err
	}
	for name, v := range ns.Payload.(*scope.Scope).Exports() {
		s.Define(name, v, false)
	}
	return value.Void(), nil
}

// evalUseAs implements `(use_as "path" as alias)`: binds the whole module scope under alias
// as a NAMESPACE value, reached through QUALIFIED nodes (`alias.member`).
func (in *Interpreter) evalUseAs(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	path, alias, err := in.evalPathAndAlias(args, line)
	if err != nil {
		return nil, err
	}
	ns, err := in.EvalFile(path)
	if err != nil {
		return nil, err
	}
	s.Define(alias, ns, false)
	return value.Void(), nil
}

// evalUseWith implements `(use_with "path" as alias cap1 cap2 ...)`: like use_as, but the
// imported module's top level is evaluated against a scope seeded with only the named
// capabilities, rather than inheriting the importer's full capability grant
// (SPEC_FULL.md §4.13's per-import capability narrowing).
func (in *Interpreter) evalUseWith(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("use_with expects (path, as, alias, capability...)")
	}
	path, alias, err := in.evalPathAndAlias(args[:2], line)
	if err != nil {
		return nil, err
	}
	grant := capability.None()
	for _, c := range args[2:] {
		name, ok := c.Data.(string)
		if !ok {
			return nil, fmt.Errorf("use_with capability arguments must be bare identifiers")
		}
		grant[capability.Name(name)] = true
	}

	root, err := in.Mods.Resolve(path)
	if err != nil {
		return nil, err
	}
	modRoot := scope.New(nil)
	capability.Populate(modRoot, grant)
	modScope := scope.New(modRoot)
	if _, err := in.evalStatement(root, modScope); err != nil {
		modScope.Release()
		modRoot.Release()
		return nil, err
	}
	s.Define(alias, value.New(value.NAMESPACE, modScope, 1), false)
	return value.Void(), nil
}

func (in *Interpreter) evalPathArg(args []*ast.Node, line int) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("use expects exactly one path argument")
	}
	if args[0].Op != ast.STRING {
		in.raise(errstate.TYPE, line, "use expects a string literal path")
		return "", fmt.Errorf("not a string literal")
	}
	return args[0].Data.(string), nil
}

// evalPathAndAlias reads the `("path" as alias)`/`("path" sig alias)` shape produced by
// parseApplication's SIGNATURE handling for the `as` keyword (ast/parser.go).
func (in *Interpreter) evalPathAndAlias(args []*ast.Node, line int) (string, string, error) {
	if len(args) != 2 || args[0].Op != ast.STRING || args[1].Op != ast.SIGNATURE {
		return "", "", fmt.Errorf("expected (\"path\" as alias)")
	}
	alias, _ := args[1].Data.(string)
	return args[0].Data.(string), alias, nil
}

// evalEvalBuiltin implements the legacy `eval` builtin: evaluates a string of franz source in
// a fresh child of the calling scope (spec.md §4.6's "legacy eval" interpreted-only path).
func (in *Interpreter) evalEvalBuiltin(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("eval expects exactly one string argument")
	}
	src, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if src.Tag != value.STRING {
		in.raise(errstate.TYPE, line, "eval expects a string argument")
		return nil, fmt.Errorf("not a string")
	}
	root, err := ast.Parse(src.Payload.(string))
	if err != nil {
		return nil, err
	}
	child := scope.New(s)
	defer child.Release()
	return in.evalStatement(root, child)
}
