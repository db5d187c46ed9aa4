package interp

import (
	"fmt"

	"franz/src/ast"
	"franz/src/errstate"
	"franz/src/scope"
	"franz/src/value"
)

// listDictBuiltins implements spec.md §4.4's list and dict primitives for the interpreted
// path. Names follow the scenario table in spec.md §8 (`dict`, `dict_get`) and the operation
// lists in §3.4 (`length`, `get`, `slice`, `set`, `insert`, `delete`, `delete_range`, `join`,
// `has`, `set_inplace`, `remove`, `merge`, `keys`, `values`).
var listDictBuiltins map[string]func(in *Interpreter, line int, args []*ast.Node, s *scope.Scope) (*value.Value, error)

// init fills listDictBuiltins; a composite literal in the declaration would form an
// initialization cycle, since evalApplication reads the table and is reached from the
// functions it lists.
func init() {
	listDictBuiltins = map[string]func(in *Interpreter, line int, args []*ast.Node, s *scope.Scope) (*value.Value, error){
		"length":       (*Interpreter).evalLength,
		"get":          (*Interpreter).evalGet,
		"slice":        (*Interpreter).evalSlice,
		"set":          (*Interpreter).evalSet,
		"insert":       (*Interpreter).evalInsert,
		"delete":       (*Interpreter).evalDelete,
		"delete_range": (*Interpreter).evalDeleteRange,
		"join":         (*Interpreter).evalJoin,

		"dict":         (*Interpreter).evalDictNew,
		"dict_get":     (*Interpreter).evalDictGet,
		"has":          (*Interpreter).evalDictHas,
		"set_inplace":  (*Interpreter).evalDictSetInplace,
		"remove":       (*Interpreter).evalDictRemove,
		"merge":        (*Interpreter).evalDictMerge,
		"keys":         (*Interpreter).evalDictKeys,
		"values":       (*Interpreter).evalDictValues,
	}
}

func (in *Interpreter) evalLength(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("length expects exactly one list argument")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST {
		in.raise(errstate.TYPE, line, "length expects a list")
		return nil, fmt.Errorf("not a list")
	}
	return value.Int(v.Payload.(*value.List).Length()), nil
}

func (in *Interpreter) evalGet(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("get expects (list, index)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || idx.Tag != value.INT {
		in.raise(errstate.TYPE, line, "get expects (list, int)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	r, err := v.Payload.(*value.List).Get(idx.Payload.(int64))
	if err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return r, nil
}

func (in *Interpreter) evalSlice(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("slice expects (list, from, to)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	from, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	to, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || from.Tag != value.INT || to.Tag != value.INT {
		in.raise(errstate.TYPE, line, "slice expects (list, int, int)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	r, err := v.Payload.(*value.List).Slice(from.Payload.(int64), to.Payload.(int64))
	if err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return r, nil
}

// evalSet implements the logically-immutable `set`: it copies the list and replaces one
// element, per spec.md §4.4's "non-in-place operations produce a new list."
func (in *Interpreter) evalSet(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("set expects (list, index, value)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	newVal, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || idx.Tag != value.INT {
		in.raise(errstate.TYPE, line, "set expects (list, int, value)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	copyList := v.Payload.(*value.List).Copy()
	if err := copyList.Set(idx.Payload.(int64), newVal); err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return value.New(value.LIST, copyList, 1), nil
}

func (in *Interpreter) evalInsert(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("insert expects (list, index, value)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	newVal, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || idx.Tag != value.INT {
		in.raise(errstate.TYPE, line, "insert expects (list, int, value)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	copyList := v.Payload.(*value.List).Copy()
	if err := copyList.Insert(idx.Payload.(int64), newVal); err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return value.New(value.LIST, copyList, 1), nil
}

func (in *Interpreter) evalDelete(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("delete expects (list, index)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	idx, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || idx.Tag != value.INT {
		in.raise(errstate.TYPE, line, "delete expects (list, int)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	copyList := v.Payload.(*value.List).Copy()
	if err := copyList.Delete(idx.Payload.(int64)); err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return value.New(value.LIST, copyList, 1), nil
}

func (in *Interpreter) evalDeleteRange(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("delete_range expects (list, from, to)")
	}
	v, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	from, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	to, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	if v.Tag != value.LIST || from.Tag != value.INT || to.Tag != value.INT {
		in.raise(errstate.TYPE, line, "delete_range expects (list, int, int)")
		return nil, fmt.Errorf("wrong argument kinds")
	}
	copyList := v.Payload.(*value.List).Copy()
	if err := copyList.DeleteRange(from.Payload.(int64), to.Payload.(int64)); err != nil {
		in.raise(errstate.RANGE, line, err.Error())
		return nil, err
	}
	return value.New(value.LIST, copyList, 1), nil
}

func (in *Interpreter) evalJoin(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("join expects exactly two lists")
	}
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if a.Tag != value.LIST || c.Tag != value.LIST {
		in.raise(errstate.TYPE, line, "join expects two lists")
		return nil, fmt.Errorf("not a list")
	}
	return value.Join(a.Payload.(*value.List), c.Payload.(*value.List)), nil
}

// evalDictNew implements `(dict k1 v1 k2 v2 ...)`.
func (in *Interpreter) evalDictNew(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("dict expects an even number of key/value arguments")
	}
	out := value.NewDict()
	d := out.Payload.(*value.Dict)
	for i1 := 0; i1+1 < len(args); i1 += 2 {
		k, err := in.eval(args[i1], s)
		if err != nil {
			return nil, err
		}
		v, err := in.eval(args[i1+1], s)
		if err != nil {
			return nil, err
		}
		d.Set(k, v)
	}
	return out, nil
}

func (in *Interpreter) evalDictGet(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("dict_get expects (dict, key)")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	k, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "dict_get expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	v, ok := d.Payload.(*value.Dict).Get(k)
	if !ok {
		return value.Void(), nil
	}
	return v, nil
}

func (in *Interpreter) evalDictHas(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has expects (dict, key)")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	k, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "has expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	if d.Payload.(*value.Dict).Has(k) {
		return value.Int(1), nil
	}
	return value.Int(0), nil
}

// evalDictSetInplace implements the compiler-facing `set_inplace` mutator (spec.md §3.4's
// note that in-place dict operations exist "used by the compiler for build-up"); the
// interpreter exposes it too since a franz program may legitimately want the mutation.
func (in *Interpreter) evalDictSetInplace(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("set_inplace expects (dict, key, value)")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	k, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	v, err := in.eval(args[2], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "set_inplace expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	d.Payload.(*value.Dict).Set(k, v)
	return d, nil
}

func (in *Interpreter) evalDictRemove(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("remove expects (dict, key)")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	k, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "remove expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	if d.Payload.(*value.Dict).Remove(k) {
		return value.Int(1), nil
	}
	return value.Int(0), nil
}

func (in *Interpreter) evalDictMerge(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("merge expects exactly two dicts")
	}
	a, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	c, err := in.eval(args[1], s)
	if err != nil {
		return nil, err
	}
	if a.Tag != value.DICT || c.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "merge expects two dicts")
		return nil, fmt.Errorf("not a dict")
	}
	return value.Merge(a.Payload.(*value.Dict), c.Payload.(*value.Dict)), nil
}

func (in *Interpreter) evalDictKeys(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("keys expects exactly one dict argument")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "keys expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	return d.Payload.(*value.Dict).Keys(), nil
}

func (in *Interpreter) evalDictValues(line int, args []*ast.Node, s *scope.Scope) (*value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("values expects exactly one dict argument")
	}
	d, err := in.eval(args[0], s)
	if err != nil {
		return nil, err
	}
	if d.Tag != value.DICT {
		in.raise(errstate.TYPE, line, "values expects a dict")
		return nil, fmt.Errorf("not a dict")
	}
	return d.Payload.(*value.Dict).Values(), nil
}
