package lower

import "tinygo.org/x/go-llvm"

// varScope is one nested lexical frame of LLVM alloca slots, grounded in the teacher's
// transform.go symTab (a map[string]llvm.Value guarded for concurrent access). franz lowers
// one function body per goroutine (see engine.go's errgroup fan-out) rather than the
// teacher's finer per-statement parallelism, so a frame needs no internal lock of its own;
// the stack itself is only ever touched by the single goroutine generating its function.
type varScope struct {
	vars map[string]llvm.Value
	tags map[string]Tag
}

// scopeStack is the function-local chain of varScopes, innermost last, mirroring the
// teacher's util.Stack push/pop/peek discipline used in transform.go's gen/genStore/genLoad.
type scopeStack struct {
	frames []*varScope
}

func newScopeStack() *scopeStack { return &scopeStack{} }

func (s *scopeStack) push() *varScope {
	f := &varScope{vars: make(map[string]llvm.Value), tags: make(map[string]Tag)}
	s.frames = append(s.frames, f)
	return f
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) top() *varScope {
	return s.frames[len(s.frames)-1]
}

// define installs name in the innermost frame.
func (s *scopeStack) define(name string, alloca llvm.Value, tag Tag) {
	f := s.top()
	f.vars[name] = alloca
	f.tags[name] = tag
}

// lookup searches innermost-first, mirroring transform.go's genLoad/genStore scan order.
func (s *scopeStack) lookup(name string) (llvm.Value, Tag, bool) {
	for i1 := len(s.frames) - 1; i1 >= 0; i1-- {
		f := s.frames[i1]
		if v, ok := f.vars[name]; ok {
			return v, f.tags[name], true
		}
	}
	return llvm.Value{}, 0, false
}
