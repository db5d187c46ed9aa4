package lower

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"tinygo.org/x/go-llvm"

	"franz/src/ast"
)

// retType is the two-field {raw, tag} pair every lowered franz function returns, since a
// callee's static LLVM return type must be fixed but franz functions are dynamically typed
// (spec.md §4.6).
func retType(ctx llvm.Context) llvm.Type {
	return llvm.StructTypeInContext(ctx, []llvm.Type{rawType, tagType}, false)
}

// globalFuncs is the module-wide closure-function symbol table, grounded in transform.go's
// globals symTab: a single map guarded for concurrent writes while function headers are
// declared in parallel, then read concurrently (read-only) while bodies are generated.
type globalFuncs struct {
	mx sync.Mutex
	m  map[*ast.Node]llvm.Value
}

func (g *globalFuncs) get(n *ast.Node) (llvm.Value, bool) {
	g.mx.Lock()
	defer g.mx.Unlock()
	v, ok := g.m[n]
	return v, ok
}

func (g *globalFuncs) set(n *ast.Node, v llvm.Value) {
	g.mx.Lock()
	defer g.mx.Unlock()
	g.m[n] = v
}

// Engine carries the LLVM context/module/builder state threaded through every genX function,
// the same grouping transform.go's GenLLVM sets up locally before calling gen/genFuncBody.
type Engine struct {
	Ctx     llvm.Context
	Module  llvm.Module
	globals *globalFuncs
	closRec llvm.Type
	retTy   llvm.Type

	// NoTCO disables the tail-call marking genClosureCall otherwise applies to a call in
	// return position (spec.md §4.7/§6.1's --no-tco flag).
	NoTCO bool

	// ordinals assigns each FUNCTION node a stable, deterministic numeric name, computed
	// sequentially in Lower before the parallel declare/define phases so the concurrent
	// phases only ever read it (a map written from goroutines without synchronization,
	// as a shared closureOrdinal() counter would need, is exactly the kind of data race
	// transform.go's single globals.Lock()-guarded map was designed to avoid).
	ordinals map[*ast.Node]int

	// Concurrency mirrors SPEC_FULL.md's domain-stack section: function bodies are lowered
	// in parallel, as transform.go's GenLLVM does with its worker goroutines, except franz
	// uses an errgroup.Group instead of a hand-rolled WaitGroup+error-channel listener and
	// starts one goroutine per function; the group has no limit and no thread-count setting
	// reaches it.
}

// NewEngine allocates a fresh LLVM context/module pair named moduleName.
func NewEngine(moduleName string) *Engine {
	ctx := llvm.NewContext()
	m := ctx.NewModule(moduleName)
	e := &Engine{
		Ctx:     ctx,
		Module:  m,
		globals: &globalFuncs{m: make(map[*ast.Node]llvm.Value)},
	}
	e.closRec = closureRecordType(ctx)
	e.retTy = retType(ctx)
	return e
}

// Dispose releases the underlying LLVM context and module.
func (e *Engine) Dispose() {
	e.Module.Dispose()
	e.Ctx.Dispose()
}

// Lower generates LLVM IR for the full program rooted at root (an ast STATEMENT sequence,
// spec.md §4.1), wiring every FUNCTION literal reachable from it into its own LLVM function
// and emitting a franz_main entry point that runs the top-level statements, mirroring
// transform.go's GenLLVM two-phase declare-then-define structure and its genMain wrapper.
func (e *Engine) Lower(root *ast.Node) error {
	if root == nil {
		return fmt.Errorf("lower: syntax tree root is <nil>")
	}

	funcs := collectFunctions(root)
	e.ordinals = make(map[*ast.Node]int, len(funcs))
	for i1, fn := range funcs {
		e.ordinals[fn] = i1
	}

	// Phase 1: declare every closure's LLVM header, concurrently (transform.go's
	// genFuncHeader pass). Declaration only touches the module's function list, which
	// go-llvm's AddFunction guards internally the same way transform.go relies on for its
	// parallel pass.
	var g1 errgroup.Group
	for _, fn := range funcs {
		fn := fn
		g1.Go(func() error {
			header, err := e.declareClosureFunc(fn)
			if err != nil {
				return err
			}
			e.globals.set(fn, header)
			return nil
		})
	}
	if err := g1.Wait(); err != nil {
		return err
	}

	// Phase 2: generate each closure's body, concurrently, each with its own Builder
	// (transform.go: "Give each thread its own builder, else there will be multiple
	// threads writing different functions, interchanging basic blocks concurrently.")
	var g2 errgroup.Group
	for _, fn := range funcs {
		fn := fn
		g2.Go(func() error {
			header, _ := e.globals.get(fn)
			b := e.Ctx.NewBuilder()
			defer b.Dispose()
			return e.genClosureBody(b, header, fn)
		})
	}
	if err := g2.Wait(); err != nil {
		return err
	}

	return e.genEntryPoint(root)
}

// inlinedThunkArgs names, for each special form whose branches genThunk (control.go) inlines
// rather than compiles as a real closure, which of its argument positions are inlined thunks:
// `if`'s then/else and `while`'s cond/body. `loop`'s body is deliberately absent — genLoop
// calls it as a genuine one-parameter closure, matching src/interp's evalLoop treating body as
// a callable value, so it is collected and compiled normally.
var inlinedThunkArgs = map[string][]bool{
	"if":    {false, true, true},
	"while": {true, true},
}

// collectFunctions walks the tree collecting every FUNCTION node that genClosureLiteral will
// need a pre-declared header for (spec.md's closures are values, so they may appear anywhere
// an expression can), in a stable pre-order so codegen output is deterministic across runs. A
// `{...}` block passed directly as an inlinedThunkArgs position is excluded — genThunk inlines
// it into its caller's function instead of calling through a closure record — but its own
// children are still walked, so a genuine closure literal built or returned from inside such a
// block (not the block itself) is still collected and compiled.
func collectFunctions(n *ast.Node) []*ast.Node {
	var out []*ast.Node
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Op == ast.APPLICATION && len(n.Children) > 0 && n.Children[0].Op == ast.IDENTIFIER {
			if name, ok := n.Children[0].Data.(string); ok {
				if thunkPositions, ok := inlinedThunkArgs[name]; ok {
					for i1, c := range n.Children[1:] {
						if i1 < len(thunkPositions) && thunkPositions[i1] && c.Op == ast.FUNCTION {
							for _, cc := range c.Children {
								walk(cc)
							}
							continue
						}
						walk(c)
					}
					return
				}
			}
		}
		if n.Op == ast.FUNCTION {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// genEntryPoint emits the process entry point franz_main, which runs root's top-level
// statements in a fresh scope/env and returns 0, mirroring transform.go's genMain.
func (e *Engine) genEntryPoint(root *ast.Node) error {
	ftyp := llvm.FunctionType(llvm.Int32Type(), nil, false)
	main := llvm.AddFunction(e.Module, "franz_main", ftyp)
	bb := e.Ctx.AddBasicBlock(main, "")
	b := e.Ctx.NewBuilder()
	defer b.Dispose()
	b.SetInsertPointAtEnd(bb)

	st := newScopeStack()
	st.push()
	fr := &frame{b: b, fn: main, st: st, eng: e}
	for _, c := range root.Children {
		if _, _, _, err := fr.genStatement(c); err != nil {
			return err
		}
	}
	b.CreateRet(llvm.ConstInt(llvm.Int32Type(), 0, false))
	return nil
}
