// Package modcache implements franz's module cache (SPEC_FULL.md §4.12): resolving an
// `import "path"` to a parsed syntax tree exactly once per compilation, detecting circular
// imports, and resolving independent imports concurrently.
//
// The concurrency model is grounded in breadchris-yaegi's indirect dependency on
// golang.org/x/sync, adopted here the same way src/lower adopts errgroup for its parallel
// codegen phases: a module cache is exactly the "fan out over N independent units of work,
// fail fast on the first error" shape errgroup.Group exists for.
package modcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"franz/src/ast"
	"franz/src/errstate"
)

// entry is one resolved module: its parsed tree and the modification time it was read at,
// so a repeated Resolve of the same path within one compilation returns the cached parse
// rather than re-lexing/re-parsing.
type entry struct {
	root    *ast.Node
	modTime int64
}

// Cache resolves import paths to parsed syntax trees, memoizing by absolute path and
// detecting circular imports via a per-goroutine-safe in-flight stack.
type Cache struct {
	mx      sync.Mutex
	entries map[string]*entry
	stack   map[string]bool // Paths currently being resolved, for circular-import detection.
	errs    *errstate.State
}

// New builds an empty Cache reporting errors into errs (spec.md §3.7's IMPORT/
// CIRCULAR_IMPORT kinds).
func New(errs *errstate.State) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		stack:   make(map[string]bool),
		errs:    errs,
	}
}

// Resolve parses and returns the syntax tree for the module at path, using the cached parse
// if one exists and this path is not already on the in-flight resolution stack (which would
// indicate a circular import, spec.md §3.7's CIRCULAR_IMPORT).
func (c *Cache) Resolve(path string) (*ast.Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		c.errs.Raise(errstate.IO, 0, fmt.Sprintf("cannot resolve import path %q: %s", path, err))
		return nil, err
	}

	c.mx.Lock()
	if c.stack[abs] {
		c.mx.Unlock()
		msg := fmt.Sprintf("circular import detected resolving %q", path)
		c.errs.Raise(errstate.CIRCULAR_IMPORT, 0, msg)
		return nil, fmt.Errorf("%s", msg)
	}
	if e, ok := c.entries[abs]; ok {
		c.mx.Unlock()
		return e.root, nil
	}
	c.stack[abs] = true
	c.mx.Unlock()

	defer func() {
		c.mx.Lock()
		delete(c.stack, abs)
		c.mx.Unlock()
	}()

	info, err := os.Stat(abs)
	if err != nil {
		c.errs.Raise(errstate.IMPORT, 0, fmt.Sprintf("cannot import %q: %s", path, err))
		return nil, err
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		c.errs.Raise(errstate.IMPORT, 0, fmt.Sprintf("cannot read %q: %s", path, err))
		return nil, err
	}

	root, err := ast.Parse(string(src))
	if err != nil {
		c.errs.Raise(errstate.SYNTAX, 0, err.Error())
		return nil, err
	}

	c.mx.Lock()
	c.entries[abs] = &entry{root: root, modTime: info.ModTime().UnixNano()}
	c.mx.Unlock()
	return root, nil
}

// ResolveAll resolves every path in paths concurrently, short-circuiting on the first error
// (the same "first error wins" fan-out transform.go's GenLLVM achieves by hand with a
// WaitGroup and an error channel, expressed here with errgroup).
func (c *Cache) ResolveAll(paths []string) ([]*ast.Node, error) {
	roots := make([]*ast.Node, len(paths))
	var g errgroup.Group
	for i1, p := range paths {
		i1, p := i1, p
		g.Go(func() error {
			root, err := c.Resolve(p)
			if err != nil {
				return err
			}
			roots[i1] = root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roots, nil
}
