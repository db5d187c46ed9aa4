// Package errstate implements the process-wide error state of spec.md §3.7/§7: a single
// {kind, line, message, try_depth} record that both the compiled (LLVM) and interpreted
// evaluation paths raise into and unwind against for try/catch.
//
// The concurrent-listener shape is grounded in the teacher compiler's util/perror.go, which
// collects errors reported by parallel worker goroutines onto a single mutex-guarded buffer.
// franz's module cache (src/modcache) resolves imports concurrently with errgroup, so more
// than one goroutine may raise into the same State; State guards its record and try depth
// with a single sync.Mutex, so raises never race the try-depth unwind logic.
package errstate

import (
	"fmt"
	"sync"
)

// Kind enumerates the error classes spec.md §3.7 names.
type Kind int

const (
	NONE Kind = iota
	SYNTAX
	TYPE
	ARITY
	RANGE
	DIVISION_BY_ZERO
	IO
	IMPORT
	CIRCULAR_IMPORT
	CUSTOM
)

var kindNames = [...]string{
	NONE: "NONE", SYNTAX: "SYNTAX", TYPE: "TYPE", ARITY: "ARITY", RANGE: "RANGE",
	DIVISION_BY_ZERO: "DIVISION_BY_ZERO", IO: "IO", IMPORT: "IMPORT",
	CIRCULAR_IMPORT: "CIRCULAR_IMPORT", CUSTOM: "CUSTOM",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Raised is the error record itself: what try/catch catches and what a fatal top-level
// diagnostic prints.
type Raised struct {
	Kind    Kind
	Line    int
	Message string
}

func (r *Raised) Error() string {
	return fmt.Sprintf("%s Error @ Line %d: %s", r.Kind, r.Line, r.Message)
}

// State is the process-wide error state: the current raised error (if any) and the current
// try/catch nesting depth. try_depth > 0 means a raise should be caught by the nearest
// enclosing try and execution resumed there; try_depth == 0 means a raise is fatal — the
// driver prints the diagnostic and exits with status 1 (spec.md §7).
type State struct {
	mx       sync.Mutex
	current  *Raised
	tryDepth int
}

// New returns a fresh, empty error state. The interpreter (src/interp) owns one per
// Interpreter; the compiler driver creates none.
func New() *State {
	return &State{}
}

// EnterTry increments the try-depth, marking that a Raise from here should unwind to the
// matching LeaveTry/Catch rather than escape as fatal.
func (s *State) EnterTry() {
	s.mx.Lock()
	s.tryDepth++
	s.mx.Unlock()
}

// LeaveTry decrements the try-depth. Called both when a try block's body completes normally
// and when its catch handler finishes running.
func (s *State) LeaveTry() {
	s.mx.Lock()
	if s.tryDepth > 0 {
		s.tryDepth--
	}
	s.mx.Unlock()
}

// TryDepth reports the current nesting depth.
func (s *State) TryDepth() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.tryDepth
}

// Raise records kind/line/message as the current error. The caller is responsible for
// unwinding to the nearest try handler (or, at try_depth 0, treating this as fatal) —
// Raise itself only records state, mirroring perror.Append's "record, don't decide" role.
func (s *State) Raise(kind Kind, line int, message string) *Raised {
	r := &Raised{Kind: kind, Line: line, Message: message}
	s.mx.Lock()
	s.current = r
	s.mx.Unlock()
	return r
}

// Current returns the presently raised error, or nil if none is outstanding.
func (s *State) Current() *Raised {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.current
}

// Clear discards the current error, as a catch handler does once it has consumed it.
func (s *State) Clear() {
	s.mx.Lock()
	s.current = nil
	s.mx.Unlock()
}

// Fatal reports whether a raised error at the current try-depth must abort the process
// (try_depth == 0 and an error is outstanding).
func (s *State) Fatal() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.current != nil && s.tryDepth == 0
}
