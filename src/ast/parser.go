package ast

import (
	"fmt"

	"franz/src/token"
)

// parser walks a finished token.Stream by index, the array-based recursive-descent design of
// spec.md §4.2 (as opposed to the teacher compiler's goyacc grammar pulling tokens one at a
// time off a channel-fed lexer). Every parse* method operates on a half-open span [start, end)
// and returns the index just past what it consumed.
type parser struct {
	toks token.Stream
}

// SyntaxError reports a parse failure tagged with the offending line, matching the
// "Syntax Error @ Line N: ..." shape of spec.md §7.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error @ Line %d: %s", e.Line, e.Message)
}

func syntaxErrorf(line int, format string, args ...interface{}) error {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Parse lexes src and parses it into a root STATEMENT node spanning the whole program, the
// same way a FUNCTION body is a sequence of statements (spec.md §3.2/§4.2).
func Parse(src string) (*Node, error) {
	toks, err := token.Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	// toks[0] is Start, toks[len-1] is End; the program body spans everything between them.
	root, _, err := p.parseStatementSeq(1, len(toks)-1)
	if err != nil {
		return nil, err
	}
	Analyze(root)
	return root, nil
}

func (p *parser) at(i int) token.Token {
	return p.toks.At(i)
}

// skipClosure returns the index of the closer matching the opener at index start, failing
// SYNTAX if it runs into the End sentinel first without balancing depth back to zero.
func (p *parser) skipClosure(open, close token.Kind, start int) (int, error) {
	depth := 0
	for i1 := start; i1 < len(p.toks); i1++ {
		switch p.toks[i1].Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i1, nil
			}
		case token.End:
			return -1, syntaxErrorf(p.toks[start].Line, "unbalanced %s/%s starting here", open, close)
		}
	}
	return -1, syntaxErrorf(p.toks[start].Line, "unbalanced %s/%s starting here", open, close)
}

// parseValue parses a single value-expression starting at pos: a literal/identifier token, a
// three-token qualified name, an application, a function, or a list literal (spec.md §4.2).
func (p *parser) parseValue(pos int) (*Node, int, error) {
	t := p.at(pos)
	switch t.Kind {
	case token.Integer:
		n := newNode(INT, t.Line)
		n.Data = parseIntLiteral(t.Lexeme)
		return n, pos + 1, nil
	case token.Float:
		n := newNode(FLOAT, t.Line)
		n.Data = parseFloatLiteral(t.Lexeme)
		return n, pos + 1, nil
	case token.String:
		n := newNode(STRING, t.Line)
		n.Data = t.Lexeme
		return n, pos + 1, nil
	case token.Identifier:
		if p.at(pos+1).Kind == token.Dot && p.at(pos+2).Kind == token.Identifier {
			n := newNode(QUALIFIED, t.Line)
			n.Data = t.Lexeme + "." + p.at(pos+2).Lexeme
			return n, pos + 3, nil
		}
		n := newNode(IDENTIFIER, t.Line)
		n.Data = t.Lexeme
		return n, pos + 1, nil
	case token.ApplyOpen:
		return p.parseApplication(pos)
	case token.FuncOpen:
		return p.parseFunction(pos)
	case token.ListOpen:
		return p.parseListLiteral(pos)
	case token.End:
		return nil, pos, syntaxErrorf(t.Line, "unexpected end of input, expected a value")
	default:
		return nil, pos, syntaxErrorf(t.Line, "unexpected token %s, expected a value", t.Kind)
	}
}

// parseApplication parses "(callee arg…)". Arguments are themselves values, except that a
// bare `as <identifier>` or `sig <identifier>` pair attaches a SIGNATURE node instead of
// recursing into parseValue, carrying an import alias or a pre-flight type annotation.
func (p *parser) parseApplication(pos int) (*Node, int, error) {
	closeIdx, err := p.skipClosure(token.ApplyOpen, token.ApplyClose, pos)
	if err != nil {
		return nil, pos, err
	}
	line := p.at(pos).Line
	innerStart, innerEnd := pos+1, closeIdx
	if innerStart >= innerEnd {
		return nil, pos, syntaxErrorf(line, "empty application has no callee")
	}

	var children []*Node
	cursor := innerStart
	for cursor < innerEnd {
		switch p.at(cursor).Kind {
		case token.KwAs, token.KwSig:
			kw := p.at(cursor).Kind
			if p.at(cursor+1).Kind != token.Identifier {
				return nil, pos, syntaxErrorf(p.at(cursor).Line, "expected identifier after %s", kw)
			}
			sig := newNode(SIGNATURE, p.at(cursor).Line)
			sig.Data = p.at(cursor + 1).Lexeme
			children = append(children, sig)
			cursor += 2
		default:
			val, next, err := p.parseValue(cursor)
			if err != nil {
				return nil, pos, err
			}
			children = append(children, val)
			cursor = next
		}
	}
	return newNode(APPLICATION, line, children...), closeIdx + 1, nil
}

// parseFunction parses "{param… -> body…}" or the nullary "{body…}" form. Parameters are a
// whitespace-separated run of identifiers before a top-level arrow; a function without an
// arrow takes no parameters and its entire contents are the body (spec.md §4.2).
func (p *parser) parseFunction(pos int) (*Node, int, error) {
	closeIdx, err := p.skipClosure(token.FuncOpen, token.FuncClose, pos)
	if err != nil {
		return nil, pos, err
	}
	line := p.at(pos).Line
	innerStart, innerEnd := pos+1, closeIdx

	arrowIdx := -1
	depth := 0
	for i1 := innerStart; i1 < innerEnd; i1++ {
		switch p.at(i1).Kind {
		case token.ApplyOpen, token.FuncOpen, token.ListOpen:
			depth++
		case token.ApplyClose, token.FuncClose, token.ListClose:
			depth--
		case token.Arrow:
			if depth == 0 {
				arrowIdx = i1
			}
		}
		if arrowIdx >= 0 {
			break
		}
	}

	var params []*Node
	bodyStart := innerStart
	if arrowIdx >= 0 {
		for i1 := innerStart; i1 < arrowIdx; i1++ {
			t := p.at(i1)
			if t.Kind != token.Identifier {
				return nil, pos, syntaxErrorf(t.Line, "expected parameter identifier, got %s", t.Kind)
			}
			param := newNode(IDENTIFIER, t.Line)
			param.Data = t.Lexeme
			params = append(params, param)
		}
		bodyStart = arrowIdx + 1
	}

	body, _, err := p.parseStatementSeq(bodyStart, innerEnd)
	if err != nil {
		return nil, pos, err
	}
	children := append(params, body)
	return newNode(FUNCTION, line, children...), closeIdx + 1, nil
}

// parseListLiteral parses "[e1, e2, …]".
func (p *parser) parseListLiteral(pos int) (*Node, int, error) {
	closeIdx, err := p.skipClosure(token.ListOpen, token.ListClose, pos)
	if err != nil {
		return nil, pos, err
	}
	line := p.at(pos).Line
	innerStart, innerEnd := pos+1, closeIdx

	var children []*Node
	cursor := innerStart
	for cursor < innerEnd {
		val, next, err := p.parseValue(cursor)
		if err != nil {
			return nil, pos, err
		}
		children = append(children, val)
		cursor = next
		if cursor < innerEnd {
			if p.at(cursor).Kind != token.Comma {
				return nil, pos, syntaxErrorf(p.at(cursor).Line, "expected , or ] in list literal, got %s", p.at(cursor).Kind)
			}
			cursor++
		}
	}
	return newNode(LIST, line, children...), closeIdx + 1, nil
}

// parseStatementSeq parses a sequence of sub-statements/expressions into a STATEMENT node,
// the body shape shared by function bodies, if/loop blocks and the top-level program.
func (p *parser) parseStatementSeq(start, end int) (*Node, int, error) {
	line := p.at(start).Line
	if start >= end {
		// Empty body: line falls back to whatever precedes, since there is no token here.
		if start > 0 {
			line = p.at(start - 1).Line
		}
	}
	var children []*Node
	cursor := start
	for cursor < end {
		stmt, next, err := p.parseStatement(cursor, end)
		if err != nil {
			return nil, start, err
		}
		children = append(children, stmt)
		cursor = next
	}
	return newNode(STATEMENT, line, children...), end, nil
}

// parseStatement parses one statement: `<- expr` (RETURN), `[mut] id = expr` (ASSIGNMENT), or
// a bare value (spec.md §4.2).
func (p *parser) parseStatement(pos, end int) (*Node, int, error) {
	t := p.at(pos)
	switch {
	case t.Kind == token.Return:
		val, next, err := p.parseValue(pos + 1)
		if err != nil {
			return nil, pos, err
		}
		return newNode(RETURN, t.Line, val), next, nil

	case t.Kind == token.KwMut:
		idTok := p.at(pos + 1)
		if idTok.Kind != token.Identifier {
			return nil, pos, syntaxErrorf(t.Line, "expected identifier after mut, got %s", idTok.Kind)
		}
		if p.at(pos+2).Kind != token.Assign {
			return nil, pos, syntaxErrorf(t.Line, "missing assignment target after mut %s", idTok.Lexeme)
		}
		idNode := newNode(IDENTIFIER, idTok.Line)
		idNode.Data = idTok.Lexeme
		val, next, err := p.parseValue(pos + 3)
		if err != nil {
			return nil, pos, err
		}
		assign := newNode(ASSIGNMENT, t.Line, idNode, val)
		assign.IsMutable = true
		return assign, next, nil

	case t.Kind == token.Identifier && p.at(pos+1).Kind == token.Assign:
		idNode := newNode(IDENTIFIER, t.Line)
		idNode.Data = t.Lexeme
		val, next, err := p.parseValue(pos + 2)
		if err != nil {
			return nil, pos, err
		}
		assign := newNode(ASSIGNMENT, t.Line, idNode, val)
		return assign, next, nil

	default:
		return p.parseValue(pos)
	}
}
