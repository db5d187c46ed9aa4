package token

import "testing"

// TestLexBasic verifies a small program produces the expected token kinds and lexemes,
// following the style of the teacher compiler's TestLexer: a hand-built table of expected
// tokens compared in order against the lexer's output.
func TestLexBasic(t *testing.T) {
	src := "add = {a b -> <- (add a b)}\n"
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	exp := []Kind{
		Start,
		Identifier, Assign, FuncOpen, Identifier, Identifier, Arrow, Return,
		ApplyOpen, Identifier, Identifier, Identifier, ApplyClose, FuncClose,
		End,
	}
	if len(toks) != len(exp) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(exp), toks)
	}
	for i1, k := range exp {
		if toks[i1].Kind != k {
			t.Errorf("token %d: got kind %s, want %s", i1, toks[i1].Kind, k)
		}
	}
}

// TestLexNumbers covers the integer/float literal forms of spec.md §4.1.
func TestLexNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
	}{
		{"42", Integer},
		{"-42", Integer},
		{"0x1A", Integer},
		{"0b101", Integer},
		{"0o17", Integer},
		{"3.14", Float},
		{"3.14e-2", Float},
		{"1e10", Float},
		{"0x1.8p3", Float},
	}
	for _, c := range cases {
		toks, err := Lex(c.src)
		if err != nil {
			t.Fatalf("%q: Lex returned error: %s", c.src, err)
		}
		if len(toks) != 3 {
			t.Fatalf("%q: got %d tokens, want 3 (start, literal, end): %v", c.src, len(toks), toks)
		}
		if toks[1].Kind != c.kind {
			t.Errorf("%q: got kind %s, want %s", c.src, toks[1].Kind, c.kind)
		}
	}
}

// TestLexDotVsFloat verifies the dot-as-decimal-point-only-before-a-digit rule.
func TestLexDotVsFloat(t *testing.T) {
	toks, err := Lex("ns.member")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	exp := []Kind{Start, Identifier, Dot, Identifier, End}
	if len(toks) != len(exp) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(exp), toks)
	}
	for i1, k := range exp {
		if toks[i1].Kind != k {
			t.Errorf("token %d: got %s, want %s", i1, toks[i1].Kind, k)
		}
	}
}

// TestLexStringEscape verifies backslash escapes skip the next byte without decoding it,
// and that an unterminated string raises an error.
func TestLexStringEscape(t *testing.T) {
	toks, err := Lex(`"a\"b"`)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	if len(toks) != 3 || toks[1].Kind != String {
		t.Fatalf("got %v, want a single String token", toks)
	}
	if toks[1].Lexeme != `a\"b` {
		t.Errorf("got lexeme %q, want %q", toks[1].Lexeme, `a\"b`)
	}

	if _, err := Lex(`"unterminated`); err == nil {
		t.Error("expected error for unterminated string literal")
	}
	if _, err := Lex("\"line\nbreak\""); err == nil {
		t.Error("expected error for embedded newline in string literal")
	}
}

// TestLexKeywords checks that sig/as/mut are recognized as keywords and not identifiers.
func TestLexKeywords(t *testing.T) {
	toks, err := Lex("sig as mut other")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	exp := []Kind{Start, KwSig, KwAs, KwMut, Identifier, End}
	for i1, k := range exp {
		if toks[i1].Kind != k {
			t.Errorf("token %d: got %s, want %s", i1, toks[i1].Kind, k)
		}
	}
}

// TestLexComment verifies // comments are skipped through end of line.
func TestLexComment(t *testing.T) {
	toks, err := Lex("a // comment\nb")
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	exp := []Kind{Start, Identifier, Identifier, End}
	if len(toks) != len(exp) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(exp), toks)
	}
}

// TestRoundTrip checks invariant 1 from spec.md §8: lexing, printing and re-lexing a token
// stream produces an identical stream modulo the Start/End sentinels.
func TestRoundTrip(t *testing.T) {
	src := `(println "identity(42):" ({x -> <- x} 42))`
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex returned error: %s", err)
	}
	// Reconstruct the lexemes with single spaces between them and re-lex; kinds must match.
	var rebuilt string
	for _, tok := range toks {
		switch tok.Kind {
		case Start, End:
			continue
		case String:
			rebuilt += `"` + tok.Lexeme + `" `
		default:
			if tok.Lexeme != "" {
				rebuilt += tok.Lexeme + " "
			} else {
				rebuilt += kindNames[tok.Kind] + " "
			}
		}
	}
	toks2, err := Lex(rebuilt)
	if err != nil {
		t.Fatalf("re-lex returned error: %s", err)
	}
	// Strip sentinels from both sides before comparing kinds.
	a, b := toks[1:len(toks)-1], toks2[1:len(toks2)-1]
	if len(a) != len(b) {
		t.Fatalf("round trip length mismatch: got %d, want %d", len(b), len(a))
	}
	for i1 := range a {
		if a[i1].Kind != b[i1].Kind {
			t.Errorf("token %d: got %s, want %s", i1, b[i1].Kind, a[i1].Kind)
		}
	}
}
