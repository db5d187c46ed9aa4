// Package token defines the lexical token vocabulary of the language and the ordered,
// random-access token stream the parser operates on.
package token

import "fmt"

// Kind differentiates the lexical forms the lexer can emit.
type Kind int

// Token kinds. Start and End are synthetic sentinels bracketing every stream so the parser
// can detect running off either end without a separate length check at every call site.
const (
	Start Kind = iota
	End

	Assign     // =
	ApplyOpen  // (
	ApplyClose // )
	FuncOpen   // {
	FuncClose  // }
	ListOpen   // [
	ListClose  // ]
	Comma      // ,
	Arrow      // ->
	Return     // <-
	Dot        // .

	Identifier
	Integer
	Float
	String

	KwSig
	KwAs
	KwMut
)

var kindNames = [...]string{
	Start: "start", End: "end",
	Assign: "=", ApplyOpen: "(", ApplyClose: ")",
	FuncOpen: "{", FuncClose: "}", ListOpen: "[", ListClose: "]",
	Comma: ",", Arrow: "->", Return: "<-", Dot: ".",
	Identifier: "identifier", Integer: "integer", Float: "float", String: "string",
	KwSig: "sig", KwAs: "as", KwMut: "mut",
}

// String returns a print friendly name for the Kind, used by diagnostics.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// reserved maps a scanned identifier lexeme to its keyword Kind, checked only after the
// lexer has already scanned a full identifier-shaped run of characters.
var reserved = map[string]Kind{
	"sig": KwSig,
	"as":  KwAs,
	"mut": KwMut,
}

// Token is a single lexical unit: {kind, lexeme?, line}. Lexeme is empty for structural
// kinds (brackets, operators, Start/End) and owned for Identifier/Integer/Float/String.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// String prints a Token for diagnostics: value, kind, line.
func (t Token) String() string {
	if len(t.Lexeme) > 20 {
		return fmt.Sprintf("%.17q...\t%s\tline: %d", t.Lexeme, t.Kind, t.Line)
	}
	return fmt.Sprintf("%q\t%s\tline: %d", t.Lexeme, t.Kind, t.Line)
}

// Stream is the ordered, random-access token array the parser consumes. It is always
// bracketed by a leading Start and trailing End sentinel (spec.md §4.1).
type Stream []Token

// At returns the token at index i, or the End sentinel if i runs past the stream — this
// lets parser code probe one token past the last real token without a manual bounds check.
func (s Stream) At(i int) Token {
	if i < 0 || i >= len(s) {
		return Token{Kind: End}
	}
	return s[i]
}
