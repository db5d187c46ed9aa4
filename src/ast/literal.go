package ast

import (
	"strconv"
	"strings"
)

// parseIntLiteral converts a lexed integer lexeme (decimal, possibly negative, or 0x/0b/0o
// prefixed) into its int64 value. The lexer already validated the shape, so a parse failure
// here would indicate a lexer/parser disagreement rather than malformed user input.
func parseIntLiteral(lexeme string) int64 {
	neg := false
	s := lexeme
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v int64
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, _ = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, _ = strconv.ParseInt(s[2:], 2, 64)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		v, _ = strconv.ParseInt(s[2:], 8, 64)
	default:
		v, _ = strconv.ParseInt(s, 10, 64)
	}
	if neg {
		v = -v
	}
	return v
}

// parseFloatLiteral converts a lexed float lexeme (decimal or 0x…p… hex float) into float64.
func parseFloatLiteral(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}
