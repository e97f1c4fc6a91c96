package lexer

import (
	"fmt"

	"github.com/lhaig/quill/internal/diagnostic"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	SYMBOL     // x, list->vector, +, null?
	INT_LIT    // 123, -4
	FLOAT_LIT  // 123.45
	STRING_LIT // "hello"

	// Keywords
	TRUE
	FALSE
	NIL

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // raw source text (symbols are NFC-normalised)
	Value   string // decoded contents of a STRING_LIT
	Err     string // reason for an ILLEGAL token
	Pos     diagnostic.Position
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case SYMBOL:
		return "SYMBOL"
	case INT_LIT:
		return "INT_LIT"
	case FLOAT_LIT:
		return "FLOAT_LIT"
	case STRING_LIT:
		return "STRING_LIT"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NIL:
		return "NIL"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// Describe returns the token as it should appear in a diagnostic.
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING_LIT:
		return "string " + t.Literal
	case INT_LIT, FLOAT_LIT:
		return "number " + t.Literal
	case SYMBOL:
		return "symbol '" + t.Literal + "'"
	default:
		return "'" + t.Literal + "'"
	}
}

// Closer returns the delimiter that closes an opening delimiter.
func Closer(open TokenType) TokenType {
	if open == LBRACKET {
		return RBRACKET
	}
	return RPAREN
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"nil":   NIL,
}

// LookupSymbol checks if a symbol is a literal keyword
func LookupSymbol(sym string) TokenType {
	if tok, ok := keywords[sym]; ok {
		return tok
	}
	return SYMBOL
}
