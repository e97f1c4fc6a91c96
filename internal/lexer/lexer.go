package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/lhaig/quill/internal/diagnostic"
)

// Lexer scans Quill source code and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
	comments     int  // ';' comments skipped so far
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition > len(l.input) {
		return // already sitting on end of input
	}
	if l.readPosition == len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// atEOF reports whether the whole input has been consumed. A literal NUL
// byte inside the input is not end of input.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) pos() diagnostic.Position {
	return diagnostic.Position{Offset: l.position, Line: l.line, Column: l.column}
}

// skipWhitespaceAndComments skips whitespace and ';' line comments
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.readChar()
			l.line++
			l.column = 1
		case ';':
			l.comments++
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// symbolRuneAt returns the size of the symbol constituent at the current
// position, or 0 if there is none.
func (l *Lexer) symbolRuneAt(allowDigit bool) int {
	if l.atEOF() {
		return 0
	}
	if l.ch < utf8.RuneSelf {
		if isLetter(l.ch) || strings.IndexByte(symbolPunct, l.ch) >= 0 || (allowDigit && isDigit(l.ch)) {
			return 1
		}
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	if r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsMark(r) && allowDigit) {
		return size
	}
	return 0
}

// readSymbol reads a symbol and returns it NFC-normalised
func (l *Lexer) readSymbol() string {
	start := l.position
	for {
		size := l.symbolRuneAt(true)
		if size == 0 {
			break
		}
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}
	return norm.NFC.String(l.input[start:l.position])
}

// readNumber reads a numeric literal (integer or float). A number running
// straight into symbol characters is reported as ILLEGAL.
func (l *Lexer) readNumber(tok Token) Token {
	start := l.position
	tokenType := INT_LIT

	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) && !l.atEOF() {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = FLOAT_LIT
		l.readChar()
		for isDigit(l.ch) && !l.atEOF() {
			l.readChar()
		}
	}

	if l.symbolRuneAt(true) > 0 {
		l.readSymbol()
		text := l.input[start:l.position]
		tok.Type = ILLEGAL
		tok.Literal = text
		tok.Err = fmt.Sprintf("invalid number literal '%s'", text)
		return tok
	}

	tok.Type = tokenType
	tok.Literal = l.input[start:l.position]
	return tok
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readString reads a string literal starting at the opening quote. An
// unterminated string is reported at end of input, where the closing quote
// was expected.
func (l *Lexer) readString(tok Token) Token {
	start := l.position
	var sb strings.Builder

	l.readChar() // opening quote
	for {
		if l.atEOF() {
			tok.Type = ILLEGAL
			tok.Literal = l.input[start:]
			tok.Err = fmt.Sprintf("unterminated string literal starting at %s", tok.Pos)
			tok.Pos = l.pos()
			return tok
		}
		switch l.ch {
		case '"':
			l.readChar()
			tok.Type = STRING_LIT
			tok.Literal = l.input[start:l.position]
			tok.Value = sb.String()
			return tok
		case '\\':
			escPos := l.pos()
			l.readChar()
			switch {
			case l.atEOF():
				continue
			case l.ch == 'n':
				sb.WriteByte('\n')
			case l.ch == 't':
				sb.WriteByte('\t')
			case l.ch == 'r':
				sb.WriteByte('\r')
			case l.ch == '0':
				sb.WriteByte(0)
			case l.ch == '\\':
				sb.WriteByte('\\')
			case l.ch == '"':
				sb.WriteByte('"')
			default:
				return Token{
					Type:    ILLEGAL,
					Literal: "\\" + string(l.ch),
					Err:     fmt.Sprintf("invalid escape sequence '\\%c'", l.ch),
					Pos:     escPos,
				}
			}
			l.readChar()
		case '\n':
			sb.WriteByte('\n')
			l.readChar()
			l.line++
			l.column = 1
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	tok := Token{Pos: l.pos()}

	if l.atEOF() {
		tok.Type = EOF
		return tok
	}

	switch l.ch {
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = RBRACKET, "]"
	case '"':
		return l.readString(tok)
	default:
		if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
			return l.readNumber(tok)
		}
		if l.symbolRuneAt(false) > 0 {
			sym := l.readSymbol()
			tok.Type = LookupSymbol(sym)
			tok.Literal = sym
			return tok
		}
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		tok.Type = ILLEGAL
		tok.Literal = string(r)
		tok.Err = fmt.Sprintf("unexpected character %q", r)
		for i := 0; i < size; i++ {
			l.readChar()
		}
		return tok
	}

	l.readChar()
	return tok
}

// Tokenize returns all tokens from the input, ending with EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// Comments returns the number of ';' comments skipped so far.
func (l *Lexer) Comments() int {
	return l.comments
}

// Helper functions

// symbolPunct lists the punctuation allowed inside symbols.
const symbolPunct = "+-*/<>=!?_%&.:^~|#@$"

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
