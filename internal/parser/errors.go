package parser

import (
	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/lexer"
)

// Parser holds the reader state
type Parser struct {
	tokens   []lexer.Token
	pos      int
	file     string // source unit name used in diagnostics
	comments int
}

// current returns the current token
func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// check returns true if the current token is of the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// errorf builds a SyntaxError for this source unit
func (p *Parser) errorf(pos diagnostic.Position, format string, args ...interface{}) error {
	return diagnostic.Syntaxf(p.file, pos, format, args...)
}
