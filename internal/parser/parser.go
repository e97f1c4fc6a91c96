package parser

import (
	"github.com/lhaig/quill/internal/ast"
	"github.com/lhaig/quill/internal/lexer"
)

// New creates a new reader for one source unit
func New(file, source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens:   tokens,
		file:     file,
		comments: l.Comments(),
	}
}

// Comments returns the number of comments in the source. The reader
// drops them, so a datum tree never carries them.
func (p *Parser) Comments() int {
	return p.comments
}

// Parse reads every top-level datum. It stops at the first error, which
// is always a *diagnostic.SyntaxError.
func (p *Parser) Parse() ([]ast.Datum, error) {
	var datums []ast.Datum
	for !p.check(lexer.EOF) {
		d, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		datums = append(datums, d)
	}
	return datums, nil
}

func (p *Parser) parseDatum() (ast.Datum, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.LPAREN, lexer.LBRACKET:
		return p.parseList()
	case lexer.RPAREN, lexer.RBRACKET:
		return nil, p.errorf(tok.Pos, "unexpected '%s'", tok.Literal)
	case lexer.SYMBOL:
		p.advance()
		return &ast.Symbol{Name: tok.Literal, Start: tok.Pos}, nil
	case lexer.INT_LIT, lexer.FLOAT_LIT:
		p.advance()
		return &ast.Number{Text: tok.Literal, IsFloat: tok.Type == lexer.FLOAT_LIT, Start: tok.Pos}, nil
	case lexer.STRING_LIT:
		p.advance()
		return &ast.String{Value: tok.Value, Start: tok.Pos}, nil
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return &ast.Bool{Value: tok.Type == lexer.TRUE, Start: tok.Pos}, nil
	case lexer.NIL:
		p.advance()
		return &ast.Nil{Start: tok.Pos}, nil
	case lexer.ILLEGAL:
		return nil, p.errorf(tok.Pos, "%s", tok.Err)
	default:
		return nil, p.errorf(tok.Pos, "unexpected %s", tok.Describe())
	}
}

// parseList parses ( datum* ) or [ datum* ]
func (p *Parser) parseList() (ast.Datum, error) {
	open := p.advance()
	closer := lexer.Closer(open.Type)
	closeText := ")"
	if closer == lexer.RBRACKET {
		closeText = "]"
	}

	list := &ast.List{
		Brackets: open.Type == lexer.LBRACKET,
		Start:    open.Pos,
	}

	for {
		tok := p.current()
		switch tok.Type {
		case closer:
			p.advance()
			list.End = tok.Pos
			return list, nil
		case lexer.EOF, lexer.RPAREN, lexer.RBRACKET:
			return nil, p.errorf(tok.Pos, "expected '%s' to close '%s' opened at %s, got %s",
				closeText, open.Literal, open.Pos, tok.Describe())
		}

		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
}
