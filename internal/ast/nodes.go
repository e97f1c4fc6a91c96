package ast

import "github.com/lhaig/quill/internal/diagnostic"

// Datum is a value produced by the reader: a list or an atom.
type Datum interface {
	Pos() diagnostic.Position
	datumNode()
}

// List is a delimited sequence of datums. Bracketed lists record their
// delimiter so the formatter can reproduce it.
type List struct {
	Items    []Datum
	Brackets bool // written with [ ] instead of ( )
	Start    diagnostic.Position
	End      diagnostic.Position // position of the closing delimiter
}

func (l *List) Pos() diagnostic.Position { return l.Start }
func (*List) datumNode()                 {}

// Head returns the symbol name at the head of the list, or "".
func (l *List) Head() string {
	if len(l.Items) == 0 {
		return ""
	}
	if sym, ok := l.Items[0].(*Symbol); ok {
		return sym.Name
	}
	return ""
}

// Symbol is a bare name.
type Symbol struct {
	Name  string
	Start diagnostic.Position
}

func (s *Symbol) Pos() diagnostic.Position { return s.Start }
func (*Symbol) datumNode()                 {}

// Number is an integer or decimal literal kept in its source spelling.
type Number struct {
	Text    string
	IsFloat bool
	Start   diagnostic.Position
}

func (n *Number) Pos() diagnostic.Position { return n.Start }
func (*Number) datumNode()                 {}

// String is a string literal. Value holds the decoded contents.
type String struct {
	Value string
	Start diagnostic.Position
}

func (s *String) Pos() diagnostic.Position { return s.Start }
func (*String) datumNode()                 {}

// Bool is true or false.
type Bool struct {
	Value bool
	Start diagnostic.Position
}

func (b *Bool) Pos() diagnostic.Position { return b.Start }
func (*Bool) datumNode()                 {}

// Nil is the nil literal.
type Nil struct {
	Start diagnostic.Position
}

func (n *Nil) Pos() diagnostic.Position { return n.Start }
func (*Nil) datumNode()                 {}
