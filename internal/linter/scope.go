package linter

import (
	"fmt"

	"github.com/lhaig/quill/internal/diagnostic"
)

// symbolKind represents how a name was bound
type symbolKind int

const (
	symGlobal symbolKind = iota
	symBinding
	symParam
)

// String returns the string representation of the symbol kind
func (sk symbolKind) String() string {
	switch sk {
	case symGlobal:
		return "definition"
	case symBinding:
		return "binding"
	case symParam:
		return "parameter"
	default:
		return "unknown"
	}
}

// symbol is one bound name and whether anything read it
type symbol struct {
	name string
	kind symbolKind
	pos  diagnostic.Position
	used bool
}

// scope represents a lexical scope with a symbol table
type scope struct {
	parent  *scope
	symbols map[string]*symbol
	order   []*symbol // definition order, for stable reporting
}

// newScope creates a new scope with an optional parent
func newScope(parent *scope) *scope {
	return &scope{
		parent:  parent,
		symbols: make(map[string]*symbol),
	}
}

// define adds a symbol to the current scope.
// Returns an error if the symbol is already defined in this scope
func (s *scope) define(sym *symbol) error {
	if prev, exists := s.symbols[sym.name]; exists {
		return fmt.Errorf("'%s' is already defined at %s", sym.name, prev.pos)
	}
	s.symbols[sym.name] = sym
	s.order = append(s.order, sym)
	return nil
}

// resolve looks up a symbol in the current scope and parent scopes.
// Returns nil if the symbol is not found
func (s *scope) resolve(name string) *symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.resolve(name)
	}
	return nil
}
