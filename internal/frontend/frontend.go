// Package frontend turns source text into target-agnostic IR. It knows
// nothing about any target language.
package frontend

import (
	"github.com/lhaig/quill/internal/ir"
	"github.com/lhaig/quill/internal/parser"
)

// Source is one unit of source text plus the name used in diagnostics.
type Source struct {
	Name string
	Text string
}

// Parse reads and lowers src. It is a pure function of its input and stops
// at the first error, which is always a *diagnostic.SyntaxError.
func Parse(src Source) (*ir.Program, error) {
	datums, err := parser.New(src.Name, src.Text).Parse()
	if err != nil {
		return nil, err
	}
	return ir.Lower(src.Name, datums)
}
