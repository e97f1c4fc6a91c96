// Package codegen defines the contract between the compiler and a target
// backend. The compiler only ever talks to a Generator; it never branches
// on which backend is active.
package codegen

import "github.com/lhaig/quill/internal/ir"

// Generator renders IR nodes into fragments of type F and assembles the
// final target text. Each render method receives its node plus the
// fragments already rendered for its children, in source order.
//
// A Generator is a single-use accumulator. It is not safe for concurrent
// use and must not render more than one program.
type Generator[F any] interface {
	// Name identifies the backend in diagnostics.
	Name() string

	Number(n *ir.Number) (F, error)
	String(n *ir.String) (F, error)
	Bool(n *ir.Bool) (F, error)
	Nil(n *ir.Nil) (F, error)
	Ref(n *ir.Ref) (F, error)

	Op(n *ir.Op, operands []F) (F, error)
	Call(n *ir.Call, callee F, args []F) (F, error)
	If(n *ir.If, cond, then, els F) (F, error)
	Let(n *ir.Let, values []F, body F) (F, error)
	Fn(n *ir.Fn, body F) (F, error)
	Do(n *ir.Do, exprs []F) (F, error)
	Def(n *ir.Def, value F) (F, error)
	Set(n *ir.Set, value F) (F, error)

	// Enter is called before the body of a Let or Fn is rendered with the
	// names it binds. values holds the rendered binding values for a Let
	// and is nil for function parameters. Leave is called after the body.
	Enter(scope ir.Node, names []string, values []F) error
	Leave(scope ir.Node)

	// Program receives the rendered top-level forms once the walk is done.
	Program(p *ir.Program, forms []F) error

	// Finalize returns the accumulated target text.
	Finalize() (string, error)
}

// Factory constructs a fresh generator instance.
type Factory[F any] func() Generator[F]
