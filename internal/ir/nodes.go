package ir

import "github.com/lhaig/quill/internal/diagnostic"

// Kind identifies the construct an IR node represents.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNil
	KindRef
	KindOp
	KindCall
	KindIf
	KindLet
	KindFn
	KindDo
	KindDef
	KindSet

	// KindInvalid marks a node the compiler could not identify.
	KindInvalid Kind = -1
)

var kindNames = [...]string{
	KindNumber: "number",
	KindString: "string",
	KindBool:   "bool",
	KindNil:    "nil",
	KindRef:    "ref",
	KindOp:     "op",
	KindCall:   "call",
	KindIf:     "if",
	KindLet:    "let",
	KindFn:     "fn",
	KindDo:     "do",
	KindDef:    "def",
	KindSet:    "set!",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is the interface for all IR nodes. Nodes are built once by the
// front end and never mutated afterwards.
type Node interface {
	Kind() Kind
	Pos() diagnostic.Position
}

// Program is the root of one lowered source unit.
type Program struct {
	Name  string
	Forms []Node
}

// --- Literals ---

// Number is a numeric literal kept in its source spelling.
type Number struct {
	Text  string
	Float bool
	Loc   diagnostic.Position
}

func (*Number) Kind() Kind                 { return KindNumber }
func (n *Number) Pos() diagnostic.Position { return n.Loc }

// String is a string literal holding its decoded value.
type String struct {
	Value string
	Loc   diagnostic.Position
}

func (*String) Kind() Kind                 { return KindString }
func (n *String) Pos() diagnostic.Position { return n.Loc }

type Bool struct {
	Value bool
	Loc   diagnostic.Position
}

func (*Bool) Kind() Kind                 { return KindBool }
func (n *Bool) Pos() diagnostic.Position { return n.Loc }

type Nil struct {
	Loc diagnostic.Position
}

func (*Nil) Kind() Kind                 { return KindNil }
func (n *Nil) Pos() diagnostic.Position { return n.Loc }

// --- References and composites ---

// Ref is a reference to a bound name.
type Ref struct {
	Name string
	Loc  diagnostic.Position
}

func (*Ref) Kind() Kind                 { return KindRef }
func (n *Ref) Pos() diagnostic.Position { return n.Loc }

// Op applies a built-in operator to its operands.
type Op struct {
	Operator Operator
	Operands []Node
	Loc      diagnostic.Position
}

func (*Op) Kind() Kind                 { return KindOp }
func (n *Op) Pos() diagnostic.Position { return n.Loc }

// Call applies a callee to arguments.
type Call struct {
	Callee Node
	Args   []Node
	Loc    diagnostic.Position
}

func (*Call) Kind() Kind                 { return KindCall }
func (n *Call) Pos() diagnostic.Position { return n.Loc }

// If is a conditional. Else is never nil; a missing branch is a Nil node.
type If struct {
	Cond Node
	Then Node
	Else Node
	Loc  diagnostic.Position
}

func (*If) Kind() Kind                 { return KindIf }
func (n *If) Pos() diagnostic.Position { return n.Loc }

// Binding is one name/value pair of a Let.
type Binding struct {
	Name  string
	Value Node
	Loc   diagnostic.Position
}

// Let binds names in parallel. Values are evaluated in the enclosing scope.
type Let struct {
	Bindings []*Binding
	Body     Node
	Loc      diagnostic.Position
}

func (*Let) Kind() Kind                 { return KindLet }
func (n *Let) Pos() diagnostic.Position { return n.Loc }

// Names returns the bound names in source order.
func (n *Let) Names() []string {
	names := make([]string, len(n.Bindings))
	for i, b := range n.Bindings {
		names[i] = b.Name
	}
	return names
}

// Fn is a function literal. Name is set when the function came from defn.
type Fn struct {
	Name   string
	Params []string
	Body   Node
	Loc    diagnostic.Position
}

func (*Fn) Kind() Kind                 { return KindFn }
func (n *Fn) Pos() diagnostic.Position { return n.Loc }

// Do evaluates its expressions in order and yields the last.
type Do struct {
	Exprs []Node
	Loc   diagnostic.Position
}

func (*Do) Kind() Kind                 { return KindDo }
func (n *Do) Pos() diagnostic.Position { return n.Loc }

// Def introduces a top-level binding.
type Def struct {
	Name  string
	Value Node
	Loc   diagnostic.Position
}

func (*Def) Kind() Kind                 { return KindDef }
func (n *Def) Pos() diagnostic.Position { return n.Loc }

// Set assigns to an existing binding.
type Set struct {
	Name  string
	Value Node
	Loc   diagnostic.Position
}

func (*Set) Kind() Kind                 { return KindSet }
func (n *Set) Pos() diagnostic.Position { return n.Loc }

// Children returns the direct child nodes of n in evaluation order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Op:
		return n.Operands
	case *Call:
		return append([]Node{n.Callee}, n.Args...)
	case *If:
		return []Node{n.Cond, n.Then, n.Else}
	case *Let:
		out := make([]Node, 0, len(n.Bindings)+1)
		for _, b := range n.Bindings {
			out = append(out, b.Value)
		}
		return append(out, n.Body)
	case *Fn:
		return []Node{n.Body}
	case *Do:
		return n.Exprs
	case *Def:
		return []Node{n.Value}
	case *Set:
		return []Node{n.Value}
	default:
		return nil
	}
}

// Inspect traverses the tree rooted at n in depth-first pre-order, calling
// f for each node. If f returns false the children of that node are
// skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
