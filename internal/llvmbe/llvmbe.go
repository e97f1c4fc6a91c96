// Package llvmbe renders the straight-line integer subset of Quill as
// textual LLVM IR. Every value is an i64; booleans are 0 or 1.
package llvmbe

import (
	"strconv"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/ir"
)

const backendName = "llvm"

// EntryFunc is the function holding the program; it returns the value of
// the last top-level form.
const EntryFunc = "quill_main"

// Generator accumulates one LLVM module.
type Generator struct {
	module  *llvm.Module
	entry   *llvm.Func
	block   *llvm.Block
	globals map[string]value.Value
	scopes  []map[string]value.Value
	done    bool
}

var _ codegen.Generator[value.Value] = (*Generator)(nil)

// New returns a fresh generator.
func New() *Generator {
	m := llvm.NewModule()
	f := m.NewFunc(EntryFunc, types.I64)
	return &Generator{
		module:  m,
		entry:   f,
		block:   f.NewBlock("entry"),
		globals: make(map[string]value.Value),
	}
}

func (g *Generator) Name() string { return backendName }

func (g *Generator) refuse(n ir.Node, format string, args ...interface{}) (value.Value, error) {
	return nil, codegen.Unsupported(backendName, n, format, args...)
}

func (g *Generator) Number(n *ir.Number) (value.Value, error) {
	if n.Float {
		return g.refuse(n, "floating-point literal %s", n.Text)
	}
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		return g.refuse(n, "integer literal %s does not fit in i64", n.Text)
	}
	return constant.NewInt(types.I64, v), nil
}

func (g *Generator) String(n *ir.String) (value.Value, error) {
	return g.refuse(n, "strings are not supported")
}

func (g *Generator) Bool(n *ir.Bool) (value.Value, error) {
	if n.Value {
		return constant.NewInt(types.I64, 1), nil
	}
	return constant.NewInt(types.I64, 0), nil
}

func (g *Generator) Nil(n *ir.Nil) (value.Value, error) {
	return g.refuse(n, "nil is not supported")
}

func (g *Generator) Ref(n *ir.Ref) (value.Value, error) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if v, ok := g.scopes[i][n.Name]; ok {
			return v, nil
		}
	}
	if v, ok := g.globals[n.Name]; ok {
		return v, nil
	}
	return g.refuse(n, "unbound name '%s'", n.Name)
}

func (g *Generator) Op(n *ir.Op, operands []value.Value) (value.Value, error) {
	b := g.block
	switch n.Operator {
	case ir.OpNot:
		return g.widen(b.NewICmp(enum.IPredEQ, operands[0], constant.NewInt(types.I64, 0))), nil
	case ir.OpSub:
		if len(operands) == 1 {
			return b.NewSub(constant.NewInt(types.I64, 0), operands[0]), nil
		}
	case ir.OpAnd, ir.OpOr:
		return g.refuse(n, "short-circuit operator '%s' is not supported", n.Operator)
	}

	if n.Operator.IsComparison() {
		return g.widen(b.NewICmp(predicate(n.Operator), operands[0], operands[1])), nil
	}

	acc := operands[0]
	for _, v := range operands[1:] {
		switch n.Operator {
		case ir.OpAdd:
			acc = b.NewAdd(acc, v)
		case ir.OpSub:
			acc = b.NewSub(acc, v)
		case ir.OpMul:
			acc = b.NewMul(acc, v)
		case ir.OpDiv:
			acc = b.NewSDiv(acc, v)
		case ir.OpMod:
			acc = b.NewSRem(acc, v)
		}
	}
	return acc, nil
}

// widen widens an i1 comparison result to i64.
func (g *Generator) widen(v value.Value) value.Value {
	return g.block.NewZExt(v, types.I64)
}

func predicate(op ir.Operator) enum.IPred {
	switch op {
	case ir.OpEq:
		return enum.IPredEQ
	case ir.OpNe:
		return enum.IPredNE
	case ir.OpLt:
		return enum.IPredSLT
	case ir.OpLe:
		return enum.IPredSLE
	case ir.OpGt:
		return enum.IPredSGT
	default:
		return enum.IPredSGE
	}
}

func (g *Generator) Call(n *ir.Call, callee value.Value, args []value.Value) (value.Value, error) {
	return g.refuse(n, "calls are not supported")
}

func (g *Generator) If(n *ir.If, cond, then, els value.Value) (value.Value, error) {
	return g.refuse(n, "conditionals are not supported")
}

func (g *Generator) Let(n *ir.Let, values []value.Value, body value.Value) (value.Value, error) {
	return body, nil
}

func (g *Generator) Fn(n *ir.Fn, body value.Value) (value.Value, error) {
	return g.refuse(n, "functions are not supported")
}

func (g *Generator) Do(n *ir.Do, exprs []value.Value) (value.Value, error) {
	return exprs[len(exprs)-1], nil
}

func (g *Generator) Def(n *ir.Def, v value.Value) (value.Value, error) {
	g.globals[n.Name] = v
	return v, nil
}

func (g *Generator) Set(n *ir.Set, v value.Value) (value.Value, error) {
	return g.refuse(n, "assignment is not supported")
}

// Enter binds let names to their already computed values. Function
// scopes are refused before their body is visited.
func (g *Generator) Enter(scope ir.Node, names []string, values []value.Value) error {
	if scope.Kind() == ir.KindFn {
		return codegen.Unsupported(backendName, scope, "functions are not supported")
	}
	frame := make(map[string]value.Value, len(names))
	for i, name := range names {
		frame[name] = values[i]
	}
	g.scopes = append(g.scopes, frame)
	return nil
}

func (g *Generator) Leave(ir.Node) {
	if len(g.scopes) > 0 {
		g.scopes = g.scopes[:len(g.scopes)-1]
	}
}

// Program returns the last top-level value from the entry function and
// adds an i32 main that calls it.
func (g *Generator) Program(p *ir.Program, forms []value.Value) error {
	if g.done {
		return codegen.ErrReused
	}
	var result value.Value = constant.NewInt(types.I64, 0)
	if len(forms) > 0 {
		result = forms[len(forms)-1]
	}
	g.block.NewRet(result)

	main := g.module.NewFunc("main", types.I32)
	mb := main.NewBlock("entry")
	v := mb.NewCall(g.entry)
	mb.NewRet(mb.NewTrunc(v, types.I32))
	return nil
}

// Finalize returns the module as LLVM assembly. A generator can only be
// finalized once.
func (g *Generator) Finalize() (string, error) {
	if g.done {
		return "", codegen.ErrReused
	}
	g.done = true
	return g.module.String(), nil
}
