// Package jsbe renders Quill IR as JavaScript. Every construct is
// supported; each top-level form becomes one statement.
package jsbe

import (
	"fmt"
	"strings"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/ir"
)

// Style selects the JavaScript dialect used for functions.
type Style int

const (
	// Arrow renders functions as arrow functions.
	Arrow Style = iota
	// ES5 renders functions as function expressions.
	ES5
)

// Name returns the backend name for the style.
func (s Style) Name() string {
	if s == ES5 {
		return "js-es5"
	}
	return "js"
}

// Generator accumulates JavaScript for one program.
type Generator struct {
	style Style
	names *nameTable
	sb    strings.Builder
	done  bool
}

var _ codegen.Generator[string] = (*Generator)(nil)

// New returns a fresh generator.
func New(style Style) *Generator {
	return &Generator{
		style: style,
		names: newNameTable(),
	}
}

func (g *Generator) Name() string { return g.style.Name() }

func (g *Generator) emitLine(s string) {
	g.sb.WriteString(s)
	g.sb.WriteString("\n")
}

func (g *Generator) emitLinef(format string, args ...any) {
	g.emitLine(fmt.Sprintf(format, args...))
}

// --- Literals ---

func (g *Generator) Number(n *ir.Number) (string, error) {
	lit := numberLiteral(n.Text)
	if strings.HasPrefix(lit, "-") {
		return "(" + lit + ")", nil
	}
	return lit, nil
}

// numberLiteral drops redundant leading zeros from a decimal literal.
// JavaScript reads 010 as octal and rejects 00.5.
func numberLiteral(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	whole, frac, hasFrac := strings.Cut(text, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if hasFrac {
		return sign + whole + "." + frac
	}
	return sign + whole
}

func (g *Generator) String(n *ir.String) (string, error) {
	return `"` + escapeJSString(n.Value) + `"`, nil
}

func (g *Generator) Bool(n *ir.Bool) (string, error) {
	if n.Value {
		return "true", nil
	}
	return "false", nil
}

func (g *Generator) Nil(*ir.Nil) (string, error) {
	return "null", nil
}

func (g *Generator) Ref(n *ir.Ref) (string, error) {
	return g.names.mangle(n.Name), nil
}

// --- Composites ---

func (g *Generator) Op(n *ir.Op, operands []string) (string, error) {
	switch {
	case n.Operator == ir.OpNot:
		return "(!" + operands[0] + ")", nil
	case n.Operator == ir.OpSub && len(operands) == 1:
		// negative literals are already parenthesised, so "--" cannot occur
		return "(-" + operands[0] + ")", nil
	}
	return "(" + strings.Join(operands, " "+mapOperator(n.Operator)+" ") + ")", nil
}

func (g *Generator) Call(n *ir.Call, callee string, args []string) (string, error) {
	return callee + "(" + strings.Join(args, ", ") + ")", nil
}

func (g *Generator) If(n *ir.If, cond, then, els string) (string, error) {
	return fmt.Sprintf("(%s ? %s : %s)", cond, then, els), nil
}

// Let renders an immediately invoked function so that the bindings get
// their own scope and the values are evaluated in the enclosing one.
func (g *Generator) Let(n *ir.Let, values []string, body string) (string, error) {
	params := g.params(n.Names())
	return g.function("", params, body) + "(" + strings.Join(values, ", ") + ")", nil
}

func (g *Generator) Fn(n *ir.Fn, body string) (string, error) {
	name := ""
	if n.Name != "" {
		name = g.names.mangle(n.Name)
	}
	return g.function(name, g.params(n.Params), body), nil
}

func (g *Generator) Do(n *ir.Do, exprs []string) (string, error) {
	return "(" + strings.Join(exprs, ", ") + ")", nil
}

func (g *Generator) Def(n *ir.Def, value string) (string, error) {
	return fmt.Sprintf("var %s = %s", g.names.mangle(n.Name), value), nil
}

func (g *Generator) Set(n *ir.Set, value string) (string, error) {
	return fmt.Sprintf("(%s = %s)", g.names.mangle(n.Name), value), nil
}

func (g *Generator) Enter(ir.Node, []string, []string) error { return nil }

func (g *Generator) Leave(ir.Node) {}

// Program writes the header and one statement per top-level form.
func (g *Generator) Program(p *ir.Program, forms []string) error {
	if g.done {
		return codegen.ErrReused
	}
	g.emitLine("// Generated JavaScript code from Quill")
	for _, f := range forms {
		g.emitLinef("%s;", f)
	}
	return nil
}

// Finalize returns the generated program. A generator can only be
// finalized once.
func (g *Generator) Finalize() (string, error) {
	if g.done {
		return "", codegen.ErrReused
	}
	g.done = true
	return g.sb.String(), nil
}

func (g *Generator) params(names []string) string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = g.names.mangle(name)
	}
	return strings.Join(out, ", ")
}

// function renders a parenthesised function expression in the active
// style. Only ES5 function expressions carry a name.
func (g *Generator) function(name, params, body string) string {
	if g.style == ES5 {
		if name != "" {
			return fmt.Sprintf("(function %s(%s) { return %s; })", name, params, body)
		}
		return fmt.Sprintf("(function (%s) { return %s; })", params, body)
	}
	return fmt.Sprintf("((%s) => %s)", params, body)
}

func mapOperator(op ir.Operator) string {
	switch op {
	case ir.OpEq:
		return "==="
	case ir.OpNe:
		return "!=="
	case ir.OpAnd:
		return "&&"
	case ir.OpOr:
		return "||"
	default:
		return op.String()
	}
}

func escapeJSString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
