// Package linter reports style and correctness warnings over lowered IR.
// It never reports errors; anything the linter sees already compiled.
package linter

import (
	"strings"

	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/ir"
)

// Rule names, usable in Options.Disable and config lint.disable.
const (
	RuleUnusedBinding     = "unused-binding"
	RuleUnusedParam       = "unused-param"
	RuleShadow            = "shadow"
	RuleRedefinition      = "redefinition"
	RuleConstantCondition = "constant-condition"
	RuleUndeclaredAssign  = "undeclared-assign"
)

// Rules lists every rule the linter knows.
var Rules = []string{
	RuleUnusedBinding,
	RuleUnusedParam,
	RuleShadow,
	RuleRedefinition,
	RuleConstantCondition,
	RuleUndeclaredAssign,
}

const unusedHint = "prefix the name with '_' to silence this warning"

// Options configures a lint run.
type Options struct {
	Disable []string
}

// Linter walks one program with a scope chain.
type Linter struct {
	prog     *ir.Program
	disabled map[string]bool
	globals  *scope
	found    []diagnostic.Diagnostic
}

// Lint runs all enabled rules on the given program and returns
// diagnostics ordered by position.
func Lint(prog *ir.Program, opts Options) *diagnostic.Diagnostics {
	l := &Linter{
		prog:     prog,
		disabled: make(map[string]bool),
		globals:  newScope(nil),
	}
	for _, rule := range opts.Disable {
		l.disabled[rule] = true
	}

	// Top-level definitions are visible everywhere, including before the
	// def that introduces them.
	for _, form := range prog.Forms {
		if def, ok := form.(*ir.Def); ok {
			err := l.globals.define(&symbol{name: def.Name, kind: symGlobal, pos: def.Loc})
			if err != nil {
				l.warn(RuleRedefinition, def.Loc, err.Error(), "")
			}
		}
	}

	for _, form := range prog.Forms {
		l.visit(form, l.globals)
	}

	diag := diagnostic.New()
	for _, d := range l.found {
		diag.Add(d)
	}
	diag.Sort()
	return diag
}

func (l *Linter) warn(rule string, pos diagnostic.Position, msg, hint string) {
	if l.disabled[rule] {
		return
	}
	l.found = append(l.found, diagnostic.Diagnostic{
		Severity: diagnostic.Warning,
		Message:  msg,
		Pos:      pos,
		File:     l.prog.Name,
		Rule:     rule,
		Hint:     hint,
	})
}

func (l *Linter) visit(n ir.Node, s *scope) {
	switch n := n.(type) {
	case *ir.Ref:
		if sym := s.resolve(n.Name); sym != nil {
			sym.used = true
		}

	case *ir.If:
		l.checkConstantCondition(n)
		l.visit(n.Cond, s)
		l.visit(n.Then, s)
		l.visit(n.Else, s)

	case *ir.Let:
		for _, b := range n.Bindings {
			l.visit(b.Value, s)
		}
		inner := newScope(s)
		for _, b := range n.Bindings {
			l.bind(inner, &symbol{name: b.Name, kind: symBinding, pos: b.Loc})
		}
		l.visit(n.Body, inner)
		l.reportUnused(inner)

	case *ir.Fn:
		inner := newScope(s)
		for _, p := range n.Params {
			l.bind(inner, &symbol{name: p, kind: symParam, pos: n.Loc})
		}
		l.visit(n.Body, inner)
		l.reportUnused(inner)

	case *ir.Set:
		if s.resolve(n.Name) == nil {
			l.warn(RuleUndeclaredAssign, n.Loc, "assignment to undeclared name '"+n.Name+"'",
				"introduce it with def or let first")
		}
		l.visit(n.Value, s)

	default:
		for _, c := range ir.Children(n) {
			l.visit(c, s)
		}
	}
}

// bind defines sym in s, reporting when it hides an outer name.
func (l *Linter) bind(s *scope, sym *symbol) {
	if outer := s.parent.resolve(sym.name); outer != nil && !exempt(sym.name) {
		l.warn(RuleShadow, sym.pos,
			sym.kind.String()+" '"+sym.name+"' shadows the "+outer.kind.String()+" declared at "+outer.pos.String(), "")
	}
	_ = s.define(sym) // duplicates were rejected by the front end
}

func (l *Linter) reportUnused(s *scope) {
	for _, sym := range s.order {
		if sym.used || exempt(sym.name) {
			continue
		}
		switch sym.kind {
		case symBinding:
			l.warn(RuleUnusedBinding, sym.pos, "unused binding '"+sym.name+"'", unusedHint)
		case symParam:
			l.warn(RuleUnusedParam, sym.pos, "unused parameter '"+sym.name+"'", unusedHint)
		}
	}
}

// checkConstantCondition warns when an if tests a literal.
func (l *Linter) checkConstantCondition(n *ir.If) {
	var text string
	switch c := n.Cond.(type) {
	case *ir.Bool:
		text = "false"
		if c.Value {
			text = "true"
		}
	case *ir.Nil:
		text = "nil"
	case *ir.Number:
		text = c.Text
	case *ir.String:
		text = "a string"
	default:
		return
	}
	l.warn(RuleConstantCondition, n.Cond.Pos(), "condition is always "+text, "")
}

// exempt reports whether name opts out of unused and shadow checks.
func exempt(name string) bool {
	return strings.HasPrefix(name, "_")
}
