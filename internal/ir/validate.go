package ir

import (
	"fmt"
)

// Validate checks an IR program for structural correctness and returns a
// list of error messages. An empty slice indicates the program is valid.
// Trees produced by Lower always validate; the check guards hand-built
// trees handed to a generator.
func Validate(prog *Program) []string {
	var errors []string
	if prog == nil {
		return []string{"program is nil"}
	}

	for i, form := range prog.Forms {
		ctx := fmt.Sprintf("form %d", i+1)
		if form == nil {
			errors = append(errors, ctx+": nil node")
			continue
		}
		errors = append(errors, validateNode(form, ctx, true)...)
	}
	return errors
}

func validateNode(n Node, ctx string, top bool) []string {
	var errors []string
	where := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		errors = append(errors, fmt.Sprintf("%s: %s at %s", ctx, msg, n.Pos()))
	}

	switch n := n.(type) {
	case *Number:
		if n.Text == "" {
			where("number with empty text")
		}
	case *Ref:
		if n.Name == "" {
			where("reference with empty name")
		}
	case *Op:
		if !n.Operator.Accepts(len(n.Operands)) {
			where("operator '%s' expects %s, got %d", n.Operator, n.Operator.arityText(), len(n.Operands))
		}
	case *Call:
		if n.Callee == nil {
			where("call without callee")
		}
	case *If:
		if n.Cond == nil || n.Then == nil || n.Else == nil {
			where("if with missing branch")
		}
	case *Let:
		seen := make(map[string]bool)
		for _, b := range n.Bindings {
			if b.Name == "" {
				where("let binding with empty name")
			} else if seen[b.Name] {
				where("duplicate binding '%s'", b.Name)
			}
			seen[b.Name] = true
			if b.Value == nil {
				where("let binding '%s' without value", b.Name)
			}
		}
		if n.Body == nil {
			where("let without body")
		}
	case *Fn:
		seen := make(map[string]bool)
		for _, p := range n.Params {
			if seen[p] {
				where("duplicate parameter '%s'", p)
			}
			seen[p] = true
		}
		if n.Body == nil {
			where("fn without body")
		}
	case *Def:
		if !top {
			where("def '%s' is not at top level", n.Name)
		}
		if n.Name == "" {
			where("def with empty name")
		}
		if n.Value == nil {
			where("def '%s' without value", n.Name)
		}
	case *Set:
		if n.Name == "" {
			where("set! with empty name")
		}
		if n.Value == nil {
			where("set! '%s' without value", n.Name)
		}
	}

	for _, c := range Children(n) {
		if c == nil {
			continue // reported above
		}
		errors = append(errors, validateNode(c, ctx, false)...)
	}
	return errors
}
