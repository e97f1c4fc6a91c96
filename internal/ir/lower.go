package ir

import (
	"github.com/lhaig/quill/internal/ast"
	"github.com/lhaig/quill/internal/diagnostic"
)

// specialForms are the list heads handled by the lowerer. They cannot be
// bound and cannot be used as values.
var specialForms = map[string]bool{
	"if":   true,
	"cond": true,
	"let":  true,
	"fn":   true,
	"do":   true,
	"def":  true,
	"defn": true,
	"set!": true,
}

// IsSpecialForm reports whether name is a special form keyword.
func IsSpecialForm(name string) bool {
	return specialForms[name]
}

// IsReserved reports whether name can never be bound.
func IsReserved(name string) bool {
	if specialForms[name] {
		return true
	}
	_, ok := LookupOperator(name)
	return ok
}

// lowerer transforms reader datums into IR nodes.
type lowerer struct {
	file string
}

// Lower transforms the datums of one source unit into an IR Program. The
// first malformed form stops lowering and is returned as a
// *diagnostic.SyntaxError.
func Lower(name string, forms []ast.Datum) (*Program, error) {
	l := &lowerer{file: name}
	prog := &Program{Name: name}

	for _, form := range forms {
		n, err := l.lowerTop(form)
		if err != nil {
			return nil, err
		}
		prog.Forms = append(prog.Forms, n)
	}
	return prog, nil
}

func (l *lowerer) errorf(pos diagnostic.Position, format string, args ...interface{}) error {
	return diagnostic.Syntaxf(l.file, pos, format, args...)
}

func (l *lowerer) lowerTop(d ast.Datum) (Node, error) {
	if list, ok := d.(*ast.List); ok && !list.Brackets {
		switch list.Head() {
		case "def":
			return l.lowerDef(list)
		case "defn":
			return l.lowerDefn(list)
		}
	}
	return l.lowerExpr(d)
}

func (l *lowerer) lowerExpr(d ast.Datum) (Node, error) {
	switch n := d.(type) {
	case *ast.Number:
		return &Number{Text: n.Text, Float: n.IsFloat, Loc: n.Start}, nil
	case *ast.String:
		return &String{Value: n.Value, Loc: n.Start}, nil
	case *ast.Bool:
		return &Bool{Value: n.Value, Loc: n.Start}, nil
	case *ast.Nil:
		return &Nil{Loc: n.Start}, nil
	case *ast.Symbol:
		if specialForms[n.Name] {
			return nil, l.errorf(n.Start, "special form '%s' cannot be used as a value", n.Name)
		}
		return &Ref{Name: n.Name, Loc: n.Start}, nil
	case *ast.List:
		if n.Brackets {
			return nil, l.errorf(n.Start, "unexpected '[': brackets are only allowed in binding lists")
		}
		return l.lowerList(n)
	default:
		return nil, l.errorf(d.Pos(), "unsupported form %s", ast.Text(d))
	}
}

func (l *lowerer) lowerList(list *ast.List) (Node, error) {
	if len(list.Items) == 0 {
		return nil, l.errorf(list.Start, "empty list '()' is not an expression")
	}

	head := list.Head()
	switch head {
	case "if":
		return l.lowerIf(list)
	case "cond":
		return l.lowerCond(list)
	case "let":
		return l.lowerLet(list)
	case "fn":
		return l.lowerFn(list)
	case "do":
		return l.lowerDo(list)
	case "def", "defn":
		return nil, l.errorf(list.Start, "'%s' is only allowed at top level", head)
	case "set!":
		return l.lowerSet(list)
	}

	if op, ok := LookupOperator(head); ok {
		return l.lowerOp(list, op)
	}
	return l.lowerCall(list)
}

func (l *lowerer) lowerExprs(items []ast.Datum) ([]Node, error) {
	out := make([]Node, 0, len(items))
	for _, item := range items {
		n, err := l.lowerExpr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// lowerBody lowers one or more body expressions; several become a Do.
func (l *lowerer) lowerBody(items []ast.Datum) (Node, error) {
	if len(items) == 1 {
		return l.lowerExpr(items[0])
	}
	exprs, err := l.lowerExprs(items)
	if err != nil {
		return nil, err
	}
	return &Do{Exprs: exprs, Loc: items[0].Pos()}, nil
}

func (l *lowerer) lowerOp(list *ast.List, op Operator) (Node, error) {
	operands := list.Items[1:]
	if !op.Accepts(len(operands)) {
		return nil, l.errorf(list.Start, "operator '%s' expects %s, got %d", op, op.arityText(), len(operands))
	}
	nodes, err := l.lowerExprs(operands)
	if err != nil {
		return nil, err
	}
	return &Op{Operator: op, Operands: nodes, Loc: list.Start}, nil
}

func (l *lowerer) lowerCall(list *ast.List) (Node, error) {
	callee, err := l.lowerExpr(list.Items[0])
	if err != nil {
		return nil, err
	}
	args, err := l.lowerExprs(list.Items[1:])
	if err != nil {
		return nil, err
	}
	return &Call{Callee: callee, Args: args, Loc: list.Start}, nil
}

// lowerIf lowers (if cond then [else])
func (l *lowerer) lowerIf(list *ast.List) (Node, error) {
	if len(list.Items) < 3 || len(list.Items) > 4 {
		return nil, l.errorf(list.Start, "'if' expects a condition, a then branch and an optional else branch")
	}
	nodes, err := l.lowerExprs(list.Items[1:])
	if err != nil {
		return nil, err
	}
	n := &If{Cond: nodes[0], Then: nodes[1], Loc: list.Start}
	if len(nodes) == 3 {
		n.Else = nodes[2]
	} else {
		n.Else = &Nil{Loc: list.End}
	}
	return n, nil
}

// lowerCond lowers (cond (test body...) ... (else body...)) to nested ifs.
func (l *lowerer) lowerCond(list *ast.List) (Node, error) {
	clauses := list.Items[1:]
	if len(clauses) == 0 {
		return nil, l.errorf(list.Start, "'cond' expects at least one clause")
	}

	type clause struct {
		test Node // nil for else
		body Node
		pos  diagnostic.Position
	}
	lowered := make([]clause, 0, len(clauses))

	for i, item := range clauses {
		cl, ok := item.(*ast.List)
		if !ok || cl.Brackets || len(cl.Items) < 2 {
			return nil, l.errorf(item.Pos(), "'cond' clause must be a list of a test and a body, got %s", ast.Text(item))
		}
		var c clause
		c.pos = cl.Start
		if cl.Head() == "else" {
			if i != len(clauses)-1 {
				return nil, l.errorf(cl.Start, "'else' must be the last 'cond' clause")
			}
		} else {
			test, err := l.lowerExpr(cl.Items[0])
			if err != nil {
				return nil, err
			}
			c.test = test
		}
		body, err := l.lowerBody(cl.Items[1:])
		if err != nil {
			return nil, err
		}
		c.body = body
		lowered = append(lowered, c)
	}

	var result Node = &Nil{Loc: list.End}
	for i := len(lowered) - 1; i >= 0; i-- {
		c := lowered[i]
		if c.test == nil {
			result = c.body
			continue
		}
		result = &If{Cond: c.test, Then: c.body, Else: result, Loc: c.pos}
	}
	if n, ok := result.(*If); ok {
		n.Loc = list.Start
	}
	return result, nil
}

// lowerLet lowers (let ((name value) ...) body...)
func (l *lowerer) lowerLet(list *ast.List) (Node, error) {
	if len(list.Items) < 3 {
		return nil, l.errorf(list.Start, "'let' expects a binding list and a body")
	}
	bindList, ok := list.Items[1].(*ast.List)
	if !ok {
		return nil, l.errorf(list.Items[1].Pos(), "'let' bindings must be a list, got %s", ast.Text(list.Items[1]))
	}

	n := &Let{Loc: list.Start}
	seen := make(map[string]bool)
	for _, item := range bindList.Items {
		pair, ok := item.(*ast.List)
		if !ok || len(pair.Items) != 2 {
			return nil, l.errorf(item.Pos(), "'let' binding must be a (name value) pair, got %s", ast.Text(item))
		}
		name, err := l.bindableName(pair.Items[0], "'let' binding")
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, l.errorf(pair.Items[0].Pos(), "duplicate binding '%s' in 'let'", name)
		}
		seen[name] = true

		value, err := l.lowerExpr(pair.Items[1])
		if err != nil {
			return nil, err
		}
		n.Bindings = append(n.Bindings, &Binding{Name: name, Value: value, Loc: pair.Start})
	}

	body, err := l.lowerBody(list.Items[2:])
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

// lowerFn lowers (fn (params...) body...)
func (l *lowerer) lowerFn(list *ast.List) (Node, error) {
	if len(list.Items) < 3 {
		return nil, l.errorf(list.Start, "'fn' expects a parameter list and a body")
	}
	return l.lowerFunction("", list.Items[1], list.Items[2:], list.Start)
}

func (l *lowerer) lowerFunction(name string, params ast.Datum, body []ast.Datum, pos diagnostic.Position) (Node, error) {
	paramList, ok := params.(*ast.List)
	if !ok {
		return nil, l.errorf(params.Pos(), "parameter list must be a list, got %s", ast.Text(params))
	}

	fn := &Fn{Name: name, Params: []string{}, Loc: pos}
	seen := make(map[string]bool)
	for _, p := range paramList.Items {
		pname, err := l.bindableName(p, "parameter")
		if err != nil {
			return nil, err
		}
		if seen[pname] {
			return nil, l.errorf(p.Pos(), "duplicate parameter '%s'", pname)
		}
		seen[pname] = true
		fn.Params = append(fn.Params, pname)
	}

	b, err := l.lowerBody(body)
	if err != nil {
		return nil, err
	}
	fn.Body = b
	return fn, nil
}

// lowerDo lowers (do e...); an empty do is nil.
func (l *lowerer) lowerDo(list *ast.List) (Node, error) {
	if len(list.Items) == 1 {
		return &Nil{Loc: list.Start}, nil
	}
	exprs, err := l.lowerExprs(list.Items[1:])
	if err != nil {
		return nil, err
	}
	return &Do{Exprs: exprs, Loc: list.Start}, nil
}

// lowerDef lowers (def name value)
func (l *lowerer) lowerDef(list *ast.List) (Node, error) {
	if len(list.Items) != 3 {
		return nil, l.errorf(list.Start, "'def' expects a name and a value")
	}
	name, err := l.bindableName(list.Items[1], "'def' name")
	if err != nil {
		return nil, err
	}
	value, err := l.lowerExpr(list.Items[2])
	if err != nil {
		return nil, err
	}
	return &Def{Name: name, Value: value, Loc: list.Start}, nil
}

// lowerDefn lowers (defn name (params...) body...) to a Def of a named Fn.
func (l *lowerer) lowerDefn(list *ast.List) (Node, error) {
	if len(list.Items) < 4 {
		return nil, l.errorf(list.Start, "'defn' expects a name, a parameter list and a body")
	}
	name, err := l.bindableName(list.Items[1], "'defn' name")
	if err != nil {
		return nil, err
	}
	fn, err := l.lowerFunction(name, list.Items[2], list.Items[3:], list.Start)
	if err != nil {
		return nil, err
	}
	return &Def{Name: name, Value: fn, Loc: list.Start}, nil
}

// lowerSet lowers (set! name value)
func (l *lowerer) lowerSet(list *ast.List) (Node, error) {
	if len(list.Items) != 3 {
		return nil, l.errorf(list.Start, "'set!' expects a name and a value")
	}
	name, err := l.bindableName(list.Items[1], "'set!' target")
	if err != nil {
		return nil, err
	}
	value, err := l.lowerExpr(list.Items[2])
	if err != nil {
		return nil, err
	}
	return &Set{Name: name, Value: value, Loc: list.Start}, nil
}

// bindableName checks that d is a symbol that may be bound.
func (l *lowerer) bindableName(d ast.Datum, what string) (string, error) {
	sym, ok := d.(*ast.Symbol)
	if !ok {
		return "", l.errorf(d.Pos(), "%s must be a symbol, got %s", what, ast.Text(d))
	}
	if IsReserved(sym.Name) {
		return "", l.errorf(sym.Start, "cannot bind reserved name '%s'", sym.Name)
	}
	return sym.Name, nil
}
