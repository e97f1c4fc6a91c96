// Package compiler drives one compilation: it parses a source unit with the
// front end and walks the resulting IR through a code generator.
package compiler

import (
	"errors"
	"fmt"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/ir"
)

// Compile parses src and renders it with gen. A syntax error is returned
// without touching gen. The first generator error aborts the walk and no
// output is returned. gen must be a fresh instance.
//
// Compile keeps no state between calls; independent calls with
// independent generators may run concurrently.
func Compile[F any](src frontend.Source, gen codegen.Generator[F]) *Result {
	prog, err := frontend.Parse(src)
	if err != nil {
		return failure(src.Name, err)
	}
	return Generate(prog, gen)
}

// Generate renders an already lowered program with gen.
func Generate[F any](prog *ir.Program, gen codegen.Generator[F]) *Result {
	w := &walker[F]{gen: gen}

	forms := make([]F, 0, len(prog.Forms))
	for _, form := range prog.Forms {
		f, err := w.walk(form)
		if err != nil {
			return failure(prog.Name, err)
		}
		forms = append(forms, f)
	}

	if err := gen.Program(prog, forms); err != nil {
		return failure(prog.Name, err)
	}

	out, err := gen.Finalize()
	if err != nil {
		return failure(prog.Name, err)
	}
	return &Result{Output: out}
}

// walker performs the depth-first, post-order traversal. Children are
// always rendered left to right before the parent that combines them.
type walker[F any] struct {
	gen codegen.Generator[F]
}

func (w *walker[F]) walk(node ir.Node) (F, error) {
	var zero F

	var (
		f   F
		err error
	)
	switch n := node.(type) {
	case *ir.Number:
		f, err = w.gen.Number(n)
	case *ir.String:
		f, err = w.gen.String(n)
	case *ir.Bool:
		f, err = w.gen.Bool(n)
	case *ir.Nil:
		f, err = w.gen.Nil(n)
	case *ir.Ref:
		f, err = w.gen.Ref(n)

	case *ir.Op:
		operands, cerr := w.walkAll(n.Operands)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Op(n, operands)

	case *ir.Call:
		callee, cerr := w.walk(n.Callee)
		if cerr != nil {
			return zero, cerr
		}
		args, cerr := w.walkAll(n.Args)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Call(n, callee, args)

	case *ir.If:
		parts, cerr := w.walkAll([]ir.Node{n.Cond, n.Then, n.Else})
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.If(n, parts[0], parts[1], parts[2])

	case *ir.Let:
		values := make([]F, 0, len(n.Bindings))
		for _, b := range n.Bindings {
			v, cerr := w.walk(b.Value)
			if cerr != nil {
				return zero, cerr
			}
			values = append(values, v)
		}
		body, cerr := w.scoped(n, n.Names(), values, n.Body)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Let(n, values, body)

	case *ir.Fn:
		body, cerr := w.scoped(n, n.Params, nil, n.Body)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Fn(n, body)

	case *ir.Do:
		exprs, cerr := w.walkAll(n.Exprs)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Do(n, exprs)

	case *ir.Def:
		value, cerr := w.walk(n.Value)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Def(n, value)

	case *ir.Set:
		value, cerr := w.walk(n.Value)
		if cerr != nil {
			return zero, cerr
		}
		f, err = w.gen.Set(n, value)

	case nil:
		return zero, &codegen.GenerationError{Backend: w.gen.Name(), Kind: ir.KindInvalid, Detail: "missing IR node"}

	default:
		err = fmt.Errorf("unknown IR node %T", node)
	}

	if err != nil {
		return zero, w.wrap(node, err)
	}
	return f, nil
}

func (w *walker[F]) walkAll(nodes []ir.Node) ([]F, error) {
	out := make([]F, 0, len(nodes))
	for _, n := range nodes {
		f, err := w.walk(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// scoped renders body between the generator's Enter and Leave hooks.
func (w *walker[F]) scoped(scope ir.Node, names []string, values []F, body ir.Node) (F, error) {
	var zero F
	if err := w.gen.Enter(scope, names, values); err != nil {
		return zero, w.wrap(scope, err)
	}
	f, err := w.walk(body)
	w.gen.Leave(scope)
	if err != nil {
		return zero, err
	}
	return f, nil
}

// wrap turns a plain error from a render method into a GenerationError for
// the node being rendered.
func (w *walker[F]) wrap(n ir.Node, err error) error {
	var ge *codegen.GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &codegen.GenerationError{
		Backend: w.gen.Name(),
		Kind:    n.Kind(),
		Pos:     n.Pos(),
		Detail:  err.Error(),
	}
}
