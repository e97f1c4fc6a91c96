package backend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/frontend"
)

// CompileAll compiles every unit with be, at most GOMAXPROCS at a time.
// Each unit gets its own generator. Results are returned in input order;
// units not started before ctx is done fail with the context's error.
func CompileAll(ctx context.Context, be Backend, srcs []frontend.Source) []*compiler.Result {
	results := make([]*compiler.Result, len(srcs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = cancelled(src, err)
				return nil
			}
			results[i] = be.Compile(src)
			return nil
		})
	}
	_ = g.Wait() // units never return errors; failures live in their results

	return results
}

func cancelled(src frontend.Source, err error) *compiler.Result {
	d := &diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Message:  err.Error(),
		File:     src.Name,
	}
	return &compiler.Result{Diagnostic: d, Err: err}
}
