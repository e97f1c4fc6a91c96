package cache

import (
	"context"

	"github.com/lhaig/quill/internal/backend"
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
)

// Compile returns the cached result for src when one exists, otherwise it
// compiles src with be and stores successful output. Failed compilations
// are recorded but never stored. The bool reports a cache hit.
func (c *Cache) Compile(ctx context.Context, be backend.Backend, src frontend.Source) (*compiler.Result, bool, error) {
	key := Key(be.Name(), src.Text)

	output, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if hit {
		if _, err := c.Record(ctx, src.Name, be.Name(), key, true, true); err != nil {
			return nil, false, err
		}
		return &compiler.Result{Output: output}, true, nil
	}

	res := be.Compile(src)
	if res.OK() {
		if err := c.Put(ctx, key, be.Name(), res.Output); err != nil {
			return nil, false, err
		}
	}
	if _, err := c.Record(ctx, src.Name, be.Name(), key, false, res.OK()); err != nil {
		return nil, false, err
	}
	return res, false, nil
}
