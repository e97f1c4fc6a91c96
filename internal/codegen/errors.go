package codegen

import (
	"errors"
	"fmt"

	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/ir"
)

// ErrReused is returned by a generator asked to finalize a second time.
var ErrReused = errors.New("generator instance already finalized")

// GenerationError reports IR that is valid but that a backend cannot
// render.
type GenerationError struct {
	Backend string
	Kind    ir.Kind
	Pos     diagnostic.Position
	Detail  string
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s backend cannot render %s", e.Backend, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unsupported builds a GenerationError for node n.
func Unsupported(backend string, n ir.Node, format string, args ...interface{}) *GenerationError {
	return &GenerationError{
		Backend: backend,
		Kind:    n.Kind(),
		Pos:     n.Pos(),
		Detail:  fmt.Sprintf(format, args...),
	}
}
