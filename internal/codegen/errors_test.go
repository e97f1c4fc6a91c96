package codegen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhaig/quill/internal/diagnostic"
	"github.com/lhaig/quill/internal/ir"
)

func TestUnsupported(t *testing.T) {
	pos := diagnostic.Position{Offset: 3, Line: 1, Column: 4}
	err := Unsupported("llvm", &ir.String{Value: "x", Loc: pos}, "strings are not supported")

	assert.Equal(t, ir.KindString, err.Kind)
	assert.Equal(t, pos, err.Pos)
	assert.Equal(t, "llvm backend cannot render string: strings are not supported", err.Error())

	var ge *GenerationError
	assert.True(t, errors.As(error(err), &ge))
}

func TestGenerationErrorWithoutDetail(t *testing.T) {
	err := &GenerationError{Backend: "js", Kind: ir.KindFn}
	assert.Equal(t, "js backend cannot render fn", err.Error())
}
