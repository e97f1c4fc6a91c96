package backend

import (
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/jsbe"
	"github.com/lhaig/quill/internal/prelude"
)

// JSBackend wraps jsbe as a Backend implementation.
type JSBackend struct {
	Style jsbe.Style
}

// Name returns the backend name.
func (b *JSBackend) Name() string {
	return b.Style.Name()
}

// Extension returns ".js".
func (b *JSBackend) Extension() string {
	return ".js"
}

// Prelude returns the JavaScript runtime.
func (b *JSBackend) Prelude() string {
	return prelude.JavaScript()
}

// Standalone returns false: JavaScript outputs share one global scope.
func (b *JSBackend) Standalone() bool {
	return false
}

func (b *JSBackend) Binary() bool {
	return false
}

// Compile produces JavaScript source code from one source unit.
func (b *JSBackend) Compile(src frontend.Source) *compiler.Result {
	return compiler.Compile[string](src, jsbe.New(b.Style))
}
