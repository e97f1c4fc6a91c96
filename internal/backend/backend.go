// Package backend names the available code generators and wraps each one
// with the runtime prelude the driver writes in front of its output.
package backend

import (
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
)

// Backend is the interface that all code generation targets implement.
type Backend interface {
	// Name returns the target name (e.g., "js", "js-es5", "llvm", "wasm")
	Name() string
	// Extension returns the output file extension, including the dot.
	Extension() string
	// Prelude returns the runtime text written before generated code, or
	// "" when the target has none.
	Prelude() string
	// Standalone reports whether each output is a complete module, so the
	// outputs of several units cannot be joined into one program.
	Standalone() bool
	// Binary reports whether output is raw bytes rather than text.
	Binary() bool
	// Compile compiles one source unit with a fresh generator.
	Compile(src frontend.Source) *compiler.Result
}
