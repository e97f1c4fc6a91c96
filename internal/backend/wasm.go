package backend

import (
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/wasmbe"
)

// WasmBackend wraps wasmbe as a Backend implementation.
type WasmBackend struct{}

// Name returns the backend name.
func (b *WasmBackend) Name() string {
	return "wasm"
}

// Extension returns ".wasm".
func (b *WasmBackend) Extension() string {
	return ".wasm"
}

// Prelude returns "": the module exports its entry function directly.
func (b *WasmBackend) Prelude() string {
	return ""
}

// Standalone returns true: every module defines its own entry point.
func (b *WasmBackend) Standalone() bool {
	return true
}

// Binary returns true: output is a WebAssembly binary module.
func (b *WasmBackend) Binary() bool {
	return true
}

// Compile produces a WebAssembly module from one source unit.
func (b *WasmBackend) Compile(src frontend.Source) *compiler.Result {
	return compiler.Compile[[]byte](src, wasmbe.New())
}
