package backend

import (
	"github.com/llir/llvm/ir/value"

	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/llvmbe"
)

// LLVMBackend wraps llvmbe as a Backend implementation.
type LLVMBackend struct{}

// Name returns the backend name.
func (b *LLVMBackend) Name() string {
	return "llvm"
}

// Extension returns ".ll".
func (b *LLVMBackend) Extension() string {
	return ".ll"
}

// Prelude returns "": LLVM output is self-contained.
func (b *LLVMBackend) Prelude() string {
	return ""
}

// Standalone returns true: every module defines its own entry point.
func (b *LLVMBackend) Standalone() bool {
	return true
}

func (b *LLVMBackend) Binary() bool {
	return false
}

// Compile produces LLVM assembly from one source unit.
func (b *LLVMBackend) Compile(src frontend.Source) *compiler.Result {
	return compiler.Compile[value.Value](src, llvmbe.New())
}
