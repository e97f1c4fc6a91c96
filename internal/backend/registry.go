package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lhaig/quill/internal/jsbe"
)

// DefaultTarget is used when neither flags nor config name a target.
const DefaultTarget = "js"

var constructors = map[string]func() Backend{
	"js":     func() Backend { return &JSBackend{Style: jsbe.Arrow} },
	"js-es5": func() Backend { return &JSBackend{Style: jsbe.ES5} },
	"llvm":   func() Backend { return &LLVMBackend{} },
	"wasm":   func() Backend { return &WasmBackend{} },
}

// Lookup returns the backend for the given target
func Lookup(target string) (Backend, error) {
	ctor, ok := constructors[target]
	if !ok {
		return nil, fmt.Errorf("unknown target: %s (available: %s)", target, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the known target names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
