// Package wasmbe renders the integer subset of Quill as a WebAssembly
// binary module. Every value is an i64; booleans are 0 or 1 and any
// non-zero value counts as true.
package wasmbe

import (
	"strconv"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/ir"
)

const backendName = "wasm"

// EntryFunc is the exported function holding the program; it returns the
// value of the last top-level form.
const EntryFunc = "quill_main"

// Generator accumulates the body of the entry function. Every name bound
// by let or def gets its own i64 local.
type Generator struct {
	locals  uint32
	scopes  []map[string]uint32
	globals map[string]uint32
	lets    map[*ir.Let][]uint32
	code    []byte
	done    bool
}

var _ codegen.Generator[[]byte] = (*Generator)(nil)

// New returns a fresh generator.
func New() *Generator {
	return &Generator{
		globals: make(map[string]uint32),
		lets:    make(map[*ir.Let][]uint32),
	}
}

func (g *Generator) Name() string { return backendName }

func (g *Generator) refuse(n ir.Node, format string, args ...interface{}) ([]byte, error) {
	return nil, codegen.Unsupported(backendName, n, format, args...)
}

// allocLocal allocates a new i64 local and returns its index.
func (g *Generator) allocLocal() uint32 {
	idx := g.locals
	g.locals++
	return idx
}

func (g *Generator) resolve(name string) (uint32, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if idx, ok := g.scopes[i][name]; ok {
			return idx, true
		}
	}
	idx, ok := g.globals[name]
	return idx, ok
}

// --- Literals ---

func (g *Generator) Number(n *ir.Number) ([]byte, error) {
	if n.Float {
		return g.refuse(n, "floating-point literal %s", n.Text)
	}
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		return g.refuse(n, "integer literal %s does not fit in i64", n.Text)
	}
	return i64Const(v), nil
}

func (g *Generator) String(n *ir.String) ([]byte, error) {
	return g.refuse(n, "strings are not supported")
}

func (g *Generator) Bool(n *ir.Bool) ([]byte, error) {
	if n.Value {
		return i64Const(1), nil
	}
	return i64Const(0), nil
}

func (g *Generator) Nil(n *ir.Nil) ([]byte, error) {
	return g.refuse(n, "nil is not supported")
}

func (g *Generator) Ref(n *ir.Ref) ([]byte, error) {
	idx, ok := g.resolve(n.Name)
	if !ok {
		return g.refuse(n, "unbound name '%s'", n.Name)
	}
	return localOp(opLocalGet, idx), nil
}

// --- Operators ---

func (g *Generator) Op(n *ir.Op, operands [][]byte) ([]byte, error) {
	switch n.Operator {
	case ir.OpNot:
		return seq(operands[0], []byte{opI64Eqz, opI64ExtendI32U}), nil
	case ir.OpSub:
		if len(operands) == 1 {
			return seq(i64Const(0), operands[0], []byte{opI64Sub}), nil
		}
	case ir.OpAnd:
		return g.and(operands), nil
	case ir.OpOr:
		return g.or(operands), nil
	}

	if n.Operator.IsComparison() {
		return seq(operands[0], operands[1], []byte{comparison(n.Operator), opI64ExtendI32U}), nil
	}

	acc := operands[0]
	for _, v := range operands[1:] {
		acc = seq(acc, v, []byte{arithmetic(n.Operator)})
	}
	return acc, nil
}

// truthy converts an i64 on the stack into the i32 condition if expects.
func truthy(v []byte) []byte {
	return seq(v, i64Const(0), []byte{opI64Ne})
}

// and yields the first false operand, or the last one. Later operands
// are only evaluated when every earlier one is true.
func (g *Generator) and(operands [][]byte) []byte {
	result := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		result = seq(truthy(operands[i]), []byte{opIf, blockI64}, result,
			[]byte{opElse}, i64Const(0), []byte{opEnd})
	}
	return result
}

// or yields the first true operand, or the last one.
func (g *Generator) or(operands [][]byte) []byte {
	result := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		tmp := g.allocLocal()
		result = seq(operands[i], localOp(opLocalTee, tmp), i64Const(0), []byte{opI64Ne, opIf, blockI64},
			localOp(opLocalGet, tmp), []byte{opElse}, result, []byte{opEnd})
	}
	return result
}

func comparison(op ir.Operator) byte {
	switch op {
	case ir.OpEq:
		return opI64Eq
	case ir.OpNe:
		return opI64Ne
	case ir.OpLt:
		return opI64LtS
	case ir.OpLe:
		return opI64LeS
	case ir.OpGt:
		return opI64GtS
	default:
		return opI64GeS
	}
}

func arithmetic(op ir.Operator) byte {
	switch op {
	case ir.OpAdd:
		return opI64Add
	case ir.OpSub:
		return opI64Sub
	case ir.OpMul:
		return opI64Mul
	case ir.OpDiv:
		return opI64DivS
	default:
		return opI64RemS
	}
}

// --- Composites ---

func (g *Generator) Call(n *ir.Call, callee []byte, args [][]byte) ([]byte, error) {
	return g.refuse(n, "calls are not supported")
}

func (g *Generator) If(n *ir.If, cond, then, els []byte) ([]byte, error) {
	return seq(truthy(cond), []byte{opIf, blockI64}, then, []byte{opElse}, els, []byte{opEnd}), nil
}

// Let stores each value in the local reserved for it by Enter, then runs
// the body.
func (g *Generator) Let(n *ir.Let, values [][]byte, body []byte) ([]byte, error) {
	idxs := g.lets[n]
	var out []byte
	for i, v := range values {
		out = seq(out, v, localOp(opLocalSet, idxs[i]))
	}
	return seq(out, body), nil
}

func (g *Generator) Fn(n *ir.Fn, body []byte) ([]byte, error) {
	return g.refuse(n, "functions are not supported")
}

func (g *Generator) Do(n *ir.Do, exprs [][]byte) ([]byte, error) {
	var out []byte
	for i, e := range exprs {
		out = seq(out, e)
		if i < len(exprs)-1 {
			out = append(out, opDrop)
		}
	}
	return out, nil
}

func (g *Generator) Def(n *ir.Def, value []byte) ([]byte, error) {
	idx := g.allocLocal()
	g.globals[n.Name] = idx
	return seq(value, localOp(opLocalTee, idx)), nil
}

func (g *Generator) Set(n *ir.Set, value []byte) ([]byte, error) {
	idx, ok := g.resolve(n.Name)
	if !ok {
		return g.refuse(n, "assignment to unbound name '%s'", n.Name)
	}
	return seq(value, localOp(opLocalTee, idx)), nil
}

// Enter reserves locals for let bindings. Function scopes are refused
// before their body is visited.
func (g *Generator) Enter(scope ir.Node, names []string, values [][]byte) error {
	let, ok := scope.(*ir.Let)
	if !ok {
		return codegen.Unsupported(backendName, scope, "functions are not supported")
	}
	frame := make(map[string]uint32, len(names))
	idxs := make([]uint32, len(names))
	for i, name := range names {
		idxs[i] = g.allocLocal()
		frame[name] = idxs[i]
	}
	g.lets[let] = idxs
	g.scopes = append(g.scopes, frame)
	return nil
}

func (g *Generator) Leave(ir.Node) {
	if len(g.scopes) > 0 {
		g.scopes = g.scopes[:len(g.scopes)-1]
	}
}

// Program builds the entry function body. Every form but the last has its
// value dropped.
func (g *Generator) Program(p *ir.Program, forms [][]byte) error {
	if g.done {
		return codegen.ErrReused
	}
	if len(forms) == 0 {
		g.code = i64Const(0)
		return nil
	}
	var code []byte
	for i, f := range forms {
		code = seq(code, f)
		if i < len(forms)-1 {
			code = append(code, opDrop)
		}
	}
	g.code = code
	return nil
}

// Finalize returns the binary module. A generator can only be finalized
// once.
func (g *Generator) Finalize() (string, error) {
	if g.done {
		return "", codegen.ErrReused
	}
	g.done = true
	return string(g.emit()), nil
}

// emit produces the complete WASM binary.
func (g *Generator) emit() []byte {
	var wasm []byte
	wasm = append(wasm, wasmMagic...)
	wasm = append(wasm, wasmVersion...)
	wasm = append(wasm, g.emitTypeSection()...)
	wasm = append(wasm, g.emitFunctionSection()...)
	wasm = append(wasm, g.emitExportSection()...)
	wasm = append(wasm, g.emitCodeSection()...)
	return wasm
}

// emitTypeSection declares the single signature () -> i64.
func (g *Generator) emitTypeSection() []byte {
	contents := []byte{funcTypeTag, 0x00, 0x01, valI64}
	return encodeSection(sectionType, encodeVector(1, contents))
}

func (g *Generator) emitFunctionSection() []byte {
	return encodeSection(sectionFunction, encodeVector(1, encodeLEB128U(0)))
}

func (g *Generator) emitExportSection() []byte {
	var contents []byte
	contents = append(contents, encodeString(EntryFunc)...)
	contents = append(contents, exportFunc)
	contents = append(contents, encodeLEB128U(0)...)
	return encodeSection(sectionExport, encodeVector(1, contents))
}

func (g *Generator) emitCodeSection() []byte {
	var locals []byte
	if g.locals > 0 {
		locals = encodeVector(1, append(encodeLEB128U(uint64(g.locals)), valI64))
	} else {
		locals = encodeLEB128U(0)
	}
	body := seq(locals, g.code, []byte{opEnd})

	// Each function body is prefixed with its byte length
	entry := seq(encodeLEB128U(uint64(len(body))), body)
	return encodeSection(sectionCode, encodeVector(1, entry))
}
