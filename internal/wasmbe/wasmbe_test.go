package wasmbe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/compiler"
	"github.com/lhaig/quill/internal/frontend"
	"github.com/lhaig/quill/internal/ir"
)

func compile(text string) *compiler.Result {
	return compiler.Compile[[]byte](frontend.Source{Name: "test.ql", Text: text}, New())
}

func mustCompile(t *testing.T, text string) []byte {
	t.Helper()
	res := compile(text)
	require.True(t, res.OK(), "compile failed: %v", res.Err)
	return []byte(res.Output)
}

func TestSingleLiteralModule(t *testing.T) {
	expected := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, // magic, version
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7E, // type: () -> i64
		0x03, 0x02, 0x01, 0x00, // function 0 has type 0
		0x07, 0x0E, 0x01, 0x0A, 'q', 'u', 'i', 'l', 'l', '_', 'm', 'a', 'i', 'n', 0x00, 0x00, // export
		0x0A, 0x06, 0x01, 0x04, 0x00, 0x42, 0x01, 0x0B, // code: no locals, i64.const 1, end
	}
	assert.Equal(t, expected, mustCompile(t, "1"))
}

func TestLEB128(t *testing.T) {
	assert.Equal(t, []byte{0x00}, encodeLEB128U(0))
	assert.Equal(t, []byte{0xE5, 0x8E, 0x26}, encodeLEB128U(624485))
	assert.Equal(t, []byte{0x7D}, encodeLEB128S(-3))
	assert.Equal(t, []byte{0xC0, 0xBB, 0x78}, encodeLEB128S(-123456))
	assert.Equal(t, []byte{0x3F}, encodeLEB128S(63))
	assert.Equal(t, []byte{0xC0, 0x00}, encodeLEB128S(64))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"1", 1},
		{"", 0},
		{"-3", -3},
		{"(+ 1 2 3)", 6},
		{"(- 10 3 2)", 5},
		{"(- 5)", -5},
		{"(* 6 7)", 42},
		{"(/ 9 2)", 4},
		{"(% 9 4)", 1},
		{"(< 1 2)", 1},
		{"(>= 1 2)", 0},
		{"(= 3 3)", 1},
		{"(!= 3 3)", 0},
		{"(not 0)", 1},
		{"(not 5)", 0},
		{"true", 1},
		{"(if (> 3 2) 10 20)", 10},
		{"(if false 10 20)", 20},
		{"(if 0 1 (if 1 2 3))", 2},
		{"(cond ((< 1 0) 1) (else 2))", 2},
		{"(and 1 2 3)", 3},
		{"(and 1 0 (/ 1 0))", 0},
		{"(or 0 0 7)", 7},
		{"(or 4 (/ 1 0))", 4},
		{"(let ((x 1)) (let ((x (+ x 1)) (y x)) (+ x y)))", 3},
		{"(let ((x 10)) (set! x 3) x)", 3},
		{"(def a 5)\n(set! a (+ a 1))\n(* a 2)", 12},
		{"(do 1 2 3)", 3},
		{"(def a 1)\n(def a (+ a 1))\na", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(t, mustCompile(t, tt.src)))
		})
	}
}

func TestRefusals(t *testing.T) {
	tests := []struct {
		src  string
		kind ir.Kind
	}{
		{"1.5", ir.KindNumber},
		{`"s"`, ir.KindString},
		{"nil", ir.KindNil},
		{"(if true 1)", ir.KindNil},
		{"(+ 1 y)", ir.KindRef},
		{"(def f 1)\n(f 1)", ir.KindCall},
		{"(fn (x) x)", ir.KindFn},
		{"(set! ghost 2)", ir.KindSet},
		{"99999999999999999999", ir.KindNumber},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res := compile(tt.src)
			require.False(t, res.OK())
			assert.Empty(t, res.Output)

			var ge *codegen.GenerationError
			require.True(t, errors.As(res.Err, &ge), "expected GenerationError, got %T", res.Err)
			assert.Equal(t, "wasm", ge.Backend)
			assert.Equal(t, tt.kind, ge.Kind)
		})
	}
}

func TestFinalizeOnce(t *testing.T) {
	g := New()
	require.NoError(t, g.Program(&ir.Program{}, nil))
	_, err := g.Finalize()
	require.NoError(t, err)
	_, err = g.Finalize()
	assert.ErrorIs(t, err, codegen.ErrReused)
}

func TestDeterministic(t *testing.T) {
	text := "(def a 2)\n(let ((b (* a 3))) (or (- b a 4) a))"
	first := mustCompile(t, text)
	assert.Equal(t, first, mustCompile(t, text))
}

// --- a small interpreter for the instructions this package emits ---

func uleb(b []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, c := range b {
		v |= uint64(c&0x7F) << shift
		shift += 7
		if c&0x80 == 0 {
			return v, i + 1
		}
	}
	panic("truncated LEB128")
}

func sleb(b []byte) (int64, int) {
	var v int64
	var shift uint
	for i, c := range b {
		v |= int64(c&0x7F) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				v |= -1 << shift
			}
			return v, i + 1
		}
	}
	panic("truncated LEB128")
}

// entryBody returns the body of the only function in the code section.
func entryBody(t *testing.T, module []byte) []byte {
	t.Helper()
	pos := 8
	for pos < len(module) {
		id := module[pos]
		size, n := uleb(module[pos+1:])
		contents := module[pos+1+n : pos+1+n+int(size)]
		if id == sectionCode {
			count, n := uleb(contents)
			require.Equal(t, uint64(1), count)
			bodySize, m := uleb(contents[n:])
			return contents[n+m : n+m+int(bodySize)]
		}
		pos += 1 + n + int(size)
	}
	t.Fatal("no code section")
	return nil
}

type machine struct {
	code   []byte
	stack  []int64
	locals []int64
}

func evaluate(t *testing.T, module []byte) int64 {
	t.Helper()
	body := entryBody(t, module)

	pos := 0
	groups, n := uleb(body)
	pos += n
	total := 0
	for i := uint64(0); i < groups; i++ {
		count, n := uleb(body[pos:])
		pos += n + 1 // count, then the value type
		total += int(count)
	}

	m := &machine{code: body, locals: make([]int64, total)}
	end := m.exec(pos)
	require.Equal(t, opEnd, m.code[end])
	require.Equal(t, len(body)-1, end)
	require.Len(t, m.stack, 1)
	return m.stack[0]
}

func (m *machine) push(v int64) { m.stack = append(m.stack, v) }

func (m *machine) pop() int64 {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// exec runs from pc until an else or end at the current nesting level
// and returns the position of that opcode.
func (m *machine) exec(pc int) int {
	for {
		op := m.code[pc]
		pc++
		switch op {
		case opEnd, opElse:
			return pc - 1
		case opIf:
			pc++ // block type
			var stop int
			if m.pop() != 0 {
				stop = m.exec(pc)
				if m.code[stop] == opElse {
					stop = m.skip(stop + 1)
				}
			} else {
				stop = m.skip(pc)
				if m.code[stop] == opElse {
					stop = m.exec(stop + 1)
				}
			}
			pc = stop + 1
		case opI64Const:
			v, n := sleb(m.code[pc:])
			pc += n
			m.push(v)
		case opLocalGet, opLocalSet, opLocalTee:
			idx, n := uleb(m.code[pc:])
			pc += n
			switch op {
			case opLocalGet:
				m.push(m.locals[idx])
			case opLocalSet:
				m.locals[idx] = m.pop()
			default:
				m.locals[idx] = m.stack[len(m.stack)-1]
			}
		case opDrop:
			m.pop()
		case opI64Eqz:
			m.push(b2i(m.pop() == 0))
		case opI64ExtendI32U:
			// values are already held as int64
		default:
			b, a := m.pop(), m.pop()
			switch op {
			case opI64Eq:
				m.push(b2i(a == b))
			case opI64Ne:
				m.push(b2i(a != b))
			case opI64LtS:
				m.push(b2i(a < b))
			case opI64LeS:
				m.push(b2i(a <= b))
			case opI64GtS:
				m.push(b2i(a > b))
			case opI64GeS:
				m.push(b2i(a >= b))
			case opI64Add:
				m.push(a + b)
			case opI64Sub:
				m.push(a - b)
			case opI64Mul:
				m.push(a * b)
			case opI64DivS:
				m.push(a / b)
			case opI64RemS:
				m.push(a % b)
			default:
				panic("unexpected opcode")
			}
		}
	}
}

// skip moves past instructions without running them and returns the
// position of the else or end closing the current level.
func (m *machine) skip(pc int) int {
	depth := 0
	for {
		switch op := m.code[pc]; op {
		case opIf:
			depth++
			pc += 2
		case opElse:
			if depth == 0 {
				return pc
			}
			pc++
		case opEnd:
			if depth == 0 {
				return pc
			}
			depth--
			pc++
		case opI64Const:
			_, n := sleb(m.code[pc+1:])
			pc += 1 + n
		case opLocalGet, opLocalSet, opLocalTee:
			_, n := uleb(m.code[pc+1:])
			pc += 1 + n
		default:
			pc++
		}
	}
}
