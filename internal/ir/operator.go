package ir

import "fmt"

// Operator is a built-in operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot
	OpAnd
	OpOr
)

// variadic marks an operator without an upper operand bound.
const variadic = -1

var operatorTable = [...]struct {
	symbol   string
	min, max int
}{
	OpAdd: {"+", 2, variadic},
	OpSub: {"-", 1, variadic},
	OpMul: {"*", 2, variadic},
	OpDiv: {"/", 2, variadic},
	OpMod: {"%", 2, 2},
	OpEq:  {"=", 2, 2},
	OpNe:  {"!=", 2, 2},
	OpLt:  {"<", 2, 2},
	OpLe:  {"<=", 2, 2},
	OpGt:  {">", 2, 2},
	OpGe:  {">=", 2, 2},
	OpNot: {"not", 1, 1},
	OpAnd: {"and", 2, variadic},
	OpOr:  {"or", 2, variadic},
}

var operatorBySymbol = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorTable))
	for op, info := range operatorTable {
		m[info.symbol] = Operator(op)
	}
	return m
}()

// LookupOperator returns the operator spelled sym.
func LookupOperator(sym string) (Operator, bool) {
	op, ok := operatorBySymbol[sym]
	return op, ok
}

// String returns the source spelling of the operator.
func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorTable) {
		return operatorTable[o].symbol
	}
	return "?"
}

// Arity returns the operand bounds; max is -1 when unbounded.
func (o Operator) Arity() (min, max int) {
	info := operatorTable[o]
	return info.min, info.max
}

// Accepts reports whether n operands are valid for o.
func (o Operator) Accepts(n int) bool {
	min, max := o.Arity()
	return n >= min && (max == variadic || n <= max)
}

// IsComparison reports whether o yields a boolean from two values.
func (o Operator) IsComparison() bool {
	return o >= OpEq && o <= OpGe
}

// IsLogical reports whether o is not, and or or.
func (o Operator) IsLogical() bool {
	return o == OpNot || o == OpAnd || o == OpOr
}

func (o Operator) arityText() string {
	min, max := o.Arity()
	noun := "operands"
	if min == 1 {
		noun = "operand"
	}
	if min == max {
		return fmt.Sprintf("exactly %d %s", min, noun)
	}
	return fmt.Sprintf("at least %d %s", min, noun)
}
