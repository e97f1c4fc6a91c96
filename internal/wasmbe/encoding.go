package wasmbe

// WASM binary format constants
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D} // \0asm
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Section IDs
const (
	sectionType     byte = 1
	sectionFunction byte = 3
	sectionExport   byte = 7
	sectionCode     byte = 10
)

const (
	funcTypeTag byte = 0x60
	valI64      byte = 0x7E
	exportFunc  byte = 0x00
)

// WASM opcodes
const (
	// Control
	opIf   byte = 0x04
	opElse byte = 0x05
	opEnd  byte = 0x0B
	opDrop byte = 0x1A

	// Variables
	opLocalGet byte = 0x20
	opLocalSet byte = 0x21
	opLocalTee byte = 0x22

	// Constants
	opI64Const byte = 0x42

	// i64 operations
	opI64Eqz  byte = 0x50
	opI64Eq   byte = 0x51
	opI64Ne   byte = 0x52
	opI64LtS  byte = 0x53
	opI64GtS  byte = 0x55
	opI64LeS  byte = 0x57
	opI64GeS  byte = 0x59
	opI64Add  byte = 0x7C
	opI64Sub  byte = 0x7D
	opI64Mul  byte = 0x7E
	opI64DivS byte = 0x7F
	opI64RemS byte = 0x81

	// Conversions
	opI64ExtendI32U byte = 0xAD

	// Block types
	blockI64 byte = 0x7E
)

// encodeLEB128U encodes an unsigned integer as unsigned LEB128.
func encodeLEB128U(value uint64) []byte {
	if value == 0 {
		return []byte{0}
	}
	var result []byte
	for value > 0 {
		b := byte(value & 0x7F)
		value >>= 7
		if value > 0 {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// encodeLEB128S encodes a signed integer as signed LEB128.
func encodeLEB128S(value int64) []byte {
	var result []byte
	more := true
	for more {
		b := byte(value & 0x7F)
		value >>= 7
		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		result = append(result, b)
	}
	return result
}

// encodeString encodes a string with its length prefix.
func encodeString(s string) []byte {
	result := encodeLEB128U(uint64(len(s)))
	result = append(result, []byte(s)...)
	return result
}

// encodeSection encodes a section with its ID and length prefix.
func encodeSection(id byte, contents []byte) []byte {
	result := []byte{id}
	result = append(result, encodeLEB128U(uint64(len(contents)))...)
	result = append(result, contents...)
	return result
}

// encodeVector encodes a vector of items with a count prefix.
func encodeVector(count int, items []byte) []byte {
	result := encodeLEB128U(uint64(count))
	result = append(result, items...)
	return result
}

// seq concatenates instruction sequences into a fresh slice.
func seq(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func i64Const(v int64) []byte {
	return append([]byte{opI64Const}, encodeLEB128S(v)...)
}

func localOp(op byte, idx uint32) []byte {
	return append([]byte{op}, encodeLEB128U(uint64(idx))...)
}
