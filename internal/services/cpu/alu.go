package cpu

// ALUOp indexes the arithmetic/logic functions in instruction-encoding
// order: the three function bits of an ALU opcode map straight onto it.
type ALUOp uint8

const (
	OpAdd ALUOp = iota
	OpAddCarry
	OpSub
	OpSubBorrow
	OpAnd
	OpXor
	OpOr
	OpCompare // subtract; the caller discards the result and keeps the flags
)

func (op ALUOp) String() string {
	switch op {
	case OpAdd:
		return "AD"
	case OpAddCarry:
		return "AC"
	case OpSub:
		return "SU"
	case OpSubBorrow:
		return "SB"
	case OpAnd:
		return "ND"
	case OpXor:
		return "XR"
	case OpOr:
		return "OR"
	case OpCompare:
		return "CP"
	}
	return "??"
}

// Alu computes the 9-bit result of an operation on two 8-bit operands
// and a carry-in. Purely combinational; no state. The carry-out is bit
// 8 of the two's-complement style sum or difference, and always false
// for the bitwise functions.
func Alu(op ALUOp, a uint8, b uint8, carry bool) (uint8, bool) {
	cin := uint16(0)
	if carry {
		cin = 1
	}

	switch op {
	case OpAdd:
		r := uint16(a) + uint16(b)
		return uint8(r), r&0x100 != 0
	case OpAddCarry:
		r := uint16(a) + uint16(b) + cin
		return uint8(r), r&0x100 != 0
	case OpSub, OpCompare:
		r := uint16(a) - uint16(b)
		return uint8(r), r&0x100 != 0
	case OpSubBorrow:
		r := uint16(a) - uint16(b) - cin
		return uint8(r), r&0x100 != 0
	case OpAnd:
		return a & b, false
	case OpXor:
		return a ^ b, false
	case OpOr:
		return a | b, false
	}
	return 0, false
}

// Parity reports even parity of v.
func Parity(v uint8) bool {
	p := true
	for i := uint8(0); i < 8; i++ {
		if v>>i&1 == 1 {
			p = !p
		}
	}
	return p
}
