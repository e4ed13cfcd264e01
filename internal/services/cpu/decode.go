package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// Class is the coarse instruction group selected by the top two opcode
// bits.
type Class uint8

const (
	ClassMixed Class = iota // 00: halt, inc/dec, rotate, return, ALU imm, restart, move imm
	ClassFlow               // 01: jump, call and I/O
	ClassALU                // 10: ALU register/memory
	ClassMove               // 11: register/memory move
)

// Kind is the specific instruction the sequencer runs a cycle plan for.
type Kind uint8

const (
	KindNop Kind = iota // unrecognized pattern; one diagnosed bus cycle
	KindHalt
	KindIncrement
	KindDecrement
	KindRotate
	KindReturn
	KindALUImmediate
	KindRestart
	KindMoveImmediate
	KindJump
	KindCall
	KindInput
	KindOutput
	KindALURegister
	KindMove
)

// Rotate sub-kinds, in encoding order.
const (
	RotLeft       uint8 = iota // RLC: bit 7 to bit 0 and to carry
	RotRight                   // RRC: bit 0 to bit 7 and to carry
	RotLeftCarry               // RAL: 9-bit rotate through carry
	RotRightCarry              // RAR: 9-bit rotate through carry
)

// ErrIllegalMove marks the move encoding whose source and destination
// are both the memory pseudo-register. The hardware has no such
// instruction (the bit pattern is a halt); building one is a fatal
// encoding error.
var ErrIllegalMove = errors.New("illegal move: source and destination both reference memory")

// Decoded is a structured description of one opcode. Decode is pure:
// the same byte always yields the same Decoded.
type Decoded struct {
	Op    uint8
	Class Class
	Kind  Kind

	Dst  uint8 // destination register field
	Src  uint8 // source register field
	Fn   uint8 // ALU function field
	Rot  uint8 // rotate sub-kind
	Vec  uint8 // restart vector
	Port uint8 // 5-bit I/O port

	Cond      uint8 // condition selector: 0 carry, 1 zero, 2 sign, 3 parity
	CondSense bool  // true: taken when the flag is set
	Condition bool  // conditional jump/call/return

	Immediate bool // consumes an immediate byte
	SrcMemory bool // source is the memory pseudo-register
	DstMemory bool // destination is the memory pseudo-register
}

// Decode maps an opcode to its description. Bit patterns outside the
// recognized set come back as KindNop; the caller decides whether to
// diagnose them.
func Decode(op uint8) Decoded {
	d := Decoded{Op: op, Class: Class(op >> 6)}
	mid := op >> 3 & 7
	low := op & 7

	switch d.Class {
	case ClassMixed:
		switch low {
		case 0, 1:
			if mid == 0 {
				d.Kind = KindHalt
				return d
			}
			if low == 0 {
				d.Kind = KindIncrement
			} else {
				d.Kind = KindDecrement
			}
			d.Dst = mid
			d.Src = mid
		case 2:
			if mid > RotRightCarry {
				d.Kind = KindNop
				return d
			}
			d.Kind = KindRotate
			d.Rot = mid
		case 3:
			d.Kind = KindReturn
			d.Condition = true
			d.Cond = mid & 3
			d.CondSense = mid&4 != 0
		case 4:
			d.Kind = KindALUImmediate
			d.Fn = mid
			d.Immediate = true
		case 5:
			d.Kind = KindRestart
			d.Vec = mid
		case 6:
			d.Kind = KindMoveImmediate
			d.Dst = mid
			d.DstMemory = mid == RegM
			d.Immediate = true
		case 7:
			d.Kind = KindReturn
		}

	case ClassFlow:
		if op&1 == 1 {
			d.Port = op >> 1 & 0x1F
			if d.Port < 8 {
				d.Kind = KindInput
			} else {
				d.Kind = KindOutput
			}
			return d
		}
		switch low {
		case 0:
			d.Kind = KindJump
			d.Condition = true
			d.Cond = mid & 3
			d.CondSense = mid&4 != 0
		case 2:
			d.Kind = KindCall
			d.Condition = true
			d.Cond = mid & 3
			d.CondSense = mid&4 != 0
		case 4:
			d.Kind = KindJump
		case 6:
			d.Kind = KindCall
		}

	case ClassALU:
		d.Kind = KindALURegister
		d.Fn = mid
		d.Src = low
		d.SrcMemory = low == RegM

	case ClassMove:
		if op == 0xFF {
			// second halt encoding; would otherwise read as MOV M,M
			d.Kind = KindHalt
			return d
		}
		d.Kind = KindMove
		d.Dst = mid
		d.Src = low
		d.DstMemory = mid == RegM
		d.SrcMemory = low == RegM
	}
	return d
}

// Encode reassembles a Decoded into its opcode. The one encoding the
// decoder can never produce, a memory-to-memory move, is rejected: the
// original hardware treats the pattern as a halt and a program that
// asks for the move is undefined.
func Encode(d Decoded) (uint8, error) {
	switch d.Kind {
	case KindHalt:
		return 0x00, nil
	case KindIncrement:
		return d.Dst<<3 | 0x00, nil
	case KindDecrement:
		return d.Dst<<3 | 0x01, nil
	case KindRotate:
		return d.Rot<<3 | 0x02, nil
	case KindReturn:
		if !d.Condition {
			return 0x07, nil
		}
		return condBits(d)<<3 | 0x03, nil
	case KindALUImmediate:
		return d.Fn<<3 | 0x04, nil
	case KindRestart:
		return d.Vec<<3 | 0x05, nil
	case KindMoveImmediate:
		return d.Dst<<3 | 0x06, nil
	case KindJump:
		if !d.Condition {
			return 0x44, nil
		}
		return 0x40 | condBits(d)<<3, nil
	case KindCall:
		if !d.Condition {
			return 0x46, nil
		}
		return 0x42 | condBits(d)<<3, nil
	case KindInput, KindOutput:
		return 0x41 | d.Port<<1, nil
	case KindALURegister:
		return 0x80 | d.Fn<<3 | d.Src, nil
	case KindMove:
		if d.Dst == RegM && d.Src == RegM {
			return 0, errors.WithStack(ErrIllegalMove)
		}
		return 0xC0 | d.Dst<<3 | d.Src, nil
	}
	return 0xC0, nil // MOV A,A as the canonical no-op
}

func condBits(d Decoded) uint8 {
	bits := d.Cond & 3
	if d.CondSense {
		bits |= 4
	}
	return bits
}

var condNames = [...]string{"C", "Z", "S", "P"}

// Mnemonic renders the instruction in datasheet assembly form.
func (d Decoded) Mnemonic() string {
	cc := func() string {
		s := "F"
		if d.CondSense {
			s = "T"
		}
		return s + condNames[d.Cond&3]
	}
	switch d.Kind {
	case KindHalt:
		return "HLT"
	case KindIncrement:
		return "IN" + RegName(d.Dst)
	case KindDecrement:
		return "DC" + RegName(d.Dst)
	case KindRotate:
		return [...]string{"RLC", "RRC", "RAL", "RAR"}[d.Rot&3]
	case KindReturn:
		if !d.Condition {
			return "RET"
		}
		return "R" + cc()
	case KindALUImmediate:
		return ALUOp(d.Fn).String() + "I"
	case KindRestart:
		return fmt.Sprintf("RST %d", d.Vec)
	case KindMoveImmediate:
		return "L" + RegName(d.Dst) + "I"
	case KindJump:
		if !d.Condition {
			return "JMP"
		}
		return "J" + cc()
	case KindCall:
		if !d.Condition {
			return "CAL"
		}
		return "C" + cc()
	case KindInput:
		return fmt.Sprintf("INP %d", d.Port)
	case KindOutput:
		return fmt.Sprintf("OUT %d", d.Port)
	case KindALURegister:
		return ALUOp(d.Fn).String() + RegName(d.Src)
	case KindMove:
		return "L" + RegName(d.Dst) + RegName(d.Src)
	}
	return fmt.Sprintf("?%02X", d.Op)
}

// Bytes returns the instruction length in program bytes.
func (d Decoded) Bytes() int {
	switch {
	case d.Kind == KindJump || d.Kind == KindCall:
		return 3
	case d.Immediate:
		return 2
	}
	return 1
}
