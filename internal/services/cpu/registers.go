package cpu

import "fmt"

// Register codes as they appear in instruction source/destination
// fields. Code 7 does not name a physical register: it redirects the
// access to memory at the H:L indirect address.
const (
	RegA uint8 = iota
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegM // memory pseudo-register
)

var regNames = [...]string{"A", "B", "C", "D", "E", "H", "L", "M"}

// RegName returns the conventional one letter register name.
func RegName(code uint8) string {
	if int(code) < len(regNames) {
		return regNames[code]
	}
	return "?"
}

// Flags are the four independent condition bits. Carry is owned by the
// arithmetic and rotate paths; increment/decrement update the other
// three and leave Carry alone.
type Flags struct {
	Carry  bool
	Zero   bool
	Sign   bool
	Parity bool
}

// SetResult updates Zero, Sign and Parity from an 8-bit result.
func (f *Flags) SetResult(v uint8) {
	f.Zero = v == 0
	f.Sign = v&0x80 != 0
	f.Parity = Parity(v)
}

// Select returns the flag named by a 2-bit condition selector:
// 0 carry, 1 zero, 2 sign, 3 parity.
func (f *Flags) Select(cond uint8) bool {
	switch cond & 3 {
	case 0:
		return f.Carry
	case 1:
		return f.Zero
	case 2:
		return f.Sign
	}
	return f.Parity
}

func (f Flags) String() string {
	b := func(v bool) byte {
		if v {
			return '1'
		}
		return '0'
	}
	return fmt.Sprintf("C=%c Z=%c S=%c P=%c", b(f.Carry), b(f.Zero), b(f.Sign), b(f.Parity))
}

// File holds the seven physical 8-bit registers. Reads are
// combinational; writes happen on the sequencer's commit half-step.
type File struct {
	regs [7]uint8
}

func (f *File) Read(code uint8) uint8 {
	if code >= RegM {
		return 0
	}
	return f.regs[code]
}

func (f *File) Write(code uint8, v uint8) {
	if code >= RegM {
		return
	}
	f.regs[code] = v
}

// HL is the 14-bit memory-indirect address: the low six bits of H
// above the eight bits of L.
func (f *File) HL() uint16 {
	return uint16(f.regs[RegH]&0x3F)<<8 | uint16(f.regs[RegL])
}

// Stack is the 8-slot circular address stack. The slot selected by the
// 3-bit pointer is the program counter. There is no overflow or
// underflow detection; pointer arithmetic wraps mod 8 exactly as the
// hardware's did.
type Stack struct {
	slots [8]uint16
	ptr   uint8
}

// PC returns the active slot.
func (s *Stack) PC() uint16 {
	return s.slots[s.ptr]
}

// SetPC replaces the active slot, masked to 14 bits.
func (s *Stack) SetPC(addr uint16) {
	s.slots[s.ptr] = addr & 0x3FFF
}

// SetPCLow replaces the low byte of the active slot.
func (s *Stack) SetPCLow(v uint8) {
	s.slots[s.ptr] = s.slots[s.ptr]&0x3F00 | uint16(v)
}

// SetPCHigh replaces the high six bits of the active slot.
func (s *Stack) SetPCHigh(v uint8) {
	s.slots[s.ptr] = uint16(v&0x3F)<<8 | s.slots[s.ptr]&0x00FF
}

// Advance increments the program counter, wrapping within 14 bits.
func (s *Stack) Advance() {
	s.slots[s.ptr] = (s.slots[s.ptr] + 1) & 0x3FFF
}

// Push selects the next slot up. The old slot keeps its value; the new
// active slot is about to be loaded with a call or restart target.
func (s *Stack) Push() {
	s.ptr = (s.ptr + 1) & 7
}

// Pop selects the next slot down, restoring the pushed return address.
func (s *Stack) Pop() {
	s.ptr = (s.ptr - 1) & 7
}

// Pointer returns the 3-bit stack pointer.
func (s *Stack) Pointer() uint8 {
	return s.ptr
}

// Slot returns the address held in slot n. Debug access only.
func (s *Stack) Slot(n uint8) uint16 {
	return s.slots[n&7]
}
