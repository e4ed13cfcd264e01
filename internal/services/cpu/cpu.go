package cpu

import (
	"fmt"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

// Pins are the input lines sampled at one clock edge.
type Pins struct {
	Data uint8 // data bus, as driven by an external collaborator
	Wait bool  // wait request line
	Int  bool  // interrupt request line
}

// Out is the processor's side of the bus after a clock edge.
type Out struct {
	StateCode uint8 // S2:S1:S0
	Sync      bool  // toggles once per half-state
	Drive     bool  // the processor asserts the data bus this half-state
	Data      uint8 // bus value when driving
}

// CPU is the execution engine: timing state machine, register file,
// address stack, scratch latches and interrupt synchronizer, advanced
// one half-state per call to Step. All mutation happens under the
// sequencer's control word on the commit half-step.
type CPU struct {
	seq   Sequencer
	regs  File
	stack Stack
	flags Flags
	intr  Synchronizer

	opcode uint8
	ir     Decoded
	tempA  uint8
	tempB  uint8

	state State
	phase Phase
	cycle uint8
	ack   bool // current machine cycle is an interrupt acknowledge
	sync  bool

	edges uint64
	log   *log.CoreLogger
}

// New returns a CPU in the power-on state. Like the hardware it wakes
// up stopped; the first interrupt starts it.
func New(logger *log.CoreLogger) *CPU {
	c := &CPU{log: logger}
	c.Reset()
	return c
}

// Reset returns the engine to its power-on condition: stopped, cycle
// zero, interrupt history cleared. Registers are left alone, as on the
// original part.
func (c *CPU) Reset() {
	c.state = Stopped
	c.phase = Phi1
	c.cycle = 0
	c.ack = false
	c.ir = Decode(0xC0) // MOV A,A; a completed one-cycle instruction
	c.opcode = 0xC0
	c.intr.Reset()
}

// Step advances the engine by one primary clock edge: one half-state
// of a split state, or one full hold of a wait/stopped state.
func (c *CPU) Step(in Pins) Out {
	c.edges++
	c.intr.Sample(in.Int)

	ph := c.phase
	if !c.state.Split() {
		ph = Phi2
	}

	cw := c.seq.ControlWord(c.ir, c.cycle, c.state, ph, c.conditionMet(), c.intr.Pending())

	// The wait line is sampled only at the T2 to T3 boundary, and on
	// every wait-state hold after that.
	if in.Wait && cw.Next == T3 && (c.state == T2 || c.state == TWait) {
		cw.Next = TWait
	}

	out := c.busOut(cw)

	if cw.Commit {
		c.apply(cw, in.Data)
		if cw.LoadIR {
			// The routing out of T3 belongs to the instruction that
			// was just latched, not the one that shaped the fetch
			// skeleton. Recompute with the new register and keep its
			// view of what comes next.
			rw := c.seq.ControlWord(c.ir, c.cycle, c.state, ph, c.conditionMet(), c.intr.Pending())
			cw.Next = rw.Next
			cw.NewCycle = rw.NewCycle
			cw.Done = rw.Done
			cw.Halt = rw.Halt
		}
	}

	// advance the half-state
	c.sync = !c.sync
	out.Sync = c.sync
	if c.state.Split() && c.phase == Phi1 {
		c.phase = Phi2
	} else {
		if cw.NewCycle {
			if cw.Done {
				c.cycle = 0
			} else {
				c.cycle++
			}
			c.ack = cw.Next == T1I
		}
		c.state = cw.Next
		c.phase = Phi1
	}

	return out
}

// busOut is the bus-output multiplexer. The processor asserts the bus
// during the address-output states and write data-transfers, and tri-
// states everywhere else -- including the whole address phase of an
// acknowledge cycle, where the interrupt source drives instead.
func (c *CPU) busOut(cw ControlWord) Out {
	out := Out{StateCode: c.state.Code(), Sync: c.sync}

	switch c.state {
	case T1:
		if c.ack {
			return out
		}
		out.Drive = true
		out.Data = uint8(c.address(cw.AddrSource))
	case T2:
		if c.ack {
			return out
		}
		out.Drive = true
		out.Data = uint8(cw.CycleType)<<6 | uint8(c.address(cw.AddrSource)>>8)&0x3F
	case T3:
		if cw.DriveData != OutNone {
			out.Drive = true
			out.Data = c.dataOut(cw.DriveData)
		}
	}
	return out
}

// address gives the 14-bit value presented for the current machine
// cycle.
func (c *CPU) address(src AddrSource) uint16 {
	switch src {
	case AddrHL:
		return c.regs.HL()
	case AddrPort:
		return uint16(c.regs.Read(RegA)&0x3F)<<8 | uint16(c.opcode)
	}
	return c.stack.PC()
}

func (c *CPU) dataOut(sel DataOut) uint8 {
	switch sel {
	case OutSrcReg:
		return c.regs.Read(c.ir.Src)
	case OutTempB:
		return c.tempB
	case OutAcc:
		return c.regs.Read(RegA)
	}
	return 0
}

// apply commits a control word's side effects. This is the only place
// registers, flags, stack or latches change.
func (c *CPU) apply(cw ControlWord, data uint8) {
	if cw.PCIncrement && !c.ack {
		c.stack.Advance()
	}

	if cw.LoadIR {
		c.opcode = data
		c.ir = Decode(data)
		if c.ir.Kind == KindNop && c.log != nil {
			c.log.Warnf("unrecognized opcode %02X at %04X, running as NOP", data, c.stack.PC())
		}
		if c.ack && c.state == T3 {
			c.intr.Acknowledge()
		}
	}
	if cw.LoadTempA {
		c.tempA = data
	}
	if cw.LoadTempB {
		c.tempB = data
	}

	c.exec(cw.Exec)
}

func (c *CPU) exec(m Micro) {
	switch m {
	case MicroStageSrc:
		c.tempB = c.regs.Read(c.ir.Src)
	case MicroStageDst:
		c.tempB = c.regs.Read(c.ir.Dst)
	case MicroStageAcc:
		c.tempB = c.regs.Read(RegA)

	case MicroAlu:
		op := ALUOp(c.ir.Fn)
		r, carry := Alu(op, c.regs.Read(RegA), c.tempB, c.flags.Carry)
		c.flags.Carry = carry
		c.flags.SetResult(r)
		if op != OpCompare {
			c.regs.Write(RegA, r)
		}

	case MicroRotate:
		c.rotate()

	case MicroIncrement:
		v := c.tempB + 1
		c.regs.Write(c.ir.Dst, v)
		c.flags.SetResult(v) // carry untouched
	case MicroDecrement:
		v := c.tempB - 1
		c.regs.Write(c.ir.Dst, v)
		c.flags.SetResult(v) // carry untouched

	case MicroWriteDst:
		c.regs.Write(c.ir.Dst, c.tempB)
	case MicroWriteAcc:
		c.regs.Write(RegA, c.tempB)

	case MicroJumpLow:
		c.stack.SetPCLow(c.tempB)
	case MicroCallLow:
		c.stack.Push()
		c.stack.SetPCLow(c.tempB)
	case MicroRestartLow:
		c.stack.Push()
		c.stack.SetPC(uint16(c.ir.Vec) << 3)
	case MicroJumpHigh:
		c.stack.SetPCHigh(c.tempA)
	case MicroRestartHigh:
		c.stack.SetPCHigh(0)

	case MicroReturn:
		c.stack.Pop()
	}
}

// rotate updates the accumulator and the carry flag only; zero, sign
// and parity are owned by the arithmetic path.
func (c *CPU) rotate() {
	a := c.tempB
	carry := uint8(0)
	if c.flags.Carry {
		carry = 1
	}

	var r uint8
	switch c.ir.Rot {
	case RotLeft:
		r = a<<1 | a>>7
		c.flags.Carry = a&0x80 != 0
	case RotRight:
		r = a>>1 | a<<7
		c.flags.Carry = a&1 != 0
	case RotLeftCarry:
		r = a<<1 | carry
		c.flags.Carry = a&0x80 != 0
	case RotRightCarry:
		r = a>>1 | carry<<7
		c.flags.Carry = a&1 != 0
	}
	c.regs.Write(RegA, r)
}

// conditionMet evaluates the instruction's condition against current
// flags. Unconditional instructions always take.
func (c *CPU) conditionMet() bool {
	if !c.ir.Condition {
		return true
	}
	return c.flags.Select(c.ir.Cond) == c.ir.CondSense
}

// Debug and introspection accessors. Read-only, side effect free.

// State reports the current timing state.
func (c *CPU) State() State {
	return c.state
}

// Phase reports the half-step about to run.
func (c *CPU) Phase() Phase {
	return c.phase
}

// Cycle reports the machine-cycle index within the current instruction.
func (c *CPU) Cycle() uint8 {
	return c.cycle
}

// CycleType reports the bus tag of the current machine cycle.
func (c *CPU) CycleType() CycleType {
	plan := planFor(c.ir)
	i := int(c.cycle)
	if i >= len(plan) {
		i = len(plan) - 1
	}
	return plan[i].ctype
}

// Acknowledging reports whether the current cycle is an interrupt
// acknowledge.
func (c *CPU) Acknowledging() bool {
	return c.ack
}

// PC returns the active stack slot.
func (c *CPU) PC() uint16 {
	return c.stack.PC()
}

// Register returns a physical register's current value.
func (c *CPU) Register(code uint8) uint8 {
	return c.regs.Read(code)
}

// Flags returns a copy of the condition flags.
func (c *CPU) Flags() Flags {
	return c.flags
}

// StackPointer returns the 3-bit stack pointer.
func (c *CPU) StackPointer() uint8 {
	return c.stack.Pointer()
}

// StackSlot returns the address held in slot n.
func (c *CPU) StackSlot(n uint8) uint16 {
	return c.stack.Slot(n)
}

// Instruction describes the instruction register contents.
func (c *CPU) Instruction() Decoded {
	return c.ir
}

// InterruptPending reports the synchronizer latch.
func (c *CPU) InterruptPending() bool {
	return c.intr.Pending()
}

// Edges reports the number of clock edges stepped since power on.
func (c *CPU) Edges() uint64 {
	return c.edges
}

func (c *CPU) String() string {
	return fmt.Sprintf("%s/%s cycle %d %s PC=%04X SP=%d A=%02X",
		c.state, c.phase, c.cycle, c.ir.Mnemonic(), c.stack.PC(), c.stack.Pointer(), c.regs.Read(RegA))
}
