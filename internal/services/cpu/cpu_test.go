package cpu

import (
	"io/ioutil"
	"testing"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

// testBus is the minimal external logic a CPU needs: it latches the
// address from T1/T2, supplies memory and port bytes during T3 of
// read cycles, jams an instruction during acknowledge cycles, and
// records write cycles.
type testBus struct {
	mem      [16384]uint8
	addrLow  uint8
	addrHigh uint8
	ctype    CycleType
	data     uint8
	ack      bool
	wrote    bool
	inject   uint8
	portIn   uint8
	intLine  bool
	wait     bool
	writes   []busWrite
}

type busWrite struct {
	ctype CycleType
	addr  uint16
	data  uint8
}

func (b *testBus) addr() uint16 {
	return uint16(b.addrHigh)<<8 | uint16(b.addrLow)
}

func (b *testBus) step(c *CPU) Out {
	out := c.Step(Pins{Data: b.data, Wait: b.wait, Int: b.intLine})
	switch StateFromCode(out.StateCode) {
	case T1:
		b.ack = false
		b.wrote = false
		if out.Drive {
			b.addrLow = out.Data
		}
	case T1I:
		b.ack = true
		b.wrote = false
	case T2:
		if out.Drive {
			b.ctype = CycleType(out.Data >> 6)
			b.addrHigh = out.Data & 0x3F
			switch b.ctype {
			case PCI, PCR:
				b.data = b.mem[b.addr()]
			case PCC:
				if port := b.addrLow >> 1 & 0x1F; port < 8 {
					b.data = b.portIn
				}
			}
		}
	case T3:
		if b.ack {
			b.data = b.inject
		}
		if out.Drive && !b.wrote {
			b.writes = append(b.writes, busWrite{b.ctype, b.addr(), out.Data})
			if b.ctype == PCW {
				b.mem[b.addr()] = out.Data
			}
			b.wrote = true
		}
	}
	return out
}

// run steps until the next instruction boundary and returns the edge
// count.
func (b *testBus) run(t *testing.T, c *CPU) int {
	t.Helper()
	for n := 1; n <= 100; n++ {
		b.step(c)
		st := c.State()
		if st == Stopped {
			return n
		}
		if (st == T1 || st == T1I) && c.Cycle() == 0 && c.Phase() == Phi1 {
			return n
		}
	}
	t.Fatal("instruction did not complete within 100 edges")
	return 0
}

func newTestCPU() *CPU {
	logger := log.New()
	logger.SetLogLevel(log.FATAL)
	logger.SetOutput(ioutil.Discard)
	return New(logger)
}

// start wakes the stopped processor with an interrupt that injects a
// harmless LAA, leaving it fetching from address zero.
func start(t *testing.T, c *CPU, b *testBus) {
	t.Helper()
	b.inject = 0xC0 // LAA
	b.intLine = true
	b.run(t, c) // leave the stopped state; boundary is the acknowledge
	b.intLine = false
	b.run(t, c) // execute the injected instruction
	if c.PC() != 0 {
		t.Fatalf("PC = %04X after startup, want 0000", c.PC())
	}
}

func load(b *testBus, addr uint16, bytes ...uint8) {
	copy(b.mem[addr:], bytes)
}

func TestPowersOnStopped(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	if c.State() != Stopped {
		t.Fatalf("state = %v, want STOPPED", c.State())
	}
	for i := 0; i < 10; i++ {
		out := b.step(c)
		if StateFromCode(out.StateCode) != Stopped {
			t.Fatal("a stopped processor with no interrupt must stay stopped")
		}
		if out.Drive {
			t.Fatal("a stopped processor must not drive the bus")
		}
	}
}

func TestAddImmediateThroughRegisters(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0x05, 0x0E, 0x03, 0x81) // LAI 5; LBI 3; ADB
	start(t, c, b)

	b.run(t, c)
	if c.Register(RegA) != 5 {
		t.Fatalf("A = %02X after LAI 5", c.Register(RegA))
	}
	b.run(t, c)
	b.run(t, c)
	if a := c.Register(RegA); a != 8 {
		t.Errorf("A = %02X, want 08", a)
	}
	f := c.Flags()
	if f.Carry || f.Zero || f.Sign {
		t.Errorf("flags = %+v, want all clear", f)
	}
	if c.PC() != 5 {
		t.Errorf("PC = %04X, want 0005", c.PC())
	}
}

func TestRestartPushesAdvancedAddress(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x44, 0x42, 0x01) // JMP 0142
	load(b, 0x0142, 0x0D)        // RST 1
	start(t, c, b)

	b.run(t, c)
	if c.PC() != 0x0142 {
		t.Fatalf("PC = %04X after jump", c.PC())
	}
	b.run(t, c)
	if c.PC() != 0x0008 {
		t.Errorf("PC = %04X, want 0008", c.PC())
	}
	if c.StackPointer() != 1 {
		t.Errorf("stack pointer = %d, want 1", c.StackPointer())
	}
	if c.StackSlot(0) != 0x0143 {
		t.Errorf("pushed address = %04X, want the address after the restart opcode", c.StackSlot(0))
	}
}

func TestConditionalJump(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x40, 0x00, 0x02)      // JFC 0200: carry clear, taken
	load(b, 0x0200, 0x60, 0x00, 0x03) // JTC 0300: carry clear, fall through
	start(t, c, b)

	taken := b.run(t, c)
	if c.PC() != 0x0200 {
		t.Fatalf("PC = %04X, want 0200", c.PC())
	}
	fell := b.run(t, c)
	if c.PC() != 0x0203 {
		t.Errorf("PC = %04X, want 0203", c.PC())
	}
	// a skipped jump ends at T3 of its third cycle; a taken one runs
	// the two extra execute states
	if fell >= taken {
		t.Errorf("untaken jump took %d edges, taken took %d", fell, taken)
	}
}

func TestCallAndReturn(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x46, 0x00, 0x01) // CAL 0100
	load(b, 0x0100, 0x07)        // RET
	start(t, c, b)

	b.run(t, c)
	if c.PC() != 0x0100 || c.StackPointer() != 1 {
		t.Fatalf("PC = %04X sp = %d after call", c.PC(), c.StackPointer())
	}
	if c.StackSlot(0) != 0x0003 {
		t.Fatalf("return address = %04X, want 0003", c.StackSlot(0))
	}
	b.run(t, c)
	if c.PC() != 0x0003 || c.StackPointer() != 0 {
		t.Errorf("PC = %04X sp = %d after return", c.PC(), c.StackPointer())
	}
}

func TestConditionalReturn(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x46, 0x00, 0x01) // CAL 0100
	load(b, 0x0100, 0x0B, 0x03)  // RFZ (zero clear: taken)... then RFC
	start(t, c, b)

	b.run(t, c)
	b.run(t, c) // RFZ: zero flag clear, returns
	if c.PC() != 0x0003 || c.StackPointer() != 0 {
		t.Errorf("PC = %04X sp = %d, conditional return should be taken", c.PC(), c.StackPointer())
	}
}

func TestInterruptWaitsForInstructionBoundary(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x44, 0x40, 0x00) // JMP 0040
	load(b, 0x0040, 0xC0)
	start(t, c, b)

	// assert the line partway into the jump
	b.step(c)
	b.step(c)
	b.intLine = true
	if c.Acknowledging() {
		t.Fatal("acknowledge must not begin mid-instruction")
	}
	b.run(t, c)
	// the jump completed in full before the acknowledge started
	if c.PC() != 0x0040 {
		t.Fatalf("PC = %04X, the jump should land before the acknowledge", c.PC())
	}
	if c.State() != T1I {
		t.Fatalf("state = %v, want T1I at the boundary", c.State())
	}

	b.inject = 0x15 // RST 2
	b.intLine = false
	b.run(t, c)
	if c.PC() != 0x0010 {
		t.Errorf("PC = %04X, want the restart target 0010", c.PC())
	}
	if c.StackSlot(0) != 0x0040 {
		t.Errorf("pushed address = %04X, want 0040: the acknowledge fetch must not advance PC", c.StackSlot(0))
	}
	if c.StackPointer() != 1 {
		t.Errorf("stack pointer = %d, want 1", c.StackPointer())
	}
}

func TestIncrementDecrementLeaveCarryAlone(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0xFF, 0x04, 0x01, 0x08, 0x09) // LAI FF; ADI 1; INB; DCB
	start(t, c, b)

	b.run(t, c)
	b.run(t, c)
	f := c.Flags()
	if !f.Carry || !f.Zero {
		t.Fatalf("flags = %+v after FF+1, want carry and zero", f)
	}
	b.run(t, c) // INB
	f = c.Flags()
	if !f.Carry {
		t.Error("increment must not touch carry")
	}
	if f.Zero || c.Register(RegB) != 1 {
		t.Errorf("B = %02X flags = %+v after INB", c.Register(RegB), f)
	}
	b.run(t, c) // DCB
	f = c.Flags()
	if !f.Carry {
		t.Error("decrement must not touch carry")
	}
	if !f.Zero || c.Register(RegB) != 0 {
		t.Errorf("B = %02X flags = %+v after DCB", c.Register(RegB), f)
	}
}

func TestRotatesTouchOnlyCarry(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0x81, 0x02, 0x1A) // LAI 81; RLC; RAR
	start(t, c, b)

	b.run(t, c)
	b.run(t, c) // RLC
	if a := c.Register(RegA); a != 0x03 {
		t.Errorf("A = %02X after RLC, want 03", a)
	}
	f := c.Flags()
	if !f.Carry {
		t.Error("RLC should copy bit 7 into carry")
	}
	if f.Zero || f.Sign || f.Parity {
		t.Errorf("flags = %+v, rotates own only the carry", f)
	}
	b.run(t, c) // RAR with carry set
	if a := c.Register(RegA); a != 0x81 {
		t.Errorf("A = %02X after RAR, want 81", a)
	}
	if !c.Flags().Carry {
		t.Error("RAR should shift bit 0 into carry")
	}
}

func TestMemoryIndirectThroughHL(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	// LHI 00; LLI 20; LMI 77; LAM
	load(b, 0, 0x2E, 0x00, 0x36, 0x20, 0x3E, 0x77, 0xC7)
	start(t, c, b)

	for i := 0; i < 3; i++ {
		b.run(t, c)
	}
	if b.mem[0x0020] != 0x77 {
		t.Fatalf("mem[0020] = %02X, want 77", b.mem[0x0020])
	}
	var w *busWrite
	for i := range b.writes {
		if b.writes[i].ctype == PCW {
			w = &b.writes[i]
		}
	}
	if w == nil || w.addr != 0x0020 || w.data != 0x77 {
		t.Fatalf("write cycle = %+v, want PCW of 77 at 0020", w)
	}
	b.run(t, c)
	if c.Register(RegA) != 0x77 {
		t.Errorf("A = %02X after LAM, want 77", c.Register(RegA))
	}
}

func TestInputOutputCycles(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0x42, 0x51, 0x41) // LAI 42; OUT 8; INP 0
	b.portIn = 0x99
	start(t, c, b)

	b.run(t, c)
	b.run(t, c) // OUT 8
	var out *busWrite
	for i := range b.writes {
		if b.writes[i].ctype == PCC {
			out = &b.writes[i]
		}
	}
	if out == nil {
		t.Fatal("OUT should produce an I/O write cycle")
	}
	if out.data != 0x42 {
		t.Errorf("I/O cycle data = %02X, want 42", out.data)
	}
	if port := uint8(out.addr) >> 1 & 0x1F; port != 8 {
		t.Errorf("I/O cycle port = %d, want 8", port)
	}
	if hi := uint8(out.addr >> 8); hi != 0x42&0x3F {
		t.Errorf("I/O cycle address high = %02X, want the accumulator", hi)
	}

	b.run(t, c) // INP 0
	if c.Register(RegA) != 0x99 {
		t.Errorf("A = %02X after INP, want 99", c.Register(RegA))
	}
}

func TestHaltStopsUntilInterrupt(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x00) // HLT
	load(b, 0x0010, 0xC0)
	start(t, c, b)

	b.run(t, c)
	if c.State() != Stopped {
		t.Fatalf("state = %v, want STOPPED after HLT", c.State())
	}
	for i := 0; i < 5; i++ {
		b.step(c)
	}
	if c.State() != Stopped {
		t.Fatal("stopped state must hold with no interrupt")
	}
	b.inject = 0x15 // RST 2
	b.intLine = true
	b.run(t, c)
	b.intLine = false
	b.run(t, c)
	if c.PC() != 0x0010 {
		t.Errorf("PC = %04X, want 0010: an interrupt restarts a halted processor", c.PC())
	}
}

func TestWaitStateHoldsTransfer(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0x05) // LAI 5
	start(t, c, b)

	b.wait = true
	sawWait := false
	for i := 0; i < 20; i++ {
		out := b.step(c)
		if StateFromCode(out.StateCode) == TWait {
			sawWait = true
		}
	}
	if !sawWait {
		t.Fatal("wait line should park the processor in the wait state")
	}
	if c.State() != TWait {
		t.Fatalf("state = %v, want TWAIT while the line is held", c.State())
	}
	b.wait = false
	b.run(t, c)
	if c.Register(RegA) != 5 {
		t.Errorf("A = %02X, the transfer should complete after the wait clears", c.Register(RegA))
	}
}

func TestSyncTogglesEveryEdge(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0xC0, 0xC0)
	start(t, c, b)

	last := b.step(c).Sync
	for i := 0; i < 12; i++ {
		out := b.step(c)
		if out.Sync == last {
			t.Fatal("sync must toggle once per edge")
		}
		last = out.Sync
	}
}

func TestInstructionTiming(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	// LAA; LAI 5; JMP 000A
	load(b, 0, 0xC0, 0x06, 0x05, 0x44, 0x0A, 0x00)
	load(b, 0x000A, 0xC0)
	start(t, c, b)

	if n := b.run(t, c); n != 10 {
		t.Errorf("LAA took %d edges, want 10 (five split states)", n)
	}
	if n := b.run(t, c); n != 16 {
		t.Errorf("LAI took %d edges, want 16", n)
	}
	if n := b.run(t, c); n != 22 {
		t.Errorf("JMP took %d edges, want 22", n)
	}
}

func TestCompareLeavesAccumulator(t *testing.T) {
	c := newTestCPU()
	b := &testBus{}
	load(b, 0, 0x06, 0x05, 0x3C, 0x05) // LAI 5; CPI 5
	start(t, c, b)

	b.run(t, c)
	b.run(t, c)
	if c.Register(RegA) != 5 {
		t.Errorf("A = %02X, compare must not write back", c.Register(RegA))
	}
	if f := c.Flags(); !f.Zero || f.Carry {
		t.Errorf("flags = %+v after equal compare", f)
	}
}
