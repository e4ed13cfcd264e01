package machine

import (
	"io/ioutil"
	"testing"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/cpu"
)

func newTestMachine() *Machine {
	logger := log.New()
	logger.SetLogLevel(log.FATAL)
	logger.SetOutput(ioutil.Discard)
	return New(logger)
}

func boot(m *Machine, program ...uint8) {
	for i, b := range program {
		m.Mem.Poke(uint16(i), b)
	}
	m.SetBoot(true, 0)
	m.Reset()
}

func TestBootInterruptStartsTheProcessor(t *testing.T) {
	m := newTestMachine()
	boot(m, 0xC0, 0x00) // LAA; HLT
	if m.CPU.State() != cpu.Stopped {
		t.Fatal("processor should power on stopped")
	}
	m.Run(1000)
	if m.CPU.State() != cpu.Stopped {
		t.Fatal("program should halt")
	}
	// the start request injects RST 0, so execution began at zero
	if pc := m.CPU.PC(); pc != 0x0002 {
		t.Errorf("PC = %04X, want 0002 after the halt", pc)
	}
	if v := m.Violations(); len(v) != 0 {
		t.Errorf("bus violations: %v", v)
	}
}

func TestProgramDrivesOutputPort(t *testing.T) {
	m := newTestMachine()
	var seen []uint8
	m.Ports.HandleOutput(8, func(v uint8) { seen = append(seen, v) })
	boot(m, 0x06, 0x42, 0x51, 0x00) // LAI 42; OUT 8; HLT
	m.Run(1000)
	if len(seen) != 1 || seen[0] != 0x42 {
		t.Errorf("output port saw %v, want one byte 42", seen)
	}
	if m.Ports.Latch(8) != 0x42 {
		t.Errorf("port latch = %02X", m.Ports.Latch(8))
	}
	if v := m.Violations(); len(v) != 0 {
		t.Errorf("bus violations: %v", v)
	}
}

func TestProgramReadsInputPort(t *testing.T) {
	m := newTestMachine()
	m.Ports.HandleInput(2, func() uint8 { return 0x6B })
	boot(m, 0x45, 0x51, 0x00) // INP 2; OUT 8; HLT
	m.Run(1000)
	if m.Ports.Latch(8) != 0x6B {
		t.Errorf("port 8 latch = %02X, want the byte read from port 2", m.Ports.Latch(8))
	}
}

func TestMemoryWriteThroughProcessor(t *testing.T) {
	m := newTestMachine()
	// LHI 00; LLI 30; LMI 77; HLT
	boot(m, 0x2E, 0x00, 0x36, 0x30, 0x3E, 0x77, 0x00)
	m.Mem.SetRomTop(0x0010)
	m.Run(2000)
	if got := m.Mem.Peek(0x0030); got != 0x77 {
		t.Errorf("mem[0030] = %02X, want 77", got)
	}
	if v := m.Violations(); len(v) != 0 {
		t.Errorf("bus violations: %v", v)
	}
}

func TestInterruptVectorsThroughController(t *testing.T) {
	m := newTestMachine()
	var seen []uint8
	m.Ports.HandleOutput(8, func(v uint8) { seen = append(seen, v) })
	boot(m, 0x44, 0x00, 0x00) // busy loop: JMP 0000
	// RST 3 lands at 0018
	m.Mem.Poke(0x0018, 0x06) // LAI 55
	m.Mem.Poke(0x0019, 0x55)
	m.Mem.Poke(0x001A, 0x51) // OUT 8
	m.Mem.Poke(0x001B, 0x00) // HLT

	m.Run(200)
	m.Intr.Raise(3)
	m.Run(5000)
	if len(seen) != 1 || seen[0] != 0x55 {
		t.Fatalf("handler output %v, want one byte 55", seen)
	}
	if m.Intr.Pending() != 0 {
		t.Errorf("pending = %02X, the served source should be clear", m.Intr.Pending())
	}
	if v := m.Violations(); len(v) != 0 {
		t.Errorf("bus violations: %v", v)
	}
}

func TestWaitLineParksTheProcessor(t *testing.T) {
	m := newTestMachine()
	boot(m, 0x06, 0x05, 0x00) // LAI 5; HLT
	m.StepInstruction()       // acknowledge of the start request
	m.StepInstruction()       // injected RST 0

	m.SetWait(true)
	m.Run(50)
	if m.CPU.State() != cpu.TWait {
		t.Fatalf("state = %v, want TWAIT", m.CPU.State())
	}
	m.SetWait(false)
	m.Run(2000)
	if m.CPU.Register(cpu.RegA) != 5 {
		t.Errorf("A = %02X, the held transfer should complete", m.CPU.Register(cpu.RegA))
	}
}

func TestStepInstruction(t *testing.T) {
	m := newTestMachine()
	boot(m, 0xC0, 0xC0, 0x00)
	m.StepInstruction() // boundary into the acknowledge
	m.StepInstruction() // injected RST 0
	n := m.StepInstruction()
	if n != 10 {
		t.Errorf("single-cycle instruction took %d edges, want 10", n)
	}
	if m.CPU.PC() != 1 {
		t.Errorf("PC = %04X, want 0001", m.CPU.PC())
	}
}

func TestRunStopsWhenHalted(t *testing.T) {
	m := newTestMachine()
	boot(m, 0x00)
	n := m.Run(100000)
	if n >= 100000 {
		t.Error("Run should return once the processor stops")
	}
}
