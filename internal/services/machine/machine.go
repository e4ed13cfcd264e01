package machine

import (
	"fmt"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/cpu"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/ioports"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/memory"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/pic"
)

// Machine is the system board. It clocks the processor, decodes the
// state pins the way the external support logic would, latches the
// address from the T1/T2 bus bytes, routes data-transfer states to
// memory, the I/O ports or the interrupt controller, and polices the
// one-driver-per-state bus rule.
type Machine struct {
	CPU   *cpu.CPU
	Mem   *memory.Memory
	Ports *ioports.Ports
	Intr  *pic.Controller

	addrLow  uint8
	addrHigh uint8
	ctype    cpu.CycleType

	busData     uint8
	deviceDrive bool
	ack         bool
	serviced    bool
	injected    bool
	wrote       bool
	wait        bool

	bootVector    uint8
	bootInterrupt bool

	violations []string
	log        *log.CoreLogger
}

func New(logger *log.CoreLogger) *Machine {
	m := &Machine{
		Mem:   memory.New(logger),
		Ports: ioports.New(logger),
		Intr:  pic.New(logger),
		log:   logger,
	}
	m.CPU = cpu.New(logger)
	return m
}

// SetBoot configures the power-on start request: when enabled, Reset
// raises an interrupt through the given restart vector, which wakes
// the stopped processor into its first acknowledge cycle.
func (m *Machine) SetBoot(interrupt bool, vector uint8) {
	m.bootInterrupt = interrupt
	m.bootVector = vector & 0x07
}

// SetWait asserts or releases the wait request line.
func (m *Machine) SetWait(wait bool) {
	m.wait = wait
}

// Waiting reports the wait request line level.
func (m *Machine) Waiting() bool {
	return m.wait
}

// Reset puts the board back in its power-on condition.
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.ack = false
	m.injected = false
	m.wrote = false
	m.deviceDrive = false
	m.violations = nil
	if m.bootInterrupt {
		m.Intr.Raise(m.bootVector)
	}
}

// Step advances the board by one clock edge.
func (m *Machine) Step() cpu.Out {
	out := m.CPU.Step(cpu.Pins{
		Data: m.busData,
		Wait: m.wait,
		Int:  m.Intr.Line(),
	})

	switch cpu.StateFromCode(out.StateCode) {
	case cpu.T1:
		m.beginCycle(false)
		if out.Drive {
			m.addrLow = out.Data
		}
	case cpu.T1I:
		m.beginCycle(true)
	case cpu.T2:
		if out.Drive && !m.serviced {
			m.ctype = cpu.CycleType(out.Data >> 6)
			m.addrHigh = out.Data & 0x3F
			m.serviced = true
			m.service()
		}
	case cpu.T3:
		if m.ack && !m.injected {
			m.busData = m.Intr.Inject()
			m.deviceDrive = true
			m.injected = true
		}
		if out.Drive {
			if m.deviceDrive {
				m.violation(out.Data)
			} else if !m.wrote {
				m.commit(out.Data)
				m.wrote = true
			}
		}
		if m.injected && m.CPU.State() != cpu.T3 {
			// acknowledge committed on this edge
			m.Intr.Acknowledge()
			m.injected = false
		}
	}
	return out
}

// beginCycle resets the per-cycle bus bookkeeping.
func (m *Machine) beginCycle(ack bool) {
	m.ack = ack
	m.wrote = false
	m.serviced = false
	m.deviceDrive = false
	m.injected = false
	if !ack {
		m.busData = 0
	}
}

// Address is the 14-bit cycle address latched from T1 and T2.
func (m *Machine) Address() uint16 {
	return uint16(m.addrHigh)<<8 | uint16(m.addrLow)
}

// service performs the device read for the latched cycle so the data
// is on the bus before the data-transfer state commits.
func (m *Machine) service() {
	addr := m.Address()
	switch m.ctype {
	case cpu.PCI, cpu.PCR:
		if m.Mem.Selected(addr) {
			m.busData = m.Mem.Read(addr)
			m.deviceDrive = true
		}
	case cpu.PCC:
		port := ioports.PortOf(m.addrLow)
		if port < ioports.InputPorts && m.Ports.Selected(port) {
			m.busData = m.Ports.Read(port)
			m.deviceDrive = true
		}
	}
}

// commit delivers processor-driven data to the selected device.
func (m *Machine) commit(data uint8) {
	switch m.ctype {
	case cpu.PCW:
		m.Mem.Write(m.Address(), data)
	case cpu.PCC:
		m.Ports.Write(ioports.PortOf(m.addrLow), data)
	default:
		m.violation(data)
	}
}

func (m *Machine) violation(data uint8) {
	v := fmt.Sprintf("bus contention: %s cycle at %04X, processor drove %02X against a device",
		m.ctype, m.Address(), data)
	if len(m.violations) == 0 || m.violations[len(m.violations)-1] != v {
		m.violations = append(m.violations, v)
		m.log.Errorf("%s", v)
	}
}

// Violations lists the bus conflicts observed since the last Reset.
func (m *Machine) Violations() []string {
	return m.violations
}

// Run clocks the board for the given number of edges, or until the
// processor stops with no interrupt pending.
func (m *Machine) Run(edges uint64) uint64 {
	var n uint64
	for n < edges {
		m.Step()
		n++
		if m.CPU.State() == cpu.Stopped && !m.Intr.Line() && !m.CPU.InterruptPending() {
			break
		}
	}
	return n
}

// StepInstruction clocks the board until the current instruction
// finishes: the processor is back at the start of a fetch (or
// acknowledge) cycle, or has stopped.
func (m *Machine) StepInstruction() uint64 {
	var n uint64
	for {
		m.Step()
		n++
		st := m.CPU.State()
		if st == cpu.Stopped {
			if !m.Intr.Line() && !m.CPU.InterruptPending() {
				return n
			}
			continue
		}
		if (st == cpu.T1 || st == cpu.T1I) && m.CPU.Cycle() == 0 && m.CPU.Phase() == cpu.Phi1 {
			return n
		}
		if n > 200 {
			// no instruction is longer than 3 cycles of 5 states
			return n
		}
	}
}
