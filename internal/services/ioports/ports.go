package ioports

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

// Port layout: ports 0-7 are input ports read by INP, ports 8-31 are
// output ports written by OUT. During an I/O cycle the port number
// rides on bits 5:1 of the low address byte, which is the instruction
// opcode itself.
const (
	InputPorts  = 8
	OutputPorts = 24
	TotalPorts  = InputPorts + OutputPorts
)

// InputHandler supplies the byte an INP from that port returns.
type InputHandler func() uint8

// OutputHandler consumes the accumulator byte an OUT delivers.
type OutputHandler func(v uint8)

// Ports models the external I/O port latches. Unhandled input ports
// return their latched value (settable by the monitor); unhandled
// output ports just latch.
type Ports struct {
	latches  [TotalPorts]uint8
	inputs   [InputPorts]InputHandler
	outputs  [OutputPorts]OutputHandler
	lastPort uint8
	log      *log.CoreLogger
}

func New(logger *log.CoreLogger) *Ports {
	return &Ports{log: logger}
}

// PortOf decodes the port number from the low address byte of an I/O
// cycle.
func PortOf(addrLow uint8) uint8 {
	return (addrLow >> 1) & 0x1F
}

// Selected reports whether the port number decodes to this device.
// All 32 ports live here, so this is a range check only.
func (p *Ports) Selected(port uint8) bool {
	return port < TotalPorts
}

// HandleInput installs a handler for one of the 8 input ports.
func (p *Ports) HandleInput(port uint8, h InputHandler) {
	if port < InputPorts {
		p.inputs[port] = h
	}
}

// HandleOutput installs a handler for one of the 24 output ports.
// The port argument is the bus port number (8-31).
func (p *Ports) HandleOutput(port uint8, h OutputHandler) {
	if port >= InputPorts && port < TotalPorts {
		p.outputs[port-InputPorts] = h
	}
}

// Read services an INP cycle.
func (p *Ports) Read(port uint8) uint8 {
	p.lastPort = port
	if port >= InputPorts {
		p.log.Warnf("INP from output port %d returns open bus", port)
		return 0xFF
	}
	if h := p.inputs[port]; h != nil {
		v := h()
		p.latches[port] = v
		return v
	}
	return p.latches[port]
}

// Write services an OUT cycle.
func (p *Ports) Write(port uint8, v uint8) {
	p.lastPort = port
	if port < InputPorts || port >= TotalPorts {
		p.log.Warnf("OUT to port %d ignored", port)
		return
	}
	p.latches[port] = v
	if h := p.outputs[port-InputPorts]; h != nil {
		h(v)
	}
}

// Set latches a value on an input port for the monitor.
func (p *Ports) Set(port uint8, v uint8) {
	if port < TotalPorts {
		p.latches[port] = v
	}
}

// Latch reports the current latch of any port for the monitor.
func (p *Ports) Latch(port uint8) uint8 {
	if port < TotalPorts {
		return p.latches[port]
	}
	return 0xFF
}

// LastPort reports the most recently accessed port.
func (p *Ports) LastPort() uint8 {
	return p.lastPort
}
