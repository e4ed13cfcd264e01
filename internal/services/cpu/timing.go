package cpu

import "fmt"

// State is one phase of the processor's operation within a machine
// cycle. The processor walks T1 -> T2 -> (TWait...) -> T3 and, for
// instructions needing internal processing, on through T4 and T5.
// T1I replaces T1 for the interrupt acknowledge cycle.
type State uint8

const (
	T1 State = iota
	T2
	T3
	T4
	T5
	TWait
	Stopped
	T1I
)

// stateCodes are the S2:S1:S0 lines as observed on the original
// silicon: T1=010 T2=100 T3=001 T4=111 T5=101 TWAIT=000 STOPPED=011
// T1I=110.
var stateCodes = [...]uint8{
	T1:      0b010,
	T2:      0b100,
	T3:      0b001,
	T4:      0b111,
	T5:      0b101,
	TWait:   0b000,
	Stopped: 0b011,
	T1I:     0b110,
}

// Code returns the 3-bit state code presented on the S2:S1:S0 pins.
func (s State) Code() uint8 {
	return stateCodes[s]
}

// StateFromCode is the decode external logic performs on the state
// pins. Every 3-bit value maps to a state.
func StateFromCode(code uint8) State {
	for s, c := range stateCodes {
		if c == code&0b111 {
			return State(s)
		}
	}
	return Stopped
}

// Split reports whether the state runs as two half-steps. Wait and
// stopped states are single edge-to-edge holds.
func (s State) Split() bool {
	return s != TWait && s != Stopped
}

func (s State) String() string {
	switch s {
	case T1:
		return "T1"
	case T2:
		return "T2"
	case T3:
		return "T3"
	case T4:
		return "T4"
	case T5:
		return "T5"
	case TWait:
		return "TWAIT"
	case Stopped:
		return "STOPPED"
	case T1I:
		return "T1I"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Phase selects the half-step within a split state. Phi1 is setup,
// Phi2 commits side effects.
type Phase uint8

const (
	Phi1 Phase = iota
	Phi2
)

func (p Phase) String() string {
	if p == Phi1 {
		return "PHI1"
	}
	return "PHI2"
}

// CycleType is the 2-bit tag presented on D7:D6 during T2, identifying
// the kind of machine cycle in flight.
type CycleType uint8

const (
	PCI CycleType = iota // instruction fetch
	PCR                  // data read
	PCW                  // data write
	PCC                  // I/O command
)

func (c CycleType) String() string {
	switch c {
	case PCI:
		return "PCI"
	case PCR:
		return "PCR"
	case PCW:
		return "PCW"
	case PCC:
		return "PCC"
	}
	return fmt.Sprintf("CycleType(%d)", uint8(c))
}

// AddrSource selects what the processor puts on the address lines for
// a machine cycle.
type AddrSource uint8

const (
	AddrPC   AddrSource = iota // program counter; consumes a program byte
	AddrHL                     // memory-indirect address from H:L
	AddrPort                   // I/O: opcode in the low byte, accumulator above
)
