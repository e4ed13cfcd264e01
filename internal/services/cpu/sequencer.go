package cpu

// The microcode sequencer. For every (machine cycle, timing state,
// half-step) it emits the control word describing that half-state's
// side effects. Instructions are expressed as cycle plans: one entry
// per machine cycle, each naming the bus cycle type, the address
// source, what happens at the data-transfer state and the internal
// work of the optional execute states.

// t3 latch targets
const (
	loadNone uint8 = iota
	loadIR
	loadTempA
	loadTempB
)

type cycleDef struct {
	ctype    CycleType
	source   AddrSource
	t3Load   uint8
	out      DataOut // driven during T3 of write and output cycles
	long     bool    // cycle continues into T4/T5
	condLong bool    // continues into T4/T5 only when the condition is met
	t4       Micro
	t5       Micro
	halt     bool // completes into the stopped state
}

// fetch is the common first machine cycle of every instruction.
func fetch(long bool, t4 Micro, t5 Micro) cycleDef {
	return cycleDef{ctype: PCI, source: AddrPC, t3Load: loadIR, long: long, t4: t4, t5: t5}
}

// operand reads one program byte into a scratch latch.
func operand(target uint8) cycleDef {
	return cycleDef{ctype: PCR, source: AddrPC, t3Load: target}
}

// planFor gives the cycle plan of a decoded instruction.
func planFor(d Decoded) []cycleDef {
	switch d.Kind {
	case KindHalt:
		return []cycleDef{{ctype: PCI, source: AddrPC, t3Load: loadIR, halt: true}}

	case KindMove:
		switch {
		case d.SrcMemory:
			return []cycleDef{fetch(false, MicroNone, MicroNone),
				{ctype: PCR, source: AddrHL, t3Load: loadTempB, long: true, t5: MicroWriteDst}}
		case d.DstMemory:
			return []cycleDef{fetch(false, MicroNone, MicroNone),
				{ctype: PCW, source: AddrHL, out: OutSrcReg}}
		default:
			return []cycleDef{fetch(true, MicroStageSrc, MicroWriteDst)}
		}

	case KindMoveImmediate:
		if d.DstMemory {
			return []cycleDef{fetch(false, MicroNone, MicroNone),
				operand(loadTempB),
				{ctype: PCW, source: AddrHL, out: OutTempB}}
		}
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			{ctype: PCR, source: AddrPC, t3Load: loadTempB, long: true, t5: MicroWriteDst}}

	case KindALURegister:
		if d.SrcMemory {
			return []cycleDef{fetch(false, MicroNone, MicroNone),
				{ctype: PCR, source: AddrHL, t3Load: loadTempB, long: true, t5: MicroAlu}}
		}
		return []cycleDef{fetch(true, MicroStageSrc, MicroAlu)}

	case KindALUImmediate:
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			{ctype: PCR, source: AddrPC, t3Load: loadTempB, long: true, t5: MicroAlu}}

	case KindIncrement:
		return []cycleDef{fetch(true, MicroStageDst, MicroIncrement)}

	case KindDecrement:
		return []cycleDef{fetch(true, MicroStageDst, MicroDecrement)}

	case KindRotate:
		return []cycleDef{fetch(true, MicroStageAcc, MicroRotate)}

	case KindJump:
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			operand(loadTempB),
			{ctype: PCR, source: AddrPC, t3Load: loadTempA, condLong: true, t4: MicroJumpLow, t5: MicroJumpHigh}}

	case KindCall:
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			operand(loadTempB),
			{ctype: PCR, source: AddrPC, t3Load: loadTempA, condLong: true, t4: MicroCallLow, t5: MicroJumpHigh}}

	case KindReturn:
		return []cycleDef{{ctype: PCI, source: AddrPC, t3Load: loadIR, condLong: true, t4: MicroReturn}}

	case KindRestart:
		return []cycleDef{fetch(true, MicroRestartLow, MicroRestartHigh)}

	case KindInput:
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			{ctype: PCC, source: AddrPort, t3Load: loadTempB, long: true, t5: MicroWriteAcc}}

	case KindOutput:
		return []cycleDef{fetch(false, MicroNone, MicroNone),
			{ctype: PCC, source: AddrPort, out: OutAcc}}
	}

	// unrecognized opcode: a single diagnosed fetch cycle
	return []cycleDef{fetch(false, MicroNone, MicroNone)}
}

// Sequencer derives control words. No internal state: everything it
// needs arrives as arguments, which keeps it a pure lookup the timing
// state machine can call for either half-step.
type Sequencer struct{}

// ControlWord emits the control word for one half-state.
//
// d is the current instruction register contents, cycle the machine
// cycle index within it, taken the evaluated condition (true for
// unconditional instructions) and pending the interrupt latch. During
// the fetch states of a brand new instruction d describes the previous
// one; only the fetch skeleton, which is identical for every opcode,
// is emitted from it.
func (Sequencer) ControlWord(d Decoded, cycle uint8, st State, ph Phase, taken bool, pending bool) ControlWord {
	plan := planFor(d)
	if int(cycle) >= len(plan) {
		cycle = uint8(len(plan) - 1)
	}
	def := plan[cycle]
	last := int(cycle) == len(plan)-1

	cw := ControlWord{
		Next:       st,
		Commit:     ph == Phi2,
		CycleType:  def.ctype,
		AddrSource: def.source,
		DriveData:  def.out,
	}

	switch st {
	case T1, T1I:
		cw.Next = T2

	case T2:
		cw.Next = T3
		if cw.Commit && def.source == AddrPC {
			cw.PCIncrement = true
		}

	case TWait:
		cw.Next = T3

	case T3:
		if cw.Commit {
			switch def.t3Load {
			case loadIR:
				cw.LoadIR = true
			case loadTempA:
				cw.LoadTempA = true
			case loadTempB:
				cw.LoadTempB = true
			}
		}
		switch {
		case def.long || (def.condLong && taken):
			cw.Next = T4
		case def.halt:
			cw.Next = Stopped
			cw.Done = true
			cw.Halt = true
		case last:
			endInstruction(&cw, pending)
		default:
			cw.Next = T1
			cw.NewCycle = true
			next := plan[cycle+1]
			cw.CycleType = next.ctype
			cw.AddrSource = next.source
		}

	case T4:
		cw.Next = T5
		if cw.Commit {
			cw.Exec = def.t4
		}

	case T5:
		if cw.Commit {
			cw.Exec = def.t5
		}
		if last {
			endInstruction(&cw, pending)
		} else {
			cw.Next = T1
			cw.NewCycle = true
			next := plan[cycle+1]
			cw.CycleType = next.ctype
			cw.AddrSource = next.source
		}

	case Stopped:
		if pending {
			// leaving the halt is itself the start of an acknowledge
			endInstruction(&cw, pending)
		}
	}

	return cw
}

// endInstruction routes the completion of an instruction either to the
// next fetch or, with the interrupt latch set, to the acknowledge
// state. Acknowledge is only ever reached through here, which is what
// keeps it off mid-instruction boundaries.
func endInstruction(cw *ControlWord, pending bool) {
	cw.Done = true
	cw.NewCycle = true
	cw.CycleType = PCI
	cw.AddrSource = AddrPC
	if pending {
		cw.Next = T1I
	} else {
		cw.Next = T1
	}
}
