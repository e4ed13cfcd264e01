package cpu

// DataOut selects what the processor drives on the data bus during the
// data-transfer state of a write or output cycle.
type DataOut uint8

const (
	OutNone   DataOut = iota
	OutSrcReg         // source register of the current instruction
	OutTempB          // staged operand (immediate byte bound for memory)
	OutAcc            // accumulator
)

// Micro is an internal commit operation requested for the execute
// states T4 and T5.
type Micro uint8

const (
	MicroNone     Micro = iota
	MicroStageSrc       // temp B <- source register
	MicroStageDst       // temp B <- destination register
	MicroStageAcc       // temp B <- accumulator
	MicroAlu            // accumulator and flags from ALU(fn, A, temp B)
	MicroRotate         // accumulator and carry from the rotate network
	MicroIncrement      // destination register <- temp B + 1; Z/S/P only
	MicroDecrement      // destination register <- temp B - 1; Z/S/P only
	MicroWriteDst       // destination register <- temp B
	MicroWriteAcc       // accumulator <- temp B
	MicroJumpLow        // PC low <- temp B
	MicroCallLow        // push, then PC low <- temp B
	MicroRestartLow     // push, then PC low <- vector<<3
	MicroJumpHigh       // PC high <- temp A
	MicroRestartHigh    // PC high <- 0
	MicroReturn         // pop
)

// ControlWord describes every side effect of one half-state. The
// timing state machine applies it verbatim; nothing else mutates
// registers, stack, flags or latches.
type ControlWord struct {
	Next   State
	Commit bool // side effects apply on this half-step

	NewCycle bool // the next state starts the following machine cycle
	Done     bool // the instruction completes at this commit
	Halt     bool // enter the stopped state instead of fetching

	LoadIR    bool // latch the data bus into the instruction register
	LoadTempA bool // latch the data bus into temp A (address high staging)
	LoadTempB bool // latch the data bus into temp B (operand staging)

	PCIncrement bool // advance the program counter

	Exec Micro // internal operation for an execute state

	// Bus presentation for the next machine cycle, selected while the
	// current one ends.
	CycleType  CycleType
	AddrSource AddrSource
	DriveData  DataOut
}
