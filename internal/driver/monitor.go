package driver

import (
	"fmt"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/cpu"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
)

const runBudget = 1_000_000

// monitor is the main screen: a memory window on the left, the
// processor state on the right, the console transcript and the
// notification line along the bottom.
type monitor struct {
	d      *Driver
	memTop uint16
	follow bool // keep the memory window tracking the program counter
}

func newMonitor(d *Driver) *monitor {
	return &monitor{d: d, follow: true}
}

func (m *monitor) Draw(t *display.Terminal, initialize bool) {
	if initialize {
		t.Cls()
	}
	mc := m.d.machine
	c := mc.CPU

	if m.follow {
		m.memTop = c.PC() &^ 0x7F
	}
	lines := memoryBlock(mc, m.memTop, 8, c.PC())
	for row, line := range lines {
		t.At(1, row+1)
		t.Cll()
		t.Print(line)
	}
	x := 62

	t.PrintAtf(x, 1, "%sRegisters%s", common.Yellow, common.Reset)
	t.At(x, 2)
	t.Cll()
	for code := uint8(cpu.RegA); code <= cpu.RegL; code++ {
		t.Print(fmt.Sprintf("%s%s%s %s  ", common.Yellow, cpu.RegName(code), common.Reset,
			display.HexData(c.Register(code))))
	}
	t.PrintAtf(x, 3, "%sHL%s %s          ", common.Yellow, common.Reset,
		display.HexAddress(uint16(c.Register(cpu.RegH)&0x3F)<<8|uint16(c.Register(cpu.RegL))))

	t.PrintAtf(x, 5, "%sFlags%s  %s", common.Yellow, common.Reset, flagBlock(c.Flags()))

	t.PrintAtf(x, 7, "%sStack%s", common.Yellow, common.Reset)
	for i := uint8(0); i < 8; i++ {
		marker, colour := " ", common.Grey
		if i == c.StackPointer() {
			marker, colour = ">", common.BrightWhite
		}
		t.PrintAtf(x, 8+int(i), "%s%s%d %s%s", colour, marker, i,
			display.HexAddress(c.StackSlot(i)), common.Reset)
	}

	t.PrintAtf(x, 17, "%sTiming%s", common.Yellow, common.Reset)
	st := c.State()
	t.PrintAtf(x, 18, "%s%-7s%s %03b %s cycle %d %s    ",
		stateColour(st), st, common.Reset, st.Code(), c.Phase(), c.Cycle(), c.CycleType())
	markers := ""
	if c.Acknowledging() {
		markers += "ACK "
	}
	if mc.Waiting() {
		markers += "WAIT "
	}
	if c.InterruptPending() {
		markers += "INT "
	}
	t.PrintAtf(x, 19, "%s%-16s%s", common.BrightMagenta, markers, common.Reset)
	t.PrintAtf(x, 20, "%sEdges%s %-12d", common.Yellow, common.Reset, c.Edges())

	t.PrintAtf(x, 22, "%sProgram%s", common.Yellow, common.Reset)
	t.PrintAtf(x, 23, "%sIR%s %s %-10s", common.Yellow, common.Reset,
		display.HexData(c.Instruction().Op), c.Instruction().Mnemonic())
	addr := c.PC()
	for i := 0; i < 6; i++ {
		d := cpu.Decode(mc.Mem.Peek(addr))
		text := fmt.Sprintf("%s %s", display.HexAddress(addr), d.Mnemonic())
		if d.Bytes() == 2 {
			text += " " + display.HexData(mc.Mem.Peek(addr+1))
		} else if d.Bytes() == 3 {
			text += " " + display.HexAddress(uint16(mc.Mem.Peek(addr+2)&0x3F)<<8|uint16(mc.Mem.Peek(addr+1)))
		}
		t.PrintAtf(x, 24+i, "%-24s", text)
		addr += uint16(d.Bytes())
	}

	row := len(lines) + 2
	t.PrintAtf(1, row, "%sConsole%s", common.Yellow, common.Reset)
	for i, line := range m.d.console.Block(6) {
		t.At(1, row+1+i)
		t.Cll()
		t.Print(line)
	}

	notices := m.d.log.LogBlock()
	if len(notices) > 0 {
		t.At(1, t.Rows())
		t.Cll()
		t.Print(notices[0])
	}
	t.HideCursor()
}

// Process handles a main-screen keystroke. Returns false to quit.
func (m *monitor) Process(input common.Input) bool {
	mc := m.d.machine
	switch input.KeyCode {
	case display.CursorUp:
		m.follow = false
		m.memTop -= 8
		return true
	case display.CursorDown:
		m.follow = false
		m.memTop += 8
		return true
	case display.CursorLeft:
		m.follow = false
		m.memTop -= 0x80
		return true
	case display.CursorRight:
		m.follow = false
		m.memTop += 0x80
		return true
	}

	switch input.Ascii {
	case 'q':
		return false
	case ' ':
		mc.Step()
	case 's':
		n := mc.StepInstruction()
		m.d.log.Debugf("Instruction complete in %d edge(s)", n)
	case 'g':
		n := mc.Run(runBudget)
		if mc.CPU.State() == cpu.Stopped {
			m.d.log.Infof("Stopped after %d edge(s)", n)
		} else {
			m.d.log.Warnf("Still running after %d edge(s)", n)
		}
	case 'R':
		mc.Reset()
		m.d.log.Info("Machine reset")
	case 'w':
		mc.SetWait(!mc.Waiting())
		m.d.log.Infof("Wait line %v", mc.Waiting())
	case '0', '1', '2', '3', '4', '5', '6', '7':
		src := uint8(input.Ascii - '0')
		mc.Intr.Raise(src)
		m.d.log.Infof("Interrupt source %d raised", src)
	case 'f':
		m.follow = true
	case 'c':
		m.d.show(m.d.console.Viewer())
	case 'l':
		m.d.show(m.d.log.HistoryViewer())
	case 'p':
		m.d.show(&portPage{d: m.d})
	case 'h':
		m.d.show(&helpPage{})
	case 'd':
		m.d.log.SetDebug(true)
	case 'D':
		m.d.log.SetDebug(false)
	default:
		m.d.log.Warnf("Unmapped key: [%c]", input.Ascii)
	}
	return true
}

func flagBlock(f cpu.Flags) string {
	render := func(label string, set bool) string {
		if set {
			return common.BrightGreen + label + common.Reset
		}
		return common.Grey + label + common.Reset
	}
	return render("C", f.Carry) + " " + render("Z", f.Zero) + " " +
		render("S", f.Sign) + " " + render("P", f.Parity)
}
