package driver

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/ioports"
)

// portPage shows the I/O port latches and the interrupt controller.
type portPage struct {
	d *Driver
}

func (p *portPage) Draw(t *display.Terminal, initialize bool) {
	if initialize {
		t.Cls()
	}
	mc := p.d.machine

	t.PrintAtf(1, 1, "%sInput ports%s", common.Yellow, common.Reset)
	for port := uint8(0); port < ioports.InputPorts; port++ {
		t.PrintAtf(1, 2+int(port), "%s%2d%s %s", common.Yellow, port, common.Reset,
			display.HexData(mc.Ports.Latch(port)))
	}

	t.PrintAtf(21, 1, "%sOutput ports%s", common.Yellow, common.Reset)
	for i := uint8(0); i < ioports.OutputPorts; i++ {
		port := ioports.InputPorts + i
		col := 21 + 10*int(i/8)
		t.PrintAtf(col, 2+int(i%8), "%s%2d%s %s", common.Yellow, port, common.Reset,
			display.HexData(mc.Ports.Latch(port)))
	}

	t.PrintAtf(61, 1, "%sInterrupts%s", common.Yellow, common.Reset)
	t.PrintAtf(61, 2, "%spending%s %08b", common.Yellow, common.Reset, mc.Intr.Pending())
	t.PrintAtf(61, 3, "%smask%s    %08b", common.Yellow, common.Reset, mc.Intr.Mask())

	t.PrintAtf(1, t.Rows(), "%sPress any key to exit%s", common.Yellow, common.Reset)
	t.HideCursor()
}

func (p *portPage) Process(input common.Input) bool {
	return true
}
