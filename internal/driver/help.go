package driver

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
)

type helpPage struct {
}

func (h *helpPage) Draw(t *display.Terminal, initialize bool) {
	if initialize {
		t.Cls()
	}

	t.PrintAtf(1, 1, "%sExecution%s", common.Yellow, common.Reset)
	t.PrintAtf(1, 2, "%sspace%s One clock edge%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 3, "%ss%s     Step one instruction%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 4, "%sg%s     Run until the processor stops%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 5, "%sw%s     Toggle the wait line%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 6, "%sR%s     Reset the machine%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 7, "%s0-7%s   Raise interrupt source n%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(41, 1, "%sMemory window%s", common.Yellow, common.Reset)
	t.PrintAtf(41, 2, "%sup/down%s     Scroll one row%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(41, 3, "%sleft/right%s  Scroll one page%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(41, 4, "%sf%s           Follow the program counter%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(1, 9, "%sPages%s", common.Yellow, common.Reset)
	t.PrintAtf(1, 10, "%sc%s Console%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 11, "%sp%s I/O ports and interrupts%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 12, "%sl%s Notification log%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(1, 13, "%sh%s This page%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(41, 9, "%sOther%s", common.Yellow, common.Reset)
	t.PrintAtf(41, 10, "%sd%s Debug output on%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(41, 11, "%sD%s Debug output off%s", common.Yellow, common.White, common.Reset)
	t.PrintAtf(41, 12, "%sq%s Quit%s", common.Yellow, common.White, common.Reset)

	t.PrintAtf(1, t.Rows(), "%sPress any key to exit%s", common.Yellow, common.Reset)
	t.HideCursor()
}

func (h *helpPage) Process(input common.Input) bool {
	return true
}
