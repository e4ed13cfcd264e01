package driver

import (
	"fmt"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/machine"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/memory"
)

// memoryBlock renders rows of 16 bytes starting at top. The program
// counter cell is highlighted, as are the most recent read and write
// addresses.
func memoryBlock(mc *machine.Machine, top uint16, rows int, pc uint16) []string {
	top &= (memory.Size - 1) &^ 0xF
	lines := []string{common.Yellow + "       0  1  2  3  4  5  6  7   8  9  A  B  C  D  E  F" + common.Reset}

	for r := 0; r < rows; r++ {
		base := (top + uint16(r)*16) & (memory.Size - 1)
		line := fmt.Sprintf("%s%s%s ", common.Yellow, display.HexAddress(base), common.Reset)
		for col := uint16(0); col < 16; col++ {
			addr := (base + col) & (memory.Size - 1)
			gap := " "
			if col == 8 {
				gap = "  "
			}
			colour := common.Blue
			switch addr {
			case pc:
				colour = common.BGCyan + common.Black
			case mc.Mem.LastWrite():
				colour = common.BrightRed
			case mc.Mem.LastRead():
				colour = common.BrightBlue
			}
			line += fmt.Sprintf("%s%s%s%s", gap, colour, display.HexData(mc.Mem.Peek(addr)), common.Reset)
		}
		lines = append(lines, line)
	}
	return lines
}
