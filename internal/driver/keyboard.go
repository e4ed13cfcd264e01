package driver

import (
	"github.com/pkg/term"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
)

// ReadChar blocks for one keystroke in raw mode. Arrow keys arrive as
// three-byte ESC-[ sequences and are mapped to the Javascript key
// codes the UI pages switch on; everything else is returned as ascii.
func ReadChar() (common.Input, error) {
	t, err := term.Open("/dev/tty")
	if err != nil {
		return common.Input{}, err
	}
	defer func() {
		t.Restore()
		t.Close()
	}()
	if err = term.RawMode(t); err != nil {
		return common.Input{}, err
	}

	bytes := make([]byte, 3)
	numRead, err := t.Read(bytes)
	if err != nil {
		return common.Input{}, err
	}

	input := common.Input{}
	if numRead == 3 && bytes[0] == 27 && bytes[1] == 91 {
		switch bytes[2] {
		case 65:
			input.KeyCode = display.CursorUp
		case 66:
			input.KeyCode = display.CursorDown
		case 67:
			input.KeyCode = display.CursorRight
		case 68:
			input.KeyCode = display.CursorLeft
		}
	} else if numRead == 1 {
		input.Ascii = int(bytes[0])
	}
	return input, nil
}
