package common

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
)

const (
	Black   = "[30m"
	Red     = "[31m"
	Green   = "[32m"
	Yellow  = "[33m"
	Blue    = "[34m"
	Magenta = "[35m"
	Cyan    = "[36m"
	White   = "[37m"

	Grey          = "[90m"
	BrightRed     = "[91m"
	BrightGreen   = "[92m"
	BrightYellow  = "[93m"
	BrightBlue    = "[94m"
	BrightMagenta = "[95m"
	BrightCyan    = "[96m"
	BrightWhite   = "[97m"

	BGBlack   = "[40m"
	BGRed     = "[41m"
	BGGreen   = "[42m"
	BGYellow  = "[43m"
	BGBlue    = "[44m"
	BGMagenta = "[45m"
	BGCyan    = "[46m"
	BGWhite   = "[47m"

	Bold      = "[1m"
	Underline = "[4m"
	Reset     = "[0m"
)

// UI is a full screen page the driver can hand control to. Process
// returns true when the page is done and the main view should resume.
type UI interface {
	Draw(t *display.Terminal, initialize bool)
	Process(input Input) bool
}

type Coord struct {
	X int
	Y int
}

// Input is a single decoded keyboard event. KeyCode is non-zero for
// cursor and function keys, otherwise Ascii carries the character.
type Input struct {
	Ascii   int
	KeyCode int
}
