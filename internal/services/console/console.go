package console

import (
	"fmt"
	"strings"
	"sync"
	"time"

	srl "go.bug.st/serial"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/config"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/logging"
)

const scrollbackLines = 200

// Console is the teletype attached to the I/O ports: OUT to the
// configured port prints a character, INP from the configured port
// reads the next queued keystroke (0 when the queue is empty). When a
// serial port name is configured the console is mirrored onto it, so
// a real terminal can sit on the other end.
type Console struct {
	lines      []string
	current    string
	input      []byte
	mux        sync.Mutex

	port       srl.Port
	mode       *srl.Mode
	connected  bool
	terminated bool

	log    *logging.Log
	redraw func(bool)
}

func New(log *logging.Log, redraw func(bool), wg *sync.WaitGroup) *Console {
	c := &Console{
		log:    log,
		redraw: redraw,
		mode: &srl.Mode{
			DataBits: config.CLIConfig.Console.Serial.DataBits,
			BaudRate: config.CLIConfig.Console.Serial.BaudRate,
			StopBits: toStopBits(config.CLIConfig.Console.Serial.StopBits),
			Parity:   toParity(config.CLIConfig.Console.Serial.Parity),
		},
	}
	if config.CLIConfig.Console.Serial.PortName != "" {
		go c.portMonitor(wg)
	}
	return c
}

func (c *Console) Terminate() {
	c.terminated = true
	if c.port != nil {
		c.port.Close()
	}
}

func toStopBits(value int) srl.StopBits {
	switch value {
	case 1:
		return srl.OneStopBit
	case 2:
		return srl.OnePointFiveStopBits
	case 3:
		return srl.TwoStopBits
	default:
		fmt.Println("Invalid StopBit")
		return srl.OneStopBit
	}
}
func toParity(value int) srl.Parity {
	switch value {
	case 0:
		return srl.NoParity
	case 1:
		return srl.OddParity
	case 2:
		return srl.EvenParity
	case 3:
		return srl.MarkParity
	case 4:
		return srl.SpaceParity
	default:
		fmt.Println("Invalid Parity")
		return srl.NoParity
	}
}

// OutputByte is the output-port handler.
func (c *Console) OutputByte(v uint8) {
	c.mux.Lock()
	switch v {
	case '\r':
		// carriage return alone restates the line
	case '\n':
		c.lines = append(c.lines, c.current)
		if len(c.lines) > scrollbackLines {
			c.lines = c.lines[1:]
		}
		c.current = ""
	default:
		if v >= 0x20 && v < 0x7F {
			c.current += string(rune(v))
		}
	}
	c.mux.Unlock()
	if c.connected {
		if _, err := c.port.Write([]byte{v}); err != nil {
			c.log.Errorf("Failed to mirror console output: %v", err)
		}
	}
	c.redraw(false)
}

// InputByte is the input-port handler.
func (c *Console) InputByte() uint8 {
	c.mux.Lock()
	defer c.mux.Unlock()
	if len(c.input) == 0 {
		return 0
	}
	b := c.input[0]
	c.input = c.input[1:]
	return b
}

// Key queues a keystroke from the monitor keyboard.
func (c *Console) Key(b byte) {
	c.mux.Lock()
	c.input = append(c.input, b)
	c.mux.Unlock()
}

// InputPending reports whether unread keystrokes are queued.
func (c *Console) InputPending() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return len(c.input) > 0
}

// Block renders the most recent console lines for the monitor.
func (c *Console) Block(rows int) []string {
	c.mux.Lock()
	defer c.mux.Unlock()
	all := append(append([]string{}, c.lines...), c.current)
	if len(all) > rows {
		all = all[len(all)-rows:]
	}
	return all
}

func (c *Console) portMonitor(wg *sync.WaitGroup) {
	wg.Add(1)
	defer wg.Done()

	var err error
	tick := time.NewTicker(200 * time.Millisecond)
	for !c.terminated {
		<-tick.C
		if c.port == nil {
			if c.port, err = srl.Open(config.CLIConfig.Console.Serial.PortName, c.mode); err != nil {
				c.port = nil
				c.connected = false
			} else {
				c.log.Infof("Opened console port %s", config.CLIConfig.Console.Serial.PortName)
				c.connected = true
				c.readPort()
			}
		}
	}
	tick.Stop()
}
func (c *Console) readPort() {
	bs := make([]byte, 100)
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Recovered Read panic: %v", r)
		}
	}()
	for !c.terminated {
		n, err := c.port.Read(bs)
		if err != nil {
			c.port.Close()
			c.port = nil
			c.connected = false
			c.log.Infof("Lost console port %s", config.CLIConfig.Console.Serial.PortName)
			return
		}
		c.mux.Lock()
		c.input = append(c.input, bs[:n]...)
		c.mux.Unlock()
	}
}

// Viewer returns the full-screen scrollback UI.
func (c *Console) Viewer() common.UI {
	return &viewer{console: c}
}

type viewer struct {
	console *Console
	offset  int
}

func (v *viewer) Draw(t *display.Terminal, initialize bool) {
	if initialize {
		t.Cls()
		t.PrintAtf(1, 1, "%sConsole%s", common.Yellow, common.Reset)
	}
	c := v.console
	c.mux.Lock()
	all := append(append([]string{}, c.lines...), c.current)
	c.mux.Unlock()

	rows := t.Rows() - 2
	top := len(all) - rows - v.offset
	if top < 0 {
		top = 0
	}
	for row := 0; row < rows; row++ {
		t.At(1, row+2)
		t.Cll()
		if top+row < len(all) {
			t.PrintAt(1, row+2, strings.TrimRight(all[top+row], " "))
		}
	}
}
func (v *viewer) Process(input common.Input) bool {
	switch input.KeyCode {
	case display.CursorUp:
		if v.offset < len(v.console.lines) {
			v.offset++
		}
	case display.CursorDown:
		if v.offset > 0 {
			v.offset--
		}
	case 0:
		switch input.Ascii {
		case 'q', 'Q':
			return true
		default:
			v.console.Key(byte(input.Ascii))
		}
	}
	return false
}
