package driver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/config"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/common"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/console"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/cpu"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/display"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/logging"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/machine"
)

// Driver hosts the interactive monitor: it assembles the machine, the
// console and the notification log, and runs the keyboard loop that
// single-steps and inspects the processor.
type Driver struct {
	terminal *display.Terminal
	log      *logging.Log
	coreLog  *log.CoreLogger
	machine  *machine.Machine
	console  *console.Console
	monitor  *monitor
	page     common.UI
	wg       sync.WaitGroup
}

// notifyWriter routes the machine's leveled logger into the monitor's
// notification history so component diagnostics never write over the
// screen.
type notifyWriter struct {
	log *logging.Log
}

func (w *notifyWriter) Write(p []byte) (int, error) {
	w.log.Debug(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func New() (*Driver, error) {
	d := &Driver{}

	t, err := display.New()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize terminal")
	}
	d.terminal = t
	d.log = logging.New(d.redraw)

	d.coreLog = log.New()
	d.coreLog.SetOutput(&notifyWriter{log: d.log})
	var level log.Level
	if !level.UnmarshalText([]byte(config.CLIConfig.LogLevel)) {
		level = log.INFO
	}
	d.coreLog.SetLogLevel(level)

	if err := d.buildMachine(); err != nil {
		t.Restore()
		return nil, err
	}

	d.console = console.New(d.log, d.redraw, &d.wg)
	d.machine.Ports.HandleOutput(uint8(config.CLIConfig.Console.OutPort), d.console.OutputByte)
	d.machine.Ports.HandleInput(uint8(config.CLIConfig.Console.InPort), d.console.InputByte)

	d.monitor = newMonitor(d)
	return d, nil
}

func (d *Driver) buildMachine() error {
	m := machine.New(d.coreLog)
	if err := m.Mem.Load(config.CLIConfig.RomFile); err != nil {
		return err
	}
	if config.CLIConfig.RomTop >= 0 {
		m.Mem.SetRomTop(uint16(config.CLIConfig.RomTop))
	}
	m.SetBoot(config.CLIConfig.Boot.Interrupt, uint8(config.CLIConfig.Boot.Vector))
	m.Reset()
	d.machine = m
	return nil
}

// redraw repaints whichever page owns the screen.
func (d *Driver) redraw(initialize bool) {
	if d.page != nil {
		d.page.Draw(d.terminal, initialize)
	} else {
		d.monitor.Draw(d.terminal, initialize)
	}
}

// Run is the interactive keyboard loop. It returns when the user
// quits.
func (d *Driver) Run() {
	defer d.terminal.Restore()
	defer d.console.Terminate()

	d.redraw(true)
	for {
		input, err := ReadChar()
		if err != nil {
			d.log.Errorf("Input error: %v", err)
			continue
		}

		if d.page != nil {
			if d.page.Process(input) {
				d.page = nil
				d.redraw(true)
			} else {
				d.redraw(false)
			}
			continue
		}

		if !d.monitor.Process(input) {
			return
		}
		d.redraw(false)
	}
}

// show hands the screen to a full-screen page until it reports done.
func (d *Driver) show(page common.UI) {
	d.page = page
	d.redraw(true)
}

// RunHeadless clocks the machine without a terminal UI: run for the
// given number of edges (or until the processor stops), then report
// the final state and the console transcript on stdout.
func (d *Driver) RunHeadless(edges uint64) error {
	n := d.machine.Run(edges)
	c := d.machine.CPU

	fmt.Printf("stepped %d edge(s), %s\n", n, c.String())
	fmt.Printf("flags %s  stack", c.Flags().String())
	for i := uint8(0); i < 8; i++ {
		sep := " "
		if i == c.StackPointer() {
			sep = ">"
		}
		fmt.Printf("%s%s", sep, display.HexAddress(c.StackSlot(i)))
	}
	fmt.Println()
	for _, line := range d.console.Block(1000) {
		fmt.Println(line)
	}
	if v := d.machine.Violations(); len(v) > 0 {
		for _, s := range v {
			fmt.Fprintln(os.Stderr, s)
		}
		return errors.Errorf("%d bus violation(s)", len(v))
	}
	return nil
}

// HeadlessNew builds a driver with no terminal attached.
func HeadlessNew() (*Driver, error) {
	d := &Driver{}
	d.log = logging.New(func(bool) {})
	d.coreLog = log.GetDefaultLogger()
	if err := d.buildMachine(); err != nil {
		return nil, err
	}
	d.console = console.New(d.log, func(bool) {}, &d.wg)
	d.machine.Ports.HandleOutput(uint8(config.CLIConfig.Console.OutPort), d.console.OutputByte)
	d.machine.Ports.HandleInput(uint8(config.CLIConfig.Console.InPort), d.console.InputByte)
	return d, nil
}

// state helpers shared by the monitor pages

func stateColour(st cpu.State) string {
	switch st {
	case cpu.Stopped:
		return common.BrightRed
	case cpu.TWait:
		return common.BrightYellow
	case cpu.T1I:
		return common.BrightMagenta
	}
	return common.BrightGreen
}
