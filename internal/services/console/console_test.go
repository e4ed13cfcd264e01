package console

import (
	"sync"
	"testing"

	"github.td.teradata.com/sandbox/mcs8-sim/internal/config"
	"github.td.teradata.com/sandbox/mcs8-sim/internal/services/logging"
)

func newTestConsole() *Console {
	config.CLIConfig = config.DefaultConfig()
	log := logging.New(func(bool) {})
	var wg sync.WaitGroup
	return New(log, func(bool) {}, &wg)
}

func TestOutputScrollback(t *testing.T) {
	c := newTestConsole()
	for _, b := range []byte("HI\r\nOK") {
		c.OutputByte(b)
	}
	block := c.Block(4)
	if len(block) != 2 || block[0] != "HI" || block[1] != "OK" {
		t.Errorf("block = %q", block)
	}
}

func TestControlBytesDropped(t *testing.T) {
	c := newTestConsole()
	c.OutputByte(0x07)
	c.OutputByte('A')
	if block := c.Block(1); block[0] != "A" {
		t.Errorf("block = %q", block)
	}
}

func TestInputQueue(t *testing.T) {
	c := newTestConsole()
	if c.InputByte() != 0 {
		t.Error("empty queue should read as zero")
	}
	c.Key('x')
	c.Key('y')
	if !c.InputPending() {
		t.Error("keystrokes should be pending")
	}
	if c.InputByte() != 'x' || c.InputByte() != 'y' {
		t.Error("keystrokes should come back in order")
	}
	if c.InputPending() {
		t.Error("queue should drain")
	}
}
