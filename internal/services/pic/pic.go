package pic

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/log"
)

// Sources is the number of prioritized request lines. Source 0 is the
// highest priority and is reserved for the power-on start request.
const Sources = 8

// Controller fans eight prioritized request lines into the single
// interrupt pin and supplies the instruction jammed onto the bus
// during the acknowledge cycle. Each source maps to the matching
// restart vector, so acknowledging source n injects RST n.
type Controller struct {
	pending uint8
	mask    uint8
	serving int
	log     *log.CoreLogger
}

func New(logger *log.CoreLogger) *Controller {
	return &Controller{serving: -1, log: logger}
}

// Raise asserts a request line. It stays asserted until acknowledged
// or cleared.
func (c *Controller) Raise(source uint8) {
	if source >= Sources {
		return
	}
	c.pending |= 1 << source
}

// Clear drops a request line without acknowledging it.
func (c *Controller) Clear(source uint8) {
	if source >= Sources {
		return
	}
	c.pending &^= 1 << source
}

// SetMask disables the sources whose bits are set.
func (c *Controller) SetMask(mask uint8) {
	c.mask = mask
}

// Line is the level on the interrupt pin: high while any unmasked
// source is pending.
func (c *Controller) Line() bool {
	return c.pending&^c.mask != 0
}

// highest returns the lowest-numbered pending unmasked source.
func (c *Controller) highest() int {
	active := c.pending &^ c.mask
	for s := 0; s < Sources; s++ {
		if active&(1<<s) != 0 {
			return s
		}
	}
	return -1
}

// Inject supplies the instruction byte driven onto the data bus when
// the acknowledge cycle reaches its data-transfer state: RST n for
// the winning source n.
func (c *Controller) Inject() uint8 {
	s := c.highest()
	if s < 0 {
		// Acknowledge with nothing pending. Real hardware would
		// float the bus; a restart through vector 0 is the safe
		// observable choice.
		c.log.Warnf("interrupt acknowledged with no source pending")
		s = 0
	}
	c.serving = s
	return 0x05 | uint8(s)<<3 // RST n
}

// Acknowledge clears the request line captured by the last Inject.
func (c *Controller) Acknowledge() {
	if c.serving >= 0 {
		c.pending &^= 1 << c.serving
		c.log.Debugf("interrupt source %d acknowledged", c.serving)
		c.serving = -1
	}
}

// Pending reports the raw request lines for the monitor.
func (c *Controller) Pending() uint8 {
	return c.pending
}

// Mask reports the current mask for the monitor.
func (c *Controller) Mask() uint8 {
	return c.mask
}
