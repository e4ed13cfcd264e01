package cpu

// Synchronizer latches the external interrupt request line. The line
// is sampled once per primary clock edge; only a clean low-to-high
// transition between two samples sets the latch, so a continuously
// asserted line cannot retrigger. The latch is cleared at exactly one
// point: the data-transfer half-step of an acknowledge cycle.
type Synchronizer struct {
	last  bool
	latch bool
}

// Sample observes the request line at a clock edge.
func (s *Synchronizer) Sample(line bool) {
	if line && !s.last {
		s.latch = true
	}
	s.last = line
}

// Pending reports whether an interrupt is latched. The timing state
// machine consults this only at instruction boundaries.
func (s *Synchronizer) Pending() bool {
	return s.latch
}

// Acknowledge clears the latch. Called from the T3 commit of the
// acknowledge cycle and nowhere else.
func (s *Synchronizer) Acknowledge() {
	s.latch = false
}

// Reset drops both the latch and the edge-detector history.
func (s *Synchronizer) Reset() {
	s.last = false
	s.latch = false
}
