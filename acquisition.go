package vscope

// Tick drives the acquisition state machine and must be called from an
// ISR at the configured isr_khz rate. It owns state, w, f, buffer and the
// snapshot; only Tick ever writes them.
func (s *Scope) Tick() {
	s.dividerTicks++
	if s.dividerTicks < s.divider.Load() {
		return
	}
	s.dividerTicks = 0

	s.checkTrigger()

	switch s.state {
	case Halted:
		s.w = 0
		if State(s.request.Load()) == Running {
			s.state = Running
			s.snapshotValid.Store(false)
		}

	case Running:
		if State(s.request.Load()) == Halted {
			s.state = Halted
		}
		if State(s.request.Load()) == Acquiring {
			s.captureSnapshot()
			if s.acqTime.Load() == 0 {
				s.f = s.w
				s.snapshotValid.Store(true)
				s.state = Halted
			} else {
				s.state = Acquiring
				s.runIndex = 1
			}
		}
		s.saveFrame()

	case Acquiring:
		if s.runIndex == s.acqTime.Load() {
			s.f = s.w
			s.snapshotValid.Store(true)
			s.state = Halted
		} else {
			s.runIndex++
			s.saveFrame()
		}

	case Misconfigured:
		// remain; do nothing.
	}
}

// saveFrame copies *frame[i] into buffer[w][i] for every channel, then
// advances w modulo BufferSize.
func (s *Scope) saveFrame() {
	for i := 0; i < NumChannels; i++ {
		s.buffer[s.w][i] = *s.framePtr[i].Load()
	}
	s.w++
	if s.w >= BufferSize {
		s.w = 0
	}
}
