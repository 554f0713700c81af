package vscope

import (
	"math"
	"testing"
)

// pinRunning forces the acquisition state machine into RUNNING without
// going through Tick, so checkTrigger's calls to ManualTrigger take
// effect and can be observed via s.request without the Acquisition
// Engine consuming them.
func pinRunning(s *Scope) {
	s.state = Running
	s.request.Store(uint32(Running))
}

func countEdges(t *testing.T, s *Scope, vars []float32, mode TriggerMode) int {
	t.Helper()
	s.triggerMode.Store(uint32(mode))
	s.triggerInvalid.Store(true)
	s.lastDelta = 0
	count := 0
	for k := 0; k < 2000; k++ {
		vars[0] = float32(math.Sin(float64(k)))
		pinRunning(s)
		s.checkTrigger()
		if State(s.request.Load()) == Acquiring {
			count++
		}
	}
	return count
}

func TestTriggerDetectorModes(t *testing.T) {
	s, vars, _, _ := newTestScope(t, NumChannels, 0)
	s.triggerChannel.Store(0)
	s.triggerThreshold.Store(math.Float32bits(0))

	rising := countEdges(t, s, vars, TriggerRising)
	falling := countEdges(t, s, vars, TriggerFalling)
	both := countEdges(t, s, vars, TriggerBoth)
	disabled := countEdges(t, s, vars, TriggerDisabled)

	if rising == 0 {
		t.Error("RISING never fired across 2000 samples of sin(k)")
	}
	if falling == 0 {
		t.Error("FALLING never fired across 2000 samples of sin(k)")
	}
	if disabled != 0 {
		t.Errorf("DISABLED fired %d times, want 0", disabled)
	}
	if both != rising+falling {
		t.Errorf("BOTH fired %d times, want rising+falling = %d", both, rising+falling)
	}
}

func TestTriggerInvalidGuardSuppressesFirstEdge(t *testing.T) {
	s, vars, _, _ := newTestScope(t, NumChannels, 0)
	s.triggerChannel.Store(0)
	s.triggerThreshold.Store(math.Float32bits(0))
	s.triggerMode.Store(uint32(TriggerRising))
	s.triggerInvalid.Store(true)

	pinRunning(s)
	vars[0] = -1
	s.checkTrigger()
	if State(s.request.Load()) == Acquiring {
		t.Error("trigger fired on the first call after trigger_invalid, should be suppressed")
	}

	pinRunning(s)
	vars[0] = 1
	s.checkTrigger()
	if State(s.request.Load()) != Acquiring {
		t.Error("RISING edge after the guard's first call did not fire")
	}
}

func TestTriggerZeroCurrentNoFalsePositive(t *testing.T) {
	s, vars, _, _ := newTestScope(t, NumChannels, 0)
	s.triggerChannel.Store(0)
	s.triggerThreshold.Store(math.Float32bits(0))
	s.triggerMode.Store(uint32(TriggerBoth))
	s.triggerInvalid.Store(true)

	pinRunning(s)
	vars[0] = -1
	s.checkTrigger()

	pinRunning(s)
	vars[0] = 0
	s.checkTrigger()
	if State(s.request.Load()) == Acquiring {
		t.Error("current==0 produced a trigger; product of zero is not negative")
	}
}
