package vscope

import "testing"

func TestBufferIndicesStayInBounds(t *testing.T) {
	s, _, _, _ := newTestScope(t, NumChannels, 0)
	feedOne(s, buildFrame(msgSetState, []byte{byte(Running)}))

	for i := 0; i < 5*BufferSize+7; i++ {
		s.Tick()
		if s.w < 0 || s.w >= BufferSize {
			t.Fatalf("w = %d out of [0,%d) after %d ticks", s.w, BufferSize, i)
		}
		if s.f < 0 || s.f >= BufferSize {
			t.Fatalf("f = %d out of [0,%d) after %d ticks", s.f, BufferSize, i)
		}
	}
}

func TestAcquisitionCompletesAfterAcqTimeTicks(t *testing.T) {
	s, _, _, _ := newTestScope(t, NumChannels, 0)
	const preTrig = 10
	feedOne(s, buildFrame(msgSetTiming, timingPayload(1, preTrig)))
	feedOne(s, buildFrame(msgSetState, []byte{byte(Running)}))

	for i := 0; i < preTrig+1; i++ {
		s.Tick()
	}
	if s.state != Running {
		t.Fatalf("state = %v, want RUNNING before trigger", s.state)
	}

	s.ManualTrigger()
	acqTime := s.acqTime.Load()
	ticksToComplete := 0
	for !s.snapshotValid.Load() {
		s.Tick()
		ticksToComplete++
		if ticksToComplete > int(acqTime)+2 {
			t.Fatalf("snapshot never became valid within acq_time=%d ticks", acqTime)
		}
	}
	// The tick that observes the trigger request also advances runIndex
	// to 1 and saves a frame; completion lands acq_time ticks after that
	// one, i.e. acq_time+1 Tick calls after ManualTrigger.
	if want := acqTime + 1; uint32(ticksToComplete) != want {
		t.Errorf("snapshot became valid after %d ticks, want exactly %d", ticksToComplete, want)
	}
}

func TestMisconfiguredStateWhenUnderRegistered(t *testing.T) {
	s, _, _, _ := newTestScope(t, NumChannels-1, 0)
	if s.state != Misconfigured {
		t.Errorf("state = %v, want MISCONFIGURED with %d < %d registered vars", s.state, NumChannels-1, NumChannels)
	}
}
