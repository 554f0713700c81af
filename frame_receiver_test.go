package vscope

import "testing"

func TestFeedIgnoresBytesWithoutSync(t *testing.T) {
	s, _, _, cap := newTestScope(t, NumChannels, 0)
	s.Feed([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, 0)
	if s.rx.state != rxIdle {
		t.Errorf("rx.state = %v, want idle after bytes with no sync", s.rx.state)
	}
	if len(cap.frames) != 0 {
		t.Errorf("got %d responses, want 0", len(cap.frames))
	}
}

func TestFeedSplitAcrossCallsWithinTimeout(t *testing.T) {
	s, _, _, cap := newTestScope(t, NumChannels, 0)
	frame := buildFrame(msgGetState, nil)

	for i, b := range frame {
		s.Feed([]byte{b}, uint32(i)*10)
	}

	resp := cap.last()
	if resp == nil {
		t.Fatal("no response after a frame split one byte per Feed call")
	}
	if messageType(resp[2]) != msgGetState {
		t.Errorf("response type = %x, want GET_STATE", resp[2])
	}
}

func TestFeedGapAbortsFrame(t *testing.T) {
	s, _, _, cap := newTestScope(t, NumChannels, 0)
	frame := buildFrame(msgGetState, nil)

	half := len(frame) / 2
	s.Feed(frame[:half], 0)
	if s.rx.state == rxIdle {
		t.Fatal("rx.state went idle after a partial, valid-so-far prefix")
	}
	s.Feed(frame[half:], frameTimeoutMicros+1000)

	if len(cap.frames) != 0 {
		t.Errorf("got %d responses, want 0 after a mid-frame timeout", len(cap.frames))
	}
	if s.rx.state != rxIdle {
		t.Errorf("rx.state = %v, want idle after timeout abort and resync attempt", s.rx.state)
	}
}

func TestFeedEmptyIsNoop(t *testing.T) {
	s, _, _, cap := newTestScope(t, NumChannels, 0)
	s.Feed(nil, 0)
	if len(cap.frames) != 0 {
		t.Errorf("Feed(nil, ...) produced a response")
	}
}
