package vscope

import "testing"

// txCapture collects every frame a Scope emits via its txBytes callback,
// in order, for assertions in tests.
type txCapture struct {
	frames [][]byte
}

func (c *txCapture) send(frame []byte) {
	c.frames = append(c.frames, append([]byte(nil), frame...))
}

func (c *txCapture) last() []byte {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// newTestScope builds a Scope with varCount registered float variables
// (named v0..v(varCount-1)) and rtCount registered RT buffers (named
// rt0..rt(rtCount-1)), calls Init, and returns it along with the backing
// vars/rts and the capture sink for emitted frames.
func newTestScope(t *testing.T, varCount, rtCount int) (*Scope, []float32, []float32, *txCapture) {
	t.Helper()
	cap := &txCapture{}
	s := NewScope(cap.send)

	vars := make([]float32, varCount)
	for i := range vars {
		s.RegisterVar(nameFor("v", i), &vars[i])
	}
	rts := make([]float32, rtCount)
	for i := range rts {
		s.RegisterRTBuffer(nameFor("rt", i), &rts[i])
	}

	s.Init("testdevice", 1000)
	return s, vars, rts, cap
}

func nameFor(prefix string, i int) string {
	digit := byte('0' + i)
	return prefix + string(digit)
}

// buildFrame assembles a SYNC|LEN|TYPE|PAYLOAD|CRC frame with a correct
// CRC-8, the same way sendFrame does, for use as synthetic wire input.
func buildFrame(t messageType, payload []byte) []byte {
	frame := make([]byte, 0, 4+len(payload))
	frame = append(frame, syncByte, byte(len(payload)+2), byte(t))
	frame = append(frame, payload...)
	frame = append(frame, crc8(frame[2:]))
	return frame
}
