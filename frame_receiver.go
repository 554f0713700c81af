package vscope

// rxReceiveState is the byte-fed receiver's state tag.
type rxReceiveState uint8

const (
	rxIdle rxReceiveState = iota
	rxLen
	rxData
)

// rxState is the Frame Receiver's state, owned entirely by the task
// context (the same goroutine that calls Feed).
type rxState struct {
	state       rxReceiveState
	expectedLen uint16
	writeIndex  uint16
	lastByteUs  uint32
	buf         [MaxPayload + 2]byte
}

func (rx *rxState) reset() {
	rx.state = rxIdle
	rx.expectedLen = 0
	rx.writeIndex = 0
}

// Feed is the task-context entry point: bytes received from the
// transport are fed here along with a timestamp (microseconds) used for
// the inter-byte timeout. On a fully-received, CRC-valid frame it invokes
// the Command Dispatcher and, for most commands, emits exactly one
// response frame via txBytes.
func (s *Scope) Feed(data []byte, nowUs uint32) {
	if len(data) == 0 {
		return
	}

	rx := &s.rx
	if rx.state != rxIdle && (nowUs-rx.lastByteUs) > frameTimeoutMicros {
		rx.reset()
	}

	for _, b := range data {
		switch rx.state {
		case rxIdle:
			if b == syncByte {
				rx.state = rxLen
				rx.lastByteUs = nowUs
			}

		case rxLen:
			rx.expectedLen = uint16(b)
			if rx.expectedLen < 2 || rx.expectedLen > MaxPayload+2 {
				rx.reset()
			} else {
				rx.writeIndex = 0
				rx.state = rxData
			}
			rx.lastByteUs = nowUs

		case rxData:
			rx.buf[rx.writeIndex] = b
			rx.writeIndex++
			rx.lastByteUs = nowUs
			if rx.writeIndex >= rx.expectedLen {
				frameLen := rx.expectedLen
				gotCRC := rx.buf[frameLen-1]
				calcCRC := crc8(rx.buf[:frameLen-1])
				if gotCRC == calcCRC {
					msgType := messageType(rx.buf[0])
					payload := append([]byte(nil), rx.buf[1:frameLen-1]...)
					s.dispatch(msgType, payload)
				}
				rx.reset()
			}
		}
	}
}
