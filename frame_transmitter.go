package vscope

// sendFrame assembles SYNC|LEN|TYPE|PAYLOAD|CRC and pushes it to txBytes.
// Frames whose payload exceeds MaxPayload are silently dropped: an
// internal bug, never something the protocol emits on purpose.
func (s *Scope) sendFrame(t messageType, payload []byte) {
	if len(payload) > MaxPayload {
		return
	}

	frame := make([]byte, 2+2+len(payload))
	frame[0] = syncByte
	frame[1] = byte(len(payload) + 2)
	frame[2] = byte(t)
	copy(frame[3:], payload)
	frame[len(frame)-1] = crc8(frame[2 : len(frame)-1])

	if s.txBytes != nil {
		s.txBytes(frame)
	}
}

func (s *Scope) sendError(code StatusCode) {
	s.sendFrame(msgError, []byte{byte(code)})
}

// sendPayload is the response path for every successful command: an
// oversize payload here indicates a dispatcher bug, reported as BAD_LEN
// rather than silently dropped, since (unlike sendFrame) this path is
// reachable from command handling.
func (s *Scope) sendPayload(t messageType, payload []byte) {
	if len(payload) > MaxPayload {
		s.sendError(StatusBadLen)
		return
	}
	s.sendFrame(t, payload)
}
