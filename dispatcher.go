package vscope

import (
	"log"
	"math"

	"github.com/davecgh/go-spew/spew"
)

// dispatch validates and executes one decoded command frame. Every
// BAD_PARAM rejection and every wrong-length payload caught by expectLen
// is logged with a spew dump of the rejected arguments (never on the
// wire), for host-side debugging; the RANGE and NOT_READY paths, a list
// request longer than two bytes and a snapshot span too large for one
// frame send their error frame without logging.
func (s *Scope) dispatch(t messageType, payload []byte) {
	switch t {
	case msgGetInfo:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetInfo()

	case msgGetTiming:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetTiming()

	case msgSetTiming:
		s.handleSetTiming(payload)

	case msgGetState:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetState()

	case msgSetState:
		s.handleSetState(payload)

	case msgTrigger:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.ManualTrigger()
		s.sendPayload(msgTrigger, nil)

	case msgGetFrame:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetFrame()

	case msgGetSnapshotHeader:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetSnapshotHeader()

	case msgGetSnapshotData:
		s.handleGetSnapshotData(payload)

	case msgGetVarList:
		s.handleGetVarList(payload)

	case msgGetChannelMap:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.sendPayload(msgGetChannelMap, channelMapBytes(s.GetChannelMap()))

	case msgSetChannelMap:
		s.handleSetChannelMap(payload)

	case msgGetChannelLabels:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.handleGetChannelLabels()

	case msgGetRTLabels:
		s.handleGetRTLabels(payload)

	case msgGetRTBuffer:
		s.handleGetRTBuffer(payload)

	case msgSetRTBuffer:
		s.handleSetRTBuffer(payload)

	case msgGetTrigger:
		if !s.expectLen(t, payload, 0) {
			return
		}
		s.sendTrigger(msgGetTrigger)

	case msgSetTrigger:
		s.handleSetTrigger(payload)

	default:
		log.Printf("GOT unknown message type: %v", spew.Sdump(t, payload))
		s.sendError(StatusBadParam)
	}
}

// expectLen sends BAD_LEN and returns false if payload doesn't have the
// exact expected length.
func (s *Scope) expectLen(t messageType, payload []byte, want int) bool {
	if len(payload) != want {
		log.Printf("GOT bad length for %v: %v", t, spew.Sdump(payload))
		s.sendError(StatusBadLen)
		return false
	}
	return true
}

func channelMapBytes(m [NumChannels]uint8) []byte {
	out := make([]byte, NumChannels)
	copy(out, m[:])
	return out
}

func (s *Scope) handleGetInfo() {
	data := make([]byte, 10+NameLen)
	off := 0
	data[off] = protocolVersion
	off++
	data[off] = NumChannels
	off++
	writeU16(data[off:], uint16(BufferSize))
	off += 2
	writeU16(data[off:], s.isrKHz)
	off += 2
	data[off] = s.reg.varCount
	off++
	data[off] = s.reg.rtCount
	off++
	data[off] = RTBufferLen
	off++
	data[off] = NameLen
	off++
	copy(data[off:off+NameLen], s.deviceName[:])

	s.sendPayload(msgGetInfo, data)
}

func (s *Scope) handleGetTiming() {
	s.sendTiming(msgGetTiming)
}

func (s *Scope) sendTiming(t messageType) {
	data := make([]byte, 8)
	writeU32(data[0:], s.divider.Load())
	writeU32(data[4:], s.preTrig.Load())
	s.sendPayload(t, data)
}

func (s *Scope) handleSetTiming(payload []byte) {
	if !s.expectLen(msgSetTiming, payload, 8) {
		return
	}
	divider := readU32(payload[0:])
	preTrig := readU32(payload[4:])

	if divider == 0 || preTrig > BufferSize || s.state != Halted {
		log.Printf("rejected SET_TIMING: %v", spew.Sdump(divider, preTrig, s.state))
		s.sendError(StatusBadParam)
		return
	}

	s.divider.Store(divider)
	s.preTrig.Store(preTrig)
	s.acqTime.Store(BufferSize - preTrig)
	s.sendTiming(msgSetTiming)
}

func (s *Scope) handleGetState() {
	s.sendState(msgGetState)
}

func (s *Scope) sendState(t messageType) {
	s.sendPayload(t, []byte{byte(s.state)})
}

func (s *Scope) handleSetState(payload []byte) {
	if !s.expectLen(msgSetState, payload, 1) {
		return
	}
	requested := payload[0]
	if requested > byte(Acquiring) {
		log.Printf("rejected SET_STATE: %v", spew.Sdump(requested))
		s.sendError(StatusBadParam)
		return
	}
	s.request.Store(uint32(requested))
	s.sendState(msgSetState)
}

func (s *Scope) handleGetFrame() {
	data := make([]byte, NumChannels*4)
	for i := 0; i < NumChannels; i++ {
		writeF32(data[i*4:], *s.framePtr[i].Load())
	}
	s.sendPayload(msgGetFrame, data)
}

func (s *Scope) handleGetSnapshotHeader() {
	if !s.snapshotValid.Load() {
		s.sendError(StatusNotReady)
		return
	}
	snap := &s.snapshot

	data := make([]byte, 0, MaxPayload)
	data = append(data, snap.channelMap[:]...)

	tail := make([]byte, 8)
	writeU32(tail[0:], snap.divider)
	writeU32(tail[4:], snap.preTrig)
	data = append(data, tail...)
	f := make([]byte, 4)
	writeF32(f, snap.triggerThreshold)
	data = append(data, f...)
	data = append(data, snap.triggerChannel, snap.triggerMode)

	for i := uint8(0); i < snap.rtCount; i++ {
		writeF32(f, snap.rtValues[i])
		data = append(data, f...)
	}

	s.sendPayload(msgGetSnapshotHeader, data)
}

func (s *Scope) handleGetSnapshotData(payload []byte) {
	if !s.snapshotValid.Load() {
		s.sendError(StatusNotReady)
		return
	}
	if !s.expectLen(msgGetSnapshotData, payload, 3) {
		return
	}

	start := readU16(payload[0:])
	count := payload[2]

	if int(start) >= BufferSize || count == 0 || int(count) > BufferSize || int(start)+int(count) > BufferSize {
		log.Printf("rejected GET_SNAPSHOT_DATA: %v", spew.Sdump(start, count))
		s.sendError(StatusBadParam)
		return
	}

	maxSamples := MaxPayload / (NumChannels * 4)
	if int(count) > maxSamples {
		s.sendError(StatusBadLen)
		return
	}

	data := make([]byte, int(count)*NumChannels*4)
	off := 0
	for i := 0; i < int(count); i++ {
		idx := (s.f + int(start) + i) % BufferSize
		for ch := 0; ch < NumChannels; ch++ {
			writeF32(data[off:], s.buffer[idx][ch])
			off += 4
		}
	}

	s.sendPayload(msgGetSnapshotData, data)
}

func (s *Scope) handleGetVarList(payload []byte) {
	start, count, ok := s.parseListRequest(msgGetVarList, payload, int(s.reg.varCount))
	if !ok {
		return
	}

	data := make([]byte, 0, MaxPayload)
	data = append(data, s.reg.varCount, start, byte(count))
	for i := 0; i < int(count); i++ {
		id := int(start) + i
		data = append(data, byte(id))
		data = append(data, s.reg.vars[id].name[:]...)
	}
	s.sendPayload(msgGetVarList, data)
}

func (s *Scope) handleGetRTLabels(payload []byte) {
	start, count, ok := s.parseListRequest(msgGetRTLabels, payload, int(s.reg.rtCount))
	if !ok {
		return
	}

	data := make([]byte, 0, MaxPayload)
	data = append(data, s.reg.rtCount, start, byte(count))
	for i := 0; i < int(count); i++ {
		id := int(start) + i
		data = append(data, byte(id))
		data = append(data, s.reg.rts[id].name[:]...)
	}
	s.sendPayload(msgGetRTLabels, data)
}

// parseListRequest decodes the common [start(u8), count(u8)] (0/1/2 byte)
// payload shared by GET_VAR_LIST and GET_RT_LABELS, and returns the
// actual (start, emittedCount) to use, clamped to what MaxPayload and
// availability allow. 0xFF for the requested count means "all".
func (s *Scope) parseListRequest(t messageType, payload []byte, available int) (start uint8, count uint8, ok bool) {
	if len(payload) > 2 {
		s.sendError(StatusBadLen)
		return 0, 0, false
	}

	requested := uint16(0xFF)
	if len(payload) >= 1 {
		start = payload[0]
	}
	if len(payload) >= 2 {
		requested = uint16(payload[1])
	}

	if int(start) > available {
		log.Printf("rejected %v: %v", t, spew.Sdump(start, available))
		s.sendError(StatusBadParam)
		return 0, 0, false
	}

	const entrySize = 1 + NameLen
	maxEntries := (MaxPayload - 3) / entrySize
	avail := available - int(start)
	desired := avail
	if requested != 0xFF {
		desired = int(requested)
	}

	n := minInt(desired, minInt(avail, maxEntries))
	return start, uint8(n), true
}

func (s *Scope) handleGetChannelLabels() {
	data := make([]byte, NumChannels*NameLen)
	for i := 0; i < NumChannels; i++ {
		id := s.channelMap[i].Load()
		dest := data[i*NameLen : (i+1)*NameLen]
		if int(id) < int(s.reg.varCount) {
			copy(dest, s.reg.vars[id].name[:])
		}
	}
	s.sendPayload(msgGetChannelLabels, data)
}

func (s *Scope) handleSetChannelMap(payload []byte) {
	if !s.expectLen(msgSetChannelMap, payload, NumChannels) {
		return
	}
	var ids [NumChannels]uint8
	copy(ids[:], payload)
	if !s.SetChannelMap(ids) {
		log.Printf("rejected SET_CHANNEL_MAP: %v", spew.Sdump(ids))
		s.sendError(StatusBadParam)
		return
	}
	s.sendPayload(msgSetChannelMap, channelMapBytes(s.GetChannelMap()))
}

func (s *Scope) handleGetRTBuffer(payload []byte) {
	if !s.expectLen(msgGetRTBuffer, payload, 1) {
		return
	}
	idx := payload[0]
	if int(idx) >= int(s.reg.rtCount) {
		s.sendError(StatusRange)
		return
	}
	s.sendRTBufferValue(msgGetRTBuffer, idx)
}

func (s *Scope) sendRTBufferValue(t messageType, idx uint8) {
	data := make([]byte, 4)
	writeF32(data, s.GetRTBuffer(idx))
	s.sendPayload(t, data)
}

func (s *Scope) handleSetRTBuffer(payload []byte) {
	if !s.expectLen(msgSetRTBuffer, payload, 5) {
		return
	}
	idx := payload[0]
	if int(idx) >= int(s.reg.rtCount) {
		s.sendError(StatusRange)
		return
	}
	s.SetRTBuffer(idx, readF32(payload[1:]))
	s.sendRTBufferValue(msgSetRTBuffer, idx)
}

func (s *Scope) sendTrigger(t messageType) {
	data := make([]byte, 6)
	writeF32(data[0:], math.Float32frombits(s.triggerThreshold.Load()))
	data[4] = byte(s.triggerChannel.Load())
	data[5] = byte(s.triggerMode.Load())
	s.sendPayload(t, data)
}

func (s *Scope) handleSetTrigger(payload []byte) {
	if !s.expectLen(msgSetTrigger, payload, 6) {
		return
	}
	threshold := readF32(payload[0:])
	channel := payload[4]
	mode := payload[5]

	if int(channel) >= NumChannels || mode > byte(TriggerBoth) {
		log.Printf("rejected SET_TRIGGER: %v", spew.Sdump(channel, mode))
		s.sendError(StatusBadParam)
		return
	}

	s.triggerThreshold.Store(math.Float32bits(threshold))
	s.triggerChannel.Store(uint32(channel))
	s.triggerMode.Store(uint32(mode))
	s.triggerInvalid.Store(true)
	s.sendTrigger(msgSetTrigger)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
