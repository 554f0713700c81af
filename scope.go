package vscope

import (
	"math"
	"sync/atomic"
)

// snapshotData is the frozen copy of acquisition metadata + RT values
// taken at the moment of trigger. It is owned by the ISR (Tick) context;
// the task context may only read it after observing snapshotValid true.
type snapshotData struct {
	divider          uint32
	preTrig          uint32
	channelMap       [NumChannels]uint8
	triggerThreshold float32
	triggerChannel   uint8
	triggerMode      uint8
	rtValues         [RTBufferLen]float32
	rtCount          uint8
}

// Scope is the singleton-shaped bundle of registries, acquisition state,
// trigger detector, capture buffer and framed-protocol dispatcher that
// make up one VScope instance. One application builds exactly one Scope:
// register variables and RT buffers, call Init, then drive it from an ISR
// (Tick) and a task context (Feed), with the transmit callback given to
// NewScope wired to the transport.
type Scope struct {
	txBytes func([]byte)

	reg registry

	deviceName [NameLen]byte
	isrKHz     uint16

	// State machine, capture buffer and indices: written only by Tick,
	// read by the task context only after observing snapshotValid.
	state  State
	w      int
	f      int
	buffer [BufferSize][NumChannels]float32

	// Configuration cells shared across the ISR boundary: written by the
	// Command Dispatcher (task context), read by Tick. Each is a single
	// atomic cell; readers may observe either the old or new value with
	// at most a one-tick reordering window, per the concurrency model.
	request          atomic.Uint32 // State
	divider          atomic.Uint32
	preTrig          atomic.Uint32
	acqTime          atomic.Uint32
	channelMap       [NumChannels]atomic.Uint32    // catalog index per channel
	framePtr         [NumChannels]atomic.Pointer[float32]
	triggerThreshold atomic.Uint32 // math.Float32bits
	triggerChannel   atomic.Uint32
	triggerMode      atomic.Uint32
	triggerInvalid   atomic.Bool

	// Trigger detector's running state; touched only from Tick.
	lastDelta float32

	// Tick-local counters; touched only from Tick.
	dividerTicks uint32
	runIndex     uint32

	// snapshotValid gates task-context reads of snapshot. It is the one
	// field the task polls before touching anything else ISR-owned.
	snapshotValid atomic.Bool
	snapshot      snapshotData

	rx rxState
}

// NewScope creates a Scope bound to the given transmit callback. txBytes
// is called synchronously, from within Feed, to push one outgoing frame;
// it must not block indefinitely.
func NewScope(txBytes func([]byte)) *Scope {
	s := &Scope{txBytes: txBytes}
	var zero float32
	for i := range s.framePtr {
		s.framePtr[i].Store(&zero)
	}
	s.triggerInvalid.Store(true)
	return s
}

// RegisterVar appends name/ref to the variable catalog. Valid only before
// Init; a no-op afterward, or if the catalog is full, or ref is nil.
func (s *Scope) RegisterVar(name string, ref *float32) {
	s.reg.registerVar(name, ref)
}

// RegisterRTBuffer appends name/ref to the RT-buffer catalog, under the
// same pre-init-only contract as RegisterVar.
func (s *Scope) RegisterRTBuffer(name string, ref *float32) {
	s.reg.registerRTBuffer(name, ref)
}

// Init locks the registries and brings the Scope up in HALTED state (or
// MISCONFIGURED if fewer variables were registered than there are
// acquisition channels). The initial channel map sets map[i] = i for
// i < var_count, else 0.
func (s *Scope) Init(deviceName string, isrKHz uint16) {
	s.reg.lock()

	writeFixedNameBytes(s.deviceName[:], deviceName)
	s.isrKHz = isrKHz

	s.state = Halted
	s.request.Store(uint32(Halted))
	s.divider.Store(1)
	s.preTrig.Store(0)
	s.acqTime.Store(uint32(BufferSize))
	s.w = 0
	s.f = 0
	for i := range s.buffer {
		for c := range s.buffer[i] {
			s.buffer[i][c] = 0
		}
	}

	s.triggerThreshold.Store(math.Float32bits(0))
	s.triggerChannel.Store(0)
	s.triggerMode.Store(uint32(TriggerDisabled))
	s.triggerInvalid.Store(true)
	s.lastDelta = 0
	s.dividerTicks = 0
	s.runIndex = 0
	s.snapshotValid.Store(false)

	if int(s.reg.varCount) < NumChannels {
		s.state = Misconfigured
	}

	for i := 0; i < NumChannels; i++ {
		var idx uint8
		var ptr *float32
		if s.reg.varCount == 0 {
			idx = 0
			ptr = nil
		} else if i < int(s.reg.varCount) {
			idx = uint8(i)
			ptr = s.reg.vars[idx].ref
		} else {
			idx = 0
			ptr = s.reg.vars[0].ref
		}
		s.channelMap[i].Store(uint32(idx))
		if ptr == nil {
			var zero float32
			ptr = &zero
		}
		s.framePtr[i].Store(ptr)
	}

	s.rx.reset()
}

// DeviceName returns the fixed-width device name set at Init.
func (s *Scope) DeviceName() string {
	n := 0
	for n < len(s.deviceName) && s.deviceName[n] != 0 {
		n++
	}
	return string(s.deviceName[:n])
}

// ManualTrigger requests a trigger from either context: a single-word
// write to request, applied only if currently RUNNING. s.state is
// ISR-owned and read here without synchronization; the worst case is
// requesting ACQUIRING a tick early or late, which Tick already
// tolerates per the concurrency model.
func (s *Scope) ManualTrigger() {
	if s.state == Running {
		s.request.Store(uint32(Acquiring))
	}
}

// GetRTBuffer reads RT-buffer entry idx. Returns 0 if idx is out of
// range; callers needing the wire RANGE error should check rtCount
// themselves (the dispatcher does).
func (s *Scope) GetRTBuffer(idx uint8) float32 {
	if int(idx) >= int(s.reg.rtCount) {
		return 0
	}
	return *s.reg.rts[idx].ref
}

// SetRTBuffer writes RT-buffer entry idx. A no-op if idx is out of range.
func (s *Scope) SetRTBuffer(idx uint8, value float32) {
	if int(idx) >= int(s.reg.rtCount) {
		return
	}
	*s.reg.rts[idx].ref = value
}

// GetChannelMap returns the current channel map.
func (s *Scope) GetChannelMap() [NumChannels]uint8 {
	var out [NumChannels]uint8
	for i := range out {
		out[i] = uint8(s.channelMap[i].Load())
	}
	return out
}

// SetChannelMap atomically replaces the channel map and per-channel
// sample pointers. Validation is all-or-nothing: if any id is out of
// range, no entry is changed and BAD_PARAM-worthy false is returned.
func (s *Scope) SetChannelMap(ids [NumChannels]uint8) bool {
	for _, id := range ids {
		if int(id) >= int(s.reg.varCount) {
			return false
		}
	}
	for i, id := range ids {
		s.channelMap[i].Store(uint32(id))
		s.framePtr[i].Store(s.reg.vars[id].ref)
	}
	return true
}
