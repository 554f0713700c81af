package vscope

import "math"

// captureSnapshot freezes divider/pre_trig/channel map/trigger config and
// the current RT-buffer values. Called once, at the RUNNING->ACQUIRING
// transition (including the acq_time==0 immediate-completion case).
// snapshotValid itself is set by the caller once capture is known complete.
func (s *Scope) captureSnapshot() {
	snap := &s.snapshot
	snap.divider = s.divider.Load()
	snap.preTrig = s.preTrig.Load()
	for i := 0; i < NumChannels; i++ {
		snap.channelMap[i] = uint8(s.channelMap[i].Load())
	}
	snap.triggerThreshold = math.Float32frombits(s.triggerThreshold.Load())
	snap.triggerChannel = uint8(s.triggerChannel.Load())
	snap.triggerMode = uint8(s.triggerMode.Load())

	snap.rtCount = s.reg.rtCount
	for i := uint8(0); i < snap.rtCount; i++ {
		snap.rtValues[i] = *s.reg.rts[i].ref
	}
}
