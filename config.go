package vscope

import (
	"fmt"
	"log"
	"math"

	"github.com/spf13/viper"
)

// timingConfig mirrors the SET_TIMING payload, for persistence under the
// "timing" key.
type timingConfig struct {
	Divider uint32
	PreTrig uint32
}

// triggerConfig mirrors the SET_TRIGGER payload, for persistence under the
// "trigger" key.
type triggerConfig struct {
	Threshold float32
	Channel   uint8
	Mode      uint8
}

// channelMapConfig mirrors SET_CHANNEL_MAP, for persistence under the
// "channels" key.
type channelMapConfig struct {
	Map [NumChannels]uint8
}

// LoadPersistedConfig applies timing/trigger/channel-map settings read from
// v onto a HALTED Scope: unmarshal each key, apply it if it parsed and
// validates, otherwise ignore it and keep the current value. Missing keys
// are not an error: the Scope simply keeps its Init defaults for them.
// Must be called after Init and before any SET_STATE(RUNNING).
func (s *Scope) LoadPersistedConfig(v *viper.Viper) error {
	if s.state != Halted {
		return fmt.Errorf("vscope: LoadPersistedConfig requires HALTED, got %v", s.state)
	}

	var tc timingConfig
	if err := v.UnmarshalKey("timing", &tc); err == nil && v.IsSet("timing") {
		if tc.Divider == 0 || tc.PreTrig > BufferSize {
			log.Printf("vscope: ignoring invalid persisted timing: %+v", tc)
		} else {
			s.divider.Store(tc.Divider)
			s.preTrig.Store(tc.PreTrig)
			s.acqTime.Store(BufferSize - tc.PreTrig)
		}
	}

	var trc triggerConfig
	if err := v.UnmarshalKey("trigger", &trc); err == nil && v.IsSet("trigger") {
		if int(trc.Channel) >= NumChannels || trc.Mode > byte(TriggerBoth) {
			log.Printf("vscope: ignoring invalid persisted trigger: %+v", trc)
		} else {
			s.triggerThreshold.Store(math.Float32bits(trc.Threshold))
			s.triggerChannel.Store(uint32(trc.Channel))
			s.triggerMode.Store(uint32(trc.Mode))
			s.triggerInvalid.Store(true)
		}
	}

	var cmc channelMapConfig
	if err := v.UnmarshalKey("channels", &cmc); err == nil && v.IsSet("channels") {
		if !s.SetChannelMap(cmc.Map) {
			log.Printf("vscope: ignoring invalid persisted channel map: %+v", cmc.Map)
		}
	}

	return nil
}

// SavePersistedConfig is the inverse of LoadPersistedConfig: it snapshots
// the Scope's current timing/trigger/channel-map settings into v under
// the same keys, so the caller can persist it with v.WriteConfig.
func (s *Scope) SavePersistedConfig(v *viper.Viper) {
	v.Set("timing", timingConfig{
		Divider: s.divider.Load(),
		PreTrig: s.preTrig.Load(),
	})
	v.Set("trigger", triggerConfig{
		Threshold: math.Float32frombits(s.triggerThreshold.Load()),
		Channel:   uint8(s.triggerChannel.Load()),
		Mode:      uint8(s.triggerMode.Load()),
	})
	v.Set("channels", channelMapConfig{Map: s.GetChannelMap()})
}
