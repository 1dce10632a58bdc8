// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

// Config is a full register snapshot describing one operating mode. It is
// applied register by register in Configure and only ever revised outside
// continuous mode.
//
// The per-channel bitmask fields (BiasSense*, LeadOffSense*, LeadOffFlip)
// use bit 0 for channel 1; bits beyond the detected channel count are
// clipped when the snapshot is applied. Daisy-chain mode is packable in the
// register model but never enabled by the controller; this driver addresses
// a single device.
type Config struct {
	DataRate DataRate
	ClockOut bool // copy the internal clock to the CLK pin

	// Calibration signal (CONFIG2).
	CalInternal bool // inject the internal calibration signal
	CalDouble   bool // double calibration signal amplitude
	CalFreq     CalFreq

	// Reference and bias routing (CONFIG3).
	Reference Config3

	// Lead-off excitation (LOFF).
	LeadOffComp    LeadOffComp
	LeadOffCurrent LeadOffCurrent
	LeadOffFreq    LeadOffFreq

	// Channels holds one setting per physical channel slot. Only the
	// first ChannelCount entries are applied; higher slots are powered
	// down regardless of their value here.
	Channels [MaxChannels]Channel

	BiasSenseP    byte
	BiasSenseN    byte
	LeadOffSenseP byte
	LeadOffSenseN byte
	LeadOffFlip   byte

	GPIOData byte // output levels for pins configured as outputs
	GPIODir  byte // 1 = input

	SRB1               bool // route SRB1 to all negative inputs
	SingleShot         bool // single-shot conversions instead of continuous
	LeadOffComparators bool // power the lead-off comparators
}

// DefaultConfig is the standard EEG acquisition mode: 250 SPS, internal
// reference, every active channel at gain 24 on the normal differential
// input, lead-off detection at 24 nA / 31.2 Hz with an 80% threshold, GPIO
// pins as inputs.
func DefaultConfig() *Config {
	cfg := &Config{
		DataRate: DR250,
		Reference: Config3{
			RefBuffer:  true,
			BiasRefInt: true,
		},
		LeadOffComp:        Comp80,
		LeadOffCurrent:     Current24nA,
		LeadOffFreq:        Freq31Hz2,
		LeadOffSenseP:      0xFF,
		LeadOffSenseN:      0xFF,
		GPIODir:            0x0F,
		LeadOffComparators: true,
	}
	for i := range cfg.Channels {
		cfg.Channels[i] = Channel{Gain: Gain24, Mux: MuxNormal}
	}
	return cfg
}
