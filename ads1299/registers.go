// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

// Register addresses (datasheet section 9.6).
const (
	RegID        byte = 0x00 // device identity (read-only)
	RegConfig1   byte = 0x01 // data rate, daisy-chain, clock output
	RegConfig2   byte = 0x02 // calibration signal
	RegConfig3   byte = 0x03 // reference buffer, bias amplifier
	RegLeadOff   byte = 0x04 // lead-off comparator threshold/current/frequency
	RegCh1Set    byte = 0x05 // channel settings, one register per channel
	RegCh2Set    byte = 0x06
	RegCh3Set    byte = 0x07
	RegCh4Set    byte = 0x08
	RegCh5Set    byte = 0x09
	RegCh6Set    byte = 0x0A
	RegCh7Set    byte = 0x0B
	RegCh8Set    byte = 0x0C
	RegBiasSensP byte = 0x0D // bias derivation, positive inputs
	RegBiasSensN byte = 0x0E // bias derivation, negative inputs
	RegLeadOffSensP byte = 0x0F // lead-off sense enable, positive inputs
	RegLeadOffSensN byte = 0x10 // lead-off sense enable, negative inputs
	RegLeadOffFlip  byte = 0x11 // lead-off current direction flip
	RegLeadOffStatP byte = 0x12 // lead-off status, positive inputs (read-only)
	RegLeadOffStatN byte = 0x13 // lead-off status, negative inputs (read-only)
	RegGPIO      byte = 0x14 // auxiliary digital I/O
	RegMisc1     byte = 0x15 // SRB1 routing
	RegMisc2     byte = 0x16 // reserved
	RegConfig4   byte = 0x17 // conversion mode, lead-off comparator power

	// NumRegisters is the size of the register address space.
	NumRegisters = 0x18

	// MaxChannels is the channel count of the largest family member.
	MaxChannels = 8
)

// DataRate selects the output data rate (CONFIG1 bits [2:0]).
type DataRate byte

const (
	DR16000 DataRate = 0b000 // 16 kSPS
	DR8000  DataRate = 0b001
	DR4000  DataRate = 0b010
	DR2000  DataRate = 0b011
	DR1000  DataRate = 0b100
	DR500   DataRate = 0b101
	DR250   DataRate = 0b110 // 250 SPS, the default for EEG work
)

// Gain selects the programmable gain of a channel (CHnSET bits [6:4]).
type Gain byte

const (
	Gain1  Gain = 0b000
	Gain2  Gain = 0b001
	Gain4  Gain = 0b010
	Gain6  Gain = 0b011
	Gain8  Gain = 0b100
	Gain12 Gain = 0b101
	Gain24 Gain = 0b110
)

// Mux selects the input multiplexer mode of a channel (CHnSET bits [2:0]).
type Mux byte

const (
	MuxNormal      Mux = 0b000 // normal differential input
	MuxShorted     Mux = 0b001 // inputs shorted, for noise measurement
	MuxBiasMeasure Mux = 0b010 // BIASIN against BIASREF
	MuxSupply      Mux = 0b011 // supply measurement
	MuxTemperature Mux = 0b100 // internal temperature sensor
	MuxTestSignal  Mux = 0b101 // calibration signal per CONFIG2
	MuxBiasDriveP  Mux = 0b110 // bias drive on positive input
	MuxBiasDriveN  Mux = 0b111 // bias drive on negative input
)

// LeadOffComp selects the lead-off comparator threshold (LOFF bits [7:5]),
// as a percentage of the supply.
type LeadOffComp byte

const (
	Comp95 LeadOffComp = 0b000
	Comp90 LeadOffComp = 0b001
	Comp85 LeadOffComp = 0b010
	Comp80 LeadOffComp = 0b011
	Comp75 LeadOffComp = 0b100
)

// LeadOffCurrent selects the lead-off excitation current (LOFF bits [3:2]).
type LeadOffCurrent byte

const (
	Current6nA  LeadOffCurrent = 0b00
	Current24nA LeadOffCurrent = 0b01
	Current6uA  LeadOffCurrent = 0b10
	Current24uA LeadOffCurrent = 0b11
)

// LeadOffFreq selects the lead-off excitation frequency (LOFF bits [1:0]).
type LeadOffFreq byte

const (
	FreqDC    LeadOffFreq = 0b00
	Freq7Hz8  LeadOffFreq = 0b01
	Freq31Hz2 LeadOffFreq = 0b10
	FreqDR4   LeadOffFreq = 0b11 // data rate / 4
)

// CalFreq selects the calibration signal frequency (CONFIG2 bits [1:0]).
type CalFreq byte

const (
	CalSlow CalFreq = 0b00 // fCLK / 2^21, roughly 1 Hz
	CalFast CalFreq = 0b01 // fCLK / 2^20
	CalDC   CalFreq = 0b11 // DC level
)

const (
	cfg1Fixed   byte = 0x80
	cfg1Daisy   byte = 0x40
	cfg1ClkOut  byte = 0x20
	cfg2Fixed   byte = 0xC0
	cfg2IntCal  byte = 0x10
	cfg2Amp2x   byte = 0x04
	cfg3RefBuf  byte = 0x80
	cfg3BiasMeasure byte = 0x10
	cfg3BiasRefInt  byte = 0x08
	cfg3BiasBuf byte = 0x04
	cfg3BiasSense   byte = 0x02
	chPowerDown byte = 0x80
	chSRB2      byte = 0x08
	misc1SRB1   byte = 0x20
	cfg4SingleShot   byte = 0x08
	cfg4LeadOffPower byte = 0x02
)

// PackConfig1 builds the CONFIG1 register byte from daisy-chain enable,
// clock-output enable and the data rate selector.
func PackConfig1(daisy, clkOut bool, dr DataRate) byte {
	b := cfg1Fixed | byte(dr)&0x07
	if daisy {
		b |= cfg1Daisy
	}
	if clkOut {
		b |= cfg1ClkOut
	}
	return b
}

// UnpackConfig1 recovers the CONFIG1 fields.
func UnpackConfig1(b byte) (daisy, clkOut bool, dr DataRate) {
	return b&cfg1Daisy != 0, b&cfg1ClkOut != 0, DataRate(b & 0x07)
}

// PackConfig2 builds the CONFIG2 register byte. intCal routes the internal
// calibration signal to the selected channels, amp2x doubles its amplitude.
func PackConfig2(intCal, amp2x bool, freq CalFreq) byte {
	b := cfg2Fixed | byte(freq)&0x03
	if intCal {
		b |= cfg2IntCal
	}
	if amp2x {
		b |= cfg2Amp2x
	}
	return b
}

// UnpackConfig2 recovers the CONFIG2 fields.
func UnpackConfig2(b byte) (intCal, amp2x bool, freq CalFreq) {
	return b&cfg2IntCal != 0, b&cfg2Amp2x != 0, CalFreq(b & 0x03)
}

// Config3 holds the reference and bias fields of the CONFIG3 register.
type Config3 struct {
	RefBuffer   bool // power up the internal reference buffer
	BiasMeasure bool // route BIASIN for measurement
	BiasRefInt  bool // derive the bias reference internally
	BiasBuffer  bool // power up the bias amplifier
	BiasSense   bool // sense lead-off through the bias path
}

// PackConfig3 builds the CONFIG3 register byte.
func PackConfig3(c Config3) byte {
	var b byte
	if c.RefBuffer {
		b |= cfg3RefBuf
	}
	if c.BiasMeasure {
		b |= cfg3BiasMeasure
	}
	if c.BiasRefInt {
		b |= cfg3BiasRefInt
	}
	if c.BiasBuffer {
		b |= cfg3BiasBuf
	}
	if c.BiasSense {
		b |= cfg3BiasSense
	}
	return b
}

// UnpackConfig3 recovers the CONFIG3 fields. The low bit (bias lead-off
// status) is read-only and not part of the packed representation.
func UnpackConfig3(b byte) Config3 {
	return Config3{
		RefBuffer:   b&cfg3RefBuf != 0,
		BiasMeasure: b&cfg3BiasMeasure != 0,
		BiasRefInt:  b&cfg3BiasRefInt != 0,
		BiasBuffer:  b&cfg3BiasBuf != 0,
		BiasSense:   b&cfg3BiasSense != 0,
	}
}

// PackLeadOff builds the LOFF register byte.
func PackLeadOff(comp LeadOffComp, current LeadOffCurrent, freq LeadOffFreq) byte {
	return byte(comp)<<5 | byte(current)<<2 | byte(freq)&0x03
}

// UnpackLeadOff recovers the LOFF fields.
func UnpackLeadOff(b byte) (LeadOffComp, LeadOffCurrent, LeadOffFreq) {
	return LeadOffComp(b >> 5), LeadOffCurrent(b >> 2 & 0x03), LeadOffFreq(b & 0x03)
}

// Channel is the decoded view of one CHnSET register.
type Channel struct {
	PowerDown bool
	Gain      Gain
	Mux       Mux
	SRB2      bool // route the SRB2 pin to this channel's negative input
}

// PackChannel builds a CHnSET register byte.
func PackChannel(c Channel) byte {
	b := (byte(c.Gain)&0x07)<<4 | byte(c.Mux)&0x07
	if c.PowerDown {
		b |= chPowerDown
	}
	if c.SRB2 {
		b |= chSRB2
	}
	return b
}

// UnpackChannel recovers the CHnSET fields.
func UnpackChannel(b byte) Channel {
	return Channel{
		PowerDown: b&chPowerDown != 0,
		Gain:      Gain(b >> 4 & 0x07),
		Mux:       Mux(b & 0x07),
		SRB2:      b&chSRB2 != 0,
	}
}

// PackGPIO builds the GPIO register byte from 4 bits of pin data and 4
// direction bits (1 = input).
func PackGPIO(data, dir byte) byte {
	return (data&0x0F)<<4 | dir&0x0F
}

// UnpackGPIO recovers the GPIO fields.
func UnpackGPIO(b byte) (data, dir byte) {
	return b >> 4, b & 0x0F
}

// PackMisc1 builds the MISC1 register byte. srb1 routes the SRB1 pin to all
// negative inputs.
func PackMisc1(srb1 bool) byte {
	if srb1 {
		return misc1SRB1
	}
	return 0
}

// UnpackMisc1 recovers the MISC1 SRB1 flag.
func UnpackMisc1(b byte) bool {
	return b&misc1SRB1 != 0
}

// PackConfig4 builds the CONFIG4 register byte. singleShot selects
// single-shot conversion; leadOffComp powers the lead-off comparators
// (the register bit is a power-down flag, hence the inversion).
func PackConfig4(singleShot, leadOffComp bool) byte {
	var b byte
	if singleShot {
		b |= cfg4SingleShot
	}
	if !leadOffComp {
		b |= cfg4LeadOffPower
	}
	return b
}

// UnpackConfig4 recovers the CONFIG4 fields.
func UnpackConfig4(b byte) (singleShot, leadOffComp bool) {
	return b&cfg4SingleShot != 0, b&cfg4LeadOffPower == 0
}

// ClipMask restricts a per-channel bitmask to the lowest channels bits, so
// registers that carry one bit per channel never assert a slot beyond the
// detected channel count.
func ClipMask(mask byte, channels int) byte {
	if channels >= MaxChannels {
		return mask
	}
	if channels <= 0 {
		return 0
	}
	return mask & (1<<uint(channels) - 1)
}

// DeviceFamily reports whether an identity register value carries the
// ADS1299 family bits ([3:2] == 11b).
func DeviceFamily(id byte) bool {
	return id&0x0C == 0x0C
}

// Revision extracts the silicon revision bits from the identity register.
func Revision(id byte) byte {
	return id >> 5
}

// ChannelCount derives the channel count from the identity register's 2-bit
// size field. The reserved value falls back to 4, the smallest family
// member, so per-channel operations never overrun real hardware.
func ChannelCount(id byte) int {
	switch id & 0x03 {
	case 0b00:
		return 4
	case 0b01:
		return 6
	case 0b10:
		return 8
	default:
		return 4
	}
}

// Int24 interprets a 3-byte MSB-first two's-complement value as a signed
// 32-bit integer, extending the sign bit through the upper byte.
func Int24(b []byte) int32 {
	u := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if u&0x800000 != 0 {
		u |= 0xFF000000
	}
	return int32(u)
}
