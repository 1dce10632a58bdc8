// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/eegmidi/eeglink/safespi"
)

// State is the device controller state. Transitions only happen through the
// Dev methods; operations that are illegal in the current state are rejected
// before any bus traffic.
type State int

const (
	StateUninitialized State = iota
	StateReset
	StateIdle
	StateConfigured
	StateContinuous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReset:
		return "Reset"
	case StateIdle:
		return "Idle"
	case StateConfigured:
		return "Configured"
	case StateContinuous:
		return "Continuous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Pins are the control lines of the device besides the SPI bus itself.
// PowerDown may be nil when the PWDN pin is strapped high in hardware.
type Pins struct {
	ChipSelect gpio.PinOut
	Start      gpio.PinOut
	Reset      gpio.PinOut
	PowerDown  gpio.PinOut
	DataReady  gpio.PinIO // active low
}

// Opts holds the bus timing parameters.
type Opts struct {
	// Frequency is the SPI clock frequency.
	Frequency physic.Frequency
	// Settle is the post-command decode time enforced between bus
	// transactions.
	Settle time.Duration
}

// DefaultOpts matches the device's datasheet timing at the standard
// 2.048 MHz master clock.
var DefaultOpts = Opts{
	Frequency: 2 * physic.MegaHertz,
	Settle:    3 * time.Microsecond,
}

const (
	statusBytes     = 3
	bytesPerChannel = 3

	powerSettle    = 5 * time.Millisecond
	resetPulseLow  = 10 * time.Microsecond
	resetPulseHigh = 20 * time.Microsecond
	resetDecode    = 20 * time.Microsecond
	readyPoll      = 100 * time.Microsecond
)

// Dev drives one ADS1299 analog front end.
//
// Dev is not safe for concurrent use: acquisition is a single cooperative
// loop and register mutation is excluded from continuous mode by the state
// machine, not by locking.
type Dev struct {
	c        conn.Conn
	pins     Pins
	state    State
	channels int
	rev      byte
}

// New brings up the device on the given SPI port: pin initialization, power
// settle, hardware reset pulse, a known command state (STOP + SDATAC), then
// identity validation. The channel count is taken from the identity
// register. A device that does not identify as an ADS1299 is a fatal
// bring-up error.
func New(p spi.Port, pins Pins, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := pins.Start.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("ads1299: start pin: %w", err)
	}
	if err := pins.Reset.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("ads1299: reset pin: %w", err)
	}
	if pins.PowerDown != nil {
		if err := pins.PowerDown.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("ads1299: pwdn pin: %w", err)
		}
	}
	if err := pins.DataReady.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("ads1299: drdy pin: %w", err)
	}
	c, err := safespi.New(p, pins.ChipSelect, &safespi.Opts{
		Frequency: opts.Frequency,
		Mode:      spi.Mode1,
		Settle:    opts.Settle,
	})
	if err != nil {
		return nil, fmt.Errorf("ads1299: %w", err)
	}
	d := &Dev{c: c, pins: pins, state: StateUninitialized, channels: 4}
	if err := d.bringup(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) bringup() error {
	time.Sleep(powerSettle)

	if err := d.resetPulse(); err != nil {
		return err
	}
	if err := d.command(cmdReset); err != nil {
		return err
	}
	// The reset command needs 18 tCLK before the next command, longer
	// than the regular decode window.
	time.Sleep(resetDecode)
	d.state = StateReset

	if err := d.command(cmdStop); err != nil {
		return err
	}
	if err := d.command(cmdSDATAC); err != nil {
		return err
	}

	id, err := d.readReg(RegID)
	if err != nil {
		return fmt.Errorf("ads1299: reading identity: %w", err)
	}
	if !DeviceFamily(id) {
		return &IdentityError{ID: id}
	}
	d.channels = ChannelCount(id)
	d.rev = Revision(id)
	d.state = StateIdle
	return nil
}

func (d *Dev) resetPulse() error {
	if err := d.pins.Reset.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(resetPulseLow)
	if err := d.pins.Reset.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(resetPulseHigh)
	return nil
}

// command sends a single-byte opcode. The settle delay after the transfer
// comes from the guarded connection.
func (d *Dev) command(op byte) error {
	return d.c.Tx([]byte{op}, nil)
}

func (d *Dev) String() string {
	return fmt.Sprintf("ADS1299{rev:%d channels:%d state:%s}", d.rev, d.channels, d.state)
}

// ChannelCount returns the channel count detected at bring-up.
func (d *Dev) ChannelCount() int {
	return d.channels
}

// Revision returns the silicon revision read at bring-up.
func (d *Dev) Revision() byte {
	return d.rev
}

// State returns the controller state.
func (d *Dev) State() State {
	return d.state
}

// FrameBytes returns the length of one raw acquisition transfer: 3 status
// bytes plus 3 bytes per active channel.
func (d *Dev) FrameBytes() int {
	return statusBytes + bytesPerChannel*d.channels
}

// Configure writes a full configuration snapshot. Channel-setting registers
// are written only up to the detected channel count; the remaining slots
// are powered down explicitly. Per-channel bitmasks are clipped to the
// active channels. Only legal outside continuous mode.
func (d *Dev) Configure(cfg *Config) error {
	if d.state != StateIdle && d.state != StateConfigured {
		return &StateError{Op: "configure", State: d.state}
	}

	if err := d.writeReg(RegConfig1, PackConfig1(false, cfg.ClockOut, cfg.DataRate)); err != nil {
		return err
	}
	if err := d.writeReg(RegConfig2, PackConfig2(cfg.CalInternal, cfg.CalDouble, cfg.CalFreq)); err != nil {
		return err
	}
	if err := d.writeReg(RegConfig3, PackConfig3(cfg.Reference)); err != nil {
		return err
	}
	if err := d.writeReg(RegLeadOff, PackLeadOff(cfg.LeadOffComp, cfg.LeadOffCurrent, cfg.LeadOffFreq)); err != nil {
		return err
	}

	for ch := 0; ch < d.channels; ch++ {
		if err := d.writeReg(RegCh1Set+byte(ch), PackChannel(cfg.Channels[ch])); err != nil {
			return err
		}
	}
	for ch := d.channels; ch < MaxChannels; ch++ {
		if err := d.writeReg(RegCh1Set+byte(ch), PackChannel(Channel{PowerDown: true, Mux: MuxShorted})); err != nil {
			return err
		}
	}

	if err := d.writeReg(RegBiasSensP, ClipMask(cfg.BiasSenseP, d.channels)); err != nil {
		return err
	}
	if err := d.writeReg(RegBiasSensN, ClipMask(cfg.BiasSenseN, d.channels)); err != nil {
		return err
	}
	if err := d.writeReg(RegLeadOffSensP, ClipMask(cfg.LeadOffSenseP, d.channels)); err != nil {
		return err
	}
	if err := d.writeReg(RegLeadOffSensN, ClipMask(cfg.LeadOffSenseN, d.channels)); err != nil {
		return err
	}
	if err := d.writeReg(RegLeadOffFlip, ClipMask(cfg.LeadOffFlip, d.channels)); err != nil {
		return err
	}
	if err := d.writeReg(RegGPIO, PackGPIO(cfg.GPIOData, cfg.GPIODir)); err != nil {
		return err
	}
	if err := d.writeReg(RegMisc1, PackMisc1(cfg.SRB1)); err != nil {
		return err
	}
	if err := d.writeReg(RegConfig4, PackConfig4(cfg.SingleShot, cfg.LeadOffComparators)); err != nil {
		return err
	}

	d.state = StateConfigured
	return nil
}

// StartContinuous raises START and enters continuous acquisition. Register
// access is rejected until StopContinuous.
func (d *Dev) StartContinuous() error {
	if d.state != StateConfigured {
		return &StateError{Op: "start continuous", State: d.state}
	}
	if err := d.command(cmdStart); err != nil {
		return err
	}
	if err := d.command(cmdRDATAC); err != nil {
		return err
	}
	d.state = StateContinuous
	return nil
}

// StopContinuous leaves continuous acquisition and stops conversions,
// returning to Configured.
func (d *Dev) StopContinuous() error {
	if d.state != StateContinuous {
		return &StateError{Op: "stop continuous", State: d.state}
	}
	if err := d.command(cmdSDATAC); err != nil {
		return err
	}
	if err := d.command(cmdStop); err != nil {
		return err
	}
	d.state = StateConfigured
	return nil
}

// WaitReady blocks until the data-ready line goes active (low) or the
// timeout elapses. The line is polled; one conversion period at 250 SPS is
// 4 ms, far above the poll interval.
func (d *Dev) WaitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for d.pins.DataReady.Read() == gpio.High {
		if time.Now().After(deadline) {
			return fmt.Errorf("ads1299: data ready timeout after %s", timeout)
		}
		time.Sleep(readyPoll)
	}
	return nil
}

// ReadFrame performs one fixed-length acquisition transfer in continuous
// mode: the status word plus one 24-bit sample per active channel,
// sign-extended to int32. If the status sync pattern does not match, the
// decoded frame is returned together with ErrSync and the caller decides
// whether to drop it or abort the stream.
func (d *Dev) ReadFrame() (Status, []int32, error) {
	if d.state != StateContinuous {
		return 0, nil, &StateError{Op: "read frame", State: d.state}
	}
	return d.transferFrame()
}

// ReadOnDemand issues a single read-data command and transfers one frame.
// Legal in Configured (conversions running but not in continuous read
// mode when START is held; used for spot checks during setup).
func (d *Dev) ReadOnDemand() (Status, []int32, error) {
	if d.state != StateConfigured {
		return 0, nil, &StateError{Op: "read on demand", State: d.state}
	}
	if err := d.command(cmdRDATA); err != nil {
		return 0, nil, err
	}
	return d.transferFrame()
}

func (d *Dev) transferFrame() (Status, []int32, error) {
	n := d.FrameBytes()
	w := make([]byte, n)
	r := make([]byte, n)
	if err := d.c.Tx(w, r); err != nil {
		return 0, nil, err
	}

	status := NewStatus(r[:statusBytes])
	samples := make([]int32, d.channels)
	for i := 0; i < d.channels; i++ {
		off := statusBytes + bytesPerChannel*i
		samples[i] = Int24(r[off : off+bytesPerChannel])
	}
	if !status.Valid() {
		return status, samples, ErrSync
	}
	return status, samples, nil
}

// Standby puts the device in low-power standby. Legal outside continuous
// mode.
func (d *Dev) Standby() error {
	if d.state == StateContinuous {
		return &StateError{Op: "standby", State: d.state}
	}
	return d.command(cmdStandby)
}

// Wakeup leaves standby.
func (d *Dev) Wakeup() error {
	if d.state == StateContinuous {
		return &StateError{Op: "wakeup", State: d.state}
	}
	return d.command(cmdWakeup)
}

// Halt stops acquisition if running and puts the device in standby.
// Implements conn.Resource.
func (d *Dev) Halt() error {
	if d.state == StateContinuous {
		if err := d.StopContinuous(); err != nil {
			return err
		}
	}
	return d.Standby()
}

var _ conn.Resource = &Dev{}
