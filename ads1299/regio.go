// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import "fmt"

// readReg and writeReg issue the raw register transactions. They are used
// by bring-up before the device reaches Idle; everything above them goes
// through the state-checked public methods.

func (d *Dev) readReg(addr byte) (byte, error) {
	w := []byte{cmdRREG | addr, 0x00, 0x00}
	r := make([]byte, len(w))
	if err := d.c.Tx(w, r); err != nil {
		return 0, err
	}
	return r[2], nil
}

func (d *Dev) writeReg(addr, value byte) error {
	return d.c.Tx([]byte{cmdWREG | addr, 0x00, value}, nil)
}

func (d *Dev) checkRead(op string, addr byte, n int) error {
	if d.state == StateContinuous || d.state == StateUninitialized {
		return &StateError{Op: op, State: d.state}
	}
	if int(addr)+n > NumRegisters {
		return &AddressError{Addr: addr}
	}
	return nil
}

func (d *Dev) checkWrite(op string, addr byte, n int) error {
	if d.state != StateIdle && d.state != StateConfigured {
		return &StateError{Op: op, State: d.state}
	}
	if int(addr)+n > NumRegisters {
		return &AddressError{Addr: addr}
	}
	return nil
}

// ReadRegister reads one register. Rejected in continuous mode without any
// bus transaction; leave continuous mode first.
func (d *Dev) ReadRegister(addr byte) (byte, error) {
	if err := d.checkRead("register read", addr, 1); err != nil {
		return 0, err
	}
	return d.readReg(addr)
}

// WriteRegister writes one register. Rejected in continuous mode without
// any bus transaction.
func (d *Dev) WriteRegister(addr, value byte) error {
	if err := d.checkWrite("register write", addr, 1); err != nil {
		return err
	}
	return d.writeReg(addr, value)
}

// ReadRegisters reads n consecutive registers starting at addr in one burst
// transaction.
func (d *Dev) ReadRegisters(addr byte, n int) ([]byte, error) {
	if n < 1 {
		return nil, fmt.Errorf("ads1299: burst length %d", n)
	}
	if err := d.checkRead("register burst read", addr, n); err != nil {
		return nil, err
	}
	w := make([]byte, 2+n)
	w[0] = cmdRREG | addr
	w[1] = byte(n - 1)
	r := make([]byte, len(w))
	if err := d.c.Tx(w, r); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r[2:])
	return out, nil
}

// WriteRegisters writes len(values) consecutive registers starting at addr
// in one burst transaction, in address order.
func (d *Dev) WriteRegisters(addr byte, values []byte) error {
	if len(values) < 1 {
		return fmt.Errorf("ads1299: burst length %d", len(values))
	}
	if err := d.checkWrite("register burst write", addr, len(values)); err != nil {
		return err
	}
	w := make([]byte, 2+len(values))
	w[0] = cmdWREG | addr
	w[1] = byte(len(values) - 1)
	copy(w[2:], values)
	return d.c.Tx(w, nil)
}

// updateReg read-modify-writes a register through the state-checked path.
func (d *Dev) updateReg(addr byte, f func(byte) byte) error {
	v, err := d.ReadRegister(addr)
	if err != nil {
		return err
	}
	return d.WriteRegister(addr, f(v))
}

func (d *Dev) channelReg(ch int) (byte, error) {
	if ch < 1 || ch > d.channels {
		return 0, fmt.Errorf("ads1299: channel %d out of range 1..%d", ch, d.channels)
	}
	return RegCh1Set + byte(ch-1), nil
}

// SetDataRate changes the CONFIG1 data-rate field, leaving the other bits
// untouched.
func (d *Dev) SetDataRate(dr DataRate) error {
	return d.updateReg(RegConfig1, func(v byte) byte {
		daisy, clkOut, _ := UnpackConfig1(v)
		return PackConfig1(daisy, clkOut, dr)
	})
}

// SetChannel overwrites one channel-setting register. Channels are numbered
// from 1.
func (d *Dev) SetChannel(ch int, c Channel) error {
	addr, err := d.channelReg(ch)
	if err != nil {
		return err
	}
	return d.WriteRegister(addr, PackChannel(c))
}

// SetChannelGain changes one channel's gain selector.
func (d *Dev) SetChannelGain(ch int, g Gain) error {
	addr, err := d.channelReg(ch)
	if err != nil {
		return err
	}
	return d.updateReg(addr, func(v byte) byte {
		c := UnpackChannel(v)
		c.Gain = g
		return PackChannel(c)
	})
}

// SetChannelMux changes one channel's input multiplexer mode.
func (d *Dev) SetChannelMux(ch int, m Mux) error {
	addr, err := d.channelReg(ch)
	if err != nil {
		return err
	}
	return d.updateReg(addr, func(v byte) byte {
		c := UnpackChannel(v)
		c.Mux = m
		return PackChannel(c)
	})
}

// SetSRB2 routes or unroutes the SRB2 pin on one channel.
func (d *Dev) SetSRB2(ch int, en bool) error {
	addr, err := d.channelReg(ch)
	if err != nil {
		return err
	}
	return d.updateReg(addr, func(v byte) byte {
		c := UnpackChannel(v)
		c.SRB2 = en
		return PackChannel(c)
	})
}

// PowerDownChannel powers one channel down or up without touching its other
// settings.
func (d *Dev) PowerDownChannel(ch int, down bool) error {
	addr, err := d.channelReg(ch)
	if err != nil {
		return err
	}
	return d.updateReg(addr, func(v byte) byte {
		c := UnpackChannel(v)
		c.PowerDown = down
		return PackChannel(c)
	})
}

// EnableSRB1 routes the SRB1 pin to all negative inputs.
func (d *Dev) EnableSRB1(en bool) error {
	return d.WriteRegister(RegMisc1, PackMisc1(en))
}

// EnableBiasBuffer powers the bias amplifier.
func (d *Dev) EnableBiasBuffer(en bool) error {
	return d.updateReg(RegConfig3, func(v byte) byte {
		c := UnpackConfig3(v)
		c.BiasBuffer = en
		return PackConfig3(c)
	})
}

// SetBiasDerivation programs which channels contribute to the bias
// derivation, per polarity. Masks are clipped to the active channels.
func (d *Dev) SetBiasDerivation(maskP, maskN byte) error {
	if err := d.WriteRegister(RegBiasSensP, ClipMask(maskP, d.channels)); err != nil {
		return err
	}
	return d.WriteRegister(RegBiasSensN, ClipMask(maskN, d.channels))
}

// EnableLeadOffSense programs the lead-off sense enables, per polarity.
// Masks are clipped to the active channels.
func (d *Dev) EnableLeadOffSense(maskP, maskN byte) error {
	if err := d.WriteRegister(RegLeadOffSensP, ClipMask(maskP, d.channels)); err != nil {
		return err
	}
	return d.WriteRegister(RegLeadOffSensN, ClipMask(maskN, d.channels))
}

// SetLeadOffFlip flips the lead-off current direction on the masked
// channels.
func (d *Dev) SetLeadOffFlip(mask byte) error {
	return d.WriteRegister(RegLeadOffFlip, ClipMask(mask, d.channels))
}

// ReadLeadOffStatus reads the two read-only lead-off status registers in
// one burst. Bit 0 is channel 1; a set bit means the electrode is off.
func (d *Dev) ReadLeadOffStatus() (statP, statN byte, err error) {
	r, err := d.ReadRegisters(RegLeadOffStatP, 2)
	if err != nil {
		return 0, 0, err
	}
	return r[0], r[1], nil
}
