// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

// bringupOps is the exact bus dialog New performs: reset, stop, leave
// continuous mode, read the identity register.
func bringupOps(id byte) []conntest.IO {
	return []conntest.IO{
		{W: []byte{0x06}},
		{W: []byte{0x0A}},
		{W: []byte{0x11}},
		{W: []byte{0x20, 0x00, 0x00}, R: []byte{0x00, 0x00, id}},
	}
}

// configureOps is the register dialog of Configure(DefaultConfig()) for the
// given active channel count.
func configureOps(channels int) []conntest.IO {
	ops := []conntest.IO{
		{W: []byte{0x41, 0x00, 0x86}}, // CONFIG1: 250 SPS
		{W: []byte{0x42, 0x00, 0xC0}}, // CONFIG2: test signal off
		{W: []byte{0x43, 0x00, 0x88}}, // CONFIG3: internal reference
		{W: []byte{0x44, 0x00, 0x66}}, // LOFF: 80%, 24 nA, 31.2 Hz
	}
	for ch := 0; ch < channels; ch++ {
		ops = append(ops, conntest.IO{W: []byte{0x45 + byte(ch), 0x00, 0x60}})
	}
	for ch := channels; ch < 8; ch++ {
		ops = append(ops, conntest.IO{W: []byte{0x45 + byte(ch), 0x00, 0x81}})
	}
	clip := ClipMask(0xFF, channels)
	ops = append(ops,
		conntest.IO{W: []byte{0x4D, 0x00, 0x00}},  // BIAS_SENSP off
		conntest.IO{W: []byte{0x4E, 0x00, 0x00}},  // BIAS_SENSN off
		conntest.IO{W: []byte{0x4F, 0x00, clip}},  // LOFF_SENSP active channels
		conntest.IO{W: []byte{0x50, 0x00, clip}},  // LOFF_SENSN active channels
		conntest.IO{W: []byte{0x51, 0x00, 0x00}},  // LOFF_FLIP off
		conntest.IO{W: []byte{0x54, 0x00, 0x0F}},  // GPIO all inputs
		conntest.IO{W: []byte{0x55, 0x00, 0x00}},  // MISC1: SRB1 off
		conntest.IO{W: []byte{0x57, 0x00, 0x00}},  // CONFIG4: continuous, comparators on
	)
	return ops
}

func startOps() []conntest.IO {
	return []conntest.IO{{W: []byte{0x08}}, {W: []byte{0x10}}}
}

func testPins() Pins {
	return Pins{
		ChipSelect: &gpiotest.Pin{N: "CS"},
		Start:      &gpiotest.Pin{N: "START"},
		Reset:      &gpiotest.Pin{N: "RESET"},
		PowerDown:  &gpiotest.Pin{N: "PWDN"},
		DataReady:  &gpiotest.Pin{N: "DRDY", L: gpio.Low},
	}
}

func testDev(t *testing.T, ops []conntest.IO) (*Dev, *spitest.Record) {
	t.Helper()
	record := &spitest.Record{
		Port: &spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}},
	}
	d, err := New(record, testPins(), &Opts{Frequency: DefaultOpts.Frequency, Settle: time.Microsecond})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d, record
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		id       byte
		channels int
	}{
		{0x3E, 8},
		{0x3D, 6},
		{0x3C, 4},
		{0x3F, 4}, // reserved size field, conservative default
	} {
		d, _ := testDev(t, bringupOps(tc.id))
		if got := d.ChannelCount(); got != tc.channels {
			t.Errorf("id %#02x: ChannelCount() = %d, want %d", tc.id, got, tc.channels)
		}
		if d.State() != StateIdle {
			t.Errorf("id %#02x: state = %s, want Idle", tc.id, d.State())
		}
		if got, want := d.FrameBytes(), 3+3*tc.channels; got != want {
			t.Errorf("id %#02x: FrameBytes() = %d, want %d", tc.id, got, want)
		}
	}
}

func TestNewBadIdentity(t *testing.T) {
	record := &spitest.Record{
		Port: &spitest.Playback{Playback: conntest.Playback{Ops: bringupOps(0xE5), DontPanic: true}},
	}
	_, err := New(record, testPins(), nil)
	var ierr *IdentityError
	if !errors.As(err, &ierr) {
		t.Fatalf("New() with wrong family = %v, want IdentityError", err)
	}
	if ierr.ID != 0xE5 {
		t.Errorf("IdentityError.ID = %#02x, want 0xE5", ierr.ID)
	}
}

func TestConfigure(t *testing.T) {
	for _, channels := range []int{4, 6, 8} {
		id := map[int]byte{4: 0x3C, 6: 0x3D, 8: 0x3E}[channels]
		ops := append(bringupOps(id), configureOps(channels)...)
		d, record := testDev(t, ops)

		if err := d.Configure(DefaultConfig()); err != nil {
			t.Fatalf("%d channels: Configure() failed: %v", channels, err)
		}
		if d.State() != StateConfigured {
			t.Errorf("%d channels: state = %s, want Configured", channels, d.State())
		}
		if diff := cmp.Diff(record.Ops, ops); diff != "" {
			t.Errorf("%d channels: bus dialog difference (-got +want):\n%s", channels, diff)
		}
	}
}

func TestConfigureIllegalInContinuous(t *testing.T) {
	ops := append(bringupOps(0x3C), configureOps(4)...)
	ops = append(ops, startOps()...)
	d, _ := testDev(t, ops)

	if err := d.Configure(DefaultConfig()); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if err := d.StartContinuous(); err != nil {
		t.Fatalf("StartContinuous() failed: %v", err)
	}

	var serr *StateError
	if err := d.Configure(DefaultConfig()); !errors.As(err, &serr) {
		t.Errorf("Configure() in Continuous = %v, want StateError", err)
	}
}

func TestRegisterWriteRejectedInContinuous(t *testing.T) {
	ops := append(bringupOps(0x3C), configureOps(4)...)
	ops = append(ops, startOps()...)
	d, record := testDev(t, ops)

	if err := d.Configure(DefaultConfig()); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if err := d.StartContinuous(); err != nil {
		t.Fatalf("StartContinuous() failed: %v", err)
	}
	before := len(record.Ops)

	var serr *StateError
	if err := d.WriteRegister(RegConfig1, 0x86); !errors.As(err, &serr) {
		t.Errorf("WriteRegister() in Continuous = %v, want StateError", err)
	}
	if _, err := d.ReadRegister(RegConfig1); !errors.As(err, &serr) {
		t.Errorf("ReadRegister() in Continuous = %v, want StateError", err)
	}
	if len(record.Ops) != before {
		t.Errorf("rejected register access still produced %d bus transaction(s)", len(record.Ops)-before)
	}
}

func TestReadFrame(t *testing.T) {
	good := conntest.IO{
		W: make([]byte, 15),
		R: []byte{
			0xC0, 0x00, 0x0F, // status: sync ok, GPIO 1111
			0x7F, 0xFF, 0xFF,
			0x80, 0x00, 0x00,
			0xFF, 0xFF, 0xFF,
			0x00, 0x00, 0x01,
		},
	}
	badSync := conntest.IO{
		W: make([]byte, 15),
		R: []byte{
			0x40, 0x00, 0x00,
			0x00, 0x00, 0x01,
			0x00, 0x00, 0x02,
			0x00, 0x00, 0x03,
			0x00, 0x00, 0x04,
		},
	}
	ops := append(bringupOps(0x3C), configureOps(4)...)
	ops = append(ops, startOps()...)
	ops = append(ops, good, badSync)
	d, _ := testDev(t, ops)

	if err := d.Configure(DefaultConfig()); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if err := d.StartContinuous(); err != nil {
		t.Fatalf("StartContinuous() failed: %v", err)
	}
	if err := d.WaitReady(time.Second); err != nil {
		t.Fatalf("WaitReady() failed: %v", err)
	}

	status, samples, err := d.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() failed: %v", err)
	}
	if !status.Valid() {
		t.Error("status should be valid")
	}
	if got := status.GPIOBits(); got != 0x0F {
		t.Errorf("GPIOBits() = %#02x, want 0x0F", got)
	}
	if diff := cmp.Diff(samples, []int32{8388607, -8388608, -1, 1}); diff != "" {
		t.Errorf("samples difference (-got +want):\n%s", diff)
	}

	status, samples, err = d.ReadFrame()
	if !errors.Is(err, ErrSync) {
		t.Fatalf("ReadFrame() with bad sync = %v, want ErrSync", err)
	}
	if status.Valid() {
		t.Error("status should be invalid")
	}
	if diff := cmp.Diff(samples, []int32{1, 2, 3, 4}); diff != "" {
		t.Errorf("bad-sync frame still decodes; difference (-got +want):\n%s", diff)
	}
}

func TestReadFrameIllegalInIdle(t *testing.T) {
	d, _ := testDev(t, bringupOps(0x3C))
	var serr *StateError
	if _, _, err := d.ReadFrame(); !errors.As(err, &serr) {
		t.Errorf("ReadFrame() in Idle = %v, want StateError", err)
	}
}

func TestStopContinuous(t *testing.T) {
	ops := append(bringupOps(0x3C), configureOps(4)...)
	ops = append(ops, startOps()...)
	ops = append(ops, conntest.IO{W: []byte{0x11}}, conntest.IO{W: []byte{0x0A}})
	d, _ := testDev(t, ops)

	if err := d.Configure(DefaultConfig()); err != nil {
		t.Fatalf("Configure() failed: %v", err)
	}
	if err := d.StartContinuous(); err != nil {
		t.Fatalf("StartContinuous() failed: %v", err)
	}
	if err := d.StopContinuous(); err != nil {
		t.Fatalf("StopContinuous() failed: %v", err)
	}
	if d.State() != StateConfigured {
		t.Errorf("state = %s, want Configured", d.State())
	}
}

func TestRegisterUpdateHelpers(t *testing.T) {
	ops := append(bringupOps(0x3C),
		// SetChannelGain: read CH1SET, write it back with gain 1.
		conntest.IO{W: []byte{0x25, 0x00, 0x00}, R: []byte{0x00, 0x00, 0x60}},
		conntest.IO{W: []byte{0x45, 0x00, 0x00}},
		// SetDataRate: read CONFIG1, write with DR500.
		conntest.IO{W: []byte{0x21, 0x00, 0x00}, R: []byte{0x00, 0x00, 0x86}},
		conntest.IO{W: []byte{0x41, 0x00, 0x85}},
	)
	d, record := testDev(t, ops)

	if err := d.SetChannelGain(1, Gain1); err != nil {
		t.Fatalf("SetChannelGain() failed: %v", err)
	}
	if err := d.SetDataRate(DR500); err != nil {
		t.Fatalf("SetDataRate() failed: %v", err)
	}
	if diff := cmp.Diff(record.Ops, ops); diff != "" {
		t.Errorf("bus dialog difference (-got +want):\n%s", diff)
	}

	// Channel numbers are bounded by the detected count; no bus traffic
	// for a slot this device does not have.
	before := len(record.Ops)
	if err := d.SetChannelGain(5, Gain1); err == nil {
		t.Error("SetChannelGain(5) on a 4-channel device should fail")
	}
	if len(record.Ops) != before {
		t.Error("out-of-range channel access touched the bus")
	}
}

func TestBurstAccess(t *testing.T) {
	ops := append(bringupOps(0x3C),
		conntest.IO{W: []byte{0x4D, 0x01, 0x05, 0x0A}},
		conntest.IO{W: []byte{0x32, 0x01, 0x00, 0x00}, R: []byte{0x00, 0x00, 0x03, 0x01}},
	)
	d, _ := testDev(t, ops)

	if err := d.WriteRegisters(RegBiasSensP, []byte{0x05, 0x0A}); err != nil {
		t.Fatalf("WriteRegisters() failed: %v", err)
	}
	statP, statN, err := d.ReadLeadOffStatus()
	if err != nil {
		t.Fatalf("ReadLeadOffStatus() failed: %v", err)
	}
	if statP != 0x03 || statN != 0x01 {
		t.Errorf("lead-off status = (%#02x, %#02x), want (0x03, 0x01)", statP, statN)
	}

	var aerr *AddressError
	if err := d.WriteRegisters(RegConfig4, []byte{0x00, 0x00}); !errors.As(err, &aerr) {
		t.Errorf("burst past the register map = %v, want AddressError", err)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	d, _ := testDev(t, bringupOps(0x3C))
	d.pins.DataReady = &gpiotest.Pin{N: "DRDY", L: gpio.High}
	if err := d.WaitReady(2 * time.Millisecond); err == nil {
		t.Error("WaitReady() with DRDY high should time out")
	}
}
