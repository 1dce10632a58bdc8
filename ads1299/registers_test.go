// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackConfig1(t *testing.T) {
	for _, tc := range []struct {
		daisy, clkOut bool
		dr            DataRate
		want          byte
	}{
		{false, false, DR250, 0x86},
		{false, false, DR16000, 0x80},
		{true, false, DR250, 0xC6},
		{false, true, DR1000, 0xA4},
		{true, true, DR500, 0xE5},
	} {
		got := PackConfig1(tc.daisy, tc.clkOut, tc.dr)
		if got != tc.want {
			t.Errorf("PackConfig1(%v, %v, %#x) = %#02x, want %#02x", tc.daisy, tc.clkOut, tc.dr, got, tc.want)
		}
		daisy, clkOut, dr := UnpackConfig1(got)
		if daisy != tc.daisy || clkOut != tc.clkOut || dr != tc.dr {
			t.Errorf("UnpackConfig1(%#02x) = (%v, %v, %#x), want (%v, %v, %#x)",
				got, daisy, clkOut, dr, tc.daisy, tc.clkOut, tc.dr)
		}
	}
}

func TestPackConfig2(t *testing.T) {
	if got := PackConfig2(false, false, CalSlow); got != 0xC0 {
		t.Errorf("test signal off = %#02x, want 0xC0", got)
	}
	if got := PackConfig2(true, true, CalDC); got != 0xD7 {
		t.Errorf("test signal on = %#02x, want 0xD7", got)
	}
	intCal, amp2x, freq := UnpackConfig2(0xD7)
	if !intCal || !amp2x || freq != CalDC {
		t.Errorf("UnpackConfig2(0xD7) = (%v, %v, %#x)", intCal, amp2x, freq)
	}
}

func TestPackConfig3RoundTrip(t *testing.T) {
	for _, c := range []Config3{
		{},
		{RefBuffer: true, BiasRefInt: true},
		{RefBuffer: true, BiasMeasure: true, BiasRefInt: true, BiasBuffer: true, BiasSense: true},
		{BiasBuffer: true},
	} {
		if diff := cmp.Diff(UnpackConfig3(PackConfig3(c)), c); diff != "" {
			t.Errorf("Config3 round trip difference (-got +want):\n%s", diff)
		}
	}
	if got := PackConfig3(Config3{RefBuffer: true, BiasRefInt: true}); got != 0x88 {
		t.Errorf("internal reference = %#02x, want 0x88", got)
	}
}

func TestPackLeadOff(t *testing.T) {
	got := PackLeadOff(Comp80, Current24nA, Freq31Hz2)
	if got != 0x66 {
		t.Errorf("PackLeadOff = %#02x, want 0x66", got)
	}
	comp, current, freq := UnpackLeadOff(got)
	if comp != Comp80 || current != Current24nA || freq != Freq31Hz2 {
		t.Errorf("UnpackLeadOff(0x66) = (%#x, %#x, %#x)", comp, current, freq)
	}
}

func TestPackChannel(t *testing.T) {
	for _, tc := range []struct {
		c    Channel
		want byte
	}{
		{Channel{Gain: Gain24, Mux: MuxNormal}, 0x60},
		{Channel{PowerDown: true, Mux: MuxShorted}, 0x81},
		{Channel{Gain: Gain1, Mux: MuxTestSignal, SRB2: true}, 0x0D},
		{Channel{PowerDown: true, Gain: Gain12, Mux: MuxTemperature, SRB2: true}, 0xDC},
	} {
		got := PackChannel(tc.c)
		if got != tc.want {
			t.Errorf("PackChannel(%+v) = %#02x, want %#02x", tc.c, got, tc.want)
		}
		if diff := cmp.Diff(UnpackChannel(got), tc.c); diff != "" {
			t.Errorf("Channel round trip difference (-got +want):\n%s", diff)
		}
	}
}

func TestPackGPIO(t *testing.T) {
	if got := PackGPIO(0x0, 0x0F); got != 0x0F {
		t.Errorf("all inputs = %#02x, want 0x0F", got)
	}
	if got := PackGPIO(0xA, 0x05); got != 0xA5 {
		t.Errorf("PackGPIO(0xA, 0x05) = %#02x, want 0xA5", got)
	}
	data, dir := UnpackGPIO(0xA5)
	if data != 0xA || dir != 0x5 {
		t.Errorf("UnpackGPIO(0xA5) = (%#x, %#x)", data, dir)
	}
}

func TestPackConfig4(t *testing.T) {
	for _, tc := range []struct {
		singleShot, leadOffComp bool
		want                    byte
	}{
		{false, true, 0x00},
		{false, false, 0x02},
		{true, true, 0x08},
		{true, false, 0x0A},
	} {
		got := PackConfig4(tc.singleShot, tc.leadOffComp)
		if got != tc.want {
			t.Errorf("PackConfig4(%v, %v) = %#02x, want %#02x", tc.singleShot, tc.leadOffComp, got, tc.want)
		}
		singleShot, leadOffComp := UnpackConfig4(got)
		if singleShot != tc.singleShot || leadOffComp != tc.leadOffComp {
			t.Errorf("UnpackConfig4(%#02x) = (%v, %v)", got, singleShot, leadOffComp)
		}
	}
}

func TestClipMask(t *testing.T) {
	for _, tc := range []struct {
		mask     byte
		channels int
		want     byte
	}{
		{0xFF, 4, 0x0F},
		{0xFF, 6, 0x3F},
		{0xFF, 8, 0xFF},
		{0xFF, 0, 0x00},
		{0xA5, 4, 0x05},
		{0xFF, 9, 0xFF},
		{0x00, 8, 0x00},
	} {
		if got := ClipMask(tc.mask, tc.channels); got != tc.want {
			t.Errorf("ClipMask(%#02x, %d) = %#02x, want %#02x", tc.mask, tc.channels, got, tc.want)
		}
	}
}

func TestIdentity(t *testing.T) {
	for _, tc := range []struct {
		id       byte
		family   bool
		channels int
	}{
		{0x3E, true, 8}, // ADS1299, rev 1
		{0x3D, true, 6},
		{0x3C, true, 4},
		{0x3F, true, 4}, // reserved size field falls back to 4
		{0x00, false, 4},
		{0xE5, false, 6}, // wrong family bits
	} {
		if got := DeviceFamily(tc.id); got != tc.family {
			t.Errorf("DeviceFamily(%#02x) = %v, want %v", tc.id, got, tc.family)
		}
		if got := ChannelCount(tc.id); got != tc.channels {
			t.Errorf("ChannelCount(%#02x) = %d, want %d", tc.id, got, tc.channels)
		}
	}
	if got := Revision(0x7E); got != 3 {
		t.Errorf("Revision(0x7E) = %d, want 3", got)
	}
}

func TestInt24(t *testing.T) {
	for _, tc := range []struct {
		b    []byte
		want int32
	}{
		{[]byte{0x7F, 0xFF, 0xFF}, 8388607},
		{[]byte{0x80, 0x00, 0x00}, -8388608},
		{[]byte{0xFF, 0xFF, 0xFF}, -1},
		{[]byte{0x00, 0x00, 0x00}, 0},
		{[]byte{0x00, 0x00, 0x01}, 1},
		{[]byte{0xFF, 0xFF, 0xFE}, -2},
	} {
		if got := Int24(tc.b); got != tc.want {
			t.Errorf("Int24(% 02X) = %d, want %d", tc.b, got, tc.want)
		}
	}
}

func TestStatus(t *testing.T) {
	s := NewStatus([]byte{0xC5, 0xA3, 0x4B})
	if !s.Valid() {
		t.Error("sync pattern 1100 should be valid")
	}
	if got := s.LeadOffPositive(); got != 0x5A {
		t.Errorf("LeadOffPositive = %#02x, want 0x5A", got)
	}
	if got := s.LeadOffNegative(); got != 0x34 {
		t.Errorf("LeadOffNegative = %#02x, want 0x34", got)
	}
	if got := s.GPIOBits(); got != 0x0B {
		t.Errorf("GPIOBits = %#02x, want 0x0B", got)
	}

	// Any other top nibble is invalid, whatever the rest of the word.
	for _, b := range []byte{0x00, 0x40, 0x80, 0xD0, 0xF0} {
		if NewStatus([]byte{b | 0x05, 0xA3, 0x4B}).Valid() {
			t.Errorf("top nibble %#02x should not validate", b>>4)
		}
	}
}
