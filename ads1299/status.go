// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import "fmt"

// statusSyncMask/statusSyncValue: the top 4 bits of a valid status word are
// always 1100b. Anything else means the read is not aligned to a frame.
const (
	statusSyncMask  uint32 = 0xF00000
	statusSyncValue uint32 = 0xC00000
)

// Status is the 24-bit word at the head of every acquisition frame:
// 4 sync bits, 8 positive then 8 negative lead-off flags, 4 GPIO bits.
type Status uint32

// NewStatus assembles a status word from its 3 wire bytes, MSB first.
func NewStatus(b []byte) Status {
	return Status(uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]))
}

// Valid reports whether the sync pattern matches.
func (s Status) Valid() bool {
	return uint32(s)&statusSyncMask == statusSyncValue
}

// LeadOffPositive returns the per-channel positive-input lead-off flags,
// bit 0 = channel 1. A set bit means the electrode is disconnected.
func (s Status) LeadOffPositive() byte {
	return byte(s >> 12)
}

// LeadOffNegative returns the per-channel negative-input lead-off flags.
func (s Status) LeadOffNegative() byte {
	return byte(s >> 4)
}

// GPIOBits returns the state of the four auxiliary digital inputs.
func (s Status) GPIOBits() byte {
	return byte(s) & 0x0F
}

func (s Status) String() string {
	return fmt.Sprintf("Status{0x%06X loffP:%08b loffN:%08b gpio:%04b}",
		uint32(s), s.LeadOffPositive(), s.LeadOffNegative(), s.GPIOBits())
}
