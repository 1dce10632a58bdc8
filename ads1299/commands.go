// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

// SPI command opcodes (datasheet section 9.5.3).
const (
	cmdWakeup  byte = 0x02
	cmdStandby byte = 0x04
	cmdReset   byte = 0x06
	cmdStart   byte = 0x08
	cmdStop    byte = 0x0A
	cmdRDATAC  byte = 0x10 // read data continuous
	cmdSDATAC  byte = 0x11 // stop read data continuous
	cmdRDATA   byte = 0x12 // read data on demand

	// Register access opcodes. The register address is OR'd into the low
	// 5 bits.
	cmdRREG byte = 0x20
	cmdWREG byte = 0x40
)
