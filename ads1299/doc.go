// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ads1299 drives a Texas Instruments ADS1299 family biopotential
// analog front end (4, 6 or 8 channels, 24-bit) over SPI.
//
// The package has two layers. The register model is a set of pure functions
// that pack and unpack every register's semantic fields into its 8-bit wire
// value; they are total and round-trip, so a configuration is always
// representable and recoverable. On top of it, Dev runs an explicit state
// machine (Uninitialized → Reset → Idle → Configured → Continuous): register
// mutation is only possible outside continuous acquisition, and illegal
// operations are rejected before any bus traffic.
//
// All bus transactions go through a safespi.Conn, which enforces the
// chip-select bracketing and the mandatory post-command decode delay.
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.ti.com/lit/ds/symlink/ads1299.pdf
package ads1299
