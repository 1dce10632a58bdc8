// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package safespi guards an SPI connection with chip-select bracketing and a
// mandatory settle delay between transactions.
//
// Command-driven converters such as the ADS1299 need a minimum idle time
// after every command byte so the internal state machine can decode it
// (tSDECODE in the datasheet). Violating it corrupts the command stream
// silently. safespi.Conn makes the delay part of the transaction itself:
// callers cannot opt out of it.
package safespi
