// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package eeglink acquires EEG data from an ADS1299 analog front end and
// moves it to a host over a byte link.
//
// ads1299 drives the chip over SPI, safespi enforces the chip's bus timing,
// frame is the wire codec and stream is the host-side consumer. cmd/eeglinkd
// and cmd/eegrecv are the device and host ends of the link.
package eeglink
