// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package stream is the host side of the sample link: it reassembles
// fixed-size frames from a byte stream, tracks sample-index continuity,
// converts raw codes to volts and hands the result to downstream signal
// processing.
//
// Index gaps and implausible voltages are reported through callbacks and
// never stop the stream; transport errors are returned to the caller, who
// owns the reconnect policy.
package stream
