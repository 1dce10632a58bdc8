// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frame defines the binary sample frame exchanged between the
// acquisition device and the host: a little-endian uint32 sample index
// followed by one little-endian int32 per channel. Frames have no delimiter;
// the length is fixed once the channel count is known.
//
// The codec is deliberately transport agnostic. The serial link and any
// alternate synchronous-bus path to a companion processor must use this
// exact field layout and byte order; only the outer transport differs.
package frame
