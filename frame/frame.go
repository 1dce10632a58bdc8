// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package frame

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the length of the sample-index header.
	HeaderSize = 4
	// SampleSize is the length of one encoded channel sample.
	SampleSize = 4
)

// Size returns the encoded length of a frame carrying the given number of
// channels.
func Size(channels int) int {
	return HeaderSize + SampleSize*channels
}

// Frame is one acquisition cycle on the wire: a monotonically increasing
// sample index and one signed 32-bit sample per channel.
type Frame struct {
	Index   uint32
	Samples []int32
}

// LengthError reports a byte sequence whose length does not match the
// frame layout for the expected channel count.
type LengthError struct {
	Got  int
	Want int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("frame: length %d, want %d", e.Got, e.Want)
}

// Encode serializes a frame: 4 bytes of index followed by 4 bytes per
// sample, all little-endian, in channel order.
func Encode(index uint32, samples []int32) []byte {
	return AppendEncode(make([]byte, 0, Size(len(samples))), index, samples)
}

// AppendEncode appends the encoded frame to dst and returns the extended
// slice. It allocates nothing when dst has capacity, which keeps a
// fixed-rate acquisition loop allocation free.
func AppendEncode(dst []byte, index uint32, samples []int32) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, index)
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(s))
	}
	return dst
}

// Decode is the exact inverse of Encode for a known channel count. Any
// other input length is rejected; a frame is decoded whole or not at all.
func Decode(b []byte, channels int) (Frame, error) {
	if len(b) != Size(channels) {
		return Frame{}, &LengthError{Got: len(b), Want: Size(channels)}
	}
	f := Frame{
		Index:   binary.LittleEndian.Uint32(b),
		Samples: make([]int32, channels),
	}
	for i := 0; i < channels; i++ {
		f.Samples[i] = int32(binary.LittleEndian.Uint32(b[HeaderSize+SampleSize*i:]))
	}
	return f, nil
}
