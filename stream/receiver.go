// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stream

import (
	"fmt"
	"io"
	"math"

	"github.com/eegmidi/eeglink/frame"
)

// DefaultVoltsPerCount is the conversion scale for the default reference
// and gain configuration (4.5 V reference, gain 24).
const DefaultVoltsPerCount = 2.235e-8

// DefaultRangeLimit is the voltage magnitude above which a converted sample
// is reported as implausible. Scalp potentials are on the order of
// microvolts; half a volt means a wiring or alignment problem.
const DefaultRangeLimit = 0.5

// DataLoss reports a gap in the sample-index sequence. It is advisory; the
// receiver resynchronizes and keeps going.
type DataLoss struct {
	Expected uint32
	Received uint32
	// Missed is the number of frames lost, Received - Expected.
	Missed uint32
}

func (l DataLoss) String() string {
	return fmt.Sprintf("lost %d frame(s): expected index %d, got %d", l.Missed, l.Expected, l.Received)
}

// RangeWarning reports a converted voltage outside the plausible range.
type RangeWarning struct {
	Index   uint32
	Channel int
	Volts   float64
}

func (w RangeWarning) String() string {
	return fmt.Sprintf("frame %d channel %d: %.4g V out of range", w.Index, w.Channel, w.Volts)
}

// Sample is one decoded and converted frame.
type Sample struct {
	Index uint32
	Raw   []int32
	Volts []float64
}

// Opts configures a Receiver.
type Opts struct {
	// Channels is the channel count of the stream. Required.
	Channels int
	// VoltsPerCount converts a raw code to volts. Defaults to
	// DefaultVoltsPerCount.
	VoltsPerCount float64
	// RangeLimit is the plausibility threshold in volts. Defaults to
	// DefaultRangeLimit; 0 keeps the default, a negative value disables
	// the check.
	RangeLimit float64
	// OnDataLoss, if set, is called for every index discontinuity.
	OnDataLoss func(DataLoss)
	// OnRangeWarning, if set, is called for every implausible sample.
	OnRangeWarning func(RangeWarning)
}

// Receiver reads fixed-size frames from a byte stream, decodes them and
// tracks sample continuity. It is driven by a single reader goroutine; the
// expected-index counter is not guarded by a lock.
type Receiver struct {
	r    io.Reader
	opts Opts
	buf  []byte

	expected uint32
	seeded   bool
}

// NewReceiver wraps a byte stream producing frames with the given options.
func NewReceiver(r io.Reader, opts Opts) (*Receiver, error) {
	if opts.Channels < 1 {
		return nil, fmt.Errorf("stream: channel count %d", opts.Channels)
	}
	if opts.VoltsPerCount == 0 {
		opts.VoltsPerCount = DefaultVoltsPerCount
	}
	if opts.RangeLimit == 0 {
		opts.RangeLimit = DefaultRangeLimit
	}
	return &Receiver{
		r:    r,
		opts: opts,
		buf:  make([]byte, frame.Size(opts.Channels)),
	}, nil
}

// Next blocks for one whole frame and returns it decoded and converted.
// A short read is an error, never a partial sample; on error the caller
// owns recovery (typically closing and reopening the transport).
func (rx *Receiver) Next() (Sample, error) {
	if _, err := io.ReadFull(rx.r, rx.buf); err != nil {
		return Sample{}, err
	}
	f, err := frame.Decode(rx.buf, rx.opts.Channels)
	if err != nil {
		return Sample{}, err
	}

	rx.track(f.Index)

	s := Sample{
		Index: f.Index,
		Raw:   f.Samples,
		Volts: make([]float64, len(f.Samples)),
	}
	for i, raw := range f.Samples {
		v := float64(raw) * rx.opts.VoltsPerCount
		s.Volts[i] = v
		if rx.opts.RangeLimit > 0 && math.Abs(v) > rx.opts.RangeLimit && rx.opts.OnRangeWarning != nil {
			rx.opts.OnRangeWarning(RangeWarning{Index: f.Index, Channel: i, Volts: v})
		}
	}
	return s, nil
}

// track maintains the expected-index counter: seeded by the first frame,
// advanced by one per frame, resynchronized on any discontinuity.
func (rx *Receiver) track(index uint32) {
	if !rx.seeded {
		rx.seeded = true
		rx.expected = index + 1
		return
	}
	if index != rx.expected {
		if rx.opts.OnDataLoss != nil {
			rx.opts.OnDataLoss(DataLoss{
				Expected: rx.expected,
				Received: index,
				Missed:   index - rx.expected,
			})
		}
	}
	rx.expected = index + 1
}

// Reset clears the continuity tracker, e.g. after reconnecting the
// transport. The next frame reseeds the expected index instead of being
// reported as loss.
func (rx *Receiver) Reset() {
	rx.seeded = false
}
