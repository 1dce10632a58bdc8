// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stream

import "sync"

// Fanout distributes samples from the single stream reader to any number of
// consumers. Each subscriber has its own ordered queue fed by the one
// producer, so every consumer observes samples in arrival order. A consumer
// that falls behind loses samples (counted per subscriber) rather than
// blocking the reader or reordering the stream.
type Fanout struct {
	mu     sync.Mutex
	subs   []*subscriber
	closed bool
}

type subscriber struct {
	ch      chan Sample
	dropped uint64
}

// Subscribe registers a consumer with the given queue depth and returns its
// receive channel. The channel is closed by Close.
func (f *Fanout) Subscribe(buffer int) <-chan Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		ch := make(chan Sample)
		close(ch)
		return ch
	}
	s := &subscriber{ch: make(chan Sample, buffer)}
	f.subs = append(f.subs, s)
	return s.ch
}

// Publish delivers one sample to every subscriber. Must be called from a
// single goroutine, the stream reader.
func (f *Fanout) Publish(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, sub := range f.subs {
		select {
		case sub.ch <- s:
		default:
			sub.dropped++
		}
	}
}

// Dropped returns the total number of samples dropped across subscribers.
func (f *Fanout) Dropped() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n uint64
	for _, sub := range f.subs {
		n += sub.dropped
	}
	return n
}

// Close closes every subscriber channel. Publish after Close is a no-op.
func (f *Fanout) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, sub := range f.subs {
		close(sub.ch)
	}
	f.subs = nil
}
