// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package safespi

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultOpts is the recommended configuration for an ADS1299 wired to a
// 2.048 MHz master clock. The settle time covers tSDECODE (4 tCLK ≈ 2 µs)
// with margin.
var DefaultOpts = Opts{
	Frequency: 2 * physic.MegaHertz,
	Mode:      spi.Mode1,
	Settle:    3 * time.Microsecond,
}

// Opts holds the bus parameters.
type Opts struct {
	// Frequency is the SPI clock frequency.
	Frequency physic.Frequency
	// Mode is the SPI clock polarity/phase.
	Mode spi.Mode
	// Settle is the idle time inserted after every transaction before the
	// next one may start. The device needs it to decode the command.
	Settle time.Duration
}

// Conn is a guarded SPI connection. Every transaction asserts the chip
// select line, transfers, deasserts chip select and then holds the bus for
// the settle time. Transactions are serialized; there is no way to issue
// two commands back to back without the settle time in between.
//
// Conn implements conn.Conn.
type Conn struct {
	c      spi.Conn
	cs     gpio.PinOut
	settle time.Duration

	mu sync.Mutex
}

// New connects the port and returns a guarded connection using cs as the
// chip select line (active low). If opts is nil, DefaultOpts is used.
func New(p spi.Port, cs gpio.PinOut, opts *Opts) (*Conn, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	c, err := p.Connect(opts.Frequency, opts.Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("safespi: %w", err)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("safespi: %w", err)
	}
	return &Conn{c: c, cs: cs, settle: opts.Settle}, nil
}

func (t *Conn) String() string {
	return fmt.Sprintf("safespi{%s, %s}", t.c, t.cs)
}

// Tx performs one select→transfer→deselect transaction followed by the
// settle delay. The chip select line is raised even when the transfer
// fails.
func (t *Conn) Tx(w, r []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.cs.Out(gpio.Low); err != nil {
		return err
	}
	txErr := t.c.Tx(w, r)
	csErr := t.cs.Out(gpio.High)
	time.Sleep(t.settle)
	if txErr != nil {
		return txErr
	}
	return csErr
}

// Duplex returns the underlying connection's duplex mode.
func (t *Conn) Duplex() conn.Duplex {
	return t.c.Duplex()
}

var _ conn.Conn = &Conn{}
