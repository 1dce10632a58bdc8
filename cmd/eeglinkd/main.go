// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// eeglinkd acquires from an ADS1299 analog front end and streams encoded
// frames over a serial link (or stdout).
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/eegmidi/eeglink/ads1299"
	"github.com/eegmidi/eeglink/frame"
)

var (
	spiPort  = flag.String("spi", "", "SPI port name or number (empty for the first port).")
	drdyPin  = flag.String("drdy", "GPIO25", "Data-ready pin name (active low).")
	csPin    = flag.String("cs", "GPIO8", "Chip-select pin name.")
	startPin = flag.String("start", "GPIO24", "Start pin name.")
	resetPin = flag.String("reset", "GPIO23", "Reset pin name.")
	pwdnPin  = flag.String("pwdn", "", "Power-down pin name (empty if strapped high).")
	link     = flag.String("link", "-", "Serial device for the outgoing stream, or - for stdout.")
	baud     = flag.Int("baud", 115200, "Serial link baud rate.")
	rate     = flag.Int("rate", 250, "Sample rate in SPS: 250, 500, 1000, 2000, 4000, 8000 or 16000.")
)

var dataRates = map[int]ads1299.DataRate{
	250:   ads1299.DR250,
	500:   ads1299.DR500,
	1000:  ads1299.DR1000,
	2000:  ads1299.DR2000,
	4000:  ads1299.DR4000,
	8000:  ads1299.DR8000,
	16000: ads1299.DR16000,
}

func mustPin(name string) gpio.PinIO {
	p := gpioreg.ByName(name)
	if p == nil {
		log.Fatalf("no pin %q", name)
	}
	return p
}

func openLink() (io.WriteCloser, error) {
	if *link == "-" {
		return os.Stdout, nil
	}
	return serial.Open(*link, &serial.Mode{BaudRate: *baud})
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	dr, ok := dataRates[*rate]
	if !ok {
		log.Fatalf("unsupported sample rate %d", *rate)
	}

	if _, err := host.Init(); err != nil {
		log.Fatalln(err)
	}
	p, err := spireg.Open(*spiPort)
	if err != nil {
		log.Fatalln(err)
	}
	defer p.Close()

	pins := ads1299.Pins{
		ChipSelect: mustPin(*csPin),
		Start:      mustPin(*startPin),
		Reset:      mustPin(*resetPin),
		DataReady:  mustPin(*drdyPin),
	}
	if *pwdnPin != "" {
		pins.PowerDown = mustPin(*pwdnPin)
	}

	dev, err := ads1299.New(p, pins, nil)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("device up: %s", dev)

	cfg := ads1299.DefaultConfig()
	cfg.DataRate = dr
	if err := dev.Configure(cfg); err != nil {
		log.Fatalln(err)
	}

	out, err := openLink()
	if err != nil {
		log.Fatalln(err)
	}
	defer out.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if err := dev.StartContinuous(); err != nil {
		log.Fatalln(err)
	}
	log.Printf("streaming %d channel(s) at %d SPS to %s", dev.ChannelCount(), *rate, *link)

	var index uint32
	buf := make([]byte, 0, frame.Size(dev.ChannelCount()))
loop:
	for {
		select {
		case <-stop:
			break loop
		default:
		}
		if err := dev.WaitReady(time.Second); err != nil {
			log.Printf("wait: %v", err)
			continue
		}
		_, samples, err := dev.ReadFrame()
		if err != nil {
			if errors.Is(err, ads1299.ErrSync) {
				// A desynchronized frame is dropped without consuming
				// an index; the host sees a contiguous sequence.
				log.Printf("dropped frame: %v", err)
				continue
			}
			log.Fatalln(err)
		}
		buf = frame.AppendEncode(buf[:0], index, samples)
		if _, err := out.Write(buf); err != nil {
			log.Fatalf("link write: %v", err)
		}
		index++
	}

	log.Print("stopping")
	if err := dev.StopContinuous(); err != nil {
		log.Printf("stop: %v", err)
	}
	if err := dev.Halt(); err != nil {
		log.Printf("halt: %v", err)
	}
}
