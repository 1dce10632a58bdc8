// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// eegrecv reads the encoded frame stream from a serial link, tracks sample
// continuity, converts to volts and optionally republishes frames over MQTT
// for downstream consumers.
package main

import (
	"errors"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.bug.st/serial"

	"github.com/eegmidi/eeglink/frame"
	"github.com/eegmidi/eeglink/stream"
)

var (
	port       = flag.String("port", "/dev/ttyACM0", "Serial port of the link.")
	baud       = flag.Int("baud", 115200, "Serial link baud rate.")
	channels   = flag.Int("channels", 8, "Channel count of the stream.")
	rangeLimit = flag.Float64("range", stream.DefaultRangeLimit, "Plausible voltage magnitude; <0 disables the check.")
	mqttURL    = flag.String("mqtt", "", "Optional MQTT broker URL, e.g. mqtt://localhost:1883/eeg/frames.")
)

// errLinkTimeout marks a silent link: a serial read that returned no bytes
// within the port's read timeout.
var errLinkTimeout = errors.New("link read timeout")

// linkReader adapts a serial port to the stream reader. The port's timeout
// surfaces as a zero-byte read; turning that into an error keeps a whole
// frame read from blocking forever on a dead link.
type linkReader struct {
	p serial.Port
}

func (r linkReader) Read(b []byte) (int, error) {
	n, err := r.p.Read(b)
	if n == 0 && err == nil {
		return 0, errLinkTimeout
	}
	return n, err
}

func openLink() (serial.Port, error) {
	p, err := serial.Open(*port, &serial.Mode{BaudRate: *baud})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(time.Second); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// mqttSink publishes re-encoded frames to a broker topic. Publishing is
// asynchronous; a slow broker never stalls the serial reader.
type mqttSink struct {
	client paho.Client
	topic  string
	buf    []byte
}

func newMQTTSink(rawURL string) (*mqttSink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	topic := u.Path
	if len(topic) > 0 && topic[0] == '/' {
		topic = topic[1:]
	}
	if topic == "" {
		topic = "eeg/frames"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetOrderMatters(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	s := &mqttSink{client: paho.NewClient(opts), topic: topic}
	token := s.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *mqttSink) publish(sm stream.Sample) {
	s.buf = frame.AppendEncode(s.buf[:0], sm.Index, sm.Raw)
	s.client.Publish(s.topic, 0, false, append([]byte(nil), s.buf...))
}

func (s *mqttSink) close() {
	s.client.Disconnect(250)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	// The serial reader is the single producer; consumers hang off a
	// fanout so a slow broker drops frames instead of stalling the reader.
	var fan stream.Fanout
	defer fan.Close()
	if *mqttURL != "" {
		sink, err := newMQTTSink(*mqttURL)
		if err != nil {
			log.Fatalln(err)
		}
		defer sink.close()
		log.Printf("publishing frames to %s topic %q", *mqttURL, sink.topic)
		go func() {
			for s := range fan.Subscribe(256) {
				sink.publish(s)
			}
		}()
	}

	link, err := openLink()
	if err != nil {
		log.Fatalln(err)
	}

	opts := stream.Opts{
		Channels:   *channels,
		RangeLimit: *rangeLimit,
		OnDataLoss: func(l stream.DataLoss) {
			log.Printf("%s", l)
		},
		OnRangeWarning: func(w stream.RangeWarning) {
			log.Printf("%s", w)
		},
	}
	rx, err := stream.NewReceiver(linkReader{link}, opts)
	if err != nil {
		log.Fatalln(err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	log.Printf("listening on %s, %d channel(s)", *port, *channels)

	var frames uint64
	for {
		select {
		case <-stop:
			link.Close()
			log.Printf("done: %d frame(s), %d dropped downstream", frames, fan.Dropped())
			return
		default:
		}

		s, err := rx.Next()
		if err != nil {
			// Any stream fault is handled the same way: drop the port,
			// reopen it and reseed continuity on the next frame.
			log.Printf("link: %v, reconnecting", err)
			link.Close()
			for {
				if link, err = openLink(); err == nil {
					break
				}
				log.Printf("reopen: %v", err)
				select {
				case <-stop:
					return
				case <-time.After(time.Second):
				}
			}
			rx, err = stream.NewReceiver(linkReader{link}, opts)
			if err != nil {
				log.Fatalln(err)
			}
			continue
		}
		frames++
		fan.Publish(s)
	}
}
