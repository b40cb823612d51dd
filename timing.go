// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"net/http/httptrace"
	"time"
)

// TimingPhases partitions a request's lifetime into named durations.
// Values are immutable once the response is materialized. Phases that
// did not occur (a reused connection skips DNS and TCP, for example)
// are zero.
type TimingPhases struct {
	// Total is the full duration from submission to the last body byte.
	Total time.Duration
	// Wait is the time spent before connection work began.
	Wait time.Duration
	// DNS is the duration of the name lookup.
	DNS time.Duration
	// TCP is the duration of the TCP connect.
	TCP time.Duration
	// Request is the time from obtaining a connection to the request
	// being fully written. TLS negotiation falls into this phase.
	Request time.Duration
	// FirstByte is the time from the request being fully written to
	// the first response byte arriving.
	FirstByte time.Duration
	// Download is the time from the first response byte to the end of
	// the body.
	Download time.Duration
}

// A tracer records the wall-clock instants the transport reports while
// an exchange is in flight. Each phase instant is captured by its own
// httptrace callback, so no phase value is ever inferred from another
// field's name.
type tracer struct {
	start        time.Time
	dnsStart     time.Time
	dnsDone      time.Time
	connectStart time.Time
	connectDone  time.Time
	gotConn      time.Time
	wroteRequest time.Time
	firstByte    time.Time
}

func newTracer() *tracer {
	return &tracer{start: time.Now()}
}

func (t *tracer) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			t.dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			t.dnsDone = time.Now()
		},
		ConnectStart: func(network, addr string) {
			if t.connectStart.IsZero() {
				t.connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			t.connectDone = time.Now()
		},
		GotConn: func(httptrace.GotConnInfo) {
			t.gotConn = time.Now()
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.wroteRequest = time.Now()
		},
		GotFirstResponseByte: func() {
			t.firstByte = time.Now()
		},
	}
}

// phases assembles the timing phases for an exchange that finished
// reading its body at end.
func (t *tracer) phases(end time.Time) TimingPhases {
	p := TimingPhases{Total: end.Sub(t.start)}
	connWork := t.dnsStart
	if connWork.IsZero() {
		connWork = t.connectStart
	}
	if connWork.IsZero() {
		connWork = t.gotConn
	}
	if !connWork.IsZero() {
		p.Wait = connWork.Sub(t.start)
	}
	if !t.dnsStart.IsZero() && !t.dnsDone.IsZero() {
		p.DNS = t.dnsDone.Sub(t.dnsStart)
	}
	if !t.connectStart.IsZero() && !t.connectDone.IsZero() {
		p.TCP = t.connectDone.Sub(t.connectStart)
	}
	if !t.gotConn.IsZero() && !t.wroteRequest.IsZero() {
		p.Request = t.wroteRequest.Sub(t.gotConn)
	}
	if !t.wroteRequest.IsZero() && !t.firstByte.IsZero() {
		p.FirstByte = t.firstByte.Sub(t.wroteRequest)
	}
	if !t.firstByte.IsZero() {
		p.Download = end.Sub(t.firstByte)
	}
	return p
}
