// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to observe or extend a
// request execution, for example to drive UI state.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// execution starts. The execution carries only its identifier and
	// the user-authored request at this point.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs after the options
	// are built but before the HTTP request is submitted. Handlers may
	// inspect the execution's Options and HTTPRequest fields; the
	// request they see is the one that will be sent after all
	// BeforeAttempt handlers have finished.
	BeforeAttempt
	// BeforeReadBody identifies the event that occurs after response
	// headers have arrived but before the body is drained. It fires
	// whenever an HTTP response is received, regardless of status code,
	// and never fires when the exchange ended in a transport error.
	BeforeReadBody
	// AfterAttempt identifies the event that occurs after the exchange
	// concludes, successfully or not. Either the execution's
	// HTTPResponse field or its Err field is set; the digest
	// challenge-response exchange, if one happened, is already folded
	// in by the time AfterAttempt fires.
	AfterAttempt
	// AfterExecutionEnd identifies the event that occurs after the
	// execution ends and the response, if any, is fully materialized.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events typed as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttempt",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur during
// a request execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttempt,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
