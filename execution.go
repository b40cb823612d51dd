// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"context"
	"net/http"
	"time"

	"github.com/restfire/restfire/request"
	"github.com/restfire/restfire/transient"
)

// An Execution represents the state of a single request execution.
//
// An Execution is created when a request is submitted to the engine,
// updated as the exchange progresses, and visible to event handlers at
// each plug-in point. Handlers should treat the exported fields as
// read-only except where an event's documentation says otherwise.
type Execution struct {
	// ID is the lifecycle identifier of this execution. When the
	// caller does not supply one, the engine generates it.
	ID string

	// Request is the user-authored request being executed. It is never
	// nil.
	Request *request.Request

	// Options is the fully resolved execution plan built for this
	// request. It is nil until the options builder has run.
	Options *Options

	// Start is the time the execution started.
	Start time.Time

	// End is the time the execution ended. It contains the zero value
	// while the execution is in flight.
	End time.Time

	// HTTPRequest is the lower-level request submitted to the
	// transport, available from the BeforeAttempt event onward.
	HTTPRequest *http.Request

	// HTTPResponse is the raw transport response, available from the
	// BeforeReadBody event onward. It is nil if the exchange ended in
	// an error.
	HTTPResponse *http.Response

	// Response is the materialized response, available once the
	// execution has ended without error.
	Response *Response

	// Err is the error that ended the execution, if any. Whenever Err
	// is non-nil, it has the type *url.Error.
	Err error

	// data contains arbitrary handler data, managed via Value and
	// SetValue.
	data context.Context
}

// Duration returns the duration of the execution. Before the execution
// starts it is zero; while in flight it is the time elapsed since
// Start; once ended it is fixed at End minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// StatusCode returns the status code of the materialized response, or
// 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type, to avoid collisions between
// handlers.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
