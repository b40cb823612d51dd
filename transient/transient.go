// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors from a request
// execution. The engine uses it to tell timeouts apart from other
// network failures when reporting a failed exchange; callers may use
// it to bucket errors for display.
package transient

import (
	"errors"
	"syscall"
)

// A Category is the classification of a transport error, as reported
// by Categorize.
type Category int

const (
	// Not indicates nil or any error outside the categories below.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or one of
	// its wrapped causes, has a Timeout() method reporting true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED). Typical of a service that is starting,
	// restarting, or simply not listening on the requested port.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// TCP connection (POSIX ECONNRESET).
	ConnReset
)

// Categorize returns the category of err, unwrapping nested causes.
// A nil error is Not. Timeout takes precedence over the connection
// categories when both apply. Categorize never consults Temporary()
// methods, whose semantics are too loose to classify on.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}
