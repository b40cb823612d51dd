// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth rewrites user-authored Authorization headers into a
// transport-ready form.
//
// The user writes the header as scheme, user, and password separated
// by whitespace, for example:
//
//	Authorization: Basic alice s3cret pass
//
// Only the first two tokens are structural; everything after the user
// is rejoined with single spaces as the password, so passwords may
// contain spaces. Parse maps the header to one of a small closed set
// of strategies: None, Basic, or Digest.
package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// A Strategy prepares a request's Authorization header and, for
// challenge-response schemes, answers exactly one challenge.
type Strategy interface {
	// Authorize returns the Authorization header value to send on the
	// initial exchange, or "" to leave the authored header untouched.
	Authorize() string

	// Answer inspects a 401 response and computes the Authorization
	// header value for a single retried exchange. ok is false when the
	// strategy does not do challenge-response or the challenge is not
	// one it can answer.
	Answer(method, uri string, resp *http.Response) (value string, ok bool)
}

// Parse inspects the Authorization header value and selects a
// strategy. A missing value, an unknown scheme, or too few tokens all
// select None; malformed input is never an error.
func Parse(authorization string) Strategy {
	fields := strings.Fields(authorization)
	if len(fields) < 3 {
		return None
	}
	scheme, user := fields[0], fields[1]
	password := strings.Join(fields[2:], " ")
	switch scheme {
	case "Basic":
		return Basic(user, password)
	case "Digest":
		return Digest(user, password)
	}
	return None
}

// None is the no-op strategy: the authored header, if any, is sent
// as-is and challenges are not answered.
var None Strategy = none{}

type none struct{}

func (none) Authorize() string { return "" }

func (none) Answer(string, string, *http.Response) (string, bool) { return "", false }

// Basic returns the strategy for HTTP Basic authentication. The
// authored header value is replaced with the base64 credential form
// before the request is sent.
func Basic(user, password string) Strategy {
	return basic{user: user, password: password}
}

type basic struct {
	user, password string
}

// See section 2 (end of page 4) of https://www.ietf.org/rfc/rfc2617.txt:
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials." It is not meant to be urlencoded.
func (b basic) Authorize() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(b.user+":"+b.password))
}

func (basic) Answer(string, string, *http.Response) (string, bool) { return "", false }
